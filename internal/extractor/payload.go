package extractor

// CompanyLogin is the company account block of a job card.
type CompanyLogin struct {
	CompanyName string `json:"company_name"`
	Password    string `json:"password"`
}

// UserLogin is the operator account block of a job card.
type UserLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// JobDetails identifies the print job.
type JobDetails struct {
	Client   string `json:"client"`
	JobName  string `json:"job_name"`
	Quantity int    `json:"quantity"`
}

// JobSize holds the finished dimensions.
type JobSize struct {
	Height float64 `json:"height"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// Material describes the board or paper stock.
type Material struct {
	Quality string  `json:"quality"`
	GSM     float64 `json:"gsm"`
	Mill    string  `json:"mill"`
	Finish  string  `json:"finish"`
}

// PrintingDetails holds colour counts and print style.
type PrintingDetails struct {
	FrontColors int    `json:"front_colors"`
	BackColors  int    `json:"back_colors"`
	Style       string `json:"style"`
}

// WastageFinishing holds wastage and post-press settings. It is present in
// every domain payload, all zero when nothing matched.
type WastageFinishing struct {
	Wastage    float64 `json:"wastage"`
	MakeReady  int     `json:"make_ready"`
	Lamination string  `json:"lamination"`
	Finishing  string  `json:"finishing"`
}

// Credentials is a generic portal login found anywhere in the text.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url"`
}

// JobCardInfo is the job card reference block.
type JobCardInfo struct {
	Number   string  `json:"number"`
	Date     string  `json:"date"`
	Customer string  `json:"customer"`
	Amount   float64 `json:"amount"`
}

// Payload is the structured content of one message. A nil group had no
// matching fields.
type Payload struct {
	Credentials      *Credentials      `json:"credentials,omitempty"`
	JobCard          *JobCardInfo      `json:"job_card,omitempty"`
	CompanyLogin     *CompanyLogin     `json:"company_login,omitempty"`
	UserLogin        *UserLogin        `json:"user_login,omitempty"`
	JobDetails       *JobDetails       `json:"job_details,omitempty"`
	JobSize          *JobSize          `json:"job_size,omitempty"`
	Material         *Material         `json:"material,omitempty"`
	PrintingDetails  *PrintingDetails  `json:"printing_details,omitempty"`
	WastageFinishing *WastageFinishing `json:"wastage_finishing,omitempty"`
}

// Secrets returns every password in p, for redaction.
func (p *Payload) Secrets() []string {
	var out []string
	if p.Credentials != nil {
		out = append(out, p.Credentials.Password)
	}
	if p.CompanyLogin != nil {
		out = append(out, p.CompanyLogin.Password)
	}
	if p.UserLogin != nil {
		out = append(out, p.UserLogin.Password)
	}
	return out
}

// FieldOutcome records what happened to one field.
type FieldOutcome struct {
	Group   string `json:"group"`
	Field   string `json:"field"`
	Matched bool   `json:"matched"`
	Note    string `json:"note,omitempty"`
}

// Extraction is a payload plus the per-field outcomes that produced it.
type Extraction struct {
	Payload  Payload        `json:"payload"`
	Outcomes []FieldOutcome `json:"outcomes"`
}

// Annotations returns the outcomes that carry a note.
func (e *Extraction) Annotations() []FieldOutcome {
	var out []FieldOutcome
	for _, o := range e.Outcomes {
		if o.Note != "" {
			out = append(out, o)
		}
	}
	return out
}
