// Package extractor turns labelled "Field: value" text into typed payload
// groups. Extraction never fails: unmatched fields stay zero and parse
// problems become field annotations.
package extractor

import (
	"math"
	"regexp"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/classifier"
)

const (
	sectionCompany     = "company"
	sectionUser        = "user"
	sectionCredentials = "credentials"
	sectionJobCard     = "job_card"
)

type field struct {
	group string
	name  string
	re    *regexp.Regexp
}

func newField(group, name, labels string) field {
	return field{group: group, name: name, re: fieldPattern(labels)}
}

// Extractor holds the compiled field patterns. It is safe for concurrent use.
type Extractor struct {
	headers []header

	companyName, companyPassword field
	userName, userPassword       field

	credUser, credPassword, credURL field

	cardNumber, cardDate, cardCustomer, cardAmount field

	client, jobName, quantity field
	height, length, width     field

	quality, gsm, mill, finish field

	frontColors, backColors, style field

	wastage, makeReady, lamination, finishing field
}

// New compiles the field tables.
func New() *Extractor {
	const password = `password|passwd|pwd|pass`

	return &Extractor{
		headers: []header{
			{sectionCompany, headerPattern(`company(?: login| details| account)?`)},
			{sectionUser, headerPattern(`user(?: login| details| account)?`)},
			{sectionCredentials, headerPattern(`credentials|login details|portal(?: login)?`)},
			{sectionJobCard, headerPattern(`job ?card(?: details| info)?`)},
			{"job_details", headerPattern(`job details`)},
			{"job_size", headerPattern(`job size|size`)},
			{"material", headerPattern(`material(?: details)?`)},
			{"printing", headerPattern(`printing(?: details)?`)},
			{"wastage", headerPattern(`wastage(?: (?:and|&) finishing)?|finishing`)},
		},

		companyName:     newField("company_login", "company_name", `company ?name|company ?id|company`),
		companyPassword: newField("company_login", "password", password),
		userName:        newField("user_login", "username", `user ?name|user ?id|user`),
		userPassword:    newField("user_login", "password", password),

		credUser:     newField("credentials", "username", `user ?name|login ?id|login|email`),
		credPassword: newField("credentials", "password", password),
		credURL:      newField("credentials", "url", `portal ?url|url|website|portal|link`),

		cardNumber:   newField("job_card", "number", `job ?card ?(?:no\.?|number|#)|card ?(?:no\.?|number)`),
		cardDate:     newField("job_card", "date", `job ?date|date`),
		cardCustomer: newField("job_card", "customer", `customer(?: name)?`),
		cardAmount:   newField("job_card", "amount", `amount|total amount|total|cost`),

		client:   newField("job_details", "client", `client(?: name)?`),
		jobName:  newField("job_details", "job_name", `job ?name|job ?title`),
		quantity: newField("job_details", "quantity", `quantity|qty`),

		height: newField("job_size", "height", `height`),
		length: newField("job_size", "length", `length`),
		width:  newField("job_size", "width", `width`),

		quality: newField("material", "quality", `paper ?quality|board ?quality|quality|material|paper|board`),
		gsm:     newField("material", "gsm", `gsm`),
		mill:    newField("material", "mill", `mill`),
		finish:  newField("material", "finish", `finish`),

		frontColors: newField("printing_details", "front_colors", `front ?colou?rs?`),
		backColors:  newField("printing_details", "back_colors", `back ?colou?rs?`),
		style:       newField("printing_details", "style", `printing ?style|print ?style|style`),

		wastage:    newField("wastage_finishing", "wastage", `wastage`),
		makeReady:  newField("wastage_finishing", "make_ready", `make ?ready`),
		lamination: newField("wastage_finishing", "lamination", `lamination`),
		finishing:  newField("wastage_finishing", "finishing", `finishing`),
	}
}

// ExtractCredentials returns the portal credentials in text, or nil.
func (e *Extractor) ExtractCredentials(text string) *Credentials {
	x := e.scan(text)
	return x.credentials()
}

// ExtractJobCard returns the job card reference in text, or nil.
func (e *Extractor) ExtractJobCard(text string) *JobCardInfo {
	x := e.scan(text)
	return x.jobCard()
}

// ExtractPayload extracts everything relevant to label. Credentials and the
// job card are always attempted. Domain groups are extracted for print job
// labels only.
func (e *Extractor) ExtractPayload(text, label string) Extraction {
	x := e.scan(text)

	p := Payload{
		Credentials: x.credentials(),
		JobCard:     x.jobCard(),
	}

	if IsDomainLabel(label) {
		p.CompanyLogin = x.companyLogin()
		p.UserLogin = x.userLogin()
		p.JobDetails = x.jobDetails()
		p.JobSize = x.jobSize()
		p.Material = x.material()
		p.PrintingDetails = x.printingDetails()
		p.WastageFinishing = x.wastageFinishing()
	}

	return Extraction{Payload: p, Outcomes: x.outcomes}
}

// IsDomainLabel reports whether label carries print job groups.
func IsDomainLabel(label string) bool {
	return label == classifier.LabelPrintJobCard || label == classifier.LabelJobRequest
}

type scanner struct {
	*Extractor
	doc      *document
	outcomes []FieldOutcome
}

func (e *Extractor) scan(text string) *scanner {
	return &scanner{Extractor: e, doc: newDocument(text, e.headers)}
}

func (s *scanner) record(f field, matched bool, note string) {
	s.outcomes = append(s.outcomes, FieldOutcome{Group: f.group, Field: f.name, Matched: matched, Note: note})
}

func (s *scanner) text(f field, kind string) (string, bool) {
	v, _, ok := s.doc.scoped(f.re, kind)
	s.record(f, ok, "")
	return v, ok
}

func (s *scanner) number(f field, kind string, parse func(string) (float64, error)) (float64, bool) {
	raw, _, ok := s.doc.scoped(f.re, kind)
	if !ok {
		s.record(f, false, "")
		return 0, false
	}
	n, err := parse(raw)
	if err != nil {
		s.record(f, true, err.Error())
		return 0, true
	}
	s.record(f, true, "")
	return n, true
}

func (s *scanner) decimal(f field, kind string) (float64, bool) {
	return s.number(f, kind, parseNumber)
}

func (s *scanner) integer(f field, kind string) (int, bool) {
	n, ok := s.number(f, kind, parseNumber)
	return int(math.Round(n)), ok
}

// pair finds a name field and its password. The password comes from the
// section under the group's header, then from the first password line at or
// after the name, then from the first password anywhere.
func (s *scanner) pair(name, password field, kind string) (string, string, bool) {
	n, at, nok := s.doc.scoped(name.re, kind)
	s.record(name, nok, "")

	pw, _, pok := s.doc.inSection(password.re, kind)
	if !pok && at >= 0 {
		pw, _, pok = s.doc.find(password.re, at, len(s.doc.lines))
	}
	if !pok {
		pw, _, pok = s.doc.first(password.re)
	}

	note := ""
	if nok && !pok {
		note = "no password for " + name.group
	}
	s.record(password, pok, note)

	return n, pw, nok && pok
}

func (s *scanner) companyLogin() *CompanyLogin {
	name, pw, ok := s.pair(s.companyName, s.companyPassword, sectionCompany)
	if !ok {
		return nil
	}
	return &CompanyLogin{CompanyName: name, Password: pw}
}

func (s *scanner) userLogin() *UserLogin {
	name, pw, ok := s.pair(s.userName, s.userPassword, sectionUser)
	if !ok {
		return nil
	}
	return &UserLogin{Username: name, Password: pw}
}

func (s *scanner) credentials() *Credentials {
	var c Credentials
	var u, p, l bool
	c.Username, u = s.text(s.credUser, sectionCredentials)
	c.Password, p = s.text(s.credPassword, sectionCredentials)
	c.URL, l = s.text(s.credURL, sectionCredentials)
	if !u && !p && !l {
		return nil
	}
	return &c
}

func (s *scanner) jobCard() *JobCardInfo {
	var j JobCardInfo
	var n, d, c, a bool
	j.Number, n = s.text(s.cardNumber, sectionJobCard)
	j.Date, d = s.text(s.cardDate, sectionJobCard)
	j.Customer, c = s.text(s.cardCustomer, sectionJobCard)
	j.Amount, a = s.number(s.cardAmount, sectionJobCard, parseMoney)
	if !n && !d && !c && !a {
		return nil
	}
	return &j
}

func (s *scanner) jobDetails() *JobDetails {
	var j JobDetails
	var c, n, q bool
	j.Client, c = s.text(s.client, "job_details")
	j.JobName, n = s.text(s.jobName, "job_details")
	j.Quantity, q = s.integer(s.quantity, "job_details")
	if !c && !n && !q {
		return nil
	}
	return &j
}

func (s *scanner) jobSize() *JobSize {
	var j JobSize
	var h, l, w bool
	j.Height, h = s.decimal(s.height, "job_size")
	j.Length, l = s.decimal(s.length, "job_size")
	j.Width, w = s.decimal(s.width, "job_size")
	if !h && !l && !w {
		return nil
	}
	return &j
}

func (s *scanner) material() *Material {
	var m Material
	var q, g, ml, f bool
	m.Quality, q = s.text(s.quality, "material")
	m.GSM, g = s.decimal(s.gsm, "material")
	m.Mill, ml = s.text(s.mill, "material")
	m.Finish, f = s.text(s.finish, "material")
	if !q && !g && !ml && !f {
		return nil
	}
	return &m
}

func (s *scanner) printingDetails() *PrintingDetails {
	var p PrintingDetails
	var f, b, st bool
	p.FrontColors, f = s.integer(s.frontColors, "printing")
	p.BackColors, b = s.integer(s.backColors, "printing")
	p.Style, st = s.text(s.style, "printing")
	if !f && !b && !st {
		return nil
	}
	return &p
}

func (s *scanner) wastageFinishing() *WastageFinishing {
	var w WastageFinishing
	w.Wastage, _ = s.decimal(s.wastage, "wastage")
	w.MakeReady, _ = s.integer(s.makeReady, "wastage")
	w.Lamination, _ = s.text(s.lamination, "wastage")
	w.Finishing, _ = s.text(s.finishing, "wastage")
	return &w
}
