package extractor_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/classifier"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/extractor"
)

const jobCardBody = `Company Login
Company Name: indusweb
Password: 123

User Login
Username: akrati
Password: 123

Job Details
Client: Akrati Offset
Job Name: Carton 4 colour
Quantity: 10000

Job Size
Height: 120 mm
Length = 80
Width: 45.5

Material
Paper Quality: SBS
GSM: 300
Mill: ITC
Finish: Gloss

Printing Details
Front Colors: 4
Back Colors: 0
Style: Offset
`

func TestScenarioExtraction(t *testing.T) {
	e := extractor.New()
	x := e.ExtractPayload(jobCardBody, classifier.LabelPrintJobCard)
	p := x.Payload

	if p.CompanyLogin == nil || *p.CompanyLogin != (extractor.CompanyLogin{CompanyName: "indusweb", Password: "123"}) {
		t.Errorf("company login = %+v", p.CompanyLogin)
	}
	if p.UserLogin == nil || p.UserLogin.Username != "akrati" || p.UserLogin.Password != "123" {
		t.Errorf("user login = %+v", p.UserLogin)
	}
	if p.JobDetails == nil || p.JobDetails.Client != "Akrati Offset" || p.JobDetails.Quantity != 10000 {
		t.Errorf("job details = %+v", p.JobDetails)
	}
	if p.JobSize == nil || *p.JobSize != (extractor.JobSize{Height: 120, Length: 80, Width: 45.5}) {
		t.Errorf("job size = %+v", p.JobSize)
	}
	if p.Material == nil || p.Material.Quality != "SBS" || p.Material.GSM != 300 || p.Material.Finish != "Gloss" {
		t.Errorf("material = %+v", p.Material)
	}
	if p.PrintingDetails == nil || p.PrintingDetails.FrontColors != 4 || p.PrintingDetails.Style != "Offset" {
		t.Errorf("printing = %+v", p.PrintingDetails)
	}
}

func TestWastageFinishingAlwaysPresent(t *testing.T) {
	e := extractor.New()
	x := e.ExtractPayload("Client: someone", classifier.LabelJobRequest)

	if x.Payload.WastageFinishing == nil {
		t.Fatal("wastage/finishing group missing")
	}
	if *x.Payload.WastageFinishing != (extractor.WastageFinishing{}) {
		t.Errorf("expected all-default group, got %+v", x.Payload.WastageFinishing)
	}
	if x.Payload.JobSize != nil {
		t.Errorf("job size should be absent, got %+v", x.Payload.JobSize)
	}
}

func TestJobSizeIffMemberPresent(t *testing.T) {
	e := extractor.New()

	tests := []struct {
		name string
		text string
		want *extractor.JobSize
	}{
		{"none", "Client: x", nil},
		{"height only", "Height: 12", &extractor.JobSize{Height: 12}},
		{"width only", "width = 7.5 cm", &extractor.JobSize{Width: 7.5}},
		{"unparseable", "Length: unknown", &extractor.JobSize{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ExtractPayload(tt.text, classifier.LabelPrintJobCard).Payload.JobSize
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNumericFailureAnnotated(t *testing.T) {
	e := extractor.New()
	x := e.ExtractPayload("Quantity: lots", classifier.LabelJobRequest)

	if x.Payload.JobDetails == nil || x.Payload.JobDetails.Quantity != 0 {
		t.Fatalf("job details = %+v", x.Payload.JobDetails)
	}

	notes := x.Annotations()
	if len(notes) != 1 || notes[0].Field != "quantity" || !strings.Contains(notes[0].Note, "lots") {
		t.Errorf("annotations = %+v", notes)
	}
}

func TestIdempotent(t *testing.T) {
	e := extractor.New()
	first := e.ExtractPayload(jobCardBody, classifier.LabelPrintJobCard)
	for range 5 {
		if got := e.ExtractPayload(jobCardBody, classifier.LabelPrintJobCard); !reflect.DeepEqual(got, first) {
			t.Fatal("extraction differs between calls")
		}
	}
}

func TestPairRequiresPassword(t *testing.T) {
	e := extractor.New()
	x := e.ExtractPayload("Company Name: acme\nClient: x", classifier.LabelPrintJobCard)

	if x.Payload.CompanyLogin != nil {
		t.Errorf("company login without password: %+v", x.Payload.CompanyLogin)
	}
}

func TestPasswordPrecedence(t *testing.T) {
	e := extractor.New()

	tests := []struct {
		name        string
		text        string
		wantCompany string
		wantUser    string
	}{
		{
			name:        "section scoped",
			text:        "Company Login\nCompany Name: acme\nPassword: c-pass\n\nUser Login\nUsername: op\nPassword: u-pass\n",
			wantCompany: "c-pass",
			wantUser:    "u-pass",
		},
		{
			name:        "nearest following without headers",
			text:        "Company Name: acme\nPassword: c-pass\nUsername: op\nPassword: u-pass\n",
			wantCompany: "c-pass",
			wantUser:    "u-pass",
		},
		{
			name:        "first occurrence fallback",
			text:        "Password: shared\nCompany Name: acme\nUsername: op\n",
			wantCompany: "shared",
			wantUser:    "shared",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := e.ExtractPayload(tt.text, classifier.LabelPrintJobCard).Payload
			if p.CompanyLogin == nil || p.CompanyLogin.Password != tt.wantCompany {
				t.Errorf("company = %+v, want password %s", p.CompanyLogin, tt.wantCompany)
			}
			if p.UserLogin == nil || p.UserLogin.Password != tt.wantUser {
				t.Errorf("user = %+v, want password %s", p.UserLogin, tt.wantUser)
			}
		})
	}
}

func TestFirstOccurrenceWins(t *testing.T) {
	e := extractor.New()
	p := e.ExtractPayload("Client: first\nClient: second", classifier.LabelJobRequest).Payload

	if p.JobDetails.Client != "first" {
		t.Errorf("client = %q", p.JobDetails.Client)
	}
}

func TestNonDomainLabelSkipsGroups(t *testing.T) {
	e := extractor.New()
	p := e.ExtractPayload(jobCardBody, classifier.LabelCredentialUpdate).Payload

	if p.CompanyLogin != nil || p.JobDetails != nil || p.WastageFinishing != nil {
		t.Error("domain groups extracted for non-domain label")
	}
	if p.Credentials == nil {
		t.Error("credentials must always be attempted")
	}
}

func TestExtractCredentials(t *testing.T) {
	e := extractor.New()
	c := e.ExtractCredentials("Please update\nLogin: ops@acme.test\nPassword = n3w\nPortal URL: https://erp.acme.test\n")

	want := &extractor.Credentials{Username: "ops@acme.test", Password: "n3w", URL: "https://erp.acme.test"}
	if !reflect.DeepEqual(c, want) {
		t.Errorf("got %+v, want %+v", c, want)
	}

	if e.ExtractCredentials("nothing here") != nil {
		t.Error("expected nil credentials")
	}
}

func TestExtractJobCardMoney(t *testing.T) {
	e := extractor.New()
	card := e.ExtractJobCard("Job Card No: JC-1042\nCustomer: Akrati Offset\nAmount: Rs. 1,25,000.50\n")

	if card == nil {
		t.Fatal("job card missing")
	}
	if card.Number != "JC-1042" || card.Customer != "Akrati Offset" || card.Amount != 125000.50 {
		t.Errorf("job card = %+v", card)
	}
}

func TestSecrets(t *testing.T) {
	e := extractor.New()
	p := e.ExtractPayload(jobCardBody, classifier.LabelPrintJobCard).Payload

	secrets := p.Secrets()
	if len(secrets) == 0 {
		t.Fatal("no secrets collected")
	}
	for _, s := range secrets {
		if s != "123" {
			t.Errorf("unexpected secret %q", s)
		}
	}
}
