package automation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/workflow"
)

// Form targets on the ERP job card screens.
const (
	targetCompanyName = "#company-name"
	targetCompanyPass = "#company-password"
	targetCompanyGo   = "#company-login"
	targetUsername    = "#username"
	targetUserPass    = "#user-password"
	targetUserGo      = "#user-login"
	targetJobCardNew  = "/job-cards/new"
	targetClient      = "#client"
	targetJobName     = "#job-name"
	targetQuantity    = "#quantity"
	targetHeight      = "#size-height"
	targetLength      = "#size-length"
	targetWidth       = "#size-width"
	targetQuality     = "#material-quality"
	targetGSM         = "#material-gsm"
	targetMill        = "#material-mill"
	targetFinish      = "#material-finish"
	targetFrontColors = "#front-colors"
	targetBackColors  = "#back-colors"
	targetPrintStyle  = "#print-style"
	targetWastage     = "#wastage"
	targetMakeReady   = "#make-ready"
	targetLamination  = "#lamination"
	targetFinishing   = "#finishing"
	targetSave        = "#save-job-card"
)

var ErrMissingGroup = errors.New("request has no matching fields")

type field struct {
	target string
	value  string
}

// fill enters each non-empty field, stopping at the first session error.
func fill(ctx context.Context, s workflow.Session, fields ...field) (int, error) {
	n := 0
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := s.Fill(ctx, f.target, f.value); err != nil {
			return n, fmt.Errorf("fill %s: %w", f.target, err)
		}
		n++
	}
	return n, nil
}

func decimal(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func integer(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func filled(n int) workflow.Outcome {
	return workflow.Succeeded(fmt.Sprintf("filled %d fields", n))
}

type openPortal struct {
	fallback string
}

func (o openPortal) Execute(ctx context.Context, s workflow.Session, in workflow.StepInput) (workflow.Outcome, error) {
	url := o.fallback
	if in.Payload != nil && in.Payload.Credentials != nil && in.Payload.Credentials.URL != "" {
		url = in.Payload.Credentials.URL
	}
	if url == "" {
		return workflow.Outcome{}, errors.New("no portal url configured or supplied")
	}
	if err := s.Navigate(ctx, url); err != nil {
		return workflow.Outcome{}, fmt.Errorf("navigate: %w", err)
	}
	return workflow.Succeeded("opened " + url), nil
}

func companyLogin(ctx context.Context, s workflow.Session, in workflow.StepInput) (workflow.Outcome, error) {
	if in.Payload == nil || in.Payload.CompanyLogin == nil {
		return workflow.Outcome{}, fmt.Errorf("company login: %w", ErrMissingGroup)
	}
	login := in.Payload.CompanyLogin
	if _, err := fill(ctx, s,
		field{targetCompanyName, login.CompanyName},
		field{targetCompanyPass, login.Password},
	); err != nil {
		return workflow.Outcome{}, err
	}
	if err := s.Click(ctx, targetCompanyGo); err != nil {
		return workflow.Outcome{}, fmt.Errorf("submit company login: %w", err)
	}
	return workflow.Succeeded("signed in as " + login.CompanyName), nil
}

func userLogin(ctx context.Context, s workflow.Session, in workflow.StepInput) (workflow.Outcome, error) {
	if in.Payload == nil || in.Payload.UserLogin == nil {
		return workflow.Outcome{}, fmt.Errorf("user login: %w", ErrMissingGroup)
	}
	login := in.Payload.UserLogin
	if _, err := fill(ctx, s,
		field{targetUsername, login.Username},
		field{targetUserPass, login.Password},
	); err != nil {
		return workflow.Outcome{}, err
	}
	if err := s.Click(ctx, targetUserGo); err != nil {
		return workflow.Outcome{}, fmt.Errorf("submit user login: %w", err)
	}
	return workflow.Succeeded("signed in as " + login.Username), nil
}

func openJobCard(ctx context.Context, s workflow.Session, _ workflow.StepInput) (workflow.Outcome, error) {
	if err := s.Navigate(ctx, targetJobCardNew); err != nil {
		return workflow.Outcome{}, fmt.Errorf("navigate: %w", err)
	}
	return workflow.Succeeded("job card opened"), nil
}

func jobDetails(ctx context.Context, s workflow.Session, in workflow.StepInput) (workflow.Outcome, error) {
	if in.Payload == nil || in.Payload.JobDetails == nil {
		return workflow.Outcome{}, fmt.Errorf("job details: %w", ErrMissingGroup)
	}
	d := in.Payload.JobDetails
	n, err := fill(ctx, s,
		field{targetClient, d.Client},
		field{targetJobName, d.JobName},
		field{targetQuantity, integer(d.Quantity)},
	)
	if err != nil {
		return workflow.Outcome{}, err
	}
	return filled(n), nil
}

func jobSize(ctx context.Context, s workflow.Session, in workflow.StepInput) (workflow.Outcome, error) {
	if in.Payload == nil || in.Payload.JobSize == nil {
		return workflow.Skipped("no job size"), nil
	}
	z := in.Payload.JobSize
	n, err := fill(ctx, s,
		field{targetHeight, decimal(z.Height)},
		field{targetLength, decimal(z.Length)},
		field{targetWidth, decimal(z.Width)},
	)
	if err != nil {
		return workflow.Outcome{}, err
	}
	return filled(n), nil
}

func material(ctx context.Context, s workflow.Session, in workflow.StepInput) (workflow.Outcome, error) {
	if in.Payload == nil || in.Payload.Material == nil {
		return workflow.Skipped("no material"), nil
	}
	m := in.Payload.Material
	n, err := fill(ctx, s,
		field{targetQuality, m.Quality},
		field{targetGSM, decimal(m.GSM)},
		field{targetMill, m.Mill},
		field{targetFinish, m.Finish},
	)
	if err != nil {
		return workflow.Outcome{}, err
	}
	return filled(n), nil
}

func printingDetails(ctx context.Context, s workflow.Session, in workflow.StepInput) (workflow.Outcome, error) {
	if in.Payload == nil || in.Payload.PrintingDetails == nil {
		return workflow.Skipped("no printing details"), nil
	}
	p := in.Payload.PrintingDetails
	n, err := fill(ctx, s,
		field{targetFrontColors, integer(p.FrontColors)},
		field{targetBackColors, integer(p.BackColors)},
		field{targetPrintStyle, p.Style},
	)
	if err != nil {
		return workflow.Outcome{}, err
	}
	return filled(n), nil
}

func wastageFinishing(ctx context.Context, s workflow.Session, in workflow.StepInput) (workflow.Outcome, error) {
	if in.Payload == nil || in.Payload.WastageFinishing == nil {
		return workflow.Skipped("no wastage or finishing"), nil
	}
	w := in.Payload.WastageFinishing
	n, err := fill(ctx, s,
		field{targetWastage, decimal(w.Wastage)},
		field{targetMakeReady, integer(w.MakeReady)},
		field{targetLamination, w.Lamination},
		field{targetFinishing, w.Finishing},
	)
	if err != nil {
		return workflow.Outcome{}, err
	}
	return filled(n), nil
}

func saveJobCard(ctx context.Context, s workflow.Session, _ workflow.StepInput) (workflow.Outcome, error) {
	if err := s.Click(ctx, targetSave); err != nil {
		return workflow.Outcome{}, fmt.Errorf("save: %w", err)
	}
	return workflow.Succeeded("job card saved"), nil
}
