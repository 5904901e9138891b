package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/extractor"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/jobs"
)

// splitPayload serializes p into the job's two payload columns: the
// credentials column holds every login group, the job card column holds
// the rest. A column with no groups stays NULL.
func splitPayload(p extractor.Payload) (credentials, jobCard *string, err error) {
	secret := extractor.Payload{
		Credentials:  p.Credentials,
		CompanyLogin: p.CompanyLogin,
		UserLogin:    p.UserLogin,
	}
	card := p
	card.Credentials, card.CompanyLogin, card.UserLogin = nil, nil, nil

	if credentials, err = encodeGroups(secret); err != nil {
		return nil, nil, err
	}
	if jobCard, err = encodeGroups(card); err != nil {
		return nil, nil, err
	}
	return credentials, jobCard, nil
}

func encodeGroups(p extractor.Payload) (*string, error) {
	if p == (extractor.Payload{}) {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	s := string(data)
	return &s, nil
}

// joinPayload rebuilds the payload stored on j.
func joinPayload(j *jobs.Job) (*extractor.Payload, error) {
	var p extractor.Payload
	var errs []error
	for _, col := range []*string{j.Credentials, j.JobCard} {
		if col == nil {
			continue
		}
		if err := json.Unmarshal([]byte(*col), &p); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}
