package api

import (
	"context"
	"net/http"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/errors"
)

// Upload actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// UploadResult describes one upload attempt.
type UploadResult struct {
	OK         bool
	Action     string
	StatusCode int
	Body       string
	Err        error
	// Retryable is set when a later attempt may succeed.
	Retryable bool
}

// Upload creates the sample, or updates it when the service already
// has it. Failures are reported in the result, never returned.
func (c *Client) Upload(ctx context.Context, sampleID string, payload any) UploadResult {
	const op errors.Op = "api.Upload"

	exists, err := c.SampleExists(ctx, sampleID)
	if err != nil {
		return UploadResult{Err: err, Retryable: IsRetryable(err)}
	}

	method, target, action := http.MethodPost, c.BaseURL+"/samples", ActionCreated
	if exists {
		method, target, action = http.MethodPut, c.samplePath(sampleID), ActionUpdated
	}

	resp, body, err := c.do(ctx, method, target, payload)
	if err != nil {
		err = errors.E(op, errors.KindNetwork, err)
		return UploadResult{Action: action, Err: err, Retryable: IsRetryable(err)}
	}

	result := UploadResult{
		Action:     action,
		StatusCode: resp.StatusCode,
		Body:       body,
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		result.OK = true
	default:
		result.Err = errors.E(op, errors.KindNetwork, &StatusError{Code: resp.StatusCode, Body: body})
		result.Retryable = IsRetryable(result.Err)
	}
	return result
}
