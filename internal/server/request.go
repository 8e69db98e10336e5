package server

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/muurk/stylegen/internal/transform"
)

// Request bounds accepted by the backend
const (
	MaxPromptLength = 1000
	MaxSteps        = 100
	MaxGuidance     = 20.0
)

// Values used for fields a request leaves out
const (
	DefaultSteps    = 50
	DefaultGuidance = 7.5
)

// parseRequest decodes and checks a request frame
func parseRequest(data []byte) (transform.Request, error) {
	req, err := transform.DecodeRequest(data, transform.Request{
		NumInferenceSteps: DefaultSteps,
		GuidanceScale:     DefaultGuidance,
	})
	if err != nil {
		return transform.Request{}, err
	}
	if err := ValidateRequest(req); err != nil {
		return transform.Request{}, err
	}
	return req, nil
}

// ValidateRequest checks a request against the backend bounds
func ValidateRequest(req transform.Request) error {
	var errs []error

	if n := utf8.RuneCountInString(req.Prompt); n < 1 || n > MaxPromptLength {
		errs = append(errs, fmt.Errorf("prompt must be 1-%d characters, got %d", MaxPromptLength, n))
	}
	if req.NumInferenceSteps < transform.MinSteps || req.NumInferenceSteps > MaxSteps {
		errs = append(errs, fmt.Errorf("num_inference_steps must be %d-%d, got %d",
			transform.MinSteps, MaxSteps, req.NumInferenceSteps))
	}
	if req.GuidanceScale < transform.MinGuidance || req.GuidanceScale > MaxGuidance {
		errs = append(errs, fmt.Errorf("guidance_scale must be %.1f-%.1f, got %g",
			transform.MinGuidance, MaxGuidance, req.GuidanceScale))
	}

	return errors.Join(errs...)
}
