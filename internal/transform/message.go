package transform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Parameter bounds enforced by the form controls
const (
	MinSteps    = 1
	MaxSteps    = 50
	MinGuidance = 1.0
	MaxGuidance = 10.0
)

// StatusSuccess is the only status value treated as success
const StatusSuccess = "success"

var errNotObject = errors.New("not a JSON object")

// FallbackError is displayed when a failed response carries no error text
const FallbackError = "Unknown error occurred"

// Request asks the backend to generate an image
type Request struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt,omitempty"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
}

// Response is the backend's answer to a Request
type Response struct {
	Status   string `json:"status"`
	ImageURL string `json:"image_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Succeeded reports whether the response carries a usable image location
func (r Response) Succeeded() bool {
	return r.Status == StatusSuccess && r.ImageURL != ""
}

// FailureText returns the text to show the user for a failed response
func (r Response) FailureText() string {
	if r.Error != "" {
		return r.Error
	}
	return FallbackError
}

// Validate checks a request against the parameter bounds.
// The interactive form never calls this; its controls keep values in range.
func (r Request) Validate() error {
	var errs []error
	if r.Prompt == "" {
		errs = append(errs, errors.New("prompt must not be empty"))
	}
	if r.NumInferenceSteps < MinSteps || r.NumInferenceSteps > MaxSteps {
		errs = append(errs, fmt.Errorf("num_inference_steps must be between %d and %d, got %d",
			MinSteps, MaxSteps, r.NumInferenceSteps))
	}
	if r.GuidanceScale < MinGuidance || r.GuidanceScale > MaxGuidance {
		errs = append(errs, fmt.Errorf("guidance_scale must be between %.1f and %.1f, got %g",
			MinGuidance, MaxGuidance, r.GuidanceScale))
	}
	return errors.Join(errs...)
}

// EncodeRequest serializes a request to the text form sent over the wire
func EncodeRequest(r Request) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return data, nil
}

// DecodeResponse parses a text frame into a Response.
// Anything other than a JSON object is rejected.
func DecodeResponse(data []byte) (Response, error) {
	var resp Response
	if err := decodeObject(data, &resp); err != nil {
		return Response{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return resp, nil
}

// DecodeRequest parses a text frame into a Request.
// Fields absent from the frame keep their values from base.
// Like DecodeResponse it only accepts a JSON object.
func DecodeRequest(data []byte, base Request) (Request, error) {
	req := base
	if err := decodeObject(data, &req); err != nil {
		return Request{}, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

func decodeObject(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errNotObject
	}
	return json.Unmarshal(trimmed, v)
}
