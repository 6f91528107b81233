package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

var testSchema = &Schema{
	Name:        "test-step",
	Description: "A single learning step",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":    map[string]any{"type": "string"},
			"question": map[string]any{"type": "string"},
		},
		"required":             []any{"title", "question"},
		"additionalProperties": false,
	},
}

func TestValidateResponse_Valid(t *testing.T) {
	raw := json.RawMessage(`{"title": "Roots", "question": "Why do plants need roots?"}`)
	if err := validateResponse(testSchema, raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateResponse_MissingRequired(t *testing.T) {
	raw := json.RawMessage(`{"title": "Roots"}`)
	err := validateResponse(testSchema, raw)
	var invResp *ErrInvalidResponse
	if !errors.As(err, &invResp) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestValidateResponse_NotJSON(t *testing.T) {
	err := validateResponse(testSchema, json.RawMessage(`not json`))
	var invResp *ErrInvalidResponse
	if !errors.As(err, &invResp) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Fatalf("nil schema should not validate, got %v", err)
	}
}

func TestDecodeStructured_FencedAndValidated(t *testing.T) {
	text := "```json\n{\"title\": \"Roots\", \"question\": \"Why roots?\"}\n```"
	got, err := DecodeStructured(testSchema, text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(got, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Title != "Roots" {
		t.Fatalf("unexpected title: %q", out.Title)
	}
}
