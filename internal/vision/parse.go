package vision

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Description is the structured output of one vision-model call.
type Description struct {
	ArtName  string `json:"art_name"`
	ArtStyle string `json:"art_style"`
	Region   string `json:"region"`
	Question string `json:"question,omitempty"`
	English  string `json:"english"`
}

// ParseError reports vision-model output that violates the expected JSON
// contract. It is an internal failure, not a client error.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return "parse generation output: " + e.Reason
}

const descriptionSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["english"],
  "properties": {
    "art_name": {"type": "string"},
    "art_style": {"type": "string"},
    "region": {"type": "string"},
    "question": {"type": "string"},
    "english": {"type": "string", "minLength": 1}
  }
}`

var descriptionSchema = jsonschema.MustCompileString("description.schema.json", descriptionSchemaJSON)

var codeFenceRe = regexp.MustCompile("```(?:json)?")

// parseDescription strips markdown code fences, decodes the JSON payload and
// validates it against the output schema.
func parseDescription(raw string) (Description, error) {
	cleaned := codeFenceRe.ReplaceAllString(raw, "")
	cleaned = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(cleaned), "`"))
	if cleaned == "" {
		return Description{}, &ParseError{Reason: "empty model output", Raw: raw}
	}

	var payload any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return Description{}, &ParseError{Reason: fmt.Sprintf("invalid JSON: %v", err), Raw: raw}
	}
	if err := descriptionSchema.Validate(payload); err != nil {
		return Description{}, &ParseError{Reason: fmt.Sprintf("schema violation: %v", err), Raw: raw}
	}

	var desc Description
	if err := json.Unmarshal([]byte(cleaned), &desc); err != nil {
		return Description{}, &ParseError{Reason: fmt.Sprintf("decode fields: %v", err), Raw: raw}
	}

	desc.ArtName = strings.TrimSpace(desc.ArtName)
	desc.ArtStyle = strings.TrimSpace(desc.ArtStyle)
	desc.Region = strings.TrimSpace(desc.Region)
	desc.Question = strings.TrimSpace(desc.Question)
	desc.English = strings.TrimSpace(desc.English)

	if desc.English == "" {
		return Description{}, &ParseError{Reason: "english text is blank", Raw: raw}
	}

	// Metadata defaults match the upstream prompt contract.
	if desc.ArtName == "" {
		desc.ArtName = "Unknown Art"
	}
	if desc.Region == "" {
		desc.Region = "India"
	}

	return desc, nil
}
