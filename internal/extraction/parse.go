package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parsePartyJSON parses the JSON response from an LLM provider. Models
// sometimes wrap the object in markdown fences or surrounding prose, so
// the object is sliced out between the first { and the last }.
func parsePartyJSON(text string) (*PartyFields, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var fields PartyFields
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	fields.CompanyName = strings.TrimSpace(fields.CompanyName)
	fields.AddressLine1 = strings.TrimSpace(fields.AddressLine1)
	fields.AddressLine2 = strings.TrimSpace(fields.AddressLine2)
	fields.Email = strings.TrimSpace(fields.Email)
	fields.VATNumber = strings.TrimSpace(fields.VATNumber)

	return &fields, nil
}
