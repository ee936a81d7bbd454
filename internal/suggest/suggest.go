// Package suggest asks Gemini to propose category mappings for statement
// labels the static tables could not classify. Suggestions are advisory:
// they are printed for review and never applied automatically.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/ohalushko/moneta/internal/domain"
)

// DefaultModelName is the Gemini model used for mapping suggestions.
const DefaultModelName = "gemini-2.0-flash"

// Mapping is one proposed label-to-category assignment.
type Mapping struct {
	Label      string `json:"label"`
	CategoryID string `json:"category_id"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason"`
}

// SuggestMappings sends the unmapped labels and the category taxonomy to
// the model and returns its proposed assignments.
func SuggestMappings(ctx context.Context, labels []string, categories []domain.Category) ([]Mapping, error) {
	if len(labels) == 0 {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("SuggestMappings: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(labels, categories)},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, DefaultModelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("SuggestMappings: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("SuggestMappings: empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var mappings []Mapping
	if err := json.Unmarshal([]byte(clean), &mappings); err != nil {
		return nil, fmt.Errorf("SuggestMappings: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}

	return validate(mappings, categories), nil
}

func buildPrompt(labels []string, categories []domain.Category) string {
	var b strings.Builder

	b.WriteString("You map bank statement category labels (Ukrainian or English free text) to a fixed category taxonomy.\n\n")
	b.WriteString("Taxonomy (id: name):\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "- %s: %s\n", c.ID, c.Name)
	}

	b.WriteString("\nLabels to map:\n")
	for _, label := range labels {
		fmt.Fprintf(&b, "- %s\n", label)
	}

	b.WriteString("\nOutput STRICT JSON only: a JSON array of objects with fields\n")
	b.WriteString("\"label\" (string, exactly as given), \"category_id\" (string, one of the taxonomy ids),\n")
	b.WriteString("\"confidence\" (\"high\", \"medium\" or \"low\") and \"reason\" (short string).\n")
	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n")
	b.WriteString("Output must begin with \"[\" and end with \"]\".\n")

	return b.String()
}

// validate drops mappings pointing at categories outside the taxonomy.
func validate(mappings []Mapping, categories []domain.Category) []Mapping {
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	valid := make([]Mapping, 0, len(mappings))
	for _, m := range mappings {
		if m.Label == "" || !known[m.CategoryID] {
			continue
		}
		valid = append(valid, m)
	}
	return valid
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only from the first '[' to the last ']' if junk remains.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = s[start : end+1]
			s = strings.TrimSpace(s)
		}
	}

	return s
}
