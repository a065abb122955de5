package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"NewsScanner/internal/domain"
)

type classificationPayload struct {
	CompanyName any `json:"company_name"`
	Symbol      any `json:"nsc"`
	Confidence  any `json:"confidence"`
	NewsDate    any `json:"news_date"`
}

// parseClassification decodes the model message content into a normalized classification.
func parseClassification(content string) (*domain.Classification, error) {
	cleaned := cleanJSONResponse(content)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty content", ErrNoClassification)
	}

	var payload classificationPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: decode content: %v", ErrNoClassification, err)
	}

	return &domain.Classification{
		CompanyName: stringValue(payload.CompanyName),
		Symbol:      strings.ToUpper(stringValue(payload.Symbol)),
		Confidence:  numberValue(payload.Confidence),
		NewsDate:    stringValue(payload.NewsDate),
	}, nil
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	// reasoning models prepend a <think> block
	if idx := strings.LastIndex(content, "</think>"); idx >= 0 {
		content = content[idx+len("</think>"):]
	}

	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func numberValue(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if t {
			f = 1
		}
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
