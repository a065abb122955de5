package llm

import "fmt"

const classificationPrompt = `Analyze this news headline for NSE-listed companies. Respond ONLY with valid JSON:
{
  "company_name": "string|null",
  "nsc": "string|null (format: NSE:SYMBOL)",
  "confidence": "number|null (0-1)",
  "news_date": "string|null (YYYY-MM-DD)"
}
Example valid response for NSE company:
{"company_name": "Reliance Industries", "nsc": "NSE:RELIANCE", "confidence": 0.92, "news_date": "2024-03-28"}
Example null response:
{"company_name": null, "nsc": null, "confidence": null, "news_date": null}
Headline: %s`

func buildPrompt(headline string, maxLen int) string {
	return fmt.Sprintf(classificationPrompt, truncateRunes(headline, maxLen))
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
