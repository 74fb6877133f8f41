package service

import (
	"strings"
	"unicode/utf8"

	"classpulse/internal/model"
)

const (
	maxEvidencePoints   = 3
	maxPointKeywords    = 3
	maxEvidenceQuoteLen = 200
)

// ExtractEvidence finds literal supporting quotes for analysis points by
// keyword overlap. For each of the first 3 points, the first 3 tokens of the
// point are matched case-insensitively against responses in input order; the
// first match becomes the evidence quote. A point without a match is skipped.
// This is a heuristic; false negatives are expected.
func ExtractEvidence(responses []model.TextResponse, points []string) []model.Evidence {
	evidence := make([]model.Evidence, 0, maxEvidencePoints)

	limit := len(points)
	if limit > maxEvidencePoints {
		limit = maxEvidencePoints
	}

	for _, point := range points[:limit] {
		keywords := strings.Fields(strings.ToLower(point))
		if len(keywords) > maxPointKeywords {
			keywords = keywords[:maxPointKeywords]
		}
		if len(keywords) == 0 {
			continue
		}

		for _, r := range responses {
			if r.Text == "" {
				continue
			}
			text := strings.ToLower(r.Text)
			if containsAny(text, keywords) {
				evidence = append(evidence, model.Evidence{
					Point:      point,
					Example:    truncateQuote(r.Text, maxEvidenceQuoteLen),
					ResponseID: r.ResponseID,
				})
				break
			}
		}
	}
	return evidence
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// truncateQuote cuts at a rune boundary so a multi-byte character straddling
// the limit is dropped whole, never split.
func truncateQuote(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
