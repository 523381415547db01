package command

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitRunPattern = regexp.MustCompile(`[0-9]+`)
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	amountPattern   = regexp.MustCompile(`(?i)(?:₹|\brupees\b|\brs\b\.?)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	namePattern     = regexp.MustCompile(`(?i:\b(?:named|called|for)\b)\s+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*)`)
	limitAfterTop   = regexp.MustCompile(`(?i)\btop\s*([0-9]+)`)
	limitBeforeTop  = regexp.MustCompile(`(?i)([0-9]+)\s*top\b`)
)

// ExtractEntities pulls structured fields out of raw text. Each rule is
// independent; unmatched fields stay zero. It never fails.
func ExtractEntities(text string) EntityBag {
	entities := EntityBag{Limit: DefaultLimit}

	// Phone: first run of exactly 10 consecutive digits. Longer or shorter
	// runs are not phone numbers.
	for _, run := range digitRunPattern.FindAllString(text, -1) {
		if len(run) == 10 {
			entities.Phone = run
			break
		}
	}

	if email := emailPattern.FindString(text); email != "" {
		entities.Email = email
	}

	if m := amountPattern.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if amount, err := strconv.ParseFloat(raw, 64); err == nil {
			entities.Amount = amount
		}
	}

	if m := namePattern.FindStringSubmatch(text); m != nil {
		entities.Name = strings.TrimSpace(m[1])
	}

	if m := limitAfterTop.FindStringSubmatch(text); m != nil {
		if limit, err := strconv.Atoi(m[1]); err == nil {
			entities.Limit = limit
		}
	} else if m := limitBeforeTop.FindStringSubmatch(text); m != nil {
		if limit, err := strconv.Atoi(m[1]); err == nil {
			entities.Limit = limit
		}
	}

	return entities
}
