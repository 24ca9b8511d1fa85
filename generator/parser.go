package generator

import (
	"strings"

	"github.com/postpilothq/postpilot/utils"
)

const (
	PostDelimiter     = "===POST==="
	HashtagsDelimiter = "===HASHTAGS==="
	StyleDelimiter    = "===STYLE==="
)

// ParseVariants parses the model's delimited response into at most want
// variants plus the optional trailing style analysis. The parse is lenient:
// fewer sections than requested is a partial result, not an error, and a
// malformed section is skipped rather than aborting the whole response.
func ParseVariants(raw string, want int) ([]Variant, string) {
	styleAnalysis := ""
	if idx := strings.Index(raw, StyleDelimiter); idx >= 0 {
		styleAnalysis = strings.TrimSpace(raw[idx+len(StyleDelimiter):])
		raw = raw[:idx]
	}

	variants := []Variant{}
	for _, section := range strings.Split(raw, PostDelimiter) {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		if len(variants) == want {
			break
		}

		content := section
		hashtags := []string{}
		if idx := strings.Index(section, HashtagsDelimiter); idx >= 0 {
			content = strings.TrimSpace(section[:idx])
			hashtags = utils.ParseHashtags(section[idx+len(HashtagsDelimiter):])
		}
		if content == "" {
			continue
		}

		variants = append(variants, Variant{
			Content:  content,
			Hook:     firstLine(content),
			Hashtags: hashtags,
		})
	}

	return variants, styleAnalysis
}

func firstLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
