package utils

import (
	"math/rand"
	"os"
	"strings"

	"github.com/postpilothq/postpilot/utils/dotenv"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// RandomAlphabetString generates a random lowercase alphabet string of the
// given length.
func RandomAlphabetString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

func IsProdEnv() bool {
	return os.Getenv("POSTPILOT_ENV") == dotenv.ProdEnv
}

// FormatHashtags renders a list of tags into one display string, prefixing
// each tag with a single '#'. Tags already carrying '#' prefixes are
// normalized instead of double-prefixed.
func FormatHashtags(tags []string) string {
	formatted := []string{}
	for _, tag := range tags {
		tag = strings.TrimLeft(strings.TrimSpace(tag), "#")
		if tag == "" {
			continue
		}
		formatted = append(formatted, "#"+tag)
	}
	return strings.Join(formatted, " ")
}

// ParseHashtags is the inverse of FormatHashtags. Duplicate tags are dropped,
// order of first appearance is kept.
func ParseHashtags(s string) []string {
	tags := []string{}
	for _, field := range strings.Fields(s) {
		tag := strings.TrimLeft(field, "#")
		if tag == "" || ContainsString(tags, tag) {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}
