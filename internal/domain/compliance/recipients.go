package compliance

import (
	"net/mail"
	"strings"
)

// MergeRecipients trims and de-duplicates addresses case-insensitively,
// keeping the first spelling seen and the original order. Entries that are
// not valid RFC 5322 addresses are skipped.
func MergeRecipients(groups ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, group := range groups {
		for _, addr := range group {
			trimmed := strings.TrimSpace(addr)
			if trimmed == "" {
				continue
			}
			parsed, err := mail.ParseAddress(trimmed)
			if err != nil {
				continue
			}
			key := strings.ToLower(parsed.Address)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, parsed.Address)
		}
	}
	return out
}
