package content

import (
	"fmt"
	"strings"
)

// NormalizeDomain prepares an allow-list entry for storage: strips a
// leading "@", lowercases, and rejects values without a dot.
func NormalizeDomain(raw string) (string, error) {
	domain := strings.TrimSpace(strings.ToLower(raw))
	domain = strings.TrimPrefix(domain, "@")
	if domain == "" {
		return "", fmt.Errorf("%w: domain is required", ErrInvalidInput)
	}
	if !strings.Contains(domain, ".") {
		return "", fmt.Errorf("%w: domain %q has no dot", ErrInvalidInput, domain)
	}
	return domain, nil
}

// MatchDomain reports whether the email falls under an allow-list entry.
// Matching is a case-insensitive suffix check, exactly as registration
// has always done it. A suffix like "ail.fr" therefore also matches
// "gmail.fr" addresses; pick entries carefully.
func MatchDomain(email, domain string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	domain = strings.ToLower(strings.TrimSpace(domain))
	if email == "" || domain == "" {
		return false
	}
	return strings.HasSuffix(email, domain)
}

// FindDomain returns the first allow-list entry matching the email.
func FindDomain(domains []AllowedDomain, email string) (AllowedDomain, bool) {
	for _, d := range domains {
		if MatchDomain(email, d.Domain) {
			return d, true
		}
	}
	return AllowedDomain{}, false
}
