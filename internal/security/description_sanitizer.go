// Package security sanitizes backend supplied content before it reaches the UI
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// descriptionSanitizer strips unsafe markup from course and chapter descriptions
type descriptionSanitizer struct {
	policy *bluemonday.Policy
}

// NewDescriptionSanitizer creates a sanitizer for instructor written descriptions.
// Allowed: p, br, ul, ol, li, strong, em, code, pre, blockquote and https links.
// Links get target="_blank" and rel="noopener noreferrer".
func NewDescriptionSanitizer() *descriptionSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &descriptionSanitizer{
		policy: p,
	}
}

// Sanitize returns description with every disallowed tag and attribute removed
func (s *descriptionSanitizer) Sanitize(description string) string {
	return s.policy.Sanitize(description)
}
