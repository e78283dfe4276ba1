package services

import (
	"mime"
	"strings"
)

// SensitivePolicy decides which MIME types are encrypted before upload.
// Anything it does not match is stored as-is.
//
// NOTE: the default set only covers PDFs and images. Whether other types
// should also be encrypted is a product decision; the set is configurable.
type SensitivePolicy struct {
	exact    map[string]struct{}
	families map[string]struct{}
}

// NewSensitivePolicy builds a policy from patterns such as "application/pdf"
// or "image/*". Matching ignores case and MIME parameters.
func NewSensitivePolicy(patterns []string) *SensitivePolicy {
	p := &SensitivePolicy{
		exact:    make(map[string]struct{}),
		families: make(map[string]struct{}),
	}
	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if family, ok := strings.CutSuffix(pattern, "/*"); ok && family != "" {
			p.families[family] = struct{}{}
			continue
		}
		if pattern != "" {
			p.exact[pattern] = struct{}{}
		}
	}
	return p
}

// IsSensitive reports whether content of mimeType must be encrypted.
func (p *SensitivePolicy) IsSensitive(mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	if _, ok := p.exact[mt]; ok {
		return true
	}
	family, _, ok := strings.Cut(mt, "/")
	if !ok {
		return false
	}
	_, ok = p.families[family]
	return ok
}
