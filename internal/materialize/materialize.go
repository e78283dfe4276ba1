// Package materialize turns decrypted file bytes into a resource a viewer can
// render: a revocable object URL on the web platform and a self-contained
// data URI on native platforms.
//
// The platform difference is a capability difference only. Callers pick a
// ResourceMaterializer once at startup with New and never branch on the
// platform again.
package materialize

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medvault/internal/common"
)

// Platform identifies the runtime the viewer is running on.
type Platform string

const (
	PlatformWeb    Platform = "web"
	PlatformNative Platform = "native"
)

// Kind tells the viewer how to interpret ViewableResource.URI.
type Kind string

const (
	KindObjectURL Kind = "object-url"
	KindDataURI   Kind = "data-uri"
)

const defaultMimeType = "application/octet-stream"

// ViewableResource is what a viewer (image tag, PDF frame) is handed.
type ViewableResource struct {
	Kind     Kind
	URI      string
	MimeType string
}

// ResourceMaterializer produces a ViewableResource from plaintext bytes.
// Implementations perform no network I/O.
type ResourceMaterializer interface {
	Materialize(plaintext []byte, mimeType string) (ViewableResource, error)
}

// New returns the materializer for platform. The web variant needs a
// registry to hold object URLs; the native variant ignores it.
func New(platform Platform, registry *BlobRegistry) (ResourceMaterializer, error) {
	switch platform {
	case PlatformWeb:
		if registry == nil {
			return nil, fmt.Errorf("%w: web platform requires a blob registry", common.ErrUnsupportedPlatform)
		}
		return &WebMaterializer{registry: registry}, nil
	case PlatformNative:
		return &NativeMaterializer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedPlatform, platform)
	}
}

// ParsePlatform accepts the platform names used in configuration.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformWeb, PlatformNative:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedPlatform, s)
	}
}

func normalizeMimeType(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return defaultMimeType
	}
	return mimeType
}
