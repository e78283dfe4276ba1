package materialize

import (
	"strings"

	"github.com/dmitrijs2005/medvault/internal/codec"
)

// NativeMaterializer renders plaintext as a data URI. The URI carries the
// whole file, so nothing needs to be released afterwards.
type NativeMaterializer struct{}

// Materialize returns data:<mimeType>;base64,<payload>.
func (m *NativeMaterializer) Materialize(plaintext []byte, mimeType string) (ViewableResource, error) {
	mimeType = normalizeMimeType(mimeType)

	var sb strings.Builder
	sb.WriteString("data:")
	sb.WriteString(mimeType)
	sb.WriteString(";base64,")
	sb.WriteString(codec.BytesToBase64(plaintext))

	return ViewableResource{Kind: KindDataURI, URI: sb.String(), MimeType: mimeType}, nil
}
