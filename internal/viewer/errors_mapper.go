package viewer

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/medvault/internal/common"
)

// Checked in order; the first match wins. ErrUploadFailure comes last
// since it wraps more specific causes.
var errorStatuses = []struct {
	err    error
	status int
}{
	{common.ErrNotFound, http.StatusNotFound},
	{common.ErrInvalidIdentifier, http.StatusUnauthorized},
	{common.ErrInvalidToken, http.StatusUnauthorized},
	{common.ErrDecryptionFailure, http.StatusUnprocessableEntity},
	{common.ErrMalformedEncoding, http.StatusUnprocessableEntity},
	{common.ErrDownloadFailure, http.StatusBadGateway},
	{common.ErrEncryptionFailure, http.StatusUnprocessableEntity},
	{common.ErrUploadFailure, http.StatusBadGateway},
}

func statusFromError(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// userMessage is what the caller sees; internal causes stay in the log.
func userMessage(err error) string {
	for _, sentinel := range []error{
		common.ErrNotFound,
		common.ErrDecryptionFailure,
		common.ErrDownloadFailure,
		common.ErrEncryptionFailure,
		common.ErrUploadFailure,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return http.StatusText(statusFromError(err))
}
