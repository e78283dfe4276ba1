// Package viewer is the HTTP surface of the pipeline: it serves web object
// URLs and a small bearer-authenticated API for listing, uploading, viewing
// and deleting records.
package viewer

import (
	"net/http"

	"github.com/dmitrijs2005/medvault/internal/logging"
	"github.com/dmitrijs2005/medvault/internal/materialize"
	"github.com/dmitrijs2005/medvault/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// BlobsPath is where object URLs are served; the registry base URL must end with it.
const BlobsPath = "/blobs"

// TokenVerifier maps a bearer token to a user identifier.
type TokenVerifier interface {
	UserID(token string) (string, error)
}

// Handler holds the collaborators of the HTTP routes.
type Handler struct {
	upload   services.UploadOrchestrator
	view     services.ViewService
	records  services.RecordService
	registry *materialize.BlobRegistry
	tokens   TokenVerifier
	log      logging.Logger
	maxBody  int64
}

// NewHandler returns a Handler. registry may be nil on the native platform.
func NewHandler(
	upload services.UploadOrchestrator,
	view services.ViewService,
	records services.RecordService,
	registry *materialize.BlobRegistry,
	tokens TokenVerifier,
	log logging.Logger,
) *Handler {
	return &Handler{
		upload:   upload,
		view:     view,
		records:  records,
		registry: registry,
		tokens:   tokens,
		log:      log,
		maxBody:  64 << 20,
	}
}

// Router builds the chi router.
//
//	GET    /health
//	GET    /blobs/{id}             object URL content
//	DELETE /blobs/{id}             revoke object URL
//	GET    /api/records            list caller's records
//	POST   /api/records            upload request body (Content-Type is the file type)
//	GET    /api/records/{id}/view  materialize a record
//	DELETE /api/records/{id}       delete a record and its blob
func (h *Handler) Router() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	if h.registry != nil {
		router.Mount(BlobsPath, h.registry.Handler())
	}

	router.Route("/api/records", func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}/view", h.viewRecord)
		r.Delete("/{id}", h.deleteRecord)
	})

	return router
}
