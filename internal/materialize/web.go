package materialize

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const objectURLScheme = "blob:"

var errUnknownObjectURL = errors.New("unknown object url")

type blob struct {
	data     []byte
	mimeType string
}

// BlobRegistry holds the bytes behind live object URLs. Entries stay until
// they are revoked; the registry never expires them on its own.
type BlobRegistry struct {
	mu      sync.RWMutex
	baseURL string
	blobs   map[string]blob
}

// NewBlobRegistry creates a registry whose object URLs resolve under baseURL,
// e.g. "http://127.0.0.1:8088/blobs".
func NewBlobRegistry(baseURL string) *BlobRegistry {
	return &BlobRegistry{
		baseURL: strings.TrimRight(baseURL, "/"),
		blobs:   make(map[string]blob),
	}
}

// CreateObjectURL stores a private copy of data and returns its object URL.
func (r *BlobRegistry) CreateObjectURL(data []byte, mimeType string) string {
	id := uuid.NewString()
	cp := append([]byte(nil), data...)

	r.mu.Lock()
	r.blobs[id] = blob{data: cp, mimeType: mimeType}
	r.mu.Unlock()

	return objectURLScheme + r.baseURL + "/" + id
}

// RevokeObjectURL releases the bytes behind url. Revoking an unknown or
// already revoked URL is a no-op.
func (r *BlobRegistry) RevokeObjectURL(url string) {
	id, ok := r.idFromURL(url)
	if !ok {
		return
	}
	r.mu.Lock()
	delete(r.blobs, id)
	r.mu.Unlock()
}

// Resolve returns the bytes and MIME type behind a live object URL.
func (r *BlobRegistry) Resolve(url string) ([]byte, string, error) {
	id, ok := r.idFromURL(url)
	if !ok {
		return nil, "", errUnknownObjectURL
	}
	return r.get(id)
}

// Len reports the number of live object URLs.
func (r *BlobRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

// HTTPURL turns an object URL into the address a viewer fetches it from.
func HTTPURL(objectURL string) string {
	return strings.TrimPrefix(objectURL, objectURLScheme)
}

func (r *BlobRegistry) get(id string) ([]byte, string, error) {
	r.mu.RLock()
	b, ok := r.blobs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, "", errUnknownObjectURL
	}
	return b.data, b.mimeType, nil
}

func (r *BlobRegistry) idFromURL(url string) (string, bool) {
	prefix := objectURLScheme + r.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	id := strings.TrimPrefix(url, prefix)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// Handler serves live blobs at GET /{id} and revokes them at DELETE /{id}.
// Mount it at the path of the registry base URL.
func (r *BlobRegistry) Handler() http.Handler {
	router := chi.NewRouter()

	router.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
		data, mimeType, err := r.get(chi.URLParam(req, "id"))
		if err != nil {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", mimeType)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})

	router.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		r.mu.Lock()
		delete(r.blobs, id)
		r.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	return router
}

// WebMaterializer wraps plaintext in a registry blob and hands out its object
// URL. The caller owns the URL and must revoke it when the viewer closes.
type WebMaterializer struct {
	registry *BlobRegistry
}

// Materialize registers plaintext under mimeType and returns the object URL.
func (m *WebMaterializer) Materialize(plaintext []byte, mimeType string) (ViewableResource, error) {
	mimeType = normalizeMimeType(mimeType)
	url := m.registry.CreateObjectURL(plaintext, mimeType)
	return ViewableResource{Kind: KindObjectURL, URI: url, MimeType: mimeType}, nil
}
