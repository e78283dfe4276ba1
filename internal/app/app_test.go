package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/medvault/internal/config"
	"github.com/dmitrijs2005/medvault/internal/filex"
	"github.com/dmitrijs2005/medvault/internal/materialize"
	"github.com/dmitrijs2005/medvault/internal/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BoltPath = filepath.Join(t.TempDir(), "nested", "records.db")
	cfg.ObjectStore = config.ObjectStoreMemory
	cfg.Platform = "native"
	cfg.ViewerAddr = "127.0.0.1:0"
	return cfg
}

func TestNew_BoltAndMemory(t *testing.T) {
	var logs bytes.Buffer
	a, err := New(context.Background(), testConfig(t), WithLogOutput(&logs))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, materialize.PlatformNative, a.Platform)
	assert.Contains(t, logs.String(), "in-memory object store")

	ctx := context.Background()
	ref, err := a.Upload.UploadEncrypted(ctx, filex.Bytes{FileName: "a.pdf", Data: []byte{1, 2, 3}}, "u-42", "application/pdf")
	require.NoError(t, err)

	res, err := a.View.View(ctx, ref.ID, "u-42")
	require.NoError(t, err)
	assert.Equal(t, materialize.KindDataURI, res.Kind)
	assert.Equal(t, "data:application/pdf;base64,AQID", res.URI)
}

func TestNew_InjectedStoreAndWebHandler(t *testing.T) {
	cfg := testConfig(t)
	cfg.Platform = "web"
	store := objectstore.NewMemoryStore("shared")

	a, err := New(context.Background(), cfg, WithObjectStore(store), WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	defer a.Close()

	ref, err := a.Upload.UploadEncrypted(context.Background(), filex.Bytes{FileName: "n.txt", Data: []byte("hi")}, "u", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	res, err := a.View.View(context.Background(), ref.ID, "u")
	require.NoError(t, err)
	assert.Equal(t, materialize.KindObjectURL, res.Kind)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blobs/"+filepath.Base(res.URI), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())
}

func TestNew_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.LogFormat = "xml"
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Platform = "desktop"
	_, err = New(context.Background(), cfg, WithLogOutput(&bytes.Buffer{}))
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.RecordStore = "mongo"
	_, err = New(context.Background(), cfg, WithLogOutput(&bytes.Buffer{}))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	cfg = testConfig(t)
	cfg.ObjectStore = "gcs"
	_, err = New(context.Background(), cfg, WithLogOutput(&bytes.Buffer{}))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestServe_StopsOnCancel(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- a.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestClose_Idempotent(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
}
