package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/medvault/internal/app"
	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/models"
	"github.com/dmitrijs2005/medvault/internal/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	dir   string
	store *objectstore.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{dir: t.TempDir(), store: objectstore.NewMemoryStore("cli")}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	full := append(args, "-f", filepath.Join(h.dir, "records.db"), "-m", "native", "-k", "cli-secret")
	var out bytes.Buffer
	err := Execute(context.Background(), full, &out, io.Discard,
		app.WithObjectStore(h.store), app.WithLogOutput(io.Discard))
	return out.String(), err
}

func (h *harness) token(t *testing.T, user string) string {
	t.Helper()
	out, err := h.run(t, "token", "--user", user)
	require.NoError(t, err)
	return strings.TrimSpace(out)
}

func TestUploadListViewDelete(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t, "u-42")

	file := filepath.Join(h.dir, "lab.pdf")
	require.NoError(t, os.WriteFile(file, []byte{1, 2, 3}, 0o600))

	out, err := h.run(t, "upload", "--file", file, "--title", "Lab", "--tag", "lab,2026", "--token", tok)
	require.NoError(t, err)
	var ref models.FileRecordReference
	require.NoError(t, json.Unmarshal([]byte(out), &ref))
	assert.Equal(t, "application/pdf", ref.MimeType)
	assert.True(t, ref.Encryption.Encrypted)
	assert.Equal(t, []string{"lab", "2026"}, ref.Tags)

	out, err = h.run(t, "list", "--token", tok)
	require.NoError(t, err)
	assert.Contains(t, out, ref.ID)
	assert.Contains(t, out, "Lab")

	out, err = h.run(t, "view", "--record", ref.ID, "--token", tok)
	require.NoError(t, err)
	assert.Equal(t, "data:application/pdf;base64,AQID\n", out)

	dst := filepath.Join(h.dir, "out.pdf")
	_, err = h.run(t, "view", "--record", ref.ID, "--out", dst, "--token", tok)
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	_, err = h.run(t, "view", "--record", ref.ID, "--token", h.token(t, "u-other"))
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = h.run(t, "delete", "--record", ref.ID, "--token", tok)
	require.NoError(t, err)
	assert.Zero(t, h.store.Len())
}

func TestUpload_DetectsTypeFromContent(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t, "u-1")

	file := filepath.Join(h.dir, "notes")
	require.NoError(t, os.WriteFile(file, []byte("plain words"), 0o600))

	out, err := h.run(t, "-m", "native", "upload", "--file", file, "--token", tok)
	require.NoError(t, err)
	var ref models.FileRecordReference
	require.NoError(t, json.Unmarshal([]byte(out), &ref))
	assert.Equal(t, "text/plain; charset=utf-8", ref.MimeType)
	assert.False(t, ref.Encryption.Encrypted)
}

func TestTokenFromEnv(t *testing.T) {
	h := newHarness(t)
	t.Setenv(TokenEnv, h.token(t, "u-env"))

	out, err := h.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
}

func TestMissingOrBadToken(t *testing.T) {
	h := newHarness(t)
	t.Setenv(TokenEnv, "")

	_, err := h.run(t, "list")
	assert.ErrorIs(t, err, errNoToken)

	_, err = h.run(t, "list", "--token", "garbage")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRequiredFlags(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "upload")
	assert.Error(t, err)

	_, err = h.run(t, "token")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "list", "-s", "mongo")
	assert.Error(t, err)
}
