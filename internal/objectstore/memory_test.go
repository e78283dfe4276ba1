package objectstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("vault")

	data := []byte{0x01, 0x02, 0x03}
	loc, err := s.Put(ctx, "records/a", data, OpaqueContentType)
	require.NoError(t, err)
	assert.Equal(t, "mem://vault/records/a", loc)

	// stored copy is independent of the caller's buffer
	data[0] = 0xff

	got, err := s.Get(ctx, "records/a")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, got)

	ct, ok := s.ContentType("records/a")
	require.True(t, ok)
	assert.Equal(t, OpaqueContentType, ct)

	require.NoError(t, s.Delete(ctx, "records/a"))
	require.NoError(t, s.Delete(ctx, "records/a"))
	assert.Equal(t, 0, s.Len())

	_, err = s.Get(ctx, "records/a")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore("vault")
	_, err := s.Put(ctx, "p", []byte("x"), "text/plain")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Get(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Delete(ctx, "p"), context.Canceled)
}

func TestNewStoragePath(t *testing.T) {
	now := time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC)
	p1 := NewStoragePath(now)
	p2 := NewStoragePath(now)

	re := regexp.MustCompile(`^records/2026/03/07/[0-9a-f-]{36}$`)
	assert.Regexp(t, re, p1)
	assert.NotEqual(t, p1, p2)
}
