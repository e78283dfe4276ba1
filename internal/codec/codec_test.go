package codec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	big := bytes.Repeat([]byte{0x00, 0xff, 0x7f, 0x80}, 2500)

	tests := []struct {
		name string
		in   []byte
	}{
		{"empty", []byte{}},
		{"one byte", []byte{0x01}},
		{"two bytes", []byte{0xfe, 0xff}},
		{"three bytes", []byte{0x01, 0x02, 0x03}},
		{"binary zeros", make([]byte, 17)},
		{"large", big},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := BytesToBase64(tt.in)
			got, err := Base64ToBytes(text)
			require.NoError(t, err)
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestBytesToBase64_KnownVectors(t *testing.T) {
	assert.Equal(t, "", BytesToBase64(nil))
	assert.Equal(t, "AQID", BytesToBase64([]byte{1, 2, 3}))
	assert.Equal(t, "Zm9vYg==", BytesToBase64([]byte("foob")))
}

func TestBase64ToBytes_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"wrong alphabet", "ab$d"},
		{"url alphabet", "-_-_"},
		{"missing padding", "Zm9vYg"},
		{"extra padding", "AQID=="},
		{"non canonical trailing bits", "Zm9vYh=="},
		{"truncated", "Zm9vY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Base64ToBytes(tt.in)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, common.ErrMalformedEncoding))
		})
	}
}

func TestBase64ToBytes_EmptyIsNotNil(t *testing.T) {
	got, err := Base64ToBytes("")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got, 0)
}
