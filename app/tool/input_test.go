package tool

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func TestParseWire(t *testing.T) {
	raw := []byte{0xde, 0xad, 0xbe, 0xef}

	t.Run("hex", func(t *testing.T) {
		r := require.New(t)
		b, err := parseWire([]byte("de ad\nbe\tef "), "hex")
		r.NoError(err)
		r.Equal(raw, b)
	})
	t.Run("base64", func(t *testing.T) {
		r := require.New(t)
		in := base64.StdEncoding.EncodeToString(raw) + "\n"
		b, err := parseWire([]byte(in), "base64")
		r.NoError(err)
		r.Equal(raw, b)
	})
	t.Run("raw", func(t *testing.T) {
		r := require.New(t)
		b, err := parseWire(raw, "raw")
		r.NoError(err)
		r.Equal(raw, b)
	})
	t.Run("unknown format", func(t *testing.T) {
		r := require.New(t)
		_, err := parseWire(raw, "yaml")
		r.Error(err)
	})
}

func TestReadPayloadGzip(t *testing.T) {
	r := require.New(t)
	payload := []byte("00 0a 01 00 00 01 00 00 00 00 00 00")

	b := new(bytes.Buffer)
	zw := gzip.NewWriter(b)
	_, err := zw.Write(payload)
	r.NoError(err)
	r.NoError(zw.Close())

	dir := t.TempDir()
	fp := filepath.Join(dir, "msg.hex.gz")
	r.NoError(os.WriteFile(fp, b.Bytes(), 0644))

	got, err := readPayload(fp)
	r.NoError(err)
	r.Equal(payload, got)

	// Plain files pass through untouched.
	fp = filepath.Join(dir, "msg.hex")
	r.NoError(os.WriteFile(fp, payload, 0644))
	got, err = readPayload(fp)
	r.NoError(err)
	r.Equal(payload, got)

	// A gzip prefix with a broken body is an error, not raw bytes.
	fp = filepath.Join(dir, "broken.gz")
	r.NoError(os.WriteFile(fp, []byte{0x1F, 0x8B, 0xFF}, 0644))
	_, err = readPayload(fp)
	r.Error(err)
}
