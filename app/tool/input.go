package tool

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

var gzipMagic = [...]byte{0x1F, 0x8B}

// readPayload loads the raw input from fp, or stdin when fp is empty or
// "-". Gzipped input is decompressed transparently.
func readPayload(fp string) ([]byte, error) {
	var b []byte
	var err error
	if fp == "" || fp == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(fp)
	}
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(b, gzipMagic[:]) {
		return gunzip(b)
	}
	return b, nil
}

func gunzip(b []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to read gzip header, %w", err)
	}
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress input, %w", err)
	}
	if err := zr.Close(); err != nil { // invalid check sum
		return nil, err
	}
	return out, nil
}

// parseWire turns the textual input into wire bytes. Hex input may carry
// any whitespace, base64 is standard padding.
func parseWire(b []byte, format string) ([]byte, error) {
	switch format {
	case "hex":
		s := strings.Join(strings.Fields(string(b)), "")
		return hex.DecodeString(s)
	case "base64":
		return base64.StdEncoding.DecodeString(strings.TrimSpace(string(b)))
	case "raw":
		return b, nil
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}
