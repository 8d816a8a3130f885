// Package ctyfile supplies country file text to the resolver: from a local
// file, from the published download, or from the copy kept in SQLite.
package ctyfile

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

var (
	// ErrDecode is returned when country file bytes are not valid text in the
	// configured character set.
	ErrDecode = errors.New("country file is not valid text")
	// ErrNoData is returned when no country file has been stored yet.
	ErrNoData = errors.New("no country file available")
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// maxFileSize bounds downloaded and decompressed country files. The
// published file is well under 1MB.
var maxFileSize int64 = 16 << 20

// readLimited reads all of r, failing rather than truncating when r holds
// more than maxFileSize bytes.
func readLimited(r io.Reader, what string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxFileSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", what, maxFileSize)
	}
	return data, nil
}

// ReadFile reads a country file from disk and decodes it to text.
func ReadFile(path, charsetLabel string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read country file %s: %w", path, err)
	}
	text, err := Decode(data, charsetLabel)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

// Decode converts raw bytes to text. An empty or UTF-8 label requires valid
// UTF-8; any other label known to the WHATWG encoding registry (for example
// "iso-8859-1" or "windows-1252") is transcoded. The country file grammar is
// ASCII only, so transcoding lets a file served under a legacy label load,
// but non-ASCII characters in it are still rejected by the parser.
func Decode(data []byte, charsetLabel string) (string, error) {
	label := strings.ToLower(strings.TrimSpace(charsetLabel))
	if label == "" || label == "utf-8" || label == "utf8" {
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: invalid UTF-8 at byte %d", ErrDecode, invalidUTF8Offset(data))
		}
		return string(data), nil
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		return "", fmt.Errorf("unknown character set %q", charsetLabel)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}
	return string(out), nil
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}

// gunzipIfNeeded decompresses data that starts with the gzip magic bytes and
// returns anything else unchanged.
func gunzipIfNeeded(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gzr.Close()
	out, err := readLimited(gzr, "decompressed country file")
	if err != nil {
		return nil, fmt.Errorf("failed to decompress country file: %w", err)
	}
	return out, nil
}
