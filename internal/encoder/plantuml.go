// plantuml.go implements the text encoding understood by PlantUML servers.

// Package encoder turns cleaned PlantUML source into the URL-safe token a
// PlantUML server accepts after its /svg/ or /png/ route.
package encoder

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
)

// Alphabet is PlantUML's 64-character encoding alphabet.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

var encoding = base64.NewEncoding(Alphabet).WithPadding(base64.NoPadding)

// ErrEmptyToken is returned by Decode when there is no token to decode.
var ErrEmptyToken = errors.New("token is empty")

// PlantUML deflates diagram text and encodes it with Alphabet.
type PlantUML struct {
	// Level is the flate compression level; zero means flate.BestCompression.
	Level int
}

// Encode returns the URL-safe token for text. Blank text still yields a
// token; the server renders it as an empty diagram.
func (p PlantUML) Encode(text string) (string, error) {
	level := p.Level
	if level == 0 {
		level = flate.BestCompression
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		return "", fmt.Errorf("deflate: %w", err)
	}
	if _, err := io.WriteString(w, text); err != nil {
		return "", fmt.Errorf("deflate: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("deflate: %w", err)
	}
	token := encoding.EncodeToString(buf.Bytes())
	// PlantUML emits whole 4-character groups; the filler is the zero digit.
	if rem := len(token) % 4; rem != 0 {
		token += strings.Repeat(Alphabet[:1], 4-rem)
	}
	return token, nil
}

// Decode reverses Encode.
func Decode(token string) (string, error) {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "~1")
	if token == "" {
		return "", ErrEmptyToken
	}
	raw, err := encoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("inflate token: %w", err)
	}
	return string(out), nil
}
