// Package media turns the image and audio values a complaint carries
// (raw bytes, data URLs, bare base64 or file paths) into validated bytes.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxBytes caps decoded media size.
const MaxBytes = 20 << 20

var (
	// ErrEmptyInput means no media bytes were supplied.
	ErrEmptyInput = errors.New("empty media input")
	// ErrMalformed means the value could not be decoded.
	ErrMalformed = errors.New("malformed media input")
	// ErrUnsupportedMedia means the bytes are not of the expected kind.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrTooLarge means the decoded media exceeds MaxBytes.
	ErrTooLarge = errors.New("media too large")
)

// Kind selects which MIME families are accepted.
type Kind int

const (
	KindImage Kind = iota
	KindAudio
)

func (k Kind) String() string {
	if k == KindAudio {
		return "audio"
	}
	return "image"
}

// containers browsers record voice notes into
var audioContainers = []string{"video/webm", "video/ogg", "video/mp4", "application/ogg"}

// Media is a decoded, sniffed payload.
type Media struct {
	Data     []byte
	MIMEType string
}

// Resolve validates raw when present, otherwise decodes encoded.
func Resolve(kind Kind, raw []byte, encoded string) (*Media, error) {
	if len(raw) == 0 {
		var err error
		if raw, err = Decode(encoded); err != nil {
			return nil, err
		}
	}
	return Sniff(kind, raw)
}

// Decode reads a data URL, a file path or bare base64, in that order.
func Decode(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrEmptyInput
	}

	if strings.HasPrefix(value, "data:") {
		return decodeDataURL(value)
	}

	if info, err := os.Stat(value); err == nil && info.Mode().IsRegular() {
		return readFile(value, info.Size())
	}

	data, err := decodeBase64(value)
	if err != nil {
		return nil, fmt.Errorf("%w: neither a readable file nor base64", ErrMalformed)
	}
	return data, nil
}

func decodeDataURL(value string) ([]byte, error) {
	header, payload, ok := strings.Cut(value, ",")
	if !ok {
		return nil, fmt.Errorf("%w: data URL without payload", ErrMalformed)
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: data URL is not base64 encoded", ErrMalformed)
	}
	data, err := decodeBase64(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: data URL payload: %w", ErrMalformed, err)
	}
	return data, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if base64.StdEncoding.DecodedLen(len(s)) > MaxBytes {
		return nil, ErrTooLarge
	}

	var lastErr error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		data, err := enc.DecodeString(s)
		if err == nil {
			if len(data) == 0 {
				return nil, ErrEmptyInput
			}
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func readFile(path string, size int64) ([]byte, error) {
	if size > MaxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, size)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read media file: %w", err)
	}
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	return data, nil
}

// Sniff checks that data is of the requested kind.
func Sniff(kind Kind, data []byte) (*Media, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !accepts(kind, mt) {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrUnsupportedMedia, kind, mt.String())
	}
	return &Media{Data: data, MIMEType: mt.String()}, nil
}

// DetectMIME returns the sniffed MIME type without parameters.
func DetectMIME(data []byte) string {
	mt := mimetype.Detect(data).String()
	base, _, _ := strings.Cut(mt, ";")
	return base
}

func accepts(kind Kind, mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		switch kind {
		case KindImage:
			if strings.HasPrefix(m.String(), "image/") {
				return true
			}
		case KindAudio:
			if strings.HasPrefix(m.String(), "audio/") || mimetype.EqualsAny(m.String(), audioContainers...) {
				return true
			}
		}
	}
	return false
}
