package processor

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/domain"
)

const maxLineBytes = 32 << 20

// LineError reports a request line that could not be decoded.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ReadRequests decodes one JSON request per line. Blank lines are skipped.
// A malformed line yields a nil request at its position and a LineError in
// the returned slice so callers can report it without dropping the rest.
func ReadRequests(r io.Reader) ([]*domain.Request, []*LineError, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		reqs    []*domain.Request
		badRows []*LineError
		line    int
	)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var req domain.Request
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			badRows = append(badRows, &LineError{Line: line, Err: err})
			reqs = append(reqs, nil)
			continue
		}
		reqs = append(reqs, &req)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read requests: %w", err)
	}
	return reqs, badRows, nil
}

// ErrNotProcessed is reported for requests a cancelled batch never started.
var ErrNotProcessed = errors.New("request not processed")

// WriteResponses encodes one JSON response per line, so line N of the output
// always answers line N of the input. Nil entries, left by a cancelled
// batch, are written as a success=false record carrying ErrNotProcessed.
func WriteResponses(w io.Writer, resps []*domain.Response) error {
	enc := json.NewEncoder(w)
	for i, resp := range resps {
		if resp == nil {
			resp = &domain.Response{Success: false, Error: ErrNotProcessed.Error()}
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response %d: %w", i, err)
		}
	}
	return nil
}
