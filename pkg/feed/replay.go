package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Replay reads a feed dump: one JSON-encoded Item per line, already in chain
// order. Used for backfills from an exported feed and for end-to-end tests.
type Replay struct {
	file    *os.File
	scanner *bufio.Scanner
	line    int
}

var _ Source = (*Replay)(nil)

// OpenReplay opens an NDJSON feed dump.
func OpenReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	sc := bufio.NewScanner(f)
	// Encrypted vote payloads can be large.
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Replay{file: f, scanner: sc}, nil
}

// Next returns the next item, io.EOF at end of file. Blank lines are skipped.
func (r *Replay) Next(ctx context.Context) (*Item, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return nil, fmt.Errorf("read replay line %d: %w", r.line+1, err)
			}
			return nil, io.EOF
		}
		r.line++
		raw := r.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var item Item
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode replay line %d: %w", r.line, err)
		}
		if item.Message == nil && item.Instantiate == nil && item.Event == nil {
			return nil, fmt.Errorf("replay line %d: empty item", r.line)
		}
		return &item, nil
	}
}

// Close closes the underlying file.
func (r *Replay) Close() error {
	return r.file.Close()
}
