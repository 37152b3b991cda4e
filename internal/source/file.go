package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// FileSource serves a payload from a JSON file. The file may hold either
// the envelope ({"success": true, "data": {...}}) or a bare company.
type FileSource struct {
	path string
}

// NewFileSource returns a source reading path on every fetch.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the file the source reads.
func (s *FileSource) Path() string { return s.path }

// Fetch reads the file. A non-empty query must match the file's ticker or
// company name.
func (s *FileSource) Fetch(ctx context.Context, q core.Query) (*core.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload file: %w", err)
	}

	payload, err := decodePayload(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload file %s: %w", s.path, err)
	}
	if !payload.Success {
		return nil, fmt.Errorf("failed to fetch company data: %s", payload.Message())
	}

	if c := payload.Data; c != nil && !q.IsZero() {
		if (q.Ticker != "" && !strings.EqualFold(q.Ticker, c.Ticker)) ||
			(q.Ticker == "" && q.Company != c.Company) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, q)
		}
	}
	return payload, nil
}

func decodePayload(data []byte) (*core.Payload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	if _, ok := fields["success"]; ok {
		var p core.Payload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	}

	var c core.Company
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &core.Payload{Success: true, Data: &c}, nil
}
