package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-callflow/internal/core/model"
)

// FileSource replays a call-detail document saved from the backend.
// A path of "-" reads standard input.
type FileSource struct {
	path  string
	stdin io.Reader
}

// NewFileSource creates a source backed by the document at path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, stdin: os.Stdin}
}

// Path returns the document location
func (s *FileSource) Path() string {
	return s.path
}

// Load decodes the whole document
func (s *FileSource) Load() (*model.DetailResponse, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}

	var resp model.DetailResponse
	if err := sonic.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode call detail %s: %w", s.path, err)
	}
	if resp.Detail == nil {
		resp.Detail = []model.CallSession{}
	}
	return &resp, nil
}

// FetchCallDetail returns the sessions named by sids in the order requested.
// With no sids every session in the document is returned. Unknown ids are skipped.
func (s *FileSource) FetchCallDetail(ctx context.Context, sids []string) (*model.DetailResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := s.Load()
	if err != nil {
		return nil, err
	}

	wanted := make([]string, 0, len(sids))
	for _, sid := range sids {
		if sid = strings.TrimSpace(sid); sid != "" {
			wanted = append(wanted, sid)
		}
	}
	if len(wanted) == 0 {
		return doc, nil
	}

	byID := make(map[string]model.CallSession, len(doc.Detail))
	for _, session := range doc.Detail {
		byID[session.ID] = session
	}

	selected := make([]model.CallSession, 0, len(wanted))
	for _, sid := range wanted {
		if session, ok := byID[sid]; ok {
			selected = append(selected, session)
		}
	}
	return &model.DetailResponse{Detail: selected}, nil
}

func (s *FileSource) read() ([]byte, error) {
	if s.path == "-" {
		data, err := io.ReadAll(s.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read call detail from stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read call detail %s: %w", s.path, err)
	}
	return data, nil
}
