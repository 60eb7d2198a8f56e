package trace

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Repository stores finished traces. Recorder.Finish calls Save once.
type Repository interface {
	Save(ctx context.Context, trace *Trace) error
}

// FileRepository keeps one indented JSON file per trace in a directory,
// named after the trace ID.
type FileRepository struct {
	dir string
}

func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Save writes {dir}/{trace_id}.json through a temporary file, so readers
// never see a partially written trace.
func (r *FileRepository) Save(_ context.Context, trace *Trace) error {
	if trace.TraceID == "" || strings.ContainsAny(trace.TraceID, `/\`) || strings.HasPrefix(trace.TraceID, ".") {
		return goerr.New("invalid trace ID", goerr.V("trace_id", trace.TraceID))
	}
	if err := os.MkdirAll(r.dir, 0750); err != nil {
		return goerr.Wrap(err, "failed to create trace directory", goerr.V("dir", r.dir))
	}

	raw, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal trace", goerr.V("trace_id", trace.TraceID))
	}

	path := filepath.Join(r.dir, trace.TraceID+".json")
	tmp, err := os.CreateTemp(r.dir, ".trace-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary trace file", goerr.V("dir", r.dir))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return goerr.Wrap(err, "failed to write trace file", goerr.V("path", path))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to write trace file", goerr.V("path", path))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return goerr.Wrap(err, "failed to move trace file", goerr.V("path", path))
	}
	return nil
}

// LoadFile reads a trace written by FileRepository.
func LoadFile(path string) (*Trace, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read trace file", goerr.V("path", path))
	}

	var t Trace
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal trace", goerr.V("path", path))
	}
	return &t, nil
}
