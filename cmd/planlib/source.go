package main

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib/trace"
)

// traceSummary describes a saved trace from file metadata only.
type traceSummary struct {
	TraceID   string    `json:"trace_id"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listRequest struct {
	pageSize  int
	pageToken string
}

type listResponse struct {
	traces        []traceSummary
	nextPageToken string
}

// traceSource reads traces saved by trace.FileRepository.
type traceSource interface {
	List(ctx context.Context, req listRequest) (*listResponse, error)
	Get(ctx context.Context, traceID string) (*trace.Trace, error)
}

const defaultPageSize = 20

type localSource struct {
	dir string
}

func newLocalSource(dir string) traceSource {
	return &localSource{dir: dir}
}

func (s *localSource) List(_ context.Context, req listRequest) (*listResponse, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read directory", goerr.V("dir", s.dir))
	}

	var files []traceSummary
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, traceSummary{
			TraceID:   strings.TrimSuffix(e.Name(), ".json"),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].TraceID < files[j].TraceID
	})

	start := 0
	if req.pageToken != "" {
		last, err := decodePageToken(req.pageToken)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid page token")
		}
		start = sort.Search(len(files), func(i int) bool {
			return files[i].TraceID > last
		})
	}

	pageSize := req.pageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	end := min(start+pageSize, len(files))

	resp := &listResponse{traces: files[start:end]}
	if end < len(files) {
		resp.nextPageToken = encodePageToken(files[end-1].TraceID)
	}
	return resp, nil
}

func (s *localSource) Get(_ context.Context, traceID string) (*trace.Trace, error) {
	if traceID == "" || strings.ContainsAny(traceID, `/\`) || traceID == ".." {
		return nil, goerr.New("invalid trace ID", goerr.V("traceID", traceID))
	}

	path := filepath.Join(s.dir, traceID+".json")
	if _, err := os.Stat(path); err != nil {
		return nil, goerr.Wrap(err, "trace not found", goerr.V("traceID", traceID))
	}
	return trace.LoadFile(path)
}

func encodePageToken(traceID string) string {
	return base64.URLEncoding.EncodeToString([]byte(traceID))
}

func decodePageToken(token string) (string, error) {
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", goerr.Wrap(err, "failed to decode page token")
	}
	return string(b), nil
}
