package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/smart-extract/internal/api/shared"
	"github.com/phrazzld/smart-extract/internal/batch"
	"github.com/phrazzld/smart-extract/internal/domain"
	"github.com/phrazzld/smart-extract/internal/service"
	"github.com/phrazzld/smart-extract/internal/task"
	"github.com/phrazzld/smart-extract/internal/vault"
)

type extractCall struct {
	text, sourcePath string
}

type fakeExtractor struct {
	mu    sync.Mutex
	calls []extractCall
}

func (f *fakeExtractor) CreateFromSelection(ctx context.Context, text, sourcePath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, extractCall{text, sourcePath})
	return "Extractcards/new.md", nil
}

func (f *fakeExtractor) Calls() []extractCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]extractCall(nil), f.calls...)
}

type fakeProcessors struct {
	mu   sync.Mutex
	seen []string
}

func (f *fakeProcessors) ProcessFunc(op domain.Operation) (batch.ProcessFunc, error) {
	if !op.IsBatch() {
		return nil, service.ErrUnsupportedOperation
	}
	return func(ctx context.Context, path string) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.seen = append(f.seen, string(op)+" "+path)
		return nil
	}, nil
}

type fixture struct {
	queue     *task.Queue
	store     *task.MemoryStore
	extractor *fakeExtractor
	handler   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/vault", 0o755))
	v, err := vault.New(fs, "/vault")
	require.NoError(t, err)
	require.NoError(t, v.Write("notes/a.md", "A"))
	require.NoError(t, v.Write("notes/b.md", "B"))

	store := task.NewMemoryStore(100)
	queue := task.NewQueue(task.Config{MaxConcurrent: 2}, logger, task.WithStore(store))
	driver := batch.NewDriver(queue, nil, batch.Settings{MaxConcurrent: 2}, logger)
	extractor := &fakeExtractor{}

	handler := NewRouter(logger, Handlers{
		Extract: NewExtractHandler(queue, extractor, logger),
		Batches: NewBatchHandler(driver, v, &fakeProcessors{}, logger),
		Queue:   NewQueueHandler(queue, store),
	})

	return &fixture{queue: queue, store: store, extractor: extractor, handler: handler}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestExtract(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/extract", ExtractRequest{Text: "selected", SourcePath: "notes/a.md"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	resp := decodeBody[TaskAcceptedResponse](t, rec)
	assert.NotEqual(t, uuid.Nil, resp.TaskID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.queue.Wait(ctx))
	assert.Equal(t, []extractCall{{"selected", "notes/a.md"}}, f.extractor.Calls())

	require.Eventually(t, func() bool {
		rec := f.do(t, http.MethodGet, "/api/tasks", nil)
		records := decodeBody[[]task.TaskRecord](t, rec)
		return len(records) == 1 &&
			records[0].ID == resp.TaskID &&
			records[0].Status == task.TaskStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
}

func TestExtract_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		wantMsg string
	}{
		{"malformed json", `{"text":`, "Invalid request format"},
		{"missing text", ExtractRequest{SourcePath: "notes/a.md"}, "Invalid Text: required field"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(t, http.MethodPost, "/api/extract", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decodeBody[shared.ErrorResponse](t, rec)
			assert.Equal(t, tc.wantMsg, resp.Error)
			assert.NotEmpty(t, resp.TraceID)
			assert.Empty(t, f.extractor.Calls())
		})
	}
}

func TestExtract_QueueClosed(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.queue.Shutdown(context.Background()))

	rec := f.do(t, http.MethodPost, "/api/extract", ExtractRequest{Text: "selected"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Task queue is shutting down", decodeBody[shared.ErrorResponse](t, rec).Error)
}

func TestBatches(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/batches", BatchRequest{Folder: "notes", Operation: "tag"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	accepted := decodeBody[BatchAcceptedResponse](t, rec)
	assert.Equal(t, 2, accepted.Total)

	var progress BatchProgressResponse
	require.Eventually(t, func() bool {
		rec := f.do(t, http.MethodGet, "/api/batches/"+accepted.RunID.String(), nil)
		if rec.Code != http.StatusOK {
			return false
		}
		progress = decodeBody[BatchProgressResponse](t, rec)
		return progress.Done
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, accepted.RunID, progress.RunID)
	assert.Equal(t, "tag", progress.Operation)
	assert.Equal(t, 2, progress.Processed)
	assert.Equal(t, 0, progress.Failed)
	assert.Equal(t, 2, progress.Total)
}

func TestBatches_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "unknown operation",
			method:     http.MethodPost,
			target:     "/api/batches",
			body:       BatchRequest{Folder: "notes", Operation: "summarize"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid Operation: invalid value",
		},
		{
			name:       "missing folder",
			method:     http.MethodPost,
			target:     "/api/batches",
			body:       BatchRequest{Folder: "nope", Operation: "tag"},
			wantStatus: http.StatusNotFound,
			wantMsg:    "Folder not found",
		},
		{
			name:       "folder outside vault",
			method:     http.MethodPost,
			target:     "/api/batches",
			body:       BatchRequest{Folder: "../etc", Operation: "rewrite"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Path is outside the vault",
		},
		{
			name:       "invalid run id",
			method:     http.MethodGet,
			target:     "/api/batches/not-a-uuid",
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid run ID",
		},
		{
			name:       "unknown run",
			method:     http.MethodGet,
			target:     "/api/batches/" + uuid.NewString(),
			wantStatus: http.StatusNotFound,
			wantMsg:    "Batch run not found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(t, tc.method, tc.target, tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantMsg, decodeBody[shared.ErrorResponse](t, rec).Error)
		})
	}
}

func TestQueueStatus(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/queue", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, QueueStatusResponse{Pending: 0, Active: 0, MaxConcurrent: 2}, decodeBody[QueueStatusResponse](t, rec))
}

func TestListTasks(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/tasks?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid limit", decodeBody[shared.ErrorResponse](t, rec).Error)

	for i := 0; i < 3; i++ {
		rec := f.do(t, http.MethodPost, "/api/extract", ExtractRequest{Text: "selected"})
		require.Equal(t, http.StatusAccepted, rec.Code)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.queue.Wait(ctx))

	assert.Eventually(t, func() bool {
		rec := f.do(t, http.MethodGet, "/api/tasks?limit=2", nil)
		return rec.Code == http.StatusOK && len(decodeBody[[]task.TaskRecord](t, rec)) == 2
	}, 5*time.Second, 5*time.Millisecond)
}
