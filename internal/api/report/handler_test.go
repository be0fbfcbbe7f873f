package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"deep-research/internal/core/extract"
	corereport "deep-research/internal/core/report"
	reportsvc "deep-research/internal/services/report"
	"deep-research/internal/store"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	generateErr error
	stagedBody  string
	records     map[string]store.ReportRecord
}

func (f *fakeService) Generate(ctx context.Context, path, question string) (store.ReportRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return store.ReportRecord{}, err
	}
	f.stagedBody = string(b)
	if f.generateErr != nil {
		return store.ReportRecord{}, f.generateErr
	}
	rec := store.ReportRecord{
		ID:        uuid.NewString(),
		Question:  question,
		Document:  "# Research Report\n\nbody",
		Metadata:  corereport.RunMetadata{TotalChunks: 2, ProcessedChunks: 2, FailedChunks: []int{}},
		CreatedAt: time.Now().UTC(),
	}
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeService) Get(ctx context.Context, id string) (store.ReportRecord, error) {
	if err := store.CheckID(id); err != nil {
		return store.ReportRecord{}, err
	}
	rec, ok := f.records[id]
	if !ok {
		return store.ReportRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (f *fakeService) List(ctx context.Context) ([]store.ReportSummary, error) {
	out := make([]store.ReportSummary, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, store.ReportSummary{ID: r.ID, Question: r.Question, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (f *fakeService) Delete(ctx context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func newTestApp(t *testing.T, svc *fakeService, maxSize int64) *fiber.App {
	t.Helper()
	app := fiber.New()
	RegisterRoutes(app.Group("/api/v1"), NewHandler(svc, NewLocalStager(t.TempDir()), maxSize))
	return app
}

func multipartRequest(t *testing.T, filename, content, question string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if question != "" {
		require.NoError(t, w.WriteField("question", question))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate_report", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Request-ID", "req-1")
	return req
}

type envelope struct {
	Code       int             `json:"code"`
	TrackingID string          `json:"tracking_id"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	ErrorCode  string          `json:"error_code"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestGenerateReport_Success(t *testing.T) {
	svc := &fakeService{records: map[string]store.ReportRecord{}}
	app := newTestApp(t, svc, 1<<20)

	resp, err := app.Test(multipartRequest(t, "paper.txt", "document body", "What is new?"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decode(t, resp)
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, "req-1", env.TrackingID)
	var data generateResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Contains(t, svc.records, data.ReportID)
	assert.Equal(t, "# Research Report\n\nbody", data.MarkdownReport)
	assert.Equal(t, 2, data.ReportMetadata.ProcessedChunks)
	assert.Equal(t, "document body", svc.stagedBody)
}

func TestGenerateReport_Validation(t *testing.T) {
	long := string(bytes.Repeat([]byte("q"), 1001))
	cases := []struct {
		name      string
		req       func(t *testing.T) *http.Request
		status    int
		errorCode string
	}{
		{"not multipart", func(t *testing.T) *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/generate_report", bytes.NewBufferString(`{"question":"q"}`))
			req.Header.Set("Content-Type", "application/json")
			return req
		}, 400, "AI-0"},
		{"missing question", func(t *testing.T) *http.Request { return multipartRequest(t, "a.pdf", "x", "") }, 400, "AI-1"},
		{"question too long", func(t *testing.T) *http.Request { return multipartRequest(t, "a.pdf", "x", long) }, 400, "AI-1"},
		{"missing file", func(t *testing.T) *http.Request { return multipartRequest(t, "", "", "q") }, 400, "AI-1"},
		{"unsupported type", func(t *testing.T) *http.Request { return multipartRequest(t, "a.docx", "x", "q") }, 400, "AI-2"},
		{"too large", func(t *testing.T) *http.Request { return multipartRequest(t, "a.txt", "0123456789abcdef", "q") }, 413, "AI-3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{records: map[string]store.ReportRecord{}}
			app := newTestApp(t, svc, 10)
			resp, err := app.Test(tc.req(t))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.errorCode, decode(t, resp).ErrorCode)
			assert.Empty(t, svc.records)
		})
	}
}

func TestGenerateReport_ServiceErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: bad pdf", extract.ErrExtraction), 422, "AI-1001"},
		{reportsvc.ErrEmptyInput, 422, "AI-6"},
		{fmt.Errorf("%w (3 chunks)", reportsvc.ErrAllChunksFailed), 502, "AI-1002"},
		{fmt.Errorf("%w: %w", reportsvc.ErrRunCancelled, context.Canceled), 408, "AI-1004"},
		{fmt.Errorf("%w abc: %w", reportsvc.ErrSaveReport, io.ErrShortWrite), 500, "AI-1003"},
		{io.ErrUnexpectedEOF, 500, "AI-1000"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			svc := &fakeService{records: map[string]store.ReportRecord{}, generateErr: tc.err}
			app := newTestApp(t, svc, 1<<20)
			resp, err := app.Test(multipartRequest(t, "a.md", "text", "q"))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decode(t, resp).ErrorCode)
		})
	}
}

func TestReportEndpoints(t *testing.T) {
	rec := store.ReportRecord{
		ID:        uuid.NewString(),
		Question:  "q?",
		Document:  "# Findings\ntext",
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	svc := &fakeService{records: map[string]store.ReportRecord{rec.ID: rec}}
	app := newTestApp(t, svc, 1<<20)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	require.NoError(t, err)
	var list listResponse
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &list))
	assert.Equal(t, 1, list.Total)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+rec.ID, nil))
	require.NoError(t, err)
	var got getResponse
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &got))
	assert.Equal(t, rec.Document, got.Content)
	assert.Equal(t, "q?", got.Question)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/download_report/"+rec.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "research_report_"+rec.ID+".md")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, string(store.Markdown(rec)), string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/reports/"+rec.ID, nil))
	require.NoError(t, err)
	var del deleteResponse
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &del))
	assert.True(t, del.Deleted)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+rec.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "AI-5", decode(t, resp).ErrorCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reports/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "AI-4", decode(t, resp).ErrorCode)
}
