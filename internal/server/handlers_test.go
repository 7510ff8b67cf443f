package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan4533/pdf-to-xml-converter/internal/config"
	"github.com/karan4533/pdf-to-xml-converter/internal/extract"
)

type fakeConverter struct {
	xml    string
	result *extract.Result
	err    error
	paths  []string
}

func (f *fakeConverter) Convert(_ context.Context, path string) (string, *extract.Result, error) {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return "", nil, f.err
	}
	return f.xml, f.result, nil
}

func newTestServer(t *testing.T, converter Converter) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, converter, logger)
}

func uploadRequest(t *testing.T, fieldName, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/convert-pdf-to-xml", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHandleConvert_Success(t *testing.T) {
	converter := &fakeConverter{
		xml: "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<document/>",
		result: &extract.Result{
			PageCount: 2,
			TextContent: []extract.PageText{
				{Page: 1, Text: "Hello World", CharCount: 11, WordCount: 2},
			},
			Images:        []extract.Image{{ID: "img_1_1", Page: 1}},
			SkippedImages: 1,
		},
	}
	srv := newTestServer(t, converter)

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, uploadRequest(t, "file", "report.pdf", []byte("%PDF-1.4")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ConvertResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "report.xml", resp.XMLFile)
	assert.Equal(t, "/download/report.xml", resp.DownloadURL)
	assert.Equal(t, 2, resp.Summary.Pages)
	assert.Equal(t, 1, resp.Summary.TextPages)
	assert.Equal(t, 0, resp.Summary.Tables)
	assert.Equal(t, 1, resp.Summary.Images)
	assert.Equal(t, 1, resp.Summary.SkippedImages)

	stored, err := os.ReadFile(filepath.Join(srv.cfg.OutputDir, "report.xml"))
	require.NoError(t, err)
	assert.Equal(t, converter.xml, string(stored))

	// The upload is spooled to a temp file and removed afterwards.
	require.Len(t, converter.paths, 1)
	_, err = os.Stat(converter.paths[0])
	assert.True(t, os.IsNotExist(err), "temp upload must be cleaned up")
}

func TestHandleConvert_UppercaseExtensionAccepted(t *testing.T) {
	converter := &fakeConverter{xml: "<document/>", result: &extract.Result{PageCount: 1}}
	srv := newTestServer(t, converter)

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, uploadRequest(t, "file", "SCAN.PDF", []byte("%PDF-1.4")))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ConvertResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "SCAN.xml", resp.XMLFile)
}

func TestHandleConvert_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		request    func(t *testing.T) *http.Request
		wantDetail string
	}{
		{
			name: "missing file part",
			request: func(t *testing.T) *http.Request {
				return uploadRequest(t, "document", "report.pdf", []byte("%PDF-1.4"))
			},
			wantDetail: "No file uploaded",
		},
		{
			name: "not multipart",
			request: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/convert-pdf-to-xml", bytes.NewReader([]byte("raw")))
			},
			wantDetail: "No file uploaded",
		},
		{
			name: "wrong extension",
			request: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "report.docx", []byte("PK"))
			},
			wantDetail: "File must be a PDF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			converter := &fakeConverter{}
			srv := newTestServer(t, converter)

			rec := httptest.NewRecorder()
			srv.httpServer.Handler.ServeHTTP(rec, tt.request(t))

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			decodeJSON(t, rec, &resp)
			assert.Equal(t, tt.wantDetail, resp["detail"])
			assert.Empty(t, converter.paths, "pipeline must not run on a rejected upload")
		})
	}
}

func TestHandleConvert_PipelineError(t *testing.T) {
	converter := &fakeConverter{err: extract.NewError(errors.New("open document: corrupt"))}
	srv := newTestServer(t, converter)

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, uploadRequest(t, "file", "broken.pdf", []byte("junk")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Error processing PDF: open document: corrupt", resp["detail"])

	_, err := os.Stat(filepath.Join(srv.cfg.OutputDir, "broken.xml"))
	assert.True(t, os.IsNotExist(err), "no XML is written on failure")
}

func TestHandleDownload(t *testing.T) {
	srv := newTestServer(t, &fakeConverter{})
	content := "<document/>"
	require.NoError(t, os.WriteFile(filepath.Join(srv.cfg.OutputDir, "report.xml"), []byte(content), 0o644))

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/report.xml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="report.xml"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, content, rec.Body.String())
}

func TestHandleDownload_NotFound(t *testing.T) {
	srv := newTestServer(t, &fakeConverter{})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/missing.xml", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "File not found", resp["detail"])
}

func TestHandlePreview(t *testing.T) {
	srv := newTestServer(t, &fakeConverter{})
	content := "<document><metadata/></document>"
	require.NoError(t, os.WriteFile(filepath.Join(srv.cfg.OutputDir, "report.xml"), []byte(content), 0o644))

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/report.xml", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, content, resp["xml_content"])
}

func TestHandlePreview_NotFound(t *testing.T) {
	srv := newTestServer(t, &fakeConverter{})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/missing.xml", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &fakeConverter{})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "healthy", resp["status"])
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &fakeConverter{})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/convert-pdf-to-xml", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
