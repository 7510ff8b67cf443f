package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ConvertResponse is the JSON envelope for a successful conversion.
type ConvertResponse struct {
	Status      string         `json:"status"`
	Message     string         `json:"message"`
	XMLFile     string         `json:"xml_file"`
	DownloadURL string         `json:"download_url"`
	Summary     ConvertSummary `json:"summary"`
}

// ConvertSummary reports what the pipeline found, including images dropped
// by the color-model filter.
type ConvertSummary struct {
	Pages         int `json:"pages"`
	TextPages     int `json:"text_pages"`
	Tables        int `json:"tables"`
	Images        int `json:"images"`
	SkippedImages int `json:"skipped_images"`
}

// handleConvert accepts a multipart PDF upload, runs the pipeline, and
// stores the XML in the output directory. POST /convert-pdf-to-xml
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		s.writeError(w, http.StatusBadRequest, "File must be a PDF")
		return
	}

	tmp, err := os.CreateTemp("", "pdf2xml-*.pdf")
	if err != nil {
		s.logger.Error("creating temp file failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		s.logger.Error("spooling upload failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if err := tmp.Close(); err != nil {
		s.logger.Error("closing temp file failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	xmlDoc, result, err := s.converter.Convert(r.Context(), tmpPath)
	if err != nil {
		s.logger.Error("conversion failed", "file", filename, "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Same-named uploads overwrite the prior output; the directory is flat.
	xmlName := filename[:len(filename)-len(".pdf")] + ".xml"
	outPath := filepath.Join(s.cfg.OutputDir, xmlName)
	if err := os.WriteFile(outPath, []byte(xmlDoc), 0o644); err != nil {
		s.logger.Error("writing xml output failed", "path", outPath, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to store XML output")
		return
	}

	s.logger.Info("conversion succeeded",
		"file", filename,
		"xml_file", xmlName,
		"pages", result.PageCount,
		"tables", len(result.Tables),
		"images", len(result.Images),
		"skipped_images", result.SkippedImages)

	s.writeJSON(w, http.StatusOK, ConvertResponse{
		Status:      "success",
		Message:     "PDF converted to XML successfully",
		XMLFile:     xmlName,
		DownloadURL: "/download/" + xmlName,
		Summary: ConvertSummary{
			Pages:         result.PageCount,
			TextPages:     len(result.TextContent),
			Tables:        len(result.Tables),
			Images:        len(result.Images),
			SkippedImages: result.SkippedImages,
		},
	})
}

// handleDownload serves a stored XML file as an attachment.
// GET /download/{filename}
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	path, ok := s.outputFile(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(path)+"\"")
	http.ServeFile(w, r, path)
}

// handlePreview returns the stored XML text inside a JSON envelope.
// GET /preview/{filename}
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	path, ok := s.outputFile(w, r)
	if !ok {
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("reading xml output failed", "path", path, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"xml_content": string(content)})
}

// handleHealth is the liveness probe. GET /health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleRoot returns a service banner. GET /
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"service": s.cfg.ServiceName,
		"version": s.cfg.Version,
		"message": "POST a PDF to /convert-pdf-to-xml",
	})
}

// outputFile resolves the {filename} route parameter to a file inside the
// output directory, answering 404 when it does not exist.
func (s *Server) outputFile(w http.ResponseWriter, r *http.Request) (string, bool) {
	filename := filepath.Base(chi.URLParam(r, "filename"))
	path := filepath.Join(s.cfg.OutputDir, filename)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.writeError(w, http.StatusNotFound, "File not found")
		return "", false
	}
	return path, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writing json response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}
