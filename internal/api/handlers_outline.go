package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/collector"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

// degradedHeader carries the reason when an upload could not be read and
// the empty outline was returned in its place.
const degradedHeader = "X-Outline-Degraded"

// outlineResponse is the synchronous response. Sections is present only when
// asked for, so the default body is exactly {title, outline}.
type outlineResponse struct {
	outline.Result
	Sections []outline.Section `json:"sections,omitempty"`
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename, data, status, err := s.readUpload(file, header)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	withSections := wantSections(r)
	out, err := s.extractor.Extract(r.Context(), pipeline.Request{
		Filename: filename,
		Data:     data,
		Sections: withSections,
	})
	if err != nil {
		s.log.Error("outline degraded to empty", "file", filename, "error", err)
		w.Header().Set(degradedHeader, truncate(err.Error(), 200))
	}

	resp := outlineResponse{Result: out.Result}
	if withSections {
		resp.Sections = out.Sections
		if resp.Sections == nil {
			resp.Sections = []outline.Section{}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// readUpload sanitizes the name, checks the extension and reads at most
// MaxUploadBytes. On failure it returns the HTTP status to answer with.
func (s *Server) readUpload(file multipart.File, header *multipart.FileHeader) (string, []byte, int, error) {
	filename := sanitizeFilename(header.Filename)
	if !collector.IsSupportedExtension(filename) {
		return filename, nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, http.StatusInternalServerError, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return filename, data, http.StatusOK, nil
}

func wantSections(r *http.Request) bool {
	v := r.URL.Query().Get("sections")
	if v == "" {
		v = r.FormValue("sections")
	}
	return v == "true" || v == "1"
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = outline.WriteJSON(w, v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n]
}
