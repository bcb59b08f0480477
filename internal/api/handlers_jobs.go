package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docoutline/internal/notify"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

type jobAccepted struct {
	Filename  string             `json:"filename,omitempty"`
	JobID     string             `json:"job_id,omitempty"`
	Status    pipeline.JobStatus `json:"status,omitempty"`
	PollURL   string             `json:"poll_url,omitempty"`
	ResultURL string             `json:"result_url,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func accepted(job *pipeline.Job) jobAccepted {
	return jobAccepted{
		Filename:  job.Filename,
		JobID:     job.ID,
		Status:    pipeline.StatusQueued,
		PollURL:   fmt.Sprintf("/api/jobs/%s", job.ID),
		ResultURL: fmt.Sprintf("/api/jobs/%s/result", job.ID),
	}
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	callbackURL := r.FormValue("callback_url")
	if callbackURL != "" {
		if err := notify.ValidateCallbackURL(callbackURL); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

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

	job := pipeline.NewJob(filename, data)
	job.CallbackURL = callbackURL
	job.Sections = wantSections(r)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, accepted(job))
}

func (s *Server) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	callbackURL := r.FormValue("callback_url")
	if callbackURL != "" {
		if err := notify.ValidateCallbackURL(callbackURL); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	withSections := wantSections(r)

	results := make([]jobAccepted, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			results = append(results, jobAccepted{Filename: sanitizeFilename(fh.Filename), Error: "failed to open file"})
			continue
		}
		filename, data, _, err := s.readUpload(f, fh)
		f.Close()
		if err != nil {
			results = append(results, jobAccepted{Filename: filename, Error: err.Error()})
			continue
		}

		job := pipeline.NewJob(filename, data)
		job.CallbackURL = callbackURL
		job.Sections = withSections
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, jobAccepted{Filename: filename, JobID: job.ID, Error: err.Error()})
			continue
		}
		results = append(results, accepted(job))
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	res, sections, ok := job.Result()
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "job not finished",
			"status": job.Snapshot().Status,
		})
		return
	}

	resp := outlineResponse{Result: res}
	if job.Sections {
		resp.Sections = sections
		if resp.Sections == nil {
			resp.Sections = []outline.Section{}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
