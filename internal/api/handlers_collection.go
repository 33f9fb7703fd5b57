package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/Satya7781/pdfintel/internal/jobs"
	"github.com/Satya7781/pdfintel/internal/reader"
)

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	persona := r.FormValue("persona")
	if persona == "" {
		jsonError(w, "persona is required", http.StatusBadRequest)
		return
	}
	task := r.FormValue("task")
	if task == "" {
		jsonError(w, "task is required", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	workDir, err := os.MkdirTemp("", "pdfintel-collection-")
	if err != nil {
		jsonError(w, "failed to stage uploads", http.StatusInternalServerError)
		return
	}

	var names, paths []string
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !reader.IsSupportedExtension(filename) {
			os.RemoveAll(workDir)
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}

		f, err := fh.Open()
		if err != nil {
			os.RemoveAll(workDir)
			jsonError(w, fmt.Sprintf("failed to open %s", filename), http.StatusBadRequest)
			return
		}
		path, err := s.stageUploadTo(workDir, f, filename)
		f.Close()
		if err != nil {
			os.RemoveAll(workDir)
			jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		names = append(names, filename)
		paths = append(paths, path)
	}

	job := jobs.NewJob(persona, task, names, paths, workDir)
	if err := s.orchestrator.Submit(job); err != nil {
		os.RemoveAll(workDir)
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":    job.ID,
		"status":    jobs.StatusQueued,
		"documents": names,
		"poll_url":  fmt.Sprintf("/api/collection/%s", job.ID),
	})
}

func (s *Server) handleCollectionStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.Get(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}
