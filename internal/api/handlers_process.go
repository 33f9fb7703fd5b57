package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Satya7781/pdfintel/internal/docmodel"
	"github.com/Satya7781/pdfintel/internal/pipeline"
	"github.com/Satya7781/pdfintel/internal/rank"
	"github.com/Satya7781/pdfintel/internal/reader"
)

// processResponse is the assembled document, optionally extended with a
// persona-relevance ranking when the request carries persona and task.
type processResponse struct {
	*docmodel.Document
	RankedSections []rankedSection `json:"ranked_sections,omitempty"`
}

type rankedSection struct {
	SectionTitle string  `json:"section_title"`
	Page         int     `json:"page"`
	Score        float64 `json:"score"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
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

	filename := sanitizeFilename(header.Filename)
	if !reader.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	// The reader dispatches on extension, so the staged copy must keep it.
	path, err := s.stageUpload(file, filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	defer os.Remove(path)

	doc, err := s.pipe.Process(r.Context(), path)
	if err != nil {
		switch {
		case errors.Is(err, reader.ErrUnreadable):
			jsonError(w, "document is unreadable", http.StatusUnprocessableEntity)
		case errors.Is(err, pipeline.ErrNoExtractableText):
			jsonError(w, "document has no extractable text", http.StatusUnprocessableEntity)
		default:
			s.log.Error("document processing failed", "document", filename, "error", err)
			jsonError(w, "processing failed", http.StatusInternalServerError)
		}
		return
	}

	resp := processResponse{Document: doc}

	persona := r.FormValue("persona")
	task := r.FormValue("task")
	if persona != "" && task != "" {
		topK := s.cfg.TopKPerDoc
		if v := r.FormValue("top_k"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				topK = n
			}
		}
		ranked, err := s.rankSections(r.Context(), doc, persona, task, topK)
		if err != nil {
			// The structured document is still good; ship it without scores.
			s.log.Warn("section ranking failed", "document", filename, "error", err)
		} else {
			resp.RankedSections = ranked
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) rankSections(ctx context.Context, doc *docmodel.Document, persona, task string, topK int) ([]rankedSection, error) {
	query, err := s.embedder.Embed(ctx, persona+" "+task)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	ranked, err := rank.Rank(ctx, s.embedder, docmodel.SectionsFromOutline(doc.Outline), query, topK)
	if err != nil {
		return nil, err
	}
	out := make([]rankedSection, 0, len(ranked))
	for _, rs := range ranked {
		out = append(out, rankedSection{
			SectionTitle: rs.Section.Text,
			Page:         rs.Section.Page,
			Score:        rs.Score,
		})
	}
	return out, nil
}

// stageUpload copies the uploaded file to a temp path, preserving the
// extension and enforcing the size limit.
func (s *Server) stageUpload(file io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "pdfintel-*"+filepath.Ext(filename))
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	n, err := io.Copy(tmp, io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if n > s.cfg.MaxUploadBytes {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return tmp.Name(), nil
}

// stageUploadTo copies an upload into dir under its sanitized name. A
// duplicate name gets a numeric prefix so both documents survive staging.
func (s *Server) stageUploadTo(dir string, file io.Reader, filename string) (string, error) {
	path := filepath.Join(dir, filename)
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(dir, fmt.Sprintf("%d_%s", i, filename))
	}

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	n, err := io.Copy(out, io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if n > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%s exceeds max size (%d bytes)", filename, s.cfg.MaxUploadBytes)
	}
	return path, nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
