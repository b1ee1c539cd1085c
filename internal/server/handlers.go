package server

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kissanvaani/kissanvaani/internal/models"
	"github.com/kissanvaani/kissanvaani/internal/pipeline"
	"go.uber.org/zap"
)

const maxUploadBytes = 32 << 20

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAsk accepts a multipart audio upload and runs the full pipeline.
// Detected failure conditions (no speech, index unreachable) return 200 with
// an error field; non-200 is reserved for transport-level problems.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		// Accept any single file field, not just "file".
		file, header = firstUploadedFile(r)
		if file == nil {
			s.respondError(w, http.StatusBadRequest, "audio file field is required")
			return
		}
	}
	defer file.Close()

	// Read one byte past the limit so a truncated blob is never handed to
	// the converter; oversized uploads are rejected outright.
	blob, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(blob) > maxUploadBytes {
		s.respondError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
		return
	}
	hint := strings.TrimPrefix(filepath.Ext(header.Filename), ".")

	s.logger.Debug("ask request",
		zap.String("filename", header.Filename),
		zap.Int("bytes", len(blob)))

	resp, err := s.asker.Ask(r.Context(), blob, hint)
	if err != nil {
		s.logger.Warn("ask pipeline failed", zap.Error(err))
		s.respondJSON(w, http.StatusOK, &models.AskResponse{Error: pipeline.UserMessage(err)})
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleAudio serves one synthesized artifact by name. Names are flat tokens;
// anything resembling a path is rejected.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		s.respondError(w, http.StatusBadRequest, "invalid artifact name")
		return
	}
	path := filepath.Join(s.artifactsDir, name)
	if _, err := os.Stat(path); err != nil {
		s.respondError(w, http.StatusNotFound, "artifact not found")
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, path)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountEntries(r.Context())
	if err != nil {
		s.logger.Error("status: count entries failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries":           count,
		"vector_index_size": s.index.Size(),
	})
}

// handleCreateEntry indexes one QA entry posted as JSON.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var entry models.QAEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(entry.Answer) == "" {
		s.respondError(w, http.StatusBadRequest, "answer is required")
		return
	}
	if err := s.ingester.IngestEntry(r.Context(), &entry); err != nil {
		s.logger.Error("entry ingestion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": entry.ID, "status": "indexed"})
}

// firstUploadedFile returns the first file in the multipart form, whatever
// its field name.
func firstUploadedFile(r *http.Request) (multipart.File, *multipart.FileHeader) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	for _, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			return nil, nil
		}
		return f, headers[0]
	}
	return nil, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
