package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sergiecode/audio-to-sheet/internal/audio"
)

// handleIndex serves the main upload page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", nil)
}

// handleHealth reports server health plus the transcription backend's
// reachability, so the page can warn before an upload is attempted.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	backend := "ok"
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.client.Health(ctx); err != nil {
		backend = "down"
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","backend":%q}`, backend)
}

// handleUpload accepts an audio file and starts a transcription job
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, audio.MaxFileSize)

	if err := r.ParseMultipartForm(audio.MaxFileSize); err != nil {
		s.renderError(w, "File too large. Maximum size is 25MB.", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.renderError(w, "Please upload an audio file.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	head := make([]byte, 12)
	n, _ := io.ReadFull(file, head)
	head = head[:n]

	if _, err := audio.ValidateUpload(header.Filename, header.Size, head); err != nil {
		s.renderError(w, fmt.Sprintf("Unsupported upload: %v.", err), http.StatusBadRequest)
		return
	}

	job, err := s.jobs.Create()
	if err != nil {
		s.renderError(w, "Failed to create job.", http.StatusInternalServerError)
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	inputPath := job.Workspace.InputAudio(ext)
	dst, err := os.Create(inputPath)
	if err != nil {
		s.jobs.Discard(job)
		s.renderError(w, "Failed to save file.", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), file)); err != nil {
		s.jobs.Discard(job)
		s.renderError(w, "Failed to save file.", http.StatusInternalServerError)
		return
	}

	job.InputPath = inputPath
	job.Filename = header.Filename

	// Start processing in background
	go s.jobs.Process(job)

	s.render(w, "processing.html", map[string]any{
		"JobID":    job.ID,
		"Filename": header.Filename,
	})
}

// handleStatus streams job progress via SSE
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job := s.jobs.Get(jobID)

	if job == nil {
		s.renderError(w, "Job not found.", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case update := <-job.Updates:
			fmt.Fprintf(w, "event: progress\n")
			fmt.Fprintf(w, "data: %s\n\n", update)
			flusher.Flush()

			if job.Status == StatusComplete || job.Status == StatusFailed {
				fmt.Fprintf(w, "event: done\n")
				fmt.Fprintf(w, "data: %s\n\n", job.Status)
				flusher.Flush()
				return
			}
		}
	}
}

// handleResult renders the finished score page
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job := s.jobs.Get(jobID)

	if job == nil {
		s.renderError(w, "Job not found.", http.StatusNotFound)
		return
	}

	if job.Status == StatusFailed {
		s.render(w, "error.html", map[string]any{
			"Error": job.Error,
		})
		return
	}

	if job.Status != StatusComplete {
		s.render(w, "processing.html", map[string]any{
			"JobID":    job.ID,
			"Filename": job.Filename,
			"Stage":    job.Stage,
		})
		return
	}

	vexJSON, err := json.Marshal(job.Result.VexNotes)
	if err != nil {
		vexJSON = []byte("[]")
	}

	s.render(w, "result.html", map[string]any{
		"JobID":       job.ID,
		"Filename":    job.Filename,
		"Summary":     job.Result.Summary,
		"ABC":         job.Result.ABC,
		"VexFlowJSON": string(vexJSON),
	})
}

// handleResultJSON returns the full result as JSON
func (s *Server) handleResultJSON(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job := s.jobs.Get(jobID)

	if job == nil || job.Status != StatusComplete {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"summary": job.Result.Summary,
		"abc":     job.Result.ABC,
		"notes":   job.Result.VexNotes,
	})
}

// handleDownloadMIDI serves the transcribed MIDI file
func (s *Server) handleDownloadMIDI(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job := s.jobs.Get(jobID)

	if job == nil || job.Status != StatusComplete || len(job.MIDI) == 0 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	name := strings.TrimSuffix(job.Filename, filepath.Ext(job.Filename))
	if name == "" {
		name = "transcription"
	}

	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.mid\"", name))
	w.Write(job.MIDI)
}

// handleDownloadReport serves the self-contained HTML report
func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job := s.jobs.Get(jobID)

	if job == nil || job.Status != StatusComplete {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	raw, err := os.ReadFile(job.Workspace.ReportHTML())
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.html\"")
	w.Write(raw)
}

// render renders a template
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// renderError renders an error message
func (s *Server) renderError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	s.templates.ExecuteTemplate(w, "error.html", map[string]any{
		"Error": message,
	})
}
