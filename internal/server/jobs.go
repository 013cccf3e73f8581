package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sergiecode/audio-to-sheet/internal/pipeline"
	"github.com/sergiecode/audio-to-sheet/internal/report"
	"github.com/sergiecode/audio-to-sheet/internal/transcribe"
	"github.com/sergiecode/audio-to-sheet/internal/workspace"
)

// Job status constants
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusComplete   JobStatus = "complete"
	StatusFailed     JobStatus = "failed"
)

// Job represents one upload being transcribed and rendered
type Job struct {
	ID        string
	Status    JobStatus
	Stage     string
	Filename  string
	InputPath string
	Workspace *workspace.Workspace
	MIDI      []byte
	Result    *pipeline.Result
	Error     string
	Updates   chan string
	CreatedAt time.Time
}

// JobManager manages transcription jobs
type JobManager struct {
	jobs      map[string]*Job
	mu        sync.RWMutex
	client    *transcribe.Client
	logger    *slog.Logger
	timeout   time.Duration
	retainFor time.Duration
}

// NewJobManager creates a new job manager
func NewJobManager(client *transcribe.Client, timeout time.Duration, logger *slog.Logger) *JobManager {
	return &JobManager{
		jobs:      make(map[string]*Job),
		client:    client,
		logger:    logger,
		timeout:   timeout,
		retainFor: 10 * time.Minute,
	}
}

// Create creates a new job with its own workspace
func (m *JobManager) Create() (*Job, error) {
	ws, err := workspace.Create()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Stage:     "Uploading...",
		Workspace: ws,
		Updates:   make(chan string, 10),
		CreatedAt: time.Now(),
	}
	m.jobs[job.ID] = job
	return job, nil
}

// Discard removes a job that never started processing, releasing its
// workspace immediately instead of waiting for the retention timer.
func (m *JobManager) Discard(job *Job) {
	job.Workspace.Cleanup()
	m.mu.Lock()
	delete(m.jobs, job.ID)
	m.mu.Unlock()
}

// Get retrieves a job by ID
func (m *JobManager) Get(id string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// Process uploads the job's audio to the transcription service, runs the
// notation pipeline over the returned MIDI and stores the result.
func (m *JobManager) Process(job *Job) {
	defer close(job.Updates)
	defer func() {
		time.AfterFunc(m.retainFor, func() {
			job.Workspace.Cleanup()
			m.mu.Lock()
			delete(m.jobs, job.ID)
			m.mu.Unlock()
		})
	}()

	job.Status = StatusProcessing

	// Stage 1: Transcription
	job.Stage = "Transcribing audio..."
	job.Updates <- job.Stage

	audioFile, err := os.Open(job.InputPath)
	if err != nil {
		m.fail(job, fmt.Sprintf("Read upload failed: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	midi, err := m.client.Transcribe(ctx, job.Filename, audioFile)
	cancel()
	audioFile.Close()
	if err != nil {
		m.fail(job, fmt.Sprintf("Transcription failed: %v", err))
		return
	}
	job.MIDI = midi
	job.Updates <- fmt.Sprintf("Received MIDI (%d bytes)", len(midi))

	if err := os.WriteFile(job.Workspace.ResultMIDI(), midi, 0644); err != nil {
		m.logger.Warn("save MIDI failed", "job", job.ID, "error", err)
	}

	// Stage 2: Parse + encode + summarize
	job.Stage = "Rendering sheet music..."
	job.Updates <- job.Stage

	result, err := pipeline.Process(midi, job.Filename)
	if err != nil {
		m.fail(job, fmt.Sprintf("MIDI parsing failed: %v", err))
		return
	}
	for _, stage := range result.Degraded() {
		m.logger.Warn("encoder degraded to fallback", "job", job.ID, "stage", stage)
	}

	job.Result = result
	m.saveArtifacts(job)
	job.Updates <- fmt.Sprintf("%d notes across %d track(s)",
		result.Summary.TotalNotes, result.Summary.TrackCount)

	job.Status = StatusComplete
	job.Stage = "Complete!"
	job.Updates <- job.Stage
}

// saveArtifacts writes the notation outputs next to the MIDI in the
// job's workspace. Failures only cost downloads, so they just log.
func (m *JobManager) saveArtifacts(job *Job) {
	ws := job.Workspace

	if err := os.WriteFile(ws.ScoreABC(), []byte(job.Result.ABC), 0644); err != nil {
		m.logger.Warn("save score failed", "job", job.ID, "error", err)
	}
	if notes, err := json.MarshalIndent(job.Result.VexNotes, "", "  "); err == nil {
		if err := os.WriteFile(ws.NotesJSON(), notes, 0644); err != nil {
			m.logger.Warn("save notes failed", "job", job.ID, "error", err)
		}
	}
	if sum, err := json.MarshalIndent(job.Result.Summary, "", "  "); err == nil {
		if err := os.WriteFile(ws.SummaryJSON(), sum, 0644); err != nil {
			m.logger.Warn("save summary failed", "job", job.ID, "error", err)
		}
	}

	gen := report.NewGenerator()
	data := &report.Data{SourceName: job.Filename, CreatedAt: time.Now(), Result: job.Result}
	if err := gen.WriteFile(ws.ReportHTML(), data); err != nil {
		m.logger.Warn("save report failed", "job", job.ID, "error", err)
	}
}

func (m *JobManager) fail(job *Job, message string) {
	job.Status = StatusFailed
	job.Error = message
	job.Updates <- message
	m.logger.Error("job failed", "job", job.ID, "error", message)
}
