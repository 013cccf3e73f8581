package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Workspace manages the files of a single transcription job
type Workspace struct {
	Dir       string
	CreatedAt time.Time
}

// Create creates a new isolated workspace in the system temp directory
func Create() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "audio-to-sheet-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	return &Workspace{
		Dir:       dir,
		CreatedAt: time.Now(),
	}, nil
}

// Path helpers for workspace files
func (w *Workspace) InputAudio(ext string) string { return filepath.Join(w.Dir, "input"+ext) }
func (w *Workspace) ResultMIDI() string           { return filepath.Join(w.Dir, "result.mid") }
func (w *Workspace) ScoreABC() string             { return filepath.Join(w.Dir, "score.abc") }
func (w *Workspace) NotesJSON() string            { return filepath.Join(w.Dir, "notes.json") }
func (w *Workspace) SummaryJSON() string          { return filepath.Join(w.Dir, "summary.json") }
func (w *Workspace) ReportHTML() string           { return filepath.Join(w.Dir, "report.html") }

// Cleanup removes the workspace directory and all contents
func (w *Workspace) Cleanup() error {
	return os.RemoveAll(w.Dir)
}
