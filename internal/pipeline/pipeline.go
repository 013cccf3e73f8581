// Package pipeline sequences parse, encode and summarize for one
// transcription result.
package pipeline

import (
	"github.com/sergiecode/audio-to-sheet/internal/midimodel"
	"github.com/sergiecode/audio-to-sheet/internal/notation"
	"github.com/sergiecode/audio-to-sheet/internal/summary"
)

// Result contains all pipeline outputs for one MIDI buffer.
type Result struct {
	Model    *midimodel.Model
	ABC      string
	VexNotes []notation.NoteDescriptor
	Summary  summary.Summary
}

// Process parses raw MIDI bytes and feeds the model to both notation
// encoders and the summary reporter. A parse failure aborts the whole
// pipeline, since nothing downstream can run without a model. The three
// downstream stages run independently: each fails closed on its own, so
// one encoder degrading to its fallback never blocks the others.
func Process(raw []byte, fallbackName string) (*Result, error) {
	model, err := midimodel.Parse(raw, fallbackName)
	if err != nil {
		return nil, err
	}

	return &Result{
		Model:    model,
		ABC:      notation.ToABC(model),
		VexNotes: notation.ToVexFlow(model),
		Summary:  summary.Summarize(model),
	}, nil
}

// Degraded lists the stages that produced their fallback output instead
// of a real encoding. Callers use this for logging; the pipeline itself
// never fails past the parse stage.
func (r *Result) Degraded() []string {
	var stages []string
	if r.ABC == notation.FallbackABC {
		stages = append(stages, "abc")
	}
	if len(r.VexNotes) == 0 && r.Model != nil && r.Model.NoteCount() > 0 {
		stages = append(stages, "vexflow")
	}
	return stages
}
