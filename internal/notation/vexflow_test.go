package notation

import (
	"testing"

	"github.com/sergiecode/audio-to-sheet/internal/midimodel"
)

func TestToVexFlowNilModel(t *testing.T) {
	got := ToVexFlow(nil)

	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no descriptors, got %d", len(got))
	}
}

func TestToVexFlowEmptyModel(t *testing.T) {
	got := ToVexFlow(&midimodel.Model{Name: "empty"})

	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestToVexFlowNotes(t *testing.T) {
	m := singleTrackModel("two",
		midimodel.Note{PitchName: "C4", MidiNumber: 60, TimeSeconds: 0, DurationSeconds: 0.5},
		midimodel.Note{PitchName: "D4", MidiNumber: 62, TimeSeconds: 0.5, DurationSeconds: 0.5},
	)

	got := ToVexFlow(m)

	if len(got) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(got))
	}
	if got[0].Keys[0] != "C/4" || got[0].Duration != "q" {
		t.Errorf("first descriptor = %#v", got[0])
	}
	if got[1].Keys[0] != "D/4" || got[1].Duration != "q" {
		t.Errorf("second descriptor = %#v", got[1])
	}
	if got[0].MidiNumber != 60 || got[1].MidiNumber != 62 {
		t.Error("descriptors should carry the MIDI numbers")
	}
}

func TestToVexFlowSharpKey(t *testing.T) {
	m := singleTrackModel("sharp",
		midimodel.Note{PitchName: "C#5", MidiNumber: 73, DurationSeconds: 0.5})

	got := ToVexFlow(m)

	if len(got) != 1 || got[0].Keys[0] != "C#/5" {
		t.Errorf("expected key C#/5, got %#v", got)
	}
}

func TestToVexFlowSortsByOnset(t *testing.T) {
	m := singleTrackModel("order",
		midimodel.Note{PitchName: "E4", TimeSeconds: 1.0, DurationSeconds: 0.5},
		midimodel.Note{PitchName: "C4", TimeSeconds: 0.0, DurationSeconds: 0.5},
	)

	got := ToVexFlow(m)

	if len(got) != 2 || got[0].Keys[0] != "C/4" || got[1].Keys[0] != "E/4" {
		t.Errorf("descriptors should be ordered by onset, got %#v", got)
	}
}

func TestToVexFlowEqualOnsetsKeepInputOrder(t *testing.T) {
	m := singleTrackModel("tie",
		midimodel.Note{PitchName: "E4", MidiNumber: 64, TimeSeconds: 1.0, DurationSeconds: 0.5},
		midimodel.Note{PitchName: "C4", MidiNumber: 60, TimeSeconds: 1.0, DurationSeconds: 0.5},
	)

	got := ToVexFlow(m)

	if len(got) != 2 || got[0].Keys[0] != "E/4" || got[1].Keys[0] != "C/4" {
		t.Errorf("equal onsets should keep input order, got %#v", got)
	}
}

func TestToVexFlowMalformedPitch(t *testing.T) {
	m := singleTrackModel("bad",
		midimodel.Note{PitchName: "C4", DurationSeconds: 0.5},
		midimodel.Note{PitchName: "??", TimeSeconds: 1, DurationSeconds: 0.5},
	)

	got := ToVexFlow(m)

	if got == nil || len(got) != 0 {
		t.Errorf("malformed pitch should yield an empty sequence, got %#v", got)
	}
}
