package midimodel

import (
	"bytes"
	"errors"

	"gitlab.com/gomidi/midi/v2/smf"

	apperrors "github.com/sergiecode/audio-to-sheet/internal/errors"
)

// pendingNote is a note-on waiting for its matching note-off.
type pendingNote struct {
	start    float64
	velocity uint8
}

// trackState accumulates one SMF track while reading.
type trackState struct {
	name       string
	instrument string
	program    int
	notes      []Note
	pending    map[uint8][]pendingNote
}

// Parse decodes a raw MIDI byte buffer into a Model. A buffer that is not
// a well-formed MIDI container yields a *apperrors.ParseError; a well-formed
// file with no notes yields a Model with an empty track list. The model name
// comes from the file's first track-name event, else fallbackName.
func Parse(raw []byte, fallbackName string) (*Model, error) {
	if len(raw) == 0 {
		return nil, apperrors.NewParseError(fallbackName, errors.New("empty buffer"))
	}
	if _, err := smf.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, apperrors.NewParseError(fallbackName, err)
	}

	var states []*trackState
	stateFor := func(trackNo int) *trackState {
		for len(states) <= trackNo {
			states = append(states, &trackState{program: -1, pending: map[uint8][]pendingNote{}})
		}
		return states[trackNo]
	}

	songName := ""
	maxEnd := 0.0

	// Second read over a buffer ReadFrom already validated in full, so a
	// mid-stream error cannot occur here.
	rd := smf.ReadTracksFrom(bytes.NewReader(raw))
	rd.Do(func(ev smf.TrackEvent) {
		st := stateFor(ev.TrackNo)
		at := float64(ev.AbsMicroSeconds) / 1e6

		var text string
		if ev.Message.GetMetaTrackName(&text) {
			if st.name == "" {
				st.name = text
			}
			if ev.TrackNo == 0 && songName == "" {
				songName = text
			}
			return
		}
		if ev.Message.GetMetaInstrument(&text) {
			if st.instrument == "" {
				st.instrument = text
			}
			return
		}

		var ch, key, vel uint8
		if ev.Message.GetProgramChange(&ch, &key) {
			if st.program < 0 {
				st.program = int(key)
			}
			return
		}
		if ev.Message.GetNoteStart(&ch, &key, &vel) {
			st.pending[key] = append(st.pending[key], pendingNote{start: at, velocity: vel})
			return
		}
		if ev.Message.GetNoteEnd(&ch, &key) {
			open := st.pending[key]
			if len(open) == 0 {
				return
			}
			on := open[0]
			st.pending[key] = open[1:]
			st.notes = append(st.notes, Note{
				PitchName:       PitchName(int(key)),
				MidiNumber:      int(key),
				TimeSeconds:     on.start,
				DurationSeconds: at - on.start,
				Velocity:        float64(on.velocity) / 127,
			})
			if at > maxEnd {
				maxEnd = at
			}
		}
	})

	model := &Model{Name: songName}
	if model.Name == "" {
		model.Name = fallbackName
	}
	for _, st := range states {
		if len(st.notes) == 0 {
			continue
		}
		instrument := st.instrument
		if instrument == "" && st.program >= 0 {
			instrument = InstrumentName(st.program)
		}
		model.Tracks = append(model.Tracks, Track{
			Name:       st.name,
			Instrument: instrument,
			Notes:      st.notes,
		})
	}
	model.DurationSeconds = maxEnd

	return model, nil
}
