package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	apperrors "github.com/sergiecode/audio-to-sheet/internal/errors"
	"github.com/sergiecode/audio-to-sheet/internal/notation"
)

// fixtureMIDI builds a one-track MIDI buffer with two quarter notes at
// 960 ticks per quarter and 120 BPM.
func fixtureMIDI(t *testing.T) []byte {
	t.Helper()

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName("Fixture"))
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(960, midi.NoteOff(0, 60))
	tr.Add(0, midi.NoteOn(0, 64, 100))
	tr.Add(960, midi.NoteOff(0, 64))
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)
	require.NoError(t, s.Add(tr))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestProcess(t *testing.T) {
	result, err := Process(fixtureMIDI(t), "fallback")
	require.NoError(t, err)

	require.NotNil(t, result.Model)
	assert.Equal(t, "Fixture", result.Model.Name)

	assert.Contains(t, result.ABC, "T: Fixture")
	assert.Contains(t, result.ABC, "C E")

	require.Len(t, result.VexNotes, 2)
	assert.Equal(t, []string{"C/4"}, result.VexNotes[0].Keys)
	assert.Equal(t, []string{"E/4"}, result.VexNotes[1].Keys)

	assert.Equal(t, "Fixture", result.Summary.Name)
	assert.Equal(t, 1, result.Summary.TrackCount)
	assert.Equal(t, 2, result.Summary.TotalNotes)

	assert.Empty(t, result.Degraded())
}

func TestProcessMalformed(t *testing.T) {
	result, err := Process([]byte("not midi"), "bad")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsParseError(err))
}

func TestDegraded(t *testing.T) {
	result, err := Process(fixtureMIDI(t), "")
	require.NoError(t, err)

	// Corrupt the pitch names after the fact to force fallback output.
	for i := range result.Model.Tracks[0].Notes {
		result.Model.Tracks[0].Notes[i].PitchName = "??"
	}
	result.ABC = notation.ToABC(result.Model)
	result.VexNotes = notation.ToVexFlow(result.Model)

	degraded := result.Degraded()
	assert.Equal(t, []string{"abc", "vexflow"}, degraded)
	assert.True(t, strings.Contains(result.ABC, "Transcription Error"))
}
