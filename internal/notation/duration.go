package notation

// durationVocab names the five duration buckets in one renderer's
// vocabulary. Both encoders classify through the same thresholds so they
// can never disagree on a boundary note.
type durationVocab struct {
	Sixteenth string
	Eighth    string
	Quarter   string
	Half      string
	Whole     string
}

var (
	abcDurations = durationVocab{Sixteenth: "/4", Eighth: "/2", Quarter: "", Half: "2", Whole: "4"}
	vexDurations = durationVocab{Sixteenth: "16", Eighth: "8", Quarter: "q", Half: "h", Whole: "w"}
)

// classifyDuration buckets a note length in seconds against the
// quarter-note baseline. Zero and negative durations land in the shortest
// bucket; exactly 2.0 is still a half note.
func classifyDuration(seconds float64, vocab durationVocab) string {
	switch {
	case seconds < 0.25:
		return vocab.Sixteenth
	case seconds < 0.5:
		return vocab.Eighth
	case seconds < 1:
		return vocab.Quarter
	case seconds <= 2:
		return vocab.Half
	default:
		return vocab.Whole
	}
}
