// Package audio validates uploaded audio files before they are sent to
// the transcription service.
package audio

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	apperrors "github.com/sergiecode/audio-to-sheet/internal/errors"
)

// MaxFileSize caps uploads at 25MB, matching the transcription service's
// own limit.
const MaxFileSize = 25 * 1024 * 1024

// Magic bytes for audio format detection
var (
	wavMagic  = []byte("RIFF")
	id3Magic  = []byte("ID3") // MP3 with ID3 tag
	mp3Frames = [][]byte{
		{0xFF, 0xFB},
		{0xFF, 0xFA},
		{0xFF, 0xF3},
		{0xFF, 0xF2},
	}
)

// Format represents an audio file format
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatUnknown Format = "unknown"
)

// DetectFormat sniffs the format from the first bytes of the file.
func DetectFormat(head []byte) Format {
	if bytes.HasPrefix(head, wavMagic) {
		return FormatWAV
	}
	if bytes.HasPrefix(head, id3Magic) {
		return FormatMP3
	}
	for _, frame := range mp3Frames {
		if bytes.HasPrefix(head, frame) {
			return FormatMP3
		}
	}
	return FormatUnknown
}

// ValidateUpload checks an upload's name, size and magic bytes before it
// is forwarded to the transcription service.
func ValidateUpload(filename string, size int64, head []byte) (Format, error) {
	if filename == "" || size == 0 {
		return FormatUnknown, apperrors.ErrNoAudioFile
	}
	if size > MaxFileSize {
		return FormatUnknown, fmt.Errorf("%w: maximum size is %dMB", apperrors.ErrFileTooLarge, MaxFileSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".wav" && ext != ".mp3" {
		return FormatUnknown, fmt.Errorf("%w: please provide a WAV or MP3 file", apperrors.ErrUnsupportedFormat)
	}

	format := DetectFormat(head)
	if format == FormatUnknown {
		return FormatUnknown, fmt.Errorf("%w: please provide a WAV or MP3 file", apperrors.ErrUnsupportedFormat)
	}
	return format, nil
}
