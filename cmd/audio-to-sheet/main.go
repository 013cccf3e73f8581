package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sergiecode/audio-to-sheet/internal/audio"
	"github.com/sergiecode/audio-to-sheet/internal/config"
	apperrors "github.com/sergiecode/audio-to-sheet/internal/errors"
	"github.com/sergiecode/audio-to-sheet/internal/pipeline"
	"github.com/sergiecode/audio-to-sheet/internal/progress"
	"github.com/sergiecode/audio-to-sheet/internal/report"
	"github.com/sergiecode/audio-to-sheet/internal/server"
	"github.com/sergiecode/audio-to-sheet/internal/transcribe"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "audio-to-sheet",
	Short: "Turn audio recordings into sheet music",
	Long: `audio-to-sheet uploads an audio file to a transcription service,
parses the returned MIDI and renders it as sheet music.

Pipeline: audio → transcription service → MIDI → ABC + VexFlow notation`,
	Version: version,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render an audio or MIDI file as sheet music",
	Long: `Render sheet music from an audio file (transcribed by the external
service) or directly from a local MIDI file.

Examples:
  audio-to-sheet render --input song.wav
  audio-to-sheet render -i song.mp3 -o out/ --report
  audio-to-sheet render --midi take.mid -o out/`,
	RunE: runRender,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface",
	Long:  `Start the web interface for uploading audio files and viewing scores.`,
	RunE:  runServe,
}

var (
	flagInput      string
	flagMIDI       string
	flagOutput     string
	flagReport     bool
	flagVerbose    bool
	flagServiceURL string
	flagTimeout    time.Duration
	flagPort       int
)

func init() {
	renderCmd.Flags().StringVarP(&flagInput, "input", "i", "", "input audio file (WAV or MP3)")
	renderCmd.Flags().StringVarP(&flagMIDI, "midi", "m", "", "input MIDI file (skips transcription)")
	renderCmd.Flags().StringVarP(&flagOutput, "output", "o", ".", "output directory")
	renderCmd.Flags().BoolVar(&flagReport, "report", false, "also write a self-contained HTML report")
	renderCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose progress output")
	renderCmd.Flags().StringVar(&flagServiceURL, "service", "", "transcription service URL (overrides TRANSCRIBE_URL)")
	renderCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "transcription timeout (overrides TRANSCRIBE_TIMEOUT_SECONDS)")

	serveCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "HTTP port (overrides PORT)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(serveCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if flagInput == "" && flagMIDI == "" {
		return fmt.Errorf("either --input or --midi is required")
	}
	if flagInput != "" && flagMIDI != "" {
		return fmt.Errorf("--input and --midi are mutually exclusive")
	}

	cfg := config.Load()
	if flagServiceURL != "" {
		cfg.TranscribeURL = flagServiceURL
	}
	if flagTimeout > 0 {
		cfg.TranscribeTimeout = flagTimeout
	}

	reporter := progress.NewReporter(os.Stdout, flagVerbose)

	var midiBytes []byte
	var sourceName string

	if flagMIDI != "" {
		sourceName = filepath.Base(flagMIDI)
		data, err := os.ReadFile(flagMIDI)
		if err != nil {
			if os.IsNotExist(err) {
				err = fmt.Errorf("%w: %s", apperrors.ErrFileNotFound, flagMIDI)
			}
			reporter.Error(err)
			return err
		}
		midiBytes = data
	} else {
		sourceName = filepath.Base(flagInput)
		data, err := transcribeAudio(cmd.Context(), cfg, reporter)
		if err != nil {
			reporter.Error(err)
			return err
		}
		midiBytes = data
	}

	// Parse + encode + summarize
	reporter.StartStage(progress.StageParse)
	result, err := pipeline.Process(midiBytes, strings.TrimSuffix(sourceName, filepath.Ext(sourceName)))
	if err != nil {
		reporter.Error(err)
		return err
	}
	reporter.StageComplete("%d notes across %d track(s)",
		result.Summary.TotalNotes, result.Summary.TrackCount)
	for _, stage := range result.Degraded() {
		reporter.Warning("%s encoder degraded to fallback output", stage)
	}

	reporter.StartStage(progress.StageEncode)
	if err := os.MkdirAll(flagOutput, 0755); err != nil {
		reporter.Error(err)
		return err
	}
	if err := writeOutputs(flagOutput, sourceName, midiBytes, result); err != nil {
		reporter.Error(err)
		return err
	}
	reporter.StageComplete("Wrote score.abc, notes.json, summary.json")

	if flagReport {
		reporter.StartStage(progress.StageSummarize)
		gen := report.NewGenerator()
		data := &report.Data{SourceName: sourceName, CreatedAt: time.Now(), Result: result}
		if err := gen.WriteFile(filepath.Join(flagOutput, "report.html"), data); err != nil {
			reporter.Warning("report generation failed: %v", err)
		} else {
			reporter.StageComplete("Wrote report.html")
		}
	}

	reporter.Done(flagOutput)
	return nil
}

// transcribeAudio validates the input file and runs it through the
// external transcription service.
func transcribeAudio(ctx context.Context, cfg *config.Config, reporter *progress.Reporter) ([]byte, error) {
	reporter.StartStage(progress.StageValidate)

	f, err := os.Open(flagInput)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrFileNotFound, flagInput)
		}
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	head := make([]byte, 12)
	n, _ := f.Read(head)
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}

	format, err := audio.ValidateUpload(filepath.Base(flagInput), info.Size(), head[:n])
	if err != nil {
		return nil, err
	}
	reporter.StageComplete("Valid %s file", format)

	reporter.StartStage(progress.StageTranscribe)
	reporter.Update("service: %s, timeout: %s", cfg.TranscribeURL, cfg.TranscribeTimeout)
	client := transcribe.NewClient(cfg.TranscribeURL, cfg.TranscribeTimeout)

	if err := client.Health(ctx); err != nil {
		reporter.Warning("backend health check failed: %v", err)
	}

	midiBytes, err := client.Transcribe(ctx, filepath.Base(flagInput), f)
	if err != nil {
		return nil, err
	}
	reporter.StageComplete("Received MIDI (%d bytes)", len(midiBytes))
	return midiBytes, nil
}

// writeOutputs writes the rendered notation files to the output directory.
func writeOutputs(dir, sourceName string, midiBytes []byte, result *pipeline.Result) error {
	if err := os.WriteFile(filepath.Join(dir, "score.abc"), []byte(result.ABC), 0644); err != nil {
		return fmt.Errorf("write score.abc: %w", err)
	}

	notesJSON, err := json.MarshalIndent(result.VexNotes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.json"), notesJSON, 0644); err != nil {
		return fmt.Errorf("write notes.json: %w", err)
	}

	summaryJSON, err := json.MarshalIndent(result.Summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.json"), summaryJSON, 0644); err != nil {
		return fmt.Errorf("write summary.json: %w", err)
	}

	// Keep the MIDI next to the notation when it came from the service
	if flagInput != "" && len(midiBytes) > 0 {
		name := strings.TrimSuffix(sourceName, filepath.Ext(sourceName)) + ".mid"
		if err := os.WriteFile(filepath.Join(dir, name), midiBytes, 0644); err != nil {
			return fmt.Errorf("write MIDI: %w", err)
		}
	}

	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if flagPort > 0 {
		cfg.Port = flagPort
	}

	srv, err := server.New(server.Config{
		Port:              cfg.Port,
		TranscribeURL:     cfg.TranscribeURL,
		TranscribeTimeout: cfg.TranscribeTimeout,
		DevMode:           cfg.DevMode,
	})
	if err != nil {
		return err
	}

	return srv.Run()
}
