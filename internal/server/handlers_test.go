package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// fixtureMIDI builds a minimal valid MIDI buffer for the stub backend to
// return.
func fixtureMIDI(t *testing.T) []byte {
	t.Helper()

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName("Stub Song"))
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(960, midi.NoteOff(0, 60))
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)
	require.NoError(t, s.Add(tr))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

// stubBackend fakes the transcription service.
func stubBackend(t *testing.T, midiBytes []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.Write([]byte(`{"status":"healthy"}`))
		case "/transcribe":
			w.Write(midiBytes)
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestServer(t *testing.T, backendURL string) *Server {
	t.Helper()
	s, err := New(Config{
		Port:              0,
		TranscribeURL:     backendURL,
		TranscribeTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return s
}

func TestHandleHealth(t *testing.T) {
	backend := stubBackend(t, nil)
	defer backend.Close()

	s := newTestServer(t, backend.URL)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","backend":"ok"}`, rec.Body.String())
}

func TestHandleHealthBackendDown(t *testing.T) {
	backend := stubBackend(t, nil)
	backend.Close() // nothing listening anymore

	s := newTestServer(t, backend.URL)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","backend":"down"}`, rec.Body.String())
}

func TestHandleUploadRejectsBadFile(t *testing.T) {
	backend := stubBackend(t, nil)
	defer backend.Close()
	s := newTestServer(t, backend.URL)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("audio", "notes.txt")
	require.NoError(t, err)
	part.Write([]byte("this is not audio"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported upload")
}

func TestHandleUploadRejectsMissingFile(t *testing.T) {
	backend := stubBackend(t, nil)
	defer backend.Close()
	s := newTestServer(t, backend.URL)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResultNotFound(t *testing.T) {
	backend := stubBackend(t, nil)
	defer backend.Close()
	s := newTestServer(t, backend.URL)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/result/no-such-job", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobLifecycle(t *testing.T) {
	midiBytes := fixtureMIDI(t)
	backend := stubBackend(t, midiBytes)
	defer backend.Close()
	s := newTestServer(t, backend.URL)

	job, err := s.jobs.Create()
	require.NoError(t, err)

	inputPath := job.Workspace.InputAudio(".wav")
	require.NoError(t, os.WriteFile(inputPath, []byte("RIFFfake-wav"), 0644))
	job.InputPath = inputPath
	job.Filename = "take1.wav"

	// Run synchronously so the assertions see the finished job.
	s.jobs.Process(job)

	require.Equal(t, StatusComplete, job.Status)
	require.NotNil(t, job.Result)
	assert.Equal(t, "Stub Song", job.Result.Summary.Name)
	assert.Equal(t, midiBytes, job.MIDI)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/result/"+job.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Stub Song")

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/result/"+job.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"abc"`)

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/"+job.ID+"/midi", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/midi", rec.Header().Get("Content-Type"))
	assert.Equal(t, midiBytes, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/"+job.ID+"/report", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Stub Song")

	// Notation artifacts land in the workspace next to the MIDI.
	for _, path := range []string{
		job.Workspace.ScoreABC(),
		job.Workspace.NotesJSON(),
		job.Workspace.SummaryJSON(),
	} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}
}

func TestJobDiscard(t *testing.T) {
	backend := stubBackend(t, nil)
	defer backend.Close()
	s := newTestServer(t, backend.URL)

	job, err := s.jobs.Create()
	require.NoError(t, err)
	dir := job.Workspace.Dir

	s.jobs.Discard(job)

	assert.Nil(t, s.jobs.Get(job.ID))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "workspace dir should be removed")
}

func TestJobFailsOnBackendError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}`))
	}))
	defer backend.Close()
	s := newTestServer(t, backend.URL)

	job, err := s.jobs.Create()
	require.NoError(t, err)

	inputPath := job.Workspace.InputAudio(".wav")
	require.NoError(t, os.WriteFile(inputPath, []byte("RIFFfake-wav"), 0644))
	job.InputPath = inputPath
	job.Filename = "take1.wav"

	s.jobs.Process(job)

	assert.Equal(t, StatusFailed, job.Status)
	assert.Contains(t, job.Error, "Transcription failed")
}
