package github

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	vcr "gopkg.in/dnaeon/go-vcr.v2/recorder"
)

// RecordModeEnv switches fixture tests from replaying to recording. Recording
// talks to the live GitHub API and needs a real token:
//
//	DEEPCODE_VCR_MODE=record GITHUB_TOKEN=<token> go test ./pkg/github/...
const RecordModeEnv = "DEEPCODE_VCR_MODE"

// fixtureDir holds the recorded API exchanges, one cassette per fixture name.
const fixtureDir = "testdata/fixtures"

// Recorder replays (or records) GitHub API exchanges for tests.
type Recorder struct {
	recorder  *vcr.Recorder
	recording bool
}

// OpenFixture opens the named cassette for replay, or for recording when
// RecordModeEnv is set to "record". Tests are skipped when the fixture has
// not been recorded yet, so fixture tests never require network access.
// The recorder is stopped automatically when the test finishes.
func OpenFixture(t *testing.T, name string) *Recorder {
	t.Helper()

	recording := os.Getenv(RecordModeEnv) == "record"
	mode := vcr.ModeReplaying
	if recording {
		mode = vcr.ModeRecording
	}

	// go-vcr appends the ".yaml" extension itself.
	r, err := vcr.NewAsMode(filepath.Join(fixtureDir, name), mode, nil)
	if err != nil {
		if errors.Is(err, cassette.ErrCassetteNotFound) {
			t.Skipf("fixture %q not recorded; set %s=record to create it", name, RecordModeEnv)
		}
		t.Fatalf("failed to open fixture %q: %v", name, err)
	}

	// Credentials never end up in committed cassettes.
	r.AddSaveFilter(func(i *cassette.Interaction) error {
		delete(i.Request.Headers, "Authorization")
		return nil
	})

	t.Cleanup(func() {
		if err := r.Stop(); err != nil {
			t.Errorf("failed to stop recorder for %q: %v", name, err)
		}
	})

	return &Recorder{recorder: r, recording: recording}
}

// Recording reports whether the recorder talks to the live API.
func (r *Recorder) Recording() bool {
	return r.recording
}

// HTTPClient returns a client that routes requests through the recorder.
func (r *Recorder) HTTPClient() *http.Client {
	return &http.Client{Transport: r.recorder}
}
