package github

import (
	"context"
	"os"
	"testing"
)

// TestFixtureCurrentUser replays a recorded exchange with the live API; it is
// skipped until a fixture has been recorded (see RecordModeEnv).
func TestFixtureCurrentUser(t *testing.T) {
	rec := OpenFixture(t, "get_current_user")

	token := "recorded-token"
	if rec.Recording() {
		token = os.Getenv("GITHUB_TOKEN")
		if token == "" {
			t.Fatal("GITHUB_TOKEN must be set when recording fixtures")
		}
	}

	client := NewClient(token, WithHTTPClient(rec.HTTPClient()))
	user, err := client.GetCurrentUser(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentUser() error = %v", err)
	}
	if user.Login == "" {
		t.Error("recorded user has no login")
	}
}
