package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/family-connect/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI answers the request types the CLI tests use and records the calls.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	// codes and tickets are single-use, as on the server.
	verified bool
	loggedIn bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ := q.Get("type")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, typ)

	respond := func(status int, data interface{}, msg string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		body := map[string]interface{}{"DATA": data}
		if msg != "" {
			body["ERROR"] = msg
		}
		_ = json.NewEncoder(w).Encode(body)
	}

	switch typ {
	case "send_otp":
		f.verified = false
		respond(http.StatusOK, []interface{}{map[string]interface{}{"phone": "+919876543210", "expires_in": 300, "resend_in": 30}}, "")
	case "verify_otp":
		if f.verified {
			respond(http.StatusNotFound, []interface{}{}, "no pending code for this phone")
			return
		}
		if q.Get("otp") != "123456" {
			respond(http.StatusUnauthorized, []interface{}{}, "invalid code")
			return
		}
		f.verified = true
		respond(http.StatusOK, []interface{}{map[string]interface{}{"ticket": "tk", "user_id": "u1", "needs_name": true}}, "")
	case "complete_registration":
		respond(http.StatusOK, []interface{}{domain.User{UserID: "u1", Name: q.Get("name"), Registered: true}}, "")
	case "login":
		if q.Get("device_uuid") == "" {
			respond(http.StatusBadRequest, []interface{}{}, "device_uuid required")
			return
		}
		if f.loggedIn {
			respond(http.StatusUnauthorized, []interface{}{}, "invalid or expired ticket")
			return
		}
		f.loggedIn = true
		respond(http.StatusOK, []interface{}{map[string]interface{}{
			"token": "jwt", "refresh_token": "rt",
			"user": domain.User{UserID: "u1", Name: "Asha Rao", Phone: "+919876543210"},
		}}, "")
	case "notifications":
		if r.Header.Get("Authorization") != "Bearer jwt" {
			respond(http.StatusUnauthorized, []interface{}{}, "unauthorized")
			return
		}
		respond(http.StatusOK, []domain.Notification{{NotificationID: "n1", Title: "Welcome"}}, "")
	case "logout":
		respond(http.StatusOK, []interface{}{map[string]string{"message": "logged out"}}, "")
	default:
		respond(http.StatusBadRequest, []interface{}{}, "unknown type")
	}
}

func run(t *testing.T, configPath, baseURL string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&options{interactive: func() bool { return false }})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", configPath, "--base-url", baseURL}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_FlagLoginThenNotifications(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()
	t.Setenv(EnvBaseURL, "")
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := run(t, configPath, srv.URL, "notifications")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	out, err := run(t, configPath, srv.URL, "login", "--phone", "9876543210")
	require.NoError(t, err)
	assert.Contains(t, out, "Code sent to +919876543210")

	out, err = run(t, configPath, srv.URL, "login", "--phone", "+919876543210", "--otp", "123456")
	require.NoError(t, err)
	assert.Contains(t, out, "--name")

	out, err = run(t, configPath, srv.URL, "--json", "login", "--name", "asha rao")
	require.NoError(t, err)
	var user domain.User
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	assert.Equal(t, "u1", user.UserID)

	out, err = run(t, configPath, srv.URL, "--json", "notifications")
	require.NoError(t, err)
	var ns []domain.Notification
	require.NoError(t, json.Unmarshal([]byte(out), &ns))
	require.Len(t, ns, 1)
	assert.Equal(t, "Welcome", ns[0].Title)

	_, err = run(t, configPath, srv.URL, "logout")
	require.NoError(t, err)
	_, err = run(t, configPath, srv.URL, "notifications")
	require.Error(t, err)

	assert.Equal(t, []string{"send_otp", "verify_otp", "complete_registration", "login", "notifications", "logout"}, api.calls)
}

func TestCLI_FlagLoginRepeatsDocumentedCommand(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()
	t.Setenv(EnvBaseURL, "")
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := run(t, configPath, srv.URL, "login", "--phone", "9876543210")
	require.NoError(t, err)

	out, err := run(t, configPath, srv.URL, "login", "--phone", "9876543210", "--otp", "123456")
	require.NoError(t, err)
	assert.Contains(t, out, "--name")

	out, err = run(t, configPath, srv.URL, "--json", "login", "--phone", "9876543210", "--otp", "123456", "--name", "Asha Rao")
	require.NoError(t, err)
	var user domain.User
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	assert.Equal(t, "u1", user.UserID)

	assert.Equal(t, []string{"send_otp", "verify_otp", "complete_registration", "login"}, api.calls)
}

func TestCLI_OtherNumberStartsOver(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()
	t.Setenv(EnvBaseURL, "")
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := run(t, configPath, srv.URL, "login", "--phone", "9876543210", "--otp", "123456")
	require.NoError(t, err)

	out, err := run(t, configPath, srv.URL, "login", "--phone", "9123456789")
	require.NoError(t, err)
	assert.Contains(t, out, "Code sent")
	assert.Equal(t, []string{"verify_otp", "send_otp"}, api.calls)
}

func TestCLI_WrongCode(t *testing.T) {
	srv := httptest.NewServer(&fakeAPI{})
	defer srv.Close()
	t.Setenv(EnvBaseURL, "")
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := run(t, configPath, srv.URL, "login", "--phone", "9876543210", "--otp", "000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid code")
}

func TestCLI_ProfileEditRequiresLogin(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	_, err := run(t, configPath, "http://127.0.0.1:1", "profile", "edit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestRenderReminders(t *testing.T) {
	out := renderReminders([]domain.Reminder{
		{Name: "Asha", Kind: domain.ReminderBirthday, NextOccurrence: "2026-03-03", DaysUntil: 2, Years: 41},
	})
	assert.Contains(t, out, "Asha birthday (41)")
	assert.Contains(t, out, "in 2 days")
	assert.Contains(t, renderReminders(nil), "No upcoming")
}

func TestCLI_ConfigSavePersistsBaseURL(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := run(t, configPath, "https://api.example.org", "config", "save")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved")

	cmd := newRootCmd(&options{interactive: func() bool { return false }})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--config", configPath, "--json", "config"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var cfg Config
	require.NoError(t, json.Unmarshal(buf.Bytes(), &cfg))
	assert.Equal(t, "https://api.example.org", cfg.BaseURL)
	assert.Equal(t, "30s", cfg.Timeout)
}
