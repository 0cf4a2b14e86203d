package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/solace/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func stubConfigDir(t *testing.T, dir string) {
	t.Helper()
	old := userConfigDirFunc
	t.Cleanup(func() { userConfigDirFunc = old })
	userConfigDirFunc = func() (string, error) { return dir, nil }
}

func stubProcess(t *testing.T, fn func(int) (ps.Process, error)) {
	t.Helper()
	old := findProcessFunc
	t.Cleanup(func() { findProcessFunc = old })
	findProcessFunc = fn
}

func TestTrayConfigDir(t *testing.T) {
	tempDir := t.TempDir()
	stubConfigDir(t, tempDir)

	trayDir := filepath.Join(tempDir, constants.TrayAppIdentifier)
	dir, err := TrayConfigDir()
	if err != nil || dir != trayDir {
		t.Errorf("TrayConfigDir() = %q, %v, want %q", dir, err, trayDir)
	}

	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	custom := filepath.Join(tempDir, "elsewhere")
	settings := fmt.Sprintf(`{"settings": {"lockfile_dir": %q}}`, custom)
	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}
	dir, err = TrayConfigDir()
	if err != nil || dir != custom {
		t.Errorf("TrayConfigDir() = %q, %v, want %q", dir, err, custom)
	}
}

func TestReadTrayLock(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"two-part format", "8080|12345", "malformed"},
		{"garbage", "invalid", "malformed"},
		{"empty secret", "8080|12345|", "secret"},
		{"empty port", "|12345|s3cret", "port"},
		{"port out of range", "99999|12345|s3cret", "outside valid range"},
		{"bad pid", "8080|abc|s3cret", "process ID"},
		{"valid", "8080|12345|s3cret\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), constants.NotifierLockfileName)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			lock, err := readTrayLock(path)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if lock.Port != "8080" || lock.PID != 12345 || lock.Secret != "s3cret" {
					t.Errorf("lock = %+v", lock)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}

	if _, err := readTrayLock(filepath.Join(t.TempDir(), "missing")); err != ErrTrayNotRunning {
		t.Errorf("missing lockfile error = %v, want ErrTrayNotRunning", err)
	}
}

func TestVerifyTrayProcess(t *testing.T) {
	stubProcess(t, func(int) (ps.Process, error) { return nil, nil })
	if err := verifyTrayProcess(1); err != ErrTrayNotRunning {
		t.Errorf("missing process error = %v", err)
	}

	stubProcess(t, func(pid int) (ps.Process, error) { return &mockProcess{pid: pid, executable: "other-app"}, nil })
	if err := verifyTrayProcess(1); err == nil {
		t.Error("expected error for wrong executable")
	}

	stubProcess(t, func(pid int) (ps.Process, error) { return &mockProcess{pid: pid, executable: constants.TrayExecutable}, nil })
	if err := verifyTrayProcess(1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNotifyEndToEnd(t *testing.T) {
	var got WebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get(constants.TraySecretHeader) != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Unauthorized"))
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got.Text == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	configDir := t.TempDir()
	stubConfigDir(t, configDir)
	stubProcess(t, func(pid int) (ps.Process, error) { return &mockProcess{pid: pid, executable: constants.TrayExecutable}, nil })

	trayDir := filepath.Join(configDir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	lockfile := filepath.Join(trayDir, constants.NotifierLockfileName)
	writeLock := func(secret string) {
		content := fmt.Sprintf("%s|4242|%s", u.Port(), secret)
		if err := os.WriteFile(lockfile, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}

	n := New()
	writeLock("s3cret")
	if err := n.Notify(context.Background(), "time to breathe"); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if got.Text != "time to breathe" || got.DurationMs != constants.NotificationDurationMs {
		t.Errorf("payload = %+v", got)
	}

	if err := n.Notify(context.Background(), "fail"); err == nil {
		t.Error("expected error for server failure")
	}

	writeLock("wrong")
	if err := n.Notify(context.Background(), "hello"); err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("wrong secret error = %v", err)
	}
}
