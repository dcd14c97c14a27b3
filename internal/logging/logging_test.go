package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/hometray-log")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/hometray-log" {
		t.Errorf("got %q, want /tmp/hometray-log", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(wd, "logs"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("HOMETRAY_LOG_PATH", "/tmp/hometray-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/hometray-env-log" {
		t.Errorf("got %q, want /tmp/hometray-env-log", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("HOMETRAY_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "hometray") {
		t.Errorf("expected default dir to mention hometray, got %q", got)
	}
}

func TestInitWritesFile(t *testing.T) {
	tmp := setupLogDir(t)
	if err := Init("debug"); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	l := Logger()
	l.Info().Str("entity", "light.desk").Msg("poll ok")
	Close()

	data, err := os.ReadFile(filepath.Join(tmp, logFileName))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "poll ok") || !strings.Contains(string(data), "light.desk") {
		t.Errorf("log file missing entry: %q", string(data))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
