package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestResolveLogFilePathCreatesDir(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "logs")

	got, err := resolveLogFilePath(Options{Dir: tmpDir})
	if err != nil {
		t.Fatalf("resolve log path failed: %v", err)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("unexpected log filename: %s", filepath.Base(got))
	}
	if _, err := os.Stat(tmpDir); err != nil {
		t.Fatalf("expected log dir to be created: %v", err)
	}
}

func TestNewReleaseWritesJSONToFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "release.log", Component: "worker"})
	log.Sugar().Infow("booking_created", "booking_id", 42)
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "release.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, `"message":"booking_created"`) || !strings.Contains(text, `"booking_id":42`) {
		t.Fatalf("expected structured json line, got=%s", text)
	}
	if !strings.Contains(text, `"app":"slotmail"`) || !strings.Contains(text, `"component":"worker"`) {
		t.Fatalf("expected base fields, got=%s", text)
	}
}

func TestNewDebugDoesNotWriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{Dir: tmpDir, Filename: "debug.log"})
	log.Info("debug-log-test")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create log file")
	}
}

func TestResolveLevel(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		debug bool
		want  zapcore.Level
	}{
		{name: "release default", raw: "", debug: false, want: zapcore.InfoLevel},
		{name: "debug default", raw: "", debug: true, want: zapcore.DebugLevel},
		{name: "explicit warn", raw: " WARN ", debug: true, want: zapcore.WarnLevel},
		{name: "invalid falls back", raw: "loud", debug: false, want: zapcore.InfoLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveLevel(tc.raw, tc.debug).Level()
			if got != tc.want {
				t.Fatalf("level want %s got %s", tc.want, got)
			}
		})
	}
}
