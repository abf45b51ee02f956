package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestWithSession(t *testing.T) {
	base, hook := test.NewNullLogger()
	log := FromLogrus(base).WithRun().WithSession("ep_1", strings.Repeat("x", 80))

	log.Info("parsed")

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Data["session"] != "ep_1" {
		t.Errorf("missing session field: %v", entry.Data)
	}
	if len(entry.Data["episode"].(string)) != 50 {
		t.Errorf("episode name should be cut to 50, got %q", entry.Data["episode"])
	}
	if entry.Data["run_id"] == "" || entry.Data["run_id"] == nil {
		t.Error("missing run id")
	}
}

func TestWithError(t *testing.T) {
	base, hook := test.NewNullLogger()
	log := FromLogrus(base)

	log.WithError(errors.New("boom")).Error("chunk failed")
	if hook.LastEntry().Data["error"] != "boom" {
		t.Errorf("expected error field, got %v", hook.LastEntry().Data)
	}
	if hook.LastEntry().Level != logrus.ErrorLevel {
		t.Errorf("expected error level")
	}

	log.WithError(nil).Info("ok")
	if _, ok := hook.LastEntry().Data["error"]; ok {
		t.Error("nil error should not add a field")
	}
}

func TestNew_FileAndLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casefile.log")
	log, err := New(model.LogConfig{Level: "warn", Format: "json", File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	log.Info("hidden")
	log.Warn("shown")
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(string(data), `"msg":"shown"`) {
		t.Errorf("expected json warn line, got %s", data)
	}
}
