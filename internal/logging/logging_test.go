package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.WarnLevel},
		{"loud", logrus.WarnLevel},
	}
	for _, tt := range tests {
		if got := New(tt.level, &bytes.Buffer{}).GetLevel(); got != tt.want {
			t.Errorf("New(%q).GetLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNew_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)
	log.WithField("path", "/tmp/x").Debug("skipping")

	out := buf.String()
	if !strings.Contains(out, "path=/tmp/x") || !strings.Contains(out, "skipping") {
		t.Errorf("log output = %q, want message with path field", out)
	}
}
