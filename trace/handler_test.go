package trace

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestHandlerFormat(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	log := NewLogger(&buf, slog.LevelDebug)

	log.With("com", 12).WithGroup("socket").Debug("state", "to", "open")
	line := buf.String()
	for _, want := range []string{"| DEBUG | state", " com=12", " socket.to=open"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("line should end with a newline")
	}
}

func TestHandlerLevel(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	log := NewLogger(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "WARN") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}
