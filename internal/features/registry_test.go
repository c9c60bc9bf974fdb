package features

import (
	"bytes"
	"strings"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(LLM, true, "gemini (gemini-2.0-flash)")
	r.Register(Telegram, false, "CADET_TELEGRAM_TOKEN not set")
	r.Register(Quiz, true, "")

	if !r.Available(LLM) || r.Available(Telegram) {
		t.Error("availability not recorded")
	}
	if r.Available("unknown") {
		t.Error("unknown capability reported available")
	}

	r.Disable(Quiz, "disabled by configuration")
	c, ok := r.Get(Quiz)
	if !ok || c.Available || c.Reason != "disabled by configuration" {
		t.Errorf("quiz = %+v", c)
	}

	report := r.Report()
	if len(report) != 3 || report[0].Name != LLM || report[2].Name != Quiz {
		t.Errorf("report order = %+v", report)
	}
	if got := r.Missing(); len(got) != 2 || got[0] != Quiz || got[1] != Telegram {
		t.Errorf("missing = %v", got)
	}
}

func TestRegistry_Print(t *testing.T) {
	r := NewRegistry()
	r.Register(Chat, false, "no model configured")

	var buf bytes.Buffer
	if err := r.Print(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "CAPABILITY") || !strings.Contains(out, "unavailable") || !strings.Contains(out, "no model configured") {
		t.Errorf("output:\n%s", out)
	}
}
