package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestDefaultMetrics(t *testing.T) {
	m := Default().Metrics()
	if m.Linespace != 1 || m.CharWidth != 1 {
		t.Errorf("default metrics = %+v, want cell grid", m)
	}
}

func TestCaretInterval(t *testing.T) {
	c := CaretConfig{Blink: true, BlinkIntervalMS: 250}
	if got := c.Interval(); got != 250*time.Millisecond {
		t.Errorf("Interval() = %v, want 250ms", got)
	}
	c.Blink = false
	if got := c.Interval(); got != 0 {
		t.Errorf("Interval() with blink off = %v, want 0", got)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "textview.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[font]
ascent = 12.0
descent = 4.0
leading = 2.0
char_width = 8.0

[caret]
blink = false
blink_interval_ms = 300
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	m := cfg.Metrics()
	if m.Linespace != 18 {
		t.Errorf("Linespace = %v, want 18", m.Linespace)
	}
	if cfg.Caret.Blink {
		t.Error("blink should be disabled")
	}
	if cfg.Caret.BlinkIntervalMS != 300 {
		t.Errorf("BlinkIntervalMS = %d, want 300", cfg.Caret.BlinkIntervalMS)
	}
	// Untouched sections keep defaults.
	if cfg.Theme.Foreground != Default().Theme.Foreground {
		t.Errorf("Theme.Foreground = %q, want default", cfg.Theme.Foreground)
	}
}

func TestLoadRejectsBadColor(t *testing.T) {
	path := writeConfig(t, `
[theme]
selection = "not-a-color"
`)

	_, err := Load(path)
	if !errors.Is(err, ErrBadColor) {
		t.Errorf("err = %v, want ErrBadColor", err)
	}
}

func TestLoadRejectsBadMetrics(t *testing.T) {
	path := writeConfig(t, `
[font]
ascent = -1.0
`)

	_, err := Load(path)
	if !errors.Is(err, ErrBadMetrics) {
		t.Errorf("err = %v, want ErrBadMetrics", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("Load of a missing file should fail")
	}
}

func TestWatcherReloads(t *testing.T) {
	path := writeConfig(t, `
[caret]
blink_interval_ms = 100
`)

	changes := make(chan Config, 1)
	w, err := Watch(path, func(c Config) {
		select {
		case changes <- c:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[caret]\nblink_interval_ms = 700\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changes:
		if cfg.Caret.BlinkIntervalMS != 700 {
			t.Errorf("reloaded BlinkIntervalMS = %d, want 700", cfg.Caret.BlinkIntervalMS)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not deliver reload")
	}
}

func TestWatcherKeepsOldConfigOnBadReload(t *testing.T) {
	path := writeConfig(t, "[caret]\nblink_interval_ms = 100\n")

	changes := make(chan Config, 4)
	w, err := Watch(path, func(c Config) { changes <- c }, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	// Invalid content must not produce a change.
	if err := os.WriteFile(path, []byte("[theme]\nselection = \"nope\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A later valid write must still get through.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("[caret]\nblink_interval_ms = 900\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changes:
			if cfg.Caret.BlinkIntervalMS == 900 {
				return // success
			}
			// Skip stale deliveries from the first write, if any.
		case <-deadline:
			t.Fatal("valid reload never arrived")
		}
	}
}
