package hints

import (
	"strings"
	"testing"
)

func TestForTimeout(t *testing.T) {
	t.Parallel()

	hint := ForTimeout()
	if !strings.HasPrefix(hint, "\n  hint: ") {
		t.Errorf("hint %q missing standard prefix", hint)
	}
	if !strings.Contains(hint, "--timeout") {
		t.Error("expected --timeout suggestion")
	}
}

func TestForRateLimited(t *testing.T) {
	t.Parallel()

	if hint := ForRateLimited(); !strings.Contains(hint, "--host-rate") {
		t.Errorf("hint %q missing --host-rate suggestion", hint)
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	t.Run("suggests config flag", func(t *testing.T) {
		t.Parallel()
		hint := ForConfigNotFound(nil)
		if !strings.Contains(hint, "--config") {
			t.Errorf("hint %q missing --config suggestion", hint)
		}
	})

	t.Run("suggests user config path when searched", func(t *testing.T) {
		t.Parallel()
		searched := []string{
			"myconf.yaml",
			"/home/user/.config/go-img2pdf/myconf.yaml",
		}
		hint := ForConfigNotFound(searched)
		if !strings.Contains(hint, ".config/go-img2pdf/myconf.yaml") {
			t.Errorf("hint %q missing user config path", hint)
		}
	})
}

func TestForDestination(t *testing.T) {
	t.Parallel()

	t.Run("local path", func(t *testing.T) {
		t.Parallel()
		hint := ForDestination("./out")
		if !strings.Contains(hint, "writable") {
			t.Errorf("hint %q missing writability suggestion", hint)
		}
		if strings.Contains(hint, "credentials") {
			t.Error("local path should not mention bucket credentials")
		}
	})

	t.Run("bucket url", func(t *testing.T) {
		t.Parallel()
		hint := ForDestination("s3://bucket/prefix")
		if !strings.Contains(hint, "credentials") {
			t.Errorf("hint %q missing credentials suggestion", hint)
		}
	})
}

func TestForCache(t *testing.T) {
	t.Parallel()

	if hint := ForCache(); !strings.Contains(hint, "redis") {
		t.Errorf("hint %q missing redis mention", hint)
	}
}

func TestForNoInput(t *testing.T) {
	t.Parallel()

	hint := ForNoInput()
	if !strings.Contains(hint, "--file") || !strings.Contains(hint, "--csv") {
		t.Errorf("hint %q missing input flag suggestions", hint)
	}
}

func TestFormat_EmptyHintStaysEmpty(t *testing.T) {
	t.Parallel()

	if got := format(""); got != "" {
		t.Errorf("format(\"\") = %q, want empty", got)
	}
	if got := formatHints(nil); got != "" {
		t.Errorf("formatHints(nil) = %q, want empty", got)
	}
}
