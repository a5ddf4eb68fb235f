package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunDoctorCmd(t *testing.T) {
	t.Parallel()

	t.Run("writable destination is ready", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()
		code := runDoctorCmd(context.Background(), []string{"-o", t.TempDir()}, env)
		if code != ExitSuccess {
			t.Fatalf("exit = %d, want success; out: %s", code, stdout.String())
		}
		if !strings.Contains(stdout.String(), "Status: Ready to convert") {
			t.Errorf("output = %q", stdout.String())
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()
		code := runDoctorCmd(context.Background(), []string{"-o", t.TempDir(), "--json"}, env)
		if code != ExitSuccess {
			t.Fatalf("exit = %d, want success", code)
		}

		var result doctorResult
		if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
		}
		if result.Status != "ready" || !result.Destination.Writable {
			t.Errorf("result = %+v", result)
		}
		if result.System.Workers < 1 {
			t.Errorf("workers = %d, want >= 1", result.System.Workers)
		}
	})

	t.Run("bad config file reports errors", func(t *testing.T) {
		t.Parallel()
		cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(cfgPath, []byte("download: [not a mapping"), 0o644); err != nil {
			t.Fatal(err)
		}

		env, stdout, _ := testEnv()
		code := runDoctorCmd(context.Background(), []string{"-o", t.TempDir(), "-c", cfgPath}, env)
		if code != ExitGeneral {
			t.Fatalf("exit = %d, want general", code)
		}
		if !strings.Contains(stdout.String(), "Not ready") {
			t.Errorf("output = %q", stdout.String())
		}
	})

	t.Run("config supplies destination", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		dest := filepath.Join(dir, "configured-out")
		cfgPath := filepath.Join(dir, "img2pdf.yaml")
		if err := os.WriteFile(cfgPath, []byte("output:\n  destination: "+dest+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		env, stdout, _ := testEnv()
		code := runDoctorCmd(context.Background(), []string{"-c", cfgPath, "--json"}, env)
		if code != ExitSuccess {
			t.Fatalf("exit = %d, want success; out: %s", code, stdout.String())
		}

		var result doctorResult
		if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
			t.Fatal(err)
		}
		if result.Destination.Path != dest {
			t.Errorf("probed %q, want config destination %q", result.Destination.Path, dest)
		}
		if !result.Config.Loaded {
			t.Errorf("config not reported loaded: %+v", result.Config)
		}
	})

	t.Run("unreachable cache is a warning not an error", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()
		code := runDoctorCmd(context.Background(), []string{
			"-o", t.TempDir(),
			"--cache-url", "redis://127.0.0.1:1/0",
		}, env)
		if code != ExitSuccess {
			t.Fatalf("exit = %d, want success (warnings only)", code)
		}
		if !strings.Contains(stdout.String(), "Status: Ready with warnings") {
			t.Errorf("output = %q", stdout.String())
		}
	})
}
