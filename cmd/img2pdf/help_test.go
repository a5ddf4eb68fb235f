package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintUsage_ListsAllCommands(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)
	out := buf.String()

	for _, cmd := range []string{"convert", "check", "doctor", "completion", "version", "help"} {
		if !strings.Contains(out, cmd) {
			t.Errorf("usage missing command %q", cmd)
		}
	}
}

func TestPrintConvertUsage_MentionsFlagGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printConvertUsage(&buf)
	out := buf.String()

	for _, flag := range []string{"--file", "--csv", "--combine", "--concurrency", "--timeout", "--cache-url", "--metrics-addr"} {
		if !strings.Contains(out, flag) {
			t.Errorf("convert usage missing %q", flag)
		}
	}
}

func TestRunHelp(t *testing.T) {
	t.Parallel()

	t.Run("known command", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()
		runHelp([]string{"doctor"}, env)
		if !strings.Contains(stdout.String(), "img2pdf doctor") {
			t.Errorf("output = %q", stdout.String())
		}
	})

	t.Run("unknown command goes to stderr", func(t *testing.T) {
		t.Parallel()
		env, _, stderr := testEnv()
		runHelp([]string{"frobnicate"}, env)
		if !strings.Contains(stderr.String(), "Unknown command") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})

	t.Run("no args prints main usage", func(t *testing.T) {
		t.Parallel()
		env, stdout, _ := testEnv()
		runHelp(nil, env)
		if !strings.Contains(stdout.String(), "Usage: img2pdf <command>") {
			t.Errorf("output = %q", stdout.String())
		}
	})
}
