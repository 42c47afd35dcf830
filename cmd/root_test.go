package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetArgs([]string{"--help"})

	if err := RootCmd.Execute(); err != nil {
		t.Errorf("root command with --help failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Declarative PostgreSQL schema management") {
		t.Errorf("expected help output to contain description, got: %s", output)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	commands := RootCmd.Commands()

	expected := []string{"generate-migration", "apply", "baseline", "validate"}
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.Name()
	}

	for _, want := range expected {
		found := false
		for _, got := range names {
			if got == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q, got commands: %v", want, names)
		}
	}
}

func TestSetupLoggerDoesNotPanic(t *testing.T) {
	Debug = false
	setupLogger()
	Debug = true
	setupLogger()
	Debug = false
}
