package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmd_HasRunSubcommand(t *testing.T) {
	cmd, _, err := RootCmd.Find([]string{"run"})
	if err != nil {
		t.Fatalf("Find(run) error = %v", err)
	}
	if cmd.Use != "run" {
		t.Errorf("Find(run) resolved to %q", cmd.Use)
	}
}

func TestRunCmd_Flags(t *testing.T) {
	for _, name := range []string{"config", "output-dir", "no-color", "quiet"} {
		if runCmd.Flags().Lookup(name) == nil {
			t.Errorf("run command is missing the --%s flag", name)
		}
	}
}

func TestRootCmd_Help(t *testing.T) {
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetArgs([]string{"--help"})
	defer RootCmd.SetArgs(nil)

	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("Execute(--help) error = %v", err)
	}
	if !strings.Contains(buf.String(), "run") {
		t.Errorf("help output does not list the run command: %q", buf.String())
	}
}
