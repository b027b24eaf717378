package main

import (
	"bytes"
	"os"
	"os/exec"
	"testing"
)

// TestMain_Subprocess runs main() in a child process, since Execute calls
// os.Exit on failure.
func TestMain_Subprocess(t *testing.T) {
	if args := os.Getenv("MORSEDECODER_ARGS"); args != "" {
		os.Args = []string{"morsedecoder", "bits", args}
		main()
		return
	}

	tests := []struct {
		name     string
		bits     string
		want     string
		wantExit int
	}{
		{"decodes", "101010001110111011100010101", "SOS\n", 0},
		{"unknown symbol exits non-zero", "101010101010101", "?\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			cmd := exec.Command(os.Args[0], "-test.run=TestMain_Subprocess")
			cmd.Dir = home
			cmd.Env = append(os.Environ(), "MORSEDECODER_ARGS="+tt.bits, "HOME="+home, "XDG_CONFIG_HOME=")

			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			err := cmd.Run()
			exitCode := 0
			if exitErr, ok := err.(*exec.ExitError); ok {
				exitCode = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("run subprocess: %v", err)
			}

			if exitCode != tt.wantExit {
				t.Errorf("exit code = %d, want %d (stderr: %s)", exitCode, tt.wantExit, stderr.String())
			}
			if !bytes.HasPrefix(stdout.Bytes(), []byte(tt.want)) {
				t.Errorf("stdout = %q, want prefix %q", stdout.String(), tt.want)
			}
		})
	}
}
