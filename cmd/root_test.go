package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ColonelBlimp/morsedecoder/internal/config"
	"github.com/ColonelBlimp/morsedecoder/internal/cw"
)

func resetViperForTest() {
	viper.Reset()
}

// resetFlags restores every flag of c and its subcommands to its default
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// withConfig points HOME at a temp dir holding cfg as the user config and
// moves into that dir.
func withConfig(t *testing.T, cfg string) string {
	t.Helper()
	resetViperForTest()

	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	configDir := filepath.Join(tmpDir, ".config", config.AppName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	origDir, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return tmpDir
}

// execute runs the root command with args and stdin, returning stdout
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(teardown)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCmd_HasExpectedFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	tests := []struct {
		name      string
		shorthand string
	}{
		{"placeholder", "p"},
		{"trials", ""},
		{"seed", ""},
		{"device", "d"},
		{"frequency", "f"},
		{"log-level", "l"},
		{"log-file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := flags.Lookup(tt.name)
			if flag == nil {
				t.Fatalf("flag %q not found", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("flag %q shorthand = %q, want %q", tt.name, flag.Shorthand, tt.shorthand)
			}
			if _, ok := flagBindings[tt.name]; !ok {
				t.Errorf("flag %q is not bound to a config key", tt.name)
			}
		})
	}
}

func TestRootCmd_Properties(t *testing.T) {
	if rootCmd.Use != "morsedecoder" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "morsedecoder")
	}
	if rootCmd.Short == "" {
		t.Error("rootCmd.Short is empty")
	}
	if rootCmd.Long == "" {
		t.Error("rootCmd.Long is empty")
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	for _, name := range []string{"morse", "bits", "encode", "wav", "listen", "devices"} {
		t.Run(name, func(t *testing.T) {
			c, _, err := rootCmd.Find([]string{name})
			if err != nil || c.Name() != name {
				t.Errorf("subcommand %q not registered", name)
			}
		})
	}
}

func TestRootCmd_HelpOutput(t *testing.T) {
	resetViperForTest()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"--help"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() with --help error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"morsedecoder", "--placeholder", "bits", "encode"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestInitConfig(t *testing.T) {
	withConfig(t, "kmeans_trials: 5")

	if err := initConfig(); err != nil {
		t.Fatalf("initConfig() error = %v", err)
	}
	if viper.GetInt("kmeans_trials") != 5 {
		t.Errorf("viper.GetInt(kmeans_trials) = %d, want 5", viper.GetInt("kmeans_trials"))
	}
}

func TestMorseCmd(t *testing.T) {
	withConfig(t, "")

	out, err := execute(t, "", "morse", ".... . -.--   .--- ..- -.. .")
	if err != nil {
		t.Fatalf("morse error = %v", err)
	}
	if out != "HEY JUDE\n" {
		t.Errorf("morse output = %q, want %q", out, "HEY JUDE\n")
	}
}

func TestMorseCmd_Stdin(t *testing.T) {
	withConfig(t, "")

	out, err := execute(t, "... --- ...\n", "morse")
	if err != nil {
		t.Fatalf("morse error = %v", err)
	}
	if out != "SOS\n" {
		t.Errorf("morse output = %q, want %q", out, "SOS\n")
	}
}

func TestMorseCmd_UnknownSymbol(t *testing.T) {
	withConfig(t, "")

	out, err := execute(t, "", "morse", "... ........")
	if err == nil || !strings.Contains(err.Error(), "unknown morse symbol") {
		t.Errorf("morse error = %v, want unknown symbol", err)
	}
	if out != "S?\n" {
		t.Errorf("morse output = %q, want best-effort %q", out, "S?\n")
	}
}

func TestMorseCmd_PlaceholderFlag(t *testing.T) {
	withConfig(t, "")

	out, _ := execute(t, "", "--placeholder", "*", "morse", "........ .")
	if out != "*E\n" {
		t.Errorf("morse output = %q, want %q", out, "*E\n")
	}
}

func TestMorseCmd_PlaceholderFromConfig(t *testing.T) {
	withConfig(t, `placeholder: "_"`)

	out, _ := execute(t, "", "morse", "........")
	if out != "_\n" {
		t.Errorf("morse output = %q, want %q", out, "_\n")
	}
}

func TestBitsCmd(t *testing.T) {
	withConfig(t, "")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"baseline", []string{"bits", "101010001110111011100010101"}, "SOS\n"},
		{"baseline unit two", []string{"bits", "1100110011"}, "S\n"},
		{"advanced", []string{"bits", "--advanced", "101010001110111011100010101"}, "SOS\n"},
		{"advanced ambiguous", []string{"bits", "-a", "1001"}, "EE\n"},
		{"baseline ambiguous", []string{"bits", "1001"}, "I\n"},
		{"empty", []string{"bits", "0000"}, "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			if err != nil {
				t.Fatalf("bits error = %v", err)
			}
			if out != tt.want {
				t.Errorf("bits output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestBitsCmd_Analyze(t *testing.T) {
	withConfig(t, "")

	bits, err := cw.EncodeBits("HEY JUDE", 4)
	if err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, bits, "bits", "--advanced", "--analyze")
	if err != nil {
		t.Fatalf("bits error = %v", err)
	}

	for _, want := range []string{"strategy:  adaptive", "unit:      4.000", "clusters:", "tiers:", "HEY JUDE"} {
		if !strings.Contains(out, want) {
			t.Errorf("analyze output missing %q:\n%s", want, out)
		}
	}
}

func TestEncodeCmd(t *testing.T) {
	withConfig(t, "")

	out, err := execute(t, "", "encode", "sos")
	if err != nil {
		t.Fatalf("encode error = %v", err)
	}
	if out != "... --- ...\n" {
		t.Errorf("encode output = %q, want %q", out, "... --- ...\n")
	}

	out, err = execute(t, "", "encode", "--bits", "--unit", "2", "ET")
	if err != nil {
		t.Fatalf("encode --bits error = %v", err)
	}
	if want := "11" + "000000" + "111111" + "\n"; out != want {
		t.Errorf("encode --bits output = %q, want %q", out, want)
	}
}

func TestEncodeCmd_Unencodable(t *testing.T) {
	withConfig(t, "")

	if _, err := execute(t, "", "encode", "50%"); err == nil || !strings.Contains(err.Error(), "encode") {
		t.Errorf("encode error = %v, want encode failure", err)
	}
}

func TestEncodeAndDecodeWAV(t *testing.T) {
	dir := withConfig(t, "sample_rate: 8000\nblock_size: 64\n")
	path := filepath.Join(dir, "cq.wav")

	if _, err := execute(t, "", "encode", "--wav", path, "CQ DE W1AW"); err != nil {
		t.Fatalf("encode --wav error = %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("wav file not written: %v", err)
	}

	out, err := execute(t, "", "wav", path)
	if err != nil {
		t.Fatalf("wav error = %v", err)
	}
	if out != "CQ DE W1AW\n" {
		t.Errorf("wav output = %q, want %q", out, "CQ DE W1AW\n")
	}
}

func TestWavCmd_MissingFile(t *testing.T) {
	withConfig(t, "")

	_, err := execute(t, "", "wav", "does-not-exist.wav")
	if err == nil || !strings.Contains(err.Error(), "audio") {
		t.Errorf("wav error = %v, want audio error", err)
	}
}

func TestListenCmd_InvalidSeconds(t *testing.T) {
	withConfig(t, "")

	_, err := execute(t, "", "listen", "--seconds", "0")
	if err == nil || !strings.Contains(err.Error(), "record_seconds") {
		t.Errorf("listen error = %v, want record_seconds error", err)
	}
}

func TestRunDecoder_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
		want string
	}{
		{"sample rate", "sample_rate: 1000000", "sample_rate"},
		{"threshold", "threshold: 2.0", "threshold"},
		{"trials", "kmeans_trials: 0", "kmeans_trials"},
		{"log level", "log_level: loud", "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withConfig(t, tt.cfg)

			_, err := execute(t, "", "morse", ".-")
			if err == nil {
				t.Fatal("expected error for invalid config, got nil")
			}
			if !strings.Contains(err.Error(), "invalid config") || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want invalid %s", err, tt.want)
			}
		})
	}
}

func TestRootCmd_LogFile(t *testing.T) {
	dir := withConfig(t, "log_level: debug")
	logPath := filepath.Join(dir, "decoder.log")

	bits, err := cw.EncodeBits("HEY JUDE", 3)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, bits, "--log-file", logPath, "bits", "-a"); err != nil {
		t.Fatalf("bits error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "clusters") {
		t.Errorf("debug log should contain classifier diagnostics, got:\n%s", data)
	}
}

func TestRootCmd_SessionClosedAfterFailure(t *testing.T) {
	dir := withConfig(t, "log_level: debug")
	logPath := filepath.Join(dir, "decoder.log")

	out, err := execute(t, "", "--log-file", logPath, "morse", "........")
	if err == nil {
		t.Fatal("morse with an unknown symbol should fail")
	}
	if out != "?\n" {
		t.Errorf("morse output = %q, want %q", out, "?\n")
	}
	if current != nil {
		t.Error("session still open after a failed command")
	}
}

func TestBitsCmd_AnalyzeClassifiesOnce(t *testing.T) {
	dir := withConfig(t, "log_level: debug")
	logPath := filepath.Join(dir, "decoder.log")

	bits, err := cw.EncodeBits("CQ DE W1AW", 3)
	if err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, bits, "--log-file", logPath, "bits", "-a", "--analyze")
	if err != nil {
		t.Fatalf("bits error = %v", err)
	}
	if !strings.HasSuffix(out, "CQ DE W1AW\n") {
		t.Errorf("analyze output should end with the decoded text:\n%s", out)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if n := strings.Count(string(data), "timing unit:"); n != 1 {
		t.Errorf("classifier ran %d times, want 1:\n%s", n, data)
	}
}
