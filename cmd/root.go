// cmd/root.go
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/womat/debug"

	"github.com/ColonelBlimp/morsedecoder/internal/config"
	"github.com/ColonelBlimp/morsedecoder/internal/cw"
)

// session holds what every subcommand needs once configuration is loaded
type session struct {
	settings *config.Settings
	decoder  *cw.Decoder
	log      io.Closer
}

var current *session

var rootCmd = &cobra.Command{
	Use:   "morsedecoder",
	Short: "Morse code decoder for text, bit strings and audio",
	Long: `Decodes Morse code written as dots and dashes, keyed as a 0/1 bit string
at an unknown and possibly drifting rate, or sent as a tone in a WAV file or
from an audio input device.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagBindings maps persistent flags to config keys
var flagBindings = map[string]string{
	"placeholder": "placeholder",
	"trials":      "kmeans_trials",
	"seed":        "kmeans_seed",
	"device":      "device_index",
	"frequency":   "tone_frequency",
	"log-level":   "log_level",
	"log-file":    "log_file",
}

func init() {
	// Finalizers also run when a command fails
	cobra.OnFinalize(teardown)

	// Global flags (override config file)
	flags := rootCmd.PersistentFlags()
	flags.StringP("placeholder", "p", cw.DefaultPlaceholder, "text written for unknown Morse characters")
	flags.Int("trials", 21, "k-means initializations per signal")
	flags.Uint64("seed", 1, "seed for k-means initializations")
	flags.IntP("device", "d", -1, "audio device index (-1 for default)")
	flags.Float64P("frequency", "f", 600, "CW tone frequency in Hz")
	flags.StringP("log-level", "l", config.LogStandard, "log level (standard|debug|trace)")
	flags.String("log-file", "stderr", "log destination (stderr|stdout|path)")
}

// bindFlags binds persistent flags to viper. It runs on every execution so
// that a viper reset does not lose the bindings.
func bindFlags(cmd *cobra.Command) error {
	for flag, key := range flagBindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

func initConfig() error {
	if err := config.Init(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	if err := initConfig(); err != nil {
		return err
	}

	settings, err := config.Get()
	if err != nil {
		return err
	}

	logFile, err := settings.OpenLog()
	if err != nil {
		return err
	}
	debug.SetDebug(logFile, settings.LogFlag())
	debug.DebugLog.Printf("config file %q", viper.ConfigFileUsed())

	decoder, err := cw.NewDecoder(settings.DecoderConfig())
	if err != nil {
		_ = logFile.Close()
		return fmt.Errorf("create decoder: %w", err)
	}

	current = &session{settings: settings, decoder: decoder, log: logFile}
	return nil
}

func teardown() {
	if current != nil && current.log != nil {
		_ = current.log.Close()
	}
	current = nil
}

// readInput joins args with spaces, or reads stdin when there are none.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// printDecoded writes the decoded text and reports unknown symbols. The text
// is written even when some characters could not be decoded.
func printDecoded(cmd *cobra.Command, text string, err error) error {
	fmt.Fprintln(cmd.OutOrStdout(), text)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
