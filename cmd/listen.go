// cmd/listen.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/womat/debug"

	"github.com/ColonelBlimp/morsedecoder/internal/audio"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Record a take from an audio device and decode it",
	Long: `Records record_seconds of audio from the configured input device, then
decodes the CW tone in it. Ctrl-C ends the take early and decodes what was
recorded so far.`,
	Args: cobra.NoArgs,
	RunE: runListen,
}

func init() {
	listenCmd.Flags().Float64P("seconds", "s", 10, "length of the take in seconds")
	listenCmd.Flags().Bool("show-bits", false, "print the keyed bit string before the text")
	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("seconds") {
		seconds, _ := cmd.Flags().GetFloat64("seconds")
		current.settings.RecordSeconds = seconds
		if err := current.settings.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	capture := audio.New(current.settings.AudioConfig())
	if err := capture.Init(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	defer capture.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Recording %v... (Ctrl-C to stop early)\n", current.settings.RecordDuration())
	samples, err := capture.Record(ctx, current.settings.RecordDuration())
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("audio: %w", err)
	}
	debug.InfoLog.Printf("recorded %d samples", len(samples))

	bits, err := keySamples(current.settings, samples, current.settings.SampleRate)
	if err != nil {
		return err
	}
	return decodeKeyed(cmd, bits)
}
