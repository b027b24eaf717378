// cmd/wav.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/womat/debug"

	"github.com/ColonelBlimp/morsedecoder/internal/audio"
	"github.com/ColonelBlimp/morsedecoder/internal/config"
	"github.com/ColonelBlimp/morsedecoder/internal/dsp"
)

var wavCmd = &cobra.Command{
	Use:   "wav <file>",
	Short: "Decode a CW tone recorded in a WAV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runWAV,
}

func init() {
	wavCmd.Flags().Bool("show-bits", false, "print the keyed bit string before the text")
	rootCmd.AddCommand(wavCmd)
}

func runWAV(cmd *cobra.Command, args []string) error {
	samples, rate, err := audio.LoadWAVFile(args[0])
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	debug.InfoLog.Printf("loaded %s: %d samples at %d Hz", args[0], len(samples), rate)

	bits, err := keySamples(current.settings, samples, float64(rate))
	if err != nil {
		return err
	}
	return decodeKeyed(cmd, bits)
}

// keySamples turns mono audio into a bit string with the configured keyer
func keySamples(s *config.Settings, samples []float32, sampleRate float64) (string, error) {
	g, err := dsp.NewGoertzel(s.GoertzelConfig(sampleRate))
	if err != nil {
		return "", fmt.Errorf("tone filter: %w", err)
	}
	k, err := dsp.NewKeyer(s.KeyerConfig(), g)
	if err != nil {
		return "", fmt.Errorf("keyer: %w", err)
	}
	bits, err := k.Key(samples)
	if err != nil {
		return "", fmt.Errorf("keyer: %w", err)
	}
	return bits, nil
}

// decodeKeyed decodes keyer output with the adaptive decoder
func decodeKeyed(cmd *cobra.Command, bits string) error {
	if show, _ := cmd.Flags().GetBool("show-bits"); show {
		fmt.Fprintln(cmd.OutOrStdout(), bits)
	}
	text, err := current.decoder.DecodeBitsAdvanced(bits)
	return printDecoded(cmd, text, err)
}
