// cmd/encode.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/womat/debug"

	"github.com/ColonelBlimp/morsedecoder/internal/audio"
	"github.com/ColonelBlimp/morsedecoder/internal/cw"
	"github.com/ColonelBlimp/morsedecoder/internal/dsp"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [text]",
	Short: "Encode text as Morse, a bit string or a WAV file",
	Example: `  morsedecoder encode "HEY JUDE"
  morsedecoder encode --bits --unit 3 SOS
  morsedecoder encode --wav cq.wav "CQ DE W1AW"`,
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().BoolP("bits", "b", false, "print a 0/1 bit string instead of dots and dashes")
	encodeCmd.Flags().IntP("unit", "u", 1, "bits per dit for --bits")
	encodeCmd.Flags().StringP("wav", "w", "", "write the keyed tone to a WAV file (speed from wpm)")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	asBits, _ := cmd.Flags().GetBool("bits")
	unit, _ := cmd.Flags().GetInt("unit")
	wavPath, _ := cmd.Flags().GetString("wav")

	if wavPath != "" {
		return writeToneFile(wavPath, input)
	}

	var out string
	if asBits {
		out, err = cw.EncodeBits(input, unit)
	} else {
		out, err = cw.EncodeMorse(input)
	}
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func writeToneFile(path, text string) error {
	bits, err := cw.EncodeBits(text, 1)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	tone := current.settings.ToneConfig()
	// one dit of silence either side
	samples, err := dsp.Synthesize("0"+bits+"0", tone)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer f.Close()

	if err := audio.WriteWAV(f, samples, uint32(tone.SampleRate)); err != nil {
		return err
	}
	debug.InfoLog.Printf("wrote %d samples to %s", len(samples), path)
	return f.Close()
}
