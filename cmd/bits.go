// cmd/bits.go
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/morsedecoder/internal/cw"
	"github.com/ColonelBlimp/morsedecoder/internal/timing"
)

var bitsCmd = &cobra.Command{
	Use:   "bits [bits]",
	Short: "Decode a keyed 0/1 bit string",
	Long: `Decodes a string of 0s and 1s sampled from a keyed signal. Without
--advanced the signal is assumed to be sent at one consistent rate. With
--advanced the timing unit is estimated by clustering run lengths, which
tolerates the drift of hand keying. Characters other than 0 and 1 are ignored.`,
	Example: `  morsedecoder bits 101010001110111011100010101
  morsedecoder bits --advanced --analyze < take.txt`,
	RunE: runBits,
}

func init() {
	bitsCmd.Flags().BoolP("advanced", "a", false, "estimate drifting timing by clustering")
	bitsCmd.Flags().Bool("analyze", false, "print the intermediate results of --advanced")
	rootCmd.AddCommand(bitsCmd)
}

func runBits(cmd *cobra.Command, args []string) error {
	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	advanced, _ := cmd.Flags().GetBool("advanced")
	analyze, _ := cmd.Flags().GetBool("analyze")

	if !advanced {
		text, err := current.decoder.DecodeBits(input)
		return printDecoded(cmd, text, err)
	}

	if analyze {
		a, err := current.decoder.Analyze(input)
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		printAnalysis(cmd.OutOrStdout(), a)
		text, err := current.decoder.DecodeMorse(a.Morse)
		return printDecoded(cmd, text, err)
	}
	text, err := current.decoder.DecodeBitsAdvanced(input)
	return printDecoded(cmd, text, err)
}

func printAnalysis(w io.Writer, a cw.Analysis) {
	c := a.Classification
	fmt.Fprintf(w, "runs:      %d\n", len(a.Runs))
	fmt.Fprintf(w, "lengths:   %v\n", a.Runs.Distinct())
	fmt.Fprintf(w, "strategy:  %s\n", c.Strategy)
	fmt.Fprintf(w, "unit:      %.3f\n", c.Unit)
	if c.Strategy == timing.StrategyAdaptive {
		fmt.Fprintf(w, "clusters:  short %v, medium %v, long %v\n",
			c.Clusters[timing.Short], c.Clusters[timing.Medium], c.Clusters[timing.Long])
		fmt.Fprintf(w, "tiers:     short %v, medium %v, long %v\n",
			c.Tiers[timing.Short], c.Tiers[timing.Medium], c.Tiers[timing.Long])
	}
	if a.Override {
		fmt.Fprintf(w, "override:  %s read as EE\n", cw.AmbiguousPattern)
	}
	fmt.Fprintf(w, "canonical: %s\n", a.Canonical)
	fmt.Fprintf(w, "morse:     %s\n", a.Morse)
}
