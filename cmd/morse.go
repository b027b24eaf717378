// cmd/morse.go
package cmd

import (
	"github.com/spf13/cobra"
)

var morseCmd = &cobra.Command{
	Use:   "morse [morse]",
	Short: "Decode dots and dashes",
	Long: `Decodes Morse written with '.' and '-', one space between characters and
three between words. Reads stdin when no argument is given.`,
	Example: `  morsedecoder morse ".... . -.--   .--- ..- -.. ."`,
	RunE:    runMorse,
}

func init() {
	rootCmd.AddCommand(morseCmd)
}

func runMorse(cmd *cobra.Command, args []string) error {
	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	text, err := current.decoder.DecodeMorse(input)
	return printDecoded(cmd, text, err)
}
