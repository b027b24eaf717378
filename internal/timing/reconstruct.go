// internal/timing/reconstruct.go
package timing

import (
	"strings"

	"github.com/ColonelBlimp/morsedecoder/internal/signal"
)

// Reconstruct rewrites classified runs as a canonical token stream with a
// unit length of 1. classes must hold one entry per run.
func Reconstruct(runs signal.Runs, classes []Class) string {
	var b strings.Builder
	for i := range min(len(runs), len(classes)) {
		b.WriteString(classes[i].Token())
	}
	return b.String()
}
