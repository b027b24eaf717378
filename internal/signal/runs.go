// internal/signal/runs.go
package signal

import (
	"slices"
	"strings"
)

// Kind is the key state of a run
type Kind uint8

const (
	Off Kind = iota
	On
)

// String returns "on" or "off"
func (k Kind) String() string {
	if k == On {
		return "on"
	}
	return "off"
}

// Symbol returns the bit character for the kind
func (k Kind) Symbol() byte {
	if k == On {
		return OnSymbol
	}
	return OffSymbol
}

// Run is a maximal block of identical key state.
type Run struct {
	Kind   Kind
	Length int // always > 0
}

// Runs is an ordered run sequence in transmission order.
type Runs []Run

// Tokenize splits a cleaned bit string into maximal runs. Characters other
// than OnSymbol are treated as idle, so callers should pass Clean output.
func Tokenize(cleaned string) Runs {
	if cleaned == "" {
		return nil
	}

	runs := make(Runs, 0, 16)
	current := kindOf(cleaned[0])
	length := 0
	for i := 0; i < len(cleaned); i++ {
		k := kindOf(cleaned[i])
		if k != current {
			runs = append(runs, Run{Kind: current, Length: length})
			current = k
			length = 0
		}
		length++
	}
	return append(runs, Run{Kind: current, Length: length})
}

func kindOf(c byte) Kind {
	if c == OnSymbol {
		return On
	}
	return Off
}

// Lengths returns the run lengths in order.
func (r Runs) Lengths() []int {
	out := make([]int, len(r))
	for i, run := range r {
		out[i] = run.Length
	}
	return out
}

// Distinct returns the distinct run lengths in ascending order.
func (r Runs) Distinct() []int {
	out := r.Lengths()
	slices.Sort(out)
	return slices.Compact(out)
}

// Min returns the shortest run length, or 0 for no runs.
func (r Runs) Min() int {
	if len(r) == 0 {
		return 0
	}
	return slices.Min(r.Lengths())
}

// String expands the runs back into a bit string.
func (r Runs) String() string {
	var b strings.Builder
	for _, run := range r {
		b.WriteString(strings.Repeat(string(run.Kind.Symbol()), run.Length))
	}
	return b.String()
}
