package main

import (
	"github.com/ColonelBlimp/morsedecoder/cmd"
	"github.com/ColonelBlimp/morsedecoder/internal/recovery"
)

func main() {
	defer recovery.HandlePanic()
	cmd.Execute()
}
