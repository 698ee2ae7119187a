package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fernweh-games/whisperwood/audio/synth"
)

var soundsCmd = &cobra.Command{
	Use:   "sounds",
	Short: "List every procedural sound the game can make",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		s, err := synth.New(synth.DefaultConfig())
		if err != nil {
			return fmt.Errorf("building synthesizer: %w", err)
		}

		for _, id := range s.IDs() {
			buf, _ := s.Buffer(id)
			fmt.Printf("%-20s %-14s %v\n", id, buf.Category(), buf.Duration().Round(time.Millisecond))
		}
		return nil
	},
}
