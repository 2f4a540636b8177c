package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codepair",
	Short: "CodePair - collaborative code editing and execution server",
	Long: `CodePair is a realtime collaboration server. Participants share a code
buffer per room, exchange inline comments and chat, and run the buffer in a
sandboxed toolchain with results broadcast to everyone in the room.`,
}

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
