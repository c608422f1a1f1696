package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/robalobadob/minigames/cmd/catalog/games"
)

func init() {
	_ = godotenv.Load()
	rootCmd.AddGroup(games.Group)
	rootCmd.AddCommand(games.Validate, games.List, games.Seed)
}

var rootCmd = &cobra.Command{
	Use:          "catalog",
	Long:         `Command line utilities for the mini-games catalogue`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
