package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "animed",
		Short: "Anime catalog service",
		Long:  "Run the anime catalog REST service and its supporting tooling",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
