package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagetalk-ai/pagetalk/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pagetalkd",
		Short: "Pagetalk daemon",
		Long:  "Pagetalk daemon for extracting web content and answering questions about it",
	}

	rootCmd.AddCommand(cli.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
