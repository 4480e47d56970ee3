package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "motorsize",
		Short:        "Concept-level electric motor sizing, BOM and production impact",
		SilenceUsage: true,
	}

	root.AddCommand(sizeCmd())
	root.AddCommand(impactCmd())
	root.AddCommand(importCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(serveCmd())
	return root
}
