package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flowmesh",
		Short: "Agent workflow orchestration engine",
		Long:  "FlowMesh coordinates named task agents through declared workflow topologies.",
	}

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newValidateCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
