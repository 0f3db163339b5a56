package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Synthetic Respondents API",
	Long: `Synthetic Respondents generates market-research personas with a local
LLM and runs interview studies against them.

Configuration comes from the environment (a .env file is read if present),
optionally layered over a YAML file named by CONFIG_FILE.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, checkCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
