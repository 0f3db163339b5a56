package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gwi.com/synthetic-respondents/internal/config"
	"gwi.com/synthetic-respondents/internal/core"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the inference backend is reachable",
	Long: `Load configuration, contact the configured inference backend once and
exit non-zero if it cannot be reached. Suitable as a container health probe.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	llm, err := core.NewLLMService(ctx, cfg.Inference, nil, zap.NewNop())
	if err != nil {
		return err
	}
	defer llm.Close()

	if !llm.HealthCheck(ctx) {
		return fmt.Errorf("%s is unreachable at %s", llm.Name(), cfg.Inference.BaseURL)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s reachable\n", llm.Name())
	return nil
}
