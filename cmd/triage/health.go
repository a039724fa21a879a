package main

import (
	"fmt"
	"time"

	"github.com/metalagman/triage/internal/health"
	"github.com/metalagman/triage/internal/llm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func healthCmd() *cobra.Command {
	var noModel bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Run the deterministic health monitor once",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStores()
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmd.Context()

			snap, err := health.BuildSnapshot(ctx, s.items, s.tickets, s.events)
			if err != nil {
				return err
			}

			var client llm.Client
			if !noModel {
				gemini, err := llm.NewGeminiClient(ctx, llm.Config{
					Model:     s.cfg.Model.Name,
					APIKey:    s.cfg.Model.APIKey,
					APIKeyEnv: s.cfg.Model.APIKeyEnv,
					Timeout:   time.Duration(s.cfg.Model.TimeoutS) * time.Second,
				})
				if err != nil {
					log.Warn().Err(err).Msg("model client unavailable; skipping narrative")
				} else {
					client = gemini
				}
			}

			report, err := health.NewMonitor(client).Check(ctx, snap)
			if err != nil {
				return err
			}

			if report.Healthy {
				fmt.Println("healthy: no issues detected")
			}
			for _, issue := range report.Issues {
				fmt.Printf("[%s] %s\n", issue.Severity, issue.Description)
			}
			for _, action := range report.Actions {
				fmt.Printf("action: %s %v\n", action.Type, action.Payload)
			}
			if report.Content != "" {
				fmt.Printf("\n%s\n", report.Content)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noModel, "no-model", false, "skip the narrative model call")
	return cmd
}
