package main

import (
	"fmt"

	"github.com/metalagman/triage/internal/decompose"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func decomposeCmd() *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "decompose <item-id>",
		Short: "Split an oversized work item into atomic subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStores()
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmd.Context()

			it, err := s.items.Get(ctx, args[0])
			if err != nil {
				return err
			}

			engine := decompose.NewEngine(decompose.DefaultRuleSet())
			if !engine.NeedsDecomposition(it) {
				log.Info().Str("item_id", it.ID).Msg("work item is already atomic")
				return nil
			}

			result := engine.Decompose(it, 0)
			if result == nil {
				log.Info().Str("item_id", it.ID).Msg("no rule matched; work item stays atomic")
				return nil
			}

			fmt.Printf("strategy: %s\n", result.Strategy)
			fmt.Printf("reason:   %s\n", result.Reason)
			fmt.Printf("coverage: %dm of %dm (covered=%t)\n", result.TotalMinutes, it.EstimateMinutes, result.Covered)
			for _, sub := range result.Subtasks {
				fmt.Printf("  - [%s] %s (%dm)\n", sub.Category, sub.Title, sub.EstimateMinutes)
			}

			if !apply {
				return nil
			}
			if err := s.items.ApplyDecomposition(ctx, it.ID, result.WorkItems(it)); err != nil {
				return err
			}
			if err := s.events.Record(ctx, "decompose", "item_decomposed",
				fmt.Sprintf("item %s split into %d subtasks via %s", it.ID, len(result.Subtasks), result.Strategy)); err != nil {
				log.Warn().Err(err).Msg("audit record failed")
			}
			log.Info().Str("item_id", it.ID).Int("subtasks", len(result.Subtasks)).Msg("decomposition applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "apply the decomposition to the store")
	return cmd
}
