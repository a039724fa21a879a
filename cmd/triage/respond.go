package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/metalagman/triage/internal/response"
	"github.com/spf13/cobra"
)

func respondCmd() *cobra.Command {
	var (
		role     string
		ticketID string
		itemID   string
	)
	cmd := &cobra.Command{
		Use:   "respond",
		Short: "Validate a raw agent reply from stdin",
		Long:  "Reads a generative agent's raw reply from stdin, applies the guarded response pipeline for the given role, and prints the validated result as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			s, err := openStores()
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmd.Context()

			pipeline := response.NewPipeline(s.events)
			out := map[string]any{}
			switch role {
			case "qa":
				resp := pipeline.GuardAnswer(ctx, ticketID, string(raw))
				out["response"] = resp
			case "verify":
				verdict, resp := pipeline.GuardVerdict(ctx, itemID, string(raw))
				out["verdict"] = verdict
				out["response"] = resp
			case "clarity":
				if ticketID != "" {
					rounds, err := s.tickets.CountRepliesFrom(ctx, ticketID, "clarity")
					if err != nil {
						return err
					}
					pipeline.SeedClarityRounds(ticketID, rounds)
				}
				round, proceed, actions := pipeline.BeginClarityRound(ctx, ticketID)
				out["round"] = round
				if !proceed {
					out["escalated"] = true
					out["actions"] = actions
					break
				}
				resp := pipeline.GuardClarity(ctx, ticketID, string(raw))
				out["response"] = resp
			default:
				return fmt.Errorf("unknown role %q (want qa|verify|clarity)", role)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&role, "role", "qa", "agent role (qa|verify|clarity)")
	cmd.Flags().StringVar(&ticketID, "ticket", "", "ticket id the reply belongs to")
	cmd.Flags().StringVar(&itemID, "item", "", "work item id under verification")
	return cmd
}
