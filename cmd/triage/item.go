package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/metalagman/triage/internal/item"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func itemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage work items",
	}
	cmd.AddCommand(itemAddCmd())
	cmd.AddCommand(itemListCmd())
	cmd.AddCommand(itemShowCmd())
	return cmd
}

func itemAddCmd() *cobra.Command {
	var (
		description string
		acceptance  string
		priority    string
		estimate    int
		files       []string
		dependsOn   []string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a work item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("title is required")
			}
			s, err := openStores()
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.items.Create(cmd.Context(), item.WorkItem{
				Title:           title,
				Description:     description,
				Acceptance:      acceptance,
				Priority:        priority,
				EstimateMinutes: estimate,
				Files:           files,
				DependsOn:       dependsOn,
			})
			if err != nil {
				return err
			}
			log.Info().Msgf("work item %s added", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "work item description")
	cmd.Flags().StringVar(&acceptance, "ac", "", "acceptance criterion text")
	cmd.Flags().StringVar(&priority, "priority", item.PriorityMedium, "priority tier (low|medium|high|critical)")
	cmd.Flags().IntVar(&estimate, "estimate", 0, "estimated duration in minutes")
	cmd.Flags().StringArrayVar(&files, "file", nil, "referenced file path (repeatable)")
	cmd.Flags().StringArrayVar(&dependsOn, "depends-on", nil, "dependency identifier (repeatable)")
	return cmd
}

func itemListCmd() *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ready work items",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStores()
			if err != nil {
				return err
			}
			defer s.Close()

			var items []item.WorkItem
			if parent != "" {
				items, err = s.items.ListByParent(cmd.Context(), parent)
			} else {
				items, err = s.items.ListReady(cmd.Context())
			}
			if err != nil {
				return err
			}
			if len(items) == 0 {
				log.Info().Msg("no work items")
				return nil
			}
			for _, it := range items {
				_, _ = io.WriteString(os.Stdout,
					fmt.Sprintf("%s\t%s\t%s\t%dm\t%s\n", it.ID, it.Status, it.Priority, it.EstimateMinutes, it.Title))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "list subtasks of a work item instead")
	return cmd
}

func itemShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStores()
			if err != nil {
				return err
			}
			defer s.Close()

			it, err := s.items.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("id:        %s\n", it.ID)
			fmt.Printf("title:     %s\n", it.Title)
			fmt.Printf("status:    %s\n", it.Status)
			fmt.Printf("priority:  %s\n", it.Priority)
			fmt.Printf("estimate:  %dm\n", it.EstimateMinutes)
			if it.ParentID != "" {
				fmt.Printf("parent:    %s\n", it.ParentID)
			}
			if len(it.Files) > 0 {
				fmt.Printf("files:     %s\n", strings.Join(it.Files, ", "))
			}
			if len(it.DependsOn) > 0 {
				fmt.Printf("depends:   %s\n", strings.Join(it.DependsOn, ", "))
			}
			if it.Description != "" {
				fmt.Printf("description:\n%s\n", it.Description)
			}
			if it.Acceptance != "" {
				fmt.Printf("acceptance:\n%s\n", it.Acceptance)
			}
			return nil
		},
	}
}
