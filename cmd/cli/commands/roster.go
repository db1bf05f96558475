package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/pkg/clients/sheetsclient"
	"github.com/jakechorley/camp-signup/pkg/core/model"
	"github.com/jakechorley/camp-signup/pkg/core/services"
)

// ListAssignmentsCmd creates the listAssignments command
func ListAssignmentsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listAssignments <pool>",
		Short: "Show every slot of a pool with its participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := services.BuildRoster(app.Ctx, app.Database, app.Logger, app.Cfg, model.Pool(args[0]))
			if err != nil {
				return fmt.Errorf("failed to build roster: %w", err)
			}

			printRoster(cmd.OutOrStdout(), roster)
			return nil
		},
	}
}

// PublishRosterCmd creates the publishRoster command
func PublishRosterCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publishRoster <pool>",
		Short: "Publish a pool's roster to Google Sheets",
		Long:  "Publish a pool's roster to the configured sheet, one tab per day. Existing tabs are overwritten.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("publishRoster command", zap.String("pool", args[0]))

			if app.Cfg.Sheets.CredentialsFile == "" {
				return fmt.Errorf("sheets.credentialsFile is not configured")
			}

			app.Logger.Info("Initializing sheets client")
			client, err := sheetsclient.NewClient(app.Ctx, app.Cfg.Sheets.CredentialsFile)
			if err != nil {
				return fmt.Errorf("failed to create sheets client: %w", err)
			}

			roster, err := services.PublishRoster(app.Ctx, app.Database, client, app.Logger, app.Cfg, model.Pool(args[0]))
			if err != nil {
				return err
			}

			fmt.Printf("\n✅ Roster Published Successfully\n\n")
			fmt.Printf("Pool:     %s\n", roster.Pool)
			fmt.Printf("Sheet ID: %s\n", app.Cfg.Sheets.RosterSheetID)
			fmt.Printf("Tabs:\n")
			for _, day := range roster.Days {
				fmt.Printf("  • %s\n", day.Title(roster.Pool))
			}
			fmt.Println()
			return nil
		},
	}
}

func printRoster(w io.Writer, roster *model.Roster) {
	fmt.Fprintf(w, "\n📋 %s roster\n", roster.Pool)

	for _, day := range roster.Days {
		fmt.Fprintf(w, "\n%s%s%s\n", colorBold, day.Title(roster.Pool), colorReset)
		if len(day.Entries) == 0 {
			fmt.Fprintln(w, "  (no slots)")
			continue
		}

		nameWidth := len("Activity")
		for _, entry := range day.Entries {
			if len(entry.Slot.Name) > nameWidth {
				nameWidth = len(entry.Slot.Name)
			}
		}

		fmt.Fprintf(w, "  %-4s  %-*s  %-7s  %s\n", "ID", nameWidth, "Activity", "Taken", "Participants")
		fmt.Fprintf(w, "  %s  %s  %s  %s\n",
			strings.Repeat("-", 4), strings.Repeat("-", nameWidth), strings.Repeat("-", 7), strings.Repeat("-", 12))

		for _, entry := range day.Entries {
			names := make([]string, 0, len(entry.Participants))
			for i := range entry.Participants {
				names = append(names, entry.Participants[i].FullName())
			}
			participants := "-"
			if len(names) > 0 {
				participants = strings.Join(names, ", ")
			}

			taken := fmt.Sprintf("%d/%d", entry.Taken, entry.Slot.Capacity)
			fmt.Fprintf(w, "  %-4d  %-*s  %s%-7s%s  %s\n",
				entry.Slot.ID,
				nameWidth, entry.Slot.Name,
				occupancyColor(entry.Taken, entry.Slot.Capacity), taken, colorReset,
				participants)
		}
	}
	fmt.Fprintln(w)
}
