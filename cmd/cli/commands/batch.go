package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/pkg/core/services"
)

// FillAfternoonCmd creates the fillAfternoon command
func FillAfternoonCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fillAfternoon",
		Short: "Assign afternoon activities to everyone with free days",
		Long:  "Run the greedy afternoon pass. Existing assignments are kept, so running it again is a no-op.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			opts := services.FillAfternoonOptions{DryRun: dryRun}
			if cmd.Flags().Changed("max-per-person") {
				maxPerPerson, _ := cmd.Flags().GetInt("max-per-person")
				opts.MaxPerPerson = &maxPerPerson
			}
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetInt64("seed")
				opts.Seed = &seed
			}

			app.Logger.Debug("fillAfternoon command", zap.Bool("dry_run", dryRun))

			result, err := services.FillAfternoon(app.Ctx, app.Database, app.Logger, app.Cfg, opts)
			if err != nil {
				return fmt.Errorf("allocation failed: %w", err)
			}

			printBatchResult(cmd.OutOrStdout(), "🎯 Afternoon Allocation Results", result)
			return nil
		},
	}

	cmd.Flags().Int("max-per-person", 0, "Override the configured afternoon quota")
	cmd.Flags().Int64("seed", 0, "Seed for random tie-breaks")
	cmd.Flags().Bool("dry-run", false, "Run without saving to database")

	return cmd
}

// BackfillTrailsCmd creates the backfillTrails command
func BackfillTrailsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfillTrails",
		Short: "Place every leader without a trail into a random free trail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			opts := services.BackfillTrailsOptions{DryRun: dryRun}
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetInt64("seed")
				opts.Seed = &seed
			}

			app.Logger.Debug("backfillTrails command", zap.Bool("dry_run", dryRun))

			result, err := services.BackfillTrails(app.Ctx, app.Database, app.Logger, app.Cfg, opts)
			if err != nil {
				return fmt.Errorf("trail backfill failed: %w", err)
			}

			printBatchResult(cmd.OutOrStdout(), "🥾 Trail Backfill Results", result)
			return nil
		},
	}

	cmd.Flags().Int64("seed", 0, "Seed for the shuffle")
	cmd.Flags().Bool("dry-run", false, "Run without saving to database")

	return cmd
}

func printBatchResult(w io.Writer, title string, result *services.BatchResult) {
	fmt.Fprintf(w, "\n%s\n\n", title)
	fmt.Fprintf(w, "Pool:     %s\n", result.Pool)
	fmt.Fprintf(w, "Seed:     %d\n", result.Seed)
	fmt.Fprintf(w, "Created:  %d\n", len(result.Created))
	fmt.Fprintf(w, "Skipped:  %d\n", result.Skipped)

	switch {
	case result.DryRun:
		fmt.Fprintf(w, "Mode:     🧪 DRY RUN (not saved)\n")
	case result.Committed:
		fmt.Fprintf(w, "Status:   ✅ SUCCESS (saved to database)\n")
	case !result.Success:
		fmt.Fprintf(w, "Status:   ❌ FAILED (not saved)\n")
	default:
		fmt.Fprintf(w, "Status:   ✓ Nothing to save\n")
	}
	fmt.Fprintln(w)

	if len(result.ValidationErrors) > 0 {
		fmt.Fprintf(w, "⚠️  Validation Errors (%d):\n", len(result.ValidationErrors))
		for _, verr := range result.ValidationErrors {
			if verr.PreExisting {
				fmt.Fprintf(w, "  • %s: %s (already stored)\n", verr.Invariant, verr.Description)
				continue
			}
			fmt.Fprintf(w, "  • %s: %s\n", verr.Invariant, verr.Description)
		}
		fmt.Fprintln(w)
	}

	if result.DryRun {
		fmt.Fprintln(w, "💡 This was a dry run. Use without --dry-run to save assignments.")
	}
}
