package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/pkg/core/model"
	"github.com/jakechorley/camp-signup/pkg/core/services"
)

// ApplyCmd creates the apply command
func ApplyCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <person_id> <pool> <slot_id> [day]",
		Short: "Admit a person into a slot on their behalf",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			slotID, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("slot_id must be a number: %w", err)
			}
			var day string
			if len(args) > 3 {
				day = args[3]
			}

			app.Logger.Debug("apply command",
				zap.String("person_id", args[0]),
				zap.String("pool", args[1]),
				zap.Int64("slot_id", slotID),
				zap.String("day", day))

			assignment, err := services.AdmitApplication(app.Ctx, app.Database, app.Logger, app.Cfg, services.AdmissionRequest{
				PersonID: args[0],
				Pool:     model.Pool(args[1]),
				Day:      day,
				SlotID:   slotID,
			})
			if err != nil {
				return fmt.Errorf("application rejected: %w", err)
			}

			fmt.Printf("\n✓ Application accepted\n\n")
			fmt.Printf("Assignment ID: %s\n", assignment.ID)
			fmt.Printf("Pool:          %s\n", assignment.Pool)
			if assignment.Day != "" {
				fmt.Printf("Day:           %s\n", assignment.Day)
			}
			fmt.Printf("Slot:          %d\n\n", assignment.SlotID)
			return nil
		},
	}
}

// CancelCmd creates the cancel command
func CancelCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <person_id> <pool> [day]",
		Short: "Cancel a person's application, freeing the slot",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var day string
			if len(args) > 2 {
				day = args[2]
			}

			if err := services.CancelApplication(app.Ctx, app.Database, app.Logger, args[0], model.Pool(args[1]), day); err != nil {
				return fmt.Errorf("cancel failed: %w", err)
			}

			fmt.Printf("\n✓ Application cancelled\n\n")
			return nil
		},
	}
}
