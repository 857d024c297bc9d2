package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceid/internal/database"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an enrolled face",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	id := args[0]

	_, service, _, closeStore, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := service.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("face %s not found", id)
		}
		return fmt.Errorf("failed to delete face: %w", err)
	}

	fmt.Printf("Deleted %s\n", id)
	return nil
}
