package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Enroll a face under a name",
	Long: `Compute the embedding of a face capture and store it under a display name.

Enrolling the same person more than once is allowed, but the later
identification of that person will then be reported as ambiguous between
the duplicate entries.

Examples:
  # Landmarks already normalized to the face crop
  faceid enroll --name "Alice" --landmarks alice.json --image alice-face.png

  # Landmarks normalized to the full photo; crop the face first
  faceid enroll --name "Alice" --landmarks alice.json --image photo.jpg --box 412,180,220,260`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Display name of the person")
	enrollCmd.MarkFlagRequired("name")
	addProbeFlags(enrollCmd)
}

func runEnroll(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := mustGetString(cmd, "name")

	probe, err := probeFromFlags(cmd)
	if err != nil {
		return err
	}

	_, service, store, closeStore, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	existing, err := store.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("looking up existing faces: %w", err)
	}

	tpl, err := service.Enroll(ctx, name, probe)
	if err != nil {
		return fmt.Errorf("failed to enroll face: %w", err)
	}

	fmt.Printf("Enrolled %s as %s\n", tpl.Name, tpl.ID)
	if len(existing) > 0 {
		fmt.Printf("Warning: %d face(s) were already enrolled under a matching name:\n", len(existing))
		for _, e := range existing {
			fmt.Printf("  %s  %s\n", e.ID, e.Name)
		}
	}
	return nil
}
