package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceid/internal/database"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export all enrolled faces to a JSON file",
	Long: `Write every enrolled face, including its embedding, to a JSON file that
the import command can load into any backend.

Example:
  faceid export faces.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	_, service, _, closeStore, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	templates, err := service.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list faces: %w", err)
	}

	if err := writeExport(path, templates, time.Now().UTC()); err != nil {
		return err
	}

	fmt.Printf("Exported %d face(s) to %s\n", len(templates), path)
	return nil
}

func writeExport(path string, templates []database.EnrolledTemplate, now time.Time) error {
	if templates == nil {
		templates = []database.EnrolledTemplate{}
	}
	data, err := json.MarshalIndent(database.ExportData{
		Version:    database.CurrentExportVersion,
		ExportedAt: now,
		Templates:  templates,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
