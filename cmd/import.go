package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceid/internal/database"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import enrolled faces from a JSON export",
	Long: `Load faces written by the export command. Faces with an existing ID are
overwritten; use --replace to remove every enrolled face first.

Examples:
  faceid import faces.json
  faceid import faces.json --replace`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Bool("replace", false, "Delete all enrolled faces before importing")
}

func readExport(path string) (*database.ExportData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}

	var export database.ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("parsing export: %w", err)
	}
	if export.Version != database.CurrentExportVersion {
		return nil, fmt.Errorf("unsupported export version %d (expected %d)", export.Version, database.CurrentExportVersion)
	}

	for i := range export.Templates {
		if err := export.Templates[i].Validate(); err != nil {
			return nil, fmt.Errorf("template %d: %w", i, err)
		}
	}
	return &export, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	replace := mustGetBool(cmd, "replace")

	export, err := readExport(args[0])
	if err != nil {
		return err
	}

	_, _, store, closeStore, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if replace {
		deleted, err := store.DeleteAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear faces: %w", err)
		}
		fmt.Printf("Deleted %d existing face(s)\n", deleted)
	}

	bar := progressbar.NewOptions(len(export.Templates),
		progressbar.OptionSetDescription("Importing faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("faces"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	for i := range export.Templates {
		if err := store.Save(ctx, &export.Templates[i]); err != nil {
			bar.Exit()
			return fmt.Errorf("failed to import %s: %w", export.Templates[i].ID, err)
		}
		bar.Add(1)
	}
	bar.Finish()

	fmt.Printf("\nImported %d face(s)\n", len(export.Templates))
	return nil
}
