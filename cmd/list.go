package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled faces",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("json", false, "Output as JSON")
}

type listedFace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jsonOutput := mustGetBool(cmd, "json")

	_, service, _, closeStore, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	templates, err := service.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list faces: %w", err)
	}

	if jsonOutput {
		faces := make([]listedFace, len(templates))
		for i, t := range templates {
			faces[i] = listedFace{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
		}
		return printJSON(faces)
	}

	if len(templates) == 0 {
		fmt.Println("No faces enrolled")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %s\n", "ID", "CREATED", "NAME")
	for _, t := range templates {
		fmt.Printf("%-36s  %-20s  %s\n", t.ID, t.CreatedAt.Local().Format("2006-01-02 15:04:05"), t.Name)
	}
	fmt.Printf("\nTotal: %d\n", len(templates))
	return nil
}
