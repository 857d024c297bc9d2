package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceid/internal/recognition"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Print the embedding of a face capture as JSON",
	Long: `Compute the 512-dimensional embedding of a face capture without touching storage.

Example:
  faceid embed --landmarks face.json --image face.png > face.embedding.json`,
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
	addProbeFlags(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	probe, err := probeFromFlags(cmd)
	if err != nil {
		return err
	}

	emb, err := recognition.NewService(nil, nil, 0).Embed(context.Background(), probe)
	if err != nil {
		return err
	}
	return printJSON(emb)
}
