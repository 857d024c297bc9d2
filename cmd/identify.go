package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceid/internal/matcher"
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Identify a face against all enrolled faces",
	Long: `Compute the embedding of a face capture and compare it with every enrolled face.

A face is identified only when its best score reaches the threshold and is
clearly ahead of the runner-up. Otherwise the outcome is no_match or ambiguous.

Examples:
  faceid identify --landmarks probe.json --image probe.png
  faceid identify --landmarks probe.json --image photo.jpg --box 412,180,220,260 --threshold 0.9
  faceid identify --landmarks probe.json --image probe.png --json`,
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().Float64("threshold", 0, "Minimum similarity in (0, 1]; 0 uses MATCH_THRESHOLD")
	identifyCmd.Flags().Bool("json", false, "Output the full decision as JSON")
	addProbeFlags(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	threshold := mustGetFloat64(cmd, "threshold")
	jsonOutput := mustGetBool(cmd, "json")

	probe, err := probeFromFlags(cmd)
	if err != nil {
		return err
	}

	_, service, _, closeStore, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	result, err := service.Identify(ctx, probe, threshold)
	if err != nil {
		return fmt.Errorf("failed to identify face: %w", err)
	}

	if jsonOutput {
		return printJSON(result)
	}

	printDecision(result)
	return nil
}

func printDecision(result matcher.MatchResult) {
	switch result.Outcome {
	case matcher.OutcomeMatched:
		fmt.Printf("Recognized: %s (%s)\n", result.CandidateName, result.CandidateID)
	case matcher.OutcomeEmptyGallery:
		fmt.Println("No faces enrolled")
		return
	case matcher.OutcomeAmbiguous:
		fmt.Printf("Not recognized: %s is too close to another enrolled face\n", result.CandidateName)
	default:
		fmt.Println("Not recognized: no match found")
	}

	fmt.Printf("  Similarity: %.4f (threshold %.2f)\n", result.Similarity, result.Threshold)
	fmt.Printf("  Runner-up:  %.4f (gap %.4f, required %.3f)\n", result.SecondSimilarity, result.Gap, result.MinGap)
	fmt.Printf("  Gallery:    %d face(s)\n", result.GallerySize)
}
