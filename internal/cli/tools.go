package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forPelevin/autotube/internal/artifact"
	"github.com/forPelevin/autotube/internal/domain/inventory"
	"github.com/forPelevin/autotube/internal/domain/subtitles"
	"github.com/forPelevin/autotube/internal/pipeline"
)

func newCuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cues <script.txt>",
		Short: "Write SubRip cues for a script spread over a duration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dur, _ := cmd.Flags().GetFloat64("duration")
			words, _ := cmd.Flags().GetInt("words")
			out, _ := cmd.Flags().GetString("out")
			asASS, _ := cmd.Flags().GetBool("ass")

			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cues, err := subtitles.BuildCues(string(text), dur, words)
			if err != nil {
				return err
			}
			doc := subtitles.RenderSRT(cues)
			if asASS {
				doc = subtitles.RenderShortsASS(cues)
			}
			if out == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), doc)
				return err
			}
			return artifact.WriteAtomic(out, []byte(doc))
		},
	}
	cmd.Flags().Float64("duration", 0, "Narration length in seconds")
	cmd.Flags().Int("words", subtitles.DefaultWordsPerCue, "Words per cue")
	cmd.Flags().String("out", "", "Output file (default stdout)")
	cmd.Flags().Bool("ass", false, "Render vertical-video ASS instead of SRT")
	return cmd
}

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the clip order a footage list assembles into",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("videos")
			count, _ := cmd.Flags().GetInt("count")
			clipSec, _ := cmd.Flags().GetFloat64("clip-sec")
			minDistinct, _ := cmd.Flags().GetInt("min-distinct")
			if path == "" {
				return fmt.Errorf("--videos is required")
			}
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			plan, err := pipeline.PreviewPlan(b, inventory.DefaultFilter(),
				inventory.PlanOptions{TargetCount: count, MinDistinct: minDistinct}, clipSec)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		},
	}
	cmd.Flags().String("videos", "", "Footage list JSON (array or {\"videos\": [...]})")
	cmd.Flags().Int("count", 18, "Clips in the composition")
	cmd.Flags().Float64("clip-sec", 30, "Seconds kept from each clip")
	cmd.Flags().Int("min-distinct", 1, "Fewest distinct clips accepted")
	return cmd
}
