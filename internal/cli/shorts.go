package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forPelevin/autotube/internal/pipeline"
)

func newShortsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shorts",
		Short: "Cut vertical shorts from an existing narrated video",
		Args:  cobra.NoArgs,
		RunE:  runShorts,
	}
	cmd.Flags().String("script", "", "Narration script text file")
	cmd.Flags().String("video", "", "Narrated long-form video")
	cmd.Flags().Float64("audio-sec", 0, "Narration length in seconds (0 probes the video)")
	cmd.Flags().String("out", "", "Output directory (default: shorts/ next to the video)")
	addTuningFlags(cmd)
	return cmd
}

func runShorts(cmd *cobra.Command, _ []string) error {
	base, err := configFromEnv(cmd)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg := pipeline.ShortsConfig{Config: base}
	cfg.ScriptPath, _ = cmd.Flags().GetString("script")
	cfg.VideoPath, _ = cmd.Flags().GetString("video")
	cfg.AudioSec, _ = cmd.Flags().GetFloat64("audio-sec")
	cfg.OutDir, _ = cmd.Flags().GetString("out")
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()
	cfg.Logger = log
	cfg.Logf = log.Sugar().Infof

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := pipeline.RunShorts(ctx, cfg)
	if err != nil {
		return err
	}
	for _, s := range out {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%.3f\t%.3f\t%s\t%s\n", s.ID, s.StartSec, s.EndSec, s.File, s.Title)
	}
	return nil
}
