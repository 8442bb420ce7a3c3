package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/autotube/internal/pipeline"
)

const runTimeout = 3 * time.Hour

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: script, narration, footage, video, shorts",
		Args:  cobra.NoArgs,
		RunE:  runPipeline,
	}
	cmd.Flags().String("topic", "", "Video topic (empty lets the model choose)")
	cmd.Flags().String("out", "", "Work directory (default .autotube or AUTOTUBE_WORK_DIR)")
	cmd.Flags().Bool("upload", false, "Upload the video and shorts to YouTube")
	cmd.Flags().Bool("skip-shorts", false, "Only produce the long-form video")
	addTuningFlags(cmd)
	return cmd
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfg, err := buildRunConfig(cmd)
	if err != nil {
		return err
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
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	dir, err := pipeline.Run(ctx, cfg)
	if err != nil {
		if dir != "" {
			return fmt.Errorf("%w (artifacts in %s)", err, dir)
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), dir)
	return nil
}

func buildRunConfig(cmd *cobra.Command) (pipeline.Config, error) {
	cfg, err := configFromEnv(cmd)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	cfg.Topic, _ = cmd.Flags().GetString("topic")
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.WorkDir = out
	}
	cfg.Upload, _ = cmd.Flags().GetBool("upload")
	cfg.SkipShorts, _ = cmd.Flags().GetBool("skip-shorts")
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
