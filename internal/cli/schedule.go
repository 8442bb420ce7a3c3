package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forPelevin/autotube/internal/pipeline"
)

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runSchedule,
	}
	cmd.Flags().String("cron", "0 9 * * *", "Cron expression (minute hour dom month dow)")
	cmd.Flags().String("topic", "", "Video topic (empty lets the model choose)")
	cmd.Flags().String("out", "", "Work directory (default .autotube or AUTOTUBE_WORK_DIR)")
	cmd.Flags().Bool("upload", false, "Upload the video and shorts to YouTube")
	cmd.Flags().Bool("skip-shorts", false, "Only produce the long-form video")
	addTuningFlags(cmd)
	return cmd
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	spec, _ := cmd.Flags().GetString("cron")
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid --cron %q: %w", spec, err)
	}
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

	cl := cronLogger{s: log.Sugar().Named("cron")}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	c.Schedule(sched, cron.FuncJob(func() {
		runCtx, cancel := context.WithTimeout(ctx, runTimeout)
		defer cancel()
		dir, err := pipeline.Run(runCtx, cfg)
		if err != nil {
			log.Error("scheduled run failed", zap.String("dir", dir), zap.Error(err))
			return
		}
		log.Info("scheduled run finished", zap.String("dir", dir))
	}))
	c.Start()
	log.Info("scheduler started", zap.String("cron", spec), zap.Time("next", sched.Next(time.Now())))

	<-ctx.Done()
	log.Info("stopping scheduler, waiting for a running job")
	<-c.Stop().Done()
	return nil
}
