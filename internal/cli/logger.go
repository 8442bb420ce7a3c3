package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return zap.NewProduction()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// cronLogger routes scheduler events into zap.
type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, keysAndValues ...any) { l.s.Infow(msg, keysAndValues...) }

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
