package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "autotube",
		Short:        "Generate a narrated long-form video and vertical shorts from a topic",
		SilenceUsage: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().Bool("json", false, "Log as JSON")

	root.AddCommand(
		newRunCmd(),
		newShortsCmd(),
		newCuesCmd(),
		newPlanCmd(),
		newScheduleCmd(),
	)
	return root
}
