package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cafe.GO/cron"
	"cafe.GO/cron/jobs"
)

var jobName string

var cronStartCmd = &cobra.Command{
	Use:   "cron:start",
	Short: "Start the cron scheduler or run a single job by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d, cleanup, err := services(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		jobs.Register(d)

		if jobName != "" {
			name := strings.ToLower(jobName)
			j, ok := cron.Jobs()[name]
			if !ok {
				return fmt.Errorf("unknown job %q (known: %s)", jobName, strings.Join(cron.Names(), ", "))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Running cron job: %s\n", name)
			j.Run(args...)
			return nil
		}

		c, err := cron.StartCron(d.Logger)
		if err != nil {
			return err
		}
		d.Logger.Info("cron scheduler started", zap.Strings("jobs", cron.Names()))
		<-ctx.Done()
		<-c.Stop().Done()
		d.Logger.Info("cron scheduler stopped")
		return nil
	},
}

func init() {
	cronStartCmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	rootCmd.AddCommand(cronStartCmd)
}
