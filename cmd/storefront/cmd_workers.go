package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/internal/server"
)

var queueWorkersFlag int

// withApp boots the full dependency graph for fn.
func withApp(ctx context.Context, fn func(a *server.App) error) error {
	a, err := server.Boot(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued jobs until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withApp(ctx, func(a *server.App) error {
			a.Queue.Work(ctx, queueWorkersFlag)
			return nil
		})
	},
}

var queueFailedCmd = &cobra.Command{
	Use:   "queue:failed",
	Short: "List jobs that exhausted their retries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *server.App) error {
			failed, err := a.Queue.FailedJobs(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tJOB\tFAILED AT\tERROR")
			for _, f := range failed {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", f.ID, f.JobType, f.FailedAt.Format("2006-01-02 15:04:05"), f.Error)
			}
			return w.Flush()
		})
	},
}

var queueRetryCmd = &cobra.Command{
	Use:   "queue:retry",
	Short: "Push every failed job back onto the queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *server.App) error {
			n, err := a.Queue.RetryFailed(cmd.Context())
			if err == nil {
				fmt.Printf("Requeued %d job(s).\n", n)
			}
			return err
		})
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 2, "number of concurrent workers")
}
