package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fekuna/omnipos-fulfillment-service/internal/app"
	"github.com/spf13/cobra"
)

func NewSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch unfulfilled orders and reconcile them with local progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App, out *printer) error {
				run, err := a.Sync.Sync(ctx)
				if err != nil {
					return err
				}
				return out.print(run, func(w io.Writer) {
					fmt.Fprintf(w, "sync %s\t%s\n", run.ID, run.Status)
					fmt.Fprintf(w, "fetched\t%d\n", run.OrdersFetched)
					fmt.Fprintf(w, "saved\t%d\n", run.OrdersSaved)
					fmt.Fprintf(w, "preserved\t%d\n", run.OrdersSkipped)
					fmt.Fprintf(w, "replaced\t%d\n", run.OrdersRemoved)
					fmt.Fprintf(w, "tasks\t%d\n", run.TasksUpdated)
				})
			})
		},
	}
}

type historyOptions struct {
	*RootOptions
	Limit int
}

func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &historyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App, out *printer) error {
				runs, err := a.Sync.ListSyncRuns(ctx, opts.Limit)
				if err != nil {
					return err
				}
				return out.print(runs, func(w io.Writer) {
					fmt.Fprintln(w, "STARTED\tSTATUS\tFETCHED\tSAVED\tPRESERVED\tDURATION\tERROR")
					for _, r := range runs {
						msg := ""
						if r.ErrorMessage != nil {
							msg = *r.ErrorMessage
						}
						fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%dms\t%s\n",
							r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status,
							r.OrdersFetched, r.OrdersSaved, r.OrdersSkipped, r.DurationMs, msg)
					}
				})
			})
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of runs to show")

	return cmd
}
