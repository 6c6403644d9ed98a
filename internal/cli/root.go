// Package cli is the operator command line. Every command opens the store
// directly and runs one use case.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/fekuna/omnipos-fulfillment-service/config"
	"github.com/fekuna/omnipos-fulfillment-service/internal/app"
	"github.com/fekuna/omnipos-fulfillment-service/internal/auth"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Operator string

	// Open builds the application for one command. Tests replace it.
	Open func(ctx context.Context, verbose bool) (*app.App, error)
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	return newRootCommand(openFromEnv)
}

func newRootCommand(open func(ctx context.Context, verbose bool) (*app.App, error)) *cobra.Command {
	opts := &RootOptions{Open: open}

	cmd := &cobra.Command{
		Use:   "fulfillmentctl",
		Short: "Production fulfillment for Shopify orders",
		Long: `fulfillmentctl syncs unfulfilled orders, tracks per-variant production tasks
and allocates produced units to the oldest outstanding orders first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stdout")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Operator, "operator", "cli", "operator id recorded with changes")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTasksCommand(opts))
	cmd.AddCommand(NewProduceCommand(opts))
	cmd.AddCommand(NewCompleteCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))
	cmd.AddCommand(NewArchiveCommand(opts))
	cmd.AddCommand(NewUnarchiveCommand(opts))
	cmd.AddCommand(NewArchiveFulfilledCommand(opts))
	cmd.AddCommand(NewUnarchiveAllCommand(opts))
	cmd.AddCommand(NewPurgeArchivedCommand(opts))

	return cmd
}

func openFromEnv(ctx context.Context, verbose bool) (*app.App, error) {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	log := logger.NewNop()
	if verbose {
		log = app.NewLogger(cfg)
	}
	return app.New(ctx, cfg, log)
}

// run opens the application, runs fn with the operator on ctx and closes it.
func (o *RootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, out *printer) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := o.Open(ctx, o.Verbose)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx = auth.WithOperatorID(ctx, o.Operator)
	return fn(ctx, a, &printer{format: o.Format, w: cmd.OutOrStdout()})
}
