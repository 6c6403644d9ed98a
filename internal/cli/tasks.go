package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-fulfillment-service/internal/app"
	"github.com/fekuna/omnipos-fulfillment-service/internal/auth"
	"github.com/fekuna/omnipos-fulfillment-service/internal/task/dto"
	"github.com/spf13/cobra"
)

type tasksOptions struct {
	*RootOptions
	Status string
}

func NewTasksCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &tasksOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List production tasks per variant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App, out *printer) error {
				tasks, err := a.Tasks.ListTasks(ctx, &dto.TaskFilters{Status: opts.Status})
				if err != nil {
					return err
				}
				return out.print(tasks, func(w io.Writer) {
					fmt.Fprintln(w, "VARIANT\tPRODUCT\tSKU\tMADE\tTOTAL\tSTATUS")
					for _, t := range tasks {
						fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
							t.VariantID, title(t.ProductTitle, t.VariantTitle), t.SKU,
							t.MadeQuantity, t.TotalQuantity, t.Status)
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status (pending|in_progress|completed)")

	return cmd
}

func NewProduceCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "produce <variant-id> <quantity>",
		Short: "Record produced units and allocate them to the oldest orders",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a whole number: %q", args[1])
			}
			return opts.run(cmd, func(ctx context.Context, a *app.App, out *printer) error {
				res, err := a.Tasks.MarkProduced(ctx, &dto.MarkProducedInput{
					VariantID:  args[0],
					Quantity:   qty,
					OperatorID: auth.GetOperatorID(ctx),
				})
				if err != nil {
					return err
				}
				return out.print(res, productionText(res))
			})
		},
	}
}

func NewCompleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <variant-id>",
		Short: "Mark a task as fully produced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App, out *printer) error {
				res, err := a.Tasks.MarkComplete(ctx, &dto.VariantInput{VariantID: args[0], OperatorID: auth.GetOperatorID(ctx)})
				if err != nil {
					return err
				}
				return out.print(res, productionText(res))
			})
		},
	}
}

func NewResetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <variant-id>",
		Short: "Reset a task's progress and take it back from the newest orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App, out *printer) error {
				res, err := a.Tasks.ResetTask(ctx, &dto.VariantInput{VariantID: args[0], OperatorID: auth.GetOperatorID(ctx)})
				if err != nil {
					return err
				}
				return out.print(res, productionText(res))
			})
		},
	}
}

func productionText(res *dto.ProductionResult) func(w io.Writer) {
	return func(w io.Writer) {
		t := res.Task
		fmt.Fprintf(w, "%s\t%d/%d\t%s\n", t.VariantID, t.MadeQuantity, t.TotalQuantity, t.Status)
		for _, al := range res.Allocations {
			fmt.Fprintf(w, "  order %s\tline %s\t%+d\n", al.OrderID, al.LineItemID, al.Quantity)
		}
		if len(res.NewlyFulfilled) > 0 {
			fmt.Fprintf(w, "fulfilled\t%s\n", strings.Join(res.NewlyFulfilled, ", "))
		}
		if res.Unallocated > 0 {
			fmt.Fprintf(w, "unallocated\t%d\n", res.Unallocated)
		}
	}
}

func title(product, variant string) string {
	if variant == "" || variant == "Default Title" {
		return product
	}
	return product + " / " + variant
}
