package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fekuna/omnipos-fulfillment-service/internal/app"
	"github.com/fekuna/omnipos-fulfillment-service/internal/auth"
	"github.com/fekuna/omnipos-fulfillment-service/internal/order/dto"
	"github.com/spf13/cobra"
)

type ordersOptions struct {
	*RootOptions
	Status   string
	Archived bool
}

func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ordersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List tracked orders, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App, out *printer) error {
				orders, _, err := a.Orders.ListOrders(ctx, &dto.OrderFilters{
					Status:          opts.Status,
					IncludeArchived: opts.Archived,
				})
				if err != nil {
					return err
				}
				return out.print(orders, func(w io.Writer) {
					fmt.Fprintln(w, "ORDER\tNAME\tDATE\tFULFILLED\tTOTAL\tSTATUS")
					for _, o := range orders {
						fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
							o.OrderID, o.OrderName, o.OrderDate.Local().Format("2006-01-02"),
							o.FulfilledItems, o.TotalItems, o.Status)
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status (pending|in_progress|fulfilled|archived)")
	cmd.Flags().BoolVar(&opts.Archived, "archived", false, "include archived orders")

	return cmd
}

func NewArchiveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <order-id>",
		Short: "Archive an order and remove its quantity from the tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App, out *printer) error {
				res, err := a.Orders.ArchiveOrder(ctx, &dto.OrderInput{OrderID: args[0], OperatorID: auth.GetOperatorID(ctx)})
				if err != nil {
					return err
				}
				if res.AlreadyArchived {
					return out.print(res, out.line("order %s is already archived", args[0]))
				}
				return out.print(res, out.line("order %s archived", args[0]))
			})
		},
	}
}

func NewUnarchiveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive <order-id>",
		Short: "Restore an archived order and its quantity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App, out *printer) error {
				res, err := a.Orders.UnarchiveOrder(ctx, &dto.OrderInput{OrderID: args[0], OperatorID: auth.GetOperatorID(ctx)})
				if err != nil {
					return err
				}
				if res.NotArchived {
					return out.print(res, out.line("order %s is not archived", args[0]))
				}
				return out.print(res, out.line("order %s restored as %s", args[0], res.Order.Status))
			})
		},
	}
}

type countResult struct {
	Count int64 `json:"count"`
}

func NewArchiveFulfilledCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "archive-fulfilled",
		Short: "Archive every fulfilled order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App, out *printer) error {
				n, err := a.Orders.ArchiveAllFulfilled(ctx)
				if err != nil {
					return err
				}
				return out.print(countResult{Count: int64(n)}, out.line("%d orders archived", n))
			})
		},
	}
}

func NewUnarchiveAllCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive-all",
		Short: "Restore every archived order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App, out *printer) error {
				n, err := a.Orders.UnarchiveAll(ctx)
				if err != nil {
					return err
				}
				return out.print(countResult{Count: int64(n)}, out.line("%d orders restored", n))
			})
		},
	}
}

type purgeOptions struct {
	*RootOptions
	Yes bool
}

func NewPurgeArchivedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &purgeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "purge-archived",
		Short: "Permanently delete archived orders and their line items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Yes {
				return fmt.Errorf("purge-archived cannot be undone; pass --yes to confirm")
			}
			return opts.run(cmd, func(ctx context.Context, a *app.App, out *printer) error {
				n, err := a.Orders.DeleteArchived(ctx)
				if err != nil {
					return err
				}
				return out.print(countResult{Count: n}, out.line("%d archived orders deleted", n))
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm permanent deletion")

	return cmd
}
