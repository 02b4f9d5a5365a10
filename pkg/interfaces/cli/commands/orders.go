package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsinha/procurement/pkg/application/dto"
	"github.com/vsinha/procurement/pkg/application/services/lifecycle"
	"github.com/vsinha/procurement/pkg/application/state"
	"github.com/vsinha/procurement/pkg/domain/entities"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List, submit and decide on purchase orders",
	RunE:  withApp(runOrdersList),
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent orders",
	RunE:  withApp(runOrdersList),
}

var (
	submitQuantity float64
	submitType     string
)

var ordersSubmitCmd = &cobra.Command{
	Use:   "submit <product>",
	Short: "Submit a purchase order",
	Long: `Submit a purchase order for a product given by name or as #<id>.

The service decides whether the order is placed at once or waits for a
manager's approval; the resulting status is printed as returned.`,
	Args: cobra.MinimumNArgs(1),
}

var ordersApproveCmd = &cobra.Command{
	Use:   "approve <order-id>",
	Short: "Approve a pending order (manager only)",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runOrderDecision(entities.ActionApprove)),
}

var ordersRejectCmd = &cobra.Command{
	Use:   "reject <order-id>",
	Short: "Reject a pending order (manager only)",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runOrderDecision(entities.ActionReject)),
}

func init() {
	ordersSubmitCmd.RunE = withApp(runOrdersSubmit)

	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersSubmitCmd)
	ordersCmd.AddCommand(ordersApproveCmd)
	ordersCmd.AddCommand(ordersRejectCmd)

	ordersSubmitCmd.Flags().Float64VarP(&submitQuantity, "quantity", "q", 0, "quantity to order (default orders.default_quantity)")
	ordersSubmitCmd.Flags().StringVarP(&submitType, "type", "t", "", "order type: standard, cost or risk (default orders.default_type)")
}

func runOrdersList(ctx context.Context, a *app, _ []string) error {
	if err := a.refresh(ctx, state.ResourceOrders, state.ResourceProducts); err != nil {
		return err
	}
	return a.printer.Orders(a.orderRows())
}

func runOrdersSubmit(ctx context.Context, a *app, args []string) error {
	if err := a.refresh(ctx, state.ResourceProducts); err != nil {
		return err
	}

	req := lifecycle.SubmitRequest{
		Product:   parseProductRef(strings.Join(args, " ")),
		Quantity:  a.cfg.Orders.DefaultQuantity,
		OrderType: entities.OrderType(a.cfg.Orders.DefaultType),
	}
	if ordersSubmitCmd.Flags().Changed("quantity") {
		req.Quantity = submitQuantity
	}
	if submitType != "" {
		req.OrderType = entities.OrderType(submitType)
	}

	order, err := a.lifecycle.Submit(ctx, req)
	if err != nil {
		return err
	}

	rows := dto.NewOrderRows([]entities.Order{*order}, a.store.Products(), a.store.Role(), a.vatRate())
	return a.printer.Orders(rows)
}

func runOrderDecision(action entities.OrderAction) func(ctx context.Context, a *app, args []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		if err := a.refresh(ctx, state.ResourceOrders, state.ResourceProducts); err != nil {
			return err
		}

		id := entities.OrderID(args[0])
		var err error
		if action == entities.ActionApprove {
			err = a.lifecycle.Approve(ctx, a.store.Role(), id)
		} else {
			err = a.lifecycle.Reject(ctx, a.store.Role(), id)
		}
		if err != nil {
			return err
		}

		order, ok := a.store.Order(id)
		if !ok {
			return a.printer.Value(map[string]string{"order_id": string(id), "action": string(action)},
				fmt.Sprintf("Order %s: %s sent", id, action))
		}
		return a.printer.Orders(dto.NewOrderRows([]entities.Order{order}, a.store.Products(), a.store.Role(), a.vatRate()))
	}
}

func (a *app) orderRows() []dto.OrderRow {
	return dto.NewOrderRows(a.store.Orders(), a.store.Products(), a.store.Role(), a.vatRate())
}

// parseProductRef reads "#12" as an id and anything else as a name
func parseProductRef(arg string) entities.ProductRef {
	arg = strings.TrimSpace(arg)
	if rest, ok := strings.CutPrefix(arg, "#"); ok {
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil {
			return entities.ProductRefByID(entities.ProductID(id))
		}
	}
	return entities.ProductRefByName(arg)
}
