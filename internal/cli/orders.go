package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"trackflow/internal/actions"
	"trackflow/internal/form"
	"trackflow/internal/model"
	"trackflow/internal/store"
	"trackflow/internal/workflow"
)

// orderView is an order joined with the lead it came from.
type orderView struct {
	model.Order
	LeadName    string `json:"lead_name,omitempty"`
	LeadCompany string `json:"lead_company,omitempty"`
}

func orderViews(orders []model.Order, leads []model.Lead) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		v := orderView{Order: o}
		if l, ok := workflow.LeadFor(o, leads); ok {
			v.LeadName, v.LeadCompany = l.Name, l.Company
		}
		out = append(out, v)
	}
	return out
}

func refreshOrdersAndLeads(ctx context.Context, app *App) error {
	return errors.Join(
		app.Handler.Refresh(ctx, store.Orders),
		app.Handler.Refresh(ctx, store.Leads),
	)
}

func newOrdersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Manage orders",
	}
	cmd.AddCommand(newOrdersListCmd(app))
	cmd.AddCommand(newOrdersBoardCmd(app))
	cmd.AddCommand(newOrdersLeadsCmd(app))
	cmd.AddCommand(newOrdersCreateCmd(app))
	cmd.AddCommand(newOrdersUpdateCmd(app))
	cmd.AddCommand(newOrdersMoveCmd(app))
	cmd.AddCommand(newOrdersDeleteCmd(app))
	return cmd
}

func newOrdersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List orders with their lead",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := refreshOrdersAndLeads(cmd.Context(), app); err != nil {
				return err
			}
			return writeOut(cmd, app, orderViews(app.Store.Orders(), app.Store.Leads()))
		},
	}
}

func newOrdersBoardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show orders grouped by fulfilment stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Handler.Refresh(cmd.Context(), store.Orders); err != nil {
				return err
			}
			return writeOut(cmd, app, board(workflow.OrderPipeline, app.Store.Orders()))
		},
	}
}

func newOrdersLeadsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "leads",
		Short: "List the leads an order can be created for",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Handler.Refresh(cmd.Context(), store.Leads); err != nil {
				return err
			}
			return writeOut(cmd, app, app.Handler.OrderLeadOptions())
		},
	}
}

func bindOrderFlags(cmd *cobra.Command, in *form.OrderInput) {
	cmd.Flags().StringVar(&in.Stage, "stage", "", "Fulfilment stage (default Order Received)")
	cmd.Flags().StringVar(&in.Courier, "courier", "", "Courier")
	cmd.Flags().StringVar(&in.TrackingNumber, "tracking", "", "Tracking number")
	cmd.Flags().StringVar(&in.DispatchDate, "dispatch-date", "", "Dispatch date, YYYY-MM-DD")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Notes")
}

func newOrdersCreateCmd(app *App) *cobra.Command {
	var in form.OrderInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an order for a won lead",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Handler.Refresh(cmd.Context(), store.Leads); err != nil {
				return err
			}
			if err := app.Handler.CreateOrder(cmd.Context(), in); err != nil {
				return err
			}
			return writeOut(cmd, app, app.Store.Orders())
		},
	}
	cmd.Flags().Int64Var(&in.LeadID, "lead", 0, "ID of the won lead")
	bindOrderFlags(cmd, &in)
	return cmd
}

func orderInputOf(o model.Order) form.OrderInput {
	return form.OrderInput{
		LeadID:         o.LeadID,
		Stage:          string(o.Stage),
		Courier:        deref(o.Courier),
		TrackingNumber: deref(o.TrackingNumber),
		DispatchDate:   formatDate(o.DispatchDate),
		Notes:          deref(o.Notes),
	}
}

func newOrdersUpdateCmd(app *App) *cobra.Command {
	var in form.OrderInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an order; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Handler.Refresh(cmd.Context(), store.Orders); err != nil {
				return err
			}
			order, ok := app.Store.Order(id)
			if !ok {
				return fmt.Errorf("order %d: %w", id, actions.ErrNotFound)
			}
			merged := orderInputOf(order)
			overlay(cmd, "stage", &merged.Stage, in.Stage)
			overlay(cmd, "courier", &merged.Courier, in.Courier)
			overlay(cmd, "tracking", &merged.TrackingNumber, in.TrackingNumber)
			overlay(cmd, "dispatch-date", &merged.DispatchDate, in.DispatchDate)
			overlay(cmd, "notes", &merged.Notes, in.Notes)
			if err := app.Handler.UpdateOrder(cmd.Context(), id, merged); err != nil {
				return err
			}
			updated, _ := app.Store.Order(id)
			return writeOut(cmd, app, updated)
		},
	}
	bindOrderFlags(cmd, &in)
	return cmd
}

func newOrdersMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <stage>",
		Short: "Move an order to another fulfilment stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Handler.Refresh(cmd.Context(), store.Orders); err != nil {
				return err
			}
			if err := app.Handler.MoveOrder(cmd.Context(), id, model.OrderStage(args[1])); err != nil {
				return err
			}
			order, _ := app.Store.Order(id)
			return writeOut(cmd, app, order)
		},
	}
}

func newOrdersDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			deleted, err := app.Handler.DeleteOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"id": id, "deleted": deleted})
		},
	}
}
