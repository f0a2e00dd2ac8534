package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"trackflow/internal/actions"
	"trackflow/internal/form"
	"trackflow/internal/model"
	"trackflow/internal/store"
	"trackflow/internal/workflow"
)

type boardColumn[T any] struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
	Items []T    `json:"items"`
}

func board[T workflow.Staged[S], S ~string](p workflow.Pipeline[S], items []T) []boardColumn[T] {
	cols := workflow.Columns(p, items)
	out := make([]boardColumn[T], 0, len(cols))
	for _, c := range cols {
		out = append(out, boardColumn[T]{Stage: string(c.Stage), Count: len(c.Items), Items: c.Items})
	}
	return out
}

func newLeadsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Manage leads",
	}
	cmd.AddCommand(newLeadsListCmd(app))
	cmd.AddCommand(newLeadsBoardCmd(app))
	cmd.AddCommand(newLeadsCreateCmd(app))
	cmd.AddCommand(newLeadsUpdateCmd(app))
	cmd.AddCommand(newLeadsMoveCmd(app))
	cmd.AddCommand(newLeadsDeleteCmd(app))
	return cmd
}

func newLeadsListCmd(app *App) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Handler.Refresh(cmd.Context(), store.Leads); err != nil {
				return err
			}
			return writeOut(cmd, app, workflow.SearchLeads(app.Store.Leads(), search))
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by name or company")
	return cmd
}

func newLeadsBoardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show leads grouped by pipeline stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Handler.Refresh(cmd.Context(), store.Leads); err != nil {
				return err
			}
			return writeOut(cmd, app, board(workflow.LeadPipeline, app.Store.Leads()))
		},
	}
}

func bindLeadFlags(cmd *cobra.Command, in *form.LeadInput) {
	cmd.Flags().StringVar(&in.Name, "name", "", "Lead name")
	cmd.Flags().StringVar(&in.Contact, "contact", "", "Phone or email")
	cmd.Flags().StringVar(&in.Company, "company", "", "Company")
	cmd.Flags().StringVar(&in.ProductInterest, "product", "", "Product of interest")
	cmd.Flags().StringVar(&in.Stage, "stage", "", "Pipeline stage (default New)")
	cmd.Flags().StringVar(&in.FollowUpDate, "follow-up", "", "Follow-up date, YYYY-MM-DD")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Notes")
}

func newLeadsCreateCmd(app *App) *cobra.Command {
	var in form.LeadInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a lead",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Handler.CreateLead(cmd.Context(), in); err != nil {
				return err
			}
			return writeOut(cmd, app, app.Store.Leads())
		},
	}
	bindLeadFlags(cmd, &in)
	return cmd
}

func leadInputOf(l model.Lead) form.LeadInput {
	return form.LeadInput{
		Name:            l.Name,
		Contact:         l.Contact,
		Company:         l.Company,
		ProductInterest: l.ProductInterest,
		Stage:           string(l.Stage),
		FollowUpDate:    formatDate(l.FollowUpDate),
		Notes:           deref(l.Notes),
	}
}

func newLeadsUpdateCmd(app *App) *cobra.Command {
	var in form.LeadInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a lead; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Handler.Refresh(cmd.Context(), store.Leads); err != nil {
				return err
			}
			lead, ok := app.Store.Lead(id)
			if !ok {
				return fmt.Errorf("lead %d: %w", id, actions.ErrNotFound)
			}
			merged := leadInputOf(lead)
			overlay(cmd, "name", &merged.Name, in.Name)
			overlay(cmd, "contact", &merged.Contact, in.Contact)
			overlay(cmd, "company", &merged.Company, in.Company)
			overlay(cmd, "product", &merged.ProductInterest, in.ProductInterest)
			overlay(cmd, "stage", &merged.Stage, in.Stage)
			overlay(cmd, "follow-up", &merged.FollowUpDate, in.FollowUpDate)
			overlay(cmd, "notes", &merged.Notes, in.Notes)
			if err := app.Handler.UpdateLead(cmd.Context(), id, merged); err != nil {
				return err
			}
			updated, _ := app.Store.Lead(id)
			return writeOut(cmd, app, updated)
		},
	}
	bindLeadFlags(cmd, &in)
	return cmd
}

func newLeadsMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <stage>",
		Short: "Move a lead to another pipeline stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Handler.Refresh(cmd.Context(), store.Leads); err != nil {
				return err
			}
			if err := app.Handler.MoveLead(cmd.Context(), id, model.LeadStage(args[1])); err != nil {
				return err
			}
			lead, _ := app.Store.Lead(id)
			return writeOut(cmd, app, lead)
		},
	}
}

func newLeadsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			deleted, err := app.Handler.DeleteLead(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"id": id, "deleted": deleted})
		},
	}
}
