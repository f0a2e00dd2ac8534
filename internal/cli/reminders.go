package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trackflow/internal/actions"
	"trackflow/internal/form"
	"trackflow/internal/model"
	"trackflow/internal/store"
)

type reminderView struct {
	model.Reminder
	Overdue bool `json:"overdue"`
}

func newRemindersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Manage reminders",
	}
	cmd.AddCommand(newRemindersListCmd(app))
	cmd.AddCommand(newRemindersCreateCmd(app))
	cmd.AddCommand(newRemindersUpdateCmd(app))
	cmd.AddCommand(newRemindersToggleCmd(app))
	cmd.AddCommand(newRemindersDeleteCmd(app))
	return cmd
}

func newRemindersListCmd(app *App) *cobra.Command {
	var overdueOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Handler.Refresh(cmd.Context(), store.Reminders); err != nil {
				return err
			}
			now := time.Now()
			reminders := app.Store.Reminders()
			if overdueOnly {
				reminders = model.OverdueReminders(reminders, now)
			}
			out := make([]reminderView, 0, len(reminders))
			for _, r := range reminders {
				out = append(out, reminderView{Reminder: r, Overdue: r.Overdue(now)})
			}
			return writeOut(cmd, app, out)
		},
	}
	cmd.Flags().BoolVar(&overdueOnly, "overdue", false, "Only overdue reminders")
	return cmd
}

func bindReminderFlags(cmd *cobra.Command, in *form.ReminderInput) {
	cmd.Flags().StringVar(&in.Title, "title", "", "Title")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().StringVar(&in.ReminderDate, "at", "", "Due date-time, YYYY-MM-DDTHH:MM")
	cmd.Flags().BoolVar(&in.IsCompleted, "completed", false, "Mark as completed")
}

func newRemindersCreateCmd(app *App) *cobra.Command {
	var in form.ReminderInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a reminder",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Handler.CreateReminder(cmd.Context(), in); err != nil {
				return err
			}
			return writeOut(cmd, app, app.Store.Reminders())
		},
	}
	bindReminderFlags(cmd, &in)
	return cmd
}

func newRemindersUpdateCmd(app *App) *cobra.Command {
	var in form.ReminderInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a reminder; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Handler.Refresh(cmd.Context(), store.Reminders); err != nil {
				return err
			}
			r, ok := app.Store.Reminder(id)
			if !ok {
				return fmt.Errorf("reminder %d: %w", id, actions.ErrNotFound)
			}
			merged := form.ReminderInput{
				Title:        r.Title,
				Description:  deref(r.Description),
				ReminderDate: formatDateTime(r.ReminderDate),
				IsCompleted:  r.IsCompleted,
			}
			overlay(cmd, "title", &merged.Title, in.Title)
			overlay(cmd, "description", &merged.Description, in.Description)
			overlay(cmd, "at", &merged.ReminderDate, in.ReminderDate)
			if cmd.Flags().Changed("completed") {
				merged.IsCompleted = in.IsCompleted
			}
			if err := app.Handler.UpdateReminder(cmd.Context(), id, merged); err != nil {
				return err
			}
			updated, _ := app.Store.Reminder(id)
			return writeOut(cmd, app, updated)
		},
	}
	bindReminderFlags(cmd, &in)
	return cmd
}

func newRemindersToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the completed flag of a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Handler.Refresh(cmd.Context(), store.Reminders); err != nil {
				return err
			}
			if err := app.Handler.ToggleReminder(cmd.Context(), id); err != nil {
				return err
			}
			r, _ := app.Store.Reminder(id)
			return writeOut(cmd, app, r)
		},
	}
}

func newRemindersDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			deleted, err := app.Handler.DeleteReminder(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"id": id, "deleted": deleted})
		},
	}
}
