package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"trackflow/internal/model"
)

type documentView struct {
	model.Document
	URL string `json:"url"`
}

func parseOwner(typ, id string) (model.Owner, error) {
	owner := model.Owner{Type: model.OwnerType(typ)}
	if !owner.Type.Valid() {
		return owner, fmt.Errorf("invalid owner type %q, want lead or order", typ)
	}
	n, err := parseID(id)
	if err != nil {
		return owner, err
	}
	owner.ID = n
	return owner, nil
}

func (app *App) documentViews(docs []model.Document) []documentView {
	out := make([]documentView, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentView{Document: d, URL: app.Handler.ViewURL(d)})
	}
	return out
}

func newDocsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage documents attached to leads and orders",
	}
	cmd.AddCommand(newDocsListCmd(app))
	cmd.AddCommand(newDocsUploadCmd(app))
	cmd.AddCommand(newDocsDeleteCmd(app))
	return cmd
}

func newDocsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <lead|order> <id>",
		Short: "List documents of a lead or order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseOwner(args[0], args[1])
			if err != nil {
				return err
			}
			att, err := app.Handler.Attachments(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, app.documentViews(att.Documents()))
		},
	}
}

func newDocsUploadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <lead|order> <id> <file>",
		Short: "Upload a local file or minio://key object",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseOwner(args[0], args[1])
			if err != nil {
				return err
			}
			att, err := app.Handler.Attachments(cmd.Context(), owner)
			if err != nil {
				return err
			}
			if err := app.Handler.UploadDocument(cmd.Context(), att, args[2]); err != nil {
				return err
			}
			return writeOut(cmd, app, app.documentViews(att.Documents()))
		},
	}
}

func newDocsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <lead|order> <owner-id> <document-id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseOwner(args[0], args[1])
			if err != nil {
				return err
			}
			docID, err := parseID(args[2])
			if err != nil {
				return err
			}
			att, err := app.Handler.Attachments(cmd.Context(), owner)
			if err != nil {
				return err
			}
			deleted, err := app.Handler.DeleteDocument(cmd.Context(), att, docID)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"id": docID, "deleted": deleted})
		},
	}
}
