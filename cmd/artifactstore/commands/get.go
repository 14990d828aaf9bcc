package commands

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kbukum/artifactstore/bootstrap"
	"github.com/kbukum/artifactstore/logger"
)

func newGetCmd(o *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Print a stored blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, app *bootstrap.App) error {
				b, ok, err := app.Store().GetBlob(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s: not found", args[0])
				}
				app.Logger.Debug("Blob fetched", logger.Fields(
					logger.FieldPath, b.Path,
					logger.FieldMIME, b.MIME,
					logger.FieldBytes, b.Size,
				))
				if out != "" {
					return afero.WriteFile(o.fs, out, b.Content, 0o644)
				}
				_, err = cmd.OutOrStdout().Write(b.Content)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write the content to this file instead of stdout")
	return cmd
}
