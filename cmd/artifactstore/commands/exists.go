package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/artifactstore/bootstrap"
)

func newExistsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <path>",
		Short: "Report whether a blob is stored at path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, app *bootstrap.App) error {
				ok, err := app.Store().Exists(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), ok)
				return err
			})
		},
	}
}
