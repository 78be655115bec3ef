package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/hfss-client/internal/application"
	"github.com/spf13/cobra"
)

// newBooleanCmd builds unite or intersect; both keep the first object's name.
func newBooleanCmd(app *app, op string) *cobra.Command {
	var keep bool

	cmd := &cobra.Command{
		Use:   op + " <object> [object...]",
		Short: fmt.Sprintf("Run %s on objects and print the surviving name", op),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, func(ctx context.Context, s *application.Session) error {
				run := s.Unite
				if op == "intersect" {
					run = s.Intersect
				}

				name, err := run(ctx, args, keep)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), name)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&keep, "keep-originals", false, "Keep the input objects")

	return cmd
}
