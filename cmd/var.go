package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/hfss-client/internal/application"
	"github.com/bnema/hfss-client/internal/domain"
	"github.com/spf13/cobra"
)

func newVarCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "var",
		Short: "Read and write design variables",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <name> <value>",
			Short: "Create or update a design variable",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.withSession(cmd, func(ctx context.Context, s *application.Session) error {
					return s.SetVariable(ctx, args[0], domain.Expr(args[1]))
				})
			},
		},
		&cobra.Command{
			Use:   "get <name>",
			Short: "Print the expression of a design variable",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.withSession(cmd, func(ctx context.Context, s *application.Session) error {
					value, err := s.GetVariable(ctx, args[0])
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List design variable names",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.withSession(cmd, func(ctx context.Context, s *application.Session) error {
					names, err := s.Variables(ctx)
					if err != nil {
						return err
					}
					for _, name := range names {
						if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
							return err
						}
					}
					return nil
				})
			},
		},
	)

	return cmd
}
