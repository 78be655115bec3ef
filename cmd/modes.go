package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bnema/hfss-client/internal/application"
	"github.com/spf13/cobra"
)

func newModesCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modes",
		Short: "Inspect and excite eigenmodes of the default solution",
	}

	var phase float64
	setCmd := &cobra.Command{
		Use:   "set <mode>",
		Short: "Excite one eigenmode (1-based) and silence the others",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parse mode %q: %w", args[0], err)
			}

			return app.withSession(cmd, func(ctx context.Context, s *application.Session) error {
				return s.SetMode(ctx, n, phase)
			})
		},
	}
	setCmd.Flags().Float64Var(&phase, "phase", 0, "Excitation phase in degrees")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "count",
			Short: "Print the number of solved eigenmodes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.withSession(cmd, func(ctx context.Context, s *application.Session) error {
					n, err := s.NModes(ctx)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
					return err
				})
			},
		},
		setCmd,
	)

	return cmd
}
