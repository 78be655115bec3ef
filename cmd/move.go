package cmd

import (
	"context"

	"github.com/bnema/hfss-client/internal/application"
	"github.com/spf13/cobra"
)

func newMoveCmd(app *app) *cobra.Command {
	var vector string

	cmd := &cobra.Command{
		Use:   "move <object> [object...]",
		Short: "Translate objects by a vector",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVec("vector", vector)
			if err != nil {
				return err
			}

			return app.withSession(cmd, func(ctx context.Context, s *application.Session) error {
				for _, name := range args {
					if err := s.Translate(ctx, name, v); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&vector, "vector", "", "Translation as dx,dy,dz")
	_ = cmd.MarkFlagRequired("vector")

	return cmd
}
