package cmd

import (
	"context"
	"strconv"

	"github.com/bnema/hfss-client/internal/application"
	"github.com/spf13/cobra"
)

func newPropCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prop",
		Short: "Change object properties",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <object> <property> <value>",
		Short: "Set one property of an object",
		Long:  "Set one property of an object. Numbers and true/false are sent typed; anything else is sent as a string.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, func(ctx context.Context, s *application.Session) error {
				return s.SetObjectProperty(ctx, args[0], args[1], propertyValue(args[2]))
			})
		},
	})

	return cmd
}

func propertyValue(raw string) any {
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	return raw
}
