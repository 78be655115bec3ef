package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/hfss-client/internal/adapters/render/transcript"
	scriptyaml "github.com/bnema/hfss-client/internal/adapters/script/yaml"
	"github.com/bnema/hfss-client/internal/application"
	"github.com/spf13/cobra"
)

func newRunCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Run a YAML build script against the active design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := scriptyaml.Load(app.fs, args[0])
			if err != nil {
				return err
			}

			return app.withSession(cmd, func(ctx context.Context, s *application.Session) error {
				result, err := application.RunScript(ctx, s, script)
				if err != nil {
					return err
				}

				rendered, err := app.render(nil, transcript.RenderOptions{Result: &result, ResultOnly: true})
				if err != nil {
					return fmt.Errorf("render result: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return err
			})
		},
	}
}
