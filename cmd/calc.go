package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bnema/hfss-client/internal/application"
	"github.com/bnema/hfss-client/internal/calc"
	"github.com/spf13/cobra"
)

func newCalcCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Build and run field calculator expressions",
		Long:  "Build field calculator expressions from postfix programs such as \"Mag_E 2 pow vol\". Tokens are numbers, operators (+ - * / ^ pow neg abs x y z real imag), integrals (line:<name>, surf[:<name>], vol[:<name>]) and named expressions.",
	}

	var (
		mode  int
		phase float64
	)
	evalCmd := &cobra.Command{
		Use:   "eval <program>",
		Short: "Evaluate an expression with one eigenmode excited",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := calc.ParseRPN(args[0])
			if err != nil {
				return err
			}

			return app.withSession(cmd, func(ctx context.Context, s *application.Session) error {
				value, err := s.Evaluate(ctx, expr, mode, phase)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(value, 'g', -1, 64))
				return err
			})
		},
	}
	evalCmd.Flags().IntVar(&mode, "mode", 1, "Eigenmode to excite (1-based)")
	evalCmd.Flags().Float64Var(&phase, "phase", 0, "Evaluation phase in degrees")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "save <name> <program>",
			Short: "Store an expression in the host's named expression list",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				expr, err := calc.ParseRPN(args[1])
				if err != nil {
					return err
				}

				return app.withSession(cmd, func(ctx context.Context, s *application.Session) error {
					_, err := s.SaveExpression(ctx, expr, args[0])
					return err
				})
			},
		},
		evalCmd,
		&cobra.Command{
			Use:   "show <program>",
			Short: "Print the calculator calls a program expands to",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				expr, err := calc.ParseRPN(args[0])
				if err != nil {
					return err
				}

				for _, in := range expr.Instructions() {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), in); err != nil {
						return err
					}
				}
				return nil
			},
		},
	)

	return cmd
}
