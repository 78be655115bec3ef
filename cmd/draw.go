package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/hfss-client/internal/application"
	"github.com/bnema/hfss-client/internal/domain"
	"github.com/spf13/cobra"
)

type attributeFlags struct {
	name         string
	nonModel     bool
	color        string
	transparency float64
	material     string
}

func (f *attributeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Object name; the host picks one when empty")
	cmd.Flags().BoolVar(&f.nonModel, "non-model", false, "Create a non-model object")
	cmd.Flags().StringVar(&f.color, "color", "", "Color as \"(R G B)\"")
	cmd.Flags().Float64Var(&f.transparency, "transparency", 0, "Transparency between 0 and 1")
	cmd.Flags().StringVar(&f.material, "material", "", "Material name")
}

func (f *attributeFlags) attributes(cmd *cobra.Command) domain.Attributes {
	attrs := domain.Attributes{
		Name:     f.name,
		NonModel: f.nonModel,
		Color:    f.color,
		Material: f.material,
	}
	if cmd.Flags().Changed("transparency") {
		attrs.Transparency = domain.Transparency(f.transparency)
	}
	return attrs
}

// parseVec reads "x,y,z". Commas inside parentheses belong to the
// expression, so "max(a,b),0,h" has three components.
func parseVec(flag, raw string) (domain.Vec3, error) {
	parts := splitTopLevel(raw)
	if len(parts) != 3 {
		return domain.Vec3{}, fmt.Errorf("--%s needs 3 comma separated expressions, got %d", flag, len(parts))
	}
	return domain.V(parts[0], parts[1], parts[2]), nil
}

func splitTopLevel(raw string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range raw {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(raw[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(raw[start:]))
}

func newDrawCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw primitive solids",
	}

	cmd.AddCommand(newDrawBoxCmd(app), newDrawCylinderCmd(app))

	return cmd
}

func newDrawBoxCmd(app *app) *cobra.Command {
	var (
		pos, size string
		center    bool
		attrs     attributeFlags
	)

	cmd := &cobra.Command{
		Use:   "box",
		Short: "Draw a box from a corner or a center and a size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parseVec("pos", pos)
			if err != nil {
				return err
			}
			sz, err := parseVec("size", size)
			if err != nil {
				return err
			}

			return app.withSession(cmd, func(ctx context.Context, s *application.Session) error {
				draw := s.DrawBoxCorner
				if center {
					draw = s.DrawBoxCenter
				}

				name, err := draw(ctx, p, sz, attrs.attributes(cmd))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), name)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&pos, "pos", "", "Corner, or center with --center, as x,y,z")
	cmd.Flags().StringVar(&size, "size", "", "Size as dx,dy,dz")
	cmd.Flags().BoolVar(&center, "center", false, "Treat --pos as the box center")
	attrs.register(cmd)
	_ = cmd.MarkFlagRequired("pos")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}

func newDrawCylinderCmd(app *app) *cobra.Command {
	var (
		pos            string
		radius, height string
		axis           string
		center         bool
		attrs          attributeFlags
	)

	cmd := &cobra.Command{
		Use:   "cylinder",
		Short: "Draw a cylinder from its base center or its center",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parseVec("pos", pos)
			if err != nil {
				return err
			}
			ax, err := domain.ParseAxis(axis)
			if err != nil {
				return err
			}

			return app.withSession(cmd, func(ctx context.Context, s *application.Session) error {
				draw := s.DrawCylinder
				if center {
					draw = s.DrawCylinderCenter
				}

				name, err := draw(ctx, p, domain.Expr(radius), domain.Expr(height), ax, attrs.attributes(cmd))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), name)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&pos, "pos", "", "Base center, or center with --center, as x,y,z")
	cmd.Flags().StringVar(&radius, "radius", "", "Radius expression")
	cmd.Flags().StringVar(&height, "height", "", "Height expression")
	cmd.Flags().StringVar(&axis, "axis", "Z", "Cylinder axis: X, Y or Z")
	cmd.Flags().BoolVar(&center, "center", false, "Treat --pos as the cylinder center")
	attrs.register(cmd)
	_ = cmd.MarkFlagRequired("pos")
	_ = cmd.MarkFlagRequired("radius")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}
