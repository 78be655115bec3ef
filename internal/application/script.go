package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/hfss-client/internal/calc"
	"github.com/bnema/hfss-client/internal/domain"
	"github.com/bnema/hfss-client/internal/log"
)

var (
	ErrUnknownStepKind  = errors.New("unknown step kind")
	ErrUnknownReference = errors.New("unknown step reference")
	ErrDuplicateStepID  = errors.New("duplicate step id")
)

type StepKind string

const (
	StepBox       StepKind = "box"
	StepCylinder  StepKind = "cylinder"
	StepUnite     StepKind = "unite"
	StepIntersect StepKind = "intersect"
	StepTranslate StepKind = "translate"
	StepProperty  StepKind = "property"
)

// Script is a geometry build followed by calculator expressions. Variables are
// set first, in order, then steps run, then expressions.
type Script struct {
	Variables   []domain.Variable
	Steps       []Step
	Expressions []ScriptExpression
}

// Step is one drawing or editing operation. Objects entries may name a host
// object directly or refer to an earlier step's result as "$<id>".
type Step struct {
	ID   string
	Kind StepKind

	// box and cylinder
	Centered   bool
	Position   domain.Vec3
	Size       domain.Vec3
	Radius     domain.Expr
	Height     domain.Expr
	Axis       domain.Axis
	Attributes domain.Attributes

	// unite, intersect, translate, property
	Objects       []string
	KeepOriginals bool
	Vector        domain.Vec3
	Property      string
	Value         any
}

type ScriptExpression struct {
	Name     string
	RPN      string
	SaveAs   string
	Evaluate *Evaluation
}

type Evaluation struct {
	Mode  int
	Phase float64
}

type ScriptResult struct {
	// Objects maps step ids to the object name the step produced.
	Objects map[string]string
	// Values maps expression names to evaluated results.
	Values map[string]float64
	// Saved lists the named expressions stored in the design.
	Saved []string
}

func RunScript(ctx context.Context, s *Session, script Script) (ScriptResult, error) {
	result := ScriptResult{Objects: map[string]string{}, Values: map[string]float64{}}

	for _, v := range script.Variables {
		if err := s.SetVariable(ctx, v.Name, v.Value); err != nil {
			return result, fmt.Errorf("set variable %s: %w", v.Name, err)
		}
	}

	for i, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if step.ID != "" {
			if _, dup := result.Objects[step.ID]; dup {
				return result, fmt.Errorf("step %d: %w: %s", i+1, ErrDuplicateStepID, step.ID)
			}
		}

		name, err := runStep(ctx, s, step, result.Objects)
		if err != nil {
			return result, fmt.Errorf("step %d (%s %s): %w", i+1, step.Kind, step.ID, err)
		}
		if step.ID != "" && name != "" {
			result.Objects[step.ID] = name
		}
		log.Debug(log.CatScript, "step done", "index", i+1, "kind", string(step.Kind), "id", step.ID, "object", name)
	}

	for i, expr := range script.Expressions {
		if err := runExpression(ctx, s, expr, &result); err != nil {
			return result, fmt.Errorf("expression %d (%s): %w", i+1, expr.label(i), err)
		}
	}

	return result, nil
}

func (e ScriptExpression) label(i int) string {
	switch {
	case e.Name != "":
		return e.Name
	case e.SaveAs != "":
		return e.SaveAs
	default:
		return fmt.Sprintf("expr%d", i+1)
	}
}

func runStep(ctx context.Context, s *Session, step Step, ids map[string]string) (string, error) {
	objects, err := resolve(step.Objects, ids)
	if err != nil {
		return "", err
	}

	switch step.Kind {
	case StepBox:
		if step.Centered {
			return s.DrawBoxCenter(ctx, step.Position, step.Size, step.Attributes)
		}
		return s.DrawBoxCorner(ctx, step.Position, step.Size, step.Attributes)
	case StepCylinder:
		if step.Centered {
			return s.DrawCylinderCenter(ctx, step.Position, step.Radius, step.Height, step.Axis, step.Attributes)
		}
		return s.DrawCylinder(ctx, step.Position, step.Radius, step.Height, step.Axis, step.Attributes)
	case StepUnite:
		return s.Unite(ctx, objects, step.KeepOriginals)
	case StepIntersect:
		return s.Intersect(ctx, objects, step.KeepOriginals)
	case StepTranslate:
		if len(objects) == 0 {
			return "", domain.ErrEmptySelection
		}
		for _, obj := range objects {
			if err := s.Translate(ctx, obj, step.Vector); err != nil {
				return "", err
			}
		}
		return objects[0], nil
	case StepProperty:
		if len(objects) == 0 {
			return "", domain.ErrEmptySelection
		}
		if step.Property == "" {
			return "", domain.ErrEmptyName
		}
		for _, obj := range objects {
			if err := s.SetObjectProperty(ctx, obj, step.Property, step.Value); err != nil {
				return "", err
			}
		}
		return objects[0], nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStepKind, step.Kind)
	}
}

func resolve(objects []string, ids map[string]string) ([]string, error) {
	out := make([]string, len(objects))
	for i, obj := range objects {
		ref, ok := strings.CutPrefix(obj, "$")
		if !ok {
			out[i] = obj
			continue
		}
		name, ok := ids[ref]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownReference, obj)
		}
		out[i] = name
	}
	return out, nil
}

func runExpression(ctx context.Context, s *Session, expr ScriptExpression, result *ScriptResult) error {
	e, err := calc.ParseRPN(expr.RPN)
	if err != nil {
		return err
	}

	if expr.SaveAs != "" {
		saved, err := s.SaveExpression(ctx, e, expr.SaveAs)
		if err != nil {
			return err
		}
		result.Saved = append(result.Saved, expr.SaveAs)
		e = saved
	}

	if expr.Evaluate == nil {
		return nil
	}

	value, err := s.Evaluate(ctx, e, expr.Evaluate.Mode, expr.Evaluate.Phase)
	if err != nil {
		return err
	}

	key := expr.Name
	if key == "" {
		key = expr.SaveAs
	}
	if key == "" {
		key = expr.RPN
	}
	result.Values[key] = value
	return nil
}
