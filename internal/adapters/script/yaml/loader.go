// Package yaml loads build scripts from YAML files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/bnema/hfss-client/internal/application"
	"github.com/bnema/hfss-client/internal/domain"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
	yamlv3 "gopkg.in/yaml.v3"
)

var ErrInvalidScript = errors.New("invalid script")

type fileSchema struct {
	Variables   []variableSchema   `yaml:"variables"`
	Steps       []stepSchema       `yaml:"steps"`
	Expressions []expressionSchema `yaml:"expressions"`
}

type variableSchema struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

type stepSchema struct {
	ID        string          `yaml:"id"`
	Box       *boxSchema      `yaml:"box"`
	Cylinder  *cylinderSchema `yaml:"cylinder"`
	Unite     *booleanSchema  `yaml:"unite"`
	Intersect *booleanSchema  `yaml:"intersect"`
	Translate *moveSchema     `yaml:"translate"`
	Property  *propertySchema `yaml:"property"`
}

type attributesSchema struct {
	Name         string   `yaml:"name"`
	NonModel     bool     `yaml:"non_model"`
	Color        string   `yaml:"color"`
	Transparency *float64 `yaml:"transparency"`
	Material     string   `yaml:"material"`
}

type boxSchema struct {
	Center []any `yaml:"center"`
	Corner []any `yaml:"corner"`
	Size   []any `yaml:"size"`

	attributesSchema `yaml:",inline"`
}

type cylinderSchema struct {
	Center []any  `yaml:"center"`
	Base   []any  `yaml:"base"`
	Radius any    `yaml:"radius"`
	Height any    `yaml:"height"`
	Axis   string `yaml:"axis"`

	attributesSchema `yaml:",inline"`
}

type booleanSchema struct {
	Objects       []string `yaml:"objects"`
	KeepOriginals bool     `yaml:"keep_originals"`
}

type moveSchema struct {
	Object  string   `yaml:"object"`
	Objects []string `yaml:"objects"`
	Vector  []any    `yaml:"vector"`
}

type propertySchema struct {
	Object  string   `yaml:"object"`
	Objects []string `yaml:"objects"`
	Name    string   `yaml:"name"`
	Value   any      `yaml:"value"`
}

type expressionSchema struct {
	Name     string          `yaml:"name"`
	RPN      string          `yaml:"rpn"`
	SaveAs   string          `yaml:"save_as"`
	Evaluate *evaluateSchema `yaml:"evaluate"`
}

type evaluateSchema struct {
	Mode  int     `yaml:"mode"`
	Phase float64 `yaml:"phase"`
}

// Load reads and decodes the script at path.
func Load(fs afero.Fs, path string) (application.Script, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return application.Script{}, fmt.Errorf("read script %s: %w", path, err)
	}

	script, err := Decode(bytes.NewReader(data))
	if err != nil {
		return application.Script{}, fmt.Errorf("load script %s: %w", path, err)
	}
	return script, nil
}

// Decode reads one script document. Unknown keys are rejected.
func Decode(r io.Reader) (application.Script, error) {
	dec := yamlv3.NewDecoder(r)
	dec.KnownFields(true)

	var file fileSchema
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return application.Script{}, nil
		}
		return application.Script{}, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}

	return file.toScript()
}

func (f fileSchema) toScript() (application.Script, error) {
	var script application.Script

	for i, v := range f.Variables {
		if v.Name == "" {
			return application.Script{}, fmt.Errorf("%w: variable %d: %w", ErrInvalidScript, i+1, domain.ErrEmptyName)
		}
		value, err := cast.ToStringE(v.Value)
		if err != nil {
			return application.Script{}, fmt.Errorf("%w: variable %s: %v", ErrInvalidScript, v.Name, err)
		}
		script.Variables = append(script.Variables, domain.Variable{Name: v.Name, Value: domain.Expr(value)})
	}

	for i, s := range f.Steps {
		step, err := s.toStep()
		if err != nil {
			return application.Script{}, fmt.Errorf("%w: step %d: %v", ErrInvalidScript, i+1, err)
		}
		script.Steps = append(script.Steps, step)
	}

	for i, e := range f.Expressions {
		if e.RPN == "" {
			return application.Script{}, fmt.Errorf("%w: expression %d has no rpn", ErrInvalidScript, i+1)
		}
		expr := application.ScriptExpression{Name: e.Name, RPN: e.RPN, SaveAs: e.SaveAs}
		if e.Evaluate != nil {
			mode := e.Evaluate.Mode
			if mode == 0 {
				mode = 1
			}
			expr.Evaluate = &application.Evaluation{Mode: mode, Phase: e.Evaluate.Phase}
		}
		script.Expressions = append(script.Expressions, expr)
	}

	return script, nil
}

func (s stepSchema) toStep() (application.Step, error) {
	set := 0
	for _, present := range []bool{s.Box != nil, s.Cylinder != nil, s.Unite != nil, s.Intersect != nil, s.Translate != nil, s.Property != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return application.Step{}, fmt.Errorf("want exactly one operation, got %d", set)
	}

	step := application.Step{ID: s.ID}
	switch {
	case s.Box != nil:
		step.Kind = application.StepBox
		pos, centered, err := placement(s.Box.Center, s.Box.Corner, "corner")
		if err != nil {
			return step, err
		}
		size, err := vector(s.Box.Size, "size")
		if err != nil {
			return step, err
		}
		step.Centered, step.Position, step.Size = centered, pos, size
		step.Attributes = s.Box.attributes()
	case s.Cylinder != nil:
		step.Kind = application.StepCylinder
		pos, centered, err := placement(s.Cylinder.Center, s.Cylinder.Base, "base")
		if err != nil {
			return step, err
		}
		axis, err := domain.ParseAxis(s.Cylinder.Axis)
		if err != nil {
			return step, err
		}
		step.Centered, step.Position, step.Axis = centered, pos, axis
		step.Radius = domain.Expr(cast.ToString(s.Cylinder.Radius))
		step.Height = domain.Expr(cast.ToString(s.Cylinder.Height))
		if step.Radius == "" || step.Height == "" {
			return step, errors.New("cylinder needs radius and height")
		}
		step.Attributes = s.Cylinder.attributes()
	case s.Unite != nil:
		step.Kind = application.StepUnite
		step.Objects, step.KeepOriginals = s.Unite.Objects, s.Unite.KeepOriginals
	case s.Intersect != nil:
		step.Kind = application.StepIntersect
		step.Objects, step.KeepOriginals = s.Intersect.Objects, s.Intersect.KeepOriginals
	case s.Translate != nil:
		step.Kind = application.StepTranslate
		step.Objects = objects(s.Translate.Object, s.Translate.Objects)
		v, err := vector(s.Translate.Vector, "vector")
		if err != nil {
			return step, err
		}
		step.Vector = v
	case s.Property != nil:
		step.Kind = application.StepProperty
		step.Objects = objects(s.Property.Object, s.Property.Objects)
		step.Property, step.Value = s.Property.Name, s.Property.Value
	}

	return step, nil
}

func (a attributesSchema) attributes() domain.Attributes {
	return domain.Attributes{
		Name:         a.Name,
		NonModel:     a.NonModel,
		Color:        a.Color,
		Transparency: a.Transparency,
		Material:     a.Material,
	}
}

// placement accepts either center or the alternative key, not both.
func placement(center, other []any, otherKey string) (domain.Vec3, bool, error) {
	switch {
	case center != nil && other != nil:
		return domain.Vec3{}, false, fmt.Errorf("center and %s are exclusive", otherKey)
	case center != nil:
		v, err := vector(center, "center")
		return v, true, err
	default:
		v, err := vector(other, otherKey)
		return v, false, err
	}
}

func vector(raw []any, key string) (domain.Vec3, error) {
	if len(raw) != 3 {
		return domain.Vec3{}, fmt.Errorf("%s needs 3 components, got %d", key, len(raw))
	}
	return domain.V(raw[0], raw[1], raw[2]), nil
}

func objects(one string, many []string) []string {
	if one == "" {
		return many
	}
	return append([]string{one}, many...)
}
