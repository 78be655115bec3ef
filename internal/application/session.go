package application

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bnema/hfss-client/internal/domain"
	"github.com/bnema/hfss-client/internal/log"
	"github.com/bnema/hfss-client/internal/params"
	"github.com/bnema/hfss-client/internal/ports"
	"github.com/bnema/hfss-client/internal/symbolic"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
)

const DefaultSetupSuffix = " : LastAdaptive"

type Options struct {
	// SetupSuffix is appended to the first analysis setup name to form the
	// solution name used by eigenmode and calculator calls.
	SetupSuffix string
	// ExportDir receives the transient eigenmode export. The host writes it,
	// so it must be visible to both processes.
	ExportDir string
	Fs        afero.Fs
}

// Session is bound to the active design of one host connection. It is not
// safe for concurrent use: the host serialises calls from a connection and
// the design is shared mutable state.
type Session struct {
	host      ports.Automation
	fs        afero.Fs
	exportDir string
	setup     string
	newID     func() string
}

// NewSession attaches to the active design and resolves the default solution
// name. A design without analysis setups still attaches; calls that need a
// solution then fail with domain.ErrNoAnalysisSetup.
func NewSession(ctx context.Context, host ports.Automation, opts Options) (*Session, error) {
	if opts.SetupSuffix == "" {
		opts.SetupSuffix = DefaultSetupSuffix
	}
	if opts.ExportDir == "" {
		opts.ExportDir = os.TempDir()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	raw, err := host.Call(ctx, ports.TargetAnalysisSetup, "GetSetups")
	if err != nil {
		return nil, fmt.Errorf("list analysis setups: %w", err)
	}

	setups, err := toStrings(raw)
	if err != nil {
		return nil, fmt.Errorf("decode analysis setups: %w", err)
	}

	s := &Session{
		host:      host,
		fs:        opts.Fs,
		exportDir: opts.ExportDir,
		newID:     uuid.NewString,
	}
	if len(setups) > 0 {
		s.setup = setups[0] + opts.SetupSuffix
		log.Debug(log.CatSession, "attached", "setup", s.setup)
	} else {
		log.Warn(log.CatSession, "attached to design without analysis setup")
	}

	return s, nil
}

// Setup returns the default solution name, empty when the design has no setup.
func (s *Session) Setup() string {
	return s.setup
}

func (s *Session) Close() error {
	return s.host.Close()
}

func (s *Session) requireSetup() error {
	if s.setup == "" {
		return domain.ErrNoAnalysisSetup
	}
	return nil
}

// SetVariable creates name on first use and updates it afterwards.
func (s *Session) SetVariable(ctx context.Context, name string, value domain.Expr) error {
	if name == "" {
		return domain.ErrEmptyName
	}

	names, err := s.Variables(ctx)
	if err != nil {
		return err
	}

	if !slices.Contains(names, name) {
		return s.CreateVariable(ctx, name, value)
	}

	if _, err := s.host.Call(ctx, ports.TargetDesign, "SetVariableValue", name, string(value)); err != nil {
		return fmt.Errorf("set variable %s: %w", name, err)
	}
	return nil
}

// CreateVariable adds a local design variable without checking whether it
// exists.
func (s *Session) CreateVariable(ctx context.Context, name string, value domain.Expr) error {
	if name == "" {
		return domain.ErrEmptyName
	}

	props := params.Named("AllTabs").Append(
		params.Named("LocalVariableTab").Append(
			params.Named("PropServers").Append("LocalVariables"),
			params.New("Name:NewProps").Append(
				params.Named(name).
					With("PropType", "VariableProp").
					With("UserDef", true).
					With("Value", value),
			),
		),
	)

	if _, err := s.host.Call(ctx, ports.TargetDesign, "ChangeProperty", props.Values()); err != nil {
		return fmt.Errorf("create variable %s: %w", name, err)
	}
	return nil
}

// GetVariable always asks the host.
func (s *Session) GetVariable(ctx context.Context, name string) (domain.Expr, error) {
	raw, err := s.host.Call(ctx, ports.TargetDesign, "GetVariableValue", name)
	if err != nil {
		return "", fmt.Errorf("get variable %s: %w", name, err)
	}

	value, err := cast.ToStringE(raw)
	if err != nil {
		return "", fmt.Errorf("decode variable %s: %w", name, err)
	}
	return domain.Expr(value), nil
}

func (s *Session) Variables(ctx context.Context) ([]string, error) {
	raw, err := s.host.Call(ctx, ports.TargetDesign, "GetVariables")
	if err != nil {
		return nil, fmt.Errorf("list variables: %w", err)
	}

	names, err := toStrings(raw)
	if err != nil {
		return nil, fmt.Errorf("decode variables: %w", err)
	}
	return names, nil
}

func (s *Session) DrawBoxCorner(ctx context.Context, pos, size domain.Vec3, attrs domain.Attributes) (string, error) {
	box := params.Named("BoxParameters").
		With("XPosition", pos[0]).
		With("YPosition", pos[1]).
		With("ZPosition", pos[2]).
		With("XSize", size[0]).
		With("YSize", size[1]).
		With("ZSize", size[2])

	return s.create(ctx, "CreateBox", box, attrs)
}

// DrawBoxCenter draws a box centred on pos. Each corner coordinate is the
// simplified host expression pos - size/2.
func (s *Session) DrawBoxCenter(ctx context.Context, pos, size domain.Vec3, attrs domain.Attributes) (string, error) {
	var corner domain.Vec3
	for i := range pos {
		c, err := symbolic.HalfOffset(pos[i], size[i])
		if err != nil {
			return "", fmt.Errorf("derive box corner: %w", err)
		}
		corner[i] = c
	}

	return s.DrawBoxCorner(ctx, corner, size, attrs)
}

// DrawCylinder draws a cylinder whose base circle is centred on pos.
func (s *Session) DrawCylinder(ctx context.Context, pos domain.Vec3, radius, height domain.Expr, axis domain.Axis, attrs domain.Attributes) (string, error) {
	if err := axis.Validate(); err != nil {
		return "", err
	}

	cyl := params.Named("CylinderParameters").
		With("XCenter", pos[0]).
		With("YCenter", pos[1]).
		With("ZCenter", pos[2]).
		With("Radius", radius).
		With("Height", height).
		With("WhichAxis", axis).
		With("NumSides", 0)

	return s.create(ctx, "CreateCylinder", cyl, attrs)
}

// DrawCylinderCenter draws a cylinder centred on pos. Only the coordinate
// along axis moves, by height/2.
func (s *Session) DrawCylinderCenter(ctx context.Context, pos domain.Vec3, radius, height domain.Expr, axis domain.Axis, attrs domain.Attributes) (string, error) {
	idx, ok := axis.Index()
	if !ok {
		return "", axis.Validate()
	}

	base := pos
	edge, err := symbolic.HalfOffset(pos[idx], height)
	if err != nil {
		return "", fmt.Errorf("derive cylinder base: %w", err)
	}
	base[idx] = edge

	return s.DrawCylinder(ctx, base, radius, height, axis, attrs)
}

func (s *Session) create(ctx context.Context, method string, shape params.Array, attrs domain.Attributes) (string, error) {
	raw, err := s.host.Call(ctx, ports.TargetEditor, method, shape.Values(), attributes(attrs).Values())
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(method), err)
	}

	name, err := cast.ToStringE(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s result: %w", method, err)
	}

	log.Debug(log.CatSession, "created object", "method", method, "name", name)
	return name, nil
}

func attributes(a domain.Attributes) params.Array {
	arr := params.Named("Attributes")
	if a.Name != "" {
		arr = arr.With("Name", a.Name)
	}
	if a.NonModel {
		arr = arr.With("Flags", "NonModel")
	}
	if a.Color != "" {
		arr = arr.With("Color", a.Color)
	}
	if a.Transparency != nil {
		arr = arr.With("Transparency", *a.Transparency)
	}
	if a.Material != "" {
		arr = arr.With("MaterialName", a.Material)
	}
	return arr
}

func selections(names ...string) params.Array {
	return params.Named("Selections").With("Selections", strings.Join(names, ","))
}

// Unite merges names into names[0], which is the name returned.
func (s *Session) Unite(ctx context.Context, names []string, keepOriginals bool) (string, error) {
	return s.boolean(ctx, "Unite", "UniteParameters", names, keepOriginals)
}

// Intersect replaces names[0] with the intersection of names.
func (s *Session) Intersect(ctx context.Context, names []string, keepOriginals bool) (string, error) {
	return s.boolean(ctx, "Intersect", "IntersectParameters", names, keepOriginals)
}

func (s *Session) boolean(ctx context.Context, method, paramsName string, names []string, keepOriginals bool) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("%s: %w", strings.ToLower(method), domain.ErrEmptySelection)
	}

	opts := params.Named(paramsName).With("KeepOriginals", keepOriginals)
	if _, err := s.host.Call(ctx, ports.TargetEditor, method, selections(names...).Values(), opts.Values()); err != nil {
		return "", fmt.Errorf("%s %s: %w", strings.ToLower(method), strings.Join(names, ","), err)
	}

	return names[0], nil
}

func (s *Session) Translate(ctx context.Context, name string, vector domain.Vec3) error {
	move := params.Named("TranslateParameters").
		With("TranslateVectorX", vector[0]).
		With("TranslateVectorY", vector[1]).
		With("TranslateVectorZ", vector[2])

	if _, err := s.host.Call(ctx, ports.TargetEditor, "Move", selections(name).Values(), move.Values()); err != nil {
		return fmt.Errorf("move %s: %w", name, err)
	}
	return nil
}

// SetObjectProperty changes one attribute sheet entry such as Material,
// Color, Transparent or Model.
func (s *Session) SetObjectProperty(ctx context.Context, obj, prop string, value any) error {
	props := params.Named("AllTabs").Append(
		params.Named("Geometry3DAttributeTab").Append(
			params.Named("PropServers").Append(obj),
			params.New("Name:ChangedProps").Append(
				params.Named(prop).With("Value", value),
			),
		),
	)

	if _, err := s.host.Call(ctx, ports.TargetEditor, "ChangeProperty", props.Values()); err != nil {
		return fmt.Errorf("set %s.%s: %w", obj, prop, err)
	}
	return nil
}

// NModes counts the eigenmodes of the default solution. The host has no
// direct query, so it exports them to a transient file, one mode per line.
func (s *Session) NModes(ctx context.Context) (int, error) {
	if err := s.requireSetup(); err != nil {
		return 0, err
	}

	path := filepath.Join(s.exportDir, "eigenmodes-"+s.newID()+".txt")
	if _, err := s.host.Call(ctx, ports.TargetSolutions, "ExportEigenmodes", s.setup, "", path); err != nil {
		return 0, fmt.Errorf("export eigenmodes: %w", err)
	}

	count, err := countLines(s.fs, path)
	if removeErr := s.fs.Remove(path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		err = errors.Join(err, fmt.Errorf("remove eigenmode export: %w", removeErr))
	}
	if err != nil {
		return 0, err
	}

	log.Debug(log.CatSession, "counted eigenmodes", "setup", s.setup, "modes", count)
	return count, nil
}

func countLines(fs afero.Fs, path string) (int, error) {
	file, err := fs.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open eigenmode export: %w", err)
	}
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read eigenmode export: %w", err)
	}
	return count, nil
}

// SetMode excites eigenmode n (1-based) alone with the given phase in
// degrees. The host takes the whole excitation vector, so every other mode is
// written with magnitude 0.
func (s *Session) SetMode(ctx context.Context, n int, phase float64) error {
	count, err := s.NModes(ctx)
	if err != nil {
		return err
	}
	if n < 1 || n > count {
		return fmt.Errorf("%w: mode %d of %d", domain.ErrModeOutOfRange, n, count)
	}

	magnitudes := params.Named("Magnitudes")
	phases := params.Named("Phases")
	for i := 1; i <= count; i++ {
		if i == n {
			magnitudes = magnitudes.Append(1)
			phases = phases.Append(phase)
			continue
		}
		magnitudes = magnitudes.Append(0)
		phases = phases.Append(0.0)
	}

	_, err = s.host.Call(ctx, ports.TargetSolutions, "EditSources",
		"TotalFields",
		params.Named("SourceNames").Append("EigenMode").Values(),
		params.Named("Modes").Append(count).Values(),
		magnitudes.Values(),
		phases.Values(),
		params.Named("Terminated").Values(),
		params.Named("Impedances").Values(),
	)
	if err != nil {
		return fmt.Errorf("edit eigenmode sources: %w", err)
	}
	return nil
}

func toStrings(raw any) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	return cast.ToStringSliceE(raw)
}
