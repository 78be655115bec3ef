package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bnema/hfss-client/internal/adapters/host/memory"
	"github.com/bnema/hfss-client/internal/domain"
	"github.com/bnema/hfss-client/internal/ports"
	"github.com/bnema/hfss-client/internal/ports/mocks"
	"github.com/bnema/hfss-client/internal/symbolic"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mockAnyContext() interface{} {
	return mock.Anything
}

func newMockSession(t *testing.T, setups ...any) (*Session, *mocks.MockAutomation) {
	t.Helper()

	host := mocks.NewMockAutomation(t)
	host.EXPECT().Call(mockAnyContext(), ports.TargetAnalysisSetup, "GetSetups").Return(setups, nil).Once()

	s, err := NewSession(context.Background(), host, Options{ExportDir: "/exports", Fs: afero.NewMemMapFs()})
	require.NoError(t, err)
	s.newID = func() string { return "fixed" }
	return s, host
}

func newMemorySession(t *testing.T, opts ...memory.Option) (*Session, *memory.Host) {
	t.Helper()

	fs := afero.NewMemMapFs()
	host := memory.New(append([]memory.Option{memory.WithFs(fs)}, opts...)...)
	s, err := NewSession(context.Background(), host, Options{ExportDir: "/exports", Fs: fs})
	require.NoError(t, err)
	return s, host
}

func TestNewSessionResolvesDefaultSolution(t *testing.T) {
	s, _ := newMockSession(t, "Setup1", "Setup2")

	assert.Equal(t, "Setup1 : LastAdaptive", s.Setup())
}

func TestNewSessionWithoutSetupAttachesButCannotCountModes(t *testing.T) {
	s, _ := newMockSession(t)

	assert.Empty(t, s.Setup())
	_, err := s.NModes(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoAnalysisSetup)
}

func TestNewSessionPropagatesHostError(t *testing.T) {
	hostErr := errors.New("RPC server is unavailable")
	host := mocks.NewMockAutomation(t)
	host.EXPECT().Call(mockAnyContext(), ports.TargetAnalysisSetup, "GetSetups").Return(nil, hostErr)

	_, err := NewSession(context.Background(), host, Options{})
	assert.ErrorIs(t, err, hostErr)
}

func TestSetVariableCreatesOnceThenSets(t *testing.T) {
	s, host := newMockSession(t, "Setup1")
	ctx := context.Background()

	created := []any{"NAME:AllTabs", []any{"NAME:LocalVariableTab",
		[]any{"NAME:PropServers", "LocalVariables"},
		[]any{"Name:NewProps", []any{"NAME:bx", "PropType:=", "VariableProp", "UserDef:=", true, "Value:=", "10mm"}},
	}}

	host.EXPECT().Call(mockAnyContext(), ports.TargetDesign, "GetVariables").Return([]any{"by"}, nil).Once()
	host.EXPECT().Call(mockAnyContext(), ports.TargetDesign, "ChangeProperty", created).Return(nil, nil).Once()
	require.NoError(t, s.SetVariable(ctx, "bx", "10mm"))

	host.EXPECT().Call(mockAnyContext(), ports.TargetDesign, "GetVariables").Return([]any{"by", "bx"}, nil).Once()
	host.EXPECT().Call(mockAnyContext(), ports.TargetDesign, "SetVariableValue", "bx", "12mm").Return(nil, nil).Once()
	require.NoError(t, s.SetVariable(ctx, "bx", "12mm"))
}

func TestSetVariableAgainstMemoryHost(t *testing.T) {
	s, host := newMemorySession(t)
	ctx := context.Background()

	require.NoError(t, s.SetVariable(ctx, "bx", "10mm"))
	require.NoError(t, s.SetVariable(ctx, "bx", "11mm"))

	value, err := s.GetVariable(ctx, "bx")
	require.NoError(t, err)
	assert.Equal(t, domain.Expr("11mm"), value)

	names, err := s.Variables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bx"}, names)

	var creates int
	for _, c := range host.Calls() {
		if c.Target == ports.TargetDesign && c.Method == "ChangeProperty" {
			creates++
		}
	}
	assert.Equal(t, 1, creates)
}

func TestSetVariableRejectsEmptyName(t *testing.T) {
	s, _ := newMockSession(t, "Setup1")

	assert.ErrorIs(t, s.SetVariable(context.Background(), "", "1mm"), domain.ErrEmptyName)
}

func TestDrawBoxCornerSendsParametersAndAttributes(t *testing.T) {
	s, host := newMockSession(t, "Setup1")

	shape := []any{"NAME:BoxParameters",
		"XPosition:=", "-tx/2", "YPosition:=", "-ty/2", "ZPosition:=", "-tz/2",
		"XSize:=", "tx", "YSize:=", "ty", "ZSize:=", "cz"}
	attrs := []any{"NAME:Attributes",
		"Name:=", "Chip", "Flags:=", "NonModel", "Color:=", "(255 0 0)", "Transparency:=", 0.5, "MaterialName:=", "sapphire"}
	host.EXPECT().Call(mockAnyContext(), ports.TargetEditor, "CreateBox", shape, attrs).Return("Chip", nil)

	name, err := s.DrawBoxCorner(context.Background(),
		domain.V("-tx/2", "-ty/2", "-tz/2"), domain.V("tx", "ty", "cz"),
		domain.Attributes{Name: "Chip", NonModel: true, Color: "(255 0 0)", Transparency: domain.Transparency(0.5), Material: "sapphire"})
	require.NoError(t, err)
	assert.Equal(t, "Chip", name)
}

func TestDrawBoxCenterSimplifiesCorner(t *testing.T) {
	s, host := newMockSession(t, "Setup1")

	shape := []any{"NAME:BoxParameters",
		"XPosition:=", "-bx/2", "YPosition:=", "-by/2", "ZPosition:=", "-bz/2",
		"XSize:=", "bx", "YSize:=", "by", "ZSize:=", "bz"}
	host.EXPECT().Call(mockAnyContext(), ports.TargetEditor, "CreateBox", shape, []any{"NAME:Attributes", "Name:=", "Cavity1"}).Return("Cavity1", nil)

	name, err := s.DrawBoxCenter(context.Background(), domain.V(0, 0, 0), domain.V("bx", "by", "bz"), domain.Attributes{Name: "Cavity1"})
	require.NoError(t, err)
	assert.Equal(t, "Cavity1", name)
}

func TestDrawBoxCenterRejectsBadExpressionBeforeHost(t *testing.T) {
	s, _ := newMockSession(t, "Setup1")

	_, err := s.DrawBoxCenter(context.Background(), domain.V("bx +", 0, 0), domain.V("1", "1", "1"), domain.Attributes{})
	assert.ErrorIs(t, err, symbolic.ErrSyntax)
}

func TestDrawCylinderCenterShiftsOnlyAxisCoordinate(t *testing.T) {
	s, host := newMockSession(t, "Setup1")

	shape := []any{"NAME:CylinderParameters",
		"XCenter:=", "0", "YCenter:=", "by/2", "ZCenter:=", "-bz/2",
		"Radius:=", "bx/2", "Height:=", "bz", "WhichAxis:=", "Z", "NumSides:=", 0}
	host.EXPECT().Call(mockAnyContext(), ports.TargetEditor, "CreateCylinder", shape, []any{"NAME:Attributes"}).Return("Cylinder1", nil)

	name, err := s.DrawCylinderCenter(context.Background(), domain.V(0, "by/2", 0), "bx/2", "bz", domain.AxisZ, domain.Attributes{})
	require.NoError(t, err)
	assert.Equal(t, "Cylinder1", name)
}

func TestDrawCylinderRejectsInvalidAxisBeforeHost(t *testing.T) {
	s, _ := newMockSession(t, "Setup1")
	ctx := context.Background()

	_, err := s.DrawCylinder(ctx, domain.V(0, 0, 0), "1", "1", "W", domain.Attributes{})
	assert.ErrorIs(t, err, domain.ErrInvalidAxis)

	_, err = s.DrawCylinderCenter(ctx, domain.V(0, 0, 0), "1", "1", "", domain.Attributes{})
	assert.ErrorIs(t, err, domain.ErrInvalidAxis)
}

func TestUniteAndIntersectSendSelectionsAndReturnFirstName(t *testing.T) {
	s, host := newMockSession(t, "Setup1")
	ctx := context.Background()

	host.EXPECT().Call(mockAnyContext(), ports.TargetEditor, "Unite",
		[]any{"NAME:Selections", "Selections:=", "Cavity1,Cylinder1,Cylinder2"},
		[]any{"NAME:UniteParameters", "KeepOriginals:=", false}).Return(nil, nil)
	host.EXPECT().Call(mockAnyContext(), ports.TargetEditor, "Intersect",
		[]any{"NAME:Selections", "Selections:=", "A,B"},
		[]any{"NAME:IntersectParameters", "KeepOriginals:=", true}).Return(nil, nil)

	name, err := s.Unite(ctx, []string{"Cavity1", "Cylinder1", "Cylinder2"}, false)
	require.NoError(t, err)
	assert.Equal(t, "Cavity1", name)

	name, err = s.Intersect(ctx, []string{"A", "B"}, true)
	require.NoError(t, err)
	assert.Equal(t, "A", name)
}

func TestBooleanOpsRejectEmptySelection(t *testing.T) {
	s, _ := newMockSession(t, "Setup1")
	ctx := context.Background()

	_, err := s.Unite(ctx, nil, false)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
	_, err = s.Intersect(ctx, []string{}, false)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}

func TestHostErrorsPropagateUnchanged(t *testing.T) {
	s, host := newMockSession(t, "Setup1")
	hostErr := errors.New("object Ghost not found")
	host.EXPECT().Call(mockAnyContext(), ports.TargetEditor, "Move", mock.Anything, mock.Anything).Return(nil, hostErr)

	err := s.Translate(context.Background(), "Ghost", domain.V(1, 0, 0))
	assert.ErrorIs(t, err, hostErr)
}

func TestTranslateAndSetObjectProperty(t *testing.T) {
	s, host := newMockSession(t, "Setup1")
	ctx := context.Background()

	host.EXPECT().Call(mockAnyContext(), ports.TargetEditor, "Move",
		[]any{"NAME:Selections", "Selections:=", "Cavity1"},
		[]any{"NAME:TranslateParameters", "TranslateVectorX:=", "(tx+bx)/2", "TranslateVectorY:=", "0", "TranslateVectorZ:=", "0"}).Return(nil, nil)
	host.EXPECT().Call(mockAnyContext(), ports.TargetEditor, "ChangeProperty",
		[]any{"NAME:AllTabs", []any{"NAME:Geometry3DAttributeTab",
			[]any{"NAME:PropServers", "Cavity1"},
			[]any{"Name:ChangedProps", []any{"NAME:Transparent", "Value:=", 0.9}},
		}}).Return(nil, nil)

	require.NoError(t, s.Translate(ctx, "Cavity1", domain.V("(tx+bx)/2", 0, 0)))
	require.NoError(t, s.SetObjectProperty(ctx, "Cavity1", "Transparent", 0.9))
}

func TestNModesCountsExportedLinesAndRemovesFile(t *testing.T) {
	s, host := newMemorySession(t, memory.WithEigenmodes(4.1, 5.2, 6.3))

	n, err := s.NModes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := afero.ReadDir(host.Fs(), "/exports")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNModesReportsMissingExport(t *testing.T) {
	s, host := newMockSession(t, "Setup1")
	host.EXPECT().Call(mockAnyContext(), ports.TargetSolutions, "ExportEigenmodes",
		"Setup1 : LastAdaptive", "", "/exports/eigenmodes-fixed.txt").Return(nil, nil)

	_, err := s.NModes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open eigenmode export")
}

func TestSetModeWritesFullExcitationVector(t *testing.T) {
	s, host := newMockSession(t, "Setup1")
	ctx := context.Background()

	host.EXPECT().Call(mockAnyContext(), ports.TargetSolutions, "ExportEigenmodes",
		"Setup1 : LastAdaptive", "", "/exports/eigenmodes-fixed.txt").
		Run(func(_ context.Context, _ ports.Target, _ string, args ...any) {
			require.NoError(t, afero.WriteFile(s.fs, args[2].(string), []byte("1 4GHz\n2 5GHz\n3 6GHz\n"), 0o644))
		}).Return(nil, nil)
	host.EXPECT().Call(mockAnyContext(), ports.TargetSolutions, "EditSources",
		"TotalFields",
		[]any{"NAME:SourceNames", "EigenMode"},
		[]any{"NAME:Modes", 3},
		[]any{"NAME:Magnitudes", 0, 1, 0},
		[]any{"NAME:Phases", 0.0, 90.0, 0.0},
		[]any{"NAME:Terminated"},
		[]any{"NAME:Impedances"},
	).Return(nil, nil)

	require.NoError(t, s.SetMode(ctx, 2, 90))
}

func TestSetModeRejectsModeOutsideSolution(t *testing.T) {
	s, _ := newMemorySession(t, memory.WithEigenmodes(4.1, 5.2))

	err := s.SetMode(context.Background(), 3, 0)
	assert.ErrorIs(t, err, domain.ErrModeOutOfRange)
}

func TestCylindersAndBoxUniteIntoBox(t *testing.T) {
	s, host := newMemorySession(t)
	ctx := context.Background()

	box, err := s.DrawBoxCenter(ctx, domain.V(0, 0, 0), domain.V("bx", "by", "bz"), domain.Attributes{Name: "Cavity1"})
	require.NoError(t, err)
	cyl1, err := s.DrawCylinderCenter(ctx, domain.V(0, "by/2", 0), "bx/2", "bz", domain.AxisZ, domain.Attributes{})
	require.NoError(t, err)
	cyl2, err := s.DrawCylinderCenter(ctx, domain.V(0, "-by/2", 0), "bx/2", "bz", domain.AxisZ, domain.Attributes{})
	require.NoError(t, err)

	got, err := s.Unite(ctx, []string{box, cyl1, cyl2}, false)
	require.NoError(t, err)
	assert.Equal(t, "Cavity1", got)
	assert.Equal(t, []string{"Cavity1"}, host.Objects())

	obj, ok := host.Object("Cavity1")
	require.True(t, ok)
	assert.Equal(t, "-bz/2", obj.Props["ZPosition"])
}

func TestUniteReturnsFirstNameProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s, host := newMemorySession(t)
		ctx := context.Background()

		n := rapid.IntRange(1, 6).Draw(rt, "n")
		names := make([]string, n)
		for i := range names {
			name, err := s.DrawBoxCorner(ctx, domain.V(i, 0, 0), domain.V(1, 1, 1), domain.Attributes{})
			if err != nil {
				rt.Fatalf("draw box: %v", err)
			}
			names[i] = name
		}
		keep := rapid.Bool().Draw(rt, "keep")
		intersect := rapid.Bool().Draw(rt, "intersect")

		op := s.Unite
		if intersect {
			op = s.Intersect
		}
		got, err := op(ctx, names, keep)
		if err != nil {
			rt.Fatalf("boolean op: %v", err)
		}
		if got != names[0] {
			rt.Fatalf("got %q, want %q", got, names[0])
		}
		if want := map[bool]int{true: n, false: 1}[keep]; len(host.Objects()) != want {
			rt.Fatalf("got %d objects, want %d", len(host.Objects()), want)
		}
	})
}

func TestDrawCenterProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s, host := newMemorySession(t)
		ctx := context.Background()

		var pos, size domain.Vec3
		for i := range pos {
			pos[i] = domain.Lit(float64(rapid.IntRange(-500, 500).Draw(rt, fmt.Sprintf("pos%d", i))))
			size[i] = domain.Lit(float64(rapid.IntRange(1, 500).Draw(rt, fmt.Sprintf("size%d", i))))
		}
		axis := rapid.SampledFrom([]domain.Axis{domain.AxisX, domain.AxisY, domain.AxisZ}).Draw(rt, "axis")

		boxName, err := s.DrawBoxCenter(ctx, pos, size, domain.Attributes{})
		if err != nil {
			rt.Fatalf("draw box: %v", err)
		}
		cylName, err := s.DrawCylinderCenter(ctx, pos, "1", size[0], axis, domain.Attributes{})
		if err != nil {
			rt.Fatalf("draw cylinder: %v", err)
		}

		boxObj, _ := host.Object(boxName)
		for i, key := range []string{"XPosition", "YPosition", "ZPosition"} {
			want, err := symbolic.HalfOffset(pos[i], size[i])
			if err != nil {
				rt.Fatalf("half offset: %v", err)
			}
			if boxObj.Props[key] != string(want) {
				rt.Fatalf("%s = %v, want %s", key, boxObj.Props[key], want)
			}
		}

		cylObj, _ := host.Object(cylName)
		idx, _ := axis.Index()
		for i, key := range []string{"XCenter", "YCenter", "ZCenter"} {
			want := pos[i]
			if i == idx {
				want, _ = symbolic.HalfOffset(pos[i], size[0])
			}
			if cylObj.Props[key] != string(want) {
				rt.Fatalf("%s = %v, want %s", key, cylObj.Props[key], want)
			}
		}
	})
}
