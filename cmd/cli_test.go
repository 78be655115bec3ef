package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/bnema/hfss-client/internal/config"
	"github.com/bnema/hfss-client/internal/domain"
	"github.com/bnema/hfss-client/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestConfigInitWritesDefaultsOnce(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "config", "init")
	require.NoError(t, err)
	path := filepath.Join(home, ".hfss", "config.toml")
	assert.Contains(t, stdout, path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "prog_id = 'AnsoftHfss.HfssScriptInterface'")

	_, _, err = executeCLI(t, home, "config", "init")
	require.ErrorIs(t, err, config.ErrConfigExists)

	_, _, err = executeCLI(t, home, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigShowAppliesFileAndFlags(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, ".hfss")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[solution]\nsetup_suffix = ' : Adaptive_1'\n"), 0o600))

	stdout, _, err := executeCLI(t, home, "--log-level", "error", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "setup_suffix = ' : Adaptive_1'")
	assert.Contains(t, stdout, "level = 'error'")
}

func TestConfigShowRejectsBadLogLevel(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "--log-level", "loud", "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init logger")
}

func TestDryRunDrawBoxCenterPrintsNameAndTranscript(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "--dry-run",
		"draw", "box",
		"--center",
		"--pos", "0,0,0",
		"--size", "bx,by,bz",
		"--name", "Cavity1",
		"--transparency", "0.5",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cavity1\n")
	assert.Contains(t, stdout, "AnalysisSetup.GetSetups()")
	assert.Contains(t, stdout, `3D Modeler.CreateBox(["NAME:BoxParameters", "XPosition:=", "-bx/2"`)
	assert.Contains(t, stdout, `"Transparency:=", 0.5`)
	assert.Contains(t, stdout, "failed: 0")
}

func TestDryRunDrawCylinderRejectsBadAxis(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "--dry-run",
		"draw", "cylinder", "--pos", "0,0,0", "--radius", "r", "--height", "h", "--axis", "W",
	)
	require.ErrorIs(t, err, domain.ErrInvalidAxis)
}

func TestDrawBoxRequiresThreeComponents(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "--dry-run", "draw", "box", "--pos", "0,0", "--size", "1,1,1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--pos needs 3 comma separated expressions, got 2")
}

func TestDryRunDrawBoxKeepsCommasInsideCalls(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "--dry-run",
		"draw", "box", "--pos", "max(a, b),0,min(c,d)", "--size", "1,1,1",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"XPosition:=", "max(a, b)", "YPosition:=", "0", "ZPosition:=", "min(c,d)"`)
}

func TestParseVecSplitsTopLevelCommas(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.Vec3
		n    int
	}{
		{raw: "0,0,0", want: domain.V("0", "0", "0")},
		{raw: " a , b/2 , c ", want: domain.V("a", "b/2", "c")},
		{raw: "max(a,b),(x+y)*2,if(p,q,r)", want: domain.V("max(a,b)", "(x+y)*2", "if(p,q,r)")},
		{raw: "max(a,b),1", n: 2},
		{raw: "", n: 1},
	}

	for _, tt := range tests {
		got, err := parseVec("pos", tt.raw)
		if tt.n != 0 {
			require.Error(t, err, tt.raw)
			assert.Contains(t, err.Error(), "got "+strconv.Itoa(tt.n))
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestDryRunVarSetCreatesVariable(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "--dry-run", "var", "set", "bx", "10mm")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Design.GetVariables()")
	assert.Contains(t, stdout, `"NAME:bx", "PropType:=", "VariableProp"`)
}

func TestDryRunUniteUnknownObjectFailsAndShowsTranscript(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "--dry-run", "unite", "Ghost", "Box1")
	require.Error(t, err)
	assert.Contains(t, stdout, "failed: 1")
	assert.Contains(t, stdout, "3D Modeler.Unite(")
}

func TestDryRunModes(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "--dry-run", "modes", "count")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2\n")

	_, _, err = executeCLI(t, t.TempDir(), "--dry-run", "modes", "set", "3")
	require.ErrorIs(t, err, domain.ErrModeOutOfRange)

	stdout, _, err = executeCLI(t, t.TempDir(), "--dry-run", "modes", "set", "2", "--phase", "90")
	require.NoError(t, err)
	assert.Contains(t, stdout, `Solutions.EditSources("TotalFields"`)
}

func TestDryRunCalcEval(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "--dry-run", "calc", "eval", "Mag_E 2 pow vol 3 *")
	require.NoError(t, err)
	assert.Contains(t, stdout, "3\n")
	assert.Contains(t, stdout, `FieldsReporter.ClcEval("Setup1 : LastAdaptive", ["Phase:=", "0deg"])`)
}

func TestCalcShowNeedsNoHost(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "calc", "show", "a 5 +")
	require.NoError(t, err)
	assert.Equal(t, "CopyNamedExprToStack(\"a\")\nEnterScalar(5)\nCalcOp(\"+\")\n", stdout)
}

func TestDryRunRunScript(t *testing.T) {
	script := filepath.Join("..", "internal", "adapters", "script", "yaml", "testdata", "cavity.yaml")

	stdout, _, err := executeCLI(t, t.TempDir(), "--dry-run", "run", script)
	require.NoError(t, err)
	assert.Contains(t, stdout, "$cav Cavity1")
	assert.Contains(t, stdout, "$chip Chip")
	assert.Contains(t, stdout, "saved E2chip")
	assert.Contains(t, stdout, "chip_energy = 0.5")
	assert.Contains(t, stdout, "failed: 0")
}

func TestDryRunTracePrintsSpans(t *testing.T) {
	_, stderr, err := executeCLI(t, t.TempDir(), "--dry-run", "--trace", "var", "list")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Design.GetVariables")
	assert.Contains(t, stderr, "hfss.target")
}

func TestLiveHostUnavailableOffWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("would attach to a real host")
	}

	_, _, err := executeCLI(t, t.TempDir(), "var", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to host")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
