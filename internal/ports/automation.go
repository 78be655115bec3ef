package ports

import "context"

// Target names an automation object reachable from the active design.
type Target string

const (
	TargetDesign         Target = "Design"
	TargetEditor         Target = "3D Modeler"
	TargetAnalysisSetup  Target = "AnalysisSetup"
	TargetSolutions      Target = "Solutions"
	TargetFieldsReporter Target = "FieldsReporter"
)

// Automation is one live connection to a running host application. Arguments
// are strings, bools, ints, float64s and nested []any arrays; results are nil,
// a scalar, or []any.
type Automation interface {
	Call(ctx context.Context, target Target, method string, args ...any) (any, error)
	Close() error
}

// CallRecord is one automation call as seen by a recording host.
type CallRecord struct {
	Target Target
	Method string
	Args   []any
	Err    error
}
