// Package com connects to a running simulation host through its COM
// automation server. It is only functional on Windows.
package com

import (
	"errors"

	"github.com/bnema/hfss-client/internal/ports"
)

var (
	ErrUnsupportedPlatform = errors.New("COM automation requires windows")
	ErrUnknownTarget       = errors.New("unknown automation target")
	ErrUnsupportedArgument = errors.New("unsupported argument type")
)

const (
	DefaultProgID = "AnsoftHfss.HfssScriptInterface"
	DefaultEditor = "3D Modeler"
)

type Options struct {
	ProgID string
	Editor string
}

func (o Options) withDefaults() Options {
	if o.ProgID == "" {
		o.ProgID = DefaultProgID
	}
	if o.Editor == "" {
		o.Editor = DefaultEditor
	}
	return o
}

// modules are resolved with design.GetModule at connect time.
var modules = []ports.Target{
	ports.TargetAnalysisSetup,
	ports.TargetSolutions,
	ports.TargetFieldsReporter,
}
