//go:build !windows

package com

import (
	"context"

	"github.com/bnema/hfss-client/internal/ports"
)

type Host struct{}

var _ ports.Automation = (*Host)(nil)

func Connect(_ context.Context, _ Options) (*Host, error) {
	return nil, ErrUnsupportedPlatform
}

func (h *Host) Call(_ context.Context, _ ports.Target, _ string, _ ...any) (any, error) {
	return nil, ErrUnsupportedPlatform
}

func (h *Host) Close() error {
	return nil
}
