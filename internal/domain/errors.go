package domain

import "errors"

var (
	ErrInvalidAxis     = errors.New("axis must be one of X, Y, Z")
	ErrEmptySelection  = errors.New("selection is empty")
	ErrNoAnalysisSetup = errors.New("design has no analysis setup")
	ErrEmptyName       = errors.New("name is empty")
	ErrEmptyExpression = errors.New("calculator expression is empty")
	ErrModeOutOfRange  = errors.New("eigenmode index out of range")
)
