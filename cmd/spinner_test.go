package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithSpinnerReturnsWorkResult(t *testing.T) {
	var out bytes.Buffer
	ran := false

	err := runWithSpinner(context.Background(), &out, "Connecting...", func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRunWithSpinnerPropagatesWorkError(t *testing.T) {
	boom := errors.New("boom")

	err := runWithSpinner(context.Background(), &bytes.Buffer{}, "Connecting...", func() error {
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestSpinnerModelClearsWhenDone(t *testing.T) {
	m := newSpinnerModel("Connecting...")
	assert.Contains(t, m.View(), "Connecting...")

	next, cmd := m.Update(spinnerDoneMsg{})
	require.NotNil(t, cmd)
	assert.Empty(t, next.View())
}

func TestRunWithSpinnerKeepsWorkResultWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := runWithSpinner(ctx, &bytes.Buffer{}, "Connecting...", func() error {
		cancel()
		return nil
	})
	require.NoError(t, err)
}
