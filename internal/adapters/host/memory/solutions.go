package memory

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bnema/hfss-client/internal/params"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
)

// Excitation returns the eigenmode magnitudes last written by EditSources.
func (h *Host) Excitation() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]float64(nil), h.active...)
}

func (h *Host) checkSolution(raw any) error {
	solution := cast.ToString(raw)
	for _, setup := range h.setups {
		if solution == setup+h.suffix {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownSolution, solution)
}

// exportEigenmodes writes one line per mode: index, frequency and Q.
func (h *Host) exportEigenmodes(args []any) (any, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("%w: ExportEigenmodes wants solution, variation and path", ErrBadArguments)
	}
	if err := h.checkSolution(args[0]); err != nil {
		return nil, err
	}

	path := cast.ToString(args[2])
	if path == "" {
		return nil, fmt.Errorf("%w: ExportEigenmodes without path", ErrBadArguments)
	}

	var buf bytes.Buffer
	for i, freq := range h.modes {
		fmt.Fprintf(&buf, "%d\t%gGHz\t%d\n", i+1, freq, 10000)
	}

	if err := h.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	if err := afero.WriteFile(h.fs, path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write eigenmode export: %w", err)
	}
	return nil, nil
}

func (h *Host) editSources(args []any) (any, error) {
	if len(args) < 4 || cast.ToString(args[0]) != "TotalFields" {
		return nil, fmt.Errorf("%w: EditSources wants TotalFields and source arrays", ErrBadArguments)
	}

	var magnitudes []float64
	for _, raw := range args[1:] {
		arr, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: EditSources source entry is %T", ErrBadArguments, raw)
		}
		name, _ := params.Name(params.Header(arr))
		if !strings.EqualFold(name, "Magnitudes") {
			continue
		}
		for _, item := range params.Items(arr) {
			m, err := cast.ToFloat64E(item)
			if err != nil {
				return nil, fmt.Errorf("%w: magnitude %v", ErrBadArguments, item)
			}
			magnitudes = append(magnitudes, m)
		}
	}

	if len(magnitudes) != len(h.modes) {
		return nil, fmt.Errorf("%w: %d magnitudes for %d modes", ErrBadArguments, len(magnitudes), len(h.modes))
	}
	h.active = magnitudes
	return nil, nil
}
