package memory

import (
	"fmt"

	"github.com/bnema/hfss-client/internal/params"
	"github.com/spf13/cast"
)

func (h *Host) defineVariable(name, value string) {
	if _, ok := h.variables[name]; !ok {
		h.varOrder = append(h.varOrder, name)
	}
	h.variables[name] = value
}

// Variable returns a design variable's expression.
func (h *Host) Variable(name string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	value, ok := h.variables[name]
	return value, ok
}

func (h *Host) getVariables(_ []any) (any, error) {
	out := make([]any, len(h.varOrder))
	for i, name := range h.varOrder {
		out[i] = name
	}
	return out, nil
}

func (h *Host) getVariableValue(args []any) (any, error) {
	raw, err := arg(args, 0, "GetVariableValue")
	if err != nil {
		return nil, err
	}

	name := cast.ToString(raw)
	value, ok := h.variables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	return value, nil
}

func (h *Host) setVariableValue(args []any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%w: SetVariableValue wants name and value", ErrBadArguments)
	}

	name := cast.ToString(args[0])
	if _, ok := h.variables[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	h.variables[name] = cast.ToString(args[1])
	return nil, nil
}

// changeDesignProperty understands the local variable tab: NewProps entries
// create variables and ChangedProps entries update them.
func (h *Host) changeDesignProperty(args []any) (any, error) {
	props, err := arrayArg(args, 0, "ChangeProperty")
	if err != nil {
		return nil, err
	}

	tab, ok := params.Find(props, "LocalVariableTab")
	if !ok {
		return nil, fmt.Errorf("%w: ChangeProperty without LocalVariableTab", ErrBadArguments)
	}

	if created, ok := params.Find(tab, "NewProps"); ok {
		for _, item := range params.Items(created) {
			name, value, err := propEntry(item)
			if err != nil {
				return nil, err
			}
			if _, exists := h.variables[name]; exists {
				return nil, fmt.Errorf("%w: variable %s already exists", ErrBadArguments, name)
			}
			h.defineVariable(name, cast.ToString(value))
		}
	}

	if changed, ok := params.Find(tab, "ChangedProps"); ok {
		for _, item := range params.Items(changed) {
			name, value, err := propEntry(item)
			if err != nil {
				return nil, err
			}
			if _, exists := h.variables[name]; !exists {
				return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, name)
			}
			h.variables[name] = cast.ToString(value)
		}
	}

	return nil, nil
}

// propEntry reads ["NAME:<prop>", ..., "Value:=", v].
func propEntry(item any) (string, any, error) {
	entry, ok := item.([]any)
	if !ok {
		return "", nil, fmt.Errorf("%w: property entry is %T", ErrBadArguments, item)
	}

	name, ok := params.Name(params.Header(entry))
	if !ok || name == "" {
		return "", nil, fmt.Errorf("%w: property entry without name", ErrBadArguments)
	}

	value, ok := params.Lookup(entry, "Value")
	if !ok {
		return "", nil, fmt.Errorf("%w: property %s without value", ErrBadArguments, name)
	}
	return name, value, nil
}
