package memory

import (
	"fmt"
	"strings"

	"github.com/bnema/hfss-client/internal/params"
	"github.com/spf13/cast"
)

// Object is a geometry entity of the simulated design.
type Object struct {
	Name  string
	Kind  string
	Props map[string]any
	Moves [][3]string
}

// Objects lists live object names in creation order.
func (h *Host) Objects() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string(nil), h.objOrder...)
}

// Object returns a copy of the named object.
func (h *Host) Object(name string) (Object, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	obj, ok := h.objects[name]
	if !ok {
		return Object{}, false
	}

	out := Object{Name: obj.Name, Kind: obj.Kind, Props: map[string]any{}, Moves: append([][3]string(nil), obj.Moves...)}
	for k, v := range obj.Props {
		out.Props[k] = v
	}
	return out, true
}

func (h *Host) createBox(args []any) (any, error) {
	return h.create("Box", "BoxParameters", args)
}

func (h *Host) createCylinder(args []any) (any, error) {
	return h.create("Cylinder", "CylinderParameters", args)
}

func (h *Host) create(kind, header string, args []any) (any, error) {
	shape, err := arrayArg(args, 0, "Create"+kind)
	if err != nil {
		return nil, err
	}
	if name, _ := params.Name(params.Header(shape)); name != header {
		return nil, fmt.Errorf("%w: Create%s wants %s, got %q", ErrBadArguments, kind, header, params.Header(shape))
	}

	attrs, err := arrayArg(args, 1, "Create"+kind)
	if err != nil {
		return nil, err
	}

	props := map[string]any{}
	for _, arr := range [][]any{shape, attrs} {
		items := params.Items(arr)
		for i := 0; i+1 < len(items); i += 2 {
			key, ok := items[i].(string)
			if !ok || !strings.HasSuffix(key, ":=") {
				return nil, fmt.Errorf("%w: Create%s has malformed entry %v", ErrBadArguments, kind, items[i])
			}
			props[strings.TrimSuffix(key, ":=")] = items[i+1]
		}
	}

	name := h.uniqueName(kind, cast.ToString(props["Name"]))
	props["Name"] = name
	h.objects[name] = &Object{Name: name, Kind: kind, Props: props}
	h.objOrder = append(h.objOrder, name)
	return name, nil
}

// uniqueName returns requested when it is free, the requested name with a
// numeric suffix when taken, and kind plus a counter when nothing was asked
// for.
func (h *Host) uniqueName(kind, requested string) string {
	base := requested
	if base == "" {
		base = kind
	} else if _, taken := h.objects[base]; !taken {
		return base
	}

	for {
		h.counters[base]++
		sep := "_"
		if requested == "" {
			sep = ""
		}
		candidate := fmt.Sprintf("%s%s%d", base, sep, h.counters[base])
		if _, taken := h.objects[candidate]; !taken {
			return candidate
		}
	}
}

func (h *Host) selection(args []any, method string) ([]string, error) {
	sel, err := arrayArg(args, 0, method)
	if err != nil {
		return nil, err
	}

	raw, ok := params.Lookup(sel, "Selections")
	if !ok {
		return nil, fmt.Errorf("%w: %s without Selections", ErrBadArguments, method)
	}

	names := strings.Split(cast.ToString(raw), ",")
	for _, name := range names {
		if _, ok := h.objects[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownObject, name)
		}
	}
	return names, nil
}

func (h *Host) unite(args []any) (any, error) {
	return h.boolean(args, "Unite")
}

func (h *Host) intersect(args []any) (any, error) {
	return h.boolean(args, "Intersect")
}

// boolean folds every selected object into the first one, removing the rest
// unless KeepOriginals is set.
func (h *Host) boolean(args []any, method string) (any, error) {
	names, err := h.selection(args, method)
	if err != nil {
		return nil, err
	}

	opts, err := arrayArg(args, 1, method)
	if err != nil {
		return nil, err
	}
	rawKeep, _ := params.Lookup(opts, "KeepOriginals")
	keep, err := cast.ToBoolE(rawKeep)
	if err != nil {
		return nil, fmt.Errorf("%w: KeepOriginals: %v", ErrBadArguments, err)
	}

	if keep {
		return nil, nil
	}

	for _, name := range names[1:] {
		if name == names[0] {
			continue
		}
		delete(h.objects, name)
		h.objOrder = remove(h.objOrder, name)
	}
	return nil, nil
}

func (h *Host) move(args []any) (any, error) {
	names, err := h.selection(args, "Move")
	if err != nil {
		return nil, err
	}

	vec, err := arrayArg(args, 1, "Move")
	if err != nil {
		return nil, err
	}

	var delta [3]string
	for i, key := range []string{"TranslateVectorX", "TranslateVectorY", "TranslateVectorZ"} {
		raw, ok := params.Lookup(vec, key)
		if !ok {
			return nil, fmt.Errorf("%w: Move without %s", ErrBadArguments, key)
		}
		delta[i] = cast.ToString(raw)
	}

	for _, name := range names {
		h.objects[name].Moves = append(h.objects[name].Moves, delta)
	}
	return nil, nil
}

func (h *Host) changeObjectProperty(args []any) (any, error) {
	props, err := arrayArg(args, 0, "ChangeProperty")
	if err != nil {
		return nil, err
	}

	tab, ok := params.Find(props, "Geometry3DAttributeTab")
	if !ok {
		return nil, fmt.Errorf("%w: ChangeProperty without Geometry3DAttributeTab", ErrBadArguments)
	}

	servers, ok := params.Find(tab, "PropServers")
	if !ok || len(params.Items(servers)) == 0 {
		return nil, fmt.Errorf("%w: ChangeProperty without PropServers", ErrBadArguments)
	}

	changed, ok := params.Find(tab, "ChangedProps")
	if !ok {
		return nil, fmt.Errorf("%w: ChangeProperty without ChangedProps", ErrBadArguments)
	}

	for _, server := range params.Items(servers) {
		name := cast.ToString(server)
		obj, ok := h.objects[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownObject, name)
		}
		for _, item := range params.Items(changed) {
			prop, value, err := propEntry(item)
			if err != nil {
				return nil, err
			}
			obj.Props[prop] = value
		}
	}
	return nil, nil
}

func remove(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
