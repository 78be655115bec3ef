//go:build windows

package com

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/bnema/hfss-client/internal/log"
	"github.com/bnema/hfss-client/internal/ports"
	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"golang.org/x/sys/windows"
)

var (
	oleaut32                  = windows.NewLazySystemDLL("oleaut32.dll")
	procSafeArrayCreateVector = oleaut32.NewProc("SafeArrayCreateVector")
	procSafeArrayPutElement   = oleaut32.NewProc("SafeArrayPutElement")
	procSafeArrayDestroy      = oleaut32.NewProc("SafeArrayDestroy")
)

// sFalse is returned by CoInitialize when the thread is already initialised.
const sFalse = 1

// Host holds the dispatch interfaces of the active design. Every call must
// come from the goroutine that called Connect, whose OS thread stays locked
// until Close.
type Host struct {
	app     *ole.IDispatch
	design  *ole.IDispatch
	targets map[ports.Target]*ole.IDispatch
	held    []*ole.IDispatch
}

var _ ports.Automation = (*Host)(nil)

// Connect attaches to the running host, or starts one, and binds to its
// active project and design.
func Connect(ctx context.Context, opts Options) (*Host, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	runtime.LockOSThread()
	if err := ole.CoInitialize(0); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			runtime.UnlockOSThread()
			return nil, fmt.Errorf("initialise COM: %w", err)
		}
	}

	h := &Host{targets: map[ports.Target]*ole.IDispatch{}}
	if err := h.bind(opts); err != nil {
		_ = h.Close()
		return nil, err
	}

	log.Info(log.CatHost, "connected", "prog_id", opts.ProgID, "editor", opts.Editor)
	return h, nil
}

func (h *Host) bind(opts Options) error {
	unknown, err := oleutil.GetActiveObject(opts.ProgID)
	if err != nil {
		log.Debug(log.CatHost, "no running host, starting one", "prog_id", opts.ProgID)
		if unknown, err = oleutil.CreateObject(opts.ProgID); err != nil {
			return fmt.Errorf("create %s: %w", opts.ProgID, err)
		}
	}
	defer unknown.Release()

	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("query %s dispatch: %w", opts.ProgID, err)
	}
	h.app = h.hold(app)

	desktop, err := h.dispatch(h.app, "GetAppDesktop")
	if err != nil {
		return err
	}
	project, err := h.dispatch(desktop, "GetActiveProject")
	if err != nil {
		return err
	}
	if h.design, err = h.dispatch(project, "GetActiveDesign"); err != nil {
		return err
	}
	h.targets[ports.TargetDesign] = h.design

	for _, module := range modules {
		disp, err := h.dispatch(h.design, "GetModule", string(module))
		if err != nil {
			return err
		}
		h.targets[module] = disp
	}

	editor, err := h.dispatch(h.design, "SetActiveEditor", opts.Editor)
	if err != nil {
		return err
	}
	h.targets[ports.TargetEditor] = editor
	return nil
}

func (h *Host) hold(disp *ole.IDispatch) *ole.IDispatch {
	h.held = append(h.held, disp)
	return disp
}

func (h *Host) dispatch(on *ole.IDispatch, method string, args ...any) (*ole.IDispatch, error) {
	result, err := oleutil.CallMethod(on, method, args...)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	disp := result.ToIDispatch()
	if disp == nil {
		return nil, fmt.Errorf("call %s: host returned no object", method)
	}
	return h.hold(disp), nil
}

func (h *Host) Call(ctx context.Context, target ports.Target, method string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	disp, ok := h.targets[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}

	converted := make([]any, len(args))
	for i, a := range args {
		v, err := toArgument(a)
		if err != nil {
			return nil, fmt.Errorf("%s.%s argument %d: %w", target, method, i, err)
		}
		if variant, ok := v.(*ole.VARIANT); ok {
			defer ole.VariantClear(variant)
		}
		converted[i] = v
	}

	result, err := oleutil.CallMethod(disp, method, converted...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", target, method, err)
	}
	defer result.Clear()

	return fromVariant(result), nil
}

// Close releases every interface and the apartment. It must run on the
// connecting goroutine.
func (h *Host) Close() error {
	for i := len(h.held) - 1; i >= 0; i-- {
		h.held[i].Release()
	}
	h.held = nil
	h.targets = nil

	ole.CoUninitialize()
	runtime.UnlockOSThread()
	return nil
}

// toArgument passes scalars through for go-ole to marshal and turns []any into
// a SAFEARRAY of VARIANT, recursively.
func toArgument(a any) (any, error) {
	switch v := a.(type) {
	case []any:
		arr, err := newVariantArray(v)
		if err != nil {
			return nil, err
		}
		variant := ole.NewVariant(ole.VT_ARRAY|ole.VT_VARIANT, int64(uintptr(unsafe.Pointer(arr))))
		return &variant, nil
	case string, bool, int, int32, int64, float64:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedArgument, a)
	}
}

func newVariantArray(items []any) (*ole.SafeArray, error) {
	ptr, _, callErr := procSafeArrayCreateVector.Call(uintptr(ole.VT_VARIANT), 0, uintptr(len(items)))
	if ptr == 0 {
		return nil, fmt.Errorf("create safearray: %w", callErr)
	}
	arr := (*ole.SafeArray)(unsafe.Pointer(ptr))

	for i, item := range items {
		element, err := toVariant(item)
		if err != nil {
			procSafeArrayDestroy.Call(ptr)
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		index := int32(i)
		hr, _, _ := procSafeArrayPutElement.Call(ptr, uintptr(unsafe.Pointer(&index)), uintptr(unsafe.Pointer(&element)))
		_ = ole.VariantClear(&element)
		if hr != 0 {
			procSafeArrayDestroy.Call(ptr)
			return nil, fmt.Errorf("put element %d: %w", i, ole.NewError(hr))
		}
	}
	return arr, nil
}

// toVariant builds an owned VARIANT. SafeArrayPutElement copies it, so the
// caller clears it afterwards.
func toVariant(item any) (ole.VARIANT, error) {
	switch v := item.(type) {
	case nil:
		return ole.NewVariant(ole.VT_NULL, 0), nil
	case string:
		return ole.NewVariant(ole.VT_BSTR, int64(uintptr(unsafe.Pointer(ole.SysAllocStringLen(v))))), nil
	case bool:
		if v {
			return ole.NewVariant(ole.VT_BOOL, 0xffff), nil
		}
		return ole.NewVariant(ole.VT_BOOL, 0), nil
	case int:
		return ole.NewVariant(ole.VT_I4, int64(v)), nil
	case int32:
		return ole.NewVariant(ole.VT_I4, int64(v)), nil
	case int64:
		return ole.NewVariant(ole.VT_I8, v), nil
	case float64:
		return ole.NewVariant(ole.VT_R8, int64(math.Float64bits(v))), nil
	case []any:
		arr, err := newVariantArray(v)
		if err != nil {
			return ole.VARIANT{}, err
		}
		return ole.NewVariant(ole.VT_ARRAY|ole.VT_VARIANT, int64(uintptr(unsafe.Pointer(arr)))), nil
	default:
		return ole.VARIANT{}, fmt.Errorf("%w: %T", ErrUnsupportedArgument, item)
	}
}

func fromVariant(v *ole.VARIANT) any {
	if v == nil {
		return nil
	}
	if v.VT&ole.VT_ARRAY != 0 {
		return v.ToArray().ToValueArray()
	}
	switch v.VT {
	case ole.VT_EMPTY, ole.VT_NULL:
		return nil
	default:
		return v.Value()
	}
}
