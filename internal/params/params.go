// Package params builds and reads the tagged positional arrays the host
// automation layer takes as arguments.
//
// An array starts with a header such as "NAME:BoxParameters" and continues
// with "Key:=", value pairs or nested arrays.
package params

import (
	"strings"

	"github.com/bnema/hfss-client/internal/domain"
)

const (
	namePrefix = "NAME:"
	propSuffix = ":="
)

type Array []any

// Named starts an array with a "NAME:<name>" header.
func Named(name string) Array {
	return Array{namePrefix + name}
}

// New starts an array with a literal header. The host is not consistent about
// header casing, so some call sites need "Name:" instead of "NAME:".
func New(header string) Array {
	return Array{header}
}

// With appends a "key:=", value pair.
func (a Array) With(key string, value any) Array {
	return append(a, key+propSuffix, value)
}

// Append appends bare items, nested arrays included.
func (a Array) Append(items ...any) Array {
	return append(a, items...)
}

// Values converts the array into the plain []any the automation port accepts.
func (a Array) Values() []any {
	out := make([]any, len(a))
	for i, item := range a {
		out[i] = plain(item)
	}
	return out
}

func plain(v any) any {
	switch value := v.(type) {
	case Array:
		return value.Values()
	case []any:
		return Array(value).Values()
	case domain.Expr:
		return string(value)
	case domain.Axis:
		return string(value)
	default:
		return v
	}
}

// Header returns the first element of arr when it is a string.
func Header(arr []any) string {
	if len(arr) == 0 {
		return ""
	}
	header, _ := arr[0].(string)
	return header
}

// Name strips the "NAME:" prefix, matching case-insensitively.
func Name(header string) (string, bool) {
	if len(header) < len(namePrefix) || !strings.EqualFold(header[:len(namePrefix)], namePrefix) {
		return "", false
	}
	return header[len(namePrefix):], true
}

// Lookup returns the value following "key:=" in arr.
func Lookup(arr []any, key string) (any, bool) {
	tag := key + propSuffix
	for i := 0; i+1 < len(arr); i++ {
		if s, ok := arr[i].(string); ok && s == tag {
			return arr[i+1], true
		}
	}
	return nil, false
}

// Find returns the first nested array whose header names name.
func Find(arr []any, name string) ([]any, bool) {
	for _, item := range arr {
		nested, ok := item.([]any)
		if !ok {
			continue
		}
		if got, ok := Name(Header(nested)); ok && strings.EqualFold(got, name) {
			return nested, true
		}
	}
	return nil, false
}

// Items returns the elements after the header.
func Items(arr []any) []any {
	if len(arr) == 0 {
		return nil
	}
	return arr[1:]
}
