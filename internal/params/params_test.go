package params

import (
	"testing"

	"github.com/bnema/hfss-client/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayValuesFlattensNestedArraysAndExpressions(t *testing.T) {
	arr := Named("AllTabs").Append(
		Named("LocalVariableTab").
			Append(Named("PropServers").Append("LocalVariables")).
			Append(New("Name:NewProps").Append(Named("bx").With("Value", domain.Expr("10mm")))),
	)

	assert.Equal(t, []any{
		"NAME:AllTabs",
		[]any{
			"NAME:LocalVariableTab",
			[]any{"NAME:PropServers", "LocalVariables"},
			[]any{"Name:NewProps", []any{"NAME:bx", "Value:=", "10mm"}},
		},
	}, arr.Values())
}

func TestLookupAndFind(t *testing.T) {
	arr := Named("BoxParameters").
		With("XPosition", "0").
		With("XSize", 2.5).
		Append(Named("Inner").With("Flag", true)).
		Values()

	value, ok := Lookup(arr, "XSize")
	require.True(t, ok)
	assert.Equal(t, 2.5, value)

	_, ok = Lookup(arr, "YSize")
	assert.False(t, ok)

	inner, ok := Find(arr, "inner")
	require.True(t, ok)
	flag, ok := Lookup(inner, "Flag")
	require.True(t, ok)
	assert.Equal(t, true, flag)

	assert.Equal(t, "NAME:BoxParameters", Header(arr))
	assert.Len(t, Items(arr), 5)
}

func TestNameAcceptsBothHeaderCasings(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{header: "NAME:Attributes", want: "Attributes", ok: true},
		{header: "Name:NewProps", want: "NewProps", ok: true},
		{header: "Selections:=", ok: false},
		{header: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := Name(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
