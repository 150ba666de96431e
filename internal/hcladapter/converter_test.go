package hcladapter

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

func TestConverter_Decode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		val    cty.Value
		target reflect.Type
		want   any
	}{
		{name: "number to int", val: cty.NumberIntVal(7), target: reflect.TypeFor[int](), want: 7},
		{name: "number to float", val: cty.NumberFloatVal(1.5), target: reflect.TypeFor[float64](), want: 1.5},
		{name: "string", val: cty.StringVal("fast"), target: reflect.TypeFor[string](), want: "fast"},
		{name: "number to string", val: cty.NumberIntVal(3), target: reflect.TypeFor[string](), want: "3"},
		{name: "bool", val: cty.True, target: reflect.TypeFor[bool](), want: true},
		{name: "tuple to slice", val: cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}), target: reflect.TypeFor[[]string](), want: []string{"a", "b"}},
		{name: "null to zero", val: cty.NullVal(cty.Number), target: reflect.TypeFor[int](), want: 0},
		{name: "number to interface", val: cty.NumberIntVal(2), target: reflect.TypeFor[any](), want: float64(2)},
		{name: "object to interface", val: cty.ObjectVal(map[string]cty.Value{"k": cty.True}), target: reflect.TypeFor[any](), want: map[string]any{"k": true}},
		{name: "cty passthrough", val: cty.StringVal("raw"), target: reflect.TypeFor[cty.Value](), want: cty.StringVal("raw")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			ctx := ctxlog.Discard(context.Background())

			// --- Act ---
			got, err := NewConverter().Decode(ctx, tc.val, tc.target)

			// --- Assert ---
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Interface())
		})
	}
}

func TestConverter_DecodeRejectsMismatch(t *testing.T) {
	t.Parallel()

	ctx := ctxlog.Discard(context.Background())

	_, err := NewConverter().Decode(ctx, cty.StringVal("many"), reflect.TypeFor[int]())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot use string as int")
}

func TestConverter_ToCtyValue(t *testing.T) {
	t.Parallel()

	got, err := NewConverter().ToCtyValue([]string{"a"})
	require.NoError(t, err)
	assert.True(t, got.RawEquals(cty.ListVal([]cty.Value{cty.StringVal("a")})))

	null, err := NewConverter().ToCtyValue(nil)
	require.NoError(t, err)
	assert.Equal(t, cty.NilVal, null)
}
