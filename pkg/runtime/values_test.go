package runtime

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	cases := []struct {
		val  Value
		want string
	}{
		{NewInteger(-3), "-3"},
		{IntegerValue{Val: huge}, "123456789012345678901234567890"},
		{RealValue{Val: 5}, "5.0"},
		{RealValue{Val: 0.1}, "0.1"},
		{RealValue{Val: 2.5e-7}, "2.5e-07"},
		{RealValue{Val: 1e16}, "1e+16"},
		{RealValue{Val: math.Inf(-1)}, "-inf"},
		{BoolValue{Val: true}, "true"},
		{StringValue{Val: "hi"}, "hi"},
		{nil, "<none>"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatValue(tc.val))
	}
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{
		"int":     KindInteger,
		"real":    KindReal,
		"boolean": KindBoolean,
		"string":  KindString,
	} {
		got, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}
	_, err := ParseKind("float")
	assert.Error(t, err)
}

func TestArrayOffsetRowMajor(t *testing.T) {
	arr, err := NewArray(KindBoolean, []int{2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 3, arr.Rank())
	assert.Len(t, arr.Elements, 24)

	offset, err := arr.Offset([]Value{NewInteger(1), NewInteger(2), NewInteger(3)})
	require.NoError(t, err)
	assert.Equal(t, 23, offset)

	_, err = arr.Offset([]Value{NewInteger(0), NewInteger(-1), NewInteger(0)})
	require.ErrorIs(t, err, ErrArrayIndexInvalid)
}

func TestArrayCloneIsIndependent(t *testing.T) {
	arr, err := NewArray(KindString, []int{2})
	require.NoError(t, err)
	clone := arr.Clone()
	clone.Elements[0] = StringValue{Val: "x"}
	assert.Equal(t, StringValue{}, arr.Elements[0])
}
