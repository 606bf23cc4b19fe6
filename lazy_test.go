package simdjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawValueTypeHint(t *testing.T) {
	cases := []struct {
		raw  string
		want Type
	}{
		{`{"a":1}`, TypeObject},
		{`[1,2]`, TypeArray},
		{`"hi"`, TypeString},
		{`true`, TypeBool},
		{`false`, TypeBool},
		{`null`, TypeNull},
		{`42`, TypeUint},
		{`-42`, TypeInt},
		{`3.5`, TypeFloat},
		{`1e10`, TypeFloat},
	}
	buf := newSharedBuffer(nil)
	for _, tt := range cases {
		buf.buf = []byte(tt.raw)
		rv := RawValue{start: 0, len: len(tt.raw), buf: buf}
		assert.Equal(t, tt.want, rv.TypeHint(), tt.raw)
	}
}

func TestRawValueValidateAndParseTo(t *testing.T) {
	got, err := NewPointerTree().Get([]byte(`{"a": {"b": 1, "c": [1,2,3]}}`), Pointer{Key("a")})
	require.NoError(t, err)
	rv := got[Pointer{Key("a")}.String()]

	require.NoError(t, rv.Validate())
	require.NoError(t, rv.Validate()) // idempotent

	pj, err := rv.ParseTo(nil)
	require.NoError(t, err)
	i := pj.Iter()
	i.AdvanceInto()
	_, root, err := i.Root(nil)
	require.NoError(t, err)
	obj, err := root.Object(nil)
	require.NoError(t, err)
	v := obj.FindKey("b", nil)
	require.NotNil(t, v)
	n, err := v.Iter.Int()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRawValueValidateRejectsTrailingGarbage(t *testing.T) {
	buf := newSharedBuffer([]byte(`1 2`))
	rv := RawValue{start: 0, len: len(buf.buf), buf: buf}
	assert.Error(t, rv.Validate())
}

func TestSharedBufferRefcount(t *testing.T) {
	b := newSharedBuffer([]byte("x"))
	assert.EqualValues(t, 1, b.refs)
	b.retain()
	assert.EqualValues(t, 2, b.refs)
	assert.EqualValues(t, 1, b.release())
}
