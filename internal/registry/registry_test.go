package registry

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gvm-project/reflectbridge/internal/printsink"
)

type widget struct{}

func TestRegisterAndResolveClass(t *testing.T) {
	r := New()
	wt := reflect.TypeOf(widget{})
	r.RegisterClass("demo.Widget", wt)

	got, ok := r.Class("demo.Widget")
	require.True(t, ok)
	assert.Equal(t, wt, got)

	name, ok := r.ClassName(wt)
	require.True(t, ok)
	assert.Equal(t, "demo.Widget", name)
}

func TestUnregisteredClassNotFound(t *testing.T) {
	r := New()
	_, ok := r.Class("nope.Nothing")
	assert.False(t, ok)
}

func TestRegisterAndResolveMethodByArity(t *testing.T) {
	r := New()
	wt := reflect.TypeOf(widget{})
	r.RegisterClass("demo.Widget", wt)

	intParam := []reflect.Type{reflect.TypeOf(int32(0))}

	called := false
	r.RegisterMethod(wt, "spin", intParam, func(_ printsink.Sink, args []any) (any, error) {
		called = true
		return args[0], nil
	})

	m, ok := r.Method(wt, "spin", intParam)
	require.True(t, ok)
	assert.Equal(t, "spin", m.Name)
	assert.Len(t, m.Params, 1)

	result, err := m.Fn(nil, []any{int32(7)})
	require.NoError(t, err)
	assert.Equal(t, int32(7), result)
	assert.True(t, called)

	_, ok = r.Method(wt, "spin", nil)
	assert.False(t, ok, "a same-named method with a different arity must not match")

	_, ok = r.Method(wt, "spin", []reflect.Type{reflect.TypeOf("")})
	assert.False(t, ok, "a same-named, same-arity method with different parameter types must not match")

	_, ok = r.Method(wt, "missing", intParam)
	assert.False(t, ok)
}

func TestRegisterMethodOverloadsByParameterType(t *testing.T) {
	r := New()
	wt := reflect.TypeOf(widget{})
	r.RegisterClass("demo.Widget", wt)

	r.RegisterMethod(wt, "describe", []reflect.Type{reflect.TypeOf(int32(0))}, func(_ printsink.Sink, args []any) (any, error) {
		return "int", nil
	})
	r.RegisterMethod(wt, "describe", []reflect.Type{reflect.TypeOf("")}, func(_ printsink.Sink, args []any) (any, error) {
		return "string", nil
	})

	intOverload, ok := r.Method(wt, "describe", []reflect.Type{reflect.TypeOf(int32(0))})
	require.True(t, ok)
	result, err := intOverload.Fn(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "int", result)

	stringOverload, ok := r.Method(wt, "describe", []reflect.Type{reflect.TypeOf("")})
	require.True(t, ok)
	result, err = stringOverload.Fn(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "string", result)
}

func TestBuiltinsRegistersDemonstrationClasses(t *testing.T) {
	r := New()
	RegisterBuiltins(r)

	for _, name := range []string{"java.lang.System", "java.lang.Integer", "java.lang.Math"} {
		_, ok := r.Class(name)
		assert.True(t, ok, "expected %s to be registered", name)
	}

	systemType, _ := r.Class("java.lang.System")
	m, ok := r.Method(systemType, "currentTimeMillis", nil)
	require.True(t, ok)
	result, err := m.Fn(nil, nil)
	require.NoError(t, err)
	_, isInt64 := result.(int64)
	assert.True(t, isInt64)

	integerType, _ := r.Class("java.lang.Integer")
	hex, ok := r.Method(integerType, "toHexString", []reflect.Type{reflect.TypeOf(int32(0))})
	require.True(t, ok)
	result, err = hex.Fn(nil, []any{int32(255)})
	require.NoError(t, err)
	assert.Equal(t, "ff", result)
}

func TestBuiltinGoTypeCoversOrderedList(t *testing.T) {
	for _, name := range []string{
		"byte", "boolean", "short", "char", "int", "float",
		"long", "double", "Object", "String", "Class",
	} {
		_, ok := BuiltinGoType(name)
		assert.True(t, ok, "expected a Go type for built-in %q", name)
	}

	_, ok := BuiltinGoType("no.such.type")
	assert.False(t, ok)
}
