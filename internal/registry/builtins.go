package registry

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/gvm-project/reflectbridge/internal/printsink"
)

// The demonstration classes below exist so a GET_CLASS/GET_METHOD/
// INVOKE_STATIC_METHOD/TO_STRING round trip against a registered class is
// exercised by real, runnable code rather than left untested.

// systemClass and integerClass are marker types whose reflect.Type stands in
// for a loaded class; they carry no fields or methods of their own.
type systemClass struct{}
type integerClass struct{}
type mathClass struct{}

// RegisterBuiltins populates reg with a small set of demonstration classes
// and static methods analogous to java.lang.System, java.lang.Integer, and
// java.lang.Math.
func RegisterBuiltins(reg *Registry) {
	systemType := reflect.TypeOf(systemClass{})
	integerType := reflect.TypeOf(integerClass{})
	mathType := reflect.TypeOf(mathClass{})

	reg.RegisterClass("java.lang.System", systemType)
	reg.RegisterClass("java.lang.Integer", integerType)
	reg.RegisterClass("java.lang.Math", mathType)

	reg.RegisterMethod(systemType, "currentTimeMillis", nil,
		func(_ printsink.Sink, _ []any) (any, error) {
			return time.Now().UnixMilli(), nil
		})

	reg.RegisterMethod(integerType, "toHexString", []reflect.Type{reflect.TypeOf(int32(0))},
		func(_ printsink.Sink, args []any) (any, error) {
			v, ok := args[0].(int32)
			if !ok {
				return nil, fmt.Errorf("toHexString expects an int argument, got %T", args[0])
			}
			return strconv.FormatInt(int64(v), 16), nil
		})

	reg.RegisterMethod(mathType, "abs", []reflect.Type{reflect.TypeOf(int32(0))},
		func(_ printsink.Sink, args []any) (any, error) {
			v, ok := args[0].(int32)
			if !ok {
				return nil, fmt.Errorf("abs expects an int argument, got %T", args[0])
			}
			if v < 0 {
				v = -v
			}
			return v, nil
		})

	// println demonstrates the output interceptor: a "static method" whose
	// body writes to the sink instead of returning a value, so invoking it
	// produces a PRINT_OUT frame ahead of an INT_RESULT carrying the null
	// handle.
	reg.RegisterMethod(systemType, "println", []reflect.Type{reflect.TypeOf("")},
		func(sink printsink.Sink, args []any) (any, error) {
			v, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("println expects a String argument, got %T", args[0])
			}
			sink.StringLn(v)
			return nil, nil
		})
}

// BuiltinGoType maps a built-in type name (one of the canonically ordered
// well-known types: byte, boolean, short, char, int, float, long, double,
// Object, String, Class) to the Go reflect.Type used to represent it:
// GET_METHOD's owner and parameter-type handles and the built-in-type band
// in value position both resolve through this table. Inline primitives do
// not; their decoder picks its Go types directly.
func BuiltinGoType(name string) (reflect.Type, bool) {
	t, ok := builtinGoTypes[name]
	return t, ok
}

var builtinGoTypes = map[string]reflect.Type{
	"byte":    reflect.TypeOf(byte(0)),
	"boolean": reflect.TypeOf(false),
	"short":   reflect.TypeOf(int16(0)),
	"char":    reflect.TypeOf(rune(0)),
	"int":     reflect.TypeOf(int32(0)),
	"float":   reflect.TypeOf(float32(0)),
	"long":    reflect.TypeOf(int64(0)),
	"double":  reflect.TypeOf(float64(0)),
	"Object":  reflect.TypeOf((*any)(nil)).Elem(),
	"String":  reflect.TypeOf(""),
	"Class":   reflect.TypeOf((*reflect.Type)(nil)).Elem(),
}
