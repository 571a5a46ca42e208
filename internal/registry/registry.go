// Package registry is the Go-native stand-in for a reflective object
// system: a worker that loads classes and resolves/invokes static methods by
// reaching into a live set of types and functions. Go has no dynamic class
// loader, so this package plays that role with a process-wide table
// populated at init time and resolved by name, owner, and parameter types at
// dispatch time rather than discovered at runtime.
package registry

import (
	"reflect"
	"strings"

	"github.com/gvm-project/reflectbridge/internal/printsink"
)

// StaticMethod is the Go analogue of a static method: it receives its
// already-resolved argument values and a Sink to print through (in place of
// fmt.Print*, per the output-interception design), and returns a single
// value (or nil for a void/null result) or an error.
type StaticMethod func(sink printsink.Sink, args []any) (any, error)

// Method is an admitted, resolved static method: the object table stores a
// *Method the same way it stores a reflect.Type for a class.
type Method struct {
	Owner  reflect.Type
	Name   string
	Params []reflect.Type
	Fn     StaticMethod
}

type methodKey struct {
	owner reflect.Type
	name  string
	// signature joins the declared parameter types' names so that two
	// methods sharing an owner, name, and arity but differing in parameter
	// types are distinct keys: []reflect.Type isn't itself comparable, so it
	// can't be a map key directly, and keying on arity alone would let a
	// GET_METHOD call with the wrong parameter-type handles resolve anyway.
	signature string
}

func paramSignature(params []reflect.Type) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.String()
	}
	return strings.Join(names, ",")
}

// Registry is the process-wide class/method table.
type Registry struct {
	classes    map[string]reflect.Type
	classNames map[reflect.Type]string
	methods    map[methodKey]*Method
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		classes:    make(map[string]reflect.Type),
		classNames: make(map[reflect.Type]string),
		methods:    make(map[methodKey]*Method),
	}
}

// RegisterClass makes name resolvable by GET_CLASS, backed by the Go type t.
func (r *Registry) RegisterClass(name string, t reflect.Type) {
	r.classes[name] = t
	r.classNames[t] = name
}

// Class resolves a registered class by name.
func (r *Registry) Class(name string) (reflect.Type, bool) {
	t, ok := r.classes[name]
	return t, ok
}

// ClassName returns the name a class was registered under, for TO_STRING
// rendering ("class " + name).
func (r *Registry) ClassName(t reflect.Type) (string, bool) {
	name, ok := r.classNames[t]
	return name, ok
}

// RegisterMethod makes (owner, name, params) resolvable by GET_METHOD.
func (r *Registry) RegisterMethod(owner reflect.Type, name string, params []reflect.Type, fn StaticMethod) {
	r.methods[methodKey{owner, name, paramSignature(params)}] = &Method{
		Owner:  owner,
		Name:   name,
		Params: params,
		Fn:     fn,
	}
}

// Method resolves a registered static method by owner, name, and declared
// parameter types exactly. The worker does not perform any further overload
// resolution, since the registry is populated by the worker's own author
// rather than discovered: a call naming the right arity but the wrong
// parameter types for that arity does not match.
func (r *Registry) Method(owner reflect.Type, name string, params []reflect.Type) (*Method, bool) {
	m, ok := r.methods[methodKey{owner, name, paramSignature(params)}]
	return m, ok
}
