// Package table implements the bridge worker's object table: the mapping
// from non-negative handles to live reflective references, plus the virtual
// (negative) handle spaces for built-in types and inline primitives.
package table

import (
	"reflect"

	"github.com/pkg/errors"
)

// Handle names either a live object-table entry (non-negative) or a virtual
// value (negative).
type Handle int32

// NullHandle is the sentinel virtual handle for a null/void value returned by
// an invocation. It sits well clear of the inline-primitive band (-1..-8)
// and the built-in-type band as used in value position (-9..-19), so it can
// never collide with either, including if the built-in type table grows.
const NullHandle Handle = -100

// builtinTypeNames is the canonical, ordered list of well-known types.
// Virtual handle -1 names the first entry (byte), -2 the second (boolean),
// and so on.
var builtinTypeNames = []string{
	"byte", "boolean", "short", "char", "int", "float", "long", "double",
	"Object", "String", "Class",
}

// BuiltinTypeCount is the number of entries in the built-in type table.
const BuiltinTypeCount = len(builtinTypeNames)

// InlinePrimitiveBandSize is the width of the inline-primitive virtual-handle
// band (-1..-8), used only when resolving a handle in value position.
const InlinePrimitiveBandSize = 8

// BuiltinTypeHandle returns the virtual handle naming the n-th built-in type
// (0-indexed), for use as an owner handle or a parameter-type handle.
func BuiltinTypeHandle(n int) Handle {
	return Handle(-(n + 1))
}

// BuiltinTypeName resolves a virtual type handle - as used for an owner
// handle or a GET_METHOD parameter-type handle, never offset by the
// inline-primitive band - to its name.
func BuiltinTypeName(h Handle) (name string, ok bool) {
	if h >= 0 {
		return "", false
	}
	n := int(-h) - 1
	if n < 0 || n >= len(builtinTypeNames) {
		return "", false
	}
	return builtinTypeNames[n], true
}

// BuiltinTypeNameForValue resolves a virtual handle appearing in value
// position (an INVOKE_STATIC_METHOD argument or a TO_STRING target), where
// the built-in-type band sits immediately past the inline-primitive band.
func BuiltinTypeNameForValue(h Handle) (name string, ok bool) {
	if h >= 0 {
		return "", false
	}
	n := int(-h) - 1 - InlinePrimitiveBandSize
	if n < 0 || n >= len(builtinTypeNames) {
		return "", false
	}
	return builtinTypeNames[n], true
}

// ErrVacantHandle is returned by Free and Resolve when the handle's slot is
// not currently occupied.
var ErrVacantHandle = errors.New("table: handle is vacant")

// ErrNegativeHandle is returned by Free and Resolve for a negative handle;
// virtual handles are never stored in the table and must be resolved by the
// caller before reaching it.
var ErrNegativeHandle = errors.New("table: handle does not address the object table")

// Table is the process-wide object table: a slot array, a FIFO free list,
// and an identity map used so re-admitting the same reference returns the
// same handle. Slots are never relocated; a handle remains valid until
// explicitly freed.
type Table struct {
	slots    []any
	occupied []bool
	free     []Handle
	identity map[any]Handle
}

// New returns an empty object table.
func New() *Table {
	return &Table{identity: make(map[any]Handle)}
}

// Admit stores obj and returns its handle. If obj is already present, the
// existing handle is returned unchanged; presence is decided by Go's == on
// obj, which is reference identity for pointers (and interfaces holding
// them) but value equality for non-pointer comparable values such as
// strings and ints. Otherwise a free slot is reused (FIFO) or a new slot
// appended.
func (t *Table) Admit(obj any) Handle {
	if identifiable(obj) {
		if h, ok := t.identity[obj]; ok {
			return h
		}
	}

	var h Handle
	if len(t.free) > 0 {
		h = t.free[0]
		t.free = t.free[1:]
	} else {
		h = Handle(len(t.slots))
		t.slots = append(t.slots, nil)
		t.occupied = append(t.occupied, false)
	}

	t.slots[h] = obj
	t.occupied[h] = true
	if identifiable(obj) {
		t.identity[obj] = h
	}
	return h
}

// Free clears h's slot, drops its identity-map entry, and returns the slot
// to the free list. Freeing an already-vacant or negative handle is a
// protocol violation reported as an error.
func (t *Table) Free(h Handle) error {
	obj, err := t.checked(h)
	if err != nil {
		return err
	}
	i := int(h)
	t.slots[i] = nil
	t.occupied[i] = false
	if identifiable(obj) {
		delete(t.identity, obj)
	}
	t.free = append(t.free, h)
	return nil
}

// Resolve returns the object stored at h. Negative handles are never stored
// in the table; callers that accept virtual handles must resolve them
// before calling Resolve.
func (t *Table) Resolve(h Handle) (any, error) {
	return t.checked(h)
}

func (t *Table) checked(h Handle) (any, error) {
	if h < 0 {
		return nil, ErrNegativeHandle
	}
	i := int(h)
	if i >= len(t.slots) || !t.occupied[i] {
		return nil, ErrVacantHandle
	}
	return t.slots[i], nil
}

// identifiable reports whether obj can safely key the identity map: nil and
// non-comparable dynamic types (slices, maps, funcs) are excluded since
// indexing a map with them would panic, and they have no useful identity for
// re-admission purposes anyway.
func identifiable(obj any) bool {
	if obj == nil {
		return false
	}
	return reflect.TypeOf(obj).Comparable()
}
