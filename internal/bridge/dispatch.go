// Package bridge implements the request dispatcher: the single-threaded
// Running/Shutting-down loop that reads one command at a time, performs the
// corresponding reflective action against the object table and class/method
// registry, and writes the result frame — catching any failure at the loop
// boundary and converting it to an ERROR_RESULT, with a single recover
// installed per command so one failing command cannot take down the worker
// or skip the commands after it.
package bridge

import (
	"fmt"
	"io"
	"math"
	"reflect"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/gvm-project/reflectbridge/internal/printsink"
	"github.com/gvm-project/reflectbridge/internal/registry"
	"github.com/gvm-project/reflectbridge/internal/table"
	"github.com/gvm-project/reflectbridge/internal/wire"
)

// boxed wraps a primitive-valued return or a created string in a fresh
// pointer so each invocation's result gets its own handle on admission, even
// when two invocations return equal-valued results: Go has no reference
// identity for values like int64 or string, and admitting them unboxed would
// let the object table's identity map (keyed by Go's own == on comparable
// values) collapse two distinct invocations onto the same handle.
type boxed struct{ v any }

func boxIfNeeded(v any) any {
	switch v.(type) {
	case bool, byte, int16, int32, int64, float32, float64, string:
		return &boxed{v: v}
	default:
		return v
	}
}

func unbox(v any) any {
	if b, ok := v.(*boxed); ok {
		return b.v
	}
	return v
}

// Dispatcher is the worker's request-processing loop.
type Dispatcher struct {
	reader   *wire.Reader
	writer   *wire.Writer
	table    *table.Table
	registry *registry.Registry
	sink     *printsink.FramedSink
	logger   zerolog.Logger
	debug    bool
}

// New builds a Dispatcher reading commands from r and writing result and
// PRINT_OUT frames to w.
func New(r io.Reader, w io.Writer, reg *registry.Registry, logger zerolog.Logger, debug bool) *Dispatcher {
	writer := wire.NewWriter(w)
	return &Dispatcher{
		reader:   wire.NewReader(r),
		writer:   writer,
		table:    table.New(),
		registry: reg,
		sink:     printsink.NewFramedSink(writer),
		logger:   logger,
		debug:    debug,
	}
}

// Run drives the dispatch loop until SHUTDOWN, end-of-input, or a fatal I/O
// error. It returns nil on a graceful shutdown, and the triggering error for
// a fatal one.
func (d *Dispatcher) Run() error {
	for {
		ordinal, eof, err := d.reader.ReadTag()
		if err != nil {
			return errors.Wrap(err, "bridge: reading command tag")
		}
		if eof || ordinal == wire.CmdShutdown {
			return d.writeShutdown()
		}

		if d.debug {
			d.logger.Debug().Str("command", wire.CommandName(ordinal)).Msg("dispatch")
		}

		if fatal := d.dispatchOne(ordinal); fatal != nil {
			d.logger.Error().Err(fatal).Msg("fatal I/O error, terminating without graceful shutdown")
			return fatal
		}
	}
}

// dispatchOne runs one command, recovering from any panic raised while
// handling it (for example inside an invoked static method) the same way the
// loop boundary catches a returned error: both become an ERROR_RESULT frame
// and the loop continues. Only a fatal I/O error escapes this function.
func (d *Dispatcher) dispatchOne(ordinal int) (fatal error) {
	defer func() {
		if r := recover(); r != nil {
			if werr := d.writeError(fmt.Errorf("panic in command handler: %v", r)); werr != nil {
				fatal = werr
			}
		}
	}()

	err := d.handle(ordinal)
	if err == nil {
		return nil
	}
	if isFatalIOError(err) {
		return err
	}
	if werr := d.writeError(err); werr != nil {
		return werr
	}
	return nil
}

func (d *Dispatcher) handle(ordinal int) error {
	switch ordinal {
	case wire.CmdGetClass:
		return d.doGetClass()
	case wire.CmdFreeObject:
		return d.doFreeObject()
	case wire.CmdGetMethod:
		return d.doGetMethod()
	case wire.CmdToString:
		return d.doToString()
	case wire.CmdCreateString:
		return d.doCreateString()
	case wire.CmdInvokeStaticMethod:
		return d.doInvoke()
	default:
		return ErrUnknownCommand
	}
}

func (d *Dispatcher) doGetClass() error {
	name, err := d.reader.ReadText()
	if err != nil {
		return err
	}
	t, ok := d.registry.Class(name)
	if !ok {
		return errors.Wrapf(ErrClassNotFound, "%q", name)
	}
	h := d.table.Admit(t)
	return d.write(wire.NewFrame().Tag(wire.ResIntResult).Uint32(frameHandle(h)))
}

func (d *Dispatcher) doFreeObject() error {
	h, err := d.readHandle()
	if err != nil {
		return err
	}
	if err := d.table.Free(h); err != nil {
		return err
	}
	return d.write(wire.NewFrame().Tag(wire.ResVoidResult))
}

func (d *Dispatcher) doGetMethod() error {
	ownerHandle, err := d.readHandle()
	if err != nil {
		return err
	}
	name, err := d.reader.ReadText()
	if err != nil {
		return err
	}
	arity, err := d.reader.ReadUint32()
	if err != nil {
		return err
	}

	ownerType, err := d.resolveTypeHandle(ownerHandle)
	if err != nil {
		return err
	}
	paramTypes := make([]reflect.Type, arity)
	for i := uint32(0); i < arity; i++ {
		paramHandle, err := d.readHandle()
		if err != nil {
			return err
		}
		t, err := d.resolveTypeHandle(paramHandle)
		if err != nil {
			return err
		}
		paramTypes[i] = t
	}

	m, ok := d.registry.Method(ownerType, name, paramTypes)
	if !ok {
		return errors.Wrapf(ErrMethodNotFound, "%s(%d args)", name, arity)
	}
	h := d.table.Admit(m)
	return d.write(wire.NewFrame().Tag(wire.ResIntResult).Uint32(frameHandle(h)))
}

func (d *Dispatcher) doToString() error {
	h, err := d.readHandle()
	if err != nil {
		return err
	}
	v, err := d.readValue(h)
	if err != nil {
		return err
	}
	text, err := d.stringOf(v)
	if err != nil {
		return err
	}
	return d.write(wire.NewFrame().Tag(wire.ResStringResult).Text(text))
}

func (d *Dispatcher) doCreateString() error {
	text, err := d.reader.ReadText()
	if err != nil {
		return err
	}
	h := d.table.Admit(&boxed{v: text})
	return d.write(wire.NewFrame().Tag(wire.ResIntResult).Uint32(frameHandle(h)))
}

func (d *Dispatcher) doInvoke() error {
	methodHandle, err := d.readHandle()
	if err != nil {
		return err
	}
	arity, err := d.reader.ReadUint32()
	if err != nil {
		return err
	}
	args := make([]any, arity)
	for i := uint32(0); i < arity; i++ {
		argHandle, err := d.readHandle()
		if err != nil {
			return err
		}
		v, err := d.readValue(argHandle)
		if err != nil {
			return err
		}
		args[i] = unbox(v)
	}

	mv, err := d.table.Resolve(methodHandle)
	if err != nil {
		return err
	}
	m, ok := mv.(*registry.Method)
	if !ok {
		return errors.Wrapf(ErrNotAMethod, "handle %d", methodHandle)
	}

	result, callErr := m.Fn(d.sink, args)
	if serr := d.sink.Err(); serr != nil {
		return &ioFault{serr}
	}
	if callErr != nil {
		return errors.Wrapf(ErrInvocationFailed, "%s: %v", m.Name, callErr)
	}
	if result == nil {
		return d.write(wire.NewFrame().Tag(wire.ResIntResult).Uint32(frameHandle(table.NullHandle)))
	}
	h := d.table.Admit(boxIfNeeded(result))
	return d.write(wire.NewFrame().Tag(wire.ResIntResult).Uint32(frameHandle(h)))
}

// readHandle reads one fixed-width integer and reinterprets its bit pattern
// as a signed handle, since negative (virtual) handles travel on the wire as
// the unsigned rendering of their two's-complement int32 representation.
func (d *Dispatcher) readHandle() (table.Handle, error) {
	v, err := d.reader.ReadUint32()
	if err != nil {
		return 0, err
	}
	return table.Handle(int32(v)), nil
}

func frameHandle(h table.Handle) uint32 {
	return uint32(int32(h))
}

// resolveTypeHandle resolves a handle appearing in "type" position (a
// GET_METHOD owner or parameter-type handle): non-negative handles must
// address a previously admitted class, negative handles resolve through the
// built-in type band unoffset.
func (d *Dispatcher) resolveTypeHandle(h table.Handle) (reflect.Type, error) {
	if h >= 0 {
		v, err := d.table.Resolve(h)
		if err != nil {
			return nil, err
		}
		t, ok := v.(reflect.Type)
		if !ok {
			return nil, errors.Wrapf(ErrNotAClass, "handle %d", h)
		}
		return t, nil
	}
	name, ok := table.BuiltinTypeName(h)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidVirtualHandle, "%d", h)
	}
	t, ok := registry.BuiltinGoType(name)
	if !ok {
		return nil, errors.Errorf("bridge: no Go type registered for built-in %q", name)
	}
	return t, nil
}

// readValue resolves a handle appearing in "value" position (an
// INVOKE_STATIC_METHOD argument or a TO_STRING target): the inline-primitive
// band consumes further wire bytes, and the built-in type band sits offset
// past it in this position.
func (d *Dispatcher) readValue(h table.Handle) (any, error) {
	switch {
	case h == table.NullHandle:
		return nil, nil
	case h >= 0:
		return d.table.Resolve(h)
	case h >= -table.InlinePrimitiveBandSize:
		return d.readInlinePrimitive(h)
	default:
		name, ok := table.BuiltinTypeNameForValue(h)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidVirtualHandle, "%d", h)
		}
		t, ok := registry.BuiltinGoType(name)
		if !ok {
			return nil, errors.Errorf("bridge: no Go type registered for built-in %q", name)
		}
		return t, nil
	}
}

func (d *Dispatcher) readInlinePrimitive(h table.Handle) (any, error) {
	switch h {
	case -1: // byte
		v, err := d.reader.ReadUint32()
		if err != nil {
			return nil, err
		}
		return byte(v & 0xFF), nil
	case -2: // boolean
		v, err := d.reader.ReadUint32()
		if err != nil {
			return nil, err
		}
		return v != 0, nil
	case -3: // short
		v, err := d.reader.ReadUint32()
		if err != nil {
			return nil, err
		}
		return int16(v & 0xFFFF), nil
	case -4: // char
		v, err := d.reader.ReadUint32()
		if err != nil {
			return nil, err
		}
		return rune(v & 0xFFFF), nil
	case -5: // int
		v, err := d.reader.ReadUint32()
		if err != nil {
			return nil, err
		}
		return int32(v), nil
	case -6: // float
		v, err := d.reader.ReadUint32()
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(v), nil
	case -7: // long: high half first
		hi, err := d.reader.ReadUint32()
		if err != nil {
			return nil, err
		}
		lo, err := d.reader.ReadUint32()
		if err != nil {
			return nil, err
		}
		return int64(uint64(hi)<<32 | uint64(lo)), nil
	case -8: // double: high half first
		hi, err := d.reader.ReadUint32()
		if err != nil {
			return nil, err
		}
		lo, err := d.reader.ReadUint32()
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(uint64(hi)<<32 | uint64(lo)), nil
	default:
		return nil, errors.Wrapf(ErrInvalidVirtualHandle, "%d", h)
	}
}

// stringOf renders v's canonical text form for TO_STRING.
func (d *Dispatcher) stringOf(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "null", nil
	case reflect.Type:
		if name, ok := d.registry.ClassName(x); ok {
			return "class " + name, nil
		}
		return "class " + x.String(), nil
	case *registry.Method:
		ownerName, ok := d.registry.ClassName(x.Owner)
		if !ok {
			ownerName = x.Owner.String()
		}
		return fmt.Sprintf("static method %s.%s", ownerName, x.Name), nil
	case *boxed:
		return fmt.Sprint(x.v), nil
	default:
		return fmt.Sprint(x), nil
	}
}

func (d *Dispatcher) write(f *wire.Frame) error {
	if err := d.writer.WriteFrame(f); err != nil {
		return &ioFault{err}
	}
	return nil
}

func (d *Dispatcher) writeError(appErr error) error {
	return d.write(wire.NewFrame().Tag(wire.ResErrorResult).Text(appErr.Error()))
}

func (d *Dispatcher) writeShutdown() error {
	return d.write(wire.NewFrame().Tag(wire.ResShutdown))
}
