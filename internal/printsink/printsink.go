// Package printsink implements the bridge worker's output interceptor: a
// replacement for the host's textual output primitive that turns every
// write into a framed PRINT_OUT record instead of bytes on the real stdout.
//
// A Go process has no single overloaded "print" primitive to monkey-patch,
// so registered static methods take a Sink argument and call it instead of
// fmt.Print*; each Sink method corresponds to one of the canonical overload
// classes a textual output surface exposes (bool, char, numeric, string,
// stringer).
package printsink

import (
	"fmt"
	"strconv"

	"github.com/gvm-project/reflectbridge/internal/wire"
)

// Sink is the interception point. Each non-Ln method frames its argument's
// canonical text form as-is; each Ln variant appends the platform newline
// before framing, matching a newline-terminating overload.
type Sink interface {
	Bool(v bool)
	BoolLn(v bool)
	Rune(v rune)
	RuneLn(v rune)
	Int64(v int64)
	Int64Ln(v int64)
	Float64(v float64)
	Float64Ln(v float64)
	String(v string)
	StringLn(v string)
	Stringer(v fmt.Stringer)
	StringerLn(v fmt.Stringer)
}

// FramedSink is the Sink the dispatcher installs for the duration of a
// command. Every call emits exactly one PRINT_OUT frame through w; frames
// are built and written atomically (see wire.Frame), so a PRINT_OUT frame
// can never interleave with another frame on the same stream.
type FramedSink struct {
	w   *wire.Writer
	err error
}

// NewFramedSink returns a Sink that frames through w.
func NewFramedSink(w *wire.Writer) *FramedSink {
	return &FramedSink{w: w}
}

// Err reports the first write failure encountered, if any. A non-nil Err
// means the underlying stream is broken; the dispatcher treats this as a
// fatal I/O error and terminates rather than continuing the command loop.
func (s *FramedSink) Err() error {
	return s.err
}

func (s *FramedSink) Bool(v bool)   { s.emit(strconv.FormatBool(v), false) }
func (s *FramedSink) BoolLn(v bool) { s.emit(strconv.FormatBool(v), true) }

func (s *FramedSink) Rune(v rune)   { s.emit(string(v), false) }
func (s *FramedSink) RuneLn(v rune) { s.emit(string(v), true) }

func (s *FramedSink) Int64(v int64)   { s.emit(strconv.FormatInt(v, 10), false) }
func (s *FramedSink) Int64Ln(v int64) { s.emit(strconv.FormatInt(v, 10), true) }

func (s *FramedSink) Float64(v float64)   { s.emit(strconv.FormatFloat(v, 'g', -1, 64), false) }
func (s *FramedSink) Float64Ln(v float64) { s.emit(strconv.FormatFloat(v, 'g', -1, 64), true) }

func (s *FramedSink) String(v string)   { s.emit(v, false) }
func (s *FramedSink) StringLn(v string) { s.emit(v, true) }

func (s *FramedSink) Stringer(v fmt.Stringer)   { s.emit(v.String(), false) }
func (s *FramedSink) StringerLn(v fmt.Stringer) { s.emit(v.String(), true) }

// emit builds one PRINT_OUT frame and writes it with a single call. No
// explicit flush is needed beyond that single write: the underlying stream
// is the process's real stdout (unbuffered at the frame boundary), so a
// partial-line write reaches the driver as soon as this call returns.
func (s *FramedSink) emit(text string, newlineTerminated bool) {
	if s.err != nil {
		return
	}
	if newlineTerminated {
		text += "\n"
	}
	if err := s.w.WriteFrame(wire.NewFrame().Tag(wire.ResPrintOut).Text(text)); err != nil {
		s.err = err
	}
}
