// Package termsource implements a portable, no-root, no-permission-dialog
// development backend: it puts the controlling terminal into raw mode
// and decodes keystrokes typed directly into that terminal as Events.
// It exists for the `--console` demo mode and for exercising the full
// Matcher→Engine pipeline on a machine with no X11/Win32/macOS
// accessibility access at all; it is not meant to expand text into
// other applications, since it only observes its own terminal's input.
package termsource

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dshills/expando/internal/event"
)

// Source reads raw terminal input and decodes it into Events.
type Source struct {
	in       *os.File
	oldState *term.State
	reader   *bufio.Reader
}

// New builds a Source reading from the given file (os.Stdin in
// practice; parameterized for tests).
func New(in *os.File) *Source {
	return &Source{in: in, reader: bufio.NewReader(in)}
}

// CheckEnvironment reports whether in is a terminal that can be put into
// raw mode.
func (s *Source) CheckEnvironment() error {
	if !term.IsTerminal(int(s.in.Fd())) {
		return fmt.Errorf("termsource: %s is not a terminal", s.in.Name())
	}
	return nil
}

// Run puts the terminal into raw mode and decodes bytes into Events
// until ctx is canceled or the input stream ends.
func (s *Source) Run(ctx context.Context, emit func(event.Event)) error {
	oldState, err := term.MakeRaw(int(s.in.Fd()))
	if err != nil {
		return fmt.Errorf("termsource: MakeRaw: %w", err)
	}
	s.oldState = oldState

	errCh := make(chan error, 1)
	go func() { errCh <- s.readLoop(emit) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Source) readLoop(emit func(event.Event)) error {
	for {
		b, err := s.reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("termsource: read: %w", err)
		}

		switch b {
		case 0x7f, 0x08: // DEL or BS
			emit(event.Mod(event.BACKSPACE))
		case '\r', '\n':
			emit(event.Mod(event.ENTER))
		case '\t':
			emit(event.Mod(event.TAB))
		case 0x1b: // ESC, possibly the start of a CSI arrow-key sequence
			if mod, ok := s.decodeEscapeSequence(); ok {
				emit(event.Mod(mod))
			} else {
				emit(event.Mod(event.ESC))
			}
		case 0x03: // Ctrl+C: the --console demo's own quit key
			emit(event.Mod(event.CTRL))
		default:
			r, size := s.decodeRune(b)
			if size > 0 {
				emit(event.Char(string(r)))
			}
		}
	}
}

// decodeEscapeSequence consumes a CSI arrow-key sequence ("\x1b[A" etc.)
// if one follows an ESC byte. If the next bytes don't form a recognized
// sequence, it returns false and the caller treats the lone ESC as-is;
// any buffered-but-unconsumed bytes are simply decoded on the next call.
func (s *Source) decodeEscapeSequence() (event.Modifier, bool) {
	peeked, err := s.reader.Peek(2)
	if err != nil || peeked[0] != '[' {
		return 0, false
	}
	switch peeked[1] {
	case 'A':
		s.reader.Discard(2)
		return event.UP, true
	case 'B':
		s.reader.Discard(2)
		return event.DOWN, true
	case 'C':
		s.reader.Discard(2)
		return event.RIGHT, true
	case 'D':
		s.reader.Discard(2)
		return event.LEFT, true
	default:
		return 0, false
	}
}

// decodeRune decodes a UTF-8 sequence starting with the already-read
// byte b, reading continuation bytes from reader as needed.
func (s *Source) decodeRune(b byte) (rune, int) {
	switch {
	case b < 0x80:
		return rune(b), 1
	case b&0xE0 == 0xC0:
		return s.decodeMultibyte(b, 1)
	case b&0xF0 == 0xE0:
		return s.decodeMultibyte(b, 2)
	case b&0xF8 == 0xF0:
		return s.decodeMultibyte(b, 3)
	default:
		return 0, 0
	}
}

func (s *Source) decodeMultibyte(first byte, continuation int) (rune, int) {
	buf := make([]byte, continuation+1)
	buf[0] = first
	for i := 0; i < continuation; i++ {
		b, err := s.reader.ReadByte()
		if err != nil {
			return 0, 0
		}
		buf[i+1] = b
	}
	r := []rune(string(buf))
	if len(r) == 0 {
		return 0, 0
	}
	return r[0], continuation + 1
}

// Close restores the terminal's original mode.
func (s *Source) Close() error {
	if s.oldState == nil {
		return nil
	}
	return term.Restore(int(s.in.Fd()), s.oldState)
}
