package terminal

import (
	"bufio"
	"errors"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/wricardo/castle-maze/game/engine"
)

// CommandKind is what a key press asks for
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandMove
	CommandRestart
	CommandQuit
)

// Command is a decoded key press
type Command struct {
	Kind      CommandKind
	Direction engine.Direction
	Fast      bool
}

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

// KeyReader decodes raw terminal bytes into commands
type KeyReader struct {
	r *bufio.Reader
}

// NewKeyReader wraps r. r is expected to deliver bytes as they are typed,
// which means a terminal in raw mode.
func NewKeyReader(r io.Reader) *KeyReader {
	return &KeyReader{r: bufio.NewReader(r)}
}

// Next blocks until a key maps to a command. Unknown keys are skipped.
func (k *KeyReader) Next() (Command, error) {
	for {
		b, err := k.r.ReadByte()
		if err != nil {
			return Command{}, err
		}

		if b == keyEscape {
			cmd, ok, err := k.escape()
			if err != nil {
				return Command{}, err
			}
			if ok {
				return cmd, nil
			}
			continue
		}

		if cmd, ok := decodeKey(b); ok {
			return cmd, nil
		}
	}
}

func decodeKey(b byte) (Command, bool) {
	switch b {
	case 'w':
		return move(engine.Up, false), true
	case 'a':
		return move(engine.Left, false), true
	case 's':
		return move(engine.Down, false), true
	case 'd':
		return move(engine.Right, false), true
	case 'W':
		return move(engine.Up, true), true
	case 'A':
		return move(engine.Left, true), true
	case 'S':
		return move(engine.Down, true), true
	case 'D':
		return move(engine.Right, true), true
	case 'r', 'R', '\r', '\n':
		return Command{Kind: CommandRestart}, true
	case 'q', 'Q', keyCtrlC:
		return Command{Kind: CommandQuit}, true
	}
	return Command{}, false
}

func move(dir engine.Direction, fast bool) Command {
	return Command{Kind: CommandMove, Direction: dir, Fast: fast}
}

// escape decodes CSI and SS3 arrow sequences. Shift+arrow arrives as
// ESC [ 1 ; 2 X and counts as a fast move. A lone ESC is ignored.
func (k *KeyReader) escape() (Command, bool, error) {
	if k.r.Buffered() == 0 {
		return Command{}, false, nil
	}
	b2, err := k.r.ReadByte()
	if err != nil {
		return Command{}, false, err
	}
	if b2 != '[' && b2 != 'O' {
		k.r.UnreadByte()
		return Command{}, false, nil
	}

	fast := false
	for {
		b, err := k.r.ReadByte()
		if err != nil {
			return Command{}, false, err
		}
		switch {
		case b >= '0' && b <= '9':
			// modifier 2 is Shift
			if b == '2' {
				fast = true
			}
			continue
		case b == ';':
			continue
		}

		switch b {
		case 'A':
			return move(engine.Up, fast), true, nil
		case 'B':
			return move(engine.Down, fast), true, nil
		case 'C':
			return move(engine.Right, fast), true, nil
		case 'D':
			return move(engine.Left, fast), true, nil
		}
		return Command{}, false, nil
	}
}

// ErrNotTerminal is returned by MakeRaw when stdin is not a terminal
var ErrNotTerminal = errors.New("stdin is not a terminal")

// MakeRaw puts stdin into raw mode and returns a function restoring it
func MakeRaw() (restore func(), err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}, err
	}
	return func() { term.Restore(fd, state) }, nil
}
