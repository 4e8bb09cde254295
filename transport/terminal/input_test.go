package terminal

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/castle-maze/game/engine"
)

func TestKeyReaderNext(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Command
	}{
		{"w", "w", move(engine.Up, false)},
		{"a", "a", move(engine.Left, false)},
		{"s", "s", move(engine.Down, false)},
		{"d", "d", move(engine.Right, false)},
		{"shift w", "W", move(engine.Up, true)},
		{"shift d", "D", move(engine.Right, true)},
		{"arrow up", "\x1b[A", move(engine.Up, false)},
		{"arrow down", "\x1b[B", move(engine.Down, false)},
		{"arrow right", "\x1b[C", move(engine.Right, false)},
		{"arrow left", "\x1b[D", move(engine.Left, false)},
		{"ss3 arrow", "\x1bOA", move(engine.Up, false)},
		{"shift arrow", "\x1b[1;2C", move(engine.Right, true)},
		{"ctrl arrow is not fast", "\x1b[1;5B", move(engine.Down, false)},
		{"restart", "r", Command{Kind: CommandRestart}},
		{"enter restarts", "\r", Command{Kind: CommandRestart}},
		{"quit", "q", Command{Kind: CommandQuit}},
		{"ctrl-c", "\x03", Command{Kind: CommandQuit}},
		{"unknown keys skipped", "xyz1d", move(engine.Right, false)},
		{"unknown escape skipped", "\x1b[2~a", move(engine.Left, false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := NewKeyReader(strings.NewReader(tt.input)).Next()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestKeyReaderSequence(t *testing.T) {
	reader := NewKeyReader(strings.NewReader("w\x1b[1;2Dq"))

	cmd, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, move(engine.Up, false), cmd)

	cmd, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, move(engine.Left, true), cmd)

	cmd, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, CommandQuit, cmd.Kind)

	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestKeyReaderLoneEscape(t *testing.T) {
	_, err := NewKeyReader(strings.NewReader("\x1b")).Next()
	assert.ErrorIs(t, err, io.EOF)
}
