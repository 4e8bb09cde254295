package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"

	"github.com/wricardo/castle-maze/game/engine"
)

const (
	clearScreen = "\x1b[H\x1b[2J"

	// overworld units per drawn character
	overworldScale = 2

	defaultDarkRadius = 2
)

// Icon constants
const (
	IconPlayer     = "@"
	IconWall       = "▒"
	IconFloor      = "·"
	IconExit       = "E"
	IconSecret     = "S"
	IconCoin       = "●"
	IconTrap       = "x"
	IconHazard     = "H"
	IconDark       = " "
	IconGrass      = ","
	IconCastle     = "█"
	IconDoorClosed = "▣"
	IconDoorOpen   = "□"
	IconLife       = "♥"
	IconLifeLost   = "♡"
)

// Renderer draws snapshots as coloured text frames
type Renderer struct {
	out        io.Writer
	po         *gotext.Po
	overworld  engine.OverworldConfig
	darkRadius int

	colorTitle     color.Style
	colorWall      color.Style
	colorFloor     color.Style
	colorExitOpen  color.Style
	colorExitShut  color.Style
	colorSecret    color.Style
	colorCoin      color.Style
	colorTrap      color.Style
	colorHazard    color.Style
	colorPlayer    color.Style
	colorDoor      color.Style
	colorGrass     color.Style
	colorAlert     color.Style
	colorSubtle    color.Style
	colorHighlight color.Style
}

// RendererOption configures a Renderer
type RendererOption func(*Renderer)

// WithCatalog replaces the built-in labels
func WithCatalog(po *gotext.Po) RendererOption {
	return func(r *Renderer) {
		r.po = po
	}
}

// WithOverworld sets the overworld geometry used for the outside view
func WithOverworld(ow engine.OverworldConfig) RendererOption {
	return func(r *Renderer) {
		r.overworld = ow
	}
}

// WithDarkRadius sets how far the player sees on dark levels
func WithDarkRadius(radius int) RendererOption {
	return func(r *Renderer) {
		r.darkRadius = radius
	}
}

// NewRenderer creates a renderer writing to out
func NewRenderer(out io.Writer, opts ...RendererOption) *Renderer {
	r := &Renderer{
		out:        out,
		overworld:  engine.DefaultOverworld(),
		darkRadius: defaultDarkRadius,

		colorTitle:     color.Style{color.FgCyan, color.OpBold},
		colorWall:      color.Style{color.FgGray},
		colorFloor:     color.Style{color.FgGray, color.OpBold},
		colorExitOpen:  color.Style{color.FgGreen, color.OpBold},
		colorExitShut:  color.Style{color.FgRed},
		colorSecret:    color.Style{color.FgMagenta},
		colorCoin:      color.Style{color.FgYellow, color.OpBold},
		colorTrap:      color.Style{color.FgRed},
		colorHazard:    color.Style{color.FgRed, color.OpBold},
		colorPlayer:    color.Style{color.FgGreen, color.BgBlack, color.OpBold},
		colorDoor:      color.Style{color.FgYellow, color.OpBold},
		colorGrass:     color.Style{color.FgGreen},
		colorAlert:     color.Style{color.FgRed, color.OpBold},
		colorSubtle:    color.Style{color.FgGray, color.OpBold},
		colorHighlight: color.Style{color.FgMagenta, color.OpBold},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.po == nil {
		r.po = NewCatalog(nil)
	}
	return r
}

// Draw clears the screen and writes the frame for snap
func (r *Renderer) Draw(snap *engine.Snapshot) error {
	_, err := io.WriteString(r.out, clearScreen+strings.ReplaceAll(r.Frame(snap), "\n", "\r\n"))
	return err
}

// Frame builds the full text frame for a snapshot
func (r *Renderer) Frame(snap *engine.Snapshot) string {
	var b strings.Builder

	b.WriteString(r.colorTitle.Sprint(r.po.Get("TITLE")))
	if snap.Campaign != "" {
		b.WriteString(r.colorSubtle.Sprint(" · " + snap.Campaign))
	}
	b.WriteString("\n")
	b.WriteString(r.hud(snap))
	b.WriteString("\n\n")

	if snap.Mode == engine.Overworld {
		for _, line := range r.overworldRows(snap) {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if snap.DoorOpen {
			b.WriteString(r.colorDoor.Sprint(r.po.Get("DOOR_OPEN")))
		} else {
			b.WriteString(r.po.Get("DOOR_CLOSED"))
		}
		b.WriteString("\n")
	} else {
		for _, line := range r.mazeRows(snap) {
			b.WriteString(line)
			b.WriteString("\n")
		}
		if snap.Dark {
			b.WriteString("\n")
			b.WriteString(r.colorSubtle.Sprint(r.po.Get("DARK_LEVEL")))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch snap.Flash {
	case engine.FlashTrap:
		b.WriteString(r.colorAlert.Sprint(r.po.Get("FLASH_TRAP")) + "\n")
	case engine.FlashHazard:
		b.WriteString(r.colorAlert.Sprint(r.po.Get("FLASH_HAZARD")) + "\n")
	}
	switch {
	case snap.Won:
		b.WriteString(r.colorExitOpen.Sprint(r.po.Get("VICTORY")) + "\n")
	case snap.GameOver:
		b.WriteString(r.colorAlert.Sprint(r.po.Get("GAME_OVER")) + "\n")
	case snap.Message != "":
		b.WriteString(snap.Message + "\n")
	}

	b.WriteString(r.colorSubtle.Sprint(r.po.Get("CONTROLS")))
	b.WriteString("\n")
	return b.String()
}

func (r *Renderer) hud(snap *engine.Snapshot) string {
	parts := []string{}
	if snap.Mode == engine.Overworld {
		parts = append(parts, r.colorHighlight.Sprint(r.po.Get("OVERWORLD")))
	}
	parts = append(parts,
		fmt.Sprintf(r.po.Get("HUD_LEVEL"), snap.Level, snap.Levels, snap.LevelName),
		r.colorCoin.Sprint(fmt.Sprintf(r.po.Get("HUD_COINS"), snap.Coins, snap.RequiredCoins)),
		r.po.Get("HUD_LIVES")+" "+r.lives(snap),
		fmt.Sprintf(r.po.Get("HUD_MOVES"), snap.TotalMoves),
	)
	if snap.Mode == engine.Maze {
		if snap.GateOpen {
			parts = append(parts, r.colorExitOpen.Sprint(r.po.Get("GATE_OPEN")))
		} else {
			parts = append(parts, r.colorExitShut.Sprint(r.po.Get("GATE_LOCKED")))
		}
	}

	line := strings.Join(parts, " | ")
	if snap.Flash != engine.FlashNone {
		return r.colorAlert.Sprint("! ") + line
	}
	return line
}

func (r *Renderer) lives(snap *engine.Snapshot) string {
	lost := snap.MaxLives - snap.Lives
	if lost < 0 {
		lost = 0
	}
	return r.colorHazard.Sprint(strings.Repeat(IconLife, snap.Lives)) + r.colorSubtle.Sprint(strings.Repeat(IconLifeLost, lost))
}

// mazeRows styles each cell of the rendered maze
func (r *Renderer) mazeRows(snap *engine.Snapshot) []string {
	plain := snap.Render(r.darkRadius)
	out := make([]string, len(plain))
	for i, row := range plain {
		var b strings.Builder
		for _, ch := range []byte(row) {
			b.WriteString(r.mazeCell(ch, snap.GateOpen))
		}
		out[i] = b.String()
	}
	return out
}

func (r *Renderer) mazeCell(ch byte, gateOpen bool) string {
	switch ch {
	case engine.WallChar:
		return r.colorWall.Sprint(IconWall)
	case engine.OpenChar:
		return r.colorFloor.Sprint(IconFloor)
	case engine.ExitChar:
		if gateOpen {
			return r.colorExitOpen.Sprint(IconExit)
		}
		return r.colorExitShut.Sprint(IconExit)
	case engine.SecretChar:
		return r.colorSecret.Sprint(IconSecret)
	case 'o':
		return r.colorCoin.Sprint(IconCoin)
	case 'x':
		return r.colorTrap.Sprint(IconTrap)
	case 'H':
		return r.colorHazard.Sprint(IconHazard)
	case '@':
		return r.colorPlayer.Sprint(IconPlayer)
	}
	return IconDark
}

// overworldRows draws the field in front of the castle. The top row is the
// castle wall and the door region is cut into it.
func (r *Renderer) overworldRows(snap *engine.Snapshot) []string {
	ow := r.overworld
	cols := (ow.Max.X-ow.Min.X)/overworldScale + 1
	rows := (ow.Max.Y-ow.Min.Y)/overworldScale + 1
	playerCol := (snap.Overworld.X - ow.Min.X) / overworldScale
	playerRow := (snap.Overworld.Y - ow.Min.Y) / overworldScale

	out := make([]string, rows)
	for row := 0; row < rows; row++ {
		var b strings.Builder
		y := ow.Min.Y + row*overworldScale
		for col := 0; col < cols; col++ {
			x := ow.Min.X + col*overworldScale
			inDoor := x >= ow.DoorMin.X && x <= ow.DoorMax.X && y >= ow.DoorMin.Y && y <= ow.DoorMax.Y
			switch {
			case row == playerRow && col == playerCol:
				b.WriteString(r.colorPlayer.Sprint(IconPlayer))
			case inDoor && snap.DoorOpen:
				b.WriteString(r.colorDoor.Sprint(IconDoorOpen))
			case inDoor:
				b.WriteString(r.colorDoor.Sprint(IconDoorClosed))
			case y < ow.DoorMin.Y:
				b.WriteString(r.colorWall.Sprint(IconCastle))
			default:
				b.WriteString(r.colorGrass.Sprint(IconGrass))
			}
		}
		out[row] = b.String()
	}
	return out
}

// String renders a snapshot without colour codes
func (r *Renderer) String(snap *engine.Snapshot) string {
	return color.ClearCode(r.Frame(snap))
}
