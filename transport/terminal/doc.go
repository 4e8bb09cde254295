// Package terminal plays the castle maze in a local terminal.
//
// Renderer turns snapshots into coloured frames with gookit/color and looks
// up its labels in a gettext catalogue. KeyReader decodes raw key presses:
// arrows or WASD move, Shift (or uppercase WASD) moves fast, R or Enter
// restarts, Q or Ctrl-C quits. UI ties both to a game service and redraws
// whenever the service publishes a snapshot.
//
// Usage:
//
//	ui := terminal.NewUI(terminal.NewRenderer(os.Stdout))
//	games := service.NewGameService(sessions, configs, service.WithNotifier(ui))
//	restore, _ := terminal.MakeRaw()
//	defer restore()
//	final, err := ui.Play(ctx, games, "castle", os.Stdin)
package terminal
