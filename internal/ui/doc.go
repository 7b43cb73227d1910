// Package ui is the terminal deck: a Bubble Tea program that stands in for a
// Stream Deck when none is attached.
//
// # Architecture Overview
//
// Host implements deck.Host over a rows x columns grid parsed from the
// configured layout string. The same actions that drive the hardware write to
// it: SetImage records which embedded icon an image data URI encodes (see
// icons.Identify) and SetTitle records the label. Every write signals a
// channel the program waits on, so the view redraws after each render pass
// without polling.
//
// Model owns presentation only. Key presses are routed back through the
// deck.Dispatcher exactly as Stream Deck keyDown events are, which keeps
// pagination and filter behavior in one place.
//
// # Package Structure
//
//   - layout.go: layout parsing and cell geometry
//   - host.go: the deck.Host implementation
//   - model.go: Bubble Tea model, messages and commands
//   - view.go: header, key grid, detail line and log footer rendering
//   - keys.go: key bindings (bubbles/key) and help.KeyMap
//   - theme.go: color themes (Dracula, Slate)
//   - open.go: open URLs with the platform handler
//
// # Keyboard Shortcuts
//
//   - arrows or h/j/k/l: move focus
//   - enter or space: press the focused key
//   - y: copy the focused item's URL to the clipboard
//   - r: refresh now
//   - T: cycle theme
//   - ?: toggle help
//   - q or ctrl+c: quit
//
// # Log Footer
//
// Stderr belongs to the terminal, so the process logs to a file. The footer
// shows its last few lines, re-read once a second via internal/logtail.
package ui
