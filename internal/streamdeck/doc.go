// Package streamdeck connects ghdeck to the Elgato Stream Deck application as a
// plugin.
//
// The application starts the plugin binary with -port, -pluginUUID,
// -registerEvent and -info. The plugin dials ws://127.0.0.1:<port>, sends the
// registration message and from then on exchanges JSON events over the socket.
//
// A Plugin plays two roles for the rest of ghdeck. As a deck.Host it tracks the
// buttons the application reports through willAppear/willDisappear and turns
// SetImage, SetTitle and OpenURL into setImage, setTitle and openUrl events.
// Writes go through a deck.DedupDisplay so an unchanged key costs nothing. As
// a settings.Store it holds the plugin's global settings: getGlobalSettings is
// sent on connect, every didReceiveGlobalSettings is diffed against the
// previous value and delivered to subscribers, and Set sends
// setGlobalSettings.
//
// All writes share one mutex because a WebSocket connection allows a single
// concurrent writer. Events are handled one at a time on the goroutine that
// calls Run.
//
// LogHandler forwards warnings and errors to the application's plugin log.
package streamdeck
