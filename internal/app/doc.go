// Package app is the composition root of ghdeck.
//
// # Overview
//
// This package wires together configuration, logging, the settings store, the
// GitHub source, the cached snapshot and a deck host. The same Core serves
// both hosts; only the host and the settings store differ.
//
// # Entry Points
//
//   - RunTUI: terminal deck. Settings come from the settings file, which is
//     watched for edits. Logs go to the log file shown in the UI footer.
//   - RunPlugin: Stream Deck plugin. The plugin connection is both the host and
//     the settings store. Warnings are also forwarded to the Stream Deck log.
//   - Snapshot: one fetch cycle, for scripting.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Wire()     │ Build the core
//	└──────┬───────┘
//	       │
//	       ├─────> source.New()        GitHub searches behind a rotatable token
//	       ├─────> state.NewStore()    Cached snapshot + poll ticker
//	       ├─────> actions.Register()  Controls bound to the host
//	       └─────> Settings.Subscribe  Token and render changes
//
//	Start():
//	┌─────────────────────────────────────────┐
//	│ InvalidateCredential(token from store)  │
//	│ Store.Start()                           │
//	│  ├─> Refresh() now and every interval   │
//	│  └─> observers redraw the deck          │
//	└─────────────────────────────────────────┘
//
// # Settings Changes
//
// A new access token replaces the API client, forgets the resolved user and
// triggers an immediate refresh. A wrap, filter or offset change only asks the
// store for a coalesced re-render of the cached snapshot.
//
// # Error Handling
//
// Fatal errors (returned):
//   - Invalid config file or log level
//   - Log file cannot be opened
//   - Stream Deck connection cannot be established
//
// Recoverable errors (logged, polling continues):
//   - GitHub request failures, including rate limiting
//   - Unparseable settings file (defaults are used)
package app
