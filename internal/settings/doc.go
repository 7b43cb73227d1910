// Package settings holds the user-editable ghdeck state: access token, label
// wrapping, active filter and pagination offset.
//
// Two Store implementations live here. Memory backs tests and one-shot
// commands. File persists to ~/.config/ghdeck/settings.toml (or a .json/.jsonc
// file, parsed with comments allowed) and, while Watch runs, treats edits made
// by other processes as changes. The Stream Deck plugin brings its own store in
// package streamdeck.
//
// Every update is reported as a Change with one flag per field, so consumers
// react to exactly what moved instead of comparing whole values themselves.
package settings
