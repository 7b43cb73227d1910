// Package config loads ghdeck's TOML configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/ghdeck/config.toml (default)
//  3. If the config file doesn't exist, fall back to built-in defaults
//  4. If the file exists but fields are missing or empty, use defaults
//
// A file that exists but does not parse, or that describes an impossible deck
// layout, is an error: the process refuses to start rather than guess.
//
// # Default Values
//
//   - API URL: https://api.github.com
//   - Poll interval: 15 seconds
//   - Search page size: API default (30)
//   - Settings file: ~/.config/ghdeck/settings.toml
//   - Log file: ~/.local/state/ghdeck/ghdeck.log
//   - Log level: info
//   - Deck: 3 rows x 5 columns, ten monitor keys over a control row
//
// # TOML Format
//
//	api_url = "https://api.github.com"
//	poll_seconds = 15
//	search_page_size = 0
//	settings_path = "~/.config/ghdeck/settings.toml"
//	log_file = "~/.local/state/ghdeck/ghdeck.log"
//	log_level = "info"
//
//	[deck]
//	rows = 3
//	columns = 5
//	layout = ["MMMMM", "MMMMM", "<.PF>"]
//
// # Path Expansion
//
// Paths beginning with ~ are expanded to the user's home directory and made
// absolute.
package config
