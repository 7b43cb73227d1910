package streamdeck

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LaunchArgs are the arguments the Stream Deck application passes when it
// starts a plugin binary.
type LaunchArgs struct {
	Port          int
	PluginUUID    string
	RegisterEvent string
	Info          string
}

// Validate reports missing launch arguments.
func (a LaunchArgs) Validate() error {
	var missing []string
	if a.Port <= 0 || a.Port > 65535 {
		missing = append(missing, "port")
	}
	if strings.TrimSpace(a.PluginUUID) == "" {
		missing = append(missing, "pluginUUID")
	}
	if strings.TrimSpace(a.RegisterEvent) == "" {
		missing = append(missing, "registerEvent")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing stream deck launch arguments: %s", strings.Join(missing, ", "))
	}
	return nil
}

// URL is the WebSocket endpoint of the Stream Deck application.
func (a LaunchArgs) URL() string {
	return fmt.Sprintf("ws://127.0.0.1:%d", a.Port)
}

var launchFlags = []string{"port", "pluginUUID", "registerEvent", "info"}

// IsLaunch reports whether args look like a Stream Deck plugin launch.
func IsLaunch(args []string) bool {
	for _, a := range args {
		name, _, _ := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if strings.HasPrefix(a, "-") && name == "registerEvent" {
			return true
		}
	}
	return false
}

// NormalizeArgs rewrites the single-dash launch flags (-port 1234) into the
// double-dash form pflag expects. Everything else is left alone.
func NormalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a
		if !strings.HasPrefix(a, "-") || strings.HasPrefix(a, "--") {
			continue
		}
		name, _, _ := strings.Cut(a[1:], "=")
		for _, f := range launchFlags {
			if name == f {
				out[i] = "-" + a
				break
			}
		}
	}
	return out
}

// Info is the subset of the -info JSON ghdeck reads.
type Info struct {
	Application struct {
		Platform string `json:"platform"`
		Version  string `json:"version"`
	} `json:"application"`
	Plugin struct {
		UUID    string `json:"uuid"`
		Version string `json:"version"`
	} `json:"plugin"`
	Devices []Device `json:"devices"`
}

// Device is one connected deck.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type int    `json:"type"`
	Size struct {
		Columns int `json:"columns"`
		Rows    int `json:"rows"`
	} `json:"size"`
}

// ParseInfo decodes the -info argument. An empty string yields a zero Info.
func ParseInfo(raw string) (Info, error) {
	var info Info
	if strings.TrimSpace(raw) == "" {
		return info, nil
	}
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return Info{}, fmt.Errorf("parse info: %w", err)
	}
	return info, nil
}
