package streamdeck

import (
	"encoding/json"

	"github.com/five82/ghdeck/internal/deck"
)

// Event names used on the plugin socket.
const (
	EventKeyDown                  = "keyDown"
	EventWillAppear               = "willAppear"
	EventWillDisappear            = "willDisappear"
	EventDidReceiveGlobalSettings = "didReceiveGlobalSettings"

	EventSetImage          = "setImage"
	EventSetTitle          = "setTitle"
	EventOpenURL           = "openUrl"
	EventGetGlobalSettings = "getGlobalSettings"
	EventSetGlobalSettings = "setGlobalSettings"
	EventLogMessage        = "logMessage"
)

// targetBoth addresses hardware and software keys.
const targetBoth = 0

// inbound is any message the Stream Deck application sends. Which fields are
// set depends on Event.
type inbound struct {
	Event   string          `json:"event"`
	Action  string          `json:"action,omitempty"`
	Context string          `json:"context,omitempty"`
	Device  string          `json:"device,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type keyPayload struct {
	Coordinates     *deck.Coordinates `json:"coordinates,omitempty"`
	IsInMultiAction bool              `json:"isInMultiAction,omitempty"`
}

type globalSettingsPayload struct {
	Settings json.RawMessage `json:"settings"`
}

// outbound is any message ghdeck sends.
type outbound struct {
	Event   string `json:"event"`
	Context string `json:"context,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

type registration struct {
	Event string `json:"event"`
	UUID  string `json:"uuid"`
}

type imagePayload struct {
	Image  string `json:"image"`
	Target int    `json:"target"`
}

type titlePayload struct {
	Title  string `json:"title"`
	Target int    `json:"target"`
}

type urlPayload struct {
	URL string `json:"url"`
}

type logPayload struct {
	Message string `json:"message"`
}

func (m inbound) button() (deck.Button, error) {
	b := deck.Button{ID: m.Context, Kind: deck.Kind(m.Action)}
	if len(m.Payload) == 0 {
		return b, nil
	}
	var p keyPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return b, err
	}
	if !p.IsInMultiAction {
		b.Coordinates = p.Coordinates
	}
	return b, nil
}
