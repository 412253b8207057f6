// Package bridgeerr defines the typed error taxonomy tsbridge's
// components raise across the transport and dispatcher boundary. Each
// Kind is JSON-serializable so a *zap.SugaredLogger field carrying one
// prints as its name rather than a numeric constant.
package bridgeerr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind categorizes a bridge error.
type Kind int

const (
	// MissingTsserver means discovery of the tsserver binary/script failed.
	MissingTsserver Kind = iota
	// ProtocolSync means a stdout line could not be matched to a pending
	// request, or failed to parse as JSON.
	ProtocolSync
	// CommandFailure means tsserver replied with success=false.
	CommandFailure
	// NoContentAvailable means tsserver returned its "no content available"
	// completion error, which callers treat as an empty result, not a failure.
	NoContentAvailable
	// InvalidDocument means an operation referenced an unknown file or
	// carried a null version.
	InvalidDocument
	// Cancellation means the request was cancelled; not a failure.
	Cancellation
	// TransportDead means the tsserver child process has exited.
	TransportDead
)

var kindNames = [...]string{
	MissingTsserver:     "missing_tsserver",
	ProtocolSync:        "protocol_sync",
	CommandFailure:      "command_failure",
	NoContentAvailable:  "no_content_available",
	InvalidDocument:     "invalid_document",
	Cancellation:        "cancellation",
	TransportDead:       "transport_dead",
}

// String renders the Kind's stable name, used both for display and as
// the sole representation MarshalJSON produces.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// MarshalJSON renders the Kind as its string name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON parses a Kind from its string name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range kindNames {
		if name == s {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("bridgeerr: unknown kind %q", s)
}

// Error is a typed bridge error carrying enough context to both log
// structurally and decide LSP-facing propagation per kind.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Command string `json:"command,omitempty"`
	File    string `json:"file,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("tsbridge: %s: %s (command=%s)", e.Kind, e.Message, e.Command)
	}
	return fmt.Sprintf("tsbridge: %s: %s", e.Kind, e.Message)
}

// MarshalJSON gives *Error the same field-friendly shape as Kind so it
// can be passed directly to zap.Error/zap.Any and print as an object.
func (e *Error) MarshalJSON() ([]byte, error) {
	type alias Error
	return json.Marshal((*alias)(e))
}

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithCommand attaches the tsserver command name that produced the error.
func (e *Error) WithCommand(command string) *Error {
	e.Command = command
	return e
}

// WithFile attaches the file path the error concerns.
func (e *Error) WithFile(file string) *Error {
	e.File = file
	return e
}

// Is reports whether err is a bridge Error of the given kind, unwrapping
// as needed for errors.Is compatibility.
func Is(err error, kind Kind) bool {
	var be *Error
	if !errors.As(err, &be) {
		return false
	}
	return be.Kind == kind
}
