// Package tsproto defines the wire shapes of tsserver's JSON-over-stdio
// protocol: the request/response/event envelope and the per-command
// argument and body types the bridge actually exercises. Each type here
// is a tagged, total reimplementation of a tsserver structural type —
// nothing is inferred at runtime by field probing.
package tsproto

import "github.com/segmentio/encoding/json"

// Request is the shape of every outbound message: {"seq":N,"type":
// "request","command":C,"arguments":A}. Notifications reuse the same
// shape; tsserver does not distinguish them at the framing level, only
// by whether the command name expects a reply.
type Request struct {
	Seq       int         `json:"seq"`
	Type      string      `json:"type"`
	Command   string      `json:"command"`
	Arguments interface{} `json:"arguments,omitempty"`
}

// Response is the shape of a direct reply to a Request.
type Response struct {
	Seq        int             `json:"seq"`
	Type       string          `json:"type"`
	RequestSeq int             `json:"request_seq"`
	Success    bool            `json:"success"`
	Command    string          `json:"command"`
	Message    string          `json:"message,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// Event is the shape of an unsolicited tsserver message: diagnostics,
// requestCompleted, telemetry, and similar.
type Event struct {
	Seq   int             `json:"seq"`
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Body  json.RawMessage `json:"body,omitempty"`
}

// MessageEnvelope is the minimal shape shared by every inbound line,
// enough to route to Response or Event decoding without double-parsing
// the body.
type MessageEnvelope struct {
	Seq  int    `json:"seq"`
	Type string `json:"type"`
}

const (
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeEvent    = "event"
)

// EventRequestCompleted signals a request finished with no direct
// response body (e.g. "geterr"); its body carries the originating seq.
const EventRequestCompleted = "requestCompleted"

// RequestCompletedBody is the body of a requestCompleted event.
type RequestCompletedBody struct {
	RequestSeq int `json:"request_seq"`
}

const (
	EventSemanticDiag   = "semanticDiag"
	EventSyntaxDiag     = "syntaxDiag"
	EventSuggestionDiag = "suggestionDiag"
)

// DiagEventBody is the body of the three diagnostic event kinds.
type DiagEventBody struct {
	File        string       `json:"file"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}
