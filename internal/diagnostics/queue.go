// Package diagnostics aggregates the three tsserver diagnostic event
// kinds (semantic, syntactic, suggestion) into the single, ordered list
// each textDocument/publishDiagnostics notification carries. It is pure
// aggregation: debouncing the request that produces these events lives
// in the dispatcher (internal/server), not here.
package diagnostics

import (
	"sync"

	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/translate"
	"github.com/nodets/tsbridge/internal/tsproto"
)

// Kind identifies which of the three tsserver diagnostic events a
// bucket holds.
type Kind int

const (
	Syntax Kind = iota
	Semantic
	Suggestion
	kindCount
)

// Queue holds, per file, the last-received diagnostics of each Kind,
// and produces the fixed-order concatenation that gets published.
type Queue struct {
	mu      sync.Mutex
	buckets map[string][kindCount][]protocol.Diagnostic
}

// NewQueue creates an empty diagnostic queue.
func NewQueue() *Queue {
	return &Queue{buckets: make(map[string][kindCount][]protocol.Diagnostic)}
}

// Update replaces the bucket for (file, kind) and returns the file's
// current published list: the concatenation of [syntax, semantic,
// suggestion], matching spec.md §4.4's fixed order.
func (q *Queue) Update(file string, kind Kind, diags []tsproto.Diagnostic) (string, []protocol.Diagnostic) {
	converted := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		converted = append(converted, toLSPDiagnostic(d))
	}

	q.mu.Lock()
	bucket := q.buckets[file]
	bucket[kind] = converted
	q.buckets[file] = bucket
	published := concat(bucket)
	q.mu.Unlock()

	return file, published
}

// Clear removes every bucket for file and returns the empty list that
// must be published (spec.md §3 DiagnosticBucket: "cleared when the
// file closes").
func (q *Queue) Clear(file string) []protocol.Diagnostic {
	q.mu.Lock()
	delete(q.buckets, file)
	q.mu.Unlock()
	return []protocol.Diagnostic{}
}

func concat(bucket [kindCount][]protocol.Diagnostic) []protocol.Diagnostic {
	total := 0
	for _, b := range bucket {
		total += len(b)
	}
	out := make([]protocol.Diagnostic, 0, total)
	for _, b := range bucket {
		out = append(out, b...)
	}
	return out
}

func toLSPDiagnostic(d tsproto.Diagnostic) protocol.Diagnostic {
	sev := severityFor(d.Category)
	diag := protocol.Diagnostic{
		Range: protocol.Range{
			Start: translate.ToPosition(d.Start),
			End:   translate.ToPosition(d.End),
		},
		Severity: sev,
		Message:  d.Text,
		Source:   "tsserver",
	}
	if d.Code != 0 {
		diag.Code = d.Code
	}
	if d.ReportsUnnecessary {
		diag.Tags = append(diag.Tags, protocol.DiagnosticTagUnnecessary)
	}
	if d.ReportsDeprecated {
		diag.Tags = append(diag.Tags, protocol.DiagnosticTagDeprecated)
	}
	for _, rel := range d.RelatedInformation {
		diag.RelatedInformation = append(diag.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: translate.ToLocation(rel.Span),
			Message:  rel.Message,
		})
	}
	return diag
}

func severityFor(category string) protocol.DiagnosticSeverity {
	switch category {
	case tsproto.CategoryError:
		return protocol.DiagnosticSeverityError
	case tsproto.CategoryWarning:
		return protocol.DiagnosticSeverityWarning
	case tsproto.CategorySuggestion:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

// EventKindFor maps a tsserver diagnostic event name to its Kind.
func EventKindFor(event string) (Kind, bool) {
	switch event {
	case tsproto.EventSyntaxDiag:
		return Syntax, true
	case tsproto.EventSemanticDiag:
		return Semantic, true
	case tsproto.EventSuggestionDiag:
		return Suggestion, true
	default:
		return 0, false
	}
}
