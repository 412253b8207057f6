package server

import (
	"encoding/json"
	"time"

	"github.com/nodets/tsbridge/internal/diagnostics"
	"github.com/nodets/tsbridge/internal/translate"
	"github.com/nodets/tsbridge/internal/tsproto"
)

// scheduleDiagnostics resets the 200ms debounce timer for a geterr
// request, per spec.md §5: only one outstanding geterr exists at a
// time, and every document-changing event restarts the quiescence
// window.
func (s *Server) scheduleDiagnostics(path string) {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(diagnosticsDebounce, func() {
		s.fireGeterr()
	})
	_ = path
}

// interrupt cancels any in-flight geterr, runs fn, then reschedules
// diagnostics — the wrapper spec.md §5 requires around completion,
// hover, signatureHelp, and completionResolve reads.
func (s *Server) interrupt(fn func()) {
	s.debounceMu.Lock()
	pending := s.pendingGeterr
	s.debounceMu.Unlock()

	if pending != nil {
		pending.Cancel()
	}

	fn()

	s.debounceMu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(diagnosticsDebounce, func() {
		s.fireGeterr()
	})
	s.debounceMu.Unlock()
}

func (s *Server) fireGeterr() {
	files := s.openFilePaths()
	if len(files) == 0 {
		return
	}

	s.debounceMu.Lock()
	prior := s.pendingGeterr
	s.debounceMu.Unlock()
	if prior != nil {
		prior.Cancel()
	}

	future, err := s.transport.Request("geterr", map[string]interface{}{"files": files, "delay": 0})
	if err != nil {
		s.logger.Warnw("tsbridge: geterr request failed", "error", err)
		return
	}

	s.debounceMu.Lock()
	s.pendingGeterr = future
	s.debounceMu.Unlock()

	go func() {
		_, _ = future.Result()
		s.debounceMu.Lock()
		if s.pendingGeterr == future {
			s.pendingGeterr = nil
		}
		s.debounceMu.Unlock()
	}()
}

func (s *Server) openFilePaths() []string {
	// mirror.Set tracks access order, not insertion enumeration, so
	// geterr is scoped to the most recently touched document — the one
	// whose diagnostics the editor is actually waiting on.
	if path, ok := s.mirror.MostRecentPath(); ok {
		return []string{path}
	}
	return nil
}

// handleTsserverEvent routes an unsolicited tsserver event: the three
// diagnostic kinds update the queue and publish, everything else is
// logged and dropped.
func (s *Server) handleTsserverEvent(ev tsproto.Event) {
	kind, ok := diagnostics.EventKindFor(ev.Event)
	if !ok {
		s.logger.Debugw("tsbridge: unhandled tsserver event", "event", ev.Event)
		return
	}

	var body tsproto.DiagEventBody
	if err := json.Unmarshal(ev.Body, &body); err != nil {
		s.logger.Errorw("tsbridge: malformed diagnostic event body", "event", ev.Event, "error", err)
		return
	}

	_, published := s.diagQueue.Update(body.File, kind, body.Diagnostics)
	s.publishDiagnostics(translate.PathToURI(body.File), published)
}
