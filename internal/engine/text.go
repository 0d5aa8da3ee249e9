package engine

import (
	"strings"

	"github.com/scrawl/scrawl/internal/document"
	"github.com/scrawl/scrawl/internal/geom"
)

// openText asks the host for text at w. Without a TextEntry the text tool
// does nothing.
func (e *Editor) openText(w geom.Point) {
	s := e.session
	if e.text == nil {
		e.logger.Debug("text entry unavailable")
		return
	}
	s.promptSeq++
	p := &textPrompt{token: s.promptSeq, at: w}
	s.prompt = p
	s.State = EditingText

	cancel := e.text.OpenTextEntry(w, func(text string, ok bool) {
		e.resolveText(p.token, text, ok)
	})
	// the host may resolve synchronously, before cancel is known
	if s.prompt == p {
		p.cancel = cancel
	}
}

// resolveText applies the outcome of prompt token. Results for prompts that
// are no longer open are dropped.
func (e *Editor) resolveText(token int, text string, ok bool) {
	s := e.session
	if s.prompt == nil || s.prompt.token != token {
		return
	}
	at := s.prompt.at
	s.prompt = nil
	s.State = Idle

	if ok && strings.TrimSpace(text) != "" {
		e.store.Append(document.NewText(at, text, s.Style))
		e.persist()
	}
	e.Redraw()
}

// cancelText closes an open prompt without committing.
func (e *Editor) cancelText() {
	s := e.session
	p := s.prompt
	if p == nil {
		return
	}
	s.prompt = nil
	if s.State == EditingText {
		s.State = Idle
	}
	if p.cancel != nil {
		p.cancel()
	}
}

// PendingText returns the anchor of the open text prompt, if any.
func (e *Editor) PendingText() (geom.Point, bool) {
	if e.session.prompt == nil {
		return geom.Point{}, false
	}
	return e.session.prompt.at, true
}
