package decorate

import "sync"

// Preview is an open link preview.
type Preview struct {
	Link string `json:"link"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// PreviewGate enforces that at most one link is previewed at a time. A
// hover is ignored while a preview is open, until Dismiss is called.
//
// Use one gate per viewer.
type PreviewGate struct {
	mu      sync.Mutex
	open    bool
	current Preview
}

// Hover requests a preview and reports whether it was opened. Requests
// without a link, or while another preview is open, are ignored.
func (g *PreviewGate) Hover(p Preview) bool {
	if p.Link == "" {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return false
	}
	g.open = true
	g.current = p
	return true
}

// Dismiss closes the open preview, if any.
func (g *PreviewGate) Dismiss() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = false
	g.current = Preview{}
}

// Current returns the open preview.
func (g *PreviewGate) Current() (Preview, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current, g.open
}
