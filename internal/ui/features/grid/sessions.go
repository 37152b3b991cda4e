package grid

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapgrid/internal/decorate"
)

const (
	sessionName  = "leapgrid"
	sessionIDKey = "id"
)

// gateIdleTTL is how long a session's gate survives without requests.
const gateIdleTTL = 30 * time.Minute

type gateEntry struct {
	gate *decorate.PreviewGate
	seen time.Time
}

// gateRegistry keeps one preview gate per browser session. Gates idle for
// longer than ttl are dropped, at most one sweep per ttl.
type gateRegistry struct {
	mu        sync.Mutex
	gates     map[string]*gateEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func newGateRegistry() *gateRegistry {
	return &gateRegistry{
		gates: make(map[string]*gateEntry),
		ttl:   gateIdleTTL,
		now:   time.Now,
	}
}

func (g *gateRegistry) get(id string) *decorate.PreviewGate {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Sub(g.lastSweep) >= g.ttl {
		for key, e := range g.gates {
			if now.Sub(e.seen) > g.ttl {
				delete(g.gates, key)
			}
		}
		g.lastSweep = now
	}

	e, ok := g.gates[id]
	if !ok {
		e = &gateEntry{gate: &decorate.PreviewGate{}}
		g.gates[id] = e
	}
	e.seen = now
	return e.gate
}

func (g *gateRegistry) len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.gates)
}

// sessionID returns the viewer's session id, issuing one on first contact.
// It must run before any response body is written.
func sessionID(store sessions.Store, w http.ResponseWriter, r *http.Request) string {
	// An undecodable cookie still yields a fresh session.
	session, _ := store.Get(r, sessionName)
	if session == nil {
		return uuid.NewString()
	}
	if id, ok := session.Values[sessionIDKey].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	session.Values[sessionIDKey] = id
	_ = session.Save(r, w)
	return id
}
