// Package entitlement decides which goal periods a user may configure.
package entitlement

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/studylit/internal/clock"
	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/logger"
)

// State is the persisted premium flag.
type State struct {
	Premium   bool       `json:"is_premium"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Gate answers capability questions. Daily goals are always allowed; weekly
// and monthly goals need an unexpired premium flag.
type Gate struct {
	mu    sync.Mutex
	clock clock.Clock
	state State
}

func New(c clock.Clock) *Gate {
	return &Gate{clock: c}
}

// IsEntitled reports whether goals of kind may be configured.
func (g *Gate) IsEntitled(kind constants.PeriodKind) bool {
	if kind == constants.PeriodDaily {
		return true
	}
	if !kind.Valid() {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.activeLocked()
}

func (g *Gate) activeLocked() bool {
	if !g.state.Premium {
		return false
	}
	return g.state.ExpiresAt == nil || g.clock.Now().Before(*g.state.ExpiresAt)
}

// Check clears an expired premium flag and reports whether premium is active.
func (g *Gate) Check() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Premium && !g.activeLocked() {
		logger.Info("Premium expired", "expired_at", g.state.ExpiresAt)
		g.state = State{}
	}
	return g.state.Premium
}

// SetPremium turns premium on or off. A nil expiry never expires.
func (g *Gate) SetPremium(premium bool, expiresAt *time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !premium {
		g.state = State{}
		return
	}
	g.state = State{Premium: true, ExpiresAt: expiresAt}
}

// State returns a copy of the current flag.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.state
	if g.state.ExpiresAt != nil {
		t := *g.state.ExpiresAt
		out.ExpiresAt = &t
	}
	return out
}

func (g *Gate) Marshal() ([]byte, error) {
	return json.Marshal(g.State())
}

func (g *Gate) Unmarshal(data []byte) error {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode premium state: %w", err)
	}
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
	return nil
}
