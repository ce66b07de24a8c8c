// Package guard implements the client-side page gates. A guard asks the
// identity endpoint who the caller is exactly once per mount, then settles on
// Allow or Deny. Children run only after Allow, so protected data fetching
// never fires for unauthorized viewers. Any transport or decode failure is a
// Deny.
package guard

import (
	"context"
	"strings"
	"sync"

	"hr-portal/internal/model"
	"hr-portal/internal/policy"
)

type State string

const (
	StateLoading State = "loading"
	StateAllow   State = "allow"
	StateDeny    State = "deny"
)

// IdentityClient fetches the caller's resolved identity, typically via
// GET /api/v1/auth/me with the session cookie attached.
type IdentityClient interface {
	CurrentIdentity(ctx context.Context) (*model.MeData, error)
}

// RedirectFunc is invoked with the deny destination when the guard settles on
// Deny.
type RedirectFunc func(destination string)

type guard struct {
	client     IdentityClient
	redirect   RedirectFunc
	redirectTo string
	decide     func(me *model.MeData) bool

	mu        sync.Mutex
	state     State
	unmounted bool
	done      chan struct{}
}

func newGuard(client IdentityClient, redirectTo string, redirect RedirectFunc, decide func(*model.MeData) bool) *guard {
	if redirect == nil {
		redirect = func(string) {}
	}
	return &guard{
		client:     client,
		redirect:   redirect,
		redirectTo: redirectTo,
		decide:     decide,
		state:      StateLoading,
		done:       make(chan struct{}),
	}
}

// Mount starts the identity check. The decision is made at most once; a
// remount with different parameters needs a fresh guard.
func (g *guard) Mount(ctx context.Context) {
	go func() {
		me, err := g.client.CurrentIdentity(ctx)
		allowed := err == nil && me != nil && g.decide(me)
		g.settle(allowed)
	}()
}

func (g *guard) settle(allowed bool) {
	g.mu.Lock()
	if g.unmounted || g.state != StateLoading {
		g.mu.Unlock()
		return
	}
	if allowed {
		g.state = StateAllow
	} else {
		g.state = StateDeny
	}
	state := g.state
	close(g.done)
	g.mu.Unlock()

	if state == StateDeny {
		g.redirect(g.redirectTo)
	}
}

// State returns the guard's current state without blocking.
func (g *guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Wait blocks until the guard settles (or the context ends) and returns the
// state at that point.
func (g *guard) Wait(ctx context.Context) State {
	select {
	case <-g.done:
	case <-ctx.Done():
	}
	return g.State()
}

// Unmount discards any in-flight decision. A check completing afterwards is
// dropped, never applied.
func (g *guard) Unmount() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unmounted = true
}

// Run mounts the guard, waits for the decision and invokes children only on
// Allow.
func (g *guard) Run(ctx context.Context, children func()) State {
	g.Mount(ctx)
	state := g.Wait(ctx)
	if state == StateAllow && children != nil {
		children()
	}
	return state
}

// RoleGuard allows callers whose role name case-insensitively matches any
// entry in the allow list.
type RoleGuard struct {
	*guard
}

func NewRoleGuard(client IdentityClient, allow []string, redirectTo string, redirect RedirectFunc) *RoleGuard {
	if redirectTo == "" {
		redirectTo = "/login"
	}
	decide := func(me *model.MeData) bool {
		if me.Role == nil || me.Role.Name == "" {
			return false
		}
		for _, name := range allow {
			if strings.EqualFold(name, me.Role.Name) {
				return true
			}
		}
		return false
	}
	return &RoleGuard{guard: newGuard(client, redirectTo, redirect, decide)}
}

// PermissionGuard allows callers whose permission set intersects requireAny
// and is a superset of requireAll. A caller whose role is implicitly granted
// the required codes by the policy table passes as well.
type PermissionGuard struct {
	*guard
}

func NewPermissionGuard(client IdentityClient, requireAny []string, requireAll []string, redirectTo string, redirect RedirectFunc) *PermissionGuard {
	if redirectTo == "" {
		redirectTo = "/home"
	}
	decide := func(me *model.MeData) bool {
		held := map[string]struct{}{}
		for _, code := range me.Permissions {
			held[code] = struct{}{}
		}

		hasAny := len(requireAny) == 0
		for _, code := range requireAny {
			if _, ok := held[code]; ok {
				hasAny = true
				break
			}
		}
		hasAll := true
		for _, code := range requireAll {
			if _, ok := held[code]; !ok {
				hasAll = false
				break
			}
		}
		if hasAny && hasAll {
			return true
		}

		required := requireAll
		if len(required) == 0 {
			required = requireAny
		}
		if me.Role == nil {
			return false
		}
		return policy.Allows(me.Role.Name, required)
	}
	return &PermissionGuard{guard: newGuard(client, redirectTo, redirect, decide)}
}
