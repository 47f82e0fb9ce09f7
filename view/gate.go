// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package view maps the session role to dashboard content and enforces
// access boundaries.
//
// Every view evaluates a [Gate] before touching the API:
//
//	Loading --(session initialized)--> Denied
//	                               \-> Authorized
//	                               \-> PendingApproval (inactive orphanage)
//
// Only Authorized views load data. PendingApproval views render a
// notice and refuse every donation-management action with
// [ErrPendingApproval].
package view

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/session"
)

// State is the outcome of a gate evaluation.
type State int

const (
	StateLoading State = iota + 1
	StateDenied
	StateAuthorized
	StatePendingApproval
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateDenied:
		return "Denied"
	case StateAuthorized:
		return "Authorized"
	case StatePendingApproval:
		return "PendingApproval"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Redirect targets offered by denied views.
const (
	RedirectLogin     = "login"
	RedirectDashboard = "dashboard"
)

var (
	// ErrDenied is returned by actions on a view the session may not use.
	ErrDenied = errors.New("access denied")

	// ErrPendingApproval is returned by donation-management actions of
	// an orphanage that an administrator has not yet approved.
	ErrPendingApproval = errors.New("orphanage account is pending approval")

	// ErrNotReady is returned by actions before the session store has
	// been initialized.
	ErrNotReady = errors.New("session is still loading")
)

// Decision is the result of Gate.Evaluate.
type Decision struct {
	State State
	// Redirect is where a Denied view sends the user: RedirectLogin
	// without a session, RedirectDashboard for a role mismatch.
	Redirect string
	Reason   string
	User     api.User
}

// Err returns the error an action should fail with, or nil when
// Authorized.
func (d Decision) Err() error {
	switch d.State {
	case StateAuthorized:
		return nil
	case StatePendingApproval:
		return ErrPendingApproval
	case StateLoading:
		return ErrNotReady
	default:
		return fmt.Errorf("%w: %s", ErrDenied, d.Reason)
	}
}

// Gate admits sessions whose role is in Roles. With RequireActive set,
// an admitted but inactive session is PendingApproval instead of
// Authorized.
type Gate struct {
	Roles         []api.Role
	RequireActive bool
}

// Evaluate decides what reader's session may see.
func (g Gate) Evaluate(reader session.Reader) Decision {
	if !reader.Initialized() {
		return Decision{State: StateLoading}
	}
	user, ok := reader.User()
	if !ok {
		return Decision{
			State:    StateDenied,
			Redirect: RedirectLogin,
			Reason:   "Please log in to continue.",
		}
	}
	if !slices.Contains(g.Roles, user.UserType) {
		return Decision{
			State:    StateDenied,
			Redirect: RedirectDashboard,
			Reason:   fmt.Sprintf("This page is not available to %s accounts.", roleNoun(user.UserType)),
			User:     user,
		}
	}
	if g.RequireActive && !user.IsActive {
		return Decision{
			State:  StatePendingApproval,
			Reason: "Your account is awaiting administrator approval.",
			User:   user,
		}
	}
	return Decision{State: StateAuthorized, User: user}
}

func roleNoun(role api.Role) string {
	switch role {
	case api.RoleAdmin:
		return "administrator"
	case api.RoleClient:
		return "client"
	case api.RoleOrphanage:
		return "orphanage"
	default:
		return "these"
	}
}

// Gates for the three dashboards.
var (
	AdminGate     = Gate{Roles: []api.Role{api.RoleAdmin}}
	ClientGate    = Gate{Roles: []api.Role{api.RoleClient}}
	OrphanageGate = Gate{Roles: []api.Role{api.RoleOrphanage}, RequireActive: true}
)

// GateFor returns the dashboard gate for role.
func GateFor(role api.Role) (Gate, bool) {
	switch role {
	case api.RoleAdmin:
		return AdminGate, true
	case api.RoleClient:
		return ClientGate, true
	case api.RoleOrphanage:
		return OrphanageGate, true
	default:
		return Gate{}, false
	}
}
