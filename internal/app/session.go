// Package app is the action dispatcher: it turns a user Action into at most
// one document store operation plus one navigation change, and reports the
// resulting page, its legal actions and its content.
package app

import (
	"github.com/mesh-intelligence/strongbox/internal/nav"
	"github.com/mesh-intelligence/strongbox/internal/security"
	"github.com/mesh-intelligence/strongbox/pkg/types"
)

// Session is the state of one logged-in user: who it is, the navigation
// stack and the derived document key. The password itself is never kept.
// A zero Session is not usable; call NewSession.
type Session struct {
	AccountID string
	Username  string
	Stack     *nav.Stack

	// key is the only derived key kept across actions; Teardown wipes it.
	key *security.Key
}

// NewSession returns a logged-out session showing the Login page.
func NewSession() *Session {
	return &Session{Stack: nav.NewStack(nav.Login())}
}

// Init starts the session for an account and shows the Dashboard. The
// session takes ownership of key.
func (s *Session) Init(account types.Account, key *security.Key) {
	s.Teardown()
	s.AccountID = account.AccountID
	s.Username = account.Username
	s.key = key
	s.Stack.ClearTo(nav.Dashboard())
}

// Teardown wipes the key, forgets the account and returns to Login.
func (s *Session) Teardown() {
	if s.key != nil {
		s.key.Wipe()
		s.key = nil
	}
	s.AccountID = ""
	s.Username = ""
	s.Stack.Reset()
	s.Stack.Push(nav.Login())
}

// Active reports whether a user is logged in.
func (s *Session) Active() bool {
	return s.key != nil && !s.key.Wiped() && s.AccountID != ""
}

func (s *Session) rekey(key *security.Key) {
	if s.key != nil {
		s.key.Wipe()
	}
	s.key = key
}
