package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/mesh-intelligence/strongbox/internal/nav"
	"github.com/mesh-intelligence/strongbox/internal/security"
	"github.com/mesh-intelligence/strongbox/internal/store"
	"github.com/mesh-intelligence/strongbox/pkg/types"
)

// Result is what the rendering layer needs after an action.
type Result struct {
	Page    nav.Page
	Actions []nav.ActionKind
	Content nav.Content
	// Notice is a one-line status message, such as "Epic created".
	Notice string
	// Enrollment is set only right after EnableTOTP and is never stored in
	// the session.
	Enrollment *security.Enrollment
	// Quit is set when the user asked to leave.
	Quit bool
}

// IsFatal reports whether err is a broken internal invariant. Every other
// error is recoverable and leaves the session usable.
func IsFatal(err error) bool {
	return errors.Is(err, types.ErrInvariant)
}

// Dispatcher applies actions to a Session against a Store.
type Dispatcher struct {
	store        *store.Store
	log          *log.Logger
	issuer       string
	exportFormat string
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithIssuer sets the issuer shown in authenticator apps.
func WithIssuer(issuer string) Option {
	return func(d *Dispatcher) {
		if issuer != "" {
			d.issuer = issuer
		}
	}
}

// WithExportFormat sets the format used when an Export action names none.
func WithExportFormat(format string) Option {
	return func(d *Dispatcher) {
		if format != "" {
			d.exportFormat = format
		}
	}
}

// NewDispatcher returns a Dispatcher over st.
func NewDispatcher(st *store.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:        st,
		log:          log.New(io.Discard),
		issuer:       "Strongbox",
		exportFormat: types.ExportJSON,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start shows the first page: Login, or Dashboard if sess is already
// logged in.
func (d *Dispatcher) Start(sess *Session) (Result, error) {
	if sess.Active() {
		sess.Stack.ClearTo(nav.Dashboard())
	} else {
		sess.Teardown()
	}
	return d.render(sess, nil)
}

// Dispatch applies act to sess. On error the navigation stack is left as it
// was, except that ErrWrongCredentials ends the session and returns to
// Login. The Result always describes the page now showing. Secrets carried
// by act are wiped before Dispatch returns.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *Session, act nav.Action) (Result, error) {
	defer wipeAction(&act)

	if act.Kind == nav.ActStart {
		return d.Start(sess)
	}
	cur := sess.Stack.Current()
	logger := d.log.With("action", act.Kind, "page", cur)

	if cur.Kind.Authenticated() && !sess.Active() {
		return Result{Page: cur}, fmt.Errorf("%w: %s shown without a session", types.ErrInvariant, cur)
	}
	screen, ok := nav.Lookup(cur.Kind)
	if !ok {
		return Result{Page: cur}, fmt.Errorf("%w: no screen for %s", types.ErrInvariant, cur)
	}
	if err := screen.Validate(cur, act); err != nil {
		logger.Debug("rejected", "err", err)
		return d.renderAfterError(sess), err
	}

	saved := sess.Stack.Pages()
	out, err := d.apply(ctx, sess, cur, act)
	if err != nil {
		switch {
		case IsFatal(err):
			logger.Error("invariant violated", "err", err)
			return Result{Page: cur}, err
		case errors.Is(err, types.ErrWrongCredentials):
			logger.Info("credentials rejected, ending session")
			sess.Teardown()
		default:
			logger.Warn("action failed", "err", err)
			sess.Stack.Restore(saved)
		}
		return d.renderAfterError(sess), err
	}
	logger.Debug("applied", "now", sess.Stack.Current())

	if out.quit {
		sess.Teardown()
		return Result{Page: sess.Stack.Current(), Quit: true}, nil
	}
	res, err := d.render(sess, out.doc)
	if err != nil {
		return res, err
	}
	res.Notice = out.notice
	res.Enrollment = out.enrollment
	return res, nil
}

// render builds the Result for the current page. doc, when non-nil, is
// a document read during this action and saves a second read.
func (d *Dispatcher) render(sess *Session, doc *types.Document) (Result, error) {
	cur := sess.Stack.Current()
	res := Result{Page: cur}
	screen, ok := nav.Lookup(cur.Kind)
	if !ok {
		return res, fmt.Errorf("%w: no screen for %s", types.ErrInvariant, cur)
	}
	res.Actions = screen.Actions(cur)

	var v nav.View
	switch {
	case cur.Kind == nav.KindLogin:
		accounts, err := d.store.ListAccounts()
		if err != nil {
			return res, err
		}
		v.Accounts = accounts
	case cur.Kind.Authenticated() && sess.Active():
		if doc == nil {
			var err error
			if doc, err = d.store.ReadKey(sess.AccountID, sess.key); err != nil {
				return res, err
			}
		}
		v.Doc = doc
	}
	content, err := screen.Content(v, cur)
	if err != nil {
		return res, err
	}
	res.Content = content
	return res, nil
}

// renderAfterError describes the current page when the action itself
// already failed. Content is best effort.
func (d *Dispatcher) renderAfterError(sess *Session) Result {
	res, err := d.render(sess, nil)
	if err != nil {
		d.log.Debug("render after error", "err", err)
	}
	return res
}

func wipeAction(a *nav.Action) {
	security.Wipe(a.Password)
	security.Wipe(a.NewPassword)
	security.Wipe(a.ExportSecret)
}
