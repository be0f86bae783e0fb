package app

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/strongbox/internal/nav"
	"github.com/mesh-intelligence/strongbox/internal/security"
	"github.com/mesh-intelligence/strongbox/internal/store"
	"github.com/mesh-intelligence/strongbox/pkg/types"
)

// outcome is what a transition produced besides the stack change.
type outcome struct {
	doc        *types.Document
	notice     string
	enrollment *security.Enrollment
	quit       bool
}

// apply runs the store operation for act and then changes the stack. Every
// store call happens before the first stack change, so a failed store call
// leaves navigation untouched.
func (d *Dispatcher) apply(ctx context.Context, sess *Session, cur nav.Page, act nav.Action) (outcome, error) {
	switch act.Kind {
	case nav.ActQuit:
		return outcome{quit: true}, nil

	case nav.ActGoRegister:
		sess.Stack.Push(nav.Register())
		return outcome{}, nil

	case nav.ActRegister:
		account, key, err := d.store.Register(act.Username, act.Password)
		if err != nil {
			return outcome{}, err
		}
		sess.Init(account, key)
		return outcome{notice: "Account created"}, nil

	case nav.ActLogin:
		doc, key, err := d.store.Authenticate(act.Username, act.Password, act.Code)
		if err != nil {
			return outcome{}, err
		}
		sess.Init(doc.Account, key)
		return outcome{doc: doc}, nil

	case nav.ActLogout:
		sess.Teardown()
		return outcome{notice: "Logged out"}, nil

	case nav.ActBack, nav.ActCancel:
		if _, err := sess.Stack.Pop(); err != nil {
			return outcome{}, fmt.Errorf("%w: %v", types.ErrValidation, err)
		}
		return outcome{}, nil

	case nav.ActHome:
		sess.Stack.ClearTo(nav.Dashboard())
		return outcome{}, nil

	case nav.ActOpenEpics:
		return d.open(sess, nav.EpicList(), nil)

	case nav.ActOpenEpic:
		return d.open(sess, nav.EpicDetails(act.EpicID), func(doc *types.Document) error {
			_, err := doc.Epic(act.EpicID)
			return err
		})

	case nav.ActOpenStories:
		return d.open(sess, nav.StoryList(cur.EpicID), func(doc *types.Document) error {
			_, err := doc.Epic(cur.EpicID)
			return err
		})

	case nav.ActOpenStory:
		return d.open(sess, nav.StoryDetails(act.StoryID), func(doc *types.Document) error {
			return storyInEpic(doc, act.StoryID, cur.EpicID)
		})

	case nav.ActOpenSettings:
		return d.open(sess, nav.AccountSettings(), nil)

	case nav.ActCreateEpic:
		var created string
		doc, err := d.store.TransactKey(sess.AccountID, sess.key, func(doc *types.Document) error {
			e, err := types.NewEpic(*act.Changes.Title, deref(act.Changes.Description), d.store.Now())
			if err != nil {
				return err
			}
			if act.Changes.Status != nil {
				e.Status = *act.Changes.Status
			}
			created = e.EpicID
			return doc.AddEpic(e)
		})
		if err != nil {
			return outcome{}, err
		}
		sess.Stack.Push(nav.EpicDetails(created))
		return outcome{doc: doc, notice: "Epic created"}, nil

	case nav.ActEditEpic:
		doc, err := d.store.TransactKey(sess.AccountID, sess.key, func(doc *types.Document) error {
			return doc.UpdateEpic(cur.EpicID, act.Changes, d.store.Now())
		})
		if err != nil {
			return outcome{}, err
		}
		return outcome{doc: doc, notice: "Epic saved"}, nil

	case nav.ActDeleteEpic:
		return d.open(sess, nav.Confirmation(nav.ActDeleteEpic, cur.EpicID, ""), func(doc *types.Document) error {
			_, err := doc.Epic(cur.EpicID)
			return err
		})

	case nav.ActCreateStory:
		var created string
		doc, err := d.store.TransactKey(sess.AccountID, sess.key, func(doc *types.Document) error {
			s, err := types.NewStory(*act.Changes.Title, deref(act.Changes.Description), d.store.Now())
			if err != nil {
				return err
			}
			if act.Changes.Status != nil {
				s.Status = *act.Changes.Status
			}
			created = s.StoryID
			return doc.AddStory(cur.EpicID, s)
		})
		if err != nil {
			return outcome{}, err
		}
		sess.Stack.Push(nav.StoryDetails(created))
		return outcome{doc: doc, notice: "Story created"}, nil

	case nav.ActEditStory:
		doc, err := d.store.TransactKey(sess.AccountID, sess.key, func(doc *types.Document) error {
			return doc.UpdateStory(cur.StoryID, act.Changes, d.store.Now())
		})
		if err != nil {
			return outcome{}, err
		}
		return outcome{doc: doc, notice: "Story saved"}, nil

	case nav.ActMoveStory:
		id := cur.StoryID
		if act.StoryID != "" {
			id = act.StoryID
		}
		doc, err := d.store.TransactKey(sess.AccountID, sess.key, func(doc *types.Document) error {
			if cur.Kind == nav.KindStoryList {
				if err := storyInEpic(doc, id, cur.EpicID); err != nil {
					return err
				}
			}
			return doc.MoveStory(id, act.Delta)
		})
		if err != nil {
			return outcome{}, err
		}
		return outcome{doc: doc}, nil

	case nav.ActDeleteStory:
		return d.open(sess, nav.Confirmation(nav.ActDeleteStory, "", cur.StoryID), func(doc *types.Document) error {
			_, err := doc.Story(cur.StoryID)
			return err
		})

	case nav.ActDeleteAccount:
		sess.Stack.Push(nav.Confirmation(nav.ActDeleteAccount, "", ""))
		return outcome{}, nil

	case nav.ActConfirm:
		return d.confirm(sess, cur, act)

	case nav.ActChangePassword:
		key, err := d.store.ChangePassword(sess.AccountID, act.Password, act.NewPassword)
		if err != nil {
			return outcome{}, err
		}
		sess.rekey(key)
		return outcome{notice: "Password changed"}, nil

	case nav.ActEnableTOTP:
		enr, err := d.store.EnableTOTP(sess.AccountID, sess.key, d.issuer)
		if err != nil {
			return outcome{}, err
		}
		sess.Stack.Push(nav.TOTPEnrollment())
		return outcome{enrollment: &enr, notice: "Two-factor authentication enabled"}, nil

	case nav.ActDisableTOTP:
		if err := d.store.DisableTOTP(sess.AccountID, sess.key, act.Code); err != nil {
			return outcome{}, err
		}
		return outcome{notice: "Two-factor authentication disabled"}, nil

	case nav.ActExport:
		format := act.Format
		if format == "" {
			format = d.exportFormat
		}
		if len(act.ExportSecret) > 0 {
			format = types.ExportJSON
		}
		err := d.store.Export(ctx, sess.AccountID, sess.key, act.Target, store.ExportOptions{
			Secret: act.ExportSecret,
			Format: format,
		})
		if err != nil {
			return outcome{}, err
		}
		return outcome{notice: "Exported to " + act.Target}, nil
	}
	return outcome{}, fmt.Errorf("%w: %s has no transition", types.ErrInvariant, act.Kind)
}

// confirm carries out the action a Confirmation page was waiting for.
func (d *Dispatcher) confirm(sess *Session, cur nav.Page, act nav.Action) (outcome, error) {
	switch cur.Pending {
	case nav.ActDeleteEpic:
		doc, err := d.store.TransactKey(sess.AccountID, sess.key, func(doc *types.Document) error {
			_, err := doc.DeleteEpic(cur.EpicID)
			return err
		})
		if err != nil {
			return outcome{}, err
		}
		returnTo(sess.Stack, nav.KindEpicList, nav.EpicList())
		return outcome{doc: doc, notice: "Epic deleted"}, nil

	case nav.ActDeleteStory:
		var epicID string
		doc, err := d.store.TransactKey(sess.AccountID, sess.key, func(doc *types.Document) error {
			e, err := doc.EpicOf(cur.StoryID)
			if err != nil {
				return err
			}
			epicID = e.EpicID
			_, err = doc.DeleteStory(cur.StoryID)
			return err
		})
		if err != nil {
			return outcome{}, err
		}
		returnTo(sess.Stack, nav.KindStoryList, nav.StoryList(epicID))
		return outcome{doc: doc, notice: "Story deleted"}, nil

	case nav.ActDeleteAccount:
		if err := d.store.DeleteAccount(sess.AccountID, act.Password); err != nil {
			return outcome{}, err
		}
		d.log.Info("account deleted", "account", sess.AccountID)
		sess.Teardown()
		return outcome{notice: "Account deleted"}, nil
	}
	return outcome{}, fmt.Errorf("%w: confirmation for %s", types.ErrInvariant, cur.Pending)
}

// open reads the document, runs check against it and pushes p.
func (d *Dispatcher) open(sess *Session, p nav.Page, check func(*types.Document) error) (outcome, error) {
	doc, err := d.store.ReadKey(sess.AccountID, sess.key)
	if err != nil {
		return outcome{}, err
	}
	if check != nil {
		if err := check(doc); err != nil {
			return outcome{}, err
		}
	}
	sess.Stack.Push(p)
	return outcome{doc: doc}, nil
}

// returnTo pops back to the nearest page of kind, or rebuilds a short
// history ending in fallback if there is none.
func returnTo(s *nav.Stack, kind nav.Kind, fallback nav.Page) {
	if s.PopTo(kind) {
		return
	}
	s.ClearTo(nav.Dashboard())
	s.Push(fallback)
}

func storyInEpic(doc *types.Document, storyID, epicID string) error {
	e, err := doc.EpicOf(storyID)
	if err != nil {
		return err
	}
	if epicID != "" && e.EpicID != epicID {
		return fmt.Errorf("%w: story %s is not in epic %s", types.ErrNotFound, storyID, epicID)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

