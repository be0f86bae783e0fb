package nav

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/strongbox/pkg/types"
)

func TestEveryKindHasAScreen(t *testing.T) {
	for k := KindLogin; k <= KindTOTPEnrollment; k++ {
		s, ok := Lookup(k)
		require.True(t, ok, "kind %s", k)
		assert.NotEmpty(t, s.Actions(Page{Kind: k}), "kind %s", k)
	}
}

func TestRegisterScreenExtension(t *testing.T) {
	const kindReport = KindUser + 1
	RegisterScreen(kindReport, screen{
		actions: []ActionKind{ActBack},
		content: func(View, Page) (Content, error) { return Content{Heading: "Report"}, nil },
	})
	s, ok := Lookup(kindReport)
	require.True(t, ok)
	c, err := s.Content(View{}, Page{Kind: kindReport})
	require.NoError(t, err)
	assert.Equal(t, "Report", c.Heading)
	assert.True(t, Allowed(Page{Kind: kindReport}, ActBack))

	assert.Panics(t, func() { RegisterScreen(kindReport, s) })
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		page Page
		act  ActionKind
		want bool
	}{
		{Login(), ActLogin, true},
		{Login(), ActOpenEpics, false},
		{Login(), ActBack, false},
		{Dashboard(), ActOpenEpics, true},
		{Dashboard(), ActBack, false},
		{EpicList(), ActCreateEpic, true},
		{EpicList(), ActCreateStory, false},
		{StoryList("e"), ActCreateStory, true},
		{StoryDetails("s"), ActDeleteStory, true},
		{Confirmation(ActDeleteEpic, "e", ""), ActConfirm, true},
		{Confirmation(ActDeleteEpic, "e", ""), ActHome, false},
		{AccountSettings(), ActEnableTOTP, true},
		{Page{Kind: KindNone}, ActQuit, false},
	}
	for _, tt := range tests {
		t.Run(tt.page.String()+"/"+tt.act.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.page, tt.act))
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		page    Page
		action  Action
		wantErr error
	}{
		{"login ok", Login(), Action{Kind: ActLogin, Username: "a", Password: []byte("p")}, nil},
		{"login without password", Login(), Action{Kind: ActLogin, Username: "a"}, types.ErrValidation},
		{"not permitted", Login(), Action{Kind: ActCreateEpic}, ErrNotPermitted},
		{"create epic ok", EpicList(), Action{Kind: ActCreateEpic, Changes: types.Changes{Title: ptr("A")}}, nil},
		{"create epic blank title", EpicList(), Action{Kind: ActCreateEpic, Changes: types.Changes{Title: ptr("  ")}}, types.ErrValidation},
		{"edit nothing", EpicDetails("e"), Action{Kind: ActEditEpic}, types.ErrValidation},
		{"edit bad status", EpicDetails("e"), Action{Kind: ActEditEpic, Changes: types.Changes{Status: ptr(types.Status(7))}}, types.ErrValidation},
		{"move without direction", StoryDetails("s"), Action{Kind: ActMoveStory}, types.ErrValidation},
		{"export unknown format", Dashboard(), Action{Kind: ActExport, Target: "x", Format: "csv"}, types.ErrValidation},
		{"confirm account deletion needs password", Confirmation(ActDeleteAccount, "", ""), Action{Kind: ActConfirm}, types.ErrValidation},
		{"confirm epic deletion", Confirmation(ActDeleteEpic, "e", ""), Action{Kind: ActConfirm}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Lookup(tt.page.Kind)
			require.True(t, ok)
			err := s.Validate(tt.page, tt.action)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestContent(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := types.NewDocument(types.Account{AccountID: "a", Username: "alice"})
	e, err := types.NewEpic("Billing", "Invoices", now)
	require.NoError(t, err)
	require.NoError(t, doc.AddEpic(e))
	st, err := types.NewStory("Draft", "", now)
	require.NoError(t, err)
	require.NoError(t, doc.AddStory(e.EpicID, st))
	v := View{Doc: doc}

	c := content(t, v, Dashboard())
	assert.Equal(t, "Welcome, alice", c.Heading)

	c = content(t, v, EpicList())
	require.Len(t, c.Items, 1)
	assert.Equal(t, e.EpicID, c.Items[0].ID)

	c = content(t, v, StoryList(e.EpicID))
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Draft", c.Items[0].Label)

	c = content(t, v, StoryDetails(st.StoryID))
	assert.Contains(t, c.Body, "Epic: Billing")

	c = content(t, v, Confirmation(ActDeleteEpic, e.EpicID, ""))
	assert.Contains(t, c.Body, "1 stories")

	s, _ := Lookup(KindEpicDetails)
	_, err = s.Content(v, EpicDetails("missing"))
	assert.ErrorIs(t, err, types.ErrNotFound)

	s, _ = Lookup(KindDashboard)
	_, err = s.Content(View{}, Dashboard())
	assert.ErrorIs(t, err, types.ErrInvariant)

	c = content(t, View{Accounts: []types.AccountRef{{AccountID: "a", Username: "alice"}}}, Login())
	require.Len(t, c.Items, 1)
}

func content(t *testing.T, v View, p Page) Content {
	t.Helper()
	s, ok := Lookup(p.Kind)
	require.True(t, ok)
	c, err := s.Content(v, p)
	require.NoError(t, err)
	return c
}
