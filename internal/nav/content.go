package nav

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/strongbox/pkg/types"
)

func needDoc(v View, p Page) error {
	if v.Doc == nil {
		return fmt.Errorf("%w: %s needs an open document", types.ErrInvariant, p)
	}
	return nil
}

func loginContent(v View, _ Page) (Content, error) {
	c := Content{Heading: "Strongbox"}
	if len(v.Accounts) == 0 {
		c.Body = "No accounts yet. Register to get started."
		return c, nil
	}
	c.Body = "Log in to one of the accounts below."
	for _, a := range v.Accounts {
		c.Items = append(c.Items, Item{ID: a.AccountID, Label: a.Username})
	}
	return c, nil
}

func dashboardContent(v View, p Page) (Content, error) {
	if err := needDoc(v, p); err != nil {
		return Content{}, err
	}
	counts := map[types.Status]int{}
	for _, s := range v.Doc.Stories {
		counts[s.Status]++
	}
	var b strings.Builder
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Epics | %d |\n", len(v.Doc.Epics))
	for _, st := range types.Statuses {
		fmt.Fprintf(&b, "| Stories %s | %d |\n", st, counts[st])
	}
	return Content{
		Heading: "Welcome, " + v.Doc.Account.Username,
		Body:    b.String(),
	}, nil
}

func epicListContent(v View, p Page) (Content, error) {
	if err := needDoc(v, p); err != nil {
		return Content{}, err
	}
	c := Content{Heading: "Epics"}
	for _, e := range v.Doc.SortedEpics() {
		c.Items = append(c.Items, Item{
			ID:     e.EpicID,
			Label:  fmt.Sprintf("%s (%d)", e.Title, len(e.StoryIDs)),
			Status: e.Status,
		})
	}
	if len(c.Items) == 0 {
		c.Body = "No epics yet."
	}
	return c, nil
}

func epicDetailsContent(v View, p Page) (Content, error) {
	if err := needDoc(v, p); err != nil {
		return Content{}, err
	}
	e, err := v.Doc.Epic(p.EpicID)
	if err != nil {
		return Content{}, err
	}
	return Content{
		Heading: e.Title,
		Body:    details(e.Status, e.Description, e.CreatedAt.Format("2006-01-02"), fmt.Sprintf("%d stories", len(e.StoryIDs))),
	}, nil
}

func storyListContent(v View, p Page) (Content, error) {
	if err := needDoc(v, p); err != nil {
		return Content{}, err
	}
	e, err := v.Doc.Epic(p.EpicID)
	if err != nil {
		return Content{}, err
	}
	stories, err := v.Doc.StoriesOf(p.EpicID)
	if err != nil {
		return Content{}, err
	}
	c := Content{Heading: "Stories of " + e.Title}
	for _, s := range stories {
		c.Items = append(c.Items, Item{ID: s.StoryID, Label: s.Title, Status: s.Status})
	}
	if len(c.Items) == 0 {
		c.Body = "No stories yet."
	}
	return c, nil
}

func storyDetailsContent(v View, p Page) (Content, error) {
	if err := needDoc(v, p); err != nil {
		return Content{}, err
	}
	s, err := v.Doc.Story(p.StoryID)
	if err != nil {
		return Content{}, err
	}
	e, err := v.Doc.EpicOf(p.StoryID)
	if err != nil {
		return Content{}, err
	}
	return Content{
		Heading: s.Title,
		Body:    details(s.Status, s.Description, s.CreatedAt.Format("2006-01-02"), "Epic: "+e.Title),
	}, nil
}

func details(st types.Status, description, created, extra string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Status:** %s  \n**Created:** %s  \n%s\n\n", st, created, extra)
	if strings.TrimSpace(description) == "" {
		b.WriteString("_No description._\n")
	} else {
		b.WriteString(description)
		b.WriteString("\n")
	}
	return b.String()
}

func confirmationContent(v View, p Page) (Content, error) {
	c := Content{Heading: "Are you sure?"}
	switch p.Pending {
	case ActDeleteEpic:
		if err := needDoc(v, p); err != nil {
			return Content{}, err
		}
		e, err := v.Doc.Epic(p.EpicID)
		if err != nil {
			return Content{}, err
		}
		c.Body = fmt.Sprintf("Delete epic **%s** and its %d stories?", e.Title, len(e.StoryIDs))
	case ActDeleteStory:
		if err := needDoc(v, p); err != nil {
			return Content{}, err
		}
		s, err := v.Doc.Story(p.StoryID)
		if err != nil {
			return Content{}, err
		}
		c.Body = fmt.Sprintf("Delete story **%s**?", s.Title)
	case ActDeleteAccount:
		c.Body = "Delete this account and **all of its data**? Enter your password to confirm."
	default:
		return Content{}, fmt.Errorf("%w: nothing to confirm", types.ErrInvariant)
	}
	return c, nil
}

func settingsContent(v View, p Page) (Content, error) {
	if err := needDoc(v, p); err != nil {
		return Content{}, err
	}
	totp := "off"
	if v.Doc.Account.HasTOTP() {
		totp = "on"
	}
	return Content{
		Heading: "Account",
		Body:    fmt.Sprintf("**Username:** %s  \n**Two-factor authentication:** %s\n", v.Doc.Account.Username, totp),
	}, nil
}
