package service

import (
	"context"
	"sort"

	"github.com/ahirvonen/chatserver/internal/domain"
	"github.com/ahirvonen/chatserver/internal/errs"
	"github.com/ahirvonen/chatserver/internal/repository"
)

type fakeUsers struct {
	byName map[string]*domain.User
	nextID int64

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byName: map[string]*domain.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byName[u.Username]; exists {
		return errs.ErrUsernameTaken
	}
	f.nextID++
	u.ID = f.nextID
	cpy := *u
	f.byName[u.Username] = &cpy
	return nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) Update(_ context.Context, current string, u *domain.User) error {
	existing, ok := f.byName[current]
	if !ok {
		return errs.ErrNotFound
	}
	if u.Username != current {
		if _, taken := f.byName[u.Username]; taken {
			return errs.ErrUsernameTaken
		}
		delete(f.byName, current)
	}
	updated := *u
	updated.ID = existing.ID
	updated.PasswordHash = existing.PasswordHash
	updated.Salt = existing.Salt
	f.byName[u.Username] = &updated
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, username, hash, salt string) error {
	u, ok := f.byName[username]
	if !ok {
		return errs.ErrNotFound
	}
	u.PasswordHash = hash
	u.Salt = salt
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, username string) error {
	if _, ok := f.byName[username]; !ok {
		return errs.ErrNotFound
	}
	delete(f.byName, username)
	return nil
}

// fakeMessages mirrors the conditional-update semantics of the Postgres repo
// in memory so service behavior can be tested without a database.
type fakeMessages struct {
	rows   []domain.Message
	nextID int64
}

var _ repository.MessageRepository = (*fakeMessages)(nil)

func (f *fakeMessages) Create(_ context.Context, msg *domain.Message) error {
	f.nextID++
	msg.ID = f.nextID
	f.rows = append(f.rows, *msg)
	return nil
}

func (f *fakeMessages) GetByID(_ context.Context, id int64) (*domain.Message, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			c := f.rows[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeMessages) Edit(_ context.Context, id int64, author, body string, sent int64) (bool, error) {
	for i := range f.rows {
		r := &f.rows[i]
		if r.ID == id && r.Author == author && r.Tag != domain.TagDeleted {
			r.Body = body
			r.Tag = domain.TagEdited
			r.Sent = sent
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMessages) SoftDelete(_ context.Context, id int64, author string, sent int64) (bool, error) {
	for i := range f.rows {
		r := &f.rows[i]
		if r.ID == id && r.Author == author {
			r.Body = ""
			r.Tag = domain.TagDeleted
			r.Sent = sent
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMessages) ListNewest(_ context.Context, channel string, limit int) ([]domain.Message, error) {
	all := f.channelAscending(channel)
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (f *fakeMessages) ListSince(_ context.Context, channel string, since int64) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range f.channelAscending(channel) {
		if m.Sent > since {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) Channels(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, m := range f.rows {
		if !seen[m.Channel] {
			seen[m.Channel] = true
			out = append(out, m.Channel)
		}
	}
	return out, nil
}

func (f *fakeMessages) channelAscending(channel string) []domain.Message {
	var out []domain.Message
	for _, m := range f.rows {
		if m.Channel == channel {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sent != out[j].Sent {
			return out[i].Sent < out[j].Sent
		}
		return out[i].ID < out[j].ID
	})
	return out
}
