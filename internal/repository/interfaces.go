package repository

import (
	"context"

	"github.com/ahirvonen/chatserver/internal/domain"
)

type UserRepository interface {
	// Create inserts a new user row. Returns errs.ErrUsernameTaken when the
	// unique index on username is violated.
	Create(ctx context.Context, user *domain.User) error
	// GetByUsername returns (nil, nil) when no such user exists.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Update rewrites the row keyed by current; renames re-run through the
	// unique index, so errs.ErrUsernameTaken applies here too.
	Update(ctx context.Context, current string, user *domain.User) error
	UpdatePassword(ctx context.Context, username, passwordHash, salt string) error
	Delete(ctx context.Context, username string) error
}

type MessageRepository interface {
	// Create assigns msg.ID from the store's sequence.
	Create(ctx context.Context, msg *domain.Message) error
	// GetByID returns (nil, nil) when no such message exists.
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	// Edit rewrites body, tag and timestamp in a single conditional update
	// guarded on author and the absence of a tombstone. Reports whether a row
	// was affected.
	Edit(ctx context.Context, id int64, author, body string, sent int64) (bool, error)
	// SoftDelete clears the body and tombstones the row, guarded on author.
	SoftDelete(ctx context.Context, id int64, author string, sent int64) (bool, error)
	// ListNewest returns the newest limit messages of a channel in ascending
	// (timestamp, id) order.
	ListNewest(ctx context.Context, channel string, limit int) ([]domain.Message, error)
	// ListSince returns every message of a channel with timestamp strictly
	// greater than since, ascending.
	ListSince(ctx context.Context, channel string, since int64) ([]domain.Message, error)
	// Channels lists distinct channel names, tombstoned rows included.
	Channels(ctx context.Context) ([]string, error)
}
