package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ahirvonen/chatserver/internal/domain"
	"github.com/ahirvonen/chatserver/internal/errs"
	"github.com/ahirvonen/chatserver/internal/repository"
)

// MessageService owns message rows: posting, editing and tombstoning. The
// server receipt time is authoritative for ordering; client-supplied times
// are display hints only.
type MessageService struct {
	messages repository.MessageRepository

	now func() int64 // epoch millis UTC, swappable in tests
}

func NewMessageService(messages repository.MessageRepository) *MessageService {
	return &MessageService{
		messages: messages,
		now:      func() int64 { return time.Now().UTC().UnixMilli() },
	}
}

// Post appends a new message stamped with the current time and an empty tag.
func (s *MessageService) Post(ctx context.Context, author, channel, body string) (*domain.Message, error) {
	msg := &domain.Message{
		Channel: channel,
		Author:  author,
		Body:    body,
		Sent:    s.now(),
		Tag:     domain.TagNone,
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}
	return msg, nil
}

// Edit rewrites a message's body, tags it edited and restamps its timestamp.
// The ownership and tombstone checks ride in the same conditional update; a
// zero affected-row count is diagnosed afterwards to tell forbidden from
// not-found.
func (s *MessageService) Edit(ctx context.Context, requester string, id int64, body string) (*domain.Message, error) {
	ok, err := s.messages.Edit(ctx, id, requester, body, s.now())
	if err != nil {
		return nil, fmt.Errorf("updating message: %w", err)
	}
	if !ok {
		return nil, s.refusalReason(ctx, requester, id)
	}

	updated, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errs.ErrNotFound
	}
	return updated, nil
}

// Delete tombstones a message: body cleared, tag "<deleted>", timestamp
// restamped. Deleting an already-deleted message succeeds and only restamps.
func (s *MessageService) Delete(ctx context.Context, requester string, id int64) error {
	ok, err := s.messages.SoftDelete(ctx, id, requester, s.now())
	if err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	if !ok {
		return s.refusalReason(ctx, requester, id)
	}
	return nil
}

// Channels lists every channel name ever used, tombstoned messages included.
func (s *MessageService) Channels(ctx context.Context) ([]string, error) {
	return s.messages.Channels(ctx)
}

// refusalReason inspects the row a conditional update refused to touch. The
// row may have changed since the update ran; that only affects which refusal
// is reported, never whether one is.
func (s *MessageService) refusalReason(ctx context.Context, requester string, id int64) error {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if msg == nil {
		return errs.ErrNotFound
	}
	if msg.Author != requester {
		return errs.ErrForbidden
	}
	// Row exists and the author matches: the update was refused by the
	// tombstone guard.
	return errs.ErrNotFound
}
