package service

import (
	"context"

	"github.com/ahirvonen/chatserver/internal/domain"
	"github.com/ahirvonen/chatserver/internal/repository"
)

// backlogLimit caps the initial fetch when a client polls without a
// watermark. Incremental polls are uncapped: the watermark is refreshed every
// round, so deltas stay small.
const backlogLimit = 100

// SyncService computes the "new since watermark" view of a channel. It is the
// only reader of the message store's timestamp-ordered index.
type SyncService struct {
	messages repository.MessageRepository
}

func NewSyncService(messages repository.MessageRepository) *SyncService {
	return &SyncService{messages: messages}
}

// Query returns a channel's messages in ascending (timestamp, id) order.
//
// With no watermark the newest backlogLimit messages are returned, oldest
// first. With a watermark every message stamped strictly later is returned,
// uncapped. Tombstoned messages are returned like any other row so clients
// learn about removals.
//
// The returned watermark is the timestamp of the last message; when nothing
// is returned it is the caller's own watermark, unchanged, so an empty poll
// never resets synchronization state.
func (s *SyncService) Query(ctx context.Context, channel string, watermark *int64) ([]domain.Message, int64, error) {
	var (
		messages []domain.Message
		err      error
	)

	if watermark == nil {
		messages, err = s.messages.ListNewest(ctx, channel, backlogLimit)
	} else {
		messages, err = s.messages.ListSince(ctx, channel, *watermark)
	}
	if err != nil {
		return nil, 0, err
	}

	if len(messages) == 0 {
		var prev int64
		if watermark != nil {
			prev = *watermark
		}
		return nil, prev, nil
	}

	return messages, messages[len(messages)-1].Sent, nil
}
