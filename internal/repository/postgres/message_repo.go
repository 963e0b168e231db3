package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ahirvonen/chatserver/internal/domain"
)

type MessageRepo struct {
	db *DB
}

func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (channel, author, body, timestamp, tag)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.Pool.QueryRow(ctx, query,
		msg.Channel, msg.Author, msg.Body, msg.Sent, msg.Tag.String(),
	).Scan(&msg.ID)
	if err != nil {
		return storageErr("insert message", err)
	}
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := `
		SELECT id, channel, author, body, timestamp, tag
		FROM messages WHERE id = $1`

	msg, err := scanMessage(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("select message", err)
	}
	return msg, nil
}

// Edit is a single conditional update: the ownership and tombstone checks and
// the rewrite happen in one statement, so concurrent edits cannot both succeed
// against a state one of them invalidated.
func (r *MessageRepo) Edit(ctx context.Context, id int64, author, body string, sent int64) (bool, error) {
	query := `
		UPDATE messages SET body = $1, tag = $2, timestamp = $3
		WHERE id = $4 AND author = $5 AND tag <> $6`

	tag, err := r.db.Pool.Exec(ctx, query,
		body, domain.TagEdited.String(), sent,
		id, author, domain.TagDeleted.String(),
	)
	if err != nil {
		return false, storageErr("edit message", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SoftDelete tombstones the row instead of removing it, so polling clients
// observe the deletion as a change event. Re-deleting only restamps the
// timestamp; the visible state is unchanged.
func (r *MessageRepo) SoftDelete(ctx context.Context, id int64, author string, sent int64) (bool, error) {
	query := `
		UPDATE messages SET body = '', tag = $1, timestamp = $2
		WHERE id = $3 AND author = $4`

	tag, err := r.db.Pool.Exec(ctx, query,
		domain.TagDeleted.String(), sent, id, author,
	)
	if err != nil {
		return false, storageErr("delete message", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *MessageRepo) ListNewest(ctx context.Context, channel string, limit int) ([]domain.Message, error) {
	query := fmt.Sprintf(`
		SELECT id, channel, author, body, timestamp, tag
		FROM messages WHERE channel = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT %d`, limit)

	messages, err := r.listMessages(ctx, query, channel)
	if err != nil {
		return nil, err
	}

	// The query selects newest-first; present ascending so clients merge
	// the batch into history correctly.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepo) ListSince(ctx context.Context, channel string, since int64) ([]domain.Message, error) {
	query := `
		SELECT id, channel, author, body, timestamp, tag
		FROM messages WHERE channel = $1 AND timestamp > $2
		ORDER BY timestamp, id`

	return r.listMessages(ctx, query, channel, since)
}

func (r *MessageRepo) Channels(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT DISTINCT channel FROM messages`)
	if err != nil {
		return nil, storageErr("list channels", err)
	}
	defer rows.Close()

	var channels []string
	for rows.Next() {
		var ch string
		if err := rows.Scan(&ch); err != nil {
			return nil, storageErr("scan channel", err)
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list channels", err)
	}
	return channels, nil
}

func (r *MessageRepo) listMessages(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list messages", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, storageErr("scan message", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list messages", err)
	}
	return messages, nil
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var msg domain.Message
	var tagStr string
	if err := row.Scan(&msg.ID, &msg.Channel, &msg.Author, &msg.Body, &msg.Sent, &tagStr); err != nil {
		return nil, err
	}
	tag, err := domain.ParseTag(tagStr)
	if err != nil {
		return nil, err
	}
	msg.Tag = tag
	return &msg, nil
}
