package persistence

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/transapp/opct/modules/opct/domain/entities/message"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/repo"
)

const (
	messageInsertQuery = `
        INSERT INTO change_op_process_messages (process_id, creator_id, message, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id, created_at`

	messageFindQuery = `
        SELECT id, process_id, creator_id, message, created_at
        FROM change_op_process_messages`

	messageRelationsQuery = `
        SELECT request_id FROM change_op_process_message_requests
        WHERE message_id = $1 ORDER BY request_id`

	messageRelationsInsertQuery = `
        INSERT INTO change_op_process_message_requests (message_id, request_id) VALUES`

	fileInsertQuery = `
        INSERT INTO change_op_process_message_files (message_id, filename, size, mime_type, path, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, created_at`

	fileFindQuery = `
        SELECT id, message_id, filename, size, mime_type, path, created_at
        FROM change_op_process_message_files`
)

type PgMessageRepository struct{}

func NewMessageRepository() message.Repository {
	return &PgMessageRepository{}
}

func (g *PgMessageRepository) Create(ctx context.Context, msg message.Message) (message.Message, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return message.Message{}, err
	}
	if err := tx.QueryRow(
		ctx, messageInsertQuery,
		msg.ProcessID, msg.CreatorID, msg.Text,
	).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return message.Message{}, errors.Wrap(err, "failed to insert message")
	}

	if len(msg.RelatedRequestIDs) > 0 {
		values := make([][]interface{}, 0, len(msg.RelatedRequestIDs))
		for _, requestID := range msg.RelatedRequestIDs {
			values = append(values, []interface{}{msg.ID, requestID})
		}
		query, args := repo.BatchInsertQueryN(messageRelationsInsertQuery, values)
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return message.Message{}, errors.Wrap(err, "failed to link message requests")
		}
	}
	return msg, nil
}

func (g *PgMessageRepository) AddFile(ctx context.Context, file message.File) (message.File, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return message.File{}, err
	}
	if err := tx.QueryRow(
		ctx, fileInsertQuery,
		file.MessageID, file.Filename, file.Size, file.MimeType, file.Path,
	).Scan(&file.ID, &file.CreatedAt); err != nil {
		return message.File{}, errors.Wrap(err, "failed to insert message file")
	}
	return file, nil
}

func (g *PgMessageRepository) GetByProcess(ctx context.Context, processID int64) ([]message.Message, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, messageFindQuery+" WHERE process_id = $1 ORDER BY created_at DESC", processID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query messages")
	}
	defer rows.Close()

	var messages []message.Message
	for rows.Next() {
		var msg message.Message
		if err := rows.Scan(&msg.ID, &msg.ProcessID, &msg.CreatorID, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range messages {
		related, err := g.relatedRequests(ctx, messages[i].ID)
		if err != nil {
			return nil, err
		}
		messages[i].RelatedRequestIDs = related
	}
	return messages, nil
}

func (g *PgMessageRepository) relatedRequests(ctx context.Context, messageID int64) ([]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, messageRelationsQuery, messageID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query message requests")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (g *PgMessageRepository) FilesByMessage(ctx context.Context, messageID int64) ([]message.File, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, fileFindQuery+" WHERE message_id = $1 ORDER BY id", messageID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query message files")
	}
	defer rows.Close()

	var files []message.File
	for rows.Next() {
		var f message.File
		if err := rows.Scan(&f.ID, &f.MessageID, &f.Filename, &f.Size, &f.MimeType, &f.Path, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
