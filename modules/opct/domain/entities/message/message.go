package message

import (
	"context"
	"time"
)

// Message is a discussion entry on a change process, linked to the
// requests it concerns and optionally carrying file attachments.
type Message struct {
	ID                int64
	ProcessID         int64
	CreatorID         int64
	Text              string
	RelatedRequestIDs []int64
	CreatedAt         time.Time
}

// File is attachment metadata. Bytes live on disk under the upload dir;
// the row keeps name, size, sniffed mime type and the storage path.
type File struct {
	ID        int64
	MessageID int64
	Filename  string
	Size      int64
	MimeType  string
	Path      string
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, msg Message) (Message, error)
	AddFile(ctx context.Context, file File) (File, error)
	GetByProcess(ctx context.Context, processID int64) ([]Message, error)
	FilesByMessage(ctx context.Context, messageID int64) ([]File, error)
}
