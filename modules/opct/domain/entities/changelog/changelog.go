package changelog

import (
	"context"
	"fmt"
	"time"
)

// ChangeKind names what a log row records. The values are stored
// verbatim, so they never change meaning once written.
type ChangeKind string

const (
	StatusChange              ChangeKind = "STATUS_CHANGE"
	OPChange                  ChangeKind = "OP_CHANGE"
	OPChangeWithDeadlineStamp ChangeKind = "OP_CHANGE_WITH_DEADLINE_UPDATE"
	RequestCreation           ChangeKind = "REQUEST_CREATION"
	RequestUpdate             ChangeKind = "REQUEST_UPDATE"
	ReasonChange              ChangeKind = "REASON_CHANGE"
)

func (k ChangeKind) IsValid() bool {
	switch k {
	case StatusChange, OPChange, OPChangeWithDeadlineStamp, RequestCreation, RequestUpdate, ReasonChange:
		return true
	}
	return false
}

func ParseChangeKind(raw string) (ChangeKind, error) {
	k := ChangeKind(raw)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown change kind: %q", raw)
	}
	return k, nil
}

// ProcessLog is one immutable audit record for a process-level change.
type ProcessLog struct {
	ID        int64
	ProcessID int64
	UserID    int64
	Kind      ChangeKind
	Previous  Snapshot
	New       Snapshot
	CreatedAt time.Time
}

// RequestLog is one immutable audit record for a request-level change.
type RequestLog struct {
	ID        int64
	RequestID int64
	UserID    int64
	Kind      ChangeKind
	Previous  Snapshot
	New       Snapshot
	CreatedAt time.Time
}

// OPDataLog records edits to an operation program's own fields. The
// previous half of a new row chains from the latest existing row so the
// full history replays as a linked list of states.
type OPDataLog struct {
	ID                 int64
	OperationProgramID int64
	UserID             int64
	Previous           Snapshot
	New                Snapshot
	CreatedAt          time.Time
}

// Repository appends and reads log rows. Append never validates
// business rules: callers own snapshot correctness, and an insert
// failure must abort the caller's whole operation.
type Repository interface {
	AppendProcessLog(ctx context.Context, log ProcessLog) error
	AppendRequestLog(ctx context.Context, log RequestLog) error
	AppendOPDataLog(ctx context.Context, log OPDataLog) error

	ProcessLogs(ctx context.Context, processID int64) ([]ProcessLog, error)
	RequestLogs(ctx context.Context, requestID int64) ([]RequestLog, error)
	OPDataLogs(ctx context.Context, opID int64) ([]OPDataLog, error)
	LatestOPDataLog(ctx context.Context, opID int64) (*OPDataLog, error)
}
