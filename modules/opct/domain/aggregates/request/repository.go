package request

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (ChangeOPRequest, error)
	GetByProcess(ctx context.Context, processID int64) ([]ChangeOPRequest, error)
	Create(ctx context.Context, req ChangeOPRequest) (ChangeOPRequest, error)
	Update(ctx context.Context, req ChangeOPRequest) (ChangeOPRequest, error)

	// SetRelatedRequests replaces the full related-requests set for one
	// request. The relation is stored as an explicit join table.
	SetRelatedRequests(ctx context.Context, requestID int64, relatedIDs []int64) error

	CountByOperationProgram(ctx context.Context, opID int64) (int64, error)
	CountByCreator(ctx context.Context, userID int64) (int64, error)
}
