package process

import "context"

type FindParams struct {
	// OrganizationID scopes listings to processes the organization
	// either created or receives as counterpart.
	OrganizationID int64
	Search         string
	Limit          int
	Offset         int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]ChangeOPProcess, int64, error)
	GetByID(ctx context.Context, id int64) (ChangeOPProcess, error)
	Create(ctx context.Context, p ChangeOPProcess) (ChangeOPProcess, error)
	Update(ctx context.Context, p ChangeOPProcess) (ChangeOPProcess, error)

	CountByOperationProgram(ctx context.Context, opID int64) (int64, error)
	CountByCounterpart(ctx context.Context, organizationID int64) (int64, error)
	CountByCreator(ctx context.Context, userID int64) (int64, error)
}
