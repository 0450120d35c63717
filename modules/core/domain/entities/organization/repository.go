package organization

import "context"

type Repository interface {
	GetAll(ctx context.Context) ([]Organization, error)
	GetByID(ctx context.Context, id int64) (Organization, error)
	Create(ctx context.Context, o Organization) (Organization, error)
	Update(ctx context.Context, o Organization) (Organization, error)
	Delete(ctx context.Context, id int64) error
}
