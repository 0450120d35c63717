package routedictionary

import (
	"context"
	"time"
)

// RouteDictionary maps one authority route code to the operator and
// user facing codes for it. Rows are keyed by AuthRouteCode and
// replaced wholesale on each dictionary import.
type RouteDictionary struct {
	ID            int64
	AuthRouteCode string
	OPRouteCode   string
	UserRouteCode string
	RouteType     string
	Operator      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type FindParams struct {
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]RouteDictionary, int64, error)
	GetByAuthCode(ctx context.Context, authRouteCode string) (RouteDictionary, error)
	// Upsert inserts the row or refreshes an existing one keyed by
	// AuthRouteCode. The bool reports whether a new row was created.
	Upsert(ctx context.Context, entry RouteDictionary) (RouteDictionary, bool, error)
}
