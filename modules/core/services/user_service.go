package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/modules/core/infrastructure/persistence"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/eventbus"
	"github.com/transapp/opct/pkg/serrors"
)

// UserDependency reports records in another module that still reference
// a user. Deletion is refused while any remain.
type UserDependency struct {
	Kind  string
	Count int64
}

type UserDependencyChecker func(ctx context.Context, userID int64) ([]UserDependency, error)

type UserCreatedEvent struct{ User user.User }
type UserUpdatedEvent struct{ User user.User }
type UserDeletedEvent struct{ ID int64 }

type UserService struct {
	repo      user.Repository
	publisher eventbus.EventBus
	checkers  []UserDependencyChecker
}

func NewUserService(repo user.Repository, publisher eventbus.EventBus) *UserService {
	return &UserService{repo: repo, publisher: publisher}
}

// RegisterDependencyChecker lets other modules veto user deletion while
// their records still point at the user.
func (s *UserService) RegisterDependencyChecker(checker UserDependencyChecker) {
	s.checkers = append(s.checkers, checker)
}

func (s *UserService) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	var (
		users []user.User
		total int64
	)
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		users, total, err = s.repo.GetPaginated(txCtx, params)
		return err
	})
	if err != nil {
		return nil, 0, mapPgError(err)
	}
	return users, total, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		u, err = s.repo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, persistence.ErrUserNotFound) {
			return user.User{}, serrors.NotFound("USER_NOT_FOUND", "user not found", err)
		}
		return user.User{}, mapPgError(err)
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, u user.User) (user.User, error) {
	var created user.User
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.Create(txCtx, u)
		return err
	})
	if err != nil {
		return user.User{}, mapPgError(err)
	}
	s.publisher.Publish(UserCreatedEvent{User: created})
	return created, nil
}

func (s *UserService) Update(ctx context.Context, u user.User) (user.User, error) {
	var updated user.User
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.repo.Update(txCtx, u)
		return err
	})
	if err != nil {
		if errors.Is(err, persistence.ErrUserNotFound) {
			return user.User{}, serrors.NotFound("USER_NOT_FOUND", "user not found", err)
		}
		return user.User{}, mapPgError(err)
	}
	s.publisher.Publish(UserUpdatedEvent{User: updated})
	return updated, nil
}

// Delete removes a user unless other records still depend on it. The
// refusal enumerates what blocks the deletion instead of cascading.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetByID(txCtx, id); err != nil {
			if errors.Is(err, persistence.ErrUserNotFound) {
				return serrors.NotFound("USER_NOT_FOUND", "user not found", err)
			}
			return err
		}
		var blocking []string
		for _, check := range s.checkers {
			deps, err := check(txCtx, id)
			if err != nil {
				return err
			}
			for _, dep := range deps {
				if dep.Count > 0 {
					blocking = append(blocking, fmt.Sprintf("%s (%d)", dep.Kind, dep.Count))
				}
			}
		}
		if len(blocking) > 0 {
			return serrors.Conflict(
				"USER_IN_USE",
				fmt.Sprintf("user is referenced by %s", strings.Join(blocking, ", ")),
				nil,
			)
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return mapPgError(err)
	}
	s.publisher.Publish(UserDeletedEvent{ID: id})
	return nil
}
