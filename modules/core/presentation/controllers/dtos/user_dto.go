package dtos

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/pkg/constants"
)

type CreateUserDTO struct {
	Email          string   `json:"email" validate:"required,email"`
	FirstName      string   `json:"first_name" validate:"omitempty,max=255"`
	LastName       string   `json:"last_name" validate:"omitempty,max=255"`
	OrganizationID int64    `json:"organization_id" validate:"required,gt=0"`
	Password       string   `json:"password" validate:"required,min=8"`
	Groups         []string `json:"groups" validate:"omitempty,dive,required"`
	IsStaff        bool     `json:"is_staff"`
}

type UpdateUserDTO struct {
	Email          string   `json:"email" validate:"required,email"`
	FirstName      string   `json:"first_name" validate:"omitempty,max=255"`
	LastName       string   `json:"last_name" validate:"omitempty,max=255"`
	OrganizationID int64    `json:"organization_id" validate:"required,gt=0"`
	Password       string   `json:"password" validate:"omitempty,min=8"`
	Groups         []string `json:"groups" validate:"omitempty,dive,required"`
	IsStaff        bool     `json:"is_staff"`
}

func validationMessages(errs error) (map[string]string, bool) {
	if errs == nil {
		return nil, true
	}
	errorMessages := map[string]string{}
	for _, err := range errs.(validator.ValidationErrors) {
		errorMessages[err.Field()] = fmt.Sprintf("failed %q validation", err.Tag())
	}
	return errorMessages, len(errorMessages) == 0
}

func (dto *CreateUserDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *UpdateUserDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *CreateUserDTO) ToEntity() (user.User, error) {
	u := user.New(dto.Email, dto.FirstName, dto.LastName, dto.OrganizationID)
	u = u.SetGroups(dto.Groups).SetStaff(dto.IsStaff)
	return u.SetPassword(dto.Password)
}

func (dto *UpdateUserDTO) Apply(u user.User) (user.User, error) {
	updated := user.Hydrate(
		u.ID(), dto.Email, dto.FirstName, dto.LastName, dto.OrganizationID,
		dto.Groups, u.PasswordHash(), dto.IsStaff, u.LastLogin(), u.CreatedAt(), u.UpdatedAt(),
	)
	if dto.Password != "" {
		return updated.SetPassword(dto.Password)
	}
	return updated, nil
}
