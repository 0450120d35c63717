package dtos

import "github.com/transapp/opct/pkg/constants"

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (dto *LoginDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (dto *ChangePasswordDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}
