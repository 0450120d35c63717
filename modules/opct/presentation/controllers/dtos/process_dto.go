package dtos

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/transapp/opct/modules/opct/domain/aggregates/request"
	"github.com/transapp/opct/modules/opct/services"
	"github.com/transapp/opct/pkg/constants"
)

type CreateRequestDTO struct {
	Title            string   `json:"title" validate:"required,max=255"`
	Message          string   `json:"message" validate:"omitempty"`
	Reason           string   `json:"reason" validate:"required"`
	OperationProgram *int64   `json:"op" validate:"omitempty,gt=0"`
	RelatedRoutes    []string `json:"related_routes" validate:"omitempty,dive,required"`
	RelatedRequests  []int64  `json:"related_requests" validate:"omitempty,dive,gt=0"`
}

type CreateProcessDTO struct {
	Title            string             `json:"title" validate:"required,max=255"`
	Message          string             `json:"message" validate:"omitempty"`
	Counterpart      int64              `json:"counterpart" validate:"required,gt=0"`
	OperationProgram *int64             `json:"op" validate:"omitempty,gt=0"`
	Requests         []CreateRequestDTO `json:"change_op_requests" validate:"required,min=1,dive"`
}

type ChangeOPDTO struct {
	OperationProgram *int64 `json:"op" validate:"omitempty,gt=0"`
	UpdateDeadlines  bool   `json:"update_deadlines"`
}

type ChangeStatusDTO struct {
	Status int64 `json:"status" validate:"required,gt=0"`
}

type ChangeReasonDTO struct {
	Reason string `json:"reason" validate:"required"`
}

type UpdateRequestDTO struct {
	ID               int64    `json:"id" validate:"required,gt=0"`
	Title            string   `json:"title" validate:"required,max=255"`
	Message          string   `json:"message" validate:"omitempty"`
	Reason           string   `json:"reason" validate:"required"`
	OperationProgram *int64   `json:"op" validate:"omitempty,gt=0"`
	Status           int64    `json:"status" validate:"required,gt=0"`
	RelatedRoutes    []string `json:"related_routes" validate:"omitempty,dive,required"`
}

type UpdateRequestsDTO struct {
	Updates []UpdateRequestDTO `json:"change_op_requests" validate:"required,min=1,dive"`
}

type ChangeRelatedRequestsDTO struct {
	RelatedRequests []int64 `json:"related_requests" validate:"omitempty,dive,gt=0"`
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

func (dto *CreateProcessDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *ChangeOPDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *ChangeStatusDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *ChangeReasonDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *CreateRequestDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *UpdateRequestsDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *ChangeRelatedRequestsDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *CreateRequestDTO) ToInput() services.CreateRequestInput {
	return services.CreateRequestInput{
		Title:              dto.Title,
		Message:            dto.Message,
		Reason:             request.Reason(dto.Reason),
		OperationProgramID: dto.OperationProgram,
		RelatedRoutes:      dto.RelatedRoutes,
		RelatedRequestIDs:  dto.RelatedRequests,
	}
}

func (dto *CreateProcessDTO) ToInput() services.CreateProcessInput {
	requests := make([]services.CreateRequestInput, 0, len(dto.Requests))
	for i := range dto.Requests {
		requests = append(requests, dto.Requests[i].ToInput())
	}
	return services.CreateProcessInput{
		Title:              dto.Title,
		Message:            dto.Message,
		CounterpartID:      dto.Counterpart,
		OperationProgramID: dto.OperationProgram,
		Requests:           requests,
	}
}

func (dto *UpdateRequestsDTO) ToInputs() []services.UpdateRequestInput {
	updates := make([]services.UpdateRequestInput, 0, len(dto.Updates))
	for _, u := range dto.Updates {
		updates = append(updates, services.UpdateRequestInput{
			ID:                 u.ID,
			Title:              u.Title,
			Message:            u.Message,
			Reason:             request.Reason(u.Reason),
			OperationProgramID: u.OperationProgram,
			StatusID:           u.Status,
			RelatedRoutes:      u.RelatedRoutes,
		})
	}
	return updates
}
