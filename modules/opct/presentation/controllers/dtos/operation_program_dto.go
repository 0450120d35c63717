package dtos

import (
	"time"

	"github.com/transapp/opct/pkg/constants"
)

type OperationProgramDTO struct {
	StartAt     string `json:"start_at" validate:"required,datetime=2006-01-02"`
	ProgramType int64  `json:"op_type" validate:"required,gt=0"`
}

func (dto *OperationProgramDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *OperationProgramDTO) StartDate() (time.Time, error) {
	return time.Parse("2006-01-02", dto.StartAt)
}
