package dtos

import (
	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
	"github.com/transapp/opct/modules/core/domain/entities/organization"
	"github.com/transapp/opct/pkg/constants"
)

type CreateOrganizationDTO struct {
	Name                 string `json:"name" validate:"required,max=255"`
	ContractTypeID       int64  `json:"contract_type" validate:"required,oneof=1 2 3"`
	DefaultCounterpartID *int64 `json:"default_counterpart" validate:"omitempty,gt=0"`
	DefaultUserContactID *int64 `json:"default_user_contact" validate:"omitempty,gt=0"`
}

type UpdateOrganizationDTO struct {
	Name                 string `json:"name" validate:"required,max=255"`
	ContractTypeID       int64  `json:"contract_type" validate:"required,oneof=1 2 3"`
	DefaultCounterpartID *int64 `json:"default_counterpart" validate:"omitempty,gt=0"`
	DefaultUserContactID *int64 `json:"default_user_contact" validate:"omitempty,gt=0"`
}

func (dto *CreateOrganizationDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *UpdateOrganizationDTO) Ok() (map[string]string, bool) {
	return validationMessages(constants.Validate.Struct(dto))
}

func (dto *CreateOrganizationDTO) ToEntity() (organization.Organization, error) {
	ct, err := contracttype.FromID(dto.ContractTypeID)
	if err != nil {
		return organization.Organization{}, err
	}
	org := organization.New(dto.Name, ct)
	org = org.SetDefaultCounterpart(dto.DefaultCounterpartID)
	org = org.SetDefaultUserContact(dto.DefaultUserContactID)
	return org, nil
}

func (dto *UpdateOrganizationDTO) Apply(org organization.Organization) (organization.Organization, error) {
	ct, err := contracttype.FromID(dto.ContractTypeID)
	if err != nil {
		return organization.Organization{}, err
	}
	updated := organization.Hydrate(org.ID(), dto.Name, ct, dto.DefaultCounterpartID, dto.DefaultUserContactID, org.CreatedAt())
	return updated, nil
}
