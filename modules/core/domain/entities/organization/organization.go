package organization

import (
	"strings"
	"time"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
)

type Organization struct {
	id                   int64
	name                 string
	contractType         contracttype.ContractType
	defaultCounterpartID *int64
	defaultUserContactID *int64
	createdAt            time.Time
}

func New(name string, contractType contracttype.ContractType) Organization {
	return Organization{
		name:         strings.TrimSpace(name),
		contractType: contractType,
	}
}

func Hydrate(
	id int64,
	name string,
	contractType contracttype.ContractType,
	defaultCounterpartID *int64,
	defaultUserContactID *int64,
	createdAt time.Time,
) Organization {
	return Organization{
		id:                   id,
		name:                 name,
		contractType:         contractType,
		defaultCounterpartID: defaultCounterpartID,
		defaultUserContactID: defaultUserContactID,
		createdAt:            createdAt,
	}
}

func (o Organization) ID() int64                                { return o.id }
func (o Organization) Name() string                             { return o.name }
func (o Organization) ContractType() contracttype.ContractType  { return o.contractType }
func (o Organization) DefaultCounterpartID() *int64             { return o.defaultCounterpartID }
func (o Organization) DefaultUserContactID() *int64             { return o.defaultUserContactID }
func (o Organization) CreatedAt() time.Time                     { return o.createdAt }

func (o Organization) SetDefaultCounterpart(id *int64) Organization {
	o.defaultCounterpartID = id
	return o
}

func (o Organization) SetDefaultUserContact(id *int64) Organization {
	o.defaultUserContactID = id
	return o
}

// IsDefaultCounterpartOf reports whether other designates this
// organization as its default counterpart. Process creation for
// single-contract organizations requires this relationship.
func (o Organization) IsDefaultCounterpartOf(other Organization) bool {
	return other.defaultCounterpartID != nil && *other.defaultCounterpartID == o.id
}
