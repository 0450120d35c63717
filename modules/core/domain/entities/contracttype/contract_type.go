package contracttype

import "fmt"

// ContractType determines which status catalog and counterpart rule a
// workflow uses. The ids match the seeded lookup rows.
type ContractType int64

const (
	Old  ContractType = 1
	New  ContractType = 2
	Both ContractType = 3
)

func (t ContractType) Name() string {
	switch t {
	case Old:
		return "OLD"
	case New:
		return "NEW"
	case Both:
		return "BOTH"
	default:
		return ""
	}
}

func (t ContractType) IsValid() bool {
	return t == Old || t == New || t == Both
}

func All() []ContractType {
	return []ContractType{Old, New, Both}
}

func FromID(id int64) (ContractType, error) {
	t := ContractType(id)
	if !t.IsValid() {
		return 0, fmt.Errorf("unknown contract type id: %d", id)
	}
	return t, nil
}

// Resolve picks the effective contract type for a workflow between the
// creator's organization and the counterpart. An organization operating
// under BOTH contracts adopts the counterpart's type; BOTH on both
// sides collapses to NEW.
func Resolve(creator, counterpart ContractType) ContractType {
	if creator != Both {
		return creator
	}
	if counterpart == Both {
		return New
	}
	return counterpart
}
