package organization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
)

func TestIsDefaultCounterpartOf(t *testing.T) {
	now := time.Now()
	two := int64(2)
	metro := Hydrate(2, "Metro", contracttype.Old, nil, nil, now)
	authority := Hydrate(1, "Autoridad", contracttype.Both, &two, nil, now)

	// The authority designates Metro, so it may be answered by Metro
	// but not the other way round.
	require.True(t, metro.IsDefaultCounterpartOf(authority))
	require.False(t, authority.IsDefaultCounterpartOf(metro))
	require.False(t, metro.IsDefaultCounterpartOf(Organization{}))
}

func TestNewTrimsName(t *testing.T) {
	o := New("  Buses Sur  ", contracttype.New)
	require.Equal(t, "Buses Sur", o.Name())
	require.Equal(t, contracttype.New, o.ContractType())
}
