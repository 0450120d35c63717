package contracttype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromID(t *testing.T) {
	for _, id := range []int64{1, 2, 3} {
		ct, err := FromID(id)
		require.NoError(t, err)
		require.Equal(t, id, int64(ct))
	}
	for _, id := range []int64{0, 4, -1} {
		_, err := FromID(id)
		require.Error(t, err)
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		creator     ContractType
		counterpart ContractType
		want        ContractType
	}{
		{Old, New, Old},
		{Old, Both, Old},
		{New, Old, New},
		{New, Both, New},
		{Both, Old, Old},
		{Both, New, New},
		{Both, Both, New},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Resolve(tc.creator, tc.counterpart),
			"Resolve(%s, %s)", tc.creator.Name(), tc.counterpart.Name())
	}
}

func TestNames(t *testing.T) {
	require.Equal(t, "OLD", Old.Name())
	require.Equal(t, "NEW", New.Name())
	require.Equal(t, "BOTH", Both.Name())
	require.Equal(t, "", ContractType(9).Name())
}
