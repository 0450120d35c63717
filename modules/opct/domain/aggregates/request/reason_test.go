package request

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReasonCatalogIsComplete(t *testing.T) {
	reasons := Reasons()
	require.Len(t, reasons, 19)
	for _, r := range reasons {
		require.True(t, r.IsValid(), "reason %q should be valid", r)
		require.NotEmpty(t, r.Label())
		require.NotEqual(t, string(r), r.Label(), "reason %q should have a display label", r)
	}
}

func TestReasonLabels(t *testing.T) {
	require.Equal(t, "Acortamiento", ReasonShortening.Label())
	require.Equal(t, "Extensión", ReasonExtension.Label())
	require.Equal(t, "Otros", ReasonOther.Label())
}

func TestParseReason(t *testing.T) {
	r, err := ParseReason("shortening")
	require.NoError(t, err)
	require.Equal(t, ReasonShortening, r)

	_, err = ParseReason("demolition")
	require.Error(t, err)

	_, err = ParseReason("")
	require.Error(t, err)
}

func TestReasonsReturnsACopy(t *testing.T) {
	first := Reasons()
	first[0] = Reason("mutated")
	require.Equal(t, ReasonShortening, Reasons()[0])
}
