package repo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinSkipsEmptyParts(t *testing.T) {
	require.Equal(t, "SELECT 1", Join("SELECT 1"))
	require.Equal(t, "SELECT 1 WHERE x = $1", Join("SELECT 1", "", "WHERE x = $1"))
	require.Equal(t, "a b c", Join("a", "  ", "b", "c"))
}

func TestJoinWhere(t *testing.T) {
	require.Equal(t, "", JoinWhere())
	require.Equal(t, "WHERE a = $1", JoinWhere("a = $1"))
	require.Equal(t, "WHERE a = $1 AND b = $2", JoinWhere("a = $1", "b = $2"))
}

func TestFormatLimitOffset(t *testing.T) {
	require.Equal(t, "", FormatLimitOffset(0, 0))
	require.Equal(t, "LIMIT 10", FormatLimitOffset(10, 0))
	require.Equal(t, "OFFSET 5", FormatLimitOffset(0, 5))
	require.Equal(t, "LIMIT 10 OFFSET 5", FormatLimitOffset(10, 5))
}

func TestBatchInsertQueryN(t *testing.T) {
	base := "INSERT INTO t (a, b) VALUES"

	query, args := BatchInsertQueryN(base, nil)
	require.Equal(t, base, query)
	require.Nil(t, args)

	query, args = BatchInsertQueryN(base, [][]interface{}{
		{1, "x"},
		{2, "y"},
	})
	require.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2), ($3, $4)", query)
	require.Equal(t, []interface{}{1, "x", 2, "y"}, args)
}
