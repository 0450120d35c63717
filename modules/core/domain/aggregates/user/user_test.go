package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetPasswordAndCheck(t *testing.T) {
	u := New("ana@example.com", "Ana", "Rojas", 1)

	u, err := u.SetPassword("s3cretpass")
	require.NoError(t, err)
	require.NotEmpty(t, u.PasswordHash())
	require.NotEqual(t, "s3cretpass", u.PasswordHash())

	require.True(t, u.CheckPassword("s3cretpass"))
	require.False(t, u.CheckPassword("wrong"))
	require.False(t, User{}.CheckPassword(""))
}

func TestInGroup(t *testing.T) {
	now := time.Now()
	u := Hydrate(1, "ana@example.com", "Ana", "Rojas", 1, []string{GroupUser, GroupOperationProgram}, "", false, nil, now, now)

	require.True(t, u.InGroup(GroupUser))
	require.True(t, u.InGroup(GroupOperationProgram))
	require.False(t, u.InGroup(GroupOrganization))
}

func TestFullName(t *testing.T) {
	u := New("ana@example.com", "Ana", "Rojas", 1)
	require.Equal(t, "Ana Rojas", u.FullName())

	require.Equal(t, "Ana", New("a@b.c", "Ana", "", 1).FullName())
	require.Equal(t, "", New("a@b.c", "", "", 1).FullName())
}
