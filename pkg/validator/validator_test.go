package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRegister(t *testing.T) {
	require.False(t, ValidateRegister("alice", "longenough", "alice@example.com").HasErrors())
	require.False(t, ValidateRegister("alice", "longenough", "").HasErrors()) // email optional

	errs := ValidateRegister("", "short", "not-an-email")
	require.True(t, errs.HasErrors())
	require.Contains(t, errs, "username")
	require.Contains(t, errs, "password")
	require.Contains(t, errs, "email")

	require.True(t, ValidateRegister("has spaces", "longenough", "").HasErrors())
	require.True(t, ValidateRegister(strings.Repeat("a", 51), "longenough", "").HasErrors())
}

func TestValidateProfile_EmptyMeansKeep(t *testing.T) {
	require.False(t, ValidateProfile("", "").HasErrors())
	require.False(t, ValidateProfile("newname", "new@example.com").HasErrors())
	require.True(t, ValidateProfile("bad name", "").HasErrors())
	require.True(t, ValidateProfile("", "nope").HasErrors())
}

func TestValidateMessage(t *testing.T) {
	require.False(t, ValidateMessage("general", "hello").HasErrors())
	require.True(t, ValidateMessage("", "hello").HasErrors())
	require.True(t, ValidateMessage("general", "").HasErrors())
	require.True(t, ValidateMessage("general", strings.Repeat("x", 10001)).HasErrors())
}
