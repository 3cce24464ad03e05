package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestIssueAndParse(t *testing.T) {
	token, exp, err := IssueTableToken(testSecret, "table-1", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	id, err := ParseTableToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "table-1", id)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := IssueTableToken(testSecret, "table-1", time.Hour)
	require.NoError(t, err)

	_, err = ParseTableToken("other-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	token, _, err := IssueTableToken(testSecret, "table-1", -time.Minute)
	require.NoError(t, err)

	_, err = ParseTableToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseTableToken(testSecret, "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTableMismatch(t *testing.T) {
	token, _, err := IssueTableToken(testSecret, "table-1", time.Hour)
	require.NoError(t, err)

	assert.NoError(t, VerifyTableToken(testSecret, token, "table-1"))
	assert.ErrorIs(t, VerifyTableToken(testSecret, token, "table-2"), ErrInvalidToken)
}

func TestIssueRequiresSecret(t *testing.T) {
	_, _, err := IssueTableToken("", "table-1", time.Hour)
	assert.Error(t, err)
}
