package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexora-edu/learning-service/internal/models"
)

func TestTokenService_IssueAndParse(t *testing.T) {
	svc := NewTokenService("unit-test-secret")

	token, err := svc.Issue(42, models.RoleTeacher)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "learning-service", claims.Issuer)
}

func TestTokenService_Parse_WrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a")
	parser := NewTokenService("secret-b")

	token, err := issuer.Issue(1, models.RoleStudent)
	require.NoError(t, err)

	_, err = parser.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Parse_Garbage(t *testing.T) {
	svc := NewTokenService("unit-test-secret")

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
