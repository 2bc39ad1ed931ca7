package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/adiallo/labostock-api/pkg/jwt"
)

const secret = "secret-de-test"

func TestGenerateParse_AllerRetour(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-42", "technicien", "labostock", 60)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
	assert.Equal(t, "technicien", role)
}

func TestParse_Refus(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-42", "lecteur", "labostock", 60)
	require.NoError(t, err)

	// Mauvais secret.
	_, _, err = pkgjwt.Parse("autre-secret", tok)
	assert.Error(t, err)

	// Token expiré.
	expire, err := pkgjwt.Generate(secret, "user-42", "lecteur", "labostock", -1)
	require.NoError(t, err)
	_, _, err = pkgjwt.Parse(secret, expire)
	assert.Error(t, err)

	// Secret vide refusé des deux côtés.
	_, err = pkgjwt.Generate("", "user-42", "lecteur", "labostock", 60)
	assert.Error(t, err)
	_, _, err = pkgjwt.Parse("", tok)
	assert.Error(t, err)
}
