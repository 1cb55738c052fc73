package token_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"govendas/internal/pkg/token"
)

// TestGenerateAndValidateToken testa o ciclo completo: o token emitido
// valida e devolve o mesmo ID de usuário.
func TestGenerateAndValidateToken(t *testing.T) {
	svc := token.NewService("chave-de-teste", time.Hour)
	userID := uuid.NewString()

	tokenString, err := svc.GenerateToken(userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := svc.ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "GoVendas-API", claims.Issuer)
}

// TestValidateToken_ChaveErrada testa a rejeição de um token assinado
// com outra chave.
func TestValidateToken_ChaveErrada(t *testing.T) {
	issuer := token.NewService("chave-a", time.Hour)
	validator := token.NewService("chave-b", time.Hour)

	tokenString, err := issuer.GenerateToken(uuid.NewString())
	assert.NoError(t, err)

	_, err = validator.ValidateToken(tokenString)
	assert.Error(t, err)
}

// TestValidateToken_Expirado testa a rejeição de um token vencido.
func TestValidateToken_Expirado(t *testing.T) {
	svc := token.NewService("chave-de-teste", -time.Minute)

	tokenString, err := svc.GenerateToken(uuid.NewString())
	assert.NoError(t, err)

	_, err = svc.ValidateToken(tokenString)
	assert.Error(t, err)
}

// TestValidateToken_Malformado testa a rejeição de lixo no lugar do
// token.
func TestValidateToken_Malformado(t *testing.T) {
	svc := token.NewService("chave-de-teste", time.Hour)

	_, err := svc.ValidateToken("não-é-um-jwt")
	assert.Error(t, err)
}
