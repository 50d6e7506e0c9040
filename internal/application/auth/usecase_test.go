package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturati-api/internal/application/dto"
	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/infrastructure/memory"
	"github.com/jhoicas/facturati-api/pkg/jwt"
)

const secret = "test-secret"

func TestRegisterYLogin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := NewAuthUseCase(store.Users(), JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "facturati"})

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{
		Email:     "Fatima@Example.ma",
		Password:  "motdepasse",
		CompanyID: "33333333-3333-3333-3333-333333333333",
		Name:      "Fatima",
		Role:      entity.RoleMagasinier,
	})
	require.NoError(t, err)
	assert.Equal(t, "fatima@example.ma", user.Email)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "fatima@example.ma", Password: "x12345678"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	resp, err := uc.Login(ctx, dto.LoginRequest{Email: "fatima@example.ma", Password: "motdepasse"})
	require.NoError(t, err)
	id, err := jwt.Parse(secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, entity.RoleMagasinier, id.Role)
	assert.Equal(t, "Fatima", id.UserName)
}

func TestLogin_Errores(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := NewAuthUseCase(store.Users(), JWTConfig{Secret: secret, ExpMinutes: 5})
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.ma", Password: "motdepasse"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.ma", Password: "mauvais"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "x@b.ma", Password: "motdepasse"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRegister_RolPorDefecto(t *testing.T) {
	store := memory.NewStore()
	uc := NewAuthUseCase(store.Users(), JWTConfig{Secret: secret})
	user, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "v@b.ma", Password: "motdepasse"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleVendeur, user.Role)
	assert.Equal(t, "v@b.ma", user.Name)
}
