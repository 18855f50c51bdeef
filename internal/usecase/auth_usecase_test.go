package usecase

import (
	"context"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *userRepoMock) UpdateLastLoginAt(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *userRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type refreshTokenRepoMock struct{ mock.Mock }

func (m *refreshTokenRepoMock) Create(ctx context.Context, t *model.RefreshToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *refreshTokenRepoMock) FindByTokenHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, hash)
	t, _ := args.Get(0).(*model.RefreshToken)
	return t, args.Error(1)
}

func (m *refreshTokenRepoMock) MarkUsed(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *refreshTokenRepoMock) RevokeAllForUser(ctx context.Context, userID int64, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

type authValidatorMock struct{ mock.Mock }

func (m *authValidatorMock) ValidateRegister(ctx context.Context, email string, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *authValidatorMock) ValidateLogin(ctx context.Context, email string, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *authValidatorMock) ValidateRefresh(ctx context.Context, refreshToken string, userAgent string) error {
	args := m.Called(ctx, refreshToken, userAgent)
	return args.Error(0)
}

func (m *authValidatorMock) ValidateForceLogout(ctx context.Context, targetUserID int64) error {
	args := m.Called(ctx, targetUserID)
	return args.Error(0)
}

func newAuthTestRig() (*userRepoMock, *refreshTokenRepoMock, *authValidatorMock, *AuthUsecase) {
	users := new(userRepoMock)
	rts := new(refreshTokenRepoMock)
	validator := new(authValidatorMock)
	uc := NewAuthUsecase(config.Config{JWTSecret: "test-secret"}, users, rts, validator)
	return users, rts, validator, uc
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	ctx := context.Background()
	users, rts, validator, uc := newAuthTestRig()

	validator.On("ValidateLogin", mock.Anything, "a@example.com", "secret123").Return(nil)
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(&model.User{
		ID: 1, Email: "a@example.com", PasswordHash: mustHash(t, "secret123"),
		Role: model.RoleUser, TokenVersion: 2, IsActive: true,
	}, nil)
	users.On("UpdateLastLoginAt", mock.Anything, int64(1)).Return(nil)
	rts.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		//平文は保存しない
		return rt.UserID == 1 && rt.TokenHash != "" && rt.UserAgent == "test-agent"
	})).Return(nil)

	out, err := uc.Login(ctx, AuthLoginRequest{Email: "a@example.com", Password: "secret123"}, "test-agent")
	assert.NoError(t, err)
	assert.NotEmpty(t, out.RefreshTokenPlain)
	assert.Equal(t, 2, out.Body.Token.TokenVersion)

	//発行したaccess tokenの中身を確認
	token, err := jwt.Parse(out.Body.Token.AccessToken, func(tk *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(1), claims["sub"])
	assert.Equal(t, float64(2), claims["tv"])

	rts.AssertExpectations(t)
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	users, rts, validator, uc := newAuthTestRig()

	validator.On("ValidateLogin", mock.Anything, "a@example.com", "wrong").Return(nil)
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(&model.User{
		ID: 1, Email: "a@example.com", PasswordHash: mustHash(t, "secret123"), IsActive: true,
	}, nil)

	_, err := uc.Login(ctx, AuthLoginRequest{Email: "a@example.com", Password: "wrong"}, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	rts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Login_InactiveUserIsForbidden(t *testing.T) {
	ctx := context.Background()
	users, _, validator, uc := newAuthTestRig()

	validator.On("ValidateLogin", mock.Anything, "a@example.com", "secret123").Return(nil)
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(&model.User{
		ID: 1, Email: "a@example.com", PasswordHash: mustHash(t, "secret123"), IsActive: false,
	}, nil)

	_, err := uc.Login(ctx, AuthLoginRequest{Email: "a@example.com", Password: "secret123"}, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthUsecase_Refresh_RotatesToken(t *testing.T) {
	ctx := context.Background()
	users, rts, validator, uc := newAuthTestRig()

	validator.On("ValidateRefresh", mock.Anything, "plain-token", "test-agent").Return(nil)
	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID: "rt-1", UserID: 1, UserAgent: "test-agent",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID: 1, Role: model.RoleUser, TokenVersion: 0, IsActive: true,
	}, nil)
	//旧tokenはusedへ、新tokenを発行
	rts.On("MarkUsed", mock.Anything, "rt-1", mock.Anything).Return(nil)
	rts.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		return rt.UserID == 1 && rt.ID != "rt-1"
	})).Return(nil)

	out, err := uc.Refresh(ctx, "plain-token", "test-agent")
	assert.NoError(t, err)
	assert.NotEmpty(t, out.RefreshTokenPlain)
	assert.NotEqual(t, "plain-token", out.RefreshTokenPlain)

	rts.AssertExpectations(t)
}

func TestAuthUsecase_Refresh_ReplayRevokesAll(t *testing.T) {
	ctx := context.Background()
	_, rts, validator, uc := newAuthTestRig()

	used := time.Now().Add(-time.Minute)

	validator.On("ValidateRefresh", mock.Anything, "plain-token", "test-agent").Return(nil)
	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID: "rt-1", UserID: 1, UserAgent: "test-agent",
		ExpiresAt: time.Now().Add(time.Hour), UsedAt: &used,
	}, nil)
	//使用済みtokenの再提示は持ち主の全refreshを失効させる
	rts.On("RevokeAllForUser", mock.Anything, int64(1), mock.Anything).Return(nil)

	_, err := uc.Refresh(ctx, "plain-token", "test-agent")
	assert.ErrorIs(t, err, ErrSecurityIncident)

	rts.AssertExpectations(t)
	rts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Refresh_UserAgentMismatchRevokesAll(t *testing.T) {
	ctx := context.Background()
	_, rts, validator, uc := newAuthTestRig()

	validator.On("ValidateRefresh", mock.Anything, "plain-token", "other-agent").Return(nil)
	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID: "rt-1", UserID: 1, UserAgent: "test-agent",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	rts.On("RevokeAllForUser", mock.Anything, int64(1), mock.Anything).Return(nil)

	_, err := uc.Refresh(ctx, "plain-token", "other-agent")
	assert.ErrorIs(t, err, ErrSecurityIncident)
}

func TestAuthUsecase_Refresh_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	_, rts, validator, uc := newAuthTestRig()

	validator.On("ValidateRefresh", mock.Anything, "plain-token", "").Return(nil)
	rts.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID: "rt-1", UserID: 1, ExpiresAt: time.Now().Add(-time.Hour),
	}, nil)

	_, err := uc.Refresh(ctx, "plain-token", "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	rts.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthUsecase_ForceLogout_BumpsTokenVersion(t *testing.T) {
	ctx := context.Background()
	users, rts, validator, uc := newAuthTestRig()

	validator.On("ValidateForceLogout", mock.Anything, int64(7)).Return(nil)
	users.On("IncrementTokenVersion", mock.Anything, int64(7)).Return(nil)
	rts.On("RevokeAllForUser", mock.Anything, int64(7), mock.Anything).Return(nil)
	users.On("FindByID", mock.Anything, int64(7)).Return(&model.User{
		ID: 7, TokenVersion: 3, IsActive: true,
	}, nil)

	out, err := uc.ForceLogout(ctx, 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.UserID)
	assert.Equal(t, 3, out.NewTokenVersion)

	users.AssertExpectations(t)
	rts.AssertExpectations(t)
}

func TestAuthUsecase_Register_HashesPassword(t *testing.T) {
	ctx := context.Background()
	users, _, validator, uc := newAuthTestRig()

	validator.On("ValidateRegister", mock.Anything, "a@example.com", "secret123").Return(nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "a@example.com" &&
			u.PasswordHash != "secret123" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")) == nil &&
			u.Role == model.RoleUser
	})).Return(nil)

	out, err := uc.Register(ctx, AuthRegisterRequest{
		Email: "a@example.com", Password: "secret123", Name: "Ada",
	})
	assert.NoError(t, err)
	assert.Equal(t, "a@example.com", out.User.Email)

	users.AssertExpectations(t)
}

func TestAuthUsecase_Register_DuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	users, _, validator, uc := newAuthTestRig()

	validator.On("ValidateRegister", mock.Anything, "a@example.com", "secret123").Return(nil)
	users.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := uc.Register(ctx, AuthRegisterRequest{Email: "a@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrConflict)
}
