package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"admission-api/core/cache"
	"admission-api/core/constants"
	"admission-api/core/errors"
	"admission-api/core/params"
	"admission-api/core/utils"
	"admission-api/modules/auth/dto"
	"admission-api/modules/auth/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*entity.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) (*entity.User, error) {
	created := *user
	created.ID = uuid.New()
	created.FullName = strings.TrimSpace(created.FirstName + " " + created.LastName)
	f.users[created.ID] = &created
	return &created, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, user := range f.users {
		if user.Email.Valid && user.Email.String == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByGoogleID(_ context.Context, googleID string) (*entity.User, error) {
	for _, user := range f.users {
		if user.GoogleID.Valid && user.GoogleID.String == googleID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetBySlug(_ context.Context, s string) (*entity.User, error) {
	for _, user := range f.users {
		if user.Slug.Valid && user.Slug.String == s {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, user *entity.User) error {
	stored := f.users[user.ID]
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.FullName = strings.TrimSpace(user.FirstName + " " + user.LastName)
	stored.Phone = user.Phone
	stored.DateOfBirth = user.DateOfBirth
	stored.Gender = user.Gender
	stored.Address = user.Address
	stored.AvatarURL = user.AvatarURL
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.users[id].Password = sql.NullString{String: hash, Valid: true}
	return nil
}

func (f *fakeUserRepo) LinkGoogleID(_ context.Context, id uuid.UUID, googleID string) error {
	f.users[id].GoogleID = sql.NullString{String: googleID, Valid: true}
	return nil
}

func (f *fakeUserRepo) SelectCounselors(_ context.Context, _ *params.QueryParams) ([]entity.User, int, error) {
	out := []entity.User{}
	for _, user := range f.users {
		if user.Role == constants.RoleConsultant {
			out = append(out, *user)
		}
	}
	return out, len(out), nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *cache.Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	repo := newFakeUserRepo()
	return NewAuthService(repo, c), repo, c
}

func TestRegisterAndLogin(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)

	result, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "An.Nguyen@Example.edu.VN",
		Password:  "correct horse",
		FirstName: "An",
		LastName:  "Nguyễn",
	})

	require.Nil(t, appErr)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, constants.RoleStudent, result.User.Role)
	// Email is normalized, slug is derived from the name.
	assert.Equal(t, "an.nguyen@example.edu.vn", result.User.Email)
	assert.True(t, strings.HasPrefix(result.User.Slug, "an-nguyen-"))
	require.Len(t, repo.users, 1)

	// The access token round-trips through the validator.
	claims, err := utils.ValidateAndParseToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, constants.ScopeTokenAccess, claims.Scope)

	login, appErr := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "an.nguyen@example.edu.vn",
		Password: "correct horse",
	})
	require.Nil(t, appErr)
	assert.NotEmpty(t, login.AccessToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	req := &dto.RegisterRequest{Email: "a@b.vn", Password: "password1", FirstName: "A", LastName: "B"}
	_, appErr := svc.Register(context.Background(), req)
	require.Nil(t, appErr)

	_, appErr = svc.Register(context.Background(), req)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrAlreadyExists, appErr.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "a@b.vn", Password: "password1", FirstName: "A", LastName: "B",
	})
	require.Nil(t, appErr)

	_, appErr = svc.Login(context.Background(), &dto.LoginRequest{Email: "a@b.vn", Password: "nope"})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
}

func TestLogin_ThrottledAfterRepeatedFailures(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "a@b.vn", Password: "password1", FirstName: "A", LastName: "B",
	})
	require.Nil(t, appErr)

	for i := 0; i < 5; i++ {
		_, appErr := svc.Login(context.Background(), &dto.LoginRequest{Email: "a@b.vn", Password: "nope"})
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
	}

	// The sixth attempt is throttled even with the right password.
	_, appErr = svc.Login(context.Background(), &dto.LoginRequest{Email: "a@b.vn", Password: "password1"})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrRateLimited, appErr.Code)
}

func TestRefresh_RotatesAndRevokes(t *testing.T) {
	svc, _, c := newAuthFixture(t)
	registered, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "a@b.vn", Password: "password1", FirstName: "A", LastName: "B",
	})
	require.Nil(t, appErr)

	refreshed, appErr := svc.Refresh(context.Background(), &dto.RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	require.Nil(t, appErr)
	assert.NotEmpty(t, refreshed.AccessToken)

	// The old refresh token is now blacklisted.
	blacklisted, err := c.IsTokenBlacklisted(context.Background(), registered.RefreshToken)
	require.NoError(t, err)
	assert.True(t, blacklisted)

	_, appErr = svc.Refresh(context.Background(), &dto.RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	registered, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "a@b.vn", Password: "password1", FirstName: "A", LastName: "B",
	})
	require.Nil(t, appErr)

	_, appErr = svc.Refresh(context.Background(), &dto.RefreshRequest{
		RefreshToken: registered.AccessToken,
	})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
}

func TestLogout_BlacklistsAccessToken(t *testing.T) {
	svc, _, c := newAuthFixture(t)
	registered, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "a@b.vn", Password: "password1", FirstName: "A", LastName: "B",
	})
	require.Nil(t, appErr)

	require.Nil(t, svc.Logout(context.Background(), registered.AccessToken))

	blacklisted, err := c.IsTokenBlacklisted(context.Background(), registered.AccessToken)
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, repo, c := newAuthFixture(t)
	registered, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "a@b.vn", Password: "password1", FirstName: "A", LastName: "B",
	})
	require.Nil(t, appErr)

	require.Nil(t, svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: "a@b.vn"}))

	otp, err := c.GetOTP(context.Background(), constants.RedisKeyOTPChangePassword+"a@b.vn")
	require.NoError(t, err)
	require.Len(t, otp, 6)

	// Wrong OTP is rejected.
	appErr = svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Email: "a@b.vn", OTP: "000000", NewPassword: "new password",
	})
	if otp != "000000" {
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
	}

	require.Nil(t, svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Email: "a@b.vn", OTP: otp, NewPassword: "new password",
	}))

	user := repo.users[registered.User.ID]
	assert.True(t, utils.ComparePassword(user.Password.String, "new password"))
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	assert.Nil(t, svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: "ghost@b.vn"}))
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	registered, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "a@b.vn", Password: "password1", FirstName: "A", LastName: "B",
	})
	require.Nil(t, appErr)

	profile, appErr := svc.UpdateProfile(context.Background(), registered.User.ID, &dto.UpdateProfileRequest{
		Phone:   "0900000000",
		Address: "Quận 1, TP.HCM",
	})

	require.Nil(t, appErr)
	assert.Equal(t, "0900000000", profile.Phone)
	assert.Equal(t, "Quận 1, TP.HCM", profile.Address)
	// Untouched fields survive.
	assert.Equal(t, "A", profile.FirstName)
}
