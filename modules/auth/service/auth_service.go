package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"admission-api/core/cache"
	"admission-api/core/constants"
	"admission-api/core/errors"
	"admission-api/core/logger"
	"admission-api/core/utils"
	"admission-api/modules/auth/dto"
	"admission-api/modules/auth/entity"
	"admission-api/modules/auth/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/lib/pq"
)

const (
	maxLoginAttempts   = 5
	loginAttemptWindow = 15 * time.Minute
)

// AuthService owns registration, credentials and the token lifecycle.
type AuthService struct {
	repo  repository.UserRepositoryInterface
	cache *cache.Cache
}

func NewAuthService(repo repository.UserRepositoryInterface, c *cache.Cache) *AuthService {
	return &AuthService{repo: repo, cache: c}
}

type AuthServiceInterface interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, *errors.AppError)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, *errors.AppError)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, *errors.AppError)
	Logout(ctx context.Context, accessToken string) *errors.AppError
	GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserProfile, *errors.AppError)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserProfile, *errors.AppError)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) *errors.AppError
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) *errors.AppError
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, *errors.AppError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.IsValidEmail(email) {
		return nil, errors.NewAppError(errors.ErrInvalidRequestData, "Email is not valid", nil)
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		logger.Error("AuthService:Register:GetByEmail:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to check the email", err)
	}
	if existing != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "Email is already registered", nil)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("AuthService:Register:HashPassword:Error:", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to process the password", err)
	}

	user := &entity.User{
		Email:     sql.NullString{String: email, Valid: true},
		Password:  sql.NullString{String: hash, Valid: true},
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      constants.RoleStudent,
		Slug:      sql.NullString{String: s.newSlug(req.FirstName, req.LastName), Valid: true},
	}
	if req.Phone != "" {
		user.Phone = sql.NullString{String: req.Phone, Valid: true}
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "Email is already registered", err)
		}
		logger.Error("AuthService:Register:Create:Error:", err)
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create the account", err)
	}

	return s.issueTokens(created)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, *errors.AppError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	attempts, err := s.cache.IncrementLoginAttempt(ctx, email, loginAttemptWindow)
	if err != nil {
		// Redis trouble must not lock everyone out of sign-in.
		logger.Error("AuthService:Login:IncrementLoginAttempt:Error:", err)
	} else if attempts > maxLoginAttempts {
		return nil, errors.NewAppError(errors.ErrRateLimited, "Too many failed attempts, try again later", nil)
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		logger.Error("AuthService:Login:GetByEmail:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the account", err)
	}
	if user == nil || !user.Password.Valid || !utils.ComparePassword(user.Password.String, req.Password) {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Email or password is incorrect", nil)
	}

	if err := s.cache.ResetLoginAttempt(ctx, email); err != nil {
		logger.Error("AuthService:Login:ResetLoginAttempt:Error:", err)
	}
	return s.issueTokens(user)
}

func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, *errors.AppError) {
	claims, err := utils.ValidateAndParseToken(req.RefreshToken)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Refresh token is invalid or expired", err)
	}
	if claims.Scope != constants.ScopeTokenRefresh {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Token is not a refresh token", nil)
	}

	blacklisted, err := s.cache.IsTokenBlacklisted(ctx, req.RefreshToken)
	if err != nil {
		logger.Error("AuthService:Refresh:IsTokenBlacklisted:Error:", err)
	} else if blacklisted {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Refresh token has been revoked", nil)
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		logger.Error("AuthService:Refresh:GetByID:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the account", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Account no longer exists", nil)
	}

	// Rotate: the old refresh token dies with its remaining lifetime.
	s.blacklist(ctx, req.RefreshToken, claims)
	return s.issueTokens(user)
}

func (s *AuthService) Logout(ctx context.Context, accessToken string) *errors.AppError {
	claims, err := utils.ValidateAndParseToken(accessToken)
	if err != nil {
		// An expired token needs no blacklisting.
		return nil
	}
	s.blacklist(ctx, accessToken, claims)
	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserProfile, *errors.AppError) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		logger.Error("AuthService:GetProfile:GetByID:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the profile", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Account not found", nil)
	}
	return toProfile(user), nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserProfile, *errors.AppError) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		logger.Error("AuthService:UpdateProfile:GetByID:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the profile", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Account not found", nil)
	}

	if req.FirstName != "" {
		user.FirstName = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		user.LastName = strings.TrimSpace(req.LastName)
	}
	user.Phone = nullable(req.Phone, user.Phone)
	user.Gender = nullable(req.Gender, user.Gender)
	user.Address = nullable(req.Address, user.Address)
	user.AvatarURL = nullable(req.AvatarURL, user.AvatarURL)
	if req.DateOfBirth != nil {
		user.DateOfBirth = sql.NullTime{Time: *req.DateOfBirth, Valid: true}
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		logger.Error("AuthService:UpdateProfile:UpdateProfile:Error:", err)
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update the profile", err)
	}
	return s.GetProfile(ctx, userID)
}

// ForgotPassword emails a six digit OTP. The response is identical whether
// or not the email exists, so the endpoint cannot be used to probe accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) *errors.AppError {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		logger.Error("AuthService:ForgotPassword:GetByEmail:Error:", err)
		return errors.NewAppError(errors.ErrGetFailed, "Failed to process the request", err)
	}
	if user == nil {
		return nil
	}

	otp := utils.GenerateOTP()
	if err := s.cache.SetOTP(ctx, constants.RedisKeyOTPChangePassword+email, otp); err != nil {
		logger.Error("AuthService:ForgotPassword:SetOTP:Error:", err)
		return errors.NewAppError(errors.ErrInternalServer, "Failed to process the request", err)
	}

	go func() {
		msg := utils.EmailMessage{
			To:      []string{email},
			Subject: "Mã xác nhận đặt lại mật khẩu",
			Body:    fmt.Sprintf("Mã xác nhận của bạn là %s. Mã có hiệu lực trong 5 phút.", otp),
		}
		if err := utils.SendEmailTLS(msg); err != nil {
			logger.Error("AuthService:ForgotPassword:SendEmailTLS:Error:", err)
		}
	}()
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) *errors.AppError {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	stored, err := s.cache.GetOTP(ctx, constants.RedisKeyOTPChangePassword+email)
	if err != nil || stored == "" || stored != req.OTP {
		return errors.NewAppError(errors.ErrUnauthorized, "OTP is invalid or expired", nil)
	}

	user, appErr := s.userByEmail(ctx, email)
	if appErr != nil {
		return appErr
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		logger.Error("AuthService:ResetPassword:HashPassword:Error:", err)
		return errors.NewAppError(errors.ErrInternalServer, "Failed to process the password", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		logger.Error("AuthService:ResetPassword:UpdatePassword:Error:", err)
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to update the password", err)
	}
	return nil
}

// ---- helpers ----

func (s *AuthService) issueTokens(user *entity.User) (*dto.TokenResponse, *errors.AppError) {
	access, err := utils.GenerateToken(user.ID, user.Email.String, user.Role, constants.ScopeTokenAccess)
	if err != nil {
		logger.Error("AuthService:issueTokens:Access:Error:", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to issue tokens", err)
	}
	refresh, err := utils.GenerateToken(user.ID, user.Email.String, user.Role, constants.ScopeTokenRefresh)
	if err != nil {
		logger.Error("AuthService:issueTokens:Refresh:Error:", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to issue tokens", err)
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         toProfile(user),
	}, nil
}

func (s *AuthService) blacklist(ctx context.Context, token string, claims *utils.TokenClaims) {
	ttl := time.Hour
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return
	}
	if err := s.cache.AddToTokenBlacklist(ctx, token, ttl); err != nil {
		logger.Error("AuthService:blacklist:AddToTokenBlacklist:Error:", err)
	}
}

func (s *AuthService) userByEmail(ctx context.Context, email string) (*entity.User, *errors.AppError) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		logger.Error("AuthService:userByEmail:GetByEmail:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the account", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Account not found", nil)
	}
	return user, nil
}

// newSlug derives a unique public slug from the name; the nanoid suffix
// avoids collisions without a read-modify-write loop.
func (s *AuthService) newSlug(firstName, lastName string) string {
	base := slug.Make(strings.TrimSpace(firstName + " " + lastName))
	if base == "" {
		base = "user"
	}
	return base + "-" + strings.ToLower(utils.GenerateID())
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

func nullable(value string, current sql.NullString) sql.NullString {
	if value == "" {
		return current
	}
	return sql.NullString{String: value, Valid: true}
}

func toProfile(user *entity.User) *dto.UserProfile {
	profile := &dto.UserProfile{
		ID:        user.ID,
		Email:     user.Email.String,
		Phone:     user.Phone.String,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName,
		Gender:    user.Gender.String,
		Address:   user.Address.String,
		AvatarURL: user.AvatarURL.String,
		Role:      user.Role,
		Slug:      user.Slug.String,
		CreatedAt: user.CreatedAt,
	}
	if user.DateOfBirth.Valid {
		dob := user.DateOfBirth.Time
		profile.DateOfBirth = &dob
	}
	return profile
}
