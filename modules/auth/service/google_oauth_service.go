package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"admission-api/core/cache"
	"admission-api/core/config"
	"admission-api/core/constants"
	"admission-api/core/errors"
	"admission-api/core/logger"
	"admission-api/core/utils"
	"admission-api/modules/auth/dto"
	"admission-api/modules/auth/entity"
	"admission-api/modules/auth/repository"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleOAuthService signs users in with their Google account. First-time
// sign-ins create a student account; returning ones are matched by google_id,
// then by email.
type GoogleOAuthService struct {
	repo  repository.UserRepositoryInterface
	auth  *AuthService
	cache *cache.Cache
	oauth *oauth2.Config
}

func NewGoogleOAuthService(repo repository.UserRepositoryInterface, auth *AuthService, c *cache.Cache, cfg config.GoogleAPIConfig) *GoogleOAuthService {
	return &GoogleOAuthService{
		repo:  repo,
		auth:  auth,
		cache: c,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

type GoogleOAuthServiceInterface interface {
	AuthURL(ctx context.Context) (*dto.GoogleAuthURLResponse, *errors.AppError)
	HandleCallback(ctx context.Context, req *dto.GoogleCallbackRequest) (*dto.TokenResponse, *errors.AppError)
}

// AuthURL issues the consent redirect with a single-use state token.
func (s *GoogleOAuthService) AuthURL(ctx context.Context) (*dto.GoogleAuthURLResponse, *errors.AppError) {
	state := utils.GenerateRandomString(32)
	if err := s.cache.SetOTP(ctx, constants.RedisKeyOAuthState+state, "1"); err != nil {
		logger.Error("GoogleOAuthService:AuthURL:SetOTP:Error:", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to start the Google sign-in", err)
	}
	return &dto.GoogleAuthURLResponse{
		AuthURL: s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline),
		State:   state,
	}, nil
}

func (s *GoogleOAuthService) HandleCallback(ctx context.Context, req *dto.GoogleCallbackRequest) (*dto.TokenResponse, *errors.AppError) {
	if _, err := s.cache.GetOTP(ctx, constants.RedisKeyOAuthState+req.State); err != nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "OAuth state is invalid or expired", err)
	}

	token, err := s.oauth.Exchange(ctx, req.Code)
	if err != nil {
		logger.Error("GoogleOAuthService:HandleCallback:Exchange:Error:", err)
		return nil, errors.NewAppError(errors.ErrUpstreamApplication, "Google rejected the authorization code", err)
	}

	info, appErr := s.fetchUserInfo(ctx, token)
	if appErr != nil {
		return nil, appErr
	}

	user, appErr := s.findOrCreate(ctx, info)
	if appErr != nil {
		return nil, appErr
	}
	return s.auth.issueTokens(user)
}

type googleUserInfo struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

func (s *GoogleOAuthService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, *errors.AppError) {
	client := s.oauth.Client(ctx, token)
	client.Timeout = 10 * time.Second

	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		logger.Error("GoogleOAuthService:fetchUserInfo:Get:Error:", err)
		return nil, errors.NewAppError(errors.ErrUpstreamNetwork, "Google userinfo is unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpstreamNetwork, "Failed to read the Google userinfo response", err)
	}
	if resp.StatusCode != http.StatusOK {
		logger.Error("GoogleOAuthService:fetchUserInfo:HTTPError", "status", resp.StatusCode, "body", string(raw))
		return nil, errors.NewAppError(errors.ErrUpstreamHTTP,
			fmt.Sprintf("Google userinfo returned HTTP %d", resp.StatusCode), nil)
	}

	var info googleUserInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, errors.NewAppError(errors.ErrUpstreamDataShape, "Google userinfo returned a non-JSON body", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, errors.NewAppError(errors.ErrUpstreamDataShape, "Google userinfo is missing id or email", nil)
	}
	return &info, nil
}

func (s *GoogleOAuthService) findOrCreate(ctx context.Context, info *googleUserInfo) (*entity.User, *errors.AppError) {
	user, err := s.repo.GetByGoogleID(ctx, info.ID)
	if err != nil {
		logger.Error("GoogleOAuthService:findOrCreate:GetByGoogleID:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the account", err)
	}
	if user != nil {
		return user, nil
	}

	email := strings.ToLower(info.Email)
	user, err = s.repo.GetByEmail(ctx, email)
	if err != nil {
		logger.Error("GoogleOAuthService:findOrCreate:GetByEmail:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load the account", err)
	}
	if user != nil {
		// Existing password account signing in with Google for the first time.
		if err := s.repo.LinkGoogleID(ctx, user.ID, info.ID); err != nil {
			logger.Error("GoogleOAuthService:findOrCreate:LinkGoogleID:Error:", err)
			return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to link the Google account", err)
		}
		user.GoogleID = sql.NullString{String: info.ID, Valid: true}
		return user, nil
	}

	created, err := s.repo.Create(ctx, &entity.User{
		Email:     sql.NullString{String: email, Valid: true},
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
		Role:      constants.RoleStudent,
		Slug:      sql.NullString{String: s.auth.newSlug(info.GivenName, info.FamilyName), Valid: true},
		GoogleID:  sql.NullString{String: info.ID, Valid: true},
	})
	if err != nil {
		logger.Error("GoogleOAuthService:findOrCreate:Create:Error:", err)
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create the account", err)
	}
	return created, nil
}
