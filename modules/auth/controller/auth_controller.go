package controller

import (
	"admission-api/core/constants"
	"admission-api/core/controller"
	"admission-api/core/errors"
	"admission-api/core/params"
	"admission-api/core/utils"
	"admission-api/modules/auth/dto"
	"admission-api/modules/auth/service"

	"github.com/labstack/echo/v4"
)

// AuthController handles authentication HTTP requests
type AuthController struct {
	controller.BaseController
	AuthService   service.AuthServiceInterface
	GoogleService service.GoogleOAuthServiceInterface
	UserService   service.UserServiceInterface
}

func NewAuthController(authSvc service.AuthServiceInterface, googleSvc service.GoogleOAuthServiceInterface, userSvc service.UserServiceInterface) *AuthController {
	return &AuthController{
		BaseController: controller.NewBaseController(),
		AuthService:    authSvc,
		GoogleService:  googleSvc,
		UserService:    userSvc,
	}
}

func (c *AuthController) claims(ctx echo.Context) (*utils.TokenClaims, *errors.AppError) {
	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}
	return claims, nil
}

// Register handles POST /User/register
// @Summary Đăng ký tài khoản
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Thông tin đăng ký"
// @Success 200 {object} dto.TokenResponse
// @Failure 409 {object} errors.AppError
// @Router /User/register [post]
func (c *AuthController) Register(ctx echo.Context) error {
	var req dto.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "email, password, firstName and lastName are required")
	}
	if len(req.Password) < 8 {
		return c.BadRequest(errors.ErrInvalidRequestData, "Password must be at least 8 characters")
	}

	result, appErr := c.AuthService.Register(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Account created successfully")
}

// Login handles POST /User/login
// @Summary Đăng nhập
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Email và mật khẩu"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} errors.AppError
// @Router /User/login [post]
func (c *AuthController) Login(ctx echo.Context) error {
	var req dto.LoginRequest
	if err := ctx.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "email and password are required")
	}

	result, appErr := c.AuthService.Login(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Signed in successfully")
}

// Refresh handles POST /User/refresh
// @Summary Làm mới access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse
// @Router /User/refresh [post]
func (c *AuthController) Refresh(ctx echo.Context) error {
	var req dto.RefreshRequest
	if err := ctx.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "refreshToken is required")
	}

	result, appErr := c.AuthService.Refresh(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Token refreshed")
}

// Logout handles POST /User/logout
// @Summary Đăng xuất
// @Description Đưa access token hiện tại vào danh sách thu hồi
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} controller.Envelope
// @Router /User/logout [post]
func (c *AuthController) Logout(ctx echo.Context) error {
	token := utils.GetTokenFromHeader(ctx.Request().Header.Get("Authorization"))
	if token == "" {
		return c.Unauthorized(errors.ErrMissingAuthorizationHeader, "Missing Authorization header")
	}
	if appErr := c.AuthService.Logout(ctx.Request().Context(), token); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Signed out")
}

// SelectUserProfile handles GET /User/SelectUserProfile
// @Summary Lấy hồ sơ người dùng hiện tại
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserProfile
// @Router /User/SelectUserProfile [get]
func (c *AuthController) SelectUserProfile(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	profile, appErr := c.AuthService.GetProfile(ctx.Request().Context(), claims.UserID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, profile, "Profile retrieved successfully")
}

// UpdateProfile handles PATCH /User/profile
// @Summary Cập nhật hồ sơ
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Thông tin hồ sơ"
// @Success 200 {object} dto.UserProfile
// @Router /User/profile [patch]
func (c *AuthController) UpdateProfile(ctx echo.Context) error {
	claims, appErr := c.claims(ctx)
	if appErr != nil {
		return c.Unauthorized(appErr.Code, appErr.Message)
	}

	var req dto.UpdateProfileRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	profile, appErr := c.AuthService.UpdateProfile(ctx.Request().Context(), claims.UserID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, profile, "Profile updated successfully")
}

// ForgotPassword handles POST /User/forgot-password
// @Summary Quên mật khẩu
// @Description Gửi mã OTP đặt lại mật khẩu qua email
// @Tags Auth
// @Accept json
// @Param request body dto.ForgotPasswordRequest true "Email"
// @Success 200 {object} controller.Envelope
// @Router /User/forgot-password [post]
func (c *AuthController) ForgotPassword(ctx echo.Context) error {
	var req dto.ForgotPasswordRequest
	if err := ctx.Bind(&req); err != nil || req.Email == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "email is required")
	}

	if appErr := c.AuthService.ForgotPassword(ctx.Request().Context(), &req); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "If the email exists, an OTP has been sent")
}

// ResetPassword handles POST /User/reset-password
// @Summary Đặt lại mật khẩu bằng OTP
// @Tags Auth
// @Accept json
// @Param request body dto.ResetPasswordRequest true "Email, OTP và mật khẩu mới"
// @Success 200 {object} controller.Envelope
// @Router /User/reset-password [post]
func (c *AuthController) ResetPassword(ctx echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := ctx.Bind(&req); err != nil || req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "email, otp and newPassword are required")
	}
	if len(req.NewPassword) < 8 {
		return c.BadRequest(errors.ErrInvalidRequestData, "Password must be at least 8 characters")
	}

	if appErr := c.AuthService.ResetPassword(ctx.Request().Context(), &req); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Password updated, sign in again")
}

// GoogleAuthURL handles GET /User/google/login
// @Summary Lấy link đăng nhập Google
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.GoogleAuthURLResponse
// @Router /User/google/login [get]
func (c *AuthController) GoogleAuthURL(ctx echo.Context) error {
	result, appErr := c.GoogleService.AuthURL(ctx.Request().Context())
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Redirect the user to authUrl")
}

// GoogleCallback handles POST /User/google/callback
// @Summary Hoàn tất đăng nhập Google
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.GoogleCallbackRequest true "Code và state từ Google"
// @Success 200 {object} dto.TokenResponse
// @Router /User/google/callback [post]
func (c *AuthController) GoogleCallback(ctx echo.Context) error {
	var req dto.GoogleCallbackRequest
	if err := ctx.Bind(&req); err != nil || req.Code == "" || req.State == "" {
		return c.BadRequest(errors.ErrInvalidRequestData, "code and state are required")
	}

	result, appErr := c.GoogleService.HandleCallback(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Signed in with Google")
}

// SelectCounselors handles GET /User/counselors
// @Summary Danh sách tư vấn viên
// @Tags Auth
// @Produce json
// @Param pageNumber query int false "Trang"
// @Param pageSize query int false "Số bản ghi mỗi trang"
// @Param search query string false "Tìm theo tên hoặc email"
// @Success 200 {object} controller.Envelope
// @Router /User/counselors [get]
func (c *AuthController) SelectCounselors(ctx echo.Context) error {
	qp := params.NewQueryParams(ctx)
	page, appErr := c.UserService.SelectCounselors(ctx.Request().Context(), qp)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, page, "Counselors retrieved successfully")
}
