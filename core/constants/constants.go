package constants

import "time"

// Server
const (
	DefaultServerPort     = 7070
	DefaultRequestTimeout = 30 * time.Second
	DefaultTimeout        = 10 * time.Second
	ShutdownTimeout       = 15 * time.Second
)

// Database pool settings
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Token scopes
const (
	ScopeTokenAccess        = "access"
	ScopeTokenRefresh       = "refresh"
	ScopeTokenResetPassword = "reset_password"
)

// User roles
const (
	RoleStudent    = "student"
	RoleConsultant = "consultant"
	RoleAdmin      = "admin"
)

// Echo context keys
const (
	ContextTokenData = "token_data"
)

// Redis key prefixes
const (
	RedisKeyTokenBlacklist    = "auth:blacklist:"
	RedisKeyLoginAttempt      = "auth:login_attempt:"
	RedisKeyOTPChangePassword = "auth:otp:change_password:"
	RedisKeyOAuthState        = "auth:oauth_state:"
	RedisKeyBookingSession    = "booking:session:"
	RedisKeyBookingGuard      = "booking:inflight:"
)

// Booking
const (
	BookingSessionTTL = 15 * time.Minute
	BookingGuardTTL   = 30 * time.Second
	// Pending appointments older than this are swept and their slot re-opened.
	PendingPaymentTTL = 30 * time.Minute
	// ConsultationFee is the flat per-appointment fee in VND.
	ConsultationFee = 200000
)

// Appointment statuses (payment lifecycle).
const (
	AppointmentStatusPending   = 1
	AppointmentStatusPaid      = 2
	AppointmentStatusCancelled = 3
	AppointmentStatusCompleted = 4
)

// Counselor schedule statuses.
const (
	ScheduleStatusAvailable = 1
	ScheduleStatusBooked    = 2
)

// Ticket statuses.
const (
	TicketStatusPending   = 1
	TicketStatusResponded = 2
	TicketStatusClosed    = 3
)
