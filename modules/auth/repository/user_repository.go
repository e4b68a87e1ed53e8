package repository

import (
	"context"
	"database/sql"
	"fmt"

	"admission-api/core/database"
	"admission-api/core/logger"
	"admission-api/core/params"
	"admission-api/modules/auth/entity"

	"github.com/google/uuid"
)

// UserRepository handles users database operations
type UserRepository struct {
	DB database.Database
}

func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{DB: db}
}

// UserRepositoryInterface defines the repository contract
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error)
	GetBySlug(ctx context.Context, slug string) (*entity.User, error)
	UpdateProfile(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error
	SelectCounselors(ctx context.Context, qp *params.QueryParams) ([]entity.User, int, error)
}

const userColumns = `
	id, email, phone, password, first_name, last_name, full_name,
	date_of_birth, gender, address, avatar_url, role, slug, google_id,
	email_verified_at, created_at, updated_at
`

func (r *UserRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `
		INSERT INTO users (email, phone, password, first_name, last_name, role, slug, google_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	var created entity.User
	err := r.DB.GetContext(ctx, &created, query,
		user.Email, user.Phone, user.Password, user.FirstName, user.LastName,
		user.Role, user.Slug, user.GoogleID)
	if err != nil {
		logger.Error("UserRepository:Create", err)
		return nil, err
	}
	return &created, nil
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	var user entity.User
	if err := r.DB.GetContext(ctx, &user, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("UserRepository:getOne", err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	return r.getOne(ctx, "google_id = $1", googleID)
}

func (r *UserRepository) GetBySlug(ctx context.Context, slug string) (*entity.User, error) {
	return r.getOne(ctx, "slug = $1", slug)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, phone = $4, date_of_birth = $5,
		    gender = $6, address = $7, avatar_url = $8, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Phone, user.DateOfBirth,
		user.Gender, user.Address, user.AvatarURL)
	if err != nil {
		logger.Error("UserRepository:UpdateProfile", err)
		return err
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, query, id, passwordHash); err != nil {
		logger.Error("UserRepository:UpdatePassword", err)
		return err
	}
	return nil
}

func (r *UserRepository) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	query := `UPDATE users SET google_id = $2, email_verified_at = COALESCE(email_verified_at, NOW()), updated_at = NOW() WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, query, id, googleID); err != nil {
		logger.Error("UserRepository:LinkGoogleID", err)
		return err
	}
	return nil
}

// SelectCounselors lists the consultant accounts for the public booking page.
func (r *UserRepository) SelectCounselors(ctx context.Context, qp *params.QueryParams) ([]entity.User, int, error) {
	where := `WHERE role = 'consultant'`
	args := []interface{}{}
	if qp.Search != "" {
		args = append(args, "%"+qp.Search+"%")
		where += ` AND (full_name ILIKE $1 OR email ILIKE $1)`
	}

	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM users `+where, args...); err != nil {
		logger.Error("UserRepository:SelectCounselors:Count", err)
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM users %s
		ORDER BY full_name
		LIMIT $%d OFFSET $%d`, userColumns, where, len(args)+1, len(args)+2)
	args = append(args, qp.PageSize, qp.Offset())

	users := []entity.User{}
	if err := r.DB.SelectContext(ctx, &users, query, args...); err != nil {
		logger.Error("UserRepository:SelectCounselors", err)
		return nil, 0, err
	}
	return users, total, nil
}
