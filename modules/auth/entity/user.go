package entity

import (
	"database/sql"

	"admission-api/core/entity"
)

// User covers all three roles; counselors additionally carry a public slug
// used on their schedule page.
type User struct {
	entity.BaseEntity
	Email           sql.NullString `db:"email" json:"email"`
	Phone           sql.NullString `db:"phone" json:"phone"`
	Password        sql.NullString `db:"password" json:"-"`
	FirstName       string         `db:"first_name" json:"firstName"`
	LastName        string         `db:"last_name" json:"lastName"`
	FullName        string         `db:"full_name" json:"fullName"`
	DateOfBirth     sql.NullTime   `db:"date_of_birth" json:"dateOfBirth"`
	Gender          sql.NullString `db:"gender" json:"gender"`
	Address         sql.NullString `db:"address" json:"address"`
	AvatarURL       sql.NullString `db:"avatar_url" json:"avatarUrl"`
	Role            string         `db:"role" json:"role"`
	Slug            sql.NullString `db:"slug" json:"slug"`
	GoogleID        sql.NullString `db:"google_id" json:"-"`
	EmailVerifiedAt sql.NullTime   `db:"email_verified_at" json:"-"`
}
