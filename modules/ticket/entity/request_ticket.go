package entity

import (
	"database/sql"

	"admission-api/core/entity"

	"github.com/google/uuid"
)

// RequestTicket is a support request raised from the portal. status_id walks
// pending -> responded -> closed; closing a pending ticket is also allowed.
type RequestTicket struct {
	entity.BaseEntity
	Code          string         `db:"code" json:"code"`
	UserID        uuid.UUID      `db:"user_id" json:"userId"`
	Subject       string         `db:"subject" json:"subject"`
	Content       string         `db:"content" json:"content"`
	StatusID      int            `db:"status_id" json:"statusId"`
	Response      sql.NullString `db:"response" json:"-"`
	ResponderID   uuid.NullUUID  `db:"responder_id" json:"-"`
	RespondedAt   sql.NullTime   `db:"responded_at" json:"-"`
	AttachmentKey sql.NullString `db:"attachment_key" json:"-"`
}

// TicketWithUser joins in the requester for staff listings.
type TicketWithUser struct {
	RequestTicket
	UserName  string `db:"user_name" json:"userName"`
	UserEmail string `db:"user_email" json:"userEmail"`
}
