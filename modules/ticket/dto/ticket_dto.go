package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTicketRequest struct {
	Subject string `json:"subject" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

type RespondTicketRequest struct {
	Response string `json:"response" validate:"required"`
}

// TicketResponse is the wire shape for one ticket; nullable columns are
// flattened into plain optional fields.
type TicketResponse struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	UserID        uuid.UUID  `json:"userId"`
	UserName      string     `json:"userName,omitempty"`
	UserEmail     string     `json:"userEmail,omitempty"`
	Subject       string     `json:"subject"`
	Content       string     `json:"content"`
	StatusID      int        `json:"statusId"`
	Response      string     `json:"response,omitempty"`
	RespondedAt   *time.Time `json:"respondedAt,omitempty"`
	AttachmentKey string     `json:"attachmentKey,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}
