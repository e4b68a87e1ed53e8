package repository

import (
	"context"
	"database/sql"
	"fmt"

	"admission-api/core/database"
	"admission-api/core/logger"
	"admission-api/core/params"
	"admission-api/modules/ticket/entity"

	"github.com/google/uuid"
)

// TicketRepository handles request_tickets database operations
type TicketRepository struct {
	DB database.Database
}

func NewTicketRepository(db database.Database) *TicketRepository {
	return &TicketRepository{DB: db}
}

// TicketRepositoryInterface defines the repository contract
type TicketRepositoryInterface interface {
	Create(ctx context.Context, ticket *entity.RequestTicket) (*entity.RequestTicket, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.TicketWithUser, error)
	SelectByUser(ctx context.Context, userID uuid.UUID, qp *params.QueryParams) ([]entity.TicketWithUser, int, error)
	SelectByStatus(ctx context.Context, statusID int, qp *params.QueryParams) ([]entity.TicketWithUser, int, error)
	Respond(ctx context.Context, id uuid.UUID, responderID uuid.UUID, response string, statusID int) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, statusID int) error
	CountByStatus(ctx context.Context, statusID int) (int, error)
}

const ticketColumns = `
	t.id, t.code, t.user_id, t.subject, t.content, t.status_id,
	t.response, t.responder_id, t.responded_at, t.attachment_key,
	t.created_at, t.updated_at,
	u.full_name AS user_name, u.email AS user_email
`

const ticketJoins = `
	FROM request_tickets t
	JOIN users u ON u.id = t.user_id
`

func (r *TicketRepository) Create(ctx context.Context, ticket *entity.RequestTicket) (*entity.RequestTicket, error) {
	query := `
		INSERT INTO request_tickets (code, user_id, subject, content, status_id, attachment_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, code, user_id, subject, content, status_id,
		          response, responder_id, responded_at, attachment_key,
		          created_at, updated_at
	`

	var created entity.RequestTicket
	err := r.DB.GetContext(ctx, &created, query,
		ticket.Code, ticket.UserID, ticket.Subject, ticket.Content,
		ticket.StatusID, ticket.AttachmentKey)
	if err != nil {
		logger.Error("TicketRepository:Create", err)
		return nil, err
	}
	return &created, nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.TicketWithUser, error) {
	query := `SELECT ` + ticketColumns + ticketJoins + ` WHERE t.id = $1`

	var ticket entity.TicketWithUser
	if err := r.DB.GetContext(ctx, &ticket, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("TicketRepository:GetByID", err)
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) SelectByUser(ctx context.Context, userID uuid.UUID, qp *params.QueryParams) ([]entity.TicketWithUser, int, error) {
	return r.selectPaged(ctx, "t.user_id = $1", []interface{}{userID}, qp)
}

func (r *TicketRepository) SelectByStatus(ctx context.Context, statusID int, qp *params.QueryParams) ([]entity.TicketWithUser, int, error) {
	if statusID == 0 {
		return r.selectPaged(ctx, "1=1", nil, qp)
	}
	return r.selectPaged(ctx, "t.status_id = $1", []interface{}{statusID}, qp)
}

func (r *TicketRepository) selectPaged(ctx context.Context, where string, args []interface{}, qp *params.QueryParams) ([]entity.TicketWithUser, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) ` + ticketJoins + ` WHERE ` + where
	if err := r.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		logger.Error("TicketRepository:selectPaged:Count", err)
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE %s
		ORDER BY t.created_at DESC
		LIMIT $%d OFFSET $%d`, ticketColumns, ticketJoins, where, len(args)+1, len(args)+2)
	args = append(args, qp.PageSize, qp.Offset())

	tickets := []entity.TicketWithUser{}
	if err := r.DB.SelectContext(ctx, &tickets, query, args...); err != nil {
		logger.Error("TicketRepository:selectPaged", err)
		return nil, 0, err
	}
	return tickets, total, nil
}

// Respond writes the staff answer onto a pending ticket; reports false when
// the ticket was not pending (answered concurrently or already closed).
func (r *TicketRepository) Respond(ctx context.Context, id uuid.UUID, responderID uuid.UUID, response string, statusID int) (bool, error) {
	query := `
		UPDATE request_tickets
		SET response = $2, responder_id = $3, responded_at = NOW(),
		    status_id = $4, updated_at = NOW()
		WHERE id = $1 AND status_id = 1
	`
	result, err := r.DB.ExecContext(ctx, query, id, response, responderID, statusID)
	if err != nil {
		logger.Error("TicketRepository:Respond", err)
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *TicketRepository) UpdateStatus(ctx context.Context, id uuid.UUID, statusID int) error {
	query := `UPDATE request_tickets SET status_id = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, query, id, statusID); err != nil {
		logger.Error("TicketRepository:UpdateStatus", err)
		return err
	}
	return nil
}

func (r *TicketRepository) CountByStatus(ctx context.Context, statusID int) (int, error) {
	var total int
	query := `SELECT COUNT(*) FROM request_tickets WHERE status_id = $1`
	if err := r.DB.GetContext(ctx, &total, query, statusID); err != nil {
		logger.Error("TicketRepository:CountByStatus", err)
		return 0, err
	}
	return total, nil
}
