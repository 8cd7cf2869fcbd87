package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"memoria/internal/domain"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *sqlx.DB
}

func NewAuditLogRepository(db *sqlx.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	query := r.db.Rebind(`
		INSERT INTO audit_logs (id, action, entity_type, entity_id, old_value, new_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		log.ID, log.Action, log.EntityType, log.EntityID,
		nullableJSON(log.OldValue), nullableJSON(log.NewValue), log.CreatedAt,
	)
	return err
}

type auditLogRow struct {
	ID         uuid.UUID `db:"id"`
	Action     string    `db:"action"`
	EntityType string    `db:"entity_type"`
	EntityID   uuid.UUID `db:"entity_id"`
	OldValue   *string   `db:"old_value"`
	NewValue   *string   `db:"new_value"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	params.Validate()

	var total int64
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM audit_logs WHERE entity_type = ? AND entity_id = ?`)
	if err := r.db.GetContext(ctx, &total, countQuery, entityType, entityID); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(`
		SELECT id, action, entity_type, entity_id, old_value, new_value, created_at
		FROM audit_logs
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`)

	var rows []auditLogRow
	if err := r.db.SelectContext(ctx, &rows, query, entityType, entityID, params.PageSize, params.Offset()); err != nil {
		return nil, 0, err
	}

	logs := make([]domain.AuditLog, 0, len(rows))
	for _, row := range rows {
		log := domain.AuditLog{
			ID:         row.ID,
			Action:     row.Action,
			EntityType: row.EntityType,
			EntityID:   row.EntityID,
			CreatedAt:  row.CreatedAt,
		}
		if row.OldValue != nil {
			log.OldValue = json.RawMessage(*row.OldValue)
		}
		if row.NewValue != nil {
			log.NewValue = json.RawMessage(*row.NewValue)
		}
		logs = append(logs, log)
	}
	return logs, total, nil
}

func nullableJSON(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	s := string(raw)
	return &s
}

func CreateAuditLog(repo AuditLogRepository, ctx context.Context, input domain.CreateAuditLogInput) error {
	oldValueJSON, _ := json.Marshal(input.OldValue)
	newValueJSON, _ := json.Marshal(input.NewValue)

	log := &domain.AuditLog{
		ID:         uuid.New(),
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		OldValue:   oldValueJSON,
		NewValue:   newValueJSON,
	}

	return repo.Create(ctx, log)
}
