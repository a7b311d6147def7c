package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"checklist-safety/internal/models"

	"go.uber.org/zap"
)

// PostgresStore Store over the application database
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore creates a new Postgres store
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger,
	}
}

var _ Store = (*PostgresStore)(nil)

// ListEquipment returns the equipment catalog
func (s *PostgresStore) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	query := `
		SELECT id, name, kp, sector, capacity, type, bridge_number
		FROM equipments
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query equipments: %w", err)
	}
	defer rows.Close()

	var equipments []models.Equipment
	for rows.Next() {
		var eq models.Equipment
		var name, kp, sector, capacity, eqType, bridge sql.NullString

		if err := rows.Scan(&eq.ID, &name, &kp, &sector, &capacity, &eqType, &bridge); err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}

		eq.Name = name.String
		eq.KP = kp.String
		eq.Sector = sector.String
		eq.Capacity = nullString(capacity)
		eq.Type = nullString(eqType)
		eq.BridgeNumber = bridge.String

		equipments = append(equipments, eq)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate equipments: %w", err)
	}

	return equipments, nil
}

// ListInspections returns inspections with their joined equipment, most recent first
func (s *PostgresStore) ListInspections(ctx context.Context, since time.Time) ([]models.Inspection, error) {
	query := `
		SELECT
			i.id,
			i.operator_matricula,
			i.equipment_id,
			i.inspection_date,
			i.submission_date,
			i.checklist_answers,
			i.comments,
			i.photos,
			i.signature,
			e.id,
			e.name,
			e.kp,
			e.sector,
			e.bridge_number
		FROM inspections i
		LEFT JOIN equipments e ON e.id = i.equipment_id
		WHERE COALESCE(i.inspection_date, i.submission_date, now()) >= $1
		ORDER BY i.inspection_date DESC NULLS LAST
	`

	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query inspections: %w", err)
	}
	defer rows.Close()

	var inspections []models.Inspection
	for rows.Next() {
		var in models.Inspection
		var operator, equipmentID, inspectionDate, submissionDate, comments, signature sql.NullString
		var answers, photos []byte
		var eqID, eqName, eqKP, eqSector, eqBridge sql.NullString

		if err := rows.Scan(
			&in.ID,
			&operator,
			&equipmentID,
			&inspectionDate,
			&submissionDate,
			&answers,
			&comments,
			&photos,
			&signature,
			&eqID,
			&eqName,
			&eqKP,
			&eqSector,
			&eqBridge,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inspection: %w", err)
		}

		in.OperatorMatricula = operator.String
		in.EquipmentID = nullString(equipmentID)
		in.InspectionDate = nullString(inspectionDate)
		in.SubmissionDate = nullString(submissionDate)
		in.ChecklistAnswers = answers
		in.Comments = nullString(comments)
		in.Photos = photos
		in.Signature = nullString(signature)

		if eqID.Valid {
			in.Equipment = &models.Equipment{
				ID:           eqID.String,
				Name:         eqName.String,
				KP:           eqKP.String,
				Sector:       eqSector.String,
				BridgeNumber: eqBridge.String,
			}
		}

		inspections = append(inspections, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inspections: %w", err)
	}

	return inspections, nil
}

// ListChecklistTemplate returns template questions in display order
func (s *PostgresStore) ListChecklistTemplate(ctx context.Context) ([]models.ChecklistTemplateQuestion, error) {
	query := `
		SELECT id, question, alert_on_yes, alert_on_no, order_number
		FROM checklist_template
		ORDER BY order_number, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query checklist template: %w", err)
	}
	defer rows.Close()

	var template []models.ChecklistTemplateQuestion
	for rows.Next() {
		var q models.ChecklistTemplateQuestion
		var onYes, onNo sql.NullBool
		var order sql.NullInt64

		if err := rows.Scan(&q.ID, &q.Question, &onYes, &onNo, &order); err != nil {
			return nil, fmt.Errorf("failed to scan template question: %w", err)
		}

		q.AlertOnYes = nullBool(onYes)
		q.AlertOnNo = nullBool(onNo)
		q.OrderNumber = int(order.Int64)

		template = append(template, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checklist template: %w", err)
	}

	return template, nil
}

// ListOpenOrders returns maintenance orders that are not closed or cancelled
func (s *PostgresStore) ListOpenOrders(ctx context.Context) ([]models.MaintenanceOrder, error) {
	query := `
		SELECT id, inspection_id, equipment_id, status, created_at
		FROM maintenance_orders
		WHERE lower(status) NOT IN ('closed', 'concluida', 'concluída', 'cancelada', 'cancelled')
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query maintenance orders: %w", err)
	}
	defer rows.Close()

	var orders []models.MaintenanceOrder
	for rows.Next() {
		var o models.MaintenanceOrder
		var inspectionID, equipmentID, status sql.NullString

		if err := rows.Scan(&o.ID, &inspectionID, &equipmentID, &status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan maintenance order: %w", err)
		}

		o.InspectionID = nullString(inspectionID)
		o.EquipmentID = nullString(equipmentID)
		o.Status = status.String

		if o.IsOpen() {
			orders = append(orders, o)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate maintenance orders: %w", err)
	}

	return orders, nil
}

// SaveAlerts inserts alerts in one transaction, skipping ones already stored
func (s *PostgresStore) SaveAlerts(ctx context.Context, records []models.AlertRecord) ([]models.AlertRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	query := `
		INSERT INTO alerts (
			id, inspection_id, equipment_id, question, answer,
			operator_matricula, status, triggered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (inspection_id, question) DO NOTHING
	`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var inserted []models.AlertRecord
	for _, rec := range records {
		res, err := tx.ExecContext(ctx, query,
			rec.ID,
			rec.InspectionID,
			rec.EquipmentID,
			rec.Question,
			rec.Answer,
			rec.OperatorMatricula,
			rec.Status,
			rec.TriggeredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert alert: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted = append(inserted, rec)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit alerts: %w", err)
	}

	s.logger.Debug("Alerts saved",
		zap.Int("candidates", len(records)),
		zap.Int("inserted", len(inserted)),
	)

	return inserted, nil
}

// UpdateTemplateFlags writes alert flags of the given rows in one transaction
func (s *PostgresStore) UpdateTemplateFlags(ctx context.Context, rows []models.ChecklistTemplateQuestion) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
		UPDATE checklist_template
		SET alert_on_yes = $2, alert_on_no = $3
		WHERE id = $1
	`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, query, row.ID, row.AlertOnYes, row.AlertOnNo); err != nil {
			return fmt.Errorf("failed to update template question %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit template flags: %w", err)
	}

	return nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullBool(nb sql.NullBool) *bool {
	if !nb.Valid {
		return nil
	}
	b := nb.Bool
	return &b
}
