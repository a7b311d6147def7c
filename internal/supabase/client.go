package supabase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"checklist-safety/common/config"
	"checklist-safety/internal/models"
	"checklist-safety/internal/repository"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// Client reads and writes checklist tables through Supabase PostgREST
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

var _ repository.Store = (*Client)(nil)

// NewClient creates a PostgREST client for cfg.URL
func NewClient(cfg *config.SupabaseConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")+"/rest/v1").
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("apikey", cfg.APIKey).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if cfg.Schema != "" {
		client.SetHeader("Accept-Profile", cfg.Schema).
			SetHeader("Content-Profile", cfg.Schema)
	}

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

func (c *Client) get(ctx context.Context, table string, params map[string]string, out any) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		Get("/" + table)
	if err != nil {
		c.logger.Error("Supabase request failed",
			zap.String("table", table),
			zap.Error(err),
		)
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to query %s: status %d: %s", table, resp.StatusCode(), resp.String())
	}
	return nil
}

// ListEquipment returns the equipment catalog
func (c *Client) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	var equipments []models.Equipment
	err := c.get(ctx, "equipments", map[string]string{
		"select": "id,name,kp,sector,capacity,type,bridge_number",
		"order":  "name.asc",
	}, &equipments)
	if err != nil {
		return nil, err
	}
	return equipments, nil
}

// ListInspections returns inspections with the embedded equipment relation
func (c *Client) ListInspections(ctx context.Context, since time.Time) ([]models.Inspection, error) {
	params := map[string]string{
		"select": "id,operator_matricula,equipment_id,inspection_date,submission_date," +
			"checklist_answers,comments,photos,signature," +
			"equipment:equipments(id,name,kp,sector,bridge_number)",
		"order": "inspection_date.desc.nullslast",
	}
	if !since.IsZero() {
		params["or"] = fmt.Sprintf("(inspection_date.gte.%s,inspection_date.is.null)", since.UTC().Format(time.RFC3339))
	}

	var inspections []models.Inspection
	if err := c.get(ctx, "inspections", params, &inspections); err != nil {
		return nil, err
	}
	return inspections, nil
}

// ListChecklistTemplate returns template questions in display order
func (c *Client) ListChecklistTemplate(ctx context.Context) ([]models.ChecklistTemplateQuestion, error) {
	var template []models.ChecklistTemplateQuestion
	err := c.get(ctx, "checklist_template", map[string]string{
		"select": "id,question,alert_on_yes,alert_on_no,order_number",
		"order":  "order_number.asc",
	}, &template)
	if err != nil {
		return nil, err
	}
	return template, nil
}

// ListOpenOrders returns maintenance orders that are not closed or cancelled
func (c *Client) ListOpenOrders(ctx context.Context) ([]models.MaintenanceOrder, error) {
	var orders []models.MaintenanceOrder
	err := c.get(ctx, "maintenance_orders", map[string]string{
		"select": "id,inspection_id,equipment_id,status,created_at",
		"status": "not.in.(closed,concluida,cancelada,cancelled)",
	}, &orders)
	if err != nil {
		return nil, err
	}

	open := orders[:0]
	for _, o := range orders {
		if o.IsOpen() {
			open = append(open, o)
		}
	}
	return open, nil
}

// SaveAlerts upserts alerts ignoring duplicates; PostgREST answers with the
// rows it actually inserted.
func (c *Client) SaveAlerts(ctx context.Context, records []models.AlertRecord) ([]models.AlertRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	var inserted []models.AlertRecord
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("on_conflict", "inspection_id,question").
		SetHeader("Prefer", "resolution=ignore-duplicates,return=representation").
		SetBody(records).
		SetResult(&inserted).
		Post("/alerts")
	if err != nil {
		return nil, fmt.Errorf("failed to insert alerts: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to insert alerts: status %d: %s", resp.StatusCode(), resp.String())
	}

	c.logger.Debug("Alerts saved",
		zap.Int("candidates", len(records)),
		zap.Int("inserted", len(inserted)),
	)
	return inserted, nil
}

type templateFlags struct {
	AlertOnYes *bool `json:"alert_on_yes"`
	AlertOnNo  *bool `json:"alert_on_no"`
}

// UpdateTemplateFlags patches the alert flags of each row
func (c *Client) UpdateTemplateFlags(ctx context.Context, rows []models.ChecklistTemplateQuestion) error {
	for _, row := range rows {
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetQueryParam("id", "eq."+row.ID).
			SetHeader("Prefer", "return=minimal").
			SetBody(templateFlags{AlertOnYes: row.AlertOnYes, AlertOnNo: row.AlertOnNo}).
			Patch("/checklist_template")
		if err != nil {
			return fmt.Errorf("failed to update template question %s: %w", row.ID, err)
		}
		if resp.IsError() {
			return fmt.Errorf("failed to update template question %s: status %d: %s", row.ID, resp.StatusCode(), resp.String())
		}
	}
	return nil
}
