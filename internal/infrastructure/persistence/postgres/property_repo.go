// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"neuroedge-api/internal/domain/entity"
	"neuroedge-api/internal/domain/repository"
)

// PropertyRepository 房源仓储实现
type PropertyRepository struct {
	client *Client
}

// NewPropertyRepository 创建房源仓储
func NewPropertyRepository(client *Client) *PropertyRepository {
	return &PropertyRepository{client: client}
}

const propertyWithAgentColumns = `
	p.id, p.title, p.description, p.price, p.currency, p.property_type,
	p.bedrooms, p.bathrooms, p.size_sqft, p.location, p.city, p.features,
	p.status, p.agent_id, p.listing_url, p.images, p.created_at, p.updated_at,
	a.name, a.email, a.phone, a.specialty
`

// Create 创建房源
func (r *PropertyRepository) Create(ctx context.Context, property *entity.Property) error {
	ctx, span := tracer.Start(ctx, "postgres.PropertyRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	featuresJSON, _ := json.Marshal(property.Features)
	imagesJSON, _ := json.Marshal(property.Images)

	query := `
		INSERT INTO properties (id, title, description, price, currency, property_type,
			bedrooms, bathrooms, size_sqft, location, city, features, status,
			agent_id, listing_url, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		property.ID, property.Title, property.Description, property.Price, property.Currency,
		property.PropertyType, property.Bedrooms, property.Bathrooms, property.SizeSqft,
		property.Location, property.City, featuresJSON, property.Status,
		property.AgentID, nullString(property.ListingURL), imagesJSON,
	).Scan(&property.CreatedAt, &property.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create property: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取房源（含经纪人信息）
func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*entity.PropertyWithAgent, error) {
	ctx, span := tracer.Start(ctx, "postgres.PropertyRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM properties p
		JOIN agents a ON p.agent_id = a.id
		WHERE p.id = $1
	`, propertyWithAgentColumns)

	row := q.QueryRowContext(ctx, query, id)
	result, err := scanPropertyWithAgent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return result, nil
}

// Update 更新房源
func (r *PropertyRepository) Update(ctx context.Context, property *entity.Property) error {
	ctx, span := tracer.Start(ctx, "postgres.PropertyRepository.Update")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	featuresJSON, _ := json.Marshal(property.Features)
	imagesJSON, _ := json.Marshal(property.Images)

	query := `
		UPDATE properties
		SET title = $1, description = $2, price = $3, currency = $4, property_type = $5,
			bedrooms = $6, bathrooms = $7, size_sqft = $8, location = $9, city = $10,
			features = $11, status = $12, agent_id = $13, listing_url = $14, images = $15,
			updated_at = NOW()
		WHERE id = $16
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query,
		property.Title, property.Description, property.Price, property.Currency,
		property.PropertyType, property.Bedrooms, property.Bathrooms, property.SizeSqft,
		property.Location, property.City, featuresJSON, property.Status,
		property.AgentID, nullString(property.ListingURL), imagesJSON, property.ID,
	).Scan(&property.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("property not found: %s", property.ID)
		}
		span.RecordError(err)
		return fmt.Errorf("failed to update property: %w", err)
	}

	return nil
}

// UpdateStatus 更新房源状态
func (r *PropertyRepository) UpdateStatus(ctx context.Context, id string, status entity.PropertyStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.PropertyRepository.UpdateStatus")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	result, err := q.ExecContext(ctx,
		`UPDATE properties SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update property status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// Delete 物理删除房源
func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.PropertyRepository.Delete")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	result, err := q.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete property: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// List 分页列出全部房源
func (r *PropertyRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.PropertyWithAgent], error) {
	ctx, span := tracer.Start(ctx, "postgres.PropertyRepository.List")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM properties p
		JOIN agents a ON p.agent_id = a.id
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`, propertyWithAgentColumns)

	rows, err := q.QueryContext(ctx, query, pagination.Limit(), pagination.Offset())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	items, err := collectPropertiesWithAgent(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return repository.NewPagedResult(items, total, pagination), nil
}

// ListAvailable 按创建时间倒序列出可用房源
func (r *PropertyRepository) ListAvailable(ctx context.Context, limit int) ([]*entity.PropertyWithAgent, error) {
	ctx, span := tracer.Start(ctx, "postgres.PropertyRepository.ListAvailable")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM properties p
		JOIN agents a ON p.agent_id = a.id
		WHERE (p.status = 'available' OR p.status IS NULL)
		ORDER BY p.created_at DESC
		LIMIT $1
	`, propertyWithAgentColumns)

	rows, err := q.QueryContext(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list available properties: %w", err)
	}
	defer rows.Close()

	return collectPropertiesWithAgent(rows)
}

// ListTrash 列出回收站房源
func (r *PropertyRepository) ListTrash(ctx context.Context) ([]*entity.PropertyWithAgent, error) {
	ctx, span := tracer.Start(ctx, "postgres.PropertyRepository.ListTrash")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM properties p
		JOIN agents a ON p.agent_id = a.id
		WHERE p.status = ANY($1)
		ORDER BY p.updated_at DESC
	`, propertyWithAgentColumns)

	rows, err := q.QueryContext(ctx, query, trashStatusArray())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list trash: %w", err)
	}
	defer rows.Close()

	return collectPropertiesWithAgent(rows)
}

// EmptyTrash 清空回收站，返回删除条数
func (r *PropertyRepository) EmptyTrash(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.PropertyRepository.EmptyTrash")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	result, err := q.ExecContext(ctx, `DELETE FROM properties WHERE status = ANY($1)`, trashStatusArray())
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to empty trash: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected, nil
}

// CountByAgent 统计归属某经纪人的房源数
func (r *PropertyRepository) CountByAgent(ctx context.Context, agentID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.PropertyRepository.CountByAgent")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	var count int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties WHERE agent_id = $1`, agentID).Scan(&count)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count properties by agent: %w", err)
	}

	return count, nil
}

// FindCandidates 按整句或单词条件筛选可用房源候选集
// 候选条件是整句与各单词条件的逻辑 OR，宽召回，打分在检索层完成
func (r *PropertyRepository) FindCandidates(ctx context.Context, phrase string, terms []string) ([]*entity.PropertyWithAgent, error) {
	ctx, span := tracer.Start(ctx, "postgres.PropertyRepository.FindCandidates")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	fieldCondition := func(argPos int) string {
		return fmt.Sprintf(
			"(p.title ILIKE $%d OR p.description ILIKE $%d OR p.location ILIKE $%d OR p.property_type ILIKE $%d OR p.features::text ILIKE $%d)",
			argPos, argPos, argPos, argPos, argPos,
		)
	}

	conditions := []string{fieldCondition(1)}
	args := []interface{}{"%" + phrase + "%"}
	for _, term := range terms {
		args = append(args, "%"+term+"%")
		conditions = append(conditions, fieldCondition(len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM properties p
		JOIN agents a ON p.agent_id = a.id
		WHERE (p.status = 'available' OR p.status IS NULL)
			AND (%s)
		ORDER BY p.created_at DESC, p.id
	`, propertyWithAgentColumns, strings.Join(conditions, " OR "))

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to find search candidates: %w", err)
	}
	defer rows.Close()

	return collectPropertiesWithAgent(rows)
}

// rowScanner 兼容 *sql.Row 与 *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPropertyWithAgent(row rowScanner) (*entity.PropertyWithAgent, error) {
	var (
		result       entity.PropertyWithAgent
		status       sql.NullString
		listingURL   sql.NullString
		description  sql.NullString
		agentPhone   sql.NullString
		agentSpec    sql.NullString
		featuresJSON []byte
		imagesJSON   []byte
	)

	err := row.Scan(
		&result.ID, &result.Title, &description, &result.Price, &result.Currency,
		&result.PropertyType, &result.Bedrooms, &result.Bathrooms, &result.SizeSqft,
		&result.Location, &result.City, &featuresJSON, &status, &result.AgentID,
		&listingURL, &imagesJSON, &result.CreatedAt, &result.UpdatedAt,
		&result.AgentName, &result.AgentEmail, &agentPhone, &agentSpec,
	)
	if err != nil {
		return nil, err
	}

	result.Description = description.String
	result.Status = entity.PropertyStatus(status.String)
	result.ListingURL = listingURL.String
	result.AgentPhone = agentPhone.String
	result.AgentSpecialty = agentSpec.String
	json.Unmarshal(featuresJSON, &result.Features)
	json.Unmarshal(imagesJSON, &result.Images)

	return &result, nil
}

func collectPropertiesWithAgent(rows *sql.Rows) ([]*entity.PropertyWithAgent, error) {
	var items []*entity.PropertyWithAgent
	for rows.Next() {
		item, err := scanPropertyWithAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate property rows: %w", err)
	}
	return items, nil
}

func trashStatusArray() interface{} {
	statuses := make([]string, len(entity.TrashStatuses))
	for i, s := range entity.TrashStatuses {
		statuses[i] = string(s)
	}
	return pq.Array(statuses)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
