package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"neuroedge-api/internal/domain/entity"
)

// AgentRepository 经纪人仓储实现
type AgentRepository struct {
	client *Client
}

// NewAgentRepository 创建经纪人仓储
func NewAgentRepository(client *Client) *AgentRepository {
	return &AgentRepository{client: client}
}

// Create 创建经纪人
func (r *AgentRepository) Create(ctx context.Context, agent *entity.Agent) error {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	query := `
		INSERT INTO agents (id, name, email, phone, specialty, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		agent.ID, agent.Name, agent.Email, agent.Phone, agent.Specialty, agent.Bio,
	).Scan(&agent.CreatedAt, &agent.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取经纪人
func (r *AgentRepository) GetByID(ctx context.Context, id string) (*entity.Agent, error) {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.GetByID")
	defer span.End()

	return r.getByField(ctx, "id", id)
}

// GetByEmail 根据邮箱获取经纪人
func (r *AgentRepository) GetByEmail(ctx context.Context, email string) (*entity.Agent, error) {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.GetByEmail")
	defer span.End()

	return r.getByField(ctx, "email", email)
}

func (r *AgentRepository) getByField(ctx context.Context, field, value string) (*entity.Agent, error) {
	q := getQuerier(ctx, r.client.db)

	query := fmt.Sprintf(`
		SELECT id, name, email, phone, specialty, bio, created_at, updated_at
		FROM agents
		WHERE %s = $1
	`, field)

	var (
		agent     entity.Agent
		phone     sql.NullString
		specialty sql.NullString
		bio       sql.NullString
	)

	err := q.QueryRowContext(ctx, query, value).Scan(
		&agent.ID, &agent.Name, &agent.Email, &phone, &specialty, &bio,
		&agent.CreatedAt, &agent.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		trace.SpanFromContext(ctx).RecordError(err)
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	agent.Phone = phone.String
	agent.Specialty = specialty.String
	agent.Bio = bio.String

	return &agent, nil
}

// Update 更新经纪人
func (r *AgentRepository) Update(ctx context.Context, agent *entity.Agent) error {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.Update")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	query := `
		UPDATE agents
		SET name = $1, email = $2, phone = $3, specialty = $4, bio = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query,
		agent.Name, agent.Email, agent.Phone, agent.Specialty, agent.Bio, agent.ID,
	).Scan(&agent.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("agent not found: %s", agent.ID)
		}
		span.RecordError(err)
		return fmt.Errorf("failed to update agent: %w", err)
	}

	return nil
}

// Delete 删除经纪人
// 引用保护由应用层在事务内先行检查
func (r *AgentRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.Delete")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	result, err := q.ExecContext(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete agent: %w", err)
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

// List 按姓名排序列出全部经纪人
func (r *AgentRepository) List(ctx context.Context) ([]*entity.Agent, error) {
	ctx, span := tracer.Start(ctx, "postgres.AgentRepository.List")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	query := `
		SELECT id, name, email, phone, specialty, bio, created_at, updated_at
		FROM agents
		ORDER BY name
	`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	var agents []*entity.Agent
	for rows.Next() {
		var (
			agent     entity.Agent
			phone     sql.NullString
			specialty sql.NullString
			bio       sql.NullString
		)
		if err := rows.Scan(
			&agent.ID, &agent.Name, &agent.Email, &phone, &specialty, &bio,
			&agent.CreatedAt, &agent.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan agent row: %w", err)
		}
		agent.Phone = phone.String
		agent.Specialty = specialty.String
		agent.Bio = bio.String
		agents = append(agents, &agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate agent rows: %w", err)
	}

	return agents, nil
}
