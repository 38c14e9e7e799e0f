package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuroedge-api/internal/domain/entity"
	"neuroedge-api/internal/domain/repository"
)

type fakeAgentRepo struct {
	agents  map[string]*entity.Agent
	deleted []string
}

func newFakeAgentRepo(agents ...*entity.Agent) *fakeAgentRepo {
	r := &fakeAgentRepo{agents: make(map[string]*entity.Agent)}
	for _, a := range agents {
		r.agents[a.ID] = a
	}
	return r
}

func (r *fakeAgentRepo) Create(_ context.Context, agent *entity.Agent) error {
	r.agents[agent.ID] = agent
	return nil
}

func (r *fakeAgentRepo) GetByID(_ context.Context, id string) (*entity.Agent, error) {
	return r.agents[id], nil
}

func (r *fakeAgentRepo) GetByEmail(_ context.Context, email string) (*entity.Agent, error) {
	for _, a := range r.agents {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAgentRepo) Update(_ context.Context, agent *entity.Agent) error {
	r.agents[agent.ID] = agent
	return nil
}

func (r *fakeAgentRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	delete(r.agents, id)
	return nil
}

func (r *fakeAgentRepo) List(_ context.Context) ([]*entity.Agent, error) {
	out := make([]*entity.Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	return out, nil
}

// countingPropertyRepo 只关心归属计数，其余操作不应被触及
type countingPropertyRepo struct {
	assigned int64
}

func (r *countingPropertyRepo) CountByAgent(context.Context, string) (int64, error) {
	return r.assigned, nil
}

func (r *countingPropertyRepo) Create(context.Context, *entity.Property) error { return nil }
func (r *countingPropertyRepo) GetByID(context.Context, string) (*entity.PropertyWithAgent, error) {
	return nil, errors.New("not implemented")
}
func (r *countingPropertyRepo) Update(context.Context, *entity.Property) error { return nil }
func (r *countingPropertyRepo) UpdateStatus(context.Context, string, entity.PropertyStatus) error {
	return nil
}
func (r *countingPropertyRepo) Delete(context.Context, string) error { return nil }
func (r *countingPropertyRepo) List(context.Context, repository.Pagination) (*repository.PagedResult[*entity.PropertyWithAgent], error) {
	return nil, errors.New("not implemented")
}
func (r *countingPropertyRepo) ListAvailable(context.Context, int) ([]*entity.PropertyWithAgent, error) {
	return nil, errors.New("not implemented")
}
func (r *countingPropertyRepo) ListTrash(context.Context) ([]*entity.PropertyWithAgent, error) {
	return nil, errors.New("not implemented")
}
func (r *countingPropertyRepo) EmptyTrash(context.Context) (int64, error) { return 0, nil }
func (r *countingPropertyRepo) FindCandidates(context.Context, string, []string) ([]*entity.PropertyWithAgent, error) {
	return nil, errors.New("not implemented")
}

var _ repository.PropertyRepository = (*countingPropertyRepo)(nil)

// fakeTxManager 直通事务管理器，记录回滚的错误
type fakeTxManager struct {
	calls       int
	rolledBack  []error
	committedOK int
}

func (m *fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if err := fn(ctx); err != nil {
		m.rolledBack = append(m.rolledBack, err)
		return err
	}
	m.committedOK++
	return nil
}

func deleteAgentRequest(t *testing.T, h *AgentHandler, id string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.DELETE("/v1/admin/agents/:id", h.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/agents/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func testAgent() *entity.Agent {
	return &entity.Agent{
		ID:        "agent-1",
		Name:      "Maria Shikongo",
		Email:     "maria@example.com",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestAgentDeleteRefusedWhileReferenced(t *testing.T) {
	agents := newFakeAgentRepo(testAgent())
	properties := &countingPropertyRepo{assigned: 3}
	tx := &fakeTxManager{}
	h := NewAgentHandler(agents, properties, tx)

	rec := deleteAgentRequest(t, h, "agent-1")

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Cannot delete agent. 3 properties are assigned to this agent.", body.Message)

	t.Run("agent record is untouched", func(t *testing.T) {
		assert.Empty(t, agents.deleted)
		assert.Contains(t, agents.agents, "agent-1")
	})

	t.Run("transaction rolled back", func(t *testing.T) {
		assert.Equal(t, 1, tx.calls)
		assert.Equal(t, 0, tx.committedOK)
		require.Len(t, tx.rolledBack, 1)
		assert.True(t, errors.Is(tx.rolledBack[0], errAgentReferenced))
	})
}

func TestAgentDeleteSucceedsWhenUnreferenced(t *testing.T) {
	agents := newFakeAgentRepo(testAgent())
	properties := &countingPropertyRepo{assigned: 0}
	tx := &fakeTxManager{}
	h := NewAgentHandler(agents, properties, tx)

	rec := deleteAgentRequest(t, h, "agent-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"agent-1"}, agents.deleted)
	assert.Equal(t, 1, tx.committedOK)
}

func TestAgentDeleteUnknownAgent(t *testing.T) {
	agents := newFakeAgentRepo()
	h := NewAgentHandler(agents, &countingPropertyRepo{}, &fakeTxManager{})

	rec := deleteAgentRequest(t, h, "nobody")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, len(agents.deleted))
}

var _ repository.AgentRepository = (*fakeAgentRepo)(nil)
var _ repository.Transactor = (*fakeTxManager)(nil)
