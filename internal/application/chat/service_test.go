package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuroedge-api/internal/application/search"
	"neuroedge-api/internal/domain/entity"
	"neuroedge-api/internal/domain/repository"
)

type fakeSessionStore struct {
	states  map[string]*entity.SessionState
	saveErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{states: make(map[string]*entity.SessionState)}
}

func (f *fakeSessionStore) key(visitorID, topic string) string { return visitorID + ":" + topic }

func (f *fakeSessionStore) Get(_ context.Context, visitorID, topic string) (*entity.SessionState, error) {
	return f.states[f.key(visitorID, topic)], nil
}

func (f *fakeSessionStore) Save(_ context.Context, visitorID, topic string, state *entity.SessionState) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.states[f.key(visitorID, topic)] = state
	return nil
}

func (f *fakeSessionStore) Reset(_ context.Context, visitorID, topic string) error {
	delete(f.states, f.key(visitorID, topic))
	return nil
}

type fakeGenerator struct {
	calls  [][]Message
	answer string
	err    error
}

func (f *fakeGenerator) Complete(_ context.Context, messages []Message) (string, error) {
	copied := make([]Message, len(messages))
	copy(copied, messages)
	f.calls = append(f.calls, copied)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeRegistry struct {
	entries map[string][]string
}

func (f *fakeRegistry) Resolve(_ context.Context, topic string) ([]string, error) {
	return f.entries[topic], nil
}

func (f *fakeRegistry) Register(_ context.Context, topic, filename string) error {
	f.entries[topic] = append(f.entries[topic], filename)
	return nil
}

type fakeDocStore struct {
	files map[string]string // "topic/name" -> content
}

func (f *fakeDocStore) Save(_ context.Context, topic, filename string, _ io.Reader) (string, error) {
	return filename, nil
}

func (f *fakeDocStore) Exists(_ context.Context, topic, filename string) bool {
	_, ok := f.files[topic+"/"+filename]
	return ok
}

func (f *fakeDocStore) Read(_ context.Context, topic, filename string) (string, error) {
	content, ok := f.files[topic+"/"+filename]
	if !ok {
		return "", errors.New("no such document")
	}
	return content, nil
}

func (f *fakeDocStore) Path(topic, filename string) string { return topic + "/" + filename }

type stubPropertyRepo struct {
	rows []*entity.PropertyWithAgent
	err  error
}

func (s *stubPropertyRepo) FindCandidates(context.Context, string, []string) ([]*entity.PropertyWithAgent, error) {
	return s.rows, s.err
}
func (s *stubPropertyRepo) ListAvailable(context.Context, int) ([]*entity.PropertyWithAgent, error) {
	return s.rows, s.err
}
func (s *stubPropertyRepo) Create(context.Context, *entity.Property) error { return nil }
func (s *stubPropertyRepo) GetByID(context.Context, string) (*entity.PropertyWithAgent, error) {
	return nil, errors.New("not implemented")
}
func (s *stubPropertyRepo) Update(context.Context, *entity.Property) error { return nil }
func (s *stubPropertyRepo) UpdateStatus(context.Context, string, entity.PropertyStatus) error {
	return nil
}
func (s *stubPropertyRepo) Delete(context.Context, string) error { return nil }
func (s *stubPropertyRepo) List(context.Context, repository.Pagination) (*repository.PagedResult[*entity.PropertyWithAgent], error) {
	return nil, errors.New("not implemented")
}
func (s *stubPropertyRepo) ListTrash(context.Context) ([]*entity.PropertyWithAgent, error) {
	return nil, errors.New("not implemented")
}
func (s *stubPropertyRepo) EmptyTrash(context.Context) (int64, error)           { return 0, nil }
func (s *stubPropertyRepo) CountByAgent(context.Context, string) (int64, error) { return 0, nil }

func testTopics(t *testing.T) *TopicSet {
	t.Helper()
	return &TopicSet{
		topics: map[string]*Topic{
			"property-search": {Name: "property-search", Kind: TopicKindSearch},
			"maria":           {Name: "maria", Kind: TopicKindGenerative, SystemPrompt: "You are Maria, a Windhoek realtor."},
		},
		order: []string{"property-search", "maria"},
	}
}

func newTestService(t *testing.T, propRepo repository.PropertyRepository, gen *fakeGenerator, sessions *fakeSessionStore, registry *fakeRegistry, docs *fakeDocStore) *Service {
	t.Helper()
	if propRepo == nil {
		propRepo = &stubPropertyRepo{}
	}
	if sessions == nil {
		sessions = newFakeSessionStore()
	}
	if registry == nil {
		registry = &fakeRegistry{entries: map[string][]string{}}
	}
	if docs == nil {
		docs = &fakeDocStore{files: map[string]string{}}
	}
	engine := search.NewEngine(propRepo, 10, 50)
	return NewService(testTopics(t), sessions, engine, gen, registry, docs, 6, 3000, 15)
}

func TestHandleUnknownTopic(t *testing.T) {
	svc := newTestService(t, nil, &fakeGenerator{answer: "hi"}, nil, nil, nil)

	_, err := svc.Handle(context.Background(), "visitor-1", "no-such-topic", "hello")
	require.Error(t, err)
}

func TestHandleSearchTopic(t *testing.T) {
	row := &entity.PropertyWithAgent{
		Property: entity.Property{
			ID: "p1", Title: "3 Bedroom House in Windhoek", Price: 1200000, Currency: "NAD",
			PropertyType: "house", Location: "Windhoek", City: "Windhoek",
			Status: entity.PropertyStatusAvailable, CreatedAt: time.Now(),
		},
		AgentName: "Maria Shikongo",
	}
	gen := &fakeGenerator{answer: "should never be used"}
	sessions := newFakeSessionStore()
	svc := newTestService(t, &stubPropertyRepo{rows: []*entity.PropertyWithAgent{row}}, gen, sessions, nil, nil)

	answer, err := svc.Handle(context.Background(), "visitor-1", "property-search", "house windhoek")
	require.NoError(t, err)
	assert.Contains(t, answer, "3 Bedroom House in Windhoek")

	t.Run("generator is never called", func(t *testing.T) {
		assert.Empty(t, gen.calls)
	})

	t.Run("both turns are persisted", func(t *testing.T) {
		state := sessions.states["visitor-1:property-search"]
		require.NotNil(t, state)
		require.Len(t, state.Turns, 2)
		assert.Equal(t, entity.RoleUser, state.Turns[0].Role)
		assert.Equal(t, entity.RoleAssistant, state.Turns[1].Role)
		assert.Equal(t, answer, state.Turns[1].Content)
	})
}

func TestHandleSearchTopicDegradedOnStorageError(t *testing.T) {
	svc := newTestService(t, &stubPropertyRepo{err: errors.New("connection refused")}, &fakeGenerator{}, nil, nil, nil)

	answer, err := svc.Handle(context.Background(), "visitor-1", "property-search", "house")
	require.NoError(t, err)
	assert.Equal(t, degradedSearchMessage, answer)
}

func TestHandleGenerativeTopic(t *testing.T) {
	gen := &fakeGenerator{answer: "  Of course, happy to help.  "}
	svc := newTestService(t, nil, gen, nil, nil, nil)

	answer, err := svc.Handle(context.Background(), "visitor-1", "maria", "Tell me about Klein Windhoek")
	require.NoError(t, err)
	assert.Equal(t, "Of course, happy to help.", answer)

	require.Len(t, gen.calls, 1)
	msgs := gen.calls[0]
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, entity.RoleSystem, msgs[0].Role)
	assert.Equal(t, "You are Maria, a Windhoek realtor.", msgs[0].Content)
	assert.Equal(t, entity.RoleUser, msgs[len(msgs)-1].Role)
	assert.Equal(t, "Tell me about Klein Windhoek", msgs[len(msgs)-1].Content)
}

func TestHandleGenerativeHistoryWindow(t *testing.T) {
	gen := &fakeGenerator{answer: "noted"}
	svc := newTestService(t, nil, gen, nil, nil, nil)

	// 8 exchanges leave 16 turns of history; the prompt must carry
	// only the system block plus the most recent 6 turns.
	for i := 0; i < 8; i++ {
		_, err := svc.Handle(context.Background(), "visitor-1", "maria", fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	last := gen.calls[len(gen.calls)-1]
	require.Len(t, last, 7)
	assert.Equal(t, entity.RoleSystem, last[0].Role)
	assert.Equal(t, entity.RoleAssistant, last[1].Role)
	assert.Equal(t, "message 5", last[2].Content)
	assert.Equal(t, "message 7", last[len(last)-1].Content)
	for _, m := range last[1:] {
		assert.NotContains(t, m.Content, "message 4")
	}
}

func TestHandleGenerativeBackendFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("request timed out")}
	sessions := newFakeSessionStore()
	svc := newTestService(t, nil, gen, sessions, nil, nil)

	answer, err := svc.Handle(context.Background(), "visitor-1", "maria", "hello")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(answer, "API error:"))
	assert.Contains(t, answer, "request timed out")

	state := sessions.states["visitor-1:maria"]
	require.NotNil(t, state)
	assert.Equal(t, answer, state.Turns[1].Content)
}

func TestHandleDocumentContext(t *testing.T) {
	registry := &fakeRegistry{entries: map[string][]string{
		"maria": {"guide.txt", "missing.txt"},
	}}
	docs := &fakeDocStore{files: map[string]string{
		"maria/guide.txt": "Klein Windhoek pricing guide.",
	}}
	gen := &fakeGenerator{answer: "done"}
	sessions := newFakeSessionStore()
	svc := newTestService(t, nil, gen, sessions, registry, docs)

	_, err := svc.Handle(context.Background(), "visitor-1", "maria", "what do prices look like?")
	require.NoError(t, err)

	msgs := gen.calls[0]
	require.Len(t, msgs, 3)
	assert.Equal(t, entity.RoleSystem, msgs[1].Role)
	assert.True(t, strings.HasPrefix(msgs[1].Content, docContextPrefix))
	assert.Contains(t, msgs[1].Content, "Klein Windhoek pricing guide.")

	t.Run("only existing files are kept", func(t *testing.T) {
		state := sessions.states["visitor-1:maria"]
		require.NotNil(t, state)
		assert.True(t, state.DocsResolved)
		assert.Equal(t, []string{"guide.txt"}, state.DocNames)
	})

	t.Run("resolution happens once per session", func(t *testing.T) {
		registry.entries["maria"] = append(registry.entries["maria"], "later.txt")
		docs.files["maria/later.txt"] = "late arrival"

		_, err := svc.Handle(context.Background(), "visitor-1", "maria", "and now?")
		require.NoError(t, err)
		state := sessions.states["visitor-1:maria"]
		assert.Equal(t, []string{"guide.txt"}, state.DocNames)
	})
}

func TestHandleDocumentContextTruncated(t *testing.T) {
	registry := &fakeRegistry{entries: map[string][]string{"maria": {"big.txt"}}}
	docs := &fakeDocStore{files: map[string]string{
		"maria/big.txt": strings.Repeat("x", 5000),
	}}
	gen := &fakeGenerator{answer: "done"}
	svc := newTestService(t, nil, gen, nil, registry, docs)

	_, err := svc.Handle(context.Background(), "visitor-1", "maria", "summarize")
	require.NoError(t, err)

	msgs := gen.calls[0]
	require.Len(t, msgs, 3)
	assert.Len(t, msgs[1].Content, len(docContextPrefix)+3000)
}

func TestHandleDocumentContextMultibyteBoundary(t *testing.T) {
	registry := &fakeRegistry{entries: map[string][]string{"maria": {"guide.txt"}}}
	docs := &fakeDocStore{files: map[string]string{
		"maria/guide.txt": strings.Repeat("x", 2999) + "équité en Namibie",
	}}
	gen := &fakeGenerator{answer: "done"}
	svc := newTestService(t, nil, gen, nil, registry, docs)

	_, err := svc.Handle(context.Background(), "visitor-1", "maria", "summarize")
	require.NoError(t, err)

	msgs := gen.calls[0]
	require.Len(t, msgs, 3)
	block := strings.TrimPrefix(msgs[1].Content, docContextPrefix)
	assert.True(t, utf8.ValidString(block))
	assert.Equal(t, 3000, utf8.RuneCountInString(block))
	assert.True(t, strings.HasSuffix(block, "é"))
}

func TestHandleDocumentResolutionFreezesEmptyResult(t *testing.T) {
	// 登记表已有条目但文件尚未就位：解析结果冻结为空，
	// 文件事后就位也不再影响当前会话。
	registry := &fakeRegistry{entries: map[string][]string{"maria": {"pending.txt"}}}
	docs := &fakeDocStore{files: map[string]string{}}
	gen := &fakeGenerator{answer: "done"}
	sessions := newFakeSessionStore()
	svc := newTestService(t, nil, gen, sessions, registry, docs)

	_, err := svc.Handle(context.Background(), "visitor-1", "maria", "hello")
	require.NoError(t, err)

	state := sessions.states["visitor-1:maria"]
	require.NotNil(t, state)
	assert.True(t, state.DocsResolved)
	assert.Empty(t, state.DocNames)

	docs.files["maria/pending.txt"] = "arrived late"
	_, err = svc.Handle(context.Background(), "visitor-1", "maria", "and now?")
	require.NoError(t, err)

	assert.Empty(t, sessions.states["visitor-1:maria"].DocNames)
	require.Len(t, gen.calls, 2)
	for _, m := range gen.calls[1] {
		assert.False(t, strings.HasPrefix(m.Content, docContextPrefix))
	}
}

func TestHandleDocumentResolutionWaitsForRegistry(t *testing.T) {
	registry := &fakeRegistry{entries: map[string][]string{}}
	docs := &fakeDocStore{files: map[string]string{}}
	gen := &fakeGenerator{answer: "done"}
	sessions := newFakeSessionStore()
	svc := newTestService(t, nil, gen, sessions, registry, docs)

	_, err := svc.Handle(context.Background(), "visitor-1", "maria", "hello")
	require.NoError(t, err)
	assert.False(t, sessions.states["visitor-1:maria"].DocsResolved)

	// 首次登记后下一轮请求即可解析
	require.NoError(t, registry.Register(context.Background(), "maria", "guide.txt"))
	docs.files["maria/guide.txt"] = "fresh guide"

	_, err = svc.Handle(context.Background(), "visitor-1", "maria", "again")
	require.NoError(t, err)

	state := sessions.states["visitor-1:maria"]
	assert.True(t, state.DocsResolved)
	assert.Equal(t, []string{"guide.txt"}, state.DocNames)
}

func TestResetClearsHistory(t *testing.T) {
	gen := &fakeGenerator{answer: "hello"}
	sessions := newFakeSessionStore()
	svc := newTestService(t, nil, gen, sessions, nil, nil)

	_, err := svc.Handle(context.Background(), "visitor-1", "maria", "hi")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(context.Background(), "visitor-1", "maria"))

	history, err := svc.History(context.Background(), "visitor-1", "maria")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryUnknownSession(t *testing.T) {
	svc := newTestService(t, nil, &fakeGenerator{}, nil, nil, nil)

	history, err := svc.History(context.Background(), "nobody", "maria")
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}
