package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/yungbote/opsdesk-backend/internal/data/repos"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/platform/dbctx"
)

var errBoom = errors.New("boom")

type fakeStore struct {
	fields map[string][]*types.FieldDefinition
	err    error
}

func (s *fakeStore) ListFields(ctx context.Context, module string, filter templating.FieldFilter) ([]*types.FieldDefinition, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []*types.FieldDefinition{}
	for _, f := range s.fields[module] {
		if filter.Matches(f) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

// fakeFieldRepo serves List from a fakeStore; other methods panic.
type fakeFieldRepo struct {
	repos.FieldDefinitionRepo
	store *fakeStore
}

func (r *fakeFieldRepo) List(dbc dbctx.Context, module string, filter templating.FieldFilter) ([]*types.FieldDefinition, error) {
	return r.store.ListFields(dbc.Ctx, module, filter)
}

type fakeTemplateRepo struct {
	repos.ModuleTemplateRepo
	active map[string]*types.ModuleTemplate // "<module>/<name>/<type>"
	kinds  map[string][]types.TemplateType
	err    error
}

func (r *fakeTemplateRepo) FindActive(dbc dbctx.Context, module, name string, typ types.TemplateType) (*types.ModuleTemplate, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.active[module+"/"+name+"/"+string(typ)], nil
}

func (r *fakeTemplateRepo) TypesByModule(dbc dbctx.Context, module string) ([]types.TemplateType, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.kinds[module], nil
}

type fakeHistoryRepo struct {
	repos.NotificationHistoryRepo
	mu   sync.Mutex
	rows []*types.NotificationHistory
	err  error
}

func (r *fakeHistoryRepo) Create(dbc dbctx.Context, rows []*types.NotificationHistory) ([]*types.NotificationHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.rows = append(r.rows, rows...)
	return rows, nil
}

func (r *fakeHistoryRepo) List(dbc dbctx.Context, q repos.HistoryQuery) ([]*types.NotificationHistory, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.rows, nil
}

type fakeProbe struct {
	counts map[string]int64 // table or "table.column"
	errs   map[string]error
}

func (p *fakeProbe) Count(dbc dbctx.Context, table string) (int64, error) {
	if err := p.errs[table]; err != nil {
		return 0, err
	}
	return p.counts[table], nil
}

func (p *fakeProbe) CountWhere(dbc dbctx.Context, table, column string, values ...any) (int64, error) {
	if err := p.errs[table]; err != nil {
		return 0, err
	}
	if err := p.errs[table+"."+column]; err != nil {
		return 0, err
	}
	return p.counts[table+"."+column], nil
}

type sentMessage struct {
	cfg     types.DeliveryConfig
	content string
}

type fakeSender struct {
	mu   sync.Mutex
	id   string
	err  error
	sent []sentMessage
}

func (s *fakeSender) Deliver(ctx context.Context, cfg types.DeliveryConfig, content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{cfg: cfg, content: content})
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

type fakeProducer struct {
	jobs []types.NotificationJob
	err  error
}

func (p *fakeProducer) Publish(ctx context.Context, job types.NotificationJob) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func testField(module, key, label string, order int) *types.FieldDefinition {
	return &types.FieldDefinition{
		ModuleName:      module,
		FieldKey:        key,
		Label:           label,
		Type:            types.FieldTypeText,
		Visible:         true,
		AIEnabled:       true,
		VariableEnabled: true,
		OrderIndex:      order,
	}
}
