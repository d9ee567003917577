package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"techfix-tracking-be/internal/dto"
	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/pkg/authz"
	"techfix-tracking-be/internal/repository/contract"
	"techfix-tracking-be/internal/repository/specification"
	"techfix-tracking-be/internal/repository/unitofwork"
)

// In-memory repository doubles so service tests run without a database.
// Filtering mirrors the specification structs the services actually pass.

type storeFakes struct {
	sessions      *fakeSessionRepository
	notifications *fakeNotificationRepository
	analytics     *fakeAnalyticsRepository
	factory       *fakeFactory
}

func newStoreFakes() *storeFakes {
	f := &storeFakes{
		sessions:      &fakeSessionRepository{byToken: map[string]*entity.Session{}},
		notifications: &fakeNotificationRepository{},
		analytics:     &fakeAnalyticsRepository{summaries: map[string]*entity.AnalyticsSummary{}},
	}
	f.factory = &fakeFactory{uow: &fakeUnitOfWork{fakes: f}}
	return f
}

func ctxAs(role authz.Role) context.Context {
	return authz.AsService(context.Background(), "test-caller", role)
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f.uow }

type fakeUnitOfWork struct {
	fakes *storeFakes
}

func (u *fakeUnitOfWork) Begin(context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error               { return nil }
func (u *fakeUnitOfWork) Rollback() error             { return nil }

func (u *fakeUnitOfWork) SessionRepository() contract.SessionRepository { return u.fakes.sessions }
func (u *fakeUnitOfWork) NotificationRepository() contract.NotificationRepository {
	return u.fakes.notifications
}
func (u *fakeUnitOfWork) AnalyticsRepository() contract.AnalyticsRepository {
	return u.fakes.analytics
}

type fakeSessionRepository struct {
	mu        sync.Mutex
	byToken   map[string]*entity.Session
	findCalls int
	createErr error

	// deleteStarted and deleteRelease let a test hold a purge mid-flight.
	deleteStarted chan struct{}
	deleteRelease chan struct{}
}

func (r *fakeSessionRepository) Create(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.byToken[session.Token]; exists {
		return entity.ErrDuplicateToken
	}
	copied := *session
	r.byToken[session.Token] = &copied
	return nil
}

func (r *fakeSessionRepository) AttachPlan(_ context.Context, token string, plan entity.PlanDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byToken[token]
	if !ok {
		return entity.ErrSessionNotFound
	}
	s.Plan = plan
	return nil
}

func (r *fakeSessionRepository) AttachTransaction(_ context.Context, token string, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byToken[token]
	if !ok {
		return entity.ErrSessionNotFound
	}
	s.TransactionRef = &ref
	return nil
}

func (r *fakeSessionRepository) MarkInactive(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byToken[token]
	if !ok {
		return entity.ErrSessionNotFound
	}
	s.Active = false
	return nil
}

func (r *fakeSessionRepository) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	for _, s := range r.byToken {
		if sessionMatches(s, specs) {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepository) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Session
	for _, s := range r.byToken {
		if sessionMatches(s, specs) {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

func (r *fakeSessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *fakeSessionRepository) DeleteExpiredInactive(_ context.Context, cutoff time.Time) (int64, error) {
	if r.deleteStarted != nil {
		r.deleteStarted <- struct{}{}
	}
	if r.deleteRelease != nil {
		<-r.deleteRelease
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for token, s := range r.byToken {
		if !s.Active && s.CreatedAt.Before(cutoff) {
			delete(r.byToken, token)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeSessionRepository) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var swept int64
	for _, s := range r.byToken {
		if s.Active && s.ExpiresAt.Before(now) {
			s.Active = false
			swept++
		}
	}
	return swept, nil
}

func (r *fakeSessionRepository) get(token string) *entity.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byToken[token]
}

func (r *fakeSessionRepository) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byToken)
}

func sessionMatches(s *entity.Session, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByToken:
			if s.Token != v.Token {
				return false
			}
		case specification.ActiveOnly:
			if !s.Active {
				return false
			}
		case specification.CreatedBefore:
			if !s.CreatedAt.Before(v.Cutoff) {
				return false
			}
		}
	}
	return true
}

type fakeNotificationRepository struct {
	mu            sync.Mutex
	notifications []*entity.Notification
	createErr     error
}

func (r *fakeNotificationRepository) Create(_ context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	copied := *n
	r.notifications = append(r.notifications, &copied)
	return nil
}

func (r *fakeNotificationRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Notification, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeNotificationRepository) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Notification, len(r.notifications))
	copy(out, r.notifications)
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.OrderBy:
			desc := v.Desc
			sort.SliceStable(out, func(i, j int) bool {
				if desc {
					return out[i].CreatedAt.After(out[j].CreatedAt)
				}
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			})
		case specification.Pagination:
			if v.Offset >= len(out) {
				out = nil
				break
			}
			out = out[v.Offset:]
			if v.Limit > 0 && v.Limit < len(out) {
				out = out[:v.Limit]
			}
		}
	}
	return out, nil
}

func (r *fakeNotificationRepository) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.notifications)), nil
}

type fakeAnalyticsRepository struct {
	mu         sync.Mutex
	events     []*entity.AnalyticsEvent
	summaries  map[string]*entity.AnalyticsSummary
	failCreate bool
}

func (r *fakeAnalyticsRepository) Create(_ context.Context, event *entity.AnalyticsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return entity.ErrStoreUnavailable
	}
	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *fakeAnalyticsRepository) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.AnalyticsEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AnalyticsEvent
	for _, e := range r.events {
		if analyticsMatches(e, specs) {
			copied := *e
			out = append(out, &copied)
		}
	}
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.OrderBy:
			desc := v.Desc
			sort.SliceStable(out, func(i, j int) bool {
				if desc {
					return out[i].CreatedAt.After(out[j].CreatedAt)
				}
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			})
		case specification.Pagination:
			if v.Offset >= len(out) {
				out = nil
				break
			}
			out = out[v.Offset:]
			if v.Limit > 0 && v.Limit < len(out) {
				out = out[:v.Limit]
			}
		}
	}
	return out, nil
}

func (r *fakeAnalyticsRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *fakeAnalyticsRepository) AggregateDay(_ context.Context, day time.Time) ([]*entity.AnalyticsSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	counts := map[string]int64{}
	uniques := map[string]map[string]struct{}{}
	for _, e := range r.events {
		if e.CreatedAt.Before(start) || !e.CreatedAt.Before(end) {
			continue
		}
		counts[e.EventType]++
		if e.Email != nil {
			if uniques[e.EventType] == nil {
				uniques[e.EventType] = map[string]struct{}{}
			}
			uniques[e.EventType][*e.Email] = struct{}{}
		}
	}

	var out []*entity.AnalyticsSummary
	for eventType, count := range counts {
		out = append(out, &entity.AnalyticsSummary{
			Date:        start,
			EventType:   eventType,
			Count:       count,
			UniqueUsers: int64(len(uniques[eventType])),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventType < out[j].EventType })
	return out, nil
}

func (r *fakeAnalyticsRepository) UpsertSummaries(_ context.Context, summaries []*entity.AnalyticsSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range summaries {
		copied := *s
		r.summaries[s.Date.Format("2006-01-02")+"|"+s.EventType] = &copied
	}
	return nil
}

func (r *fakeAnalyticsRepository) FindSummaries(_ context.Context, specs ...specification.Specification) ([]*entity.AnalyticsSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AnalyticsSummary
	for _, s := range r.summaries {
		if summaryMatches(s, specs) {
			copied := *s
			out = append(out, &copied)
		}
	}
	// Newest date first, matching the repository's ordering.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].EventType < out[j].EventType
	})
	return out, nil
}

func (r *fakeAnalyticsRepository) snapshot() []*entity.AnalyticsEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.AnalyticsEvent, len(r.events))
	copy(out, r.events)
	return out
}

func analyticsMatches(e *entity.AnalyticsEvent, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByEventType:
			if e.EventType != v.EventType {
				return false
			}
		case specification.CreatedFrom:
			if e.CreatedAt.Before(v.From) {
				return false
			}
		case specification.CreatedUntil:
			if !e.CreatedAt.Before(v.Until) {
				return false
			}
		}
	}
	return true
}

func summaryMatches(s *entity.AnalyticsSummary, specs []specification.Specification) bool {
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.DateFrom:
			if s.Date.Before(v.From) {
				return false
			}
		case specification.DateUntil:
			if s.Date.After(v.Until) {
				return false
			}
		}
	}
	return true
}

// fakeTracker records what services put on the bus.
type fakeTracker struct {
	mu     sync.Mutex
	events []*dto.RecordEventRequest
}

func (t *fakeTracker) Track(_ context.Context, req *dto.RecordEventRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, req)
}

func (t *fakeTracker) tracked() []*dto.RecordEventRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*dto.RecordEventRequest, len(t.events))
	copy(out, t.events)
	return out
}

// testLogger keeps log calls in memory so tests can assert on them.
type testLogger struct {
	mu      sync.Mutex
	entries []testLogEntry
}

type testLogEntry struct {
	level   string
	module  string
	message string
}

func (l *testLogger) record(level, module, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, testLogEntry{level: level, module: module, message: message})
}

func (l *testLogger) Debug(module, message string, _ map[string]interface{}) {
	l.record("debug", module, message)
}

func (l *testLogger) Info(module, message string, _ map[string]interface{}) {
	l.record("info", module, message)
}

func (l *testLogger) Warn(module, message string, _ map[string]interface{}) {
	l.record("warn", module, message)
}

func (l *testLogger) Error(module, message string, _ map[string]interface{}) {
	l.record("error", module, message)
}

func (l *testLogger) Sync() error { return nil }

func (l *testLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}
