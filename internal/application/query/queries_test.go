package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeStudents struct {
	students map[string]*student.Student
	getCalls int
}

func (f *fakeStudents) Create(ctx context.Context, s *student.Student) error { return nil }

func (f *fakeStudents) GetByID(ctx context.Context, id string) (*student.Student, error) {
	f.getCalls++
	s, ok := f.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return s.Clone(), nil
}

func (f *fakeStudents) GetByNumber(ctx context.Context, number student.StudentNumber) (*student.Student, error) {
	return nil, shared.ErrStudentNotFound
}

func (f *fakeStudents) GetByIDs(ctx context.Context, ids []string) ([]*student.Student, error) {
	return nil, nil
}

func (f *fakeStudents) Update(ctx context.Context, s *student.Student) error { return nil }

func (f *fakeStudents) ApplyScoreDelta(ctx context.Context, id string, delta student.Score) (student.Score, error) {
	return 0, shared.ErrStudentNotFound
}

func (f *fakeStudents) List(ctx context.Context, opts student.ListOptions) ([]*student.Student, error) {
	return nil, nil
}

func (f *fakeStudents) Count(ctx context.Context) (int, error) { return len(f.students), nil }

func (f *fakeStudents) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := f.students[id]
	return ok, nil
}

type fakeRecords struct {
	records  []*conduct.ConductRecord
	getCalls int
}

func (f *fakeRecords) Create(ctx context.Context, r *conduct.ConductRecord) error { return nil }

func (f *fakeRecords) GetByID(ctx context.Context, id string) (*conduct.ConductRecord, error) {
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, shared.ErrRecordNotFound
}

func (f *fakeRecords) GetByStudent(ctx context.Context, studentID string, opts conduct.ListOptions) ([]*conduct.ConductRecord, error) {
	f.getCalls++
	var out []*conduct.ConductRecord
	for _, r := range f.records {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecords) SetStatus(ctx context.Context, id string, status conduct.RecordStatus) error {
	return shared.ErrRecordNotFound
}

func (f *fakeRecords) Delete(ctx context.Context, id string) (bool, error) { return false, nil }

func (f *fakeRecords) SumValidChanges(ctx context.Context, studentID string) (student.Score, error) {
	var sum student.Score
	for _, r := range f.records {
		if r.StudentID == studentID && r.Status == conduct.RecordValid {
			sum += r.ScoreChange
		}
	}
	return sum, nil
}

func (f *fakeRecords) List(ctx context.Context, opts conduct.ListOptions) ([]*conduct.ConductRecord, error) {
	return f.records, nil
}

type fakeAppeals struct {
	appeals []*conduct.Appeal
}

func (f *fakeAppeals) Create(ctx context.Context, a *conduct.Appeal) error { return nil }

func (f *fakeAppeals) GetByID(ctx context.Context, id string) (*conduct.Appeal, error) {
	return nil, shared.ErrAppealNotFound
}

func (f *fakeAppeals) GetByRecord(ctx context.Context, recordID string) (*conduct.Appeal, error) {
	return nil, shared.ErrAppealNotFound
}

func (f *fakeAppeals) Update(ctx context.Context, a *conduct.Appeal) error { return nil }

func (f *fakeAppeals) ListByStatus(ctx context.Context, status conduct.AppealStatus, opts conduct.ListOptions) ([]*conduct.Appeal, error) {
	var out []*conduct.Appeal
	for _, a := range f.appeals {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

var errCacheMiss = errors.New("cache miss")

type fakeViewCache struct {
	scoreViews  map[string]*conduct.ScoreView
	recordLists map[string][]*conduct.ConductRecord
}

func newFakeViewCache() *fakeViewCache {
	return &fakeViewCache{
		scoreViews:  make(map[string]*conduct.ScoreView),
		recordLists: make(map[string][]*conduct.ConductRecord),
	}
}

func (f *fakeViewCache) InvalidateAll(ctx context.Context) error {
	f.scoreViews = make(map[string]*conduct.ScoreView)
	f.recordLists = make(map[string][]*conduct.ConductRecord)
	return nil
}

func (f *fakeViewCache) GetScoreView(ctx context.Context, studentID string) (*conduct.ScoreView, error) {
	v, ok := f.scoreViews[studentID]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (f *fakeViewCache) SetScoreView(ctx context.Context, view *conduct.ScoreView, ttl time.Duration) error {
	f.scoreViews[view.StudentID] = view
	return nil
}

func (f *fakeViewCache) GetRecordList(ctx context.Context, studentID string) ([]*conduct.ConductRecord, error) {
	rs, ok := f.recordLists[studentID]
	if !ok {
		return nil, errCacheMiss
	}
	return rs, nil
}

func (f *fakeViewCache) SetRecordList(ctx context.Context, studentID string, records []*conduct.ConductRecord, ttl time.Duration) error {
	f.recordLists[studentID] = records
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────────────────────

func newTestStudent(t *testing.T, id string, base student.Score) *student.Student {
	t.Helper()
	s, err := student.NewStudent(student.NewStudentParams{
		ID:        id,
		Number:    student.StudentNumber("2024" + id),
		Name:      "Student " + id,
		BaseScore: base,
	})
	require.NoError(t, err)
	return s
}

func newTestRecord(t *testing.T, id, studentID string, change student.Score) *conduct.ConductRecord {
	t.Helper()
	r, err := conduct.NewConductRecord(conduct.NewRecordParams{
		ID:           id,
		StudentID:    studentID,
		Reason:       "reason " + id,
		ScoreChange:  change,
		OperatorName: "admin",
	})
	require.NoError(t, err)
	return r
}

// ─────────────────────────────────────────────────────────────────────────────
// GetStudentScore
// ─────────────────────────────────────────────────────────────────────────────

func TestGetStudentScore_MissComputesAndCaches(t *testing.T) {
	stud := newTestStudent(t, "s1", 100)
	stud.CurrentScore = 92
	students := &fakeStudents{students: map[string]*student.Student{"s1": stud}}
	records := &fakeRecords{records: []*conduct.ConductRecord{
		newTestRecord(t, "r1", "s1", -5),
		newTestRecord(t, "r2", "s1", -3),
	}}
	cache := newFakeViewCache()

	h := NewGetStudentScoreHandler(students, records, cache, nil)
	view, err := h.Handle(context.Background(), GetStudentScoreQuery{StudentID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, "s1", view.StudentID)
	assert.Equal(t, student.Score(100), view.BaseScore)
	assert.Equal(t, student.Score(92), view.CurrentScore)
	assert.Equal(t, student.Score(-8), view.ValidSum)
	assert.Equal(t, 2, view.RecordCount)
	assert.False(t, view.CachedAt.IsZero())

	// The computed view must now be cached.
	cached, err := cache.GetScoreView(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, view, cached)
}

func TestGetStudentScore_HitSkipsStore(t *testing.T) {
	students := &fakeStudents{students: map[string]*student.Student{}}
	records := &fakeRecords{}
	cache := newFakeViewCache()
	cache.scoreViews["s1"] = &conduct.ScoreView{StudentID: "s1", CurrentScore: 77}

	h := NewGetStudentScoreHandler(students, records, cache, nil)
	view, err := h.Handle(context.Background(), GetStudentScoreQuery{StudentID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, student.Score(77), view.CurrentScore)
	assert.Equal(t, 0, students.getCalls)
	assert.Equal(t, 0, records.getCalls)
}

func TestGetStudentScore_NilCache(t *testing.T) {
	stud := newTestStudent(t, "s1", 100)
	students := &fakeStudents{students: map[string]*student.Student{"s1": stud}}

	h := NewGetStudentScoreHandler(students, &fakeRecords{}, nil, nil)
	view, err := h.Handle(context.Background(), GetStudentScoreQuery{StudentID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, student.Score(100), view.CurrentScore)
}

func TestGetStudentScore_StudentNotFound(t *testing.T) {
	h := NewGetStudentScoreHandler(&fakeStudents{students: map[string]*student.Student{}}, &fakeRecords{}, nil, nil)

	_, err := h.Handle(context.Background(), GetStudentScoreQuery{StudentID: "missing"})
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// ListRecords
// ─────────────────────────────────────────────────────────────────────────────

func TestListRecords_FirstPageCached(t *testing.T) {
	records := &fakeRecords{records: []*conduct.ConductRecord{
		newTestRecord(t, "r1", "s1", -5),
	}}
	cache := newFakeViewCache()
	h := NewListRecordsHandler(records, cache)

	first, err := h.Handle(context.Background(), ListRecordsQuery{StudentID: "s1"})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, records.getCalls)

	// A second default listing is served from the cache.
	second, err := h.Handle(context.Background(), ListRecordsQuery{StudentID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, records.getCalls)
}

func TestListRecords_DeepPageBypassesCache(t *testing.T) {
	records := &fakeRecords{records: []*conduct.ConductRecord{
		newTestRecord(t, "r1", "s1", -5),
	}}
	cache := newFakeViewCache()
	h := NewListRecordsHandler(records, cache)

	_, err := h.Handle(context.Background(), ListRecordsQuery{StudentID: "s1", Offset: 50})
	require.NoError(t, err)
	assert.Empty(t, cache.recordLists)

	_, err = h.Handle(context.Background(), ListRecordsQuery{StudentID: "s1", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, cache.recordLists)
	assert.Equal(t, 2, records.getCalls)
}

func TestListRecords_NilCache(t *testing.T) {
	records := &fakeRecords{records: []*conduct.ConductRecord{
		newTestRecord(t, "r1", "s1", -5),
	}}
	h := NewListRecordsHandler(records, nil)

	out, err := h.Handle(context.Background(), ListRecordsQuery{StudentID: "s1"})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

// ─────────────────────────────────────────────────────────────────────────────
// ListAppeals
// ─────────────────────────────────────────────────────────────────────────────

func TestListAppeals_FiltersByStatus(t *testing.T) {
	pending, err := conduct.NewAppeal(conduct.NewAppealParams{
		ID: "a1", StudentID: "s1", RecordID: "r1", Reason: "unfair",
	})
	require.NoError(t, err)
	decided, err := conduct.NewAppeal(conduct.NewAppealParams{
		ID: "a2", StudentID: "s2", RecordID: "r2", Reason: "mistake",
	})
	require.NoError(t, err)
	decided.Status = conduct.AppealRejected

	h := NewListAppealsHandler(&fakeAppeals{appeals: []*conduct.Appeal{pending, decided}})

	out, err := h.Handle(context.Background(), ListAppealsQuery{Status: conduct.AppealPending})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a1", out[0].ID)
}

func TestListAppeals_UnknownStatus(t *testing.T) {
	h := NewListAppealsHandler(&fakeAppeals{})

	_, err := h.Handle(context.Background(), ListAppealsQuery{Status: "escalated"})
	assert.ErrorIs(t, err, shared.ErrUnknownAppealStatus)
}
