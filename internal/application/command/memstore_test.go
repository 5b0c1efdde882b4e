package command

import (
	"context"
	"errors"
	"sort"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"
)

// memStore is an in-memory stand-in for the postgres unit of work.
// WithinTx snapshots all tables before running fn and restores the
// snapshot on error, so rollback-on-failure behaves like the real thing.
type memStore struct {
	students map[string]*student.Student
	records  map[string]*conduct.ConductRecord
	appeals  map[string]*conduct.Appeal

	// failNextWrite forces the next mutating call to fail, for testing
	// that a failing transaction leaves no partial state.
	failNextWrite bool
}

func newMemStore() *memStore {
	return &memStore{
		students: make(map[string]*student.Student),
		records:  make(map[string]*conduct.ConductRecord),
		appeals:  make(map[string]*conduct.Appeal),
	}
}

func (m *memStore) addStudent(s *student.Student) { m.students[s.ID] = s.Clone() }

func (m *memStore) snapshot() (map[string]*student.Student, map[string]*conduct.ConductRecord, map[string]*conduct.Appeal) {
	ss := make(map[string]*student.Student, len(m.students))
	for k, v := range m.students {
		ss[k] = v.Clone()
	}
	rs := make(map[string]*conduct.ConductRecord, len(m.records))
	for k, v := range m.records {
		cp := *v
		rs[k] = &cp
	}
	as := make(map[string]*conduct.Appeal, len(m.appeals))
	for k, v := range m.appeals {
		cp := *v
		as[k] = &cp
	}
	return ss, rs, as
}

// WithinTx implements conduct.TxManager.
func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, uow conduct.UnitOfWork) error) error {
	ss, rs, as := m.snapshot()
	if err := fn(ctx, m); err != nil {
		m.students, m.records, m.appeals = ss, rs, as
		return err
	}
	return nil
}

// UnitOfWork implementation.
func (m *memStore) Students() student.Repository      { return (*memStudents)(m) }
func (m *memStore) Records() conduct.RecordRepository { return (*memRecords)(m) }
func (m *memStore) Appeals() conduct.AppealRepository { return (*memAppeals)(m) }

func (m *memStore) checkWrite() error {
	if m.failNextWrite {
		m.failNextWrite = false
		return shared.WrapError("test", "Write", shared.ErrStorage, "injected failure", errors.New("boom"))
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// student.Repository
// ─────────────────────────────────────────────────────────────────────────────

type memStudents memStore

func (m *memStudents) Create(ctx context.Context, s *student.Student) error {
	if _, ok := m.students[s.ID]; ok {
		return shared.ErrStudentAlreadyExists
	}
	m.students[s.ID] = s.Clone()
	return nil
}

func (m *memStudents) GetByID(ctx context.Context, id string) (*student.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return s.Clone(), nil
}

func (m *memStudents) GetByNumber(ctx context.Context, number student.StudentNumber) (*student.Student, error) {
	for _, s := range m.students {
		if s.Number == number {
			return s.Clone(), nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (m *memStudents) GetByIDs(ctx context.Context, ids []string) ([]*student.Student, error) {
	out := make([]*student.Student, 0, len(ids))
	for _, id := range ids {
		if s, ok := m.students[id]; ok {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (m *memStudents) Update(ctx context.Context, s *student.Student) error {
	if _, ok := m.students[s.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	m.students[s.ID] = s.Clone()
	return nil
}

func (m *memStudents) ApplyScoreDelta(ctx context.Context, id string, delta student.Score) (student.Score, error) {
	if err := (*memStore)(m).checkWrite(); err != nil {
		return 0, err
	}
	s, ok := m.students[id]
	if !ok {
		return 0, shared.ErrStudentNotFound
	}
	return s.ApplyDelta(delta), nil
}

func (m *memStudents) List(ctx context.Context, opts student.ListOptions) ([]*student.Student, error) {
	out := make([]*student.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStudents) Count(ctx context.Context) (int, error) { return len(m.students), nil }

func (m *memStudents) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.students[id]
	return ok, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// conduct.RecordRepository
// ─────────────────────────────────────────────────────────────────────────────

type memRecords memStore

func (m *memRecords) Create(ctx context.Context, rec *conduct.ConductRecord) error {
	if err := (*memStore)(m).checkWrite(); err != nil {
		return err
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *memRecords) GetByID(ctx context.Context, id string) (*conduct.ConductRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, shared.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memRecords) GetByStudent(ctx context.Context, studentID string, opts conduct.ListOptions) ([]*conduct.ConductRecord, error) {
	out := make([]*conduct.ConductRecord, 0)
	for _, rec := range m.records {
		if rec.StudentID == studentID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRecords) SetStatus(ctx context.Context, id string, status conduct.RecordStatus) error {
	if err := (*memStore)(m).checkWrite(); err != nil {
		return err
	}
	rec, ok := m.records[id]
	if !ok {
		return shared.ErrRecordNotFound
	}
	rec.Status = status
	return nil
}

func (m *memRecords) Delete(ctx context.Context, id string) (bool, error) {
	if err := (*memStore)(m).checkWrite(); err != nil {
		return false, err
	}
	if _, ok := m.records[id]; !ok {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

func (m *memRecords) SumValidChanges(ctx context.Context, studentID string) (student.Score, error) {
	var sum student.Score
	for _, rec := range m.records {
		if rec.StudentID == studentID && rec.Status.Counts() {
			sum += rec.ScoreChange
		}
	}
	return sum, nil
}

func (m *memRecords) List(ctx context.Context, opts conduct.ListOptions) ([]*conduct.ConductRecord, error) {
	out := make([]*conduct.ConductRecord, 0, len(m.records))
	for _, rec := range m.records {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// conduct.AppealRepository
// ─────────────────────────────────────────────────────────────────────────────

type memAppeals memStore

func (m *memAppeals) Create(ctx context.Context, appeal *conduct.Appeal) error {
	if err := (*memStore)(m).checkWrite(); err != nil {
		return err
	}
	for _, a := range m.appeals {
		if a.RecordID == appeal.RecordID {
			return shared.ErrAppealAlreadyFiled
		}
	}
	cp := *appeal
	m.appeals[appeal.ID] = &cp
	return nil
}

func (m *memAppeals) GetByID(ctx context.Context, id string) (*conduct.Appeal, error) {
	a, ok := m.appeals[id]
	if !ok {
		return nil, shared.ErrAppealNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAppeals) GetByRecord(ctx context.Context, recordID string) (*conduct.Appeal, error) {
	for _, a := range m.appeals {
		if a.RecordID == recordID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, shared.ErrAppealNotFound
}

func (m *memAppeals) Update(ctx context.Context, appeal *conduct.Appeal) error {
	if err := (*memStore)(m).checkWrite(); err != nil {
		return err
	}
	if _, ok := m.appeals[appeal.ID]; !ok {
		return shared.ErrAppealNotFound
	}
	cp := *appeal
	m.appeals[appeal.ID] = &cp
	return nil
}

func (m *memAppeals) ListByStatus(ctx context.Context, status conduct.AppealStatus, opts conduct.ListOptions) ([]*conduct.Appeal, error) {
	out := make([]*conduct.Appeal, 0)
	for _, a := range m.appeals {
		if a.Status == status {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Cache invalidator fake
// ─────────────────────────────────────────────────────────────────────────────

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) InvalidateAll(ctx context.Context) error {
	f.calls++
	return f.err
}
