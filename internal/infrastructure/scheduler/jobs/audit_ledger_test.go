package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"
)

type auditStudents struct {
	students []*student.Student
}

func (f *auditStudents) Create(ctx context.Context, s *student.Student) error { return nil }

func (f *auditStudents) GetByID(ctx context.Context, id string) (*student.Student, error) {
	return nil, shared.ErrStudentNotFound
}

func (f *auditStudents) GetByNumber(ctx context.Context, number student.StudentNumber) (*student.Student, error) {
	return nil, shared.ErrStudentNotFound
}

func (f *auditStudents) GetByIDs(ctx context.Context, ids []string) ([]*student.Student, error) {
	return nil, nil
}

func (f *auditStudents) Update(ctx context.Context, s *student.Student) error { return nil }

func (f *auditStudents) ApplyScoreDelta(ctx context.Context, id string, delta student.Score) (student.Score, error) {
	return 0, shared.ErrStudentNotFound
}

func (f *auditStudents) List(ctx context.Context, opts student.ListOptions) ([]*student.Student, error) {
	if opts.Offset >= len(f.students) {
		return nil, nil
	}
	end := opts.Offset + opts.Limit
	if end > len(f.students) {
		end = len(f.students)
	}
	return f.students[opts.Offset:end], nil
}

func (f *auditStudents) Count(ctx context.Context) (int, error) { return len(f.students), nil }

func (f *auditStudents) Exists(ctx context.Context, id string) (bool, error) { return false, nil }

type auditRecords struct {
	sums map[string]student.Score
}

func (f *auditRecords) Create(ctx context.Context, r *conduct.ConductRecord) error { return nil }

func (f *auditRecords) GetByID(ctx context.Context, id string) (*conduct.ConductRecord, error) {
	return nil, shared.ErrRecordNotFound
}

func (f *auditRecords) GetByStudent(ctx context.Context, studentID string, opts conduct.ListOptions) ([]*conduct.ConductRecord, error) {
	return nil, nil
}

func (f *auditRecords) SetStatus(ctx context.Context, id string, status conduct.RecordStatus) error {
	return shared.ErrRecordNotFound
}

func (f *auditRecords) Delete(ctx context.Context, id string) (bool, error) { return false, nil }

func (f *auditRecords) SumValidChanges(ctx context.Context, studentID string) (student.Score, error) {
	return f.sums[studentID], nil
}

func (f *auditRecords) List(ctx context.Context, opts conduct.ListOptions) ([]*conduct.ConductRecord, error) {
	return nil, nil
}

type capturingPublisher struct {
	events []shared.Event
}

func (p *capturingPublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func auditStudent(t *testing.T, id string, base, current student.Score) *student.Student {
	t.Helper()
	s, err := student.NewStudent(student.NewStudentParams{
		ID:        id,
		Number:    student.StudentNumber("2024" + id),
		Name:      "Student " + id,
		BaseScore: base,
	})
	require.NoError(t, err)
	s.CurrentScore = current
	return s
}

func TestAuditLedger_CleanLedgerFindsNoDrift(t *testing.T) {
	students := &auditStudents{students: []*student.Student{
		auditStudent(t, "s1", 100, 92),
		auditStudent(t, "s2", 100, 100),
	}}
	records := &auditRecords{sums: map[string]student.Score{"s1": -8}}
	pub := &capturingPublisher{}

	job := NewAuditLedgerJob(students, records, pub, 10, nil)
	require.NoError(t, job.Run(context.Background()))

	assert.Empty(t, pub.events)
}

func TestAuditLedger_ReportsDrift(t *testing.T) {
	students := &auditStudents{students: []*student.Student{
		auditStudent(t, "s1", 100, 90), // expected 95
	}}
	records := &auditRecords{sums: map[string]student.Score{"s1": -5}}
	pub := &capturingPublisher{}

	job := NewAuditLedgerJob(students, records, pub, 10, nil)
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, shared.EventAuditDriftFound, event.EventType())
	assert.Equal(t, "s1", event.AggregateID())

	payload := event.Payload()
	assert.Equal(t, 90.0, payload["current_score"])
	assert.Equal(t, 95.0, payload["expected_score"])
}

func TestAuditLedger_WalksAllPages(t *testing.T) {
	var all []*student.Student
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5"} {
		all = append(all, auditStudent(t, id, 100, 100))
	}
	students := &auditStudents{students: all}
	records := &auditRecords{sums: map[string]student.Score{
		"s5": -10, // drift on the last page
	}}
	pub := &capturingPublisher{}

	job := NewAuditLedgerJob(students, records, pub, 2, nil)
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, pub.events, 1)
	assert.Equal(t, "s5", pub.events[0].AggregateID())
}

func TestAuditLedger_DriftNeverRepairs(t *testing.T) {
	drifted := auditStudent(t, "s1", 100, 50)
	students := &auditStudents{students: []*student.Student{drifted}}
	records := &auditRecords{sums: map[string]student.Score{}}

	job := NewAuditLedgerJob(students, records, &capturingPublisher{}, 10, nil)
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, student.Score(50), drifted.CurrentScore)
}
