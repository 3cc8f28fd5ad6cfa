package service

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilldesk/brokerage-api/internal/models"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

type mockStudentBatch struct {
	upserted []models.Student
	order    *[]string
}

func (m *mockStudentBatch) Upsert(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	m.upserted = append(m.upserted, *student)
	return nil
}

func (m *mockStudentBatch) Truncate(ctx context.Context, exec sqlx.ExtContext) error {
	*m.order = append(*m.order, "students")
	return nil
}

type mockWriterBatch struct {
	highest   string
	upserted  []models.Writer
	upsertErr error
	order     *[]string
}

func (m *mockWriterBatch) HighestPlaceholderPhone(ctx context.Context) (string, error) {
	return m.highest, nil
}

func (m *mockWriterBatch) Upsert(ctx context.Context, exec sqlx.ExtContext, writer *models.Writer) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, *writer)
	return nil
}

func (m *mockWriterBatch) Truncate(ctx context.Context, exec sqlx.ExtContext) error {
	*m.order = append(*m.order, "writers")
	return nil
}

type mockAssignmentBatch struct {
	upserted []models.Assignment
	order    *[]string
}

func (m *mockAssignmentBatch) Upsert(ctx context.Context, exec sqlx.ExtContext, assignment *models.Assignment) error {
	m.upserted = append(m.upserted, *assignment)
	return nil
}

func (m *mockAssignmentBatch) Truncate(ctx context.Context, exec sqlx.ExtContext) error {
	*m.order = append(*m.order, "assignments")
	return nil
}

type mockTableTruncate struct {
	name  string
	order *[]string
}

func (m *mockTableTruncate) Truncate(ctx context.Context, exec sqlx.ExtContext) error {
	*m.order = append(*m.order, m.name)
	return nil
}

func newDataIOFixture(t *testing.T) (*DataIOService, sqlmock.Sqlmock, *mockStudentBatch, *mockWriterBatch, *mockAssignmentBatch, *[]string, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	order := &[]string{}
	students := &mockStudentBatch{order: order}
	writers := &mockWriterBatch{order: order}
	assignments := &mockAssignmentBatch{order: order}
	achievements := &mockTableTruncate{name: "achievements", order: order}
	universities := &mockTableTruncate{name: "universities", order: order}
	svc := NewDataIOService(sqlx.NewDb(db, "sqlmock"), students, writers, assignments, achievements, universities, nil)
	return svc, mock, students, writers, assignments, order, func() { db.Close() }
}

func TestImportFillsDefaultsAndPlaceholders(t *testing.T) {
	svc, mock, students, writers, assignments, _, cleanup := newDataIOFixture(t)
	defer cleanup()
	writers.highest = "0000000004"

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Import(context.Background(), ImportRequest{
		Students: []models.Student{{Name: "Alice"}},
		Writers: []models.Writer{
			{Name: "Keeps phone", Phone: "9876543210"},
			{Name: "Needs placeholder", Phone: "n/a"},
		},
		Assignments: []models.Assignment{{StudentID: "stu-1", Title: "Essay"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Students)
	assert.Equal(t, 2, result.Writers)
	assert.Equal(t, 1, result.Assignments)

	require.Len(t, students.upserted, 1)
	assert.NotEmpty(t, students.upserted[0].ID)

	require.Len(t, writers.upserted, 2)
	assert.Equal(t, "9876543210", writers.upserted[0].Phone)
	assert.Equal(t, "0000000005", writers.upserted[1].Phone)
	assert.Equal(t, models.WriterLevelBronze, writers.upserted[1].Level)
	assert.Equal(t, "available", writers.upserted[1].AvailabilityStatus)
	assert.Equal(t, 5, writers.upserted[1].MaxConcurrentTasks)

	require.Len(t, assignments.upserted, 1)
	assert.NotEmpty(t, assignments.upserted[0].ID)
	assert.Equal(t, models.StatusPending, assignments.upserted[0].Status)
	assert.JSONEq(t, `[]`, string(assignments.upserted[0].StatusHistory))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportWriterPhoneCollisionIsConflict(t *testing.T) {
	svc, mock, _, writers, assignments, _, cleanup := newDataIOFixture(t)
	defer cleanup()

	// A writer created after the placeholder scan can already hold the
	// number this import computed. That is a retryable conflict, not an
	// internal failure.
	writers.upsertErr = &pq.Error{Code: "23505"}

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Import(context.Background(), ImportRequest{
		Writers:     []models.Writer{{Name: "Raced", Phone: "n/a"}},
		Assignments: []models.Assignment{{StudentID: "stu-1", Title: "Essay"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, assignments.upserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearAllRunsInDependencyOrder(t *testing.T) {
	svc, mock, _, _, _, order, cleanup := newDataIOFixture(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, svc.ClearAll(context.Background()))
	assert.Equal(t, []string{"assignments", "achievements", "students", "writers", "universities"}, *order)
	assert.NoError(t, mock.ExpectationsWereMet())
}
