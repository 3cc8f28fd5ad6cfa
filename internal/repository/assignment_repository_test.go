package repository

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilldesk/brokerage-api/internal/models"
)

func newAssignmentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssignmentRepositoryAppendPaymentStudentSide(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	entry, err := models.MarshalEntry(models.PaymentEntry{Amount: 100, Side: models.PaymentSideStudent, At: time.Now().UTC()})
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE assignments SET paid_amount = paid_amount \+ \$2`).
		WithArgs("a-1", 100.0, []byte(entry), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.AppendPayment(context.Background(), "a-1", models.PaymentSideStudent, 100, entry)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryAppendPaymentWriterSide(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	entry, err := models.MarshalEntry(models.PaymentEntry{Amount: 40, Side: models.PaymentSideWriter, At: time.Now().UTC()})
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE assignments SET writer_paid_amount = writer_paid_amount \+ \$2`).
		WithArgs("a-1", 40.0, []byte(entry), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.AppendPayment(context.Background(), "a-1", models.PaymentSideWriter, 40, entry)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListAllIgnoresPagination(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id"})
	for i := 1; i <= 25; i++ {
		rows.AddRow(fmt.Sprintf("a-%d", i))
	}
	// Anchored at the end of the statement: no LIMIT or OFFSET may follow.
	mock.ExpectQuery(`FROM assignments WHERE 1=1 AND status = \$1 ORDER BY created_at DESC$`).
		WithArgs(models.StatusCompleted).
		WillReturnRows(rows)

	assignments, err := repo.ListAll(context.Background(), models.AssignmentFilter{
		Status:   models.StatusCompleted,
		Page:     1,
		PageSize: 10000,
	})
	require.NoError(t, err)
	require.Len(t, assignments, 25)
	assert.Equal(t, "a-1", assignments[0].ID)
	assert.Equal(t, "a-25", assignments[24].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateStatusReportsFirstCompletion(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	entry, err := models.MarshalEntry(models.StatusChange{From: "In Progress", To: models.StatusCompleted, At: time.Now().UTC()})
	require.NoError(t, err)
	completedAt := time.Now().UTC()

	mock.ExpectQuery(`completed_at = COALESCE\(assignments\.completed_at, \$4\)`).
		WithArgs("a-1", models.StatusCompleted, []byte(entry), &completedAt, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"completed_now"}).AddRow(true))

	rows, completedNow, err := repo.UpdateStatus(context.Background(), "a-1", models.StatusCompleted, entry, &completedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.True(t, completedNow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateStatusAlreadyCompleted(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	entry, err := models.MarshalEntry(models.StatusChange{From: models.StatusCompleted, To: models.StatusCompleted, At: time.Now().UTC()})
	require.NoError(t, err)
	completedAt := time.Now().UTC()

	// The row was stamped by an earlier completion: the flag comes back false.
	mock.ExpectQuery(`RETURNING \(prev\.completed_at IS NULL`).
		WithArgs("a-1", models.StatusCompleted, []byte(entry), &completedAt, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"completed_now"}).AddRow(false))

	rows, completedNow, err := repo.UpdateStatus(context.Background(), "a-1", models.StatusCompleted, entry, &completedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.False(t, completedNow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateStatusMissingRow(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	entry, err := models.MarshalEntry(models.StatusChange{From: "Pending", To: "In Progress", At: time.Now().UTC()})
	require.NoError(t, err)

	mock.ExpectQuery(`UPDATE assignments SET status = \$2`).
		WithArgs("missing", "In Progress", []byte(entry), nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"completed_now"}))

	rows, completedNow, err := repo.UpdateStatus(context.Background(), "missing", "In Progress", entry, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
	assert.False(t, completedNow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryReassignWriter(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	prev := int64(7)
	entry, err := models.MarshalEntry(models.StatusChange{Note: "writer reassigned", At: time.Now().UTC()})
	require.NoError(t, err)

	mock.ExpectExec(`writer_id IS NOT DISTINCT FROM \$5`).
		WithArgs("a-1", int64(9), []byte(entry), sqlmock.AnyArg(), &prev).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.ReassignWriter(context.Background(), "a-1", &prev, 9, entry)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryReassignWriterStaleExpectation(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	prev := int64(7)
	entry, err := models.MarshalEntry(models.StatusChange{At: time.Now().UTC()})
	require.NoError(t, err)

	mock.ExpectExec(`writer_id IS NOT DISTINCT FROM \$5`).
		WithArgs("a-1", int64(9), []byte(entry), sqlmock.AnyArg(), &prev).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.ReassignWriter(context.Background(), "a-1", &prev, 9, entry)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositorySetArchived(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE assignments SET is_archived = $2, updated_at = $3 WHERE id = $1`)).
		WithArgs("a-1", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.SetArchived(context.Background(), "a-1", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryTotals(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"assignments", "completed", "receivable", "writer_payable", "sunk_costs", "collected", "disbursed"}).
		AddRow(4, 2, 350.0, 120.0, 45.0, 650.0, 180.0)
	mock.ExpectQuery(`FROM assignments WHERE is_archived = FALSE`).WillReturnRows(rows)

	totals, err := repo.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, totals.Assignments)
	assert.Equal(t, 2, totals.Completed)
	assert.Equal(t, 350.0, totals.Receivable)
	assert.Equal(t, 45.0, totals.SunkCosts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM assignments WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
