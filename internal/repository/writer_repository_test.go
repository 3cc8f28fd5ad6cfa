package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilldesk/brokerage-api/internal/models"
)

func newWriterMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestWriterRepositoryHighestPlaceholderPhone(t *testing.T) {
	db, mock, cleanup := newWriterMock(t)
	defer cleanup()
	repo := NewWriterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT phone FROM writers WHERE phone LIKE $1 ORDER BY phone DESC LIMIT 1`)).
		WithArgs("00000%").
		WillReturnRows(sqlmock.NewRows([]string{"phone"}).AddRow("0000000042"))

	phone, err := repo.HighestPlaceholderPhone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0000000042", phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriterRepositoryHighestPlaceholderPhoneEmpty(t *testing.T) {
	db, mock, cleanup := newWriterMock(t)
	defer cleanup()
	repo := NewWriterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT phone FROM writers WHERE phone LIKE $1 ORDER BY phone DESC LIMIT 1`)).
		WithArgs("00000%").
		WillReturnRows(sqlmock.NewRows([]string{"phone"}))

	phone, err := repo.HighestPlaceholderPhone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriterRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newWriterMock(t)
	defer cleanup()
	repo := NewWriterRepository(db)

	mock.ExpectQuery("INSERT INTO writers").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	writer := &models.Writer{
		Phone:              "0000000001",
		Name:               "New Writer",
		Rating:             models.DefaultWriterRating(),
		AvailabilityStatus: "available",
		MaxConcurrentTasks: 5,
		Level:              models.WriterLevelBronze,
	}
	err := repo.Create(context.Background(), writer)
	require.NoError(t, err)
	assert.Equal(t, int64(11), writer.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriterRepositoryUpdatePerformance(t *testing.T) {
	db, mock, cleanup := newWriterMock(t)
	defer cleanup()
	repo := NewWriterRepository(db)

	mock.ExpectExec("UPDATE writers SET total_assignments").
		WillReturnResult(sqlmock.NewResult(0, 1))

	perf := models.WriterPerformance{
		TotalAssignments:     3,
		CompletedAssignments: 2,
		OnTimeDeliveries:     2,
		Level:                models.WriterLevelBronze,
		Rating:               models.DefaultWriterRating(),
	}
	err := repo.UpdatePerformance(context.Background(), 11, perf)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriterRepositoryCount(t *testing.T) {
	db, mock, cleanup := newWriterMock(t)
	defer cleanup()
	repo := NewWriterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM writers`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
