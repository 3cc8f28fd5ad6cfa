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

func newUniversityMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestUniversityRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newUniversityMock(t)
	defer cleanup()
	repo := NewUniversityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM universities WHERE LOWER(TRIM(name)) = LOWER(TRIM($1)) LIMIT 1`)).
		WithArgs("  mit ").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByName(context.Background(), "  mit ", 0)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUniversityRepositoryExistsByNameExcludesID(t *testing.T) {
	db, mock, cleanup := newUniversityMock(t)
	defer cleanup()
	repo := NewUniversityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM universities WHERE LOWER(TRIM(name)) = LOWER(TRIM($1)) AND id <> $2 LIMIT 1`)).
		WithArgs("MIT", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByName(context.Background(), "MIT", 3)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUniversityRepositoryCreateFillsID(t *testing.T) {
	db, mock, cleanup := newUniversityMock(t)
	defer cleanup()
	repo := NewUniversityRepository(db)

	mock.ExpectQuery("INSERT INTO universities").
		WithArgs("MIT", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	university := &models.University{Name: "MIT"}
	err := repo.Create(context.Background(), university)
	require.NoError(t, err)
	assert.Equal(t, int64(5), university.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUniversityRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newUniversityMock(t)
	defer cleanup()
	repo := NewUniversityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM universities WHERE id = $1`)).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.Delete(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
