package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quilldesk/brokerage-api/internal/models"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

type mockWriterRepo struct {
	writers    map[int64]models.Writer
	byPhone    map[string]int64
	nextID     int64
	createErrs []error
	creates    int
}

func newMockWriterRepo() *mockWriterRepo {
	return &mockWriterRepo{
		writers: make(map[int64]models.Writer),
		byPhone: make(map[string]int64),
		nextID:  1,
	}
}

func (m *mockWriterRepo) List(ctx context.Context, filter models.WriterFilter) ([]models.Writer, int, error) {
	out := make([]models.Writer, 0, len(m.writers))
	for _, w := range m.writers {
		out = append(out, w)
	}
	return out, len(out), nil
}

func (m *mockWriterRepo) FindByID(ctx context.Context, id int64) (*models.Writer, error) {
	if w, ok := m.writers[id]; ok {
		return &w, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockWriterRepo) HighestPlaceholderPhone(ctx context.Context) (string, error) {
	highest := ""
	for phone := range m.byPhone {
		if len(phone) == 10 && phone[:5] == models.PlaceholderPhonePrefix && phone > highest {
			highest = phone
		}
	}
	return highest, nil
}

func (m *mockWriterRepo) Create(ctx context.Context, writer *models.Writer) error {
	m.creates++
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, taken := m.byPhone[writer.Phone]; taken {
		return &pq.Error{Code: "23505"}
	}
	writer.ID = m.nextID
	m.nextID++
	m.writers[writer.ID] = *writer
	m.byPhone[writer.Phone] = writer.ID
	return nil
}

func (m *mockWriterRepo) Update(ctx context.Context, writer *models.Writer) (int64, error) {
	if _, ok := m.writers[writer.ID]; !ok {
		return 0, nil
	}
	m.writers[writer.ID] = *writer
	return 1, nil
}

func (m *mockWriterRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if _, ok := m.writers[id]; !ok {
		return 0, nil
	}
	delete(m.writers, id)
	return 1, nil
}

type mockAchievementLister struct {
	byWriter map[int64][]models.WriterAchievement
}

func (m *mockAchievementLister) ListByWriter(ctx context.Context, writerID int64) ([]models.WriterAchievement, error) {
	return m.byWriter[writerID], nil
}

func newWriterFixture(repo *mockWriterRepo) *WriterService {
	return NewWriterService(repo, &mockAchievementLister{}, 3, validator.New(), zap.NewNop())
}

func TestWriterCreateKeepsGenuinePhone(t *testing.T) {
	repo := newMockWriterRepo()
	svc := newWriterFixture(repo)

	writer, err := svc.Create(context.Background(), CreateWriterRequest{Name: "Ana", Phone: "9876543210"})
	require.NoError(t, err)
	assert.Equal(t, "9876543210", writer.Phone)
	assert.Equal(t, models.WriterLevelBronze, writer.Level)
	assert.Equal(t, "available", writer.AvailabilityStatus)
	assert.Equal(t, 5, writer.MaxConcurrentTasks)
	assert.Equal(t, models.DefaultWriterRating(), writer.Rating)
}

func TestWriterCreateGenuinePhoneConflict(t *testing.T) {
	repo := newMockWriterRepo()
	svc := newWriterFixture(repo)

	_, err := svc.Create(context.Background(), CreateWriterRequest{Name: "Ana", Phone: "9876543210"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateWriterRequest{Name: "Copy", Phone: "9876543210"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestWriterCreateAllocatesPlaceholder(t *testing.T) {
	repo := newMockWriterRepo()
	svc := newWriterFixture(repo)

	first, err := svc.Create(context.Background(), CreateWriterRequest{Name: "No Phone"})
	require.NoError(t, err)
	assert.Equal(t, "0000000001", first.Phone)

	second, err := svc.Create(context.Background(), CreateWriterRequest{Name: "Short Phone", Phone: "12345"})
	require.NoError(t, err)
	assert.Equal(t, "0000000002", second.Phone)
}

func TestWriterCreatePlaceholderContinuesFromHighest(t *testing.T) {
	repo := newMockWriterRepo()
	repo.byPhone["0000000041"] = 99
	svc := newWriterFixture(repo)

	writer, err := svc.Create(context.Background(), CreateWriterRequest{Name: "Next"})
	require.NoError(t, err)
	assert.Equal(t, "0000000042", writer.Phone)
}

func TestWriterCreatePlaceholderRetriesOnCollision(t *testing.T) {
	repo := newMockWriterRepo()
	repo.createErrs = []error{&pq.Error{Code: "23505"}}
	svc := newWriterFixture(repo)

	writer, err := svc.Create(context.Background(), CreateWriterRequest{Name: "Racer"})
	require.NoError(t, err)
	assert.Equal(t, "0000000001", writer.Phone)
	assert.Equal(t, 2, repo.creates)
}

func TestWriterCreatePlaceholderRetriesExhausted(t *testing.T) {
	repo := newMockWriterRepo()
	repo.createErrs = []error{
		&pq.Error{Code: "23505"},
		&pq.Error{Code: "23505"},
		&pq.Error{Code: "23505"},
	}
	svc := newWriterFixture(repo)

	_, err := svc.Create(context.Background(), CreateWriterRequest{Name: "Unlucky"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 3, repo.creates)
}

func TestWriterCreateStopsOnOtherErrors(t *testing.T) {
	repo := newMockWriterRepo()
	repo.createErrs = []error{fmt.Errorf("connection reset")}
	svc := newWriterFixture(repo)

	_, err := svc.Create(context.Background(), CreateWriterRequest{Name: "Broken"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 1, repo.creates)
}

func TestWriterUpdateKeepsPlaceholderWhenPhoneNotGenuine(t *testing.T) {
	repo := newMockWriterRepo()
	svc := newWriterFixture(repo)

	writer, err := svc.Create(context.Background(), CreateWriterRequest{Name: "No Phone"})
	require.NoError(t, err)
	placeholder := writer.Phone

	updated, err := svc.Update(context.Background(), writer.ID, UpdateWriterRequest{Name: "Renamed", Phone: "n/a"})
	require.NoError(t, err)
	assert.Equal(t, placeholder, updated.Phone)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestWriterUpdateGenuinePhoneReplacesPlaceholder(t *testing.T) {
	repo := newMockWriterRepo()
	svc := newWriterFixture(repo)

	writer, err := svc.Create(context.Background(), CreateWriterRequest{Name: "No Phone"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), writer.ID, UpdateWriterRequest{Name: "No Phone", Phone: "5551234567"})
	require.NoError(t, err)
	assert.Equal(t, "5551234567", updated.Phone)
}

func TestWriterDeleteMissing(t *testing.T) {
	repo := newMockWriterRepo()
	svc := newWriterFixture(repo)

	err := svc.Delete(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
