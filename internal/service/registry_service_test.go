package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilldesk/brokerage-api/internal/models"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

type mockUniversityRepo struct {
	universities map[int64]models.University
	nextID       int64
}

func newMockUniversityRepo() *mockUniversityRepo {
	return &mockUniversityRepo{universities: make(map[int64]models.University), nextID: 1}
}

func (m *mockUniversityRepo) ListAll(ctx context.Context) ([]models.University, error) {
	out := make([]models.University, 0, len(m.universities))
	for _, u := range m.universities {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUniversityRepo) FindByID(ctx context.Context, id int64) (*models.University, error) {
	if u, ok := m.universities[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUniversityRepo) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for id, u := range m.universities {
		if id == excludeID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(u.Name)) == key {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUniversityRepo) Create(ctx context.Context, university *models.University) error {
	university.ID = m.nextID
	m.nextID++
	m.universities[university.ID] = *university
	return nil
}

func (m *mockUniversityRepo) Update(ctx context.Context, university *models.University) (int64, error) {
	if _, ok := m.universities[university.ID]; !ok {
		return 0, nil
	}
	m.universities[university.ID] = *university
	return 1, nil
}

func (m *mockUniversityRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if _, ok := m.universities[id]; !ok {
		return 0, nil
	}
	delete(m.universities, id)
	return 1, nil
}

type mockRegistryStudents struct {
	unlinked []models.Student
	linked   map[string]int64
}

func newMockRegistryStudents(students ...models.Student) *mockRegistryStudents {
	return &mockRegistryStudents{unlinked: students, linked: make(map[string]int64)}
}

func (m *mockRegistryStudents) ListUnlinked(ctx context.Context) ([]models.Student, error) {
	out := make([]models.Student, 0, len(m.unlinked))
	for _, s := range m.unlinked {
		if _, done := m.linked[s.ID]; !done {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockRegistryStudents) SetUniversity(ctx context.Context, studentID string, universityID int64) error {
	m.linked[studentID] = universityID
	return nil
}

func TestRegistryCreateRejectsDuplicateName(t *testing.T) {
	repo := newMockUniversityRepo()
	svc := NewRegistryService(repo, newMockRegistryStudents(), nil, nil)

	_, err := svc.Create(context.Background(), UniversityRequest{Name: "MIT"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), UniversityRequest{Name: "  mit "})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegistryCreateRejectsBlankName(t *testing.T) {
	svc := NewRegistryService(newMockUniversityRepo(), newMockRegistryStudents(), nil, nil)

	_, err := svc.Create(context.Background(), UniversityRequest{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegistryUpdateAllowsOwnName(t *testing.T) {
	repo := newMockUniversityRepo()
	svc := NewRegistryService(repo, newMockRegistryStudents(), nil, nil)

	created, err := svc.Create(context.Background(), UniversityRequest{Name: "MIT"})
	require.NoError(t, err)

	loc := "Cambridge"
	updated, err := svc.Update(context.Background(), created.ID, UniversityRequest{Name: "mit", Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "mit", updated.Name)
	assert.Equal(t, &loc, updated.Location)
}

func TestRegistryUpdateRejectsOtherUniversityName(t *testing.T) {
	repo := newMockUniversityRepo()
	svc := NewRegistryService(repo, newMockRegistryStudents(), nil, nil)

	_, err := svc.Create(context.Background(), UniversityRequest{Name: "MIT"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), UniversityRequest{Name: "Stanford"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), second.ID, UniversityRequest{Name: "MIT"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegistryBackfillLinksAndCreates(t *testing.T) {
	repo := newMockUniversityRepo()
	students := newMockRegistryStudents(
		models.Student{ID: "stu-1", University: "MIT "},
		models.Student{ID: "stu-2", University: "mit"},
		models.Student{ID: "stu-3", University: "Stanford"},
		models.Student{ID: "stu-4", University: "   "},
	)
	svc := NewRegistryService(repo, students, nil, nil)

	result, err := svc.Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.StudentsLinked)
	assert.Equal(t, 2, result.UniversitiesCreated)

	// Case variants collapse onto one entity and keep the first-seen casing.
	assert.Equal(t, students.linked["stu-1"], students.linked["stu-2"])
	names := make(map[string]bool)
	for _, u := range repo.universities {
		names[u.Name] = true
	}
	assert.True(t, names["MIT"])
	assert.True(t, names["Stanford"])
	assert.Len(t, repo.universities, 2)

	// Students with no usable name are left alone.
	_, linked := students.linked["stu-4"]
	assert.False(t, linked)
}

func TestRegistryBackfillReusesExistingUniversities(t *testing.T) {
	repo := newMockUniversityRepo()
	repo.universities[7] = models.University{ID: 7, Name: "MIT"}
	students := newMockRegistryStudents(models.Student{ID: "stu-1", University: " mit"})
	svc := NewRegistryService(repo, students, nil, nil)

	result, err := svc.Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.StudentsLinked)
	assert.Equal(t, 0, result.UniversitiesCreated)
	assert.Equal(t, int64(7), students.linked["stu-1"])
}

func TestRegistryBackfillIdempotent(t *testing.T) {
	repo := newMockUniversityRepo()
	students := newMockRegistryStudents(models.Student{ID: "stu-1", University: "MIT"})
	svc := NewRegistryService(repo, students, nil, nil)

	first, err := svc.Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.StudentsLinked)

	second, err := svc.Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.StudentsLinked)
	assert.Equal(t, 0, second.UniversitiesCreated)
	assert.Len(t, repo.universities, 1)
}

func TestRegistryDeleteMissing(t *testing.T) {
	svc := NewRegistryService(newMockUniversityRepo(), newMockRegistryStudents(), nil, nil)

	err := svc.Delete(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
