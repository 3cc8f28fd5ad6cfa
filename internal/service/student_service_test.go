package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilldesk/brokerage-api/internal/models"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

type mockStudentRepo struct {
	students  map[string]models.Student
	gotFilter models.StudentFilter
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]models.Student)}
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.gotFilter = filter
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) (int64, error) {
	if _, ok := m.students[student.ID]; !ok {
		return 0, nil
	}
	m.students[student.ID] = *student
	return 1, nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) (int64, error) {
	if _, ok := m.students[id]; !ok {
		return 0, nil
	}
	delete(m.students, id)
	return 1, nil
}

func TestStudentCreateAssignsID(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	student, err := svc.Create(context.Background(), CreateStudentRequest{Name: "Dana", University: "MIT"})
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, "Dana", student.Name)
}

func TestStudentCreateRejectsBadEmail(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), nil, nil)

	_, err := svc.Create(context.Background(), CreateStudentRequest{Name: "Dana", Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentUpdateKeepsDanglingReferral(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	student, err := svc.Create(context.Background(), CreateStudentRequest{Name: "Dana"})
	require.NoError(t, err)

	gone := "no-such-student"
	updated, err := svc.Update(context.Background(), student.ID, UpdateStudentRequest{Name: "Dana", ReferredBy: &gone})
	require.NoError(t, err)
	assert.Equal(t, &gone, updated.ReferredBy)
}

func TestStudentListClampsPagination(t *testing.T) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, nil)

	_, pagination, err := svc.List(context.Background(), models.StudentFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, repo.gotFilter.Page)
	assert.Equal(t, 20, repo.gotFilter.PageSize)
}

func TestStudentGetMissing(t *testing.T) {
	svc := NewStudentService(newMockStudentRepo(), nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
