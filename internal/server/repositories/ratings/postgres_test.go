package ratings

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO ratings .* RETURNING id`).
		WithArgs(int64(5), int64(3), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))

	r, err := repo.Create(context.Background(), &models.Rating{Grade: 5, UserID: 3, ProductID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(10), r.ID)
	assert.True(t, r.IsActive)
}

func TestGradesByProduct_DoesNotFilterOnActive(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT grade FROM ratings WHERE product_id = \$1$`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"grade"}).AddRow(3).AddRow(5))

	grades, err := repo.GradesByProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, grades)
}

func TestGradesByProduct_QueryError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT grade`).WithArgs(int64(1)).WillReturnError(errors.New("db err"))

	_, err := repo.GradesByProduct(context.Background(), 1)
	assert.Regexp(t, `failed to select grades: .*db err`, err.Error())
}

func TestGetByID_AndActive(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	cols := []string{"id", "grade", "user_id", "product_id", "is_active"}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM ratings WHERE id = $1`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(2), 4, int64(1), int64(1), false))
	r, err := repo.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, r.IsActive)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND is_active = TRUE`)).
		WithArgs(int64(2)).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetActiveByID(context.Background(), 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeactivate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE ratings SET is_active = FALSE WHERE id = $1`)).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Deactivate(context.Background(), 2))

	mock.ExpectExec(`UPDATE ratings`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Deactivate(context.Background(), 3), common.ErrorNotFound)
}
