package categories

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

var columns = []string{"id", "name", "slug", "parent_id", "is_active"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

func TestListActive_FiltersOnActiveFlag(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	rows := sqlmock.NewRows(columns).
		AddRow(int64(1), "Laptops", "laptops", nil, true).
		AddRow(int64(2), "Gaming", "gaming", int64(1), true)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM categories WHERE is_active = TRUE ORDER BY id`)).
		WillReturnRows(rows)

	got, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].ParentID)
	require.NotNil(t, got[1].ParentID)
	assert.Equal(t, int64(1), *got[1].ParentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListActive_QueryError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`FROM categories`).WillReturnError(errors.New("db err"))

	_, err := repo.ListActive(context.Background())
	require.Error(t, err)
	assert.Regexp(t, `failed to select categories: .*db err`, err.Error())
}

func TestListActive_RowsErr(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	rows := sqlmock.NewRows(columns).
		AddRow(int64(1), "a", "a", nil, true).
		AddRow(int64(2), "b", "b", nil, true).
		RowError(1, errors.New("row-err"))
	mock.ExpectQuery(`FROM categories`).WillReturnRows(rows)

	_, err := repo.ListActive(context.Background())
	require.EqualError(t, err, "row-err")
}

func TestListChildren(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE parent_id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(5), "Ultrabooks", "ultrabooks", int64(1), false))

	got, err := repo.ListChildren(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].IsActive, "children are returned regardless of state")
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_ReturnsInactive(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(3), "Old", "old", nil, false))

	c, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, c.IsActive)
}

func TestGetBySlug(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE slug = $1 ORDER BY id LIMIT 1`)).
		WithArgs("laptops").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(1), "Laptops", "laptops", nil, true))

	c, err := repo.GetBySlug(context.Background(), "laptops")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	mock.ExpectQuery(`WHERE slug`).WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	parent := int64(1)
	mock.ExpectQuery(`INSERT INTO categories .* RETURNING id`).
		WithArgs("Gaming", "gaming", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	c, err := repo.Create(context.Background(), &models.Category{Name: "Gaming", Slug: "gaming", ParentID: &parent})
	require.NoError(t, err)
	assert.Equal(t, int64(12), c.ID)
	assert.True(t, c.IsActive)
}

func TestCreate_NullParent(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO categories`).
		WithArgs("Laptops", "laptops", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	_, err := repo.Create(context.Background(), &models.Category{Name: "Laptops", Slug: "laptops"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE categories SET name = $1, slug = $2, parent_id = $3 WHERE id = $4`)).
		WithArgs("Phones", "phones", nil, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), &models.Category{ID: 4, Name: "Phones", Slug: "phones"}))
}

func TestDeactivate(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE categories SET is_active = FALSE WHERE id = $1`)).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Deactivate(context.Background(), 4))

	mock.ExpectExec(`UPDATE categories SET is_active`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Deactivate(context.Background(), 5), common.ErrorNotFound)

	mock.ExpectExec(`UPDATE categories SET is_active`).
		WithArgs(int64(6)).
		WillReturnError(errors.New("db is down"))
	err := repo.Deactivate(context.Background(), 6)
	assert.Regexp(t, `db error: .*db is down`, err.Error())

	mock.ExpectExec(`UPDATE categories SET is_active`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))
	err = repo.Deactivate(context.Background(), 7)
	assert.Regexp(t, `rows affected error: .*rows-err`, err.Error())
}
