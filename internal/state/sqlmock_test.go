package state

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockStore(t *testing.T, dialect string) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := NewStore(nil)
	store.db = db
	store.dialect = dialect
	return store, mock
}

func TestRebind(t *testing.T) {
	tests := []struct {
		dialect string
		in      string
		want    string
	}{
		{DriverSQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{DriverPostgres, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{DriverPostgres, "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		s := &SQLStore{dialect: tt.dialect}
		assert.Equal(t, tt.want, s.rebind(tt.in))
	}
}

func TestSQLStore_SaveCompany_ExecError(t *testing.T) {
	store, mock := mockStore(t, DriverSQLite)
	mock.ExpectExec("INSERT INTO companies").WillReturnError(errors.New("disk full"))

	_, err := store.SaveCompany(context.Background(), sampleCompany("RDDT", "Reddit", 1))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save company RDDT")
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetCompany_PostgresPlaceholders(t *testing.T) {
	store, mock := mockStore(t, DriverPostgres)
	mock.ExpectQuery(`SELECT payload FROM companies WHERE ticker = \$1`).
		WithArgs("RDDT").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).
			AddRow(`{"company":"Reddit","ticker":"RDDT","metrics":[]}`))

	c, err := store.GetCompany(context.Background(), core.Query{Ticker: "RDDT"})

	require.NoError(t, err)
	assert.Equal(t, "Reddit", c.Company)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetCompany_CorruptPayload(t *testing.T) {
	store, mock := mockStore(t, DriverSQLite)
	mock.ExpectQuery("SELECT payload FROM companies").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`{not json`))

	_, err := store.GetCompany(context.Background(), core.Query{Ticker: "RDDT"})

	assert.ErrorContains(t, err, "failed to decode company")
}

func TestSQLStore_DeleteCompany_NothingDeleted(t *testing.T) {
	store, mock := mockStore(t, DriverPostgres)
	mock.ExpectExec(`DELETE FROM companies WHERE ticker = \$1`).
		WithArgs("RDDT").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteCompany(context.Background(), "RDDT")

	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ListImports_QueryError(t *testing.T) {
	store, mock := mockStore(t, DriverSQLite)
	mock.ExpectQuery("SELECT id, ticker, file").WillReturnError(errors.New("locked"))

	_, err := store.ListImports(context.Background(), "RDDT", 5)

	assert.ErrorContains(t, err, "failed to list imports")
}
