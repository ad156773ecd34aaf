package persistence_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dweb/dweb/domain/query"
	"github.com/dweb/dweb/infrastructure/persistence"
	"github.com/dweb/dweb/internal/database"
	"github.com/dweb/dweb/internal/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockRegistry creates a Registry on a postgres dialector backed by sqlmock.
func newMockRegistry(t *testing.T) (*persistence.Registry, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	reg, err := persistence.NewRegistry(database.FromGORM(gormDB), persistence.WithLogger(log.Discard().Slog()))
	require.NoError(t, err)
	return reg, mock
}

func TestSQL_StatusAccessor(t *testing.T) {
	reg, mock := newMockRegistry(t)
	model := persistence.MustRegister[article](reg)

	rows := sqlmock.NewRows([]string{"id", "status", "title"}).
		AddRow(uuid.New().String(), "draft", "first")
	mock.ExpectQuery(`SELECT \* FROM "articles" WHERE status = \$1 AND "articles"."deleted_at" IS NULL`).
		WithArgs("draft").
		WillReturnRows(rows)

	found, err := model.MustManager("draft").Find(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "draft", found[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_CategoryAccessorFiltersCategoryColumn(t *testing.T) {
	reg, mock := newMockRegistry(t)
	model := persistence.MustRegister[product](reg)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE category = \$1`).
		WithArgs("book").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := model.MustManager("book").Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_DeletedObjects(t *testing.T) {
	reg, mock := newMockRegistry(t)
	model := persistence.MustRegister[article](reg)

	mock.ExpectQuery(`SELECT \* FROM "articles" WHERE deleted_at IS NOT NULL AND status = \$1$`).
		WithArgs("draft").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	found, err := model.MustManager(persistence.DeletedObjectsManager).Find(context.Background(), query.WithStatus("draft"))
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_AllObjectsIsUnscoped(t *testing.T) {
	reg, mock := newMockRegistry(t)
	model := persistence.MustRegister[article](reg)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "articles"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := model.MustManager(persistence.AllObjectsManager).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
