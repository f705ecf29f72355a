package database_test

import (
	"testing"

	"rims/core/database"
	"rims/feature/inventory/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *gorm.DB {
	db, err := database.Connect(database.Config{
		Driver: "sqlite",
		Name:   "file:dbtest?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestConnect_SQLite(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, db.AutoMigrate(&models.Site{}))

	cols, err := database.GetTableColumns(db, "sites")
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, c := range cols {
		names[c.Field] = true
	}
	assert.True(t, names["id"])
	assert.True(t, names["name"])
	assert.True(t, names["modified"])
	assert.True(t, names["modified_microseconds"])
}

func TestVerifyTables(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, db.AutoMigrate(&models.Site{}, &models.ProductInformation{}))

	err := database.VerifyTables(db, "sites", "product_information")
	assert.NoError(t, err)

	err = database.VerifyTables(db, "sites", "no_such_table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_table")
}

func TestGetTableColumns_MySQL(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("ID", "INT UNSIGNED", "NO", "PRI", nil, "auto_increment").
		AddRow("Name", "VARCHAR(50)", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `sites`").WillReturnRows(rows)

	cols, err := database.GetTableColumns(db, "sites")
	require.NoError(t, err)
	require.Len(t, cols, 2)

	// Column metadata is normalized to lower case for comparisons.
	assert.Equal(t, "id", cols[0].Field)
	assert.Equal(t, "int unsigned", cols[0].Type)
	assert.Equal(t, "name", cols[1].Field)

	assert.NoError(t, mock.ExpectationsWereMet())
}
