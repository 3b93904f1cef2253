package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type uniqueRow struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"uniqueIndex"`
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm duplicated key", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"postgres 23505", &pgconn.PgError{Code: "23505"}, true},
		{"postgres other code", &pgconn.PgError{Code: "23503"}, false},
		{"mysql message", errors.New("Error 1062: Duplicate entry 'a' for key 'email'"), true},
		{"unrelated", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestOpenDialector_SQLiteUniqueViolation(t *testing.T) {
	gdb, err := OpenDialector(sqlite.Open(":memory:"), GormConfig{Type: DatabaseTypeSQLite})
	require.NoError(t, err)
	defer func() { _ = gdb.Close() }()

	require.NoError(t, gdb.AutoMigrate(&uniqueRow{}))
	require.NoError(t, gdb.DB().Create(&uniqueRow{Code: "a"}).Error)

	err = gdb.DB().Create(&uniqueRow{Code: "a"}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	var row uniqueRow
	err = gdb.DB().First(&row, "code = ?", "missing").Error
	assert.True(t, IsNotFound(err))

	assert.Equal(t, DatabaseTypeSQLite, gdb.DatabaseType())
	assert.NoError(t, gdb.Ping(context.Background()))
}

func TestGormConfig_Dialector(t *testing.T) {
	for _, typ := range []DatabaseType{DatabaseTypePostgres, DatabaseTypeMySQL, DatabaseTypeSQLServer, DatabaseTypeSQLite} {
		d, err := GormConfig{Type: typ, Host: "localhost", Port: "1"}.Dialector()
		require.NoError(t, err, typ)
		assert.NotNil(t, d)
	}

	_, err := GormConfig{Type: "mongo"}.Dialector()
	assert.Error(t, err)
}

func TestRefreshConnectionPool(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	for range 3 {
		mock.ExpectPing()
	}
	require.NoError(t, RefreshConnectionPool(context.Background(), sqlDB))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshConnectionPool_PingFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	mock.ExpectPing().WillReturnError(errors.New("server gone"))
	err = RefreshConnectionPool(context.Background(), sqlDB)
	assert.ErrorContains(t, err, "server gone")
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestCheckComponent(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, StatusDisabled, CheckComponent(ctx, nil, time.Second).Status)

	ok := CheckComponent(ctx, fakePinger{}, time.Second)
	assert.Equal(t, StatusHealthy, ok.Status)
	assert.NotEmpty(t, ok.Latency)

	bad := CheckComponent(ctx, fakePinger{err: errors.New("down")}, time.Second)
	assert.Equal(t, StatusUnhealthy, bad.Status)
	assert.Equal(t, "down", bad.Error)
}

func TestRedisDB(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedisDBFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer func() { _ = rdb.Close() }()
	ctx := context.Background()

	require.NoError(t, rdb.Ping(ctx))

	_, found, err := rdb.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, rdb.Set(ctx, "k", "v", time.Minute))
	val, found, err := rdb.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", val)

	exists, err := rdb.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	mr.FastForward(2 * time.Minute)
	exists, err = rdb.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisKeyBuilder(t *testing.T) {
	b := NewRedisKeyBuilder("")
	assert.Equal(t, "personnel:cache:field_definitions:active", b.FieldDefinitionsKey(false))
	assert.Equal(t, "personnel:cache:field_definitions:all", b.FieldDefinitionsKey(true))
	assert.Equal(t, "personnel:cache:form:current", b.FormKey())
	assert.Equal(t, "test:revoked:token:abc", NewRedisKeyBuilder("test").RevokedTokenKey("abc"))
}
