package repository

import (
	"context"
	"regexp"
	"testing"

	"chat_server/internal/model"
	"chat_server/pkg/errorx"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB gorm(MySQL 方言) + sqlmock，用来验证 MySQL 错误码的翻译
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysqldriver.New(mysqldriver.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{TranslateError: true, Logger: logger.Discard})
	require.NoError(t, err)
	return db, mock
}

func TestMySQLDuplicateEntryBecomesConflict(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `contact`")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'U_A:U_B' for key 'pair_key'"})
	mock.ExpectRollback()

	err := NewContactRepository(db).Create(context.Background(), &model.Contact{
		Uuid: "C_1", RequesterId: "U_B", RecipientId: "U_A", Status: model.ContactPending,
	})
	require.Error(t, err)
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLEmptyResultBecomesNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `user_info`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid"}))

	_, err := NewUserRepository(db).FindByUuid(context.Background(), "U_X")
	require.Error(t, err)
	assert.True(t, errorx.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOtherErrorsBecomeDBError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `group_info`")).
		WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})

	_, err := NewGroupRepository(db).FindByUuid(context.Background(), "G_X")
	require.Error(t, err)
	assert.Equal(t, errorx.CodeDBError, errorx.GetCode(err))
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%abc%", likePattern("abc"))
	assert.Equal(t, "%50!%!_off!!%", likePattern("50%_off!"))
}
