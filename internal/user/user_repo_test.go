package user

import (
	"context"
	"testing"

	"go-leave/internal/shared/request"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGormMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gdb, mock
}

func TestRepository_List(t *testing.T) {
	gdb, mock := newGormMock(t)
	deptID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE role = \$1`).
		WithArgs("HR").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE role = \$1 ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "role", "department_id"}).
			AddRow(userID.String(), "hr@corp.io", "Hana", "Roe", "HR", deptID.String()))
	mock.ExpectQuery(`SELECT \* FROM "departments" WHERE "departments"."id" = \$1`).
		WithArgs(deptID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(deptID.String(), "People"))

	users, total, err := NewRepository(gdb).List(context.Background(), ListFilter{Role: "HR"}, request.Page{Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].Department)
	assert.Equal(t, "People", users[0].Department.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkOTPUsed_AlreadyConsumed(t *testing.T) {
	gdb, mock := newGormMock(t)

	mock.ExpectExec(`UPDATE "otps" SET "is_used"=\$1 WHERE id = \$2 AND is_used = FALSE`).
		WithArgs(true, "otp-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewRepository(gdb).MarkOTPUsed(context.Background(), "otp-1")

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
