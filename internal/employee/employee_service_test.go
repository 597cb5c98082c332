package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"hrms-lite/internal/employee"
	employeeerrors "hrms-lite/internal/employee/errors"
	"hrms-lite/internal/events"
	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/cachekey"
	"hrms-lite/internal/shared/contextutil"

	employeeMock "hrms-lite/internal/employee/mock"
	"hrms-lite/internal/messaging/kafka"
	kafkaMock "hrms-lite/internal/messaging/kafka/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   employee.Service
	repo      *employeeMock.MockRepository
	redismock redismock.ClientMock
	outbox    *kafkaMock.MockOutboxRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	dbRedis, redisMock := redismock.NewClientMock()
	repo := employeeMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	svc := employee.NewService(gdb, repo, outboxRepo, dbRedis)

	t.Cleanup(func() {
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
		db.Close()
	})

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		outbox:    outboxRepo,
		redismock: redisMock,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func validCreateRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		EmployeeID: "EMP001",
		FullName:   "Jane Doe",
		Email:      "jane@x.com",
		Department: "Engineering",
	}
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByCode(ctx, "EMP001", "").Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().FindByEmail(ctx, "jane@x.com", "").Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, e *employee.Employee) error {
				assert.NotEqual(t, uuid.Nil, e.ID)
				assert.Equal(t, "EMP001", e.EmployeeCode)
				assert.Equal(t, "Engineering", e.Department)
				assert.False(t, e.JoinDate.IsZero())
				return nil
			})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.redismock.ExpectIncr(cachekey.DashboardVersion).SetVal(1)
		deps.redismock.ExpectDel(cachekey.DashboardSnapshot).SetVal(1)

		resp, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "EMP001", resp.EmployeeID)
		assert.Equal(t, resp.ID, resp.LegacyID)
		assert.Len(t, resp.JoinDate, len("2006-01-02"))
	})

	t.Run("success - trims fields and queues lifecycle event with request id", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := employee.CreateEmployeeRequest{
			EmployeeID: "  EMP002 ",
			FullName:   " John ",
			Email:      " john@x.com ",
			Department: " Sales ",
		}
		reqCtx := contextutil.WithRequestID(ctx, "req-123")

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByCode(reqCtx, "EMP002", "").Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().FindByEmail(reqCtx, "john@x.com", "").Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Create(reqCtx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(reqCtx, gomock.Any()).
			DoAndReturn(func(_ context.Context, ev kafka.OutboxEvent) error {
				assert.Equal(t, "req-123", ev.RequestID)
				assert.Equal(t, events.EmployeeLifecycleTopic, ev.Topic)
				assert.Equal(t, events.EmployeeCreated, ev.EventType)

				var payload events.EmployeeLifecycleEvent
				assert.NoError(t, json.Unmarshal(ev.Payload, &payload))
				assert.Equal(t, "EMP002", payload.EmployeeCode)
				assert.Equal(t, "Sales", payload.Department)
				return nil
			})
		deps.redismock.ExpectIncr(cachekey.DashboardVersion).SetVal(1)
		deps.redismock.ExpectDel(cachekey.DashboardSnapshot).SetVal(1)

		resp, err := deps.service.Create(reqCtx, req)

		assert.NoError(t, err)
		assert.Equal(t, "John", resp.FullName)
		assert.Equal(t, "john@x.com", resp.Email)
	})

	t.Run("missing field after trim", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()
		req.Department = "   "

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, employeeerrors.ErrMissingRequiredFields)
		assert.Equal(t, "Department is required", apperror.ToHTTP(err).Message)
	})

	t.Run("duplicate employee code", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByCode(ctx, "EMP001", "").Return(&employee.Employee{}, nil)

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeCodeAlreadyExists)
		assert.Contains(t, err.Error(), "EMP001")
	})

	t.Run("duplicate email", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByCode(ctx, "EMP001", "").Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().FindByEmail(ctx, "jane@x.com", "").Return(&employee.Employee{}, nil)

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, employeeerrors.ErrEmailAlreadyExists)
	})

	t.Run("unique violation raced past pre-check", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByCode(ctx, "EMP001", "").Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().FindByEmail(ctx, "jane@x.com", "").Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_employees_email"})

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, employeeerrors.ErrEmailAlreadyExists)
	})

	t.Run("outbox failure rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByCode(ctx, "EMP001", "").Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().FindByEmail(ctx, "jane@x.com", "").Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("outbox down"))

		_, err := deps.service.Create(ctx, req)

		assert.EqualError(t, err, "outbox down")
	})
}

func TestEmployeeService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("returns empty list", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindAll(ctx, "").Return(nil, nil)

		resp, err := deps.service.GetAll(ctx, "")

		assert.NoError(t, err)
		assert.NotNil(t, resp)
		assert.Empty(t, resp)
	})

	t.Run("passes search through", func(t *testing.T) {
		deps := setupServiceTest(t)
		rows := []employee.Employee{
			{ID: uuid.New(), EmployeeCode: "EMP001", FullName: "Jane"},
			{ID: uuid.New(), EmployeeCode: "EMP002", FullName: "Janet"},
		}
		deps.repo.EXPECT().FindAll(ctx, "jan").Return(rows, nil)

		resp, err := deps.service.GetAll(ctx, "jan")

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
		assert.Equal(t, "EMP002", resp[1].EmployeeID)
	})

	t.Run("repository error", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindAll(ctx, "").Return(nil, errors.New("db down"))

		_, err := deps.service.GetAll(ctx, "")

		assert.Error(t, err)
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(&employee.Employee{ID: id, EmployeeCode: "EMP001"}, nil)

		resp, err := deps.service.GetByID(ctx, id.String())

		assert.NoError(t, err)
		assert.Equal(t, id.String(), resp.ID)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.NewString()
		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(ctx, id)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByID(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	existing := func() *employee.Employee {
		return &employee.Employee{
			ID:           id,
			EmployeeCode: "EMP001",
			FullName:     "Jane Doe",
			Email:        "jane@x.com",
			Department:   "Engineering",
		}
	}

	t.Run("unchanged code and email skip uniqueness lookups", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := employee.UpdateEmployeeRequest{
			EmployeeID: "EMP001",
			FullName:   "Jane Smith",
			Email:      "jane@x.com",
			Department: "Product",
		}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(existing(), nil)
		deps.repo.EXPECT().
			Update(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Equal(t, "Jane Smith", e.FullName)
				assert.Equal(t, "Product", e.Department)
				return nil
			})
		deps.redismock.ExpectIncr(cachekey.DashboardVersion).SetVal(1)
		deps.redismock.ExpectDel(cachekey.DashboardSnapshot).SetVal(1)

		resp, err := deps.service.Update(ctx, id.String(), req)

		assert.NoError(t, err)
		assert.Equal(t, "Jane Smith", resp.FullName)
	})

	t.Run("new email already used by another employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := employee.UpdateEmployeeRequest{
			EmployeeID: "EMP001",
			FullName:   "Jane Doe",
			Email:      "taken@x.com",
			Department: "Engineering",
		}

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(existing(), nil)
		deps.repo.EXPECT().FindByEmail(ctx, "taken@x.com", id.String()).Return(&employee.Employee{}, nil)

		_, err := deps.service.Update(ctx, id.String(), req)

		assert.ErrorIs(t, err, employeeerrors.ErrEmailAlreadyExists)
	})

	t.Run("new code already used by another employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := employee.UpdateEmployeeRequest{
			EmployeeID: "EMP009",
			FullName:   "Jane Doe",
			Email:      "jane@x.com",
			Department: "Engineering",
		}

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(existing(), nil)
		deps.repo.EXPECT().FindByCode(ctx, "EMP009", id.String()).Return(&employee.Employee{}, nil)

		_, err := deps.service.Update(ctx, id.String(), req)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeCodeAlreadyExists)
		assert.Equal(t, `Employee ID "EMP009" already exists`, apperror.ToHTTP(err).Message)
	})

	t.Run("employee deleted before the write", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := employee.UpdateEmployeeRequest{
			EmployeeID: "EMP001",
			FullName:   "Jane Smith",
			Email:      "jane@x.com",
			Department: "Engineering",
		}

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(existing(), nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, id.String(), req)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := employee.UpdateEmployeeRequest(validCreateRequest())

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, id.String(), req)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("removes attendance then employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		removed := &employee.Employee{ID: id, EmployeeCode: "EMP001", FullName: "Jane Doe"}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		gomock.InOrder(
			deps.repo.EXPECT().DeleteAttendance(ctx, id.String()).Return(int64(3), nil),
			deps.repo.EXPECT().Delete(ctx, id.String()).Return(removed, nil),
		)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, ev kafka.OutboxEvent) error {
				assert.Equal(t, events.EmployeeDeleted, ev.EventType)
				assert.Equal(t, id.String(), ev.AggregateID)
				return nil
			})
		deps.redismock.ExpectIncr(cachekey.DashboardVersion).SetVal(1)
		deps.redismock.ExpectDel(cachekey.DashboardSnapshot).SetVal(1)

		resp, err := deps.service.Delete(ctx, id.String())

		assert.NoError(t, err)
		assert.Equal(t, "EMP001", resp.EmployeeID)
		assert.Equal(t, "Jane Doe", resp.FullName)
	})

	t.Run("not found rolls back attendance removal", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().DeleteAttendance(ctx, id.String()).Return(int64(0), nil)
		deps.repo.EXPECT().Delete(ctx, id.String()).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Delete(ctx, id.String())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Delete(ctx, "123")

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}
