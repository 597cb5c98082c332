package employee

import (
	"context"
	"errors"
	"strings"
	"time"

	employeeerrors "hrms-lite/internal/employee/errors"
	"hrms-lite/internal/events"
	"hrms-lite/internal/messaging/kafka"
	"hrms-lite/internal/shared/cachekey"
	"hrms-lite/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, search string) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) (EmployeeResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the employee service. outbox and rdb are optional; when
// nil no events are queued and no cache is invalidated.
func NewService(
	db *gorm.DB,
	repo Repository,
	outbox kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outbox,
		rdb:    rdb,
		logger: l,
		now:    time.Now,
	}
}

func (s *service) Create(
	ctx context.Context,
	req CreateEmployeeRequest,
) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	fields, err := normalize(req.EmployeeID, req.FullName, req.Email, req.Department)
	if err != nil {
		s.logger.Warn("create employee invalid input", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("employee_code", fields.code),
		zap.String("email", fields.email),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return EmployeeResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := s.ensureUnique(ctx, qtx, fields, ""); err != nil {
		return EmployeeResponse{}, err
	}

	now := s.now().UTC()
	empl := &Employee{
		ID:           uuid.New(),
		EmployeeCode: fields.code,
		FullName:     fields.fullName,
		Email:        fields.email,
		Department:   fields.department,
		JoinDate:     time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}

	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueue(ctx, tx, events.EmployeeCreated, *empl); err != nil {
		s.logger.Error("create employee outbox persist failed",
			zap.String("employee_id", empl.ID.String()),
			zap.Error(err),
		)
		return EmployeeResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("create employee commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.invalidateDashboard(ctx)
	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context, search string) ([]EmployeeResponse, error) {
	s.logger.Debug("get all employees requested", zap.String("search", search))
	empls, err := s.repo.FindAll(ctx, search)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
	}
	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("get employee by id failed", zap.String("employee_id", id), zap.Error(err))
		}
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

func (s *service) Update(
	ctx context.Context,
	id string,
	req UpdateEmployeeRequest,
) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	fields, err := normalize(req.EmployeeID, req.FullName, req.Email, req.Department)
	if err != nil {
		return EmployeeResponse{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("update employee begin tx failed", zap.Error(tx.Error))
		return EmployeeResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	changed := fields
	if fields.code == empl.EmployeeCode {
		changed.code = ""
	}
	if fields.email == empl.Email {
		changed.email = ""
	}
	if err := s.ensureUnique(ctx, qtx, changed, id); err != nil {
		return EmployeeResponse{}, err
	}

	empl.EmployeeCode = fields.code
	empl.FullName = fields.fullName
	empl.Email = fields.email
	empl.Department = fields.department

	if err := qtx.Update(ctx, empl); err != nil {
		log.Error("update employee persist failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.invalidateDashboard(ctx)
	log.Info("update employee success", zap.String("employee_id", id))

	return mapToResponse(*empl), nil
}

// Delete removes the employee's attendance and then the employee in one
// transaction and returns the employee as it was.
func (s *service) Delete(ctx context.Context, id string) (EmployeeResponse, error) {
	s.logger.Debug("delete employee requested", zap.String("employee_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("delete employee begin tx failed", zap.Error(tx.Error))
		return EmployeeResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	removed, err := qtx.DeleteAttendance(ctx, id)
	if err != nil {
		s.logger.Error("delete employee attendance failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	empl, err := qtx.Delete(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueue(ctx, tx, events.EmployeeDeleted, *empl); err != nil {
		s.logger.Error("delete employee outbox persist failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("delete employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateDashboard(ctx)
	s.logger.Info("delete employee success",
		zap.String("employee_id", id),
		zap.Int64("attendance_removed", removed),
	)
	return mapToResponse(*empl), nil
}

// ensureUnique looks for other employees holding the code or email. Empty
// values are skipped. The unique indexes still guard concurrent writers.
func (s *service) ensureUnique(ctx context.Context, repo Repository, f employeeFields, excludeID string) error {
	if f.code != "" {
		_, err := repo.FindByCode(ctx, f.code, excludeID)
		switch {
		case err == nil:
			return employeeerrors.ErrEmployeeCodeAlreadyExists.Withf("Employee ID \"%s\" already exists", f.code)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.Error("lookup employee by code failed", zap.Error(err))
			return err
		}
	}

	if f.email != "" {
		_, err := repo.FindByEmail(ctx, f.email, excludeID)
		switch {
		case err == nil:
			return employeeerrors.ErrEmailAlreadyExists.Withf("Email \"%s\" is already registered", f.email)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.Error("lookup employee by email failed", zap.Error(err))
			return err
		}
	}

	return nil
}

func (s *service) enqueue(ctx context.Context, tx *gorm.DB, eventType string, empl Employee) error {
	if s.outbox == nil {
		return nil
	}
	rid := contextutil.GetRequestID(ctx)
	event, err := kafka.NewOutboxEvent(rid, "employee", empl.ID.String(), eventType, events.EmployeeLifecycleTopic,
		events.EmployeeLifecycleEvent{
			EventType:    eventType,
			RequestID:    rid,
			EmployeeID:   empl.ID.String(),
			EmployeeCode: empl.EmployeeCode,
			Department:   empl.Department,
			OccurredAt:   s.now().UTC(),
		})
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, event)
}

func (s *service) invalidateDashboard(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	for _, err := range []error{
		s.rdb.Incr(ctx, cachekey.DashboardVersion).Err(),
		s.rdb.Del(ctx, cachekey.DashboardSnapshot).Err(),
	} {
		if err != nil {
			s.logger.Error("failed to invalidate dashboard cache",
				zap.Error(err),
				zap.String("key", cachekey.DashboardSnapshot),
			)
		}
	}
}

type employeeFields struct {
	code       string
	fullName   string
	email      string
	department string
}

func normalize(code, fullName, email, department string) (employeeFields, error) {
	f := employeeFields{
		code:       strings.TrimSpace(code),
		fullName:   strings.TrimSpace(fullName),
		email:      strings.TrimSpace(email),
		department: strings.TrimSpace(department),
	}
	switch {
	case f.code == "":
		return f, employeeerrors.ErrMissingRequiredFields.Withf("Employee ID is required")
	case f.fullName == "":
		return f, employeeerrors.ErrMissingRequiredFields.Withf("Full Name is required")
	case f.email == "":
		return f, employeeerrors.ErrMissingRequiredFields.Withf("Valid email is required")
	case f.department == "":
		return f, employeeerrors.ErrMissingRequiredFields.Withf("Department is required")
	}
	return f, nil
}

func mapToResponse(empl Employee) EmployeeResponse {
	id := empl.ID.String()
	return EmployeeResponse{
		LegacyID:   id,
		ID:         id,
		EmployeeID: empl.EmployeeCode,
		FullName:   empl.FullName,
		Email:      empl.Email,
		Department: empl.Department,
		JoinDate:   empl.JoinDate.Format(dateLayout),
		CreatedAt:  empl.CreatedAt,
		UpdatedAt:  empl.UpdatedAt,
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
