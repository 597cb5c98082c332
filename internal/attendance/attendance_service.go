package attendance

import (
	"context"
	"errors"
	"strings"
	"time"

	attendanceerrors "hrms-lite/internal/attendance/errors"
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

// Layouts accepted for the "date" field, most specific first. Only the
// calendar date as written is kept.
var dateInputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	dateLayout,
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error)
	GetAll(ctx context.Context, date string) ([]AttendanceResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]AttendanceResponse, error)
	GetRecent(ctx context.Context, limit int) ([]AttendanceResponse, error)
	Update(ctx context.Context, id string, req UpdateAttendanceRequest) (AttendanceResponse, error)
	Delete(ctx context.Context, id string) (AttendanceResponse, error)
	Summary(ctx context.Context, employeeID string) (SummaryResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewService(
	db *gorm.DB,
	repo Repository,
	outbox kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{db: db, repo: repo, outbox: outbox, rdb: rdb, logger: l, now: time.Now}
}

func (s *service) Create(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	date, err := parseDate(req.Date)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if err := validateStatus(req.Status); err != nil {
		return AttendanceResponse{}, err
	}
	employeeID, err := uuid.Parse(strings.TrimSpace(req.EmployeeID))
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrEmployeeNotFound
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("create attendance begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return AttendanceResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindEmployee(ctx, employeeID.String()); err != nil {
		return AttendanceResponse{}, mapEmployeeLookupError(err)
	}

	if err := s.ensureNoDuplicate(ctx, qtx, employeeID.String(), date, ""); err != nil {
		return AttendanceResponse{}, err
	}

	row := &Attendance{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Date:       date,
		Status:     req.Status,
		Remarks:    req.Remarks,
	}
	if err := qtx.Create(ctx, row); err != nil {
		s.logger.Error("create attendance persist failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	// Embed the employee as it is now, read inside the same transaction.
	empl, err := qtx.FindEmployee(ctx, employeeID.String())
	if err != nil {
		return AttendanceResponse{}, mapEmployeeLookupError(err)
	}

	if err := s.enqueue(ctx, tx, events.AttendanceRecorded, *row); err != nil {
		s.logger.Error("create attendance outbox persist failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("create attendance commit failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	s.invalidateDashboard(ctx)
	s.logger.Info("create attendance success",
		zap.String("request_id", rid),
		zap.String("attendance_id", row.ID.String()),
		zap.String("employee_id", employeeID.String()),
		zap.String("date", date.Format(dateLayout)),
	)

	return mapToResponse(Record{Attendance: *row, Employee: *empl}), nil
}

func (s *service) GetAll(ctx context.Context, date string) ([]AttendanceResponse, error) {
	var filter *time.Time
	if date = strings.TrimSpace(date); date != "" {
		d, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		filter = &d
	}

	rows, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get all attendance failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(rows), nil
}

// GetByEmployee lists an employee's records. An unknown employee simply has
// no records.
func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]AttendanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return []AttendanceResponse{}, nil
	}

	rows, err := s.repo.FindAllByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("get attendance by employee failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetRecent(ctx context.Context, limit int) ([]AttendanceResponse, error) {
	rows, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(rows), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateAttendanceRequest) (AttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	date, err := parseDate(req.Date)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if err := validateStatus(req.Status); err != nil {
		return AttendanceResponse{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAttendanceNotFound
	}
	employeeID, err := uuid.Parse(strings.TrimSpace(req.EmployeeID))
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrEmployeeNotFound
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("update attendance begin tx failed", zap.Error(tx.Error))
		return AttendanceResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindEmployee(ctx, employeeID.String()); err != nil {
		return AttendanceResponse{}, mapEmployeeLookupError(err)
	}

	row, err := qtx.FindByID(ctx, id)
	if err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	if err := s.ensureNoDuplicate(ctx, qtx, employeeID.String(), date, id); err != nil {
		return AttendanceResponse{}, err
	}

	row.EmployeeID = employeeID
	row.Date = date
	row.Status = req.Status
	row.Remarks = req.Remarks

	if err := qtx.Update(ctx, row); err != nil {
		log.Error("update attendance persist failed", zap.String("attendance_id", id), zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	empl, err := qtx.FindEmployee(ctx, employeeID.String())
	if err != nil {
		return AttendanceResponse{}, mapEmployeeLookupError(err)
	}

	if err := s.enqueue(ctx, tx, events.AttendanceUpdated, *row); err != nil {
		log.Error("update attendance outbox persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("update attendance commit failed", zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	s.invalidateDashboard(ctx)
	log.Info("update attendance success", zap.String("attendance_id", id))

	return mapToResponse(Record{Attendance: *row, Employee: *empl}), nil
}

func (s *service) Delete(ctx context.Context, id string) (AttendanceResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAttendanceNotFound
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("delete attendance begin tx failed", zap.Error(tx.Error))
		return AttendanceResponse{}, tx.Error
	}
	defer tx.Rollback()

	rec, err := s.repo.WithTx(tx).Delete(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("delete attendance failed", zap.String("attendance_id", id), zap.Error(err))
		}
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueue(ctx, tx, events.AttendanceDeleted, rec.Attendance); err != nil {
		s.logger.Error("delete attendance outbox persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("delete attendance commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	s.invalidateDashboard(ctx)
	s.logger.Info("delete attendance success", zap.String("attendance_id", id))

	return mapToResponse(*rec), nil
}

func (s *service) Summary(ctx context.Context, employeeID string) (SummaryResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return SummaryResponse{}, attendanceerrors.ErrEmployeeNotFound
	}

	empl, err := s.repo.FindEmployee(ctx, employeeID)
	if err != nil {
		return SummaryResponse{}, mapEmployeeLookupError(err)
	}

	counts, err := s.repo.CountByStatus(ctx, employeeID)
	if err != nil {
		s.logger.Error("attendance summary failed", zap.String("employee_id", employeeID), zap.Error(err))
		return SummaryResponse{}, mapRepositoryError(err)
	}

	return SummaryResponse{
		Employee:     mapEmployeeRef(*empl),
		TotalPresent: counts.Present,
		TotalAbsent:  counts.Absent,
		TotalLeave:   counts.Leave,
		TotalRecords: counts.Total,
	}, nil
}

func (s *service) ensureNoDuplicate(ctx context.Context, repo Repository, employeeID string, date time.Time, excludeID string) error {
	_, err := repo.FindByEmployeeAndDate(ctx, employeeID, date, excludeID)
	switch {
	case err == nil:
		return attendanceerrors.ErrAttendanceAlreadyExists
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		s.logger.Error("lookup attendance by employee and date failed", zap.Error(err))
		return err
	}
}

func (s *service) enqueue(ctx context.Context, tx *gorm.DB, eventType string, a Attendance) error {
	if s.outbox == nil {
		return nil
	}
	rid := contextutil.GetRequestID(ctx)
	event, err := kafka.NewOutboxEvent(rid, "attendance", a.ID.String(), eventType, events.AttendanceTopic,
		events.AttendanceChangedEvent{
			EventType:    eventType,
			RequestID:    rid,
			AttendanceID: a.ID.String(),
			EmployeeID:   a.EmployeeID.String(),
			Date:         a.Date.Format(dateLayout),
			Status:       a.Status,
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

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateInputLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, attendanceerrors.ErrInvalidDate
}

func validateStatus(status string) error {
	switch status {
	case StatusPresent, StatusAbsent, StatusLeave:
		return nil
	default:
		return attendanceerrors.ErrInvalidStatus
	}
}

func mapEmployeeRef(e EmployeeRef) EmployeeRefResponse {
	id := e.ID.String()
	return EmployeeRefResponse{
		LegacyID:   id,
		ID:         id,
		EmployeeID: e.EmployeeCode,
		FullName:   e.FullName,
		Email:      e.Email,
		Department: e.Department,
	}
}

func mapToResponse(r Record) AttendanceResponse {
	id := r.ID.String()
	resp := AttendanceResponse{
		LegacyID:  id,
		ID:        id,
		Date:      r.Date.Format(dateLayout),
		Status:    r.Status,
		Remarks:   r.Remarks,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Employee.ID != uuid.Nil {
		empl := mapEmployeeRef(r.Employee)
		resp.Employee = &empl
	}
	return resp
}

func mapToListResponse(rows []Record) []AttendanceResponse {
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res
}
