package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"hrms-lite/internal/attendance"
	dashboarderrors "hrms-lite/internal/dashboard/errors"
	"hrms-lite/internal/shared/cachekey"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultDays = 7
	MaxDays     = 31

	recentLimit = 10
)

// RecentAttendance lists the newest attendance records.
type RecentAttendance interface {
	GetRecent(ctx context.Context, limit int) ([]attendance.AttendanceResponse, error)
}

//go:generate mockgen -source=dashboard_service.go -destination=mock/dashboard_service_mock.go -package=mock
type Service interface {
	Snapshot(ctx context.Context, days int) (SnapshotResponse, error)
	Warm(ctx context.Context) error
}

type service struct {
	repo   Repository
	recent RecentAttendance
	rdb    *redis.Client
	ttl    time.Duration
	sf     *singleflight.Group
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the dashboard. rdb may be nil, in which case every call
// computes a fresh snapshot.
func NewService(
	repo Repository,
	recent RecentAttendance,
	rdb *redis.Client,
	ttl time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		repo:   repo,
		recent: recent,
		rdb:    rdb,
		ttl:    ttl,
		sf:     &singleflight.Group{},
		logger: l,
		now:    time.Now,
	}
}

func (s *service) Snapshot(ctx context.Context, days int) (SnapshotResponse, error) {
	if days == 0 {
		days = DefaultDays
	}
	if days < 1 || days > MaxDays {
		return SnapshotResponse{}, dashboarderrors.ErrInvalidDays
	}

	today := s.today()
	field, cacheable := s.cacheField(ctx, today, days)

	if cacheable {
		cached, err := s.rdb.HGet(ctx, cachekey.DashboardSnapshot, field).Result()
		if err == nil {
			var resp SnapshotResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("dashboard cache read failed", zap.String("field", field), zap.Error(err))
		}
	}

	resp, err := s.build(ctx, field, cacheable, today, days)
	if err != nil {
		s.logger.Error("compute dashboard snapshot failed", zap.Int("days", days), zap.Error(err))
		return SnapshotResponse{}, err
	}
	return resp, nil
}

// Warm recomputes the default snapshot and overwrites the cached copy.
func (s *service) Warm(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	today := s.today()
	field, cacheable := s.cacheField(ctx, today, DefaultDays)
	if !cacheable {
		return errors.New("dashboard cache version unavailable")
	}

	if _, err := s.build(ctx, field, true, today, DefaultDays); err != nil {
		return err
	}

	s.logger.Info("dashboard snapshot warmed", zap.String("field", field))
	return nil
}

// cacheField names the snapshot slot for the current data version. A write
// bumps the version, so a snapshot computed from reads taken before that
// write is filed where no later reader looks.
func (s *service) cacheField(ctx context.Context, today time.Time, days int) (string, bool) {
	day := today.Format(dateLayout)
	if s.rdb == nil {
		return cachekey.DashboardField(0, day, days), false
	}

	version, err := s.rdb.Get(ctx, cachekey.DashboardVersion).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn("dashboard cache version read failed", zap.Error(err))
		return cachekey.DashboardField(0, day, days), false
	}
	return cachekey.DashboardField(version, day, days), true
}

// build computes the snapshot once per field across concurrent callers and
// stores it when the field is cacheable.
func (s *service) build(ctx context.Context, field string, cacheable bool, today time.Time, days int) (SnapshotResponse, error) {
	v, err, _ := s.sf.Do(field, func() (interface{}, error) {
		resp, err := s.compute(ctx, today, days)
		if err != nil {
			return nil, err
		}
		if cacheable {
			s.store(ctx, field, resp)
		}
		return resp, nil
	})
	if err != nil {
		return SnapshotResponse{}, err
	}
	return v.(SnapshotResponse), nil
}

func (s *service) store(ctx context.Context, field string, resp SnapshotResponse) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.HSet(ctx, cachekey.DashboardSnapshot, field, string(raw)).Err(); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("field", field), zap.Error(err))
		return
	}
	s.rdb.Expire(ctx, cachekey.DashboardSnapshot, s.ttl)
}

func (s *service) compute(ctx context.Context, today time.Time, days int) (SnapshotResponse, error) {
	from := today.AddDate(0, 0, -(days - 1))

	total, err := s.repo.CountEmployees(ctx)
	if err != nil {
		return SnapshotResponse{}, err
	}

	daily, err := s.repo.DailyCounts(ctx, from, today)
	if err != nil {
		return SnapshotResponse{}, err
	}

	dist, err := s.repo.StatusTotals(ctx)
	if err != nil {
		return SnapshotResponse{}, err
	}

	depts, err := s.repo.DepartmentCounts(ctx, from, today)
	if err != nil {
		return SnapshotResponse{}, err
	}

	recent, err := s.recent.GetRecent(ctx, recentLimit)
	if err != nil {
		return SnapshotResponse{}, err
	}

	trend := buildTrend(daily, from, days)
	last := trend[len(trend)-1]
	todayTotal := last.Present + last.Absent + last.Leave

	return SnapshotResponse{
		TotalEmployees: total,
		Days:           days,
		Today: TodayStats{
			Date:      last.Date,
			Present:   last.Present,
			Absent:    last.Absent,
			Leave:     last.Leave,
			Total:     todayTotal,
			NotMarked: max(total-todayTotal, 0),
		},
		Trend:              trend,
		StatusDistribution: dist,
		Departments:        departmentStats(depts, days),
		RecentAttendance:   recent,
		GeneratedAt:        s.now().UTC(),
	}, nil
}

func (s *service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// buildTrend returns one point per day from from, oldest first. Days with no
// rows are zero.
func buildTrend(daily []DailyCount, from time.Time, days int) []TrendPoint {
	byDate := make(map[string]DailyCount, len(daily))
	for _, d := range daily {
		byDate[d.Date.Format(dateLayout)] = d
	}

	trend := make([]TrendPoint, days)
	for i := range trend {
		key := from.AddDate(0, 0, i).Format(dateLayout)
		d := byDate[key]
		trend[i] = TrendPoint{Date: key, Present: d.Present, Absent: d.Absent, Leave: d.Leave}
	}
	return trend
}

func departmentStats(rows []DepartmentCount, days int) []DepartmentStat {
	stats := make([]DepartmentStat, len(rows))
	for i, r := range rows {
		var rate float64
		if r.Employees > 0 {
			rate = float64(r.Present) / float64(r.Employees*int64(days)) * 100
			rate = math.Round(rate*10) / 10
		}
		stats[i] = DepartmentStat{
			Department:     r.Department,
			Employees:      r.Employees,
			Present:        r.Present,
			AttendanceRate: rate,
		}
	}
	return stats
}
