package dashboard

import (
	"hrms-lite/internal/attendance"
	"time"
)

type TodayStats struct {
	Date      string `json:"date"`
	Present   int64  `json:"present"`
	Absent    int64  `json:"absent"`
	Leave     int64  `json:"leave"`
	Total     int64  `json:"total"`
	NotMarked int64  `json:"notMarked"`
}

type TrendPoint struct {
	Date    string `json:"date"`
	Present int64  `json:"present"`
	Absent  int64  `json:"absent"`
	Leave   int64  `json:"leave"`
}

type StatusDistribution struct {
	Present int64 `json:"present"`
	Absent  int64 `json:"absent"`
	Leave   int64 `json:"leave"`
}

type DepartmentStat struct {
	Department     string  `json:"department"`
	Employees      int64   `json:"employees"`
	Present        int64   `json:"present"`
	AttendanceRate float64 `json:"attendanceRate"`
}

type SnapshotResponse struct {
	TotalEmployees     int64                           `json:"totalEmployees"`
	Days               int                             `json:"days"`
	Today              TodayStats                      `json:"today"`
	Trend              []TrendPoint                    `json:"trend"`
	StatusDistribution StatusDistribution              `json:"statusDistribution"`
	Departments        []DepartmentStat                `json:"departments"`
	RecentAttendance   []attendance.AttendanceResponse `json:"recentAttendance"`
	GeneratedAt        time.Time                       `json:"generatedAt"`
}
