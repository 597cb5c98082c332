package attendance_test

import (
	"encoding/json"
	"errors"
	"hrms-lite/internal/attendance"
	attendanceerrors "hrms-lite/internal/attendance/errors"
	attendanceMock "hrms-lite/internal/attendance/mock"
	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/response"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupHandlerTest(t *testing.T) (*gin.Engine, *attendanceMock.MockService) {
	gin.SetMode(gin.TestMode)
	apperror.Init()

	ctrl := gomock.NewController(t)
	svc := attendanceMock.NewMockService(ctrl)

	r := gin.New()
	attendance.RegisterRoutes(r.Group("/api"), attendance.NewHandler(svc))
	return r, svc
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) response.ApiEnvelope {
	t.Helper()
	var env response.ApiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAttendanceHandler_Create(t *testing.T) {
	empID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		r, svc := setupHandlerTest(t)
		svc.EXPECT().
			Create(gomock.Any(), attendance.CreateAttendanceRequest{
				EmployeeID: empID,
				Date:       "2024-03-01",
				Status:     "Present",
			}).
			Return(attendance.AttendanceResponse{
				ID:     uuid.NewString(),
				Date:   "2024-03-01",
				Status: "Present",
				Employee: &attendance.EmployeeRefResponse{
					ID:         empID,
					EmployeeID: "EMP001",
				},
			}, nil)

		body := `{"employeeId":"` + empID + `","date":"2024-03-01","status":"Present"}`
		req := httptest.NewRequest(http.MethodPost, "/api/attendance", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := envelope(t, w)
		assert.True(t, env.Success)
		assert.Equal(t, "Attendance recorded successfully", env.Message)
		assert.Contains(t, w.Body.String(), `"employeeId":{`)
	})

	t.Run("status outside the allowed set", func(t *testing.T) {
		r, _ := setupHandlerTest(t)

		body := `{"employeeId":"` + empID + `","date":"2024-03-01","status":"Late"}`
		req := httptest.NewRequest(http.MethodPost, "/api/attendance", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := envelope(t, w)
		assert.Equal(t, apperror.CodeValidation, env.Code)
		assert.Equal(t, "Status must be Present, Absent, or Leave", env.Message)
		assert.Equal(t, []any{"Status must be Present, Absent, or Leave"}, env.Errors)
	})

	t.Run("missing fields", func(t *testing.T) {
		r, _ := setupHandlerTest(t)

		req := httptest.NewRequest(http.MethodPost, "/api/attendance", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := envelope(t, w)
		assert.ElementsMatch(t,
			[]any{"Employee ID is required", "Valid date is required", "Status is required"},
			env.Errors,
		)
	})

	t.Run("duplicate day", func(t *testing.T) {
		r, svc := setupHandlerTest(t)
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(attendance.AttendanceResponse{}, attendanceerrors.ErrAttendanceAlreadyExists)

		body := `{"employeeId":"` + empID + `","date":"2024-03-01","status":"Absent"}`
		req := httptest.NewRequest(http.MethodPost, "/api/attendance", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := envelope(t, w)
		assert.Equal(t, apperror.CodeConflict, env.Code)
		assert.Equal(t, "Attendance record already exists for this date", env.Message)
	})

	t.Run("unknown employee", func(t *testing.T) {
		r, svc := setupHandlerTest(t)
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(attendance.AttendanceResponse{}, attendanceerrors.ErrEmployeeNotFound)

		body := `{"employeeId":"` + empID + `","date":"2024-03-01","status":"Absent"}`
		req := httptest.NewRequest(http.MethodPost, "/api/attendance", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Employee not found", envelope(t, w).Message)
	})
}

func TestAttendanceHandler_Lists(t *testing.T) {
	t.Run("date filter is forwarded", func(t *testing.T) {
		r, svc := setupHandlerTest(t)
		svc.EXPECT().GetAll(gomock.Any(), "2024-03-01").Return([]attendance.AttendanceResponse{}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/attendance?date=2024-03-01", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
	})

	t.Run("by employee", func(t *testing.T) {
		r, svc := setupHandlerTest(t)
		empID := uuid.NewString()
		svc.EXPECT().GetByEmployee(gomock.Any(), empID).Return([]attendance.AttendanceResponse{{Status: "Present"}}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/attendance/employee/"+empID, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"Present"`)
	})

	t.Run("summary", func(t *testing.T) {
		r, svc := setupHandlerTest(t)
		empID := uuid.NewString()
		svc.EXPECT().Summary(gomock.Any(), empID).Return(attendance.SummaryResponse{
			TotalPresent: 2,
			TotalAbsent:  1,
			TotalRecords: 3,
		}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/attendance/summary/"+empID, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"totalRecords":3`)
		assert.Contains(t, w.Body.String(), `"totalLeave":0`)
	})

	t.Run("summary for unknown employee", func(t *testing.T) {
		r, svc := setupHandlerTest(t)
		svc.EXPECT().Summary(gomock.Any(), "missing").Return(attendance.SummaryResponse{}, attendanceerrors.ErrEmployeeNotFound)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/attendance/summary/missing", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAttendanceHandler_UpdateDelete(t *testing.T) {
	id := uuid.NewString()

	t.Run("update", func(t *testing.T) {
		r, svc := setupHandlerTest(t)
		svc.EXPECT().Update(gomock.Any(), id, gomock.Any()).Return(attendance.AttendanceResponse{ID: id, Status: "Leave"}, nil)

		body := `{"employeeId":"` + uuid.NewString() + `","date":"2024-03-01","status":"Leave"}`
		req := httptest.NewRequest(http.MethodPut, "/api/attendance/"+id, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Attendance updated successfully", envelope(t, w).Message)
	})

	t.Run("delete", func(t *testing.T) {
		r, svc := setupHandlerTest(t)
		svc.EXPECT().Delete(gomock.Any(), id).Return(attendance.AttendanceResponse{ID: id}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/attendance/"+id, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Attendance record deleted successfully", envelope(t, w).Message)
	})

	t.Run("delete missing record", func(t *testing.T) {
		r, svc := setupHandlerTest(t)
		svc.EXPECT().Delete(gomock.Any(), id).Return(attendance.AttendanceResponse{}, attendanceerrors.ErrAttendanceNotFound)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/attendance/"+id, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Attendance record not found", envelope(t, w).Message)
	})

	t.Run("internal error", func(t *testing.T) {
		r, svc := setupHandlerTest(t)
		svc.EXPECT().Delete(gomock.Any(), id).Return(attendance.AttendanceResponse{}, errors.New("connection reset"))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/attendance/"+id, nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", envelope(t, w).Message)
	})
}
