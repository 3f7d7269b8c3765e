package booking

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roombook/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(f *serviceFixture, actorID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actorID != 0 {
			c.Set("user_id", actorID)
		}
		c.Next()
	})
	NewHandler(f.service).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBookingEndpoint(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(t, now)

	f.rooms.On("GetByID", mock.Anything, int64(7)).Return(activeRoom(7), nil)
	f.orgs.On("GetByID", mock.Anything, int64(3)).Return(activeOrg(3), nil)
	f.perms.On("CanBook", mock.Anything, int64(11), int64(7)).Return(true, nil)
	f.bookings.On("IsBooked", mock.Anything, int64(7), mock.Anything, mock.Anything).Return(false, nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)

	r := newTestRouter(f, 11)
	w := postJSON(t, r, "/api/v1/bookings", gin.H{
		"title":           "Rehearsal",
		"room_id":         7,
		"organization_id": 3,
		"user_id":         11,
		"start_time":      "2024-06-03T09:00:00Z",
		"end_time":        "2024-06-03T10:30:00Z",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Booking BookingDetails `json:"booking"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "pending", body.Data.Booking.Status)
	assert.Equal(t, "2024-06-03", body.Data.Booking.StartDate)
}

func TestCreateBookingEndpointRejectsBadBody(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(t, now)

	r := newTestRouter(f, 11)
	w := postJSON(t, r, "/api/v1/bookings", gin.H{"title": ""})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestCreateBookingEndpointConflictIs409(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(t, now)

	f.rooms.On("GetByID", mock.Anything, int64(7)).Return(activeRoom(7), nil)
	f.orgs.On("GetByID", mock.Anything, int64(3)).Return(activeOrg(3), nil)
	f.perms.On("CanBook", mock.Anything, int64(11), int64(7)).Return(true, nil)
	f.bookings.On("IsBooked", mock.Anything, int64(7), mock.Anything, mock.Anything).Return(true, nil)

	r := newTestRouter(f, 11)
	w := postJSON(t, r, "/api/v1/bookings", gin.H{
		"title":           "Rehearsal",
		"room_id":         7,
		"organization_id": 3,
		"user_id":         11,
		"start_time":      "2024-06-03T09:00:00Z",
		"end_time":        "2024-06-03T10:30:00Z",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "BOOKING_CONFLICT")
}

func TestPreviewRecurringEndpoint(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(t, now)

	f.rooms.On("GetByID", mock.Anything, int64(7)).Return(activeRoom(7), nil)
	f.orgs.On("GetByID", mock.Anything, int64(3)).Return(activeOrg(3), nil)
	f.bookings.On("IsBooked", mock.Anything, int64(7), mock.Anything, mock.Anything).Return(false, nil)

	r := newTestRouter(f, 11)
	w := postJSON(t, r, "/api/v1/recurring-bookings/preview", gin.H{
		"title":           "Band practice",
		"room_id":         7,
		"organization_id": 3,
		"user_id":         11,
		"pattern": gin.H{
			"frequency":   "weekly",
			"start_date":  "2024-06-03",
			"start_clock": "09:00",
			"end_clock":   "10:30",
			"timezone":    "UTC",
			"end":         "after_count",
			"count":       4,
			"weekdays":    []string{"MO"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Preview RecurringPreview `json:"preview"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Data.Preview.Bookable)
	assert.Len(t, body.Data.Preview.Occurrences, 4)
	assert.Equal(t, "DTSTART:20240603T090000Z\nRRULE:FREQ=WEEKLY;COUNT=4;BYDAY=MO", body.Data.Preview.RuleString)
	f.rules.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecurringValidationErrorCarriesField(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(t, now)

	f.rooms.On("GetByID", mock.Anything, int64(7)).Return(activeRoom(7), nil)
	f.orgs.On("GetByID", mock.Anything, int64(3)).Return(activeOrg(3), nil)

	r := newTestRouter(f, 11)
	w := postJSON(t, r, "/api/v1/recurring-bookings/preview", gin.H{
		"title":           "Band practice",
		"room_id":         7,
		"organization_id": 3,
		"user_id":         11,
		"pattern": gin.H{
			"frequency":   "weekly",
			"start_date":  "2024-06-03",
			"start_clock": "10:00",
			"end_clock":   "09:00",
			"timezone":    "UTC",
			"weekdays":    []string{"MO"},
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "end_clock")
}

func TestDeleteRecurringEndpointRequiresDecouple(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newServiceFixture(t, now)

	f.rules.On("GetByID", mock.Anything, int64(42)).Return(&domain.RecurrenceRule{
		ID: 42, OrganizationID: 3,
	}, nil)
	f.perms.On("CanManage", mock.Anything, int64(99), int64(3)).Return(true, nil)

	r := newTestRouter(f, 99)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/recurring-bookings/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "decouple")
}
