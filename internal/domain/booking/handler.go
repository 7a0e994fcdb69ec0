package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichq/clinic/internal/domain/appointment"
	"github.com/clinichq/clinic/internal/domain/schedule"
	"github.com/clinichq/clinic/internal/platform/auth"
	"github.com/clinichq/clinic/pkg/timeofday"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.RoleDoctor, auth.RoleReceptionist))
	readGroup.GET("/doctors/:id/availability", h.GetAvailability)
	readGroup.GET("/doctors/:id/slots", h.GetSlots)
	readGroup.GET("/doctors/:id/day", h.GetDayView)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleDoctor, auth.RoleReceptionist))
	writeGroup.POST("/bookings", h.Book)
	writeGroup.PUT("/bookings/:id", h.Rebook)
	writeGroup.POST("/bookings/walk-in", h.BookWalkIn)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// decisionResponse maps a Decision to an HTTP response: accepted bookings
// are 201, rejections 409 with the reason in the body, storage timeouts
// 503 so the client knows to retry.
func decisionResponse(c echo.Context, d *Decision) error {
	switch d.Outcome {
	case OutcomeAccepted:
		return c.JSON(http.StatusCreated, d)
	case OutcomeUnavailable:
		return c.JSON(http.StatusServiceUnavailable, d)
	default:
		return c.JSON(http.StatusConflict, d)
	}
}

func bookingError(err error) error {
	switch {
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, appointment.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case isTimeout(err):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage timeout, retry the request")
	case errors.Is(err, schedule.ErrDataIntegrity):
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) GetAvailability(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	av, err := h.svc.ResolveAvailability(c.Request().Context(), doctorID, date)
	if err != nil {
		return bookingError(err)
	}
	return c.JSON(http.StatusOK, av)
}

func (h *Handler) GetSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	granularity := 0
	if g := c.QueryParam("granularity"); g != "" {
		granularity, err = strconv.Atoi(g)
		if err != nil || granularity <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid granularity")
		}
	}

	slots, err := h.svc.Slots(c.Request().Context(), doctorID, date, granularity)
	if err != nil {
		return bookingError(err)
	}
	if slots == nil {
		slots = []timeofday.TimeOfDay{}
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) GetDayView(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	view, err := h.svc.GetDayView(c.Request().Context(), doctorID, date)
	if err != nil {
		return bookingError(err)
	}
	return c.JSON(http.StatusOK, view)
}

type bookRequestBody struct {
	DoctorID        uuid.UUID `json:"doctor_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           *string   `json:"notes,omitempty"`
}

func (b *bookRequestBody) toRequest(createdBy string) (BookRequest, error) {
	var req BookRequest
	if b.DoctorID == uuid.Nil {
		return req, errors.New("doctor_id is required")
	}
	if b.PatientID == uuid.Nil {
		return req, errors.New("patient_id is required")
	}
	date, err := parseDate(b.Date)
	if err != nil {
		return req, errors.New("invalid date, expected YYYY-MM-DD")
	}
	start, err := timeofday.Parse(b.StartTime)
	if err != nil {
		return req, errors.New("invalid start_time, expected HH:MM")
	}
	return BookRequest{
		DoctorID:        b.DoctorID,
		PatientID:       b.PatientID,
		Date:            date,
		StartTime:       start,
		DurationMinutes: b.DurationMinutes,
		Notes:           b.Notes,
		CreatedBy:       createdBy,
	}, nil
}

func (h *Handler) Book(c echo.Context) error {
	var body bookRequestBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req, err := body.toRequest(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	decision, err := h.svc.AttemptBook(c.Request().Context(), req)
	if err != nil {
		return bookingError(err)
	}
	return decisionResponse(c, decision)
}

func (h *Handler) Rebook(c echo.Context) error {
	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	var body bookRequestBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req, err := body.toRequest(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.ExcludeAppointmentID = &apptID

	decision, err := h.svc.AttemptBook(c.Request().Context(), req)
	if err != nil {
		return bookingError(err)
	}
	if decision.Outcome == OutcomeAccepted {
		return c.JSON(http.StatusOK, decision)
	}
	return decisionResponse(c, decision)
}

type walkInBody struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	Notes     *string   `json:"notes,omitempty"`
}

func (h *Handler) BookWalkIn(c echo.Context) error {
	var body walkInBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.DoctorID == uuid.Nil || body.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id and patient_id are required")
	}

	decision, err := h.svc.BookWalkIn(c.Request().Context(), body.DoctorID, body.PatientID,
		time.Now(), body.Notes, auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return bookingError(err)
	}
	return decisionResponse(c, decision)
}
