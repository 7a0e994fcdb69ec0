package schedule

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichq/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.RoleDoctor, auth.RoleReceptionist))
	readGroup.GET("/doctors/:id/schedule", h.GetWeek)
	readGroup.GET("/doctors/:id/leave", h.ListLeave)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleDoctor, auth.RoleReceptionist))
	writeGroup.PUT("/doctors/:id/schedule", h.SaveWeek)
	writeGroup.POST("/doctors/:id/leave", h.AddLeave)
	writeGroup.POST("/doctors/:id/leave/off-tomorrow", h.OffTomorrow)
	writeGroup.DELETE("/doctors/:id/leave/:leaveId", h.RemoveLeave)
}

func (h *Handler) GetWeek(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	week, err := h.svc.GetWeek(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, week)
}

func (h *Handler) SaveWeek(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	var entries []*WeeklyEntry
	if err := c.Bind(&entries); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SaveWeek(c.Request().Context(), doctorID, entries); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

type leaveRequest struct {
	Date      string    `json:"date"`
	LeaveType LeaveType `json:"leave_type"`
	Reason    *string   `json:"reason,omitempty"`
}

func (h *Handler) AddLeave(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	var req leaveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	l := &Leave{
		DoctorID:  doctorID,
		Date:      date,
		LeaveType: req.LeaveType,
		Reason:    req.Reason,
	}
	if err := h.svc.AddLeave(c.Request().Context(), l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) OffTomorrow(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	var req struct {
		Reason *string `json:"reason,omitempty"`
	}
	_ = c.Bind(&req) // body is optional

	l, err := h.svc.MarkOffTomorrow(c.Request().Context(), doctorID, req.Reason)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) ListLeave(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	leaves, err := h.svc.ListUpcomingLeave(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, leaves)
}

func (h *Handler) RemoveLeave(c echo.Context) error {
	leaveID, err := uuid.Parse(c.Param("leaveId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid leave id")
	}
	if err := h.svc.RemoveLeave(c.Request().Context(), leaveID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "leave not found")
	}
	return c.NoContent(http.StatusNoContent)
}
