package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichq/clinic/pkg/timeofday"
)

func newTestHandler(t *testing.T) (*Handler, *fixture, *echo.Echo) {
	t.Helper()
	f := newFixture(t)
	return NewHandler(f.svc), f, echo.New()
}

func TestHandler_GetAvailability(t *testing.T) {
	h, f, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/?date=2026-03-10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(f.doctorID.String())

	if err := h.GetAvailability(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var av Availability
	json.Unmarshal(rec.Body.Bytes(), &av)
	if !av.Available || len(av.Windows) != 2 {
		t.Errorf("got %+v, want available with 2 windows", av)
	}
}

func TestHandler_GetAvailability_BadDate(t *testing.T) {
	h, f, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/?date=next-tuesday", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(f.doctorID.String())

	if err := h.GetAvailability(c); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestHandler_GetAvailability_UnknownDoctor(t *testing.T) {
	h, _, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/?date=2026-03-10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetAvailability(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_GetSlots(t *testing.T) {
	h, f, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/?date=2026-03-10&granularity=60", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(f.doctorID.String())

	if err := h.GetSlots(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var slots []timeofday.TimeOfDay
	json.Unmarshal(rec.Body.Bytes(), &slots)
	// 09:00-13:00 gives 4 hour slots, 14:00-17:00 gives 3.
	if len(slots) != 7 {
		t.Errorf("expected 7 hourly slots, got %d", len(slots))
	}
}

func TestHandler_GetSlots_EmptyNotNull(t *testing.T) {
	h, f, e := newTestHandler(t)

	// Monday is not a working day in the fixture.
	req := httptest.NewRequest(http.MethodGet, "/?date=2026-03-09", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(f.doctorID.String())

	if err := h.GetSlots(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected empty JSON array, got %s", body)
	}
}

func TestHandler_Book_Accepted(t *testing.T) {
	h, f, e := newTestHandler(t)

	body := `{"doctor_id":"` + f.doctorID.String() + `","patient_id":"` + uuid.NewString() + `",` +
		`"date":"2026-03-10","start_time":"10:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var d Decision
	json.Unmarshal(rec.Body.Bytes(), &d)
	if d.Outcome != OutcomeAccepted || d.Appointment == nil {
		t.Errorf("got %+v, want accepted with appointment", d)
	}
}

func TestHandler_Book_Conflict(t *testing.T) {
	h, f, e := newTestHandler(t)

	if d := f.book(t, "10:00"); d.Outcome != OutcomeAccepted {
		t.Fatalf("setup booking failed: %s", d.Reason)
	}

	body := `{"doctor_id":"` + f.doctorID.String() + `","patient_id":"` + uuid.NewString() + `",` +
		`"date":"2026-03-10","start_time":"10:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}

	var d Decision
	json.Unmarshal(rec.Body.Bytes(), &d)
	if d.Reason != ReasonSlotTaken {
		t.Errorf("reason = %s, want slot_taken", d.Reason)
	}
}

func TestHandler_Book_StorageTimeout(t *testing.T) {
	h, f, e := newTestHandler(t)
	f.appts.insertErr = context.DeadlineExceeded

	body := `{"doctor_id":"` + f.doctorID.String() + `","patient_id":"` + uuid.NewString() + `",` +
		`"date":"2026-03-10","start_time":"10:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestHandler_Book_MissingFields(t *testing.T) {
	h, _, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Book(c); err == nil {
		t.Error("expected error for missing fields")
	}
}

func TestHandler_Rebook(t *testing.T) {
	h, f, e := newTestHandler(t)

	booked := f.book(t, "10:00")
	if booked.Outcome != OutcomeAccepted {
		t.Fatalf("setup booking failed: %s", booked.Reason)
	}

	body := `{"doctor_id":"` + f.doctorID.String() + `","patient_id":"` + booked.Appointment.PatientID.String() + `",` +
		`"date":"2026-03-10","start_time":"11:00"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(booked.Appointment.ID.String())

	if err := h.Rebook(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Rebook_UnknownAppointment(t *testing.T) {
	h, f, e := newTestHandler(t)

	body := `{"doctor_id":"` + f.doctorID.String() + `","patient_id":"` + uuid.New().String() + `",` +
		`"date":"2026-03-10","start_time":"11:00"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Rebook(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown appointment, got %v", err)
	}
}

func TestHandler_GetAvailability_StorageTimeout(t *testing.T) {
	h, f, e := newTestHandler(t)
	f.sched.err = context.DeadlineExceeded

	req := httptest.NewRequest(http.MethodGet, "/?date=2026-03-10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(f.doctorID.String())

	err := h.GetAvailability(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for a storage timeout, got %v", err)
	}
}

func TestHandler_BookWalkIn_MissingFields(t *testing.T) {
	h, _, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/walk-in", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.BookWalkIn(c); err == nil {
		t.Error("expected error for missing ids")
	}
}

func TestHandler_GetDayView(t *testing.T) {
	h, f, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/?date=2026-03-10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(f.doctorID.String())

	if err := h.GetDayView(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _, e := newTestHandler(t)
	api := e.Group("/api/v1")

	h.RegisterRoutes(api)

	routes := e.Routes()
	routePaths := make(map[string]bool)
	for _, r := range routes {
		routePaths[r.Method+":"+r.Path] = true
	}

	expected := []string{
		"GET:/api/v1/doctors/:id/availability",
		"GET:/api/v1/doctors/:id/slots",
		"GET:/api/v1/doctors/:id/day",
		"POST:/api/v1/bookings",
		"PUT:/api/v1/bookings/:id",
		"POST:/api/v1/bookings/walk-in",
	}
	for _, path := range expected {
		if !routePaths[path] {
			t.Errorf("missing expected route: %s", path)
		}
	}
}
