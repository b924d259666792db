package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/chrissnell/horologium/internal/almanac"
	"github.com/chrissnell/horologium/internal/log"
	"github.com/chrissnell/horologium/pkg/responseformat"
	"github.com/chrissnell/horologium/pkg/romantime"
)

var noCache = map[string]string{"Cache-Control": "no-store"}

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
	now        func() time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
		now:        time.Now,
	}
}

// badRequest is a query or body problem reported to the client as a 400
type badRequest struct {
	msg string
}

func (e badRequest) Error() string {
	return e.msg
}

func badRequestf(format string, args ...interface{}) error {
	return badRequest{msg: fmt.Sprintf(format, args...)}
}

func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, err error) {
	var br badRequest
	if errors.As(err, &br) {
		h.formatter.WriteError(w, req, http.StatusBadRequest, br.msg)
		return
	}
	h.controller.logger.Errorf("error serving %s: %v", req.URL.Path, err)
	h.formatter.WriteError(w, req, http.StatusInternalServerError, "internal server error")
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, data, noCache); err != nil {
		h.controller.logger.Errorf("error encoding response for %s: %v", req.URL.Path, err)
	}
}

// GetNow returns the clock's current snapshot with the day's almanac entry
// and weather
func (h *Handlers) GetNow(w http.ResponseWriter, req *http.Request) {
	clk := h.controller.clock
	snapshot := clk.Snapshot()
	if snapshot == nil {
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "clock has not ticked yet")
		return
	}

	resp := NowResponse{
		Location: clk.Location(),
		Timezone: clk.Zone().String(),
		Time:     snapshot,
		Weather:  clk.Weather(),
	}

	md := almanac.MonthDayOf(snapshot.ComputedAt)
	if info, err := h.controller.almanac.DayInfo(req.Context(), md); err != nil {
		h.controller.logger.Warnf("almanac lookup for %s failed: %v", md, err)
	} else {
		resp.Day = &info
	}
	if events, err := h.controller.almanac.Events(req.Context(), md); err != nil {
		h.controller.logger.Warnf("event lookup for %s failed: %v", md, err)
	} else {
		resp.Events = events
	}

	h.write(w, req, resp)
}

// GetTime resolves the Roman hour for an arbitrary place and instant
func (h *Handlers) GetTime(w http.ResponseWriter, req *http.Request) {
	zone, err := h.zone(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	coord, err := h.coordinate(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	at, err := h.instant(req, zone)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	h.write(w, req, romantime.Calculate(at, coord))
}

// GetSun returns sunrise, sunset and hour lengths for one civil day
func (h *Handlers) GetSun(w http.ResponseWriter, req *http.Request) {
	zone, err := h.zone(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	coord, err := h.coordinate(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	date, err := h.date(req, zone)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	h.write(w, req, NewSunResponse(date, zone, coord))
}

// GetMoon returns the lunar phase at an instant
func (h *Handlers) GetMoon(w http.ResponseWriter, req *http.Request) {
	zone, err := h.zone(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	at, err := h.instant(req, zone)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	h.write(w, req, NewMoonResponse(at))
}

// GetDate formats a civil date in the Roman style
func (h *Handlers) GetDate(w http.ResponseWriter, req *http.Request) {
	zone, err := h.zone(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	date, err := h.date(req, zone)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	h.write(w, req, NewDateResponse(date))
}

// GetDay returns the almanac entry and historical events for a date
func (h *Handlers) GetDay(w http.ResponseWriter, req *http.Request) {
	zone, err := h.zone(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	date, err := h.date(req, zone)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	md := almanac.MonthDayOf(date)
	info, err := h.controller.almanac.DayInfo(req.Context(), md)
	if err != nil {
		h.writeError(w, req, fmt.Errorf("almanac lookup for %s: %w", md, err))
		return
	}
	events, err := h.controller.almanac.Events(req.Context(), md)
	if err != nil {
		h.writeError(w, req, fmt.Errorf("event lookup for %s: %w", md, err))
		return
	}

	h.write(w, req, DayResponse{
		Date:     date.Format(DateLayout),
		MonthDay: md.String(),
		DayInfo:  info,
		Events:   events,
	})
}

// PutLocation moves the clock and returns the recomputed snapshot
func (h *Handlers) PutLocation(w http.ResponseWriter, req *http.Request) {
	var body LocationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, 4096))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		h.writeError(w, req, badRequestf("invalid location body: %v", err))
		return
	}
	if body.Latitude == nil || body.Longitude == nil {
		h.writeError(w, req, badRequestf("latitude and longitude are both required"))
		return
	}

	coord := romantime.GeoCoordinate{Latitude: *body.Latitude, Longitude: *body.Longitude}
	if err := validateCoordinate(coord); err != nil {
		h.writeError(w, req, err)
		return
	}

	// the weather refresh outlives the request
	snapshot := h.controller.clock.SetLocation(h.controller.ctx, coord)
	h.write(w, req, snapshot)
}

// GetHTTPLogs returns the most recent requests, newest first
func (h *Handlers) GetHTTPLogs(w http.ResponseWriter, req *http.Request) {
	limit := 100
	if s := req.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.writeError(w, req, badRequestf("invalid limit %q", s))
			return
		}
		limit = n
	}

	h.write(w, req, log.GetHTTPLogBuffer().Entries(limit))
}

func (h *Handlers) notFound(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteError(w, req, http.StatusNotFound, "not found")
}

func (h *Handlers) methodNotAllowed(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteError(w, req, http.StatusMethodNotAllowed, "method not allowed")
}

// zone reads the tz parameter, defaulting to the clock's zone
func (h *Handlers) zone(req *http.Request) (*time.Location, error) {
	name := req.URL.Query().Get("tz")
	if name == "" {
		return h.controller.clock.Zone(), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, badRequestf("unknown timezone %q", name)
	}
	return loc, nil
}

// coordinate reads lat and lon, defaulting to the clock's location. Either
// both or neither must be given.
func (h *Handlers) coordinate(req *http.Request) (romantime.GeoCoordinate, error) {
	q := req.URL.Query()
	latStr, lonStr := q.Get("lat"), q.Get("lon")

	if latStr == "" && lonStr == "" {
		return h.controller.clock.Location(), nil
	}
	if latStr == "" || lonStr == "" {
		return romantime.GeoCoordinate{}, badRequestf("lat and lon must be given together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return romantime.GeoCoordinate{}, badRequestf("invalid lat %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return romantime.GeoCoordinate{}, badRequestf("invalid lon %q", lonStr)
	}

	coord := romantime.GeoCoordinate{Latitude: lat, Longitude: lon}
	return coord, validateCoordinate(coord)
}

func validateCoordinate(c romantime.GeoCoordinate) error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return badRequestf("latitude %v out of range [-90, 90]", c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return badRequestf("longitude %v out of range [-180, 180]", c.Longitude)
	}
	return nil
}

// instant reads the RFC 3339 at parameter, defaulting to now, and moves it
// into zone
func (h *Handlers) instant(req *http.Request, zone *time.Location) (time.Time, error) {
	s := req.URL.Query().Get("at")
	if s == "" {
		return h.now().In(zone), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, badRequestf("invalid at %q: expected RFC 3339", s)
	}
	return t.In(zone), nil
}

// date reads the YYYY-MM-DD date parameter in zone, defaulting to today
func (h *Handlers) date(req *http.Request, zone *time.Location) (time.Time, error) {
	s := req.URL.Query().Get("date")
	if s == "" {
		y, m, d := h.now().In(zone).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, zone), nil
	}
	t, err := time.ParseInLocation(DateLayout, s, zone)
	if err != nil {
		return time.Time{}, badRequestf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}
