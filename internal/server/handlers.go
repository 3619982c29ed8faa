package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/smokyabdulrahman/salat/internal/hijri"
	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/smokyabdulrahman/salat/internal/solar"
)

const dateLayout = "2006-01-02"

type handler struct {
	cfg Config
}

type healthResponse struct {
	Status  string    `json:"status"`
	Version string    `json:"version"`
	Time    time.Time `json:"time"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Version: h.cfg.Version, Time: h.cfg.Now().UTC()})
}

type methodJSON struct {
	ID           int     `json:"id"`
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	FajrAngle    float64 `json:"fajr_angle"`
	IshaAngle    float64 `json:"isha_angle,omitempty"`
	IshaInterval int     `json:"isha_interval,omitempty"`
	MaghribAngle float64 `json:"maghrib_angle,omitempty"`
}

func (h *handler) methods(w http.ResponseWriter, r *http.Request) {
	out := make([]methodJSON, 0, len(prayer.Methods))
	for _, m := range prayer.Methods {
		p := m.Parameters()
		out = append(out, methodJSON{
			ID:           int(m),
			Slug:         m.Slug(),
			Name:         m.String(),
			FajrAngle:    p.FajrAngle,
			IshaAngle:    p.IshaAngle,
			IshaInterval: p.IshaInterval,
			MaghribAngle: p.MaghribAngle,
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

type timingsJSON struct {
	Fajr    time.Time `json:"fajr"`
	Sunrise time.Time `json:"sunrise"`
	Dhuhr   time.Time `json:"dhuhr"`
	Asr     time.Time `json:"asr"`
	Maghrib time.Time `json:"maghrib"`
	Isha    time.Time `json:"isha"`
}

type scheduleResponse struct {
	Date      string            `json:"date"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Timezone  string            `json:"timezone"`
	Method    string            `json:"method"`
	MethodID  int               `json:"method_id"`
	School    string            `json:"school"`
	Timings   timingsJSON       `json:"timings"`
	Fallbacks []prayer.Fallback `json:"fallbacks,omitempty"`
	Hijri     *hijri.Date       `json:"hijri,omitempty"`
}

func newScheduleResponse(s prayer.Schedule) scheduleResponse {
	resp := scheduleResponse{
		Date:      s.Date.Format(dateLayout),
		Latitude:  s.Coordinates.Latitude,
		Longitude: s.Coordinates.Longitude,
		Timezone:  s.Date.Location().String(),
		Method:    s.Parameters.Method.String(),
		MethodID:  int(s.Parameters.Method),
		School:    s.Parameters.Madhab.String(),
		Timings: timingsJSON{
			Fajr:    s.Fajr,
			Sunrise: s.Sunrise,
			Dhuhr:   s.Dhuhr,
			Asr:     s.Asr,
			Maghrib: s.Maghrib,
			Isha:    s.Isha,
		},
		Fallbacks: s.Fallbacks,
	}
	if hd, err := hijri.FromGregorian(s.Date); err == nil {
		resp.Hijri = &hd
	}
	return resp
}

func (h *handler) schedule(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	date := h.cfg.Now().In(q.loc)
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, q.loc)
		if err != nil {
			badRequest(w, r, "invalid date", FieldError{Field: "date", Message: "must be YYYY-MM-DD"})
			return
		}
		date = d
	}

	s, err := prayer.ComputeSchedule(q.coords, date, q.params)
	if err != nil {
		h.computeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newScheduleResponse(s))
}

type statusResponse struct {
	At               time.Time        `json:"at"`
	Current          prayer.Prayer    `json:"current"`
	Next             prayer.Prayer    `json:"next"`
	NextTime         time.Time        `json:"next_time"`
	NextIsTomorrow   bool             `json:"next_is_tomorrow"`
	RemainingSeconds int64            `json:"remaining_seconds"`
	Countdown        string           `json:"countdown"`
	Schedule         scheduleResponse `json:"schedule"`
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	now := h.cfg.Now().In(q.loc)
	st, s, err := prayer.StatusAt(q.coords, now, q.params)
	if err != nil {
		h.computeError(w, r, err)
		return
	}

	remaining := prayer.TimeRemaining(st.NextEntry(), now)
	writeJSON(w, r, http.StatusOK, statusResponse{
		At:               now,
		Current:          st.Current,
		Next:             st.Next,
		NextTime:         st.NextTime,
		NextIsTomorrow:   st.NextIsTomorrow,
		RemainingSeconds: int64(remaining / time.Second),
		Countdown:        prayer.FormatCountdown(remaining),
		Schedule:         newScheduleResponse(s),
	})
}

type hijriResponse struct {
	Gregorian string     `json:"gregorian"`
	Adjust    int        `json:"adjust"`
	Hijri     hijri.Date `json:"hijri"`
	Month     string     `json:"month"`
	Formatted string     `json:"formatted"`
}

func (h *handler) hijri(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.location(w, r)
	if !ok {
		return
	}

	date := h.cfg.Now().In(loc)
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			badRequest(w, r, "invalid date", FieldError{Field: "date", Message: "must be YYYY-MM-DD"})
			return
		}
		date = d
	}

	adjust := 0
	if v := r.URL.Query().Get("adjust"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < -2 || n > 2 {
			badRequest(w, r, "invalid adjust", FieldError{Field: "adjust", Message: "must be an integer between -2 and 2"})
			return
		}
		adjust = n
	}

	hd, err := hijri.FromGregorianAdjusted(date, adjust)
	if err != nil {
		if errors.Is(err, hijri.ErrBeforeEpoch) {
			badRequest(w, r, err.Error(), FieldError{Field: "date", Message: "before the Hijri epoch"})
			return
		}
		internalError(w, r, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, hijriResponse{
		Gregorian: date.Format(dateLayout),
		Adjust:    adjust,
		Hijri:     hd,
		Month:     hd.MonthName(),
		Formatted: hd.Format(),
	})
}

type query struct {
	coords solar.Coordinates
	params prayer.Parameters
	loc    *time.Location
}

// parseQuery reads lat, lon, elevation, method, school and tz. It writes a
// 400 response and returns false on the first invalid parameter.
func (h *handler) parseQuery(w http.ResponseWriter, r *http.Request) (query, bool) {
	v := r.URL.Query()
	var errs []FieldError

	lat, err := strconv.ParseFloat(v.Get("lat"), 64)
	if err != nil {
		errs = append(errs, FieldError{Field: "lat", Message: "required decimal degrees"})
	}
	lon, err := strconv.ParseFloat(v.Get("lon"), 64)
	if err != nil {
		errs = append(errs, FieldError{Field: "lon", Message: "required decimal degrees"})
	}
	var elevation float64
	if s := v.Get("elevation"); s != "" {
		if elevation, err = strconv.ParseFloat(s, 64); err != nil {
			errs = append(errs, FieldError{Field: "elevation", Message: "must be metres"})
		}
	}

	params := h.cfg.Parameters
	if s := v.Get("method"); s != "" {
		m, err := prayer.ParseMethod(s)
		if err != nil {
			errs = append(errs, FieldError{Field: "method", Message: err.Error()})
		} else {
			params = withMethod(params, m)
		}
	}
	if s := v.Get("school"); s != "" {
		school, err := prayer.ParseMadhab(s)
		if err != nil {
			errs = append(errs, FieldError{Field: "school", Message: err.Error()})
		} else {
			params.Madhab = school
		}
	}

	if len(errs) > 0 {
		badRequest(w, r, "invalid query parameters", errs...)
		return query{}, false
	}

	coords := solar.Coordinates{Latitude: lat, Longitude: lon, Elevation: elevation}
	if err := coords.Validate(); err != nil {
		badRequest(w, r, err.Error())
		return query{}, false
	}

	loc, ok := h.location(w, r)
	if !ok {
		return query{}, false
	}
	return query{coords: coords, params: params, loc: loc}, true
}

func (h *handler) location(w http.ResponseWriter, r *http.Request) (*time.Location, bool) {
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		return h.cfg.Location, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		badRequest(w, r, "invalid timezone", FieldError{Field: "tz", Message: fmt.Sprintf("unknown IANA timezone %q", tz)})
		return nil, false
	}
	return loc, true
}

func (h *handler) computeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, prayer.ErrUnsolvable):
		unprocessable(w, r, err.Error())
	case errors.Is(err, solar.ErrInvalidCoordinate):
		badRequest(w, r, err.Error())
	default:
		h.cfg.Logger.Error().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg("schedule computation failed")
		internalError(w, r, "schedule computation failed")
	}
}

// withMethod switches to the preset of m, keeping the juristic and
// high-latitude choices of base.
func withMethod(base prayer.Parameters, m prayer.Method) prayer.Parameters {
	p := m.Parameters()
	p.Madhab = base.Madhab
	p.HighLatitudeRule = base.HighLatitudeRule
	p.PolarResolution = base.PolarResolution
	p.Shafaq = base.Shafaq
	p.Adjustments = base.Adjustments
	return p
}
