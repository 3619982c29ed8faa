package api

import (
	"fmt"
	"strconv"

	"github.com/smokyabdulrahman/salat/internal/hijri"
)

// envelope is the status part shared by every Al Adhan response.
type envelope struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

// Response is the body of the timings endpoint.
type Response struct {
	envelope
	Data Data `json:"data"`
}

// CalendarResponse is the body of the calendar endpoint, one Data per day.
type CalendarResponse struct {
	envelope
	Data []Data `json:"data"`
}

// Data is one day of reference timings.
type Data struct {
	Timings Timings `json:"timings"`
	Date    Date    `json:"date"`
	Meta    Meta    `json:"meta"`
}

// Timings holds "HH:MM" strings, sometimes followed by a zone abbreviation
// such as " (BST)". Only the entries computed locally are decoded.
type Timings struct {
	Fajr    string `json:"Fajr"`
	Sunrise string `json:"Sunrise"`
	Dhuhr   string `json:"Dhuhr"`
	Asr     string `json:"Asr"`
	Maghrib string `json:"Maghrib"`
	Isha    string `json:"Isha"`
}

// Date is the API's rendering of the requested day.
type Date struct {
	Readable string   `json:"readable"`
	Hijri    HijriDay `json:"hijri"`
}

// HijriDay is the Hijri date as the API reports it. Day and year arrive as
// strings.
type HijriDay struct {
	Day   string `json:"day"`
	Month struct {
		Number int    `json:"number"`
		En     string `json:"en"`
	} `json:"month"`
	Year string `json:"year"`
}

// Date converts h for comparison with the local converter.
func (h HijriDay) Date() (hijri.Date, error) {
	day, err := strconv.Atoi(h.Day)
	if err != nil {
		return hijri.Date{}, fmt.Errorf("invalid Hijri day %q", h.Day)
	}
	year, err := strconv.Atoi(h.Year)
	if err != nil {
		return hijri.Date{}, fmt.Errorf("invalid Hijri year %q", h.Year)
	}
	d := hijri.Date{Day: day, Month: h.Month.Number, Year: year}
	if !d.Valid() {
		return hijri.Date{}, fmt.Errorf("invalid Hijri date %d-%d-%d", year, h.Month.Number, day)
	}
	return d, nil
}

// Meta describes how the API computed the day.
type Meta struct {
	Timezone string `json:"timezone"`
	Method   struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"method"`
}
