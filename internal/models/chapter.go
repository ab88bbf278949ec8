// Package models defines the domain types for lectio.
package models

import "strconv"

// Chapter is a course unit with its attendance counters.
type Chapter struct {
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Attended int    `json:"attended"`
	Missed   int    `json:"missed"`
}

// ID returns the chapter number in the string form used to key notes.
func (c *Chapter) ID() string {
	return strconv.Itoa(c.Number)
}

// Module is a named display grouping. Chapters point at the records owned by
// the chapter store, so attendance changes show up in every module.
type Module struct {
	Name     string     `json:"name"`
	Chapters []*Chapter `json:"chapters"`
}

// AbsenceRate returns missed/(attended+missed)*100 with two decimals,
// or "0.00" when no lecture has been counted yet.
func AbsenceRate(attended, missed int) string {
	total := attended + missed
	if total <= 0 {
		return "0.00"
	}
	return strconv.FormatFloat(float64(missed)/float64(total)*100, 'f', 2, 64)
}
