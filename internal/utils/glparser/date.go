package glparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	numericDate = regexp.MustCompile(`^\d{1,4}[/.\-]\d{1,2}[/.\-]\d{2,4}$`)
	excelSerial = regexp.MustCompile(`^\d{5}(\.\d+)?$`)

	isoLayouts = []string{
		"2006-01-02",
		"2006/01/02",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
		"20060102",
	}
	textLayouts = []string{
		"2 Jan 2006",
		"2 January 2006",
		"2-Jan-2006",
		"2-Jan-06",
		"2 Jan 06",
		"Jan 2, 2006",
		"January 2, 2006",
		"Jan 2 2006",
		"Mon, 2 Jan 2006",
		"Monday, 2 January 2006",
	}
	dayFirstLayouts   = []string{"2/1/2006", "2/1/06"}
	monthFirstLayouts = []string{"1/2/2006", "1/2/06"}
)

// parseDate normalizes a report date cell to a UTC calendar date.
func parseDate(raw string, dayFirst bool) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if excelSerial.MatchString(s) {
		serial, err := strconv.ParseFloat(s, 64)
		if err == nil {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err == nil {
				return calendarDate(t), nil
			}
		}
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDate(t), nil
		}
	}

	datePart := s
	if idx := strings.IndexByte(s, ' '); idx > 0 && numericDate.MatchString(s[:idx]) {
		datePart = s[:idx]
	}
	if numericDate.MatchString(datePart) {
		normalized := strings.NewReplacer("-", "/", ".", "/").Replace(datePart)
		if t, err := time.Parse("2006/1/2", normalized); err == nil {
			return calendarDate(t), nil
		}
		first, second := dayFirstLayouts, monthFirstLayouts
		if !dayFirst {
			first, second = monthFirstLayouts, dayFirstLayouts
		}
		for _, layout := range append(append([]string{}, first...), second...) {
			if t, err := time.Parse(layout, normalized); err == nil {
				return calendarDate(t), nil
			}
		}
	}

	for _, layout := range textLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDate(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
