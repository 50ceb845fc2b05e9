// Package dates converts between the DD/MM/YYYY form shown to users and the YYYY-MM-DD form
// used by date inputs and the API.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	LayoutDDMMYYYY = "02/01/2006"
	LayoutYYYYMMDD = "2006-01-02"

	minYear = 1900
	maxYear = 2100
)

var ddmmyyyy = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// FormatToDDMMYYYY converts "2006-01-02" (or an RFC 3339 timestamp) to "02/01/2006".
// Unparseable input gives "".
func FormatToDDMMYYYY(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(LayoutYYYYMMDD, value); err == nil {
		return t.Format(LayoutDDMMYYYY)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(LayoutDDMMYYYY)
	}
	return ""
}

// FormatToYYYYMMDD rearranges "DD/MM/YYYY" into "YYYY-MM-DD". Only the shape is checked.
func FormatToYYYYMMDD(value string) string {
	parts := strings.Split(value, "/")
	if len(parts) != 3 {
		return ""
	}
	day, month, year := parts[0], parts[1], parts[2]
	if len(day) != 2 || len(month) != 2 || len(year) != 4 {
		return ""
	}
	return year + "-" + month + "-" + day
}

// FormatTime renders t as DD/MM/YYYY, or "" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(LayoutDDMMYYYY)
}

func TodayDDMMYYYY(now time.Time) string {
	return now.Format(LayoutDDMMYYYY)
}

// TodayYYYYMMDD is the value for a date input's max attribute.
func TodayYYYYMMDD(now time.Time) string {
	return now.Format(LayoutYYYYMMDD)
}

// IsValidDDMMYYYY checks the shape, a year in 1900..2100 and that the day exists in that month.
func IsValidDDMMYYYY(value string) bool {
	_, ok := parseDDMMYYYY(value)
	return ok
}

// CalculateAge returns the completed years between dob and now, or false if dob is invalid.
func CalculateAge(dob string, now time.Time) (int, bool) {
	born, ok := parseDDMMYYYY(dob)
	if !ok {
		return 0, false
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age, true
}

func parseDDMMYYYY(value string) (time.Time, bool) {
	if !ddmmyyyy.MatchString(value) {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(value[0:2])
	month, _ := strconv.Atoi(value[3:5])
	year, _ := strconv.Atoi(value[6:10])
	if month < 1 || month > 12 || day < 1 || day > 31 || year < minYear || year > maxYear {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
