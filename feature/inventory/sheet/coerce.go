package sheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Timestamp layouts accepted for modified / expiration cells, tried in order.
// Exported workbooks write the first layout; the rest cover hand-edited
// sheets and spreadsheet-native date formatting.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01-02-06",
	"1/2/2006",
	"1/2/06",
}

// ToInt coerces a cell to an integer. Spreadsheets frequently store integers
// as floats ("12.0"), so a float parse is the fallback.
func ToInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if i, err := strconv.Atoi(raw); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	return int(f), nil
}

// ToUint coerces a cell to an unsigned integer.
func ToUint(raw string) (uint, error) {
	i, err := ToInt(raw)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, fmt.Errorf("negative value: %q", raw)
	}
	return uint(i), nil
}

// ToBool coerces a cell to a boolean. Booleans arrive as 0/1 numbers or
// true/false text depending on how the sheet was produced.
func ToBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no", "":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", raw)
	}
}

// ToDecimal coerces a cell to a fixed-point decimal.
func ToDecimal(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a decimal: %q", raw)
	}
	return d, nil
}

// ToTime coerces a cell to a timestamp, trying the known layouts in order.
func ToTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a timestamp: %q", raw)
}

// ToDate coerces a cell to a calendar date, dropping any time component.
func ToDate(raw string) (time.Time, error) {
	t, err := ToTime(raw)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// FormatTime renders a timestamp the way exported sheets store it.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// FormatDate renders a calendar date the way exported sheets store it.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatBool renders a boolean as the 0/1 form the importer accepts.
func FormatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
