// Package dates turns the free-form validity captions of brochures into
// validity windows and decides whether a window covers the current day.
package dates

import (
	"regexp"
	"strings"
	"time"

	apperrors "sjsage522/brochureworker/pkg/errors"
)

// NativeLayout is the layout used by the source markup (DD.MM.YYYY).
const NativeLayout = "02.01.2006"

var datePattern = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)

// Window is a validity window. An empty endpoint is open-ended.
type Window struct {
	From string
	To   string
}

// HasFrom reports whether the window has a start date
func (w Window) HasFrom() bool { return w.From != "" }

// HasTo reports whether the window has an end date
func (w Window) HasTo() bool { return w.To != "" }

// IsEmpty reports whether neither endpoint is present
func (w Window) IsEmpty() bool { return !w.HasFrom() && !w.HasTo() }

// Interpreter extracts windows from caption text.
//
// A caption with a single date is ambiguous; FromMarkers lists the words the
// site uses to say "starting". If any of them occurs in the caption the date
// starts the window, otherwise it ends it.
type Interpreter struct {
	FromMarkers []string
}

// Default interprets captions the way prospektmaschine.de phrases them
var Default = Interpreter{FromMarkers: []string{"von"}}

// Extract extracts a window from text using the Default interpreter
func Extract(text string) Window {
	return Default.Extract(text)
}

// Extract scans text for DD.MM.YYYY dates in order of appearance.
// Two dates are returned as found, without checking their order. Zero or more
// than two dates yield an empty window.
func (in Interpreter) Extract(text string) Window {
	if text == "" {
		return Window{}
	}

	matches := datePattern.FindAllString(text, -1)
	switch len(matches) {
	case 1:
		if in.startsWindow(text) {
			return Window{From: matches[0]}
		}
		return Window{To: matches[0]}
	case 2:
		return Window{From: matches[0], To: matches[1]}
	default:
		return Window{}
	}
}

func (in Interpreter) startsWindow(text string) bool {
	for _, marker := range in.FromMarkers {
		if marker != "" && strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Reformat converts every present endpoint from inLayout to outLayout.
// A present endpoint that does not parse under inLayout is a format error.
func Reformat(w Window, inLayout, outLayout string) (Window, error) {
	from, err := reformatDate(w.From, inLayout, outLayout)
	if err != nil {
		return Window{}, err
	}
	to, err := reformatDate(w.To, inLayout, outLayout)
	if err != nil {
		return Window{}, err
	}
	return Window{From: from, To: to}, nil
}

func reformatDate(value, inLayout, outLayout string) (string, error) {
	if value == "" {
		return "", nil
	}
	t, err := time.Parse(inLayout, value)
	if err != nil {
		return "", apperrors.NewFormat("date "+value+" does not match layout "+inLayout, err)
	}
	return t.Format(outLayout), nil
}

// IsCurrentlyValid reports whether now falls inside the window. Both sides
// are compared as calendar days, so a window ending today is valid all day.
// A window without dates, or with a date that does not parse, is never valid.
func IsCurrentlyValid(w Window, layout string, now time.Time) bool {
	var from, to time.Time
	var err error

	if w.HasFrom() {
		if from, err = time.Parse(layout, w.From); err != nil {
			return false
		}
		from = truncateDay(from)
	}
	if w.HasTo() {
		if to, err = time.Parse(layout, w.To); err != nil {
			return false
		}
		to = truncateDay(to)
	}

	today := truncateDay(now)
	switch {
	case w.HasFrom() && w.HasTo():
		return !today.Before(from) && !today.After(to)
	case w.HasFrom():
		return !today.Before(from)
	case w.HasTo():
		return !today.After(to)
	default:
		return false
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
