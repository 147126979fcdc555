package dates

import (
	"fmt"
	"strings"
)

var strftimeDirectives = map[byte]string{
	'd': "02",
	'm': "01",
	'Y': "2006",
	'y': "06",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'j': "002",
	'%': "%",
}

// Layout returns the Go time layout for format. Formats containing a '%' are
// read as strftime patterns ("%d.%m.%Y"), anything else is already a layout.
func Layout(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("empty date format")
	}
	if !strings.Contains(format, "%") {
		return format, nil
	}

	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			b.WriteByte(format[i])
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("date format %q ends with a bare %%", format)
		}
		i++
		directive, ok := strftimeDirectives[format[i]]
		if !ok {
			return "", fmt.Errorf("unsupported directive %%%c in date format %q", format[i], format)
		}
		b.WriteString(directive)
	}
	return b.String(), nil
}
