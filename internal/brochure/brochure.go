package brochure

import (
	"time"

	"sjsage522/brochureworker/internal/dates"
)

// ParsedTimeLayout is the layout of Record.ParsedTime
const ParsedTimeLayout = "2006-01-02 15:04:05"

// Record represents a currently valid brochure of a shop.
// Absent validity dates are serialized as null.
type Record struct {
	Title      string  `json:"title"`
	Thumbnail  string  `json:"thumbnail"`
	ShopName   string  `json:"shop_name"`
	ValidFrom  *string `json:"valid_from"`
	ValidTo    *string `json:"valid_to"`
	ParsedTime string  `json:"parsed_time"`
}

// New creates a record discovered at the given time
func New(title, thumbnail, shopName string, window dates.Window, discoveredAt time.Time) Record {
	return Record{
		Title:      title,
		Thumbnail:  thumbnail,
		ShopName:   shopName,
		ValidFrom:  optional(window.From),
		ValidTo:    optional(window.To),
		ParsedTime: discoveredAt.Format(ParsedTimeLayout),
	}
}

// Window returns the record's validity window
func (r Record) Window() dates.Window {
	var w dates.Window
	if r.ValidFrom != nil {
		w.From = *r.ValidFrom
	}
	if r.ValidTo != nil {
		w.To = *r.ValidTo
	}
	return w
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
