package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNavigation represents a page that could not be loaded
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeParsing represents HTML or brochure parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeFormat represents a date that does not match its layout
	ErrorTypeFormat ErrorType = "format"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePersistence represents sink errors
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents an error raised while scraping a shop
type ScrapeError struct {
	Type    ErrorType
	Shop    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Shop == "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s - %v", e.Type, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Shop, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Shop, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// New creates a new ScrapeError
func New(errType ErrorType, shop, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Shop:    shop,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNavigation creates a new navigation error
func NewNavigation(shop, message string, err error) *ScrapeError {
	return New(ErrorTypeNavigation, shop, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(shop, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, shop, message, err)
}

// NewFormat creates a new date format error
func NewFormat(message string, err error) *ScrapeError {
	return New(ErrorTypeFormat, "", message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(url string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("%s rate limited for %v", url, duration)
	return New(ErrorTypeRateLimit, "", message, nil)
}

// NewCache creates a new cache error
func NewCache(message string, err error) *ScrapeError {
	return New(ErrorTypeCache, "", message, err)
}

// NewPersistence creates a new persistence error
func NewPersistence(message string, err error) *ScrapeError {
	return New(ErrorTypePersistence, "", message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether any error in err's chain is a ScrapeError of the given type
func IsType(err error, errType ErrorType) bool {
	var scrapeErr *ScrapeError
	for err != nil {
		if !stderrors.As(err, &scrapeErr) {
			return false
		}
		if scrapeErr.Type == errType {
			return true
		}
		err = scrapeErr.Err
	}
	return false
}
