package carriers

import (
	"context"
	"time"
)

// StatusCode is the carrier-independent classification of a tracking event
type StatusCode string

const (
	StatusUnknown             StatusCode = "unknown"
	StatusInformationReceived StatusCode = "information_received"
	StatusAtPickup            StatusCode = "at_pickup"
	StatusInTransit           StatusCode = "in_transit"
	StatusOutForDelivery      StatusCode = "out_for_delivery"
	StatusAttemptFail         StatusCode = "attempt_fail"
	StatusDelivered           StatusCode = "delivered"
	StatusAvailableForPickup  StatusCode = "available_for_pickup"
	StatusException           StatusCode = "exception"
)

// Status pairs the normalized code with the raw status text from the carrier
type Status struct {
	Code                StatusCode        `json:"code"`
	Name                string            `json:"name"`
	CarrierSpecificData map[string]string `json:"carrier_specific_data,omitempty"`
}

// Location describes where a tracking event happened
type Location struct {
	CountryCode         string            `json:"country_code,omitempty"`
	Name                string            `json:"name,omitempty"`
	PostalCode          string            `json:"postal_code,omitempty"`
	CarrierSpecificData map[string]string `json:"carrier_specific_data,omitempty"`
}

// ContactInfo holds contact details attached to an event, when the carrier exposes any
type ContactInfo struct {
	Name                string            `json:"name,omitempty"`
	PhoneNumber         string            `json:"phone_number,omitempty"`
	CarrierSpecificData map[string]string `json:"carrier_specific_data,omitempty"`
}

// Party identifies the sender or recipient of a shipment
type Party struct {
	Name                *string           `json:"name"`
	Location            *Location         `json:"location"`
	PhoneNumber         *string           `json:"phone_number"`
	CarrierSpecificData map[string]string `json:"carrier_specific_data,omitempty"`
}

// TrackEvent represents a single tracking event in the shipment's journey.
// Time is nil when the carrier reported an event whose timestamp could not
// be parsed; the event itself is still valid.
type TrackEvent struct {
	Status              Status            `json:"status"`
	Time                *time.Time        `json:"time"`
	Location            *Location         `json:"location"`
	Contact             *ContactInfo      `json:"contact"`
	Description         string            `json:"description"`
	CarrierSpecificData map[string]string `json:"carrier_specific_data,omitempty"`
}

// TrackInfo is the complete normalized tracking record for one shipment.
// Events are ordered oldest first regardless of how the carrier presents them.
type TrackInfo struct {
	Sender              *Party            `json:"sender"`
	Recipient           *Party            `json:"recipient"`
	Events              []TrackEvent      `json:"events"`
	CarrierSpecificData map[string]string `json:"carrier_specific_data,omitempty"`
}

// LatestStatus returns the status code of the most recent event,
// or StatusUnknown when there are no events.
func (t *TrackInfo) LatestStatus() StatusCode {
	if len(t.Events) == 0 {
		return StatusUnknown
	}
	return t.Events[len(t.Events)-1].Status.Code
}

// CarrierError represents errors from carrier lookups
type CarrierError struct {
	Carrier   string `json:"carrier"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	RateLimit bool   `json:"rate_limit"`
}

func (e *CarrierError) Error() string {
	return e.Carrier + ": " + e.Message
}

// Error codes used by CarrierError
const (
	ErrCodeNotFound  = "NOT_FOUND"
	ErrCodeRateLimit = "RATE_LIMIT"
)

// NotFoundError builds the terminal error for a tracking number the carrier
// has no record of.
func NotFoundError(carrier, message string) *CarrierError {
	return &CarrierError{
		Carrier:   carrier,
		Code:      ErrCodeNotFound,
		Message:   message,
		Retryable: false,
	}
}

// IsNotFound reports whether err is a carrier not-found error
func IsNotFound(err error) bool {
	carrierErr, ok := err.(*CarrierError)
	return ok && carrierErr.Code == ErrCodeNotFound
}

// Carrier interface that all carrier implementations must satisfy
type Carrier interface {
	// ID returns the stable carrier code, e.g. "kdexp"
	ID() string

	// Name returns the human-readable carrier name
	Name() string

	// Track retrieves normalized tracking information for a tracking number
	Track(ctx context.Context, trackingNumber string) (*TrackInfo, error)
}

// rawKey builds a namespaced carrierSpecificData key so fields from
// different carriers never collide: "<carrierID>/raw/<field>".
func rawKey(carrierID, field string) string {
	return carrierID + "/raw/" + field
}
