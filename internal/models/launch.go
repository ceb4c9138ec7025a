package models

import (
	"fmt"
	"strings"
	"time"

	ozzo "github.com/go-ozzo/ozzo-validation"
)

// LaunchDatePrecision is the finest resolution every backend can store;
// MongoDB keeps milliseconds.
const LaunchDatePrecision = time.Millisecond

// SeedFlightNumber is the flight number of the record every store starts with.
// Newly created launches are numbered from SeedFlightNumber+1.
const SeedFlightNumber = 100

// Launch is a scheduled or completed space launch.
type Launch struct {
	FlightNumber int64     `json:"flightNumber" bson:"flightNumber"`
	Mission      string    `json:"mission" bson:"mission"`
	Rocket       string    `json:"rocket" bson:"rocket"`
	LaunchDate   time.Time `json:"launchDate" bson:"launchDate"`
	Destination  string    `json:"destination" bson:"destination"`
	Customer     []string  `json:"customer" bson:"customer"`
	Upcoming     bool      `json:"upcoming" bson:"upcoming"`
	Success      bool      `json:"success" bson:"success"`
}

// LaunchInput is the candidate payload accepted by create. FlightNumber,
// Customer, Upcoming and Success are decoded so callers may send full records,
// but the creation policy always overwrites them.
type LaunchInput struct {
	FlightNumber *int64   `json:"flightNumber,omitempty"`
	Mission      string   `json:"mission"`
	Rocket       string   `json:"rocket"`
	LaunchDate   string   `json:"launchDate"`
	Destination  string   `json:"destination"`
	Customer     []string `json:"customer,omitempty"`
	Upcoming     *bool    `json:"upcoming,omitempty"`
	Success      *bool    `json:"success,omitempty"`
}

// DefaultCustomers returns the agency list assigned to every new launch.
func DefaultCustomers() []string {
	return []string{"ZTM", "NASA"}
}

// SeedLaunch returns the record stores are pre-seeded with.
func SeedLaunch() Launch {
	return Launch{
		FlightNumber: SeedFlightNumber,
		Mission:      "Kepler Exploration X",
		Rocket:       "Explorer IS1",
		LaunchDate:   time.Date(2030, time.December, 27, 0, 0, 0, 0, time.UTC),
		Destination:  "Kepler-42 b",
		Customer:     DefaultCustomers(),
		Upcoming:     true,
		Success:      true,
	}
}

var launchDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
}

// ParseLaunchDate parses the free-text date formats the frontend sends.
// Dates without a zone are taken as UTC, and the result is truncated to
// LaunchDatePrecision.
func ParseLaunchDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range launchDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(LaunchDatePrecision), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func validLaunchDate(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := ParseLaunchDate(s); err != nil {
		return fmt.Errorf("must be a valid date")
	}
	return nil
}

// Validate reports every required field that is blank and a launchDate that
// cannot be parsed. The returned error wraps ErrInvalidInput.
func (in LaunchInput) Validate() error {
	in = in.trimmed()
	err := ozzo.ValidateStruct(&in,
		ozzo.Field(&in.Mission, ozzo.Required),
		ozzo.Field(&in.Rocket, ozzo.Required),
		ozzo.Field(&in.LaunchDate, ozzo.Required, ozzo.By(validLaunchDate)),
		ozzo.Field(&in.Destination, ozzo.Required),
	)
	if err != nil {
		return newValidationError(err)
	}
	return nil
}

func (in LaunchInput) trimmed() LaunchInput {
	in.Mission = strings.TrimSpace(in.Mission)
	in.Rocket = strings.TrimSpace(in.Rocket)
	in.LaunchDate = strings.TrimSpace(in.LaunchDate)
	in.Destination = strings.TrimSpace(in.Destination)
	return in
}

// NewLaunch applies the creation policy: the candidate's descriptive fields
// are kept, while flight number, customers, upcoming and success are forced.
func NewLaunch(in LaunchInput, flightNumber int64) (Launch, error) {
	if err := in.Validate(); err != nil {
		return Launch{}, err
	}
	in = in.trimmed()

	date, err := ParseLaunchDate(in.LaunchDate)
	if err != nil {
		return Launch{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return Launch{
		FlightNumber: flightNumber,
		Mission:      in.Mission,
		Rocket:       in.Rocket,
		LaunchDate:   date,
		Destination:  in.Destination,
		Customer:     DefaultCustomers(),
		Upcoming:     true,
		Success:      true,
	}, nil
}
