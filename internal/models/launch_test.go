package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func validInput() LaunchInput {
	return LaunchInput{
		Mission:     "Zero to Mastery Mission",
		Rocket:      "ZTM Experimental Rocket",
		LaunchDate:  "Dec 27, 2030",
		Destination: "Kepler-442 b",
	}
}

func TestNewLaunch(t *testing.T) {
	launch, err := NewLaunch(validInput(), 101)
	require.NoError(t, err)

	assert.Equal(t, Launch{
		FlightNumber: 101,
		Mission:      "Zero to Mastery Mission",
		Rocket:       "ZTM Experimental Rocket",
		LaunchDate:   time.Date(2030, time.December, 27, 0, 0, 0, 0, time.UTC),
		Destination:  "Kepler-442 b",
		Customer:     []string{"ZTM", "NASA"},
		Upcoming:     true,
		Success:      true,
	}, launch)
}

func TestNewLaunch_OverwritesCallerDefaults(t *testing.T) {
	flight := int64(7)
	no := false
	in := validInput()
	in.FlightNumber = &flight
	in.Customer = []string{"ACME"}
	in.Upcoming = &no
	in.Success = &no

	launch, err := NewLaunch(in, 102)
	require.NoError(t, err)

	assert.Equal(t, int64(102), launch.FlightNumber)
	assert.Equal(t, DefaultCustomers(), launch.Customer)
	assert.True(t, launch.Upcoming)
	assert.True(t, launch.Success)
}

func TestNewLaunch_TrimsFields(t *testing.T) {
	in := validInput()
	in.Mission = "  Artemis  "

	launch, err := NewLaunch(in, 101)
	require.NoError(t, err)
	assert.Equal(t, "Artemis", launch.Mission)
}

func TestNewLaunch_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LaunchInput)
		fields []string
	}{
		{"empty payload", func(in *LaunchInput) { *in = LaunchInput{} }, []string{"mission", "rocket", "launchDate", "destination"}},
		{"blank mission", func(in *LaunchInput) { in.Mission = "   " }, []string{"mission"}},
		{"bad date", func(in *LaunchInput) { in.LaunchDate = "someday" }, []string{"launchDate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := NewLaunch(in, 101)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, verr.Fields, f)
			}
		})
	}
}

func TestParseLaunchDate(t *testing.T) {
	want := time.Date(2030, time.December, 27, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{
		"December 27, 2030",
		"Dec 27, 2030",
		"December 27 2030",
		"2030-12-27",
		"2030-12-27T00:00:00Z",
		" Dec 27, 2030 ",
	} {
		got, err := ParseLaunchDate(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	_, err := ParseLaunchDate("27/12/2030")
	assert.Error(t, err)
}

func TestSeedLaunch(t *testing.T) {
	seed := SeedLaunch()
	assert.Equal(t, int64(SeedFlightNumber), seed.FlightNumber)
	assert.Equal(t, "Kepler Exploration X", seed.Mission)
	assert.Equal(t, []string{"ZTM", "NASA"}, seed.Customer)

	// each call hands out its own customer slice
	seed.Customer[0] = "changed"
	assert.Equal(t, "ZTM", SeedLaunch().Customer[0])
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"rocket": "cannot be blank", "mission": "cannot be blank"}}
	assert.Equal(t, "invalid input: mission: cannot be blank; rocket: cannot be blank", err.Error())
}

func TestNewLaunch_DateSurvivesBSON(t *testing.T) {
	in := validInput()
	in.LaunchDate = "2030-12-27T10:11:12.123456789Z"

	created, err := NewLaunch(in, 101)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, time.December, 27, 10, 11, 12, 123000000, time.UTC), created.LaunchDate)

	raw, err := bson.Marshal(created)
	require.NoError(t, err)

	var listed Launch
	require.NoError(t, bson.Unmarshal(raw, &listed))
	listed.LaunchDate = listed.LaunchDate.UTC()
	assert.Equal(t, created, listed)
}

func TestParseLaunchDate_TruncatesToMilliseconds(t *testing.T) {
	got, err := ParseLaunchDate("2030-12-27T10:11:12.999999+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, time.December, 27, 8, 11, 12, 999000000, time.UTC), got)
}
