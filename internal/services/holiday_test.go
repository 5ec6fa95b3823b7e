package services

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestHolidayService_IsWorkday(t *testing.T) {
	s := NewHolidayService("")

	tests := []struct {
		date    string
		country string
		want    bool
	}{
		{"2024-01-06", CountryWeekendsOnly, false}, // Saturday
		{"2024-01-08", CountryWeekendsOnly, true},
		{"2024-12-25", "US", false},
		{"2024-12-25", CountryWeekendsOnly, true},
		{"2024-10-01", CountryChina, false}, // National Day
		{"2024-01-08", "XX", true},          // unknown country falls back to weekends
	}

	for _, tt := range tests {
		if got := s.IsWorkday(day(tt.date), tt.country); got != tt.want {
			t.Errorf("IsWorkday(%s, %s) = %v, expected %v", tt.date, tt.country, got, tt.want)
		}
	}
}

func TestHolidayService_WorkingDaysBetween(t *testing.T) {
	s := NewHolidayService(CountryWeekendsOnly)

	if got := s.WorkingDaysBetween(day("2024-01-05"), day("2024-01-08")); got != 1 {
		t.Errorf("Fri to Mon = %d, expected 1", got)
	}
	if got := s.WorkingDaysBetween(day("2024-01-01"), day("2024-01-15")); got != 10 {
		t.Errorf("two weeks = %d, expected 10", got)
	}
	if got := s.WorkingDaysBetween(day("2024-01-08"), day("2024-01-01")); got != -5 {
		t.Errorf("backwards = %d, expected -5", got)
	}
	if got := s.WorkingDaysBetween(day("2024-01-08"), day("2024-01-08")); got != 0 {
		t.Errorf("same day = %d, expected 0", got)
	}

	us := NewHolidayService("US")
	if got := us.WorkingDaysBetween(day("2024-12-24"), day("2024-12-26")); got != 1 {
		t.Errorf("over Christmas = %d, expected 1", got)
	}
}

func TestHolidayService_GetSupportedCountries(t *testing.T) {
	s := NewHolidayService("")
	countries := s.GetSupportedCountries()
	if len(countries) == 0 {
		t.Fatal("expected supported countries")
	}
	if countries[0].Code != CountryChina || countries[len(countries)-1].Code != CountryWeekendsOnly {
		t.Errorf("unexpected ordering: first %s, last %s", countries[0].Code, countries[len(countries)-1].Code)
	}
	if s.Country() != CountryWeekendsOnly {
		t.Errorf("default country = %s", s.Country())
	}
}
