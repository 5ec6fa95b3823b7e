package services

import (
	"time"

	"github.com/6tail/lunar-go/HolidayUtil"
	"github.com/6tail/lunar-go/calendar"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/at"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/be"
	"github.com/rickar/cal/v2/br"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/ch"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/dk"
	"github.com/rickar/cal/v2/es"
	"github.com/rickar/cal/v2/fi"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/ie"
	"github.com/rickar/cal/v2/it"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/no"
	"github.com/rickar/cal/v2/nz"
	"github.com/rickar/cal/v2/pl"
	"github.com/rickar/cal/v2/pt"
	"github.com/rickar/cal/v2/se"
	"github.com/rickar/cal/v2/us"
)

const (
	CountryChina        = "CN"
	CountryWeekendsOnly = "NONE"
)

// maxWorkdaySpan caps the day-by-day walk in WorkingDaysBetween.
const maxWorkdaySpan = 3660

type CountryInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// HolidayService answers working-day questions for shoot and delivery planning.
// Country is an ISO code with a public holiday calendar, CN for the mainland
// China adjusted calendar, or NONE for weekends only.
type HolidayService struct {
	country   string
	calendars map[string]*cal.BusinessCalendar
	countries []CountryInfo
}

func NewHolidayService(country string) *HolidayService {
	if country == "" {
		country = CountryWeekendsOnly
	}
	s := &HolidayService{
		country:   country,
		calendars: make(map[string]*cal.BusinessCalendar),
	}
	s.initCalendars()
	return s
}

func (s *HolidayService) initCalendars() {
	s.add(CountryChina, "China")
	s.add("US", "United States", us.Holidays...)
	s.add("GB", "United Kingdom", gb.Holidays...)
	s.add("DE", "Germany", de.Holidays...)
	s.add("FR", "France", fr.Holidays...)
	s.add("JP", "Japan", jp.Holidays...)
	s.add("AU", "Australia", au.HolidaysNSW...)
	s.add("CA", "Canada", ca.Holidays...)
	s.add("NZ", "New Zealand", nz.Holidays...)
	s.add("IT", "Italy", it.Holidays...)
	s.add("ES", "Spain", es.Holidays...)
	s.add("NL", "Netherlands", nl.Holidays...)
	s.add("BE", "Belgium", be.Holidays...)
	s.add("AT", "Austria", at.Holidays...)
	s.add("CH", "Switzerland", ch.Holidays...)
	s.add("SE", "Sweden", se.Holidays...)
	s.add("NO", "Norway", no.Holidays...)
	s.add("DK", "Denmark", dk.Holidays...)
	s.add("FI", "Finland", fi.Holidays...)
	s.add("PL", "Poland", pl.Holidays...)
	s.add("PT", "Portugal", pt.Holidays...)
	s.add("IE", "Ireland", ie.Holidays...)
	s.add("BR", "Brazil", br.Holidays...)
	s.countries = append(s.countries, CountryInfo{Code: CountryWeekendsOnly, Name: "Weekdays Only (Mon-Fri)"})
}

func (s *HolidayService) add(code, name string, holidays ...*cal.Holiday) {
	s.countries = append(s.countries, CountryInfo{Code: code, Name: name})
	if len(holidays) == 0 {
		return
	}
	c := cal.NewBusinessCalendar()
	c.Name = name
	c.AddHoliday(holidays...)
	s.calendars[code] = c
}

// Country is the calendar used when callers do not name one.
func (s *HolidayService) Country() string {
	return s.country
}

func (s *HolidayService) IsWorkday(t time.Time, countryCode string) bool {
	if countryCode == CountryChina {
		return s.isWorkdayChina(t)
	}

	c, ok := s.calendars[countryCode]
	if !ok {
		return !cal.IsWeekend(t)
	}

	return c.IsWorkday(t)
}

func (s *HolidayService) isWorkdayChina(t time.Time) bool {
	solar := calendar.NewSolarFromDate(t)
	holiday := HolidayUtil.GetHolidayByYmd(solar.GetYear(), solar.GetMonth(), solar.GetDay())

	if holiday != nil {
		return holiday.IsWork()
	}

	weekday := t.Weekday()
	return weekday != time.Saturday && weekday != time.Sunday
}

func (s *HolidayService) IsHoliday(t time.Time, countryCode string) bool {
	return !s.IsWorkday(t, countryCode)
}

// WorkingDaysBetween counts workdays after from, up to and including to, on the
// configured calendar. It is negative when to is before from.
func (s *HolidayService) WorkingDaysBetween(from, to time.Time) int {
	from = truncateDay(from)
	to = truncateDay(to)

	sign := 1
	if to.Before(from) {
		from, to = to, from
		sign = -1
	}

	n := 0
	for d, i := from.AddDate(0, 0, 1), 0; !d.After(to) && i < maxWorkdaySpan; d, i = d.AddDate(0, 0, 1), i+1 {
		if s.IsWorkday(d, s.country) {
			n++
		}
	}
	return sign * n
}

func (s *HolidayService) GetSupportedCountries() []CountryInfo {
	return s.countries
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
