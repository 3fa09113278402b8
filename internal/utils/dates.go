package utils

import "time"

// ISODate is the wire format for expiration dates throughout the service.
const ISODate = "2006-01-02"

// DaysUntil returns the whole days from now until the ISO date, never below
// zero. Unparseable dates count as zero days away.
func DaysUntil(iso string, now time.Time) int {
	exp, err := time.Parse(ISODate, iso)
	if err != nil {
		return 0
	}
	days := int(exp.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// NextMonthlyExpiration returns the next standard monthly options expiration
// (third Friday) in ISO format:
// - third Friday of the current month if it hasn't passed yet
// - otherwise the third Friday of the next month
func NextMonthlyExpiration(today time.Time) string {
	third := thirdFriday(today.Year(), today.Month())
	if today.After(third) {
		next := today.AddDate(0, 1, 0)
		third = thirdFriday(next.Year(), next.Month())
	}
	return third.Format(ISODate)
}

func thirdFriday(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	firstFriday := first.AddDate(0, 0, (int(time.Friday)-int(first.Weekday())+7)%7)
	return firstFriday.AddDate(0, 0, 14)
}
