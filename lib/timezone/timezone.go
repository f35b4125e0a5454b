package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Dhaka")
	if err != nil {
		panic(err)
	}
}

// force timezone to be in Dhaka because the ERP validates submitted
// dates against factory-local time while our servers may be deployed
// anywhere
func Now() time.Time {
	return time.Now().In(Location)
}

// the factory is closed on Fridays, so a challan punched on a Friday
// is booked against the previous working day
func IssueDate(now time.Time) time.Time {
	now = now.In(Location)
	if now.Weekday() == time.Friday {
		return now.AddDate(0, 0, -1)
	}
	return now
}
