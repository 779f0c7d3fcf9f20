package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/Detroit")
	if err != nil {
		panic(err)
	}
}

// force timezone to be Detroit's because the boxes that run the
// scrapers can end up in any region, which will cause disturbances when
// manipulating dates based on <time.Time>.Year()/Month()/Day()/Hour()/...
func Now() time.Time {
	return time.Now().In(Location)
}
