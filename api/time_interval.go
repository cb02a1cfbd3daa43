package api

// TimeInterval specifies the bar frequency to query.
type TimeInterval uint8

const (
	TimeIntervalDaily TimeInterval = iota
	TimeIntervalWeekly
	TimeIntervalMonthly
)

func (t TimeInterval) Name() string {
	switch t {
	case TimeIntervalDaily:
		return "TimeIntervalDaily"
	case TimeIntervalWeekly:
		return "TimeIntervalWeekly"
	case TimeIntervalMonthly:
		return "TimeIntervalMonthly"
	default:
		return ""
	}
}

// Yahoo is the chart api interval parameter.
func (t TimeInterval) Yahoo() string {
	switch t {
	case TimeIntervalDaily:
		return "1d"
	case TimeIntervalWeekly:
		return "1wk"
	case TimeIntervalMonthly:
		return "1mo"
	default:
		return ""
	}
}
