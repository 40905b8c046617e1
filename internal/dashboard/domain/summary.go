package dashboard

import "encoding/json"

// Severity counts shared by the alarms and rules summaries.
type SeverityCounts struct {
	High     int `json:"high"`
	Moderate int `json:"moderate"`
	Low      int `json:"low"`
}

// AlarmsSummary counts alarms by status and severity.
type AlarmsSummary struct {
	ChartInfo struct {
		Active       int `json:"active"`
		Acknowledged int `json:"acknowledged"`
		Closed       int `json:"closed"`
		Total        int `json:"total"`
	} `json:"chartInfo"`
	Status SeverityCounts `json:"status"`
}

// RulesSummary counts rules by status and priority.
type RulesSummary struct {
	ChartInfo struct {
		Active int `json:"active"`
		Paused int `json:"paused"`
		Total  int `json:"total"`
	} `json:"chartInfo"`
	Status SeverityCounts `json:"status"`
}

// ReportsChartInfo counts reports by origin.
type ReportsChartInfo struct {
	Manual    int `json:"manual"`
	Scheduled int `json:"scheduled"`
	Total     int `json:"total"`
}

// UnmarshalJSON accepts the misspelled "cheduled" key some backends send.
func (r *ReportsChartInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		Manual    int  `json:"manual"`
		Scheduled *int `json:"scheduled"`
		Cheduled  *int `json:"cheduled"`
		Total     int  `json:"total"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Manual = raw.Manual
	r.Total = raw.Total
	r.Scheduled = 0
	switch {
	case raw.Scheduled != nil:
		r.Scheduled = *raw.Scheduled
	case raw.Cheduled != nil:
		r.Scheduled = *raw.Cheduled
	}
	return nil
}

// ReportsSummary counts reports by origin.
type ReportsSummary struct {
	ChartInfo ReportsChartInfo `json:"chartInfo"`
}
