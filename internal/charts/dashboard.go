package charts

import dashboard "monitoring-console/internal/dashboard/domain"

// CategoryChart is a single series over named categories.
type CategoryChart struct {
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	Values     []int    `json:"values"`
}

// AlarmsChart plots alarm counts by status.
func AlarmsChart(s *dashboard.AlarmsSummary) CategoryChart {
	chart := CategoryChart{Kind: KindColumn, Name: "Alarms", Categories: []string{"Active", "Acknowledged", "Closed"}, Values: []int{0, 0, 0}}
	if s != nil {
		chart.Values = []int{s.ChartInfo.Active, s.ChartInfo.Acknowledged, s.ChartInfo.Closed}
	}
	return chart
}

// RulesChart plots rule counts by status.
func RulesChart(s *dashboard.RulesSummary) CategoryChart {
	chart := CategoryChart{Kind: "pie", Name: "Rules Status", Categories: []string{"Active", "Paused"}, Values: []int{0, 0}}
	if s != nil {
		chart.Values = []int{s.ChartInfo.Active, s.ChartInfo.Paused}
	}
	return chart
}

// ReportsChart plots report counts by origin.
func ReportsChart(s *dashboard.ReportsSummary) CategoryChart {
	chart := CategoryChart{Kind: "pie", Name: "Reports Status", Categories: []string{"Manual", "Scheduled"}, Values: []int{0, 0}}
	if s != nil {
		chart.Values = []int{s.ChartInfo.Manual, s.ChartInfo.Scheduled}
	}
	return chart
}
