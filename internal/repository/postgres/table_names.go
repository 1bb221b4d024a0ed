package postgres

import "fmt"

// TableNames holds environment-prefixed table names so dev, test and prod
// can share one database.
type TableNames struct {
	Members       string
	Tools         string
	Reservations  string
	Projects      string
	Bids          string
	Budgets       string
	Expenses      string
	Events        string
	Scores        string
	Campaigns     string
	Notifications string
	SyncStates    string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Members:       fmt.Sprintf("%smembers", prefix),
		Tools:         fmt.Sprintf("%stools", prefix),
		Reservations:  fmt.Sprintf("%sreservations", prefix),
		Projects:      fmt.Sprintf("%sprojects", prefix),
		Bids:          fmt.Sprintf("%sbids", prefix),
		Budgets:       fmt.Sprintf("%sbudgets", prefix),
		Expenses:      fmt.Sprintf("%sexpenses", prefix),
		Events:        fmt.Sprintf("%sengagement_events", prefix),
		Scores:        fmt.Sprintf("%sengagement_scores", prefix),
		Campaigns:     fmt.Sprintf("%scampaigns", prefix),
		Notifications: fmt.Sprintf("%snotifications", prefix),
		SyncStates:    fmt.Sprintf("%shubspot_sync_states", prefix),
	}
}
