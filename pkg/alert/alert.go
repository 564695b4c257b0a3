package alert

import (
	"context"
	"errors"
	"fmt"
)

// Standing is one row of a campaign's ranking, carried in notifications.
type Standing struct {
	KOLID      int64   `json:"kol_id"`
	KOLName    string  `json:"kol_name"`
	FinalScore float64 `json:"final_score"`
	Ranking    int     `json:"ranking"`
}

// Notification is the data sent to alert destinations when a campaign's
// ranking changes.
type Notification struct {
	CampaignID   int64      `json:"campaign_id"`
	CampaignName string     `json:"campaign_name"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	TopKOL       string     `json:"top_kol"`
	TopScore     float64    `json:"top_score"`
	Standings    []Standing `json:"standings"`
}

// Notifier delivers alerts to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}

// Manager broadcasts notifications to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new alert manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a notification to all registered notifiers.
func (m *Manager) Broadcast(ctx context.Context, n *Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}
