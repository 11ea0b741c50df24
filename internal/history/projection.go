// Package history serves read-only views derived from the asset
// aggregates. Nothing in here mutates state.
package history

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"fieldops-backend/internal/model"
	"fieldops-backend/internal/store"
)

// dateLayouts are tried in order when parsing assignment dates. New
// records are written as plain ISO dates; legacy rows imported from the
// old system carry DD/MM/YYYY and occasionally full RFC3339 stamps.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	time.RFC3339,
}

// ParseDate parses an assignment date, tolerating the legacy textual
// formats. ok is false when no layout matches.
func ParseDate(s string) (t time.Time, ok bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// FormatDuration renders the length of an assignment period for display.
// Open periods are reported as ongoing rather than a number.
func FormatDuration(startDate, endDate string) string {
	if endDate == "" {
		return "En curso"
	}
	start, okStart := ParseDate(startDate)
	end, okEnd := ParseDate(endDate)
	if !okStart || !okEnd {
		return "En curso"
	}
	days := int(math.Ceil(math.Abs(end.Sub(start).Hours()) / 24))
	return fmt.Sprintf("%d días", days)
}

// ClientAssignment is one assignment period of some asset to the target
// client, flattened for display.
type ClientAssignment struct {
	model.AssignmentRecord
	AssetID   string `json:"assetId"`
	AssetName string `json:"itemName"`
	Serial    string `json:"serial"`
	IsCurrent bool   `json:"isCurrent"`
	Duration  string `json:"duration"`
}

// ClientAssignments collects every assignment of any asset to the given
// client, newest first. Records are matched by client ID, or by site name
// for legacy records that predate client linking. The asset's active
// assignment is tagged as current.
func ClientAssignments(assets []model.Asset, client *model.Client) []ClientAssignment {
	var out []ClientAssignment
	for i := range assets {
		asset := &assets[i]
		active := asset.ActiveAssignment()
		for j, record := range asset.AssignmentHistory {
			if !matches(record, client) {
				continue
			}
			out = append(out, ClientAssignment{
				AssignmentRecord: record,
				AssetID:          asset.ID,
				AssetName:        asset.Name,
				Serial:           asset.SerialNumber,
				IsCurrent:        active != nil && j == 0,
				Duration:         FormatDuration(record.StartDate, record.EndDate),
			})
		}
	}

	// Stable: ties keep insertion order.
	sort.SliceStable(out, func(i, j int) bool {
		di, _ := ParseDate(out[i].StartDate)
		dj, _ := ParseDate(out[j].StartDate)
		return di.After(dj)
	})
	return out
}

func matches(record model.AssignmentRecord, client *model.Client) bool {
	if record.ClientID != "" {
		return record.ClientID == client.ID
	}
	return record.SiteName == client.Name
}

// Timeline is the full per-asset view backing the details modal: the
// aggregate plus per-record display durations.
type Timeline struct {
	Asset            *model.Asset              `json:"asset"`
	ActiveAssignment *model.AssignmentRecord   `json:"assignment,omitempty"`
	Assignments      []TimelineAssignment      `json:"assignments"`
	Maintenance      []model.MaintenanceRecord `json:"maintenanceLog"`
	StatusLog        []model.StatusLogEntry    `json:"statusLogs"`
}

// TimelineAssignment pairs an assignment record with its display duration.
type TimelineAssignment struct {
	model.AssignmentRecord
	Duration string `json:"duration"`
}

// Service answers read queries against the asset collection.
type Service struct {
	store store.Store
}

// NewService creates a history projection over the persistence port.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// ClientHistory returns every assignment period involving the client,
// newest first.
func (s *Service) ClientHistory(ctx context.Context, clientID string) ([]ClientAssignment, error) {
	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	assets, err := s.store.LoadAllAssets(ctx)
	if err != nil {
		return nil, err
	}
	return ClientAssignments(assets, client), nil
}

// AssetTimeline returns the full history view of one asset.
func (s *Service) AssetTimeline(ctx context.Context, assetID string) (*Timeline, error) {
	asset, err := s.store.LoadAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	assignments := make([]TimelineAssignment, 0, len(asset.AssignmentHistory))
	for _, record := range asset.AssignmentHistory {
		assignments = append(assignments, TimelineAssignment{
			AssignmentRecord: record,
			Duration:         FormatDuration(record.StartDate, record.EndDate),
		})
	}
	return &Timeline{
		Asset:            asset,
		ActiveAssignment: asset.ActiveAssignment(),
		Assignments:      assignments,
		Maintenance:      asset.MaintenanceHistory,
		StatusLog:        asset.StatusLog,
	}, nil
}
