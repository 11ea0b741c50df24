package model

import "time"

// AssetStatus is the operational state of a piece of equipment.
type AssetStatus string

const (
	StatusAvailable  AssetStatus = "Available"
	StatusAssigned   AssetStatus = "Assigned"
	StatusInWorkshop AssetStatus = "InWorkshop"
	StatusInactive   AssetStatus = "Inactive"
)

// Valid reports whether s is one of the four known states.
func (s AssetStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusAssigned, StatusInWorkshop, StatusInactive:
		return true
	}
	return false
}

// AssignmentRecord is one assignment period of an asset to a client site.
// Dates are stored textually; legacy rows may carry DD/MM/YYYY values.
// An empty EndDate means the assignment is still open.
type AssignmentRecord struct {
	ClientID          string `json:"clientId,omitempty"`
	SiteName          string `json:"siteName"`
	OperatorName      string `json:"operatorName"`
	ApproverName      string `json:"approverName"`
	OperatorSignature string `json:"operatorSignature,omitempty"`
	ApproverSignature string `json:"approverSignature,omitempty"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate,omitempty"`
	Notes             string `json:"notes,omitempty"`
	EvidenceURL       string `json:"evidenceUrl,omitempty"`
}

// Open reports whether the assignment has not been closed yet.
func (r AssignmentRecord) Open() bool {
	return r.EndDate == ""
}

// MaintenanceRecord is one workshop cycle. Records are never closed; a
// transition out of InWorkshop only appends a status log entry.
type MaintenanceRecord struct {
	ID             string    `json:"id"`
	EnteredAt      time.Time `json:"enteredAt"`
	WorkshopName   string    `json:"workshopName"`
	ReceivedByName string    `json:"receivedByName"`
	Reason         string    `json:"reason"`
	Notes          string    `json:"notes,omitempty"`
	EvidenceURL    string    `json:"evidenceUrl,omitempty"`
}

// StatusLogEntry is one immutable audit fact. Entries are appended to the
// front of the log and never edited or deleted.
type StatusLogEntry struct {
	ID             string      `json:"id"`
	OccurredAt     time.Time   `json:"occurredAt"`
	PreviousStatus AssetStatus `json:"previousStatus"`
	NewStatus      AssetStatus `json:"newStatus"`
	Actor          string      `json:"actor"`
	Reason         string      `json:"reason"`
}

// Asset is the aggregate root: one unit of tracked equipment plus its
// embedded assignment, maintenance and audit collections. The collections
// are persisted as JSON-array columns on the asset row.
type Asset struct {
	ID           string `gorm:"primaryKey;size:64" json:"id"`
	Name         string `gorm:"size:256;not null" json:"name"`
	Description  string `gorm:"size:1024" json:"description"`
	SerialNumber string `gorm:"column:serial_number;index;size:128" json:"serialNumber"`
	ImageURL     string `gorm:"column:image_url;size:2048" json:"imageUrl"`

	Status AssetStatus `gorm:"size:32;not null" json:"status"`

	AssignmentHistory  []AssignmentRecord  `gorm:"column:history;serializer:json" json:"history"`
	MaintenanceHistory []MaintenanceRecord `gorm:"column:maintenance_log;serializer:json" json:"maintenanceLog"`
	StatusLog          []StatusLogEntry    `gorm:"column:status_logs;serializer:json" json:"statusLogs"`

	// Version backs the compare-and-swap at SaveAsset.
	Version int64 `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName keeps the table name of the original backing store.
func (Asset) TableName() string { return "inventory_items" }

// ActiveAssignment returns the currently open assignment, present iff the
// asset is Assigned. It is always the most recent history element.
func (a *Asset) ActiveAssignment() *AssignmentRecord {
	if a.Status != StatusAssigned || len(a.AssignmentHistory) == 0 {
		return nil
	}
	if a.AssignmentHistory[0].Open() {
		return &a.AssignmentHistory[0]
	}
	return nil
}

// Clone returns a deep copy of the aggregate. Record types are plain
// values, so copying the backing slices is sufficient.
func (a *Asset) Clone() *Asset {
	out := *a
	out.AssignmentHistory = append([]AssignmentRecord(nil), a.AssignmentHistory...)
	out.MaintenanceHistory = append([]MaintenanceRecord(nil), a.MaintenanceHistory...)
	out.StatusLog = append([]StatusLogEntry(nil), a.StatusLog...)
	return &out
}
