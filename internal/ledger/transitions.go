package ledger

import (
	"fmt"
	"time"

	"fieldops-backend/internal/model"
)

// DateLayout is the format new assignment dates are written with. Parsing
// on the read side additionally tolerates legacy DD/MM/YYYY values.
const DateLayout = "2006-01-02"

// ValidationError reports a malformed intent. It is returned before any
// aggregate is mutated or persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func missing(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "must not be empty"}
}

// CreateIntent describes a new piece of equipment entering inventory.
type CreateIntent struct {
	Name         string
	Description  string
	SerialNumber string
	ImageURL     string
}

// Validate checks the intent's required fields.
func (in CreateIntent) Validate() error {
	if in.Name == "" {
		return missing("name")
	}
	if in.SerialNumber == "" {
		return missing("serialNumber")
	}
	return nil
}

// AssignIntent describes a deployment of an asset to a client site.
type AssignIntent struct {
	ClientID     string
	SiteName     string
	OperatorName string
	ApproverName string
	Notes        string
	EvidenceURL  string
}

// Validate checks the intent's required fields. ClientID is optional:
// legacy assignments key on the site name alone.
func (in AssignIntent) Validate() error {
	if in.SiteName == "" {
		return missing("siteName")
	}
	if in.OperatorName == "" {
		return missing("operatorName")
	}
	if in.ApproverName == "" {
		return missing("approverName")
	}
	return nil
}

// WorkshopIntent describes sending an asset out for repair.
type WorkshopIntent struct {
	WorkshopName   string
	ReceivedByName string
	Reason         string
	Notes          string
	EvidenceURL    string
}

// Validate checks the intent's required fields.
func (in WorkshopIntent) Validate() error {
	if in.WorkshopName == "" {
		return missing("workshopName")
	}
	if in.ReceivedByName == "" {
		return missing("receivedByName")
	}
	if in.Reason == "" {
		return missing("reason")
	}
	return nil
}

// NewAsset builds a fresh aggregate in Available status with the seed
// audit entry. IDs are minted by the caller so the function stays
// deterministic.
func NewAsset(id, seedLogID string, in CreateIntent, now time.Time, actor string) *model.Asset {
	return &model.Asset{
		ID:                 id,
		Name:               in.Name,
		Description:        in.Description,
		SerialNumber:       in.SerialNumber,
		ImageURL:           in.ImageURL,
		Status:             model.StatusAvailable,
		AssignmentHistory:  []model.AssignmentRecord{},
		MaintenanceHistory: []model.MaintenanceRecord{},
		StatusLog: []model.StatusLogEntry{{
			ID:             seedLogID,
			OccurredAt:     now,
			PreviousStatus: model.StatusAvailable,
			NewStatus:      model.StatusAvailable,
			Actor:          actor,
			Reason:         "Initial intake",
		}},
	}
}

// ApplyAssign opens a new assignment period. An already assigned asset is
// re-assigned: the open record is closed at now and a fresh one opened.
func ApplyAssign(a *model.Asset, in AssignIntent, logID string, now time.Time, actor string) (*model.Asset, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	out := a.Clone()
	closeOpenAssignment(out, now)

	record := model.AssignmentRecord{
		ClientID:          in.ClientID,
		SiteName:          in.SiteName,
		OperatorName:      in.OperatorName,
		ApproverName:      in.ApproverName,
		OperatorSignature: "SIGNED_BY_" + in.OperatorName,
		ApproverSignature: "SIGNED_BY_" + in.ApproverName,
		StartDate:         now.Format(DateLayout),
		Notes:             in.Notes,
		EvidenceURL:       in.EvidenceURL,
	}
	out.AssignmentHistory = append([]model.AssignmentRecord{record}, out.AssignmentHistory...)
	appendLog(out, logID, now, actor, model.StatusAssigned,
		fmt.Sprintf("Assigned: %s at %s", in.OperatorName, in.SiteName))
	out.Status = model.StatusAssigned
	return out, nil
}

// ApplySendToWorkshop records a repair cycle. An open assignment is closed
// first: the equipment is presumed retrieved before shipment.
func ApplySendToWorkshop(a *model.Asset, in WorkshopIntent, recordID, logID string, now time.Time, actor string) (*model.Asset, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	out := a.Clone()
	closeOpenAssignment(out, now)

	record := model.MaintenanceRecord{
		ID:             recordID,
		EnteredAt:      now,
		WorkshopName:   in.WorkshopName,
		ReceivedByName: in.ReceivedByName,
		Reason:         in.Reason,
		Notes:          in.Notes,
		EvidenceURL:    in.EvidenceURL,
	}
	out.MaintenanceHistory = append([]model.MaintenanceRecord{record}, out.MaintenanceHistory...)
	appendLog(out, logID, now, actor, model.StatusInWorkshop,
		fmt.Sprintf("Workshop: %s (%s)", in.Reason, in.WorkshopName))
	out.Status = model.StatusInWorkshop
	return out, nil
}

// ApplyChangeStatus moves the asset directly to Available or Inactive.
// Assignments and workshop entries go through their own operations. When
// the asset is already in the target status the aggregate is returned
// unchanged with no log entry.
func ApplyChangeStatus(a *model.Asset, newStatus model.AssetStatus, reason, logID string, now time.Time, actor string) (*model.Asset, error) {
	if newStatus != model.StatusAvailable && newStatus != model.StatusInactive {
		return nil, &ValidationError{Field: "newStatus", Reason: fmt.Sprintf("cannot change status directly to %s", newStatus)}
	}
	if a.Status == newStatus {
		return a, nil
	}

	if reason == "" {
		if newStatus == model.StatusAvailable {
			reason = "Released / returned to stock"
		} else {
			reason = "Administrative deactivation"
		}
	}

	out := a.Clone()
	if out.Status == model.StatusAssigned {
		closeOpenAssignment(out, now)
	}
	appendLog(out, logID, now, actor, newStatus, reason)
	out.Status = newStatus
	return out, nil
}

// closeOpenAssignment stamps the end date of the open assignment, if any.
// Only the most recent history element can be open.
func closeOpenAssignment(a *model.Asset, now time.Time) {
	if len(a.AssignmentHistory) > 0 && a.AssignmentHistory[0].Open() {
		a.AssignmentHistory[0].EndDate = now.Format(DateLayout)
	}
}

// appendLog prepends an audit entry; the log is kept newest first and
// existing entries are never touched.
func appendLog(a *model.Asset, id string, now time.Time, actor string, newStatus model.AssetStatus, reason string) {
	entry := model.StatusLogEntry{
		ID:             id,
		OccurredAt:     now,
		PreviousStatus: a.Status,
		NewStatus:      newStatus,
		Actor:          actor,
		Reason:         reason,
	}
	a.StatusLog = append([]model.StatusLogEntry{entry}, a.StatusLog...)
}
