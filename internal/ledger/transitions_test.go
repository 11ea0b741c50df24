package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops-backend/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func newTestAsset(t *testing.T) *model.Asset {
	t.Helper()
	return NewAsset("asset-1", "log-0", CreateIntent{
		Name:         "Pulidora Industrial",
		Description:  "Makita - 9 pulgadas, 2200W",
		SerialNumber: "SN-001",
		ImageURL:     "https://example.com/tool.jpg",
	}, date(2024, 1, 1), "M. Diaz")
}

// openAssignments counts history entries without an end date.
func openAssignments(a *model.Asset) int {
	n := 0
	for _, r := range a.AssignmentHistory {
		if r.Open() {
			n++
		}
	}
	return n
}

func TestNewAsset(t *testing.T) {
	a := newTestAsset(t)

	assert.Equal(t, model.StatusAvailable, a.Status)
	assert.Equal(t, "SN-001", a.SerialNumber)
	assert.Empty(t, a.AssignmentHistory)
	assert.Empty(t, a.MaintenanceHistory)
	assert.Nil(t, a.ActiveAssignment())

	require.Len(t, a.StatusLog, 1)
	seed := a.StatusLog[0]
	assert.Equal(t, model.StatusAvailable, seed.PreviousStatus)
	assert.Equal(t, model.StatusAvailable, seed.NewStatus)
	assert.Equal(t, "Initial intake", seed.Reason)
	assert.Equal(t, "M. Diaz", seed.Actor)
}

func TestApplyAssign(t *testing.T) {
	a := newTestAsset(t)

	updated, err := ApplyAssign(a, AssignIntent{
		ClientID:     "CL-001",
		SiteName:     "Acme Corp",
		OperatorName: "J. Perez",
		ApproverName: "M. Diaz",
	}, "log-1", date(2024, 1, 10), "M. Diaz")
	require.NoError(t, err)

	assert.Equal(t, model.StatusAssigned, updated.Status)
	require.Len(t, updated.AssignmentHistory, 1)

	record := updated.AssignmentHistory[0]
	assert.Equal(t, "CL-001", record.ClientID)
	assert.Equal(t, "Acme Corp", record.SiteName)
	assert.Equal(t, "2024-01-10", record.StartDate)
	assert.Empty(t, record.EndDate)
	assert.Equal(t, "SIGNED_BY_J. Perez", record.OperatorSignature)
	assert.Equal(t, "SIGNED_BY_M. Diaz", record.ApproverSignature)

	require.NotNil(t, updated.ActiveAssignment())
	assert.Equal(t, record, *updated.ActiveAssignment())

	require.Len(t, updated.StatusLog, 2)
	assert.Equal(t, model.StatusAvailable, updated.StatusLog[0].PreviousStatus)
	assert.Equal(t, model.StatusAssigned, updated.StatusLog[0].NewStatus)
	assert.Equal(t, "Assigned: J. Perez at Acme Corp", updated.StatusLog[0].Reason)

	// The input aggregate is untouched.
	assert.Equal(t, model.StatusAvailable, a.Status)
	assert.Empty(t, a.AssignmentHistory)
}

func TestApplyAssign_ValidationBeforeMutation(t *testing.T) {
	a := newTestAsset(t)

	testCases := []struct {
		name   string
		intent AssignIntent
		field  string
	}{
		{"missing site", AssignIntent{OperatorName: "J", ApproverName: "M"}, "siteName"},
		{"missing operator", AssignIntent{SiteName: "Acme", ApproverName: "M"}, "operatorName"},
		{"missing approver", AssignIntent{SiteName: "Acme", OperatorName: "J"}, "approverName"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ApplyAssign(a, tc.intent, "log-x", date(2024, 1, 10), "M. Diaz")
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestApplyAssign_ReassignClosesOpenAssignment(t *testing.T) {
	a := newTestAsset(t)
	d1 := date(2024, 1, 10)
	d2 := date(2024, 2, 20)

	first, err := ApplyAssign(a, AssignIntent{SiteName: "Acme Corp", OperatorName: "J. Perez", ApproverName: "M. Diaz"}, "log-1", d1, "M. Diaz")
	require.NoError(t, err)

	second, err := ApplyAssign(first, AssignIntent{SiteName: "Globex", OperatorName: "R. Soto", ApproverName: "M. Diaz"}, "log-2", d2, "M. Diaz")
	require.NoError(t, err)

	require.Len(t, second.AssignmentHistory, 2)
	assert.Equal(t, "2024-02-20", second.AssignmentHistory[0].StartDate)
	assert.Empty(t, second.AssignmentHistory[0].EndDate)
	assert.Equal(t, "2024-01-10", second.AssignmentHistory[1].StartDate)
	assert.Equal(t, "2024-02-20", second.AssignmentHistory[1].EndDate)

	assert.Equal(t, 1, openAssignments(second))
}

func TestApplySendToWorkshop(t *testing.T) {
	a := newTestAsset(t)

	assigned, err := ApplyAssign(a, AssignIntent{
		ClientID: "CL-001", SiteName: "Acme Corp",
		OperatorName: "J. Perez", ApproverName: "M. Diaz",
	}, "log-1", date(2024, 1, 10), "M. Diaz")
	require.NoError(t, err)

	inWorkshop, err := ApplySendToWorkshop(assigned, WorkshopIntent{
		WorkshopName:   "TechFix",
		ReceivedByName: "R. Lopez",
		Reason:         "Motor noise",
	}, "maint-1", "log-2", date(2024, 3, 1), "M. Diaz")
	require.NoError(t, err)

	assert.Equal(t, model.StatusInWorkshop, inWorkshop.Status)
	assert.Nil(t, inWorkshop.ActiveAssignment())

	// The assignment was closed at the workshop date.
	require.Len(t, inWorkshop.AssignmentHistory, 1)
	assert.Equal(t, "2024-03-01", inWorkshop.AssignmentHistory[0].EndDate)

	require.Len(t, inWorkshop.MaintenanceHistory, 1)
	maint := inWorkshop.MaintenanceHistory[0]
	assert.Equal(t, "TechFix", maint.WorkshopName)
	assert.Equal(t, "R. Lopez", maint.ReceivedByName)
	assert.Equal(t, date(2024, 3, 1), maint.EnteredAt)

	require.Len(t, inWorkshop.StatusLog, 3)
	assert.Equal(t, "Workshop: Motor noise (TechFix)", inWorkshop.StatusLog[0].Reason)
	assert.Equal(t, model.StatusAssigned, inWorkshop.StatusLog[0].PreviousStatus)
}

func TestApplySendToWorkshop_Validation(t *testing.T) {
	a := newTestAsset(t)

	_, err := ApplySendToWorkshop(a, WorkshopIntent{WorkshopName: "TechFix"}, "m", "l", date(2024, 3, 1), "M. Diaz")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "receivedByName", vErr.Field)
}

func TestApplyChangeStatus(t *testing.T) {
	t.Run("no-op returns the aggregate unchanged", func(t *testing.T) {
		a := newTestAsset(t)
		out, err := ApplyChangeStatus(a, model.StatusAvailable, "", "log-x", date(2024, 1, 2), "M. Diaz")
		require.NoError(t, err)
		assert.Same(t, a, out)
		assert.Len(t, out.StatusLog, 1)
	})

	t.Run("rejects direct moves to Assigned or InWorkshop", func(t *testing.T) {
		a := newTestAsset(t)
		for _, target := range []model.AssetStatus{model.StatusAssigned, model.StatusInWorkshop} {
			_, err := ApplyChangeStatus(a, target, "", "log-x", date(2024, 1, 2), "M. Diaz")
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
		}
	})

	t.Run("default reasons", func(t *testing.T) {
		a := newTestAsset(t)
		inactive, err := ApplyChangeStatus(a, model.StatusInactive, "", "log-1", date(2024, 1, 2), "Admin")
		require.NoError(t, err)
		assert.Equal(t, "Administrative deactivation", inactive.StatusLog[0].Reason)

		reactivated, err := ApplyChangeStatus(inactive, model.StatusAvailable, "", "log-2", date(2024, 1, 3), "Admin")
		require.NoError(t, err)
		assert.Equal(t, "Released / returned to stock", reactivated.StatusLog[0].Reason)
		assert.Equal(t, model.StatusAvailable, reactivated.Status)
	})

	t.Run("caller reason overrides the default", func(t *testing.T) {
		a := newTestAsset(t)
		out, err := ApplyChangeStatus(a, model.StatusInactive, "Stolen from site", "log-1", date(2024, 1, 2), "Admin")
		require.NoError(t, err)
		assert.Equal(t, "Stolen from site", out.StatusLog[0].Reason)
	})

	t.Run("leaving Assigned closes the open assignment", func(t *testing.T) {
		a := newTestAsset(t)
		assigned, err := ApplyAssign(a, AssignIntent{SiteName: "Acme", OperatorName: "J", ApproverName: "M"}, "log-1", date(2024, 1, 10), "M")
		require.NoError(t, err)

		released, err := ApplyChangeStatus(assigned, model.StatusAvailable, "", "log-2", date(2024, 1, 20), "M")
		require.NoError(t, err)
		assert.Equal(t, "2024-01-20", released.AssignmentHistory[0].EndDate)
		assert.Nil(t, released.ActiveAssignment())
		assert.Equal(t, 0, openAssignments(released))
	})
}

// TestSingleOpenAssignmentInvariant runs a mixed operation sequence and
// checks that at most one assignment is ever open.
func TestSingleOpenAssignmentInvariant(t *testing.T) {
	a := newTestAsset(t)
	now := date(2024, 1, 1)
	step := func(next *model.Asset, err error) *model.Asset {
		require.NoError(t, err)
		assert.LessOrEqual(t, openAssignments(next), 1)
		now = now.AddDate(0, 0, 7)
		return next
	}

	a = step(ApplyAssign(a, AssignIntent{SiteName: "Acme", OperatorName: "J", ApproverName: "M"}, "l1", now, "M"))
	a = step(ApplyAssign(a, AssignIntent{SiteName: "Globex", OperatorName: "R", ApproverName: "M"}, "l2", now, "M"))
	a = step(ApplySendToWorkshop(a, WorkshopIntent{WorkshopName: "TechFix", ReceivedByName: "R", Reason: "Broken"}, "m1", "l3", now, "M"))
	a = step(ApplyChangeStatus(a, model.StatusAvailable, "", "l4", now, "M"))
	a = step(ApplyAssign(a, AssignIntent{SiteName: "Initech", OperatorName: "P", ApproverName: "M"}, "l5", now, "M"))
	a = step(ApplyChangeStatus(a, model.StatusInactive, "", "l6", now, "Admin"))

	assert.Equal(t, 0, openAssignments(a))
	assert.Equal(t, model.StatusInactive, a.Status)
}

// TestAppendOnlyAudit checks that existing log entries never change and
// the log only grows across non-no-op operations.
func TestAppendOnlyAudit(t *testing.T) {
	a := newTestAsset(t)
	snapshot := append([]model.StatusLogEntry(nil), a.StatusLog...)

	assigned, err := ApplyAssign(a, AssignIntent{SiteName: "Acme", OperatorName: "J", ApproverName: "M"}, "l1", date(2024, 1, 10), "M")
	require.NoError(t, err)
	assert.Greater(t, len(assigned.StatusLog), len(snapshot))
	assert.Equal(t, snapshot, assigned.StatusLog[len(assigned.StatusLog)-len(snapshot):])

	snapshot = append([]model.StatusLogEntry(nil), assigned.StatusLog...)
	released, err := ApplyChangeStatus(assigned, model.StatusAvailable, "", "l2", date(2024, 1, 20), "M")
	require.NoError(t, err)
	assert.Greater(t, len(released.StatusLog), len(snapshot))
	assert.Equal(t, snapshot, released.StatusLog[len(released.StatusLog)-len(snapshot):])
}

func TestCreateIntentValidate(t *testing.T) {
	assert.Error(t, CreateIntent{SerialNumber: "SN-1"}.Validate())
	assert.Error(t, CreateIntent{Name: "Drill"}.Validate())
	assert.NoError(t, CreateIntent{Name: "Drill", SerialNumber: "SN-1"}.Validate())
}
