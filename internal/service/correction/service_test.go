package correction

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/staff"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCorrectionRepo struct {
	items map[string]attendance.CorrectionRequest
}

func newMemoryCorrectionRepo() *memoryCorrectionRepo {
	return &memoryCorrectionRepo{items: make(map[string]attendance.CorrectionRequest)}
}

func (m *memoryCorrectionRepo) List(ctx context.Context, staffID string, from, to time.Time) ([]attendance.CorrectionRequest, error) {
	var out []attendance.CorrectionRequest
	f, t := from.Format("2006-01-02"), to.Format("2006-01-02")
	for _, c := range m.items {
		if c.StaffID == staffID && c.Date >= f && c.Date <= t {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryCorrectionRepo) GetByID(ctx context.Context, id string) (attendance.CorrectionRequest, error) {
	c, ok := m.items[id]
	if !ok {
		return attendance.CorrectionRequest{}, attendance.ErrCorrectionNotFound
	}
	return c, nil
}

func (m *memoryCorrectionRepo) Create(ctx context.Context, c attendance.CorrectionRequest) (attendance.CorrectionRequest, error) {
	m.items[c.ID] = c
	return c, nil
}

func (m *memoryCorrectionRepo) Update(ctx context.Context, c attendance.CorrectionRequest) error {
	if _, ok := m.items[c.ID]; !ok {
		return attendance.ErrCorrectionNotFound
	}
	m.items[c.ID] = c
	return nil
}

func (m *memoryCorrectionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return attendance.ErrCorrectionNotFound
	}
	delete(m.items, id)
	return nil
}

type staticStaffRepo struct{}

func (staticStaffRepo) GetByID(ctx context.Context, id string) (staff.Staff, error) {
	if id == "S001" {
		return staff.Staff{ID: id, Type: staff.TypeAdmin, Active: true}, nil
	}
	return staff.Staff{}, staff.ErrStaffNotFound
}

func (staticStaffRepo) ListActive(ctx context.Context) ([]staff.Staff, error) {
	return nil, nil
}

type recordingInvalidator struct {
	staffIDs []string
}

func (r *recordingInvalidator) InvalidateCorrections(staffID string) {
	r.staffIDs = append(r.staffIDs, staffID)
}

type passthroughTx struct {
	calls int
}

func (p *passthroughTx) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

func newTestService() (*CorrectionServiceImpl, *memoryCorrectionRepo, *recordingInvalidator, *passthroughTx) {
	repo := newMemoryCorrectionRepo()
	inv := &recordingInvalidator{}
	tx := &passthroughTx{}
	svc := NewCorrectionService(tx, repo, staticStaffRepo{}, inv).(*CorrectionServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC) }
	return svc, repo, inv, tx
}

func validCreate() attendance.CreateCorrectionRequest {
	return attendance.CreateCorrectionRequest{
		StaffID:       "S001",
		Date:          "2024-03-04",
		Type:          string(attendance.CorrectionCheckIn),
		RequestedTime: "07:55",
		Reason:        "  device was offline  ",
	}
}

func TestCorrectionService_Create(t *testing.T) {
	svc, repo, inv, _ := newTestService()

	created, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	id, err := uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, attendance.CorrectionPending, created.Status)
	assert.Equal(t, "07:55:00", created.RequestedTime)
	assert.Equal(t, "device was offline", created.Reason)
	assert.Contains(t, repo.items, created.ID)
	assert.Equal(t, []string{"S001"}, inv.staffIDs)
}

func TestCorrectionService_Create_Errors(t *testing.T) {
	svc, repo, _, _ := newTestService()

	t.Run("validation", func(t *testing.T) {
		req := validCreate()
		req.Type = "teleport"
		req.RequestedTime = "25:00"

		_, err := svc.Create(context.Background(), req)

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 2)
	})

	t.Run("unknown staff", func(t *testing.T) {
		req := validCreate()
		req.StaffID = "S404"

		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, staff.ErrStaffNotFound)
	})

	assert.Empty(t, repo.items)
}

func TestCorrectionService_Review(t *testing.T) {
	svc, _, inv, tx := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, attendance.ReviewCorrectionRequest{ID: created.ID, ReviewedBy: "HR01"})
	require.NoError(t, err)

	assert.Equal(t, attendance.CorrectionApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, "HR01", *approved.ReviewedBy)
	require.NotNil(t, approved.ReviewedAt)
	assert.Equal(t, 1, tx.calls)
	assert.Len(t, inv.staffIDs, 2)

	_, err = svc.Reject(ctx, attendance.ReviewCorrectionRequest{ID: created.ID, ReviewedBy: "HR02"})
	assert.ErrorIs(t, err, attendance.ErrCorrectionAlreadyReviewed)

	_, err = svc.Approve(ctx, attendance.ReviewCorrectionRequest{ID: "missing", ReviewedBy: "HR01"})
	assert.ErrorIs(t, err, attendance.ErrCorrectionNotFound)
}

func TestCorrectionService_Reject(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, attendance.ReviewCorrectionRequest{ID: created.ID, ReviewedBy: "HR01"})
	require.NoError(t, err)
	assert.Equal(t, attendance.CorrectionRejected, rejected.Status)
	assert.Equal(t, attendance.CorrectionRejected, repo.items[created.ID].Status)
}

func TestCorrectionService_ListAndDelete(t *testing.T) {
	svc, _, inv, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)
	second := validCreate()
	second.Date = "2024-03-05"
	other, err := svc.Create(ctx, second)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, attendance.ReviewCorrectionRequest{ID: other.ID, ReviewedBy: "HR01"})
	require.NoError(t, err)

	all, err := svc.List(ctx, attendance.CorrectionFilter{StaffID: "S001", StartDate: "2024-03-01", EndDate: "2024-03-31"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending := string(attendance.CorrectionPending)
	onlyPending, err := svc.List(ctx, attendance.CorrectionFilter{StaffID: "S001", StartDate: "2024-03-01", EndDate: "2024-03-31", Status: &pending})
	require.NoError(t, err)
	require.Len(t, onlyPending, 1)
	assert.Equal(t, first.ID, onlyPending[0].ID)

	require.NoError(t, svc.Delete(ctx, first.ID))
	assert.ErrorIs(t, svc.Delete(ctx, first.ID), attendance.ErrCorrectionNotFound)
	assert.Equal(t, "S001", inv.staffIDs[len(inv.staffIDs)-1])
}
