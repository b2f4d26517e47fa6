package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evrim/counselbridge/internal/app/models"
	"github.com/evrim/counselbridge/internal/app/repositories"
	"github.com/evrim/counselbridge/internal/pkg/apperrors"
)

// fakeUserRepo is an in-memory IUserRepository for service tests
type fakeUserRepo struct {
	users  map[string]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.Email]; ok {
		return apperrors.ErrEmailAlreadyExists
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := r.users[email]
	return ok, nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context, role models.RoleType) (int64, error) {
	var count int64
	for _, u := range r.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

// fakeCounselorRepo is an in-memory ICounselorRepository
type fakeCounselorRepo struct {
	counselors map[string]*models.Counselor
	nextID     int64
}

func newFakeCounselorRepo() *fakeCounselorRepo {
	return &fakeCounselorRepo{counselors: make(map[string]*models.Counselor), nextID: 1}
}

func (r *fakeCounselorRepo) Create(_ context.Context, counselor *models.Counselor) error {
	if _, ok := r.counselors[counselor.Email]; ok {
		return apperrors.ErrEmailAlreadyExists
	}
	counselor.ID = r.nextID
	r.nextID++
	r.counselors[counselor.Email] = counselor
	return nil
}

func (r *fakeCounselorRepo) GetByID(_ context.Context, id int64) (*models.Counselor, error) {
	for _, c := range r.counselors {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperrors.ErrCounselorNotFound
}

func (r *fakeCounselorRepo) GetByEmail(_ context.Context, email string) (*models.Counselor, error) {
	if c, ok := r.counselors[email]; ok {
		return c, nil
	}
	return nil, apperrors.ErrCounselorNotFound
}

func (r *fakeCounselorRepo) GetAllAvailable(_ context.Context) ([]*models.Counselor, error) {
	var out []*models.Counselor
	for _, c := range r.counselors {
		if c.IsAvailable {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCounselorRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.counselors)), nil
}

// fakeRequestRepo is an in-memory IConnectionRequestRepository. Insert enforces
// the same one-pending-per-student rule the partial unique index does.
type fakeRequestRepo struct {
	requests []*models.ConnectionRequest
	nextID   int64
	failAll  error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{nextID: 1}
}

func (r *fakeRequestRepo) Insert(_ context.Context, request *models.ConnectionRequest) error {
	if r.failAll != nil {
		return r.failAll
	}
	for _, req := range r.requests {
		if req.StudentID == request.StudentID && req.Status == models.StatusPending {
			return apperrors.ErrDuplicatePendingRequest
		}
	}
	request.ID = r.nextID
	r.nextID++
	now := time.Now()
	request.RequestedAt = now
	request.CreatedAt = now
	request.UpdatedAt = now
	r.requests = append(r.requests, request)
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id int64) (*models.ConnectionRequest, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	for _, req := range r.requests {
		if req.ID == id {
			return req, nil
		}
	}
	return nil, apperrors.ErrRequestNotFound
}

func (r *fakeRequestRepo) GetByStudentID(_ context.Context, studentID int64) ([]*models.ConnectionRequest, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	var out []*models.ConnectionRequest
	for i := len(r.requests) - 1; i >= 0; i-- {
		if r.requests[i].StudentID == studentID {
			out = append(out, r.requests[i])
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) GetPendingByStudentID(_ context.Context, studentID int64) (*models.ConnectionRequest, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	for _, req := range r.requests {
		if req.StudentID == studentID && req.Status == models.StatusPending {
			return req, nil
		}
	}
	return nil, nil
}

func (r *fakeRequestRepo) GetByStatus(_ context.Context, status models.RequestStatus) ([]*models.ConnectionRequest, error) {
	var out []*models.ConnectionRequest
	for _, req := range r.requests {
		if req.Status == status {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) GetAll(_ context.Context, offset uint64, limit int) ([]*models.ConnectionRequest, error) {
	start := int(offset)
	if start >= len(r.requests) {
		return nil, nil
	}
	end := start + limit
	if end > len(r.requests) {
		end = len(r.requests)
	}
	return r.requests[start:end], nil
}

func (r *fakeRequestRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(r.requests)), nil
}

func (r *fakeRequestRepo) GetStats(_ context.Context) (*models.ConnectionStats, error) {
	stats := &models.ConnectionStats{}
	for _, req := range r.requests {
		stats.Total++
		switch req.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusApproved:
			stats.Approved++
		case models.StatusRejected:
			stats.Rejected++
		case models.StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (r *fakeRequestRepo) UpdateStatusIfPending(_ context.Context, id int64, newStatus models.RequestStatus, adminNotes string) (*models.ConnectionRequest, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	for _, req := range r.requests {
		if req.ID == id && req.Status == models.StatusPending {
			req.Status = newStatus
			now := time.Now()
			switch newStatus {
			case models.StatusApproved:
				req.ApprovedAt = &now
			case models.StatusRejected:
				req.RejectedAt = &now
			}
			if adminNotes != "" {
				req.AdminNotes = adminNotes
			}
			req.UpdatedAt = now
			return req, nil
		}
	}
	return nil, repositories.ErrNoPendingRequest
}

// fakeActivityRepo records activity entries in memory
type fakeActivityRepo struct {
	entries []*models.ActivityEntry
	failAll error
}

func (r *fakeActivityRepo) Insert(_ context.Context, entry *models.ActivityEntry) error {
	if r.failAll != nil {
		return r.failAll
	}
	entry.ID = int64(len(r.entries) + 1)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeActivityRepo) GetByUserEmail(_ context.Context, userEmail string, limit int) ([]*models.ActivityEntry, error) {
	var out []*models.ActivityEntry
	for _, e := range r.entries {
		if e.UserEmail == userEmail && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

type connectionFixture struct {
	service   *ConnectionService
	users     *fakeUserRepo
	counselor *fakeCounselorRepo
	requests  *fakeRequestRepo
	activity  *fakeActivityRepo
}

func newConnectionFixture(t *testing.T) *connectionFixture {
	t.Helper()

	users := newFakeUserRepo()
	counselors := newFakeCounselorRepo()
	requests := newFakeRequestRepo()
	activity := &fakeActivityRepo{}

	require.NoError(t, users.Create(context.Background(), &models.User{
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Yilmaz",
		Role:      models.RoleStudent,
		IsActive:  true,
	}))
	require.NoError(t, users.Create(context.Background(), &models.User{
		Email:     "bob@example.com",
		FirstName: "Bob",
		LastName:  "Demir",
		Role:      models.RoleStudent,
		IsActive:  true,
	}))
	require.NoError(t, counselors.Create(context.Background(), &models.Counselor{
		FullName:    "Dr. Sarah Chen",
		Email:       "sarah.chen@counselbridge.com",
		IsAvailable: true,
	}))
	require.NoError(t, counselors.Create(context.Background(), &models.Counselor{
		FullName:    "James Okafor",
		Email:       "james.okafor@counselbridge.com",
		IsAvailable: true,
	}))

	return &connectionFixture{
		service:   NewConnectionService(users, counselors, requests, activity, zerolog.Nop()),
		users:     users,
		counselor: counselors,
		requests:  requests,
		activity:  activity,
	}
}

func TestCreateConnectionRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending request", func(t *testing.T) {
		f := newConnectionFixture(t)

		req, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "Need help choosing a major")

		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, req.Status)
		assert.Equal(t, "Need help choosing a major", req.RequestReason)
		assert.NotZero(t, req.ID)
		assert.Nil(t, req.ApprovedAt)
		assert.Nil(t, req.RejectedAt)
	})

	t.Run("fills in a default reason", func(t *testing.T) {
		f := newConnectionFixture(t)

		req, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")

		require.NoError(t, err)
		assert.Contains(t, req.RequestReason, "Alice Yilmaz")
		assert.Contains(t, req.RequestReason, "Dr. Sarah Chen")
	})

	t.Run("normalizes email case and whitespace", func(t *testing.T) {
		f := newConnectionFixture(t)

		req, err := f.service.CreateConnectionRequest(ctx, "  ALICE@Example.COM ", "Sarah.Chen@CounselBridge.com", "hi")

		require.NoError(t, err)
		assert.NotNil(t, req)
	})

	t.Run("rejects a second pending request and returns the conflict", func(t *testing.T) {
		f := newConnectionFixture(t)

		first, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "first")
		require.NoError(t, err)

		_, err = f.service.CreateConnectionRequest(ctx, "alice@example.com", "james.okafor@counselbridge.com", "second")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrDuplicatePendingRequest)

		var dup *DuplicatePendingError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, first.ID, dup.Existing.ID)
	})

	t.Run("different students may each hold a pending request", func(t *testing.T) {
		f := newConnectionFixture(t)

		_, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)

		_, err = f.service.CreateConnectionRequest(ctx, "bob@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)
	})

	t.Run("unknown student", func(t *testing.T) {
		f := newConnectionFixture(t)

		_, err := f.service.CreateConnectionRequest(ctx, "ghost@example.com", "sarah.chen@counselbridge.com", "")

		assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	})

	t.Run("unknown counselor", func(t *testing.T) {
		f := newConnectionFixture(t)

		_, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "nobody@counselbridge.com", "")

		assert.ErrorIs(t, err, apperrors.ErrCounselorNotFound)
	})

	t.Run("malformed student email", func(t *testing.T) {
		f := newConnectionFixture(t)

		_, err := f.service.CreateConnectionRequest(ctx, "not-an-email", "sarah.chen@counselbridge.com", "")

		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		f := newConnectionFixture(t)
		f.requests.failAll = apperrors.ErrStoreUnavailable

		_, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")

		assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	})

	t.Run("activity failure does not fail the create", func(t *testing.T) {
		f := newConnectionFixture(t)
		f.activity.failAll = errors.New("activity store down")

		_, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")

		assert.NoError(t, err)
	})
}

func TestCancelConnectionRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels a pending request", func(t *testing.T) {
		f := newConnectionFixture(t)
		req, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)

		cancelled, err := f.service.CancelConnectionRequest(ctx, req.ID, "alice@example.com")

		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, cancelled.Status)
	})

	t.Run("second cancel fails with invalid transition", func(t *testing.T) {
		f := newConnectionFixture(t)
		req, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)

		_, err = f.service.CancelConnectionRequest(ctx, req.ID, "alice@example.com")
		require.NoError(t, err)

		_, err = f.service.CancelConnectionRequest(ctx, req.ID, "alice@example.com")
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})

	t.Run("another student's request cannot be cancelled", func(t *testing.T) {
		f := newConnectionFixture(t)
		req, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)

		_, err = f.service.CancelConnectionRequest(ctx, req.ID, "bob@example.com")

		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		got, lookupErr := f.requests.GetByID(ctx, req.ID)
		require.NoError(t, lookupErr)
		assert.Equal(t, models.StatusPending, got.Status)
	})

	t.Run("unknown request id", func(t *testing.T) {
		f := newConnectionFixture(t)

		_, err := f.service.CancelConnectionRequest(ctx, 404, "alice@example.com")

		assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
	})

	t.Run("cancel frees the pending slot for a new request", func(t *testing.T) {
		f := newConnectionFixture(t)
		req, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)

		_, err = f.service.CancelConnectionRequest(ctx, req.ID, "alice@example.com")
		require.NoError(t, err)

		retry, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "james.okafor@counselbridge.com", "")
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, retry.Status)
		assert.NotEqual(t, req.ID, retry.ID)
	})
}

func TestApproveConnectionRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("approves a pending request and stamps approved_at", func(t *testing.T) {
		f := newConnectionFixture(t)
		req, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)

		approved, err := f.service.ApproveConnectionRequest(ctx, req.ID, "verified transcript")

		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, approved.Status)
		require.NotNil(t, approved.ApprovedAt)
		assert.Equal(t, "verified transcript", approved.AdminNotes)
	})

	t.Run("approved request cannot be cancelled afterwards", func(t *testing.T) {
		f := newConnectionFixture(t)
		req, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)

		_, err = f.service.ApproveConnectionRequest(ctx, req.ID, "")
		require.NoError(t, err)

		_, err = f.service.CancelConnectionRequest(ctx, req.ID, "alice@example.com")
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})

	t.Run("approving a terminal request fails", func(t *testing.T) {
		f := newConnectionFixture(t)
		req, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)

		_, err = f.service.RejectConnectionRequest(ctx, req.ID, "incomplete profile")
		require.NoError(t, err)

		_, err = f.service.ApproveConnectionRequest(ctx, req.ID, "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})

	t.Run("approving an unknown id fails with not found", func(t *testing.T) {
		f := newConnectionFixture(t)

		_, err := f.service.ApproveConnectionRequest(ctx, 404, "")

		assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
	})

	t.Run("writes activity for both participants", func(t *testing.T) {
		f := newConnectionFixture(t)
		req, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)

		_, err = f.service.ApproveConnectionRequest(ctx, req.ID, "")
		require.NoError(t, err)

		student, err := f.activity.GetByUserEmail(ctx, "alice@example.com", 10)
		require.NoError(t, err)
		counselor, err := f.activity.GetByUserEmail(ctx, "sarah.chen@counselbridge.com", 10)
		require.NoError(t, err)

		var types []string
		for _, e := range student {
			types = append(types, e.ActivityType)
		}
		assert.Contains(t, types, models.ActivityConnectionApproved)
		require.Len(t, counselor, 1)
		assert.Equal(t, models.ActivityStudentAssigned, counselor[0].ActivityType)
	})
}

func TestRejectConnectionRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a pending request with a reason", func(t *testing.T) {
		f := newConnectionFixture(t)
		req, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)

		rejected, err := f.service.RejectConnectionRequest(ctx, req.ID, "counselor at capacity")

		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, rejected.Status)
		require.NotNil(t, rejected.RejectedAt)
		assert.Nil(t, rejected.ApprovedAt)
		assert.Equal(t, "counselor at capacity", rejected.AdminNotes)
	})

	t.Run("rejection frees the pending slot", func(t *testing.T) {
		f := newConnectionFixture(t)
		req, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)

		_, err = f.service.RejectConnectionRequest(ctx, req.ID, "no capacity")
		require.NoError(t, err)

		_, err = f.service.CreateConnectionRequest(ctx, "alice@example.com", "james.okafor@counselbridge.com", "")
		assert.NoError(t, err)
	})
}

func TestGetStudentConnections(t *testing.T) {
	ctx := context.Background()

	t.Run("empty history yields an empty slice", func(t *testing.T) {
		f := newConnectionFixture(t)

		list, err := f.service.GetStudentConnections(ctx, "alice@example.com")

		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("returns only the student's own requests", func(t *testing.T) {
		f := newConnectionFixture(t)
		mine, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)
		_, err = f.service.CreateConnectionRequest(ctx, "bob@example.com", "sarah.chen@counselbridge.com", "")
		require.NoError(t, err)

		list, err := f.service.GetStudentConnections(ctx, "alice@example.com")

		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, mine.ID, list[0].ID)
	})

	t.Run("unknown student", func(t *testing.T) {
		f := newConnectionFixture(t)

		_, err := f.service.GetStudentConnections(ctx, "ghost@example.com")

		assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	})
}

func TestAtMostOnePendingInvariant(t *testing.T) {
	ctx := context.Background()
	f := newConnectionFixture(t)

	// Interleave creates, cancels and admin decisions and check the invariant
	// holds after every step.
	assertAtMostOnePending := func(t *testing.T) {
		t.Helper()
		pending, err := f.requests.GetByStatus(ctx, models.StatusPending)
		require.NoError(t, err)
		perStudent := map[int64]int{}
		for _, req := range pending {
			perStudent[req.StudentID]++
			assert.LessOrEqual(t, perStudent[req.StudentID], 1)
		}
	}

	first, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
	require.NoError(t, err)
	assertAtMostOnePending(t)

	_, err = f.service.CreateConnectionRequest(ctx, "alice@example.com", "james.okafor@counselbridge.com", "")
	assert.ErrorIs(t, err, apperrors.ErrDuplicatePendingRequest)
	assertAtMostOnePending(t)

	_, err = f.service.CancelConnectionRequest(ctx, first.ID, "alice@example.com")
	require.NoError(t, err)
	assertAtMostOnePending(t)

	second, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "james.okafor@counselbridge.com", "")
	require.NoError(t, err)
	assertAtMostOnePending(t)

	_, err = f.service.ApproveConnectionRequest(ctx, second.ID, "")
	require.NoError(t, err)
	assertAtMostOnePending(t)
}

func TestConnectionListsAndStats(t *testing.T) {
	ctx := context.Background()
	f := newConnectionFixture(t)

	first, err := f.service.CreateConnectionRequest(ctx, "alice@example.com", "sarah.chen@counselbridge.com", "")
	require.NoError(t, err)
	second, err := f.service.CreateConnectionRequest(ctx, "bob@example.com", "sarah.chen@counselbridge.com", "")
	require.NoError(t, err)

	_, err = f.service.ApproveConnectionRequest(ctx, first.ID, "")
	require.NoError(t, err)

	pending, err := f.service.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	all, total, err := f.service.ListAll(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	stats, err := f.service.GetConnectionStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Approved)
	assert.Equal(t, int64(0), stats.Cancelled)
}
