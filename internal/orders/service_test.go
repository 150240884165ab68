package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/pkg/db/models"
	"github.com/storefronthq/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
	"github.com/storefronthq/storefront-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRepo struct {
	orders       map[uuid.UUID]*models.Order
	statusWrites int
}

func newStubRepo() *stubRepo {
	return &stubRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (r *stubRepo) FindByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error) {
	return &OrderList{}, nil
}

func (r *stubRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error) {
	return &OrderList{}, nil
}

func (r *stubRepo) ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	return &OrderList{}, nil
}

func (r *stubRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	r.statusWrites++
	if order, ok := r.orders[id]; ok {
		order.Status = status
	}
	return nil
}

func (r *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func seedOrder(repo *stubRepo, status enums.OrderStatus) *models.Order {
	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: status}
	repo.orders[order.ID] = order
	return order
}

func TestUpdateStatusAllowedTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		from enums.OrderStatus
		to   enums.OrderStatus
	}{
		{"pending cancel", enums.OrderStatusPending, enums.OrderStatusCanceled},
		{"paid ship", enums.OrderStatusPaid, enums.OrderStatusShipped},
		{"paid cancel", enums.OrderStatusPaid, enums.OrderStatusCanceled},
		{"shipped complete", enums.OrderStatusShipped, enums.OrderStatusCompleted},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := newStubRepo()
			order := seedOrder(repo, tc.from)
			svc, err := NewService(repo, stubTxRunner{})
			require.NoError(t, err)

			updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
				OrderID:   order.ID,
				Status:    tc.to,
				ActorID:   uuid.New(),
				ActorRole: enums.RoleAdmin,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.to, updated.Status)
		})
	}
}

func TestUpdateStatusRejectsIllegalTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		from enums.OrderStatus
		to   enums.OrderStatus
	}{
		{"pending cannot ship unpaid", enums.OrderStatusPending, enums.OrderStatusShipped},
		{"admin cannot mark paid", enums.OrderStatusPending, enums.OrderStatusPaid},
		{"completed is terminal", enums.OrderStatusCompleted, enums.OrderStatusCanceled},
		{"canceled is terminal", enums.OrderStatusCanceled, enums.OrderStatusShipped},
		{"failed is terminal", enums.OrderStatusFailed, enums.OrderStatusPaid},
		{"shipped cannot cancel", enums.OrderStatusShipped, enums.OrderStatusCanceled},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := newStubRepo()
			order := seedOrder(repo, tc.from)
			svc, err := NewService(repo, stubTxRunner{})
			require.NoError(t, err)

			_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
				OrderID:   order.ID,
				Status:    tc.to,
				ActorID:   uuid.New(),
				ActorRole: enums.RoleManager,
			})
			require.Error(t, err)

			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
			assert.Equal(t, tc.from, order.Status)
		})
	}
}

func TestUpdateStatusSameStatusIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	order := seedOrder(repo, enums.OrderStatusShipped)
	svc, err := NewService(repo, stubTxRunner{})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:   order.ID,
		Status:    enums.OrderStatusShipped,
		ActorID:   uuid.New(),
		ActorRole: enums.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, updated.Status)
	assert.Zero(t, repo.statusWrites, "no write expected for same-status update")
}

func TestUpdateStatusRequiresModeratorRole(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	order := seedOrder(repo, enums.OrderStatusPaid)
	svc, err := NewService(repo, stubTxRunner{})
	require.NoError(t, err)

	for _, role := range []enums.Role{enums.RoleCustomer, enums.RoleVendor} {
		_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
			OrderID:   order.ID,
			Status:    enums.OrderStatusShipped,
			ActorID:   uuid.New(),
			ActorRole: role,
		})
		require.Error(t, err)
		appErr := pkgerrors.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, pkgerrors.CodeForbidden, appErr.Code())
	}
}

func TestGetForUserHidesForeignOrders(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	order := seedOrder(repo, enums.OrderStatusPaid)
	svc, err := NewService(repo, stubTxRunner{})
	require.NoError(t, err)

	_, err = svc.GetForUser(context.Background(), uuid.New(), order.ID)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())

	found, err := svc.GetForUser(context.Background(), order.UserID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
}
