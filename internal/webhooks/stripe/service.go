package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/internal/cart"
	"github.com/storefronthq/storefront-backend/internal/orders"
	"github.com/storefronthq/storefront-backend/internal/payments"
	"github.com/storefronthq/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
	"github.com/storefronthq/storefront-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	OrdersRepo        orders.Repository
	CartRepo          cart.Repository
	TransactionRunner txRunner
	Logger            *logger.Logger
}

// Service reconciles asynchronous payment-provider events with order status.
type Service struct {
	ordersRepo orders.Repository
	cartRepo   cart.Repository
	txRunner   txRunner
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		ordersRepo: params.OrdersRepo,
		cartRepo:   params.CartRepo,
		txRunner:   params.TransactionRunner,
		logg:       params.Logger,
	}, nil
}

// HandleEvent applies at most one order transition per provider event. Events
// that match no order, carry an unknown kind, or arrive after the order already
// reached the target state are acknowledged without side effects.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	kind := payments.Event(event.Type)
	if !payments.KnownEvent(kind) {
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment intent event")
	}
	if intent.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing")
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.ordersRepo.WithTx(tx)

		order, err := repo.FindByPaymentIntentID(ctx, intent.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				// unmatched intent is not our concern, ack so the provider stops retrying
				if s.logg != nil {
					s.logg.Warn(ctx, "webhook matched no order, acknowledging")
				}
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by intent")
		}

		next, apply := payments.Transition(order.Status, kind)
		if !apply {
			return nil
		}

		updates := map[string]any{"status": next.String()}
		if next == enums.OrderStatusPaid {
			if chargeID := latestChargeID(&intent); chargeID != "" {
				updates["stripe_payment_id"] = chargeID
			}
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		if next == enums.OrderStatusPaid {
			// clears the owner's whole current cart, matching the intent-flow
			// path where checkout's own cart-clear never ran
			if err := s.cartRepo.WithTx(tx).ClearByUserID(ctx, order.UserID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart after payment")
			}
		}
		return nil
	})
}

func latestChargeID(intent *stripe.PaymentIntent) string {
	if intent == nil || intent.LatestCharge == nil {
		return ""
	}
	return intent.LatestCharge.ID
}
