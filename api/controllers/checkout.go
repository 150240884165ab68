package controllers

import (
	"net/http"

	"github.com/storefronthq/storefront-backend/api/middleware"
	"github.com/storefronthq/storefront-backend/api/responses"
	"github.com/storefronthq/storefront-backend/api/validators"
	"github.com/storefronthq/storefront-backend/internal/checkout"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
	"github.com/storefronthq/storefront-backend/pkg/logger"
)

type checkoutRequest struct {
	PaymentIntentID *string `json:"payment_intent_id"`
}

// Checkout converts the caller's cart into a pending order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		// The body is optional; checkout without a payment intent is valid.
		var body checkoutRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		order, err := svc.Checkout(r.Context(), checkout.Input{
			UserID:          middleware.UserIDFromContext(r.Context()),
			PaymentIntentID: body.PaymentIntentID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderView(order))
	}
}
