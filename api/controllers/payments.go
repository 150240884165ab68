package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/storefronthq/storefront-backend/api/middleware"
	"github.com/storefronthq/storefront-backend/api/responses"
	"github.com/storefronthq/storefront-backend/internal/payments"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
	"github.com/storefronthq/storefront-backend/pkg/logger"
)

type paymentQuoteView struct {
	IntentID     string          `json:"intent_id"`
	ClientSecret string          `json:"client_secret"`
	AmountCents  int64           `json:"amount_cents"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

// CreatePaymentIntent prices the caller's cart and mints a provider intent.
func CreatePaymentIntent(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		quote, err := svc.CreateIntent(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, paymentQuoteView{
			IntentID:     quote.IntentID,
			ClientSecret: quote.ClientSecret,
			AmountCents:  quote.AmountCents,
			Amount:       quote.Amount,
			Currency:     quote.Currency.String(),
		})
	}
}
