package controllers

import (
	"net/http"

	"github.com/storefronthq/storefront-backend/api/middleware"
	"github.com/storefronthq/storefront-backend/api/responses"
	"github.com/storefronthq/storefront-backend/api/validators"
	"github.com/storefronthq/storefront-backend/internal/vendors"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
	"github.com/storefronthq/storefront-backend/pkg/logger"
)

type applyVendorRequest struct {
	ShopName string  `json:"shop_name" validate:"required"`
	About    *string `json:"about"`
}

type decideVendorRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
}

// ApplyVendor submits a vendor application for the caller.
func ApplyVendor(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendors service unavailable"))
			return
		}

		var body applyVendorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Apply(r.Context(), vendors.ApplyInput{
			UserID:   middleware.UserIDFromContext(r.Context()),
			ShopName: body.ShopName,
			About:    body.About,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newVendorProfileView(profile))
	}
}

// MyVendorApplication returns the caller's application, whatever its state.
func MyVendorApplication(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendors service unavailable"))
			return
		}

		profile, err := svc.MyApplication(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newVendorProfileView(profile))
	}
}

// ListPendingVendors returns applications awaiting moderation.
func ListPendingVendors(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendors service unavailable"))
			return
		}

		profiles, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]vendorProfileView, 0, len(profiles))
		for i := range profiles {
			views = append(views, newVendorProfileView(&profiles[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// DecideVendor approves or rejects a pending application.
func DecideVendor(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendors service unavailable"))
			return
		}

		profileID, err := uuidParam(r, "profileID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body decideVendorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Decide(r.Context(), vendors.DecideInput{
			ProfileID: profileID,
			Decision:  vendors.Decision(body.Decision),
			ActorID:   middleware.UserIDFromContext(r.Context()),
			ActorRole: middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newVendorProfileView(profile))
	}
}
