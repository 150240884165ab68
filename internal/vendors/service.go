package vendors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/internal/users"
	"github.com/storefronthq/storefront-backend/pkg/db"
	"github.com/storefronthq/storefront-backend/pkg/db/models"
	"github.com/storefronthq/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Decision represents the action a moderator can take on an application.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ApplyInput captures a vendor application.
type ApplyInput struct {
	UserID   uuid.UUID
	ShopName string
	About    *string
}

// DecideInput captures the moderation action on an application.
type DecideInput struct {
	ProfileID uuid.UUID
	Decision  Decision
	ActorID   uuid.UUID
	ActorRole enums.Role
}

// Service defines vendor application operations.
type Service interface {
	Apply(ctx context.Context, input ApplyInput) (*models.VendorProfile, error)
	Decide(ctx context.Context, input DecideInput) (*models.VendorProfile, error)
	ListPending(ctx context.Context) ([]models.VendorProfile, error)
	MyApplication(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error)
}

type service struct {
	repo  Repository
	users users.Repository
	tx    txRunner
	clock func() time.Time
}

// NewService builds the vendors service with the required dependencies.
func NewService(repo Repository, usersRepo users.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendors repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:  repo,
		users: usersRepo,
		tx:    tx,
		clock: time.Now,
	}, nil
}

func (s *service) Apply(ctx context.Context, input ApplyInput) (*models.VendorProfile, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	shopName := strings.TrimSpace(input.ShopName)
	if shopName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name required")
	}

	profile := &models.VendorProfile{
		UserID:   input.UserID,
		ShopName: shopName,
		About:    input.About,
		Status:   enums.VendorStatusPending,
	}

	created, err := s.repo.Create(ctx, profile)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "vendor application already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor profile")
	}
	return created, nil
}

func (s *service) Decide(ctx context.Context, input DecideInput) (*models.VendorProfile, error) {
	if input.ProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.ActorRole.CanModerateVendors() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor moderation not allowed")
	}

	targetStatus, err := mapDecisionToStatus(input.Decision)
	if err != nil {
		return nil, err
	}

	var decided *models.VendorProfile
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		profile, err := repo.FindByID(ctx, input.ProfileID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "vendor application not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor profile")
		}
		if profile.Status == targetStatus {
			decided = profile
			return nil
		}
		if profile.Status != enums.VendorStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "application already decided")
		}

		now := s.clock()
		updates := map[string]any{
			"status":     targetStatus.String(),
			"decided_by": input.ActorID,
			"decided_at": now,
		}
		if err := repo.Update(ctx, profile.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vendor profile")
		}

		if targetStatus == enums.VendorStatusApproved {
			if err := s.users.WithTx(tx).UpdateRole(ctx, profile.UserID, enums.RoleVendor); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote user to vendor")
			}
		}

		profile.Status = targetStatus
		profile.DecidedBy = &input.ActorID
		profile.DecidedAt = &now
		decided = profile
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return decided, nil
}

func (s *service) ListPending(ctx context.Context) ([]models.VendorProfile, error) {
	profiles, err := s.repo.ListByStatus(ctx, enums.VendorStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor applications")
	}
	return profiles, nil
}

func (s *service) MyApplication(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor application not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor profile")
	}
	return profile, nil
}

func mapDecisionToStatus(decision Decision) (enums.VendorStatus, error) {
	switch decision {
	case DecisionApprove:
		return enums.VendorStatusApproved, nil
	case DecisionReject:
		return enums.VendorStatusRejected, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown decision %q", decision))
	}
}
