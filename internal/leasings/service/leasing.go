package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	leasingserrors "plotlease/internal/leasings/errors"
	"plotlease/internal/leasings/events"
	"plotlease/internal/leasings/repository"
	"plotlease/internal/leasings/validator"
	plotserrors "plotlease/internal/plots/errors"
	plotsrepo "plotlease/internal/plots/repository"
	"plotlease/pkg/config"
	apperrors "plotlease/pkg/errors"
	"plotlease/pkg/model"
	"plotlease/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type LeasingService interface {
	Create(ctx context.Context, req *validator.BookingRequest) (*model.Leasing, error)
	GetByID(ctx context.Context, id string) (*model.Leasing, error)
	UpdateStatus(ctx context.Context, id string, actorID string, target model.LeasingStatus) (*model.Leasing, error)
	Delete(ctx context.Context, id string, actorID string) error
	List(ctx context.Context, scope repository.Scope, refID string, filter repository.ListFilter, limit int, offset int64) ([]*model.Leasing, int64, error)
}

type leasingService struct {
	repo      repository.LeasingRepository
	guardRepo repository.ReservationGuardRepository
	plotRepo  plotsrepo.PlotRepository
	resolver  validator.OverlapResolver
	validator *validator.LeasingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewLeasingService(
	repo repository.LeasingRepository,
	guardRepo repository.ReservationGuardRepository,
	plotRepo plotsrepo.PlotRepository,
	resolver validator.OverlapResolver,
	validator *validator.LeasingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) LeasingService {
	return &leasingService{
		repo:      repo,
		guardRepo: guardRepo,
		plotRepo:  plotRepo,
		resolver:  resolver,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create validates a booking request and persists a new OPEN leasing. The
// blocking check runs once during validation and once more inside the insert
// transaction, so a request that raced past the first check still cannot slip
// in next to a conflicting write.
func (s *leasingService) Create(ctx context.Context, req *validator.BookingRequest) (*model.Leasing, error) {
	req.PlotName = sanitizer.NormalizePlotName(req.PlotName)

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request malformed", "error", err)
		return nil, apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}

	plot, err := s.getPlot(ctx, req.PlotID)
	if err != nil {
		return nil, err
	}

	violations, err := s.validator.ValidateBooking(ctx, req)
	if err != nil {
		s.cfg.Log.Error("Failed to evaluate booking checks", "plot_id", req.PlotID, "error", err)
		return nil, apperrors.Internal("Failed to validate booking", err)
	}
	if len(violations) > 0 {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"violations": violations,
		})
	}

	leasing := &model.Leasing{
		PlotID:           req.PlotID,
		UserID:           req.UserID,
		OwnerID:          plot.OwnerID,
		From:             *req.From,
		To:               *req.To,
		Status:           model.StatusOpen,
		PaymentSessionID: req.PaymentSessionID,
	}
	leasing.PriceCents = plot.QuoteCents(leasing.PeriodInDays())

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		blocking, err := s.resolver.FindBlocking(sessCtx, req.PlotID, req.UserID, *req.From, *req.To)
		if err != nil {
			return apperrors.Internal("Failed to re-check blocking leasings", err)
		}
		if len(blocking) > 0 {
			return apperrors.Conflict("Requested range was taken by a concurrent booking")
		}

		if err := s.repo.Create(sessCtx, leasing); err != nil {
			return apperrors.Internal("Failed to create leasing", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create leasing", "plot_id", req.PlotID, "error", err)
		return nil, err
	}

	s.publishEvent("created", leasing, func() error {
		return s.publisher.LeasingCreated(ctx, leasing)
	})

	s.cfg.Log.Info("Leasing created successfully",
		"id", leasing.ID,
		"plot_id", leasing.PlotID,
		"user_id", leasing.UserID,
		"from", leasing.From,
		"to", leasing.To,
	)
	return leasing, nil
}

func (s *leasingService) GetByID(ctx context.Context, id string) (*model.Leasing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Leasing ID cannot be empty")
	}

	leasing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return leasing, nil
}

// UpdateStatus applies a lifecycle transition requested by actorID. Confirming
// to RESERVED takes an advisory guard on the plot and re-checks the RESERVED
// overlap inside the transaction; a lost race surfaces as a conflict, distinct
// from an illegal transition.
func (s *leasingService) UpdateStatus(ctx context.Context, id string, actorID string, target model.LeasingStatus) (*model.Leasing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Leasing ID cannot be empty")
	}
	if actorID == "" {
		return nil, apperrors.InvalidInput("Actor ID cannot be empty")
	}
	if !target.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown leasing status: %s", target))
	}

	leasing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	if err := s.authorizeTransition(leasing, actorID, target); err != nil {
		return nil, err
	}

	if !model.CanTransition(leasing.Status, target) {
		return nil, apperrors.InvalidState(fmt.Sprintf(
			"Leasing cannot move from %s to %s", leasing.Status, target,
		))
	}

	if target == model.StatusReserved {
		guardID, err := s.acquireReservationGuard(ctx, leasing)
		if err != nil {
			return nil, err
		}
		defer func() {
			if releaseErr := s.guardRepo.Delete(ctx, guardID); releaseErr != nil {
				s.cfg.Log.Warn("Failed to release reservation guard", "guard_id", guardID, "error", releaseErr)
			}
		}()
	}

	prev := leasing.Status
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		fresh, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return s.mapLookupError(err, id)
		}
		if !model.CanTransition(fresh.Status, target) {
			return apperrors.InvalidState(fmt.Sprintf(
				"Leasing cannot move from %s to %s", fresh.Status, target,
			))
		}
		prev = fresh.Status

		if target == model.StatusReserved {
			if err := s.verifyReservedExclusive(sessCtx, fresh); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateStatus(sessCtx, id, target); err != nil {
			return apperrors.Internal("Failed to update leasing status", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update leasing status", "id", id, "target", target, "error", err)
		return nil, err
	}

	leasing.Status = target
	s.publishEvent("status_changed", leasing, func() error {
		return s.publisher.LeasingStatusChanged(ctx, leasing, prev)
	})

	s.cfg.Log.Info("Leasing status updated successfully",
		"id", id,
		"from_status", prev,
		"to_status", target,
	)
	return leasing, nil
}

func (s *leasingService) Delete(ctx context.Context, id string, actorID string) error {
	if id == "" {
		return apperrors.InvalidInput("Leasing ID cannot be empty")
	}
	if actorID == "" {
		return apperrors.InvalidInput("Actor ID cannot be empty")
	}

	leasing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	if actorID != leasing.UserID && actorID != leasing.OwnerID {
		return apperrors.Forbidden("Only the renter or the plot owner may delete a leasing")
	}

	deletedAt := s.cfg.Clock.Now()
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.SoftDelete(sessCtx, id, deletedAt); err != nil {
			if errors.Is(err, leasingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Leasing", id)
			}
			return apperrors.Internal("Failed to delete leasing", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	leasing.DeletedAt = &deletedAt
	s.publishEvent("deleted", leasing, func() error {
		return s.publisher.LeasingDeleted(ctx, leasing)
	})

	s.cfg.Log.Info("Leasing deleted successfully", "id", id)
	return nil
}

func (s *leasingService) List(ctx context.Context, scope repository.Scope, refID string, filter repository.ListFilter, limit int, offset int64) ([]*model.Leasing, int64, error) {
	if !scope.Valid() {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown listing scope: %s", scope))
	}
	if refID == "" {
		return nil, 0, apperrors.InvalidInput("Reference ID cannot be empty")
	}
	if filter.Bucket != "" && !filter.Bucket.Valid() {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown temporal bucket: %s", filter.Bucket))
	}
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown leasing status: %s", status))
		}
	}

	// The bucket is anchored once per call so count and page agree on "now".
	if filter.Bucket != "" {
		filter.Now = s.cfg.Clock.Now()
	}

	var count int64
	var leasings []*model.Leasing
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByScope(ctx, scope, refID, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count leasings", "scope", scope, "ref_id", refID, "error", errCount)
			errCount = apperrors.Internal("Failed to count leasings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		leasings, errFind = s.repo.FindByScope(ctx, scope, refID, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list leasings", "scope", scope, "ref_id", refID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve leasings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return leasings, count, nil
}

// --- Helpers ---

func (s *leasingService) getPlot(ctx context.Context, plotID string) (*model.Plot, error) {
	plot, err := s.plotRepo.FindByID(ctx, plotID)
	if err != nil {
		if errors.Is(err, plotserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Plot", plotID)
		}
		if errors.Is(err, plotserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid plot ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve plot", err)
	}
	return plot, nil
}

func (s *leasingService) mapLookupError(err error, id string) error {
	if errors.Is(err, leasingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Leasing", id)
	}
	if errors.Is(err, leasingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid leasing ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Failed to retrieve leasing", err)
}

// authorizeTransition enforces who may trigger which edge: the owner accepts
// or rejects an open request, cancellation is open to renter and owner alike.
func (s *leasingService) authorizeTransition(leasing *model.Leasing, actorID string, target model.LeasingStatus) error {
	switch target {
	case model.StatusReserved, model.StatusRejected:
		if actorID != leasing.OwnerID {
			return apperrors.Forbidden("Only the plot owner may confirm or reject a leasing")
		}
	case model.StatusCancelled:
		if actorID != leasing.UserID && actorID != leasing.OwnerID {
			return apperrors.Forbidden("Only the renter or the plot owner may cancel a leasing")
		}
	}
	return nil
}

// acquireReservationGuard creates the advisory guard for the plot. Returns a
// conflict when another confirmation currently holds it.
func (s *leasingService) acquireReservationGuard(ctx context.Context, leasing *model.Leasing) (string, error) {
	guardID := fmt.Sprintf("reservation_guard_%s", leasing.PlotID)

	guard := &model.ReservationGuard{
		ID:        guardID,
		LeasingID: leasing.ID,
		ExpiresAt: s.cfg.Clock.Now().Add(s.cfg.ReservationGuardTTL),
	}

	_, err := s.guardRepo.Create(ctx, guard)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("Another reservation on this plot is being confirmed. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire reservation guard", err)
	}

	return guardID, nil
}

// verifyReservedExclusive re-checks, inside the confirm transaction, that no
// other RESERVED leasing overlaps the range being confirmed.
func (s *leasingService) verifyReservedExclusive(ctx context.Context, leasing *model.Leasing) error {
	candidates, err := s.repo.FindOverlapCandidates(ctx, leasing.PlotID, leasing.From, leasing.To)
	if err != nil {
		return apperrors.Internal("Failed to check reserved leasings", err)
	}

	requested := leasing.Interval()
	for _, other := range candidates {
		if other.ID == leasing.ID {
			continue
		}
		if other.Status == model.StatusReserved && other.Interval().Overlaps(requested) {
			return apperrors.Conflict(fmt.Sprintf(
				"Range overlaps an already reserved leasing (%s - %s)",
				other.From.Format(time.RFC3339),
				other.To.Format(time.RFC3339),
			))
		}
	}
	return nil
}

func (s *leasingService) publishEvent(kind string, leasing *model.Leasing, publish func() error) {
	if err := publish(); err != nil {
		s.cfg.Log.Warn("Failed to publish leasing event",
			"event", kind,
			"id", leasing.ID,
			"error", err,
		)
	}
}
