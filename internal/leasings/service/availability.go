package service

import (
	"context"
	"time"

	"plotlease/internal/leasings/repository"
	"plotlease/pkg/config"
	apperrors "plotlease/pkg/errors"
	"plotlease/pkg/interval"
	"plotlease/pkg/model"
)

// DateRange is a plain leased range, exposed for plot calendars.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// AvailabilityService answers the search-side questions about a plot. It
// shares the overlap predicate with the booking path, so a plot listed as
// available can always be booked for the same window (modulo races, which the
// confirm transaction catches).
type AvailabilityService interface {
	IsBookable(ctx context.Context, plotID string, from, to time.Time) (bool, error)
	LeasedRanges(ctx context.Context, plotID string, from, to *time.Time) ([]DateRange, error)
}

type availabilityService struct {
	repo repository.LeasingRepository
	cfg  *config.Config
}

func NewAvailabilityService(repo repository.LeasingRepository, cfg *config.Config) AvailabilityService {
	return &availabilityService{
		repo: repo,
		cfg:  cfg,
	}
}

// IsBookable reports whether no live RESERVED leasing on the plot overlaps
// [from, to). OPEN leasings never make a plot unavailable.
func (s *availabilityService) IsBookable(ctx context.Context, plotID string, from, to time.Time) (bool, error) {
	if plotID == "" {
		return false, apperrors.InvalidInput("Plot ID cannot be empty")
	}
	requested := interval.New(from, to)
	if !requested.Valid() {
		return false, apperrors.InvalidInput("from must be before to")
	}

	candidates, err := s.repo.FindOverlapCandidates(ctx, plotID, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to check plot availability", "plot_id", plotID, "error", err)
		return false, apperrors.Internal("Failed to check availability", err)
	}

	for _, leasing := range candidates {
		if leasing.Status == model.StatusReserved && leasing.Interval().Overlaps(requested) {
			return false, nil
		}
	}

	return true, nil
}

// LeasedRanges returns the confirmed ranges of a plot in calendar order.
// When a window is given, only ranges overlapping it are returned.
func (s *availabilityService) LeasedRanges(ctx context.Context, plotID string, from, to *time.Time) ([]DateRange, error) {
	if plotID == "" {
		return nil, apperrors.InvalidInput("Plot ID cannot be empty")
	}

	reserved, err := s.repo.FindReservedByPlot(ctx, plotID)
	if err != nil {
		s.cfg.Log.Error("Failed to list leased ranges", "plot_id", plotID, "error", err)
		return nil, apperrors.Internal("Failed to list leased ranges", err)
	}

	ranges := make([]DateRange, 0, len(reserved))
	for _, leasing := range reserved {
		if from != nil && !leasing.To.After(*from) {
			continue
		}
		if to != nil && !leasing.From.Before(*to) {
			continue
		}
		ranges = append(ranges, DateRange{From: leasing.From, To: leasing.To})
	}

	return ranges, nil
}
