package service

import (
	"context"
	"testing"
	"time"

	"plotlease/pkg/model"
)

func reservedLeasing(id string, from, to time.Time) *model.Leasing {
	return &model.Leasing{
		ID:     id,
		PlotID: testPlotID,
		UserID: testRenter,
		From:   from,
		To:     to,
		Status: model.StatusReserved,
	}
}

func TestIsBookable_ReservedOverlapMakesPlotUnavailable(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := testConfig(now)

	jan20 := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	jan25 := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)

	repo := &mockLeasingRepository{
		findOverlapCandidatesFunc: func(ctx context.Context, plotID string, from, to time.Time) ([]*model.Leasing, error) {
			return []*model.Leasing{reservedLeasing("r1", jan20, jan25)}, nil
		},
	}
	svc := NewAvailabilityService(repo, cfg)

	bookable, err := svc.IsBookable(context.Background(), testPlotID,
		time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 23, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bookable {
		t.Error("expected the plot to be unavailable under a reserved overlap")
	}
}

func TestIsBookable_OpenLeasingsDoNotBlockSearch(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := testConfig(now)

	open := &model.Leasing{
		ID:     "o1",
		PlotID: testPlotID,
		UserID: testRenter,
		From:   time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
		Status: model.StatusOpen,
	}
	repo := &mockLeasingRepository{
		findOverlapCandidatesFunc: func(ctx context.Context, plotID string, from, to time.Time) ([]*model.Leasing, error) {
			return []*model.Leasing{open}, nil
		},
	}
	svc := NewAvailabilityService(repo, cfg)

	bookable, err := svc.IsBookable(context.Background(), testPlotID,
		time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 23, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bookable {
		t.Error("an OPEN leasing must not make the plot unavailable")
	}
}

func TestIsBookable_TouchingRangesDoNotConflict(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := testConfig(now)

	jan20 := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	jan25 := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)

	repo := &mockLeasingRepository{
		findOverlapCandidatesFunc: func(ctx context.Context, plotID string, from, to time.Time) ([]*model.Leasing, error) {
			return []*model.Leasing{reservedLeasing("r1", jan20, jan25)}, nil
		},
	}
	svc := NewAvailabilityService(repo, cfg)

	// Starts exactly where the reserved range ends.
	bookable, err := svc.IsBookable(context.Background(), testPlotID,
		jan25,
		time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bookable {
		t.Error("ranges touching at a boundary must not conflict")
	}
}

func TestIsBookable_IdempotentRead(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := testConfig(now)

	jan20 := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	jan25 := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)

	repo := &mockLeasingRepository{
		findOverlapCandidatesFunc: func(ctx context.Context, plotID string, from, to time.Time) ([]*model.Leasing, error) {
			return []*model.Leasing{reservedLeasing("r1", jan20, jan25)}, nil
		},
	}
	svc := NewAvailabilityService(repo, cfg)

	first, err := svc.IsBookable(context.Background(), testPlotID, jan20, jan25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.IsBookable(context.Background(), testPlotID, jan20, jan25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("two reads with no mutation in between disagree: %v vs %v", first, second)
	}
}

func TestIsBookable_RejectsMalformedRange(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := testConfig(now)
	svc := NewAvailabilityService(&mockLeasingRepository{}, cfg)

	jan25 := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)
	jan20 := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	if _, err := svc.IsBookable(context.Background(), testPlotID, jan25, jan20); err == nil {
		t.Error("expected an error for from after to")
	}
}

func TestLeasedRanges_ReturnsConfirmedRanges(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := testConfig(now)

	jan20 := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	jan25 := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)
	feb1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	feb10 := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	repo := &mockLeasingRepository{
		findReservedByPlotFunc: func(ctx context.Context, plotID string) ([]*model.Leasing, error) {
			return []*model.Leasing{
				reservedLeasing("r1", jan20, jan25),
				reservedLeasing("r2", feb1, feb10),
			}, nil
		},
	}
	svc := NewAvailabilityService(repo, cfg)

	ranges, err := svc.LeasedRanges(context.Background(), testPlotID, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}
	if !ranges[0].From.Equal(jan20) || !ranges[0].To.Equal(jan25) {
		t.Errorf("unexpected first range: %+v", ranges[0])
	}
}

func TestLeasedRanges_WindowFiltersNonOverlapping(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := testConfig(now)

	jan20 := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	jan25 := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)
	feb1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	feb10 := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	repo := &mockLeasingRepository{
		findReservedByPlotFunc: func(ctx context.Context, plotID string) ([]*model.Leasing, error) {
			return []*model.Leasing{
				reservedLeasing("r1", jan20, jan25),
				reservedLeasing("r2", feb1, feb10),
			}, nil
		},
	}
	svc := NewAvailabilityService(repo, cfg)

	windowFrom := time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC)
	windowTo := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)

	ranges, err := svc.LeasedRanges(context.Background(), testPlotID, &windowFrom, &windowTo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("expected 1 range inside the window, got %d", len(ranges))
	}
	if !ranges[0].From.Equal(feb1) {
		t.Errorf("unexpected range: %+v", ranges[0])
	}
}

func TestFindBlocking_StatusPredicate(t *testing.T) {
	jan20 := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	jan25 := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		candidate *model.Leasing
		requester string
		blocked   bool
	}{
		{
			name:      "reserved blocks everyone",
			candidate: reservedLeasing("r1", jan20, jan25),
			requester: testRenter2,
			blocked:   true,
		},
		{
			name: "open blocks its own creator",
			candidate: &model.Leasing{
				ID: "o1", PlotID: testPlotID, UserID: testRenter,
				From: jan20, To: jan25, Status: model.StatusOpen,
			},
			requester: testRenter,
			blocked:   true,
		},
		{
			name: "open does not block another user",
			candidate: &model.Leasing{
				ID: "o1", PlotID: testPlotID, UserID: testRenter,
				From: jan20, To: jan25, Status: model.StatusOpen,
			},
			requester: testRenter2,
			blocked:   false,
		},
		{
			name: "cancelled never blocks",
			candidate: &model.Leasing{
				ID: "c1", PlotID: testPlotID, UserID: testRenter,
				From: jan20, To: jan25, Status: model.StatusCancelled,
			},
			requester: testRenter,
			blocked:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockLeasingRepository{
				findOverlapCandidatesFunc: func(ctx context.Context, plotID string, from, to time.Time) ([]*model.Leasing, error) {
					return []*model.Leasing{tt.candidate}, nil
				},
			}
			resolver := NewOverlapResolver(repo)

			blocking, err := resolver.FindBlocking(context.Background(), testPlotID, tt.requester,
				time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 23, 0, 0, 0, 0, time.UTC),
			)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (len(blocking) > 0) != tt.blocked {
				t.Errorf("blocked = %v, want %v", len(blocking) > 0, tt.blocked)
			}
		})
	}
}

func TestFindBlocking_ReappliesOverlapPredicate(t *testing.T) {
	jan20 := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	jan25 := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)

	// A candidate that merely touches the requested range must be dropped
	// even if the store returned it.
	repo := &mockLeasingRepository{
		findOverlapCandidatesFunc: func(ctx context.Context, plotID string, from, to time.Time) ([]*model.Leasing, error) {
			return []*model.Leasing{reservedLeasing("r1", jan20, jan25)}, nil
		},
	}
	resolver := NewOverlapResolver(repo)

	blocking, err := resolver.FindBlocking(context.Background(), testPlotID, testRenter2,
		jan25,
		time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocking) != 0 {
		t.Errorf("expected no blocking leasings for a touching range, got %d", len(blocking))
	}
}
