package validator

import (
	"context"
	"testing"
	"time"

	"plotlease/pkg/clock"
	"plotlease/pkg/logger"
	"plotlease/pkg/model"
)

type mockResolver struct {
	findBlockingFunc func(ctx context.Context, plotID, requesterID string, from, to time.Time) ([]*model.Leasing, error)
}

func (m *mockResolver) FindBlocking(ctx context.Context, plotID, requesterID string, from, to time.Time) ([]*model.Leasing, error) {
	if m.findBlockingFunc != nil {
		return m.findBlockingFunc(ctx, plotID, requesterID, from, to)
	}
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.FormatJSON,
		Service: "test",
	})
}

func newTestValidator(now time.Time, resolver OverlapResolver) *LeasingValidator {
	if resolver == nil {
		resolver = &mockResolver{}
	}
	return NewLeasingValidator(resolver, clock.Fixed(now), 14, testLogger())
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func hasCode(violations Violations, code string) bool {
	for _, v := range violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

func TestValidateBooking_LeadTimeBoundary(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		from      time.Time
		wantFails bool
	}{
		{
			name:      "exactly 14 days out is not sufficient",
			from:      now.Add(14 * 24 * time.Hour),
			wantFails: true,
		},
		{
			name:      "14 days and one second passes",
			from:      now.Add(14*24*time.Hour + time.Second),
			wantFails: false,
		},
		{
			name:      "9 days out fails",
			from:      now.Add(9 * 24 * time.Hour),
			wantFails: true,
		},
		{
			name:      "19 days out passes",
			from:      now.Add(19 * 24 * time.Hour),
			wantFails: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(now, nil)
			req := &BookingRequest{
				PlotID:   "507f1f77bcf86cd799439011",
				UserID:   "507f1f77bcf86cd799439012",
				PlotName: "North field",
				From:     timePtr(tt.from),
				To:       timePtr(tt.from.Add(5 * 24 * time.Hour)),
			}

			violations, err := v.ValidateBooking(context.Background(), req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := hasCode(violations, CodeInsufficientLeadTime)
			if got != tt.wantFails {
				t.Errorf("insufficient-lead-time reported = %v, want %v (violations: %v)", got, tt.wantFails, violations.Codes())
			}
		})
	}
}

func TestValidateBooking_MissingInstants(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	resolverCalled := false
	resolver := &mockResolver{
		findBlockingFunc: func(ctx context.Context, plotID, requesterID string, from, to time.Time) ([]*model.Leasing, error) {
			resolverCalled = true
			return nil, nil
		},
	}
	v := newTestValidator(now, resolver)

	req := &BookingRequest{
		PlotID:   "507f1f77bcf86cd799439011",
		UserID:   "507f1f77bcf86cd799439012",
		PlotName: "North field",
		From:     nil,
		To:       timePtr(now.Add(20 * 24 * time.Hour)),
	}

	violations, err := v.ValidateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !hasCode(violations, CodeFromOrToMissing) {
		t.Errorf("expected %s, got %v", CodeFromOrToMissing, violations.Codes())
	}
	if resolverCalled {
		t.Error("resolver must not run when the range is incomplete")
	}
}

func TestValidateBooking_FromAfterTo(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	v := newTestValidator(now, nil)

	from := now.Add(30 * 24 * time.Hour)
	req := &BookingRequest{
		PlotID:   "507f1f77bcf86cd799439011",
		UserID:   "507f1f77bcf86cd799439012",
		PlotName: "North field",
		From:     timePtr(from),
		To:       timePtr(from.Add(-24 * time.Hour)),
	}

	violations, err := v.ValidateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !hasCode(violations, CodeFromAfterTo) {
		t.Errorf("expected %s, got %v", CodeFromAfterTo, violations.Codes())
	}
	if hasCode(violations, CodeOverlapDetected) {
		t.Error("overlap check must not run on a malformed range")
	}
}

func TestValidateBooking_OverlapDetected(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	resolver := &mockResolver{
		findBlockingFunc: func(ctx context.Context, plotID, requesterID string, from, to time.Time) ([]*model.Leasing, error) {
			return []*model.Leasing{
				{ID: "existing", PlotID: plotID, Status: model.StatusReserved},
			}, nil
		},
	}
	v := newTestValidator(now, resolver)

	from := now.Add(20 * 24 * time.Hour)
	req := &BookingRequest{
		PlotID:   "507f1f77bcf86cd799439011",
		UserID:   "507f1f77bcf86cd799439012",
		PlotName: "North field",
		From:     timePtr(from),
		To:       timePtr(from.Add(5 * 24 * time.Hour)),
	}

	violations, err := v.ValidateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(violations) != 1 || violations[0].Code != CodeOverlapDetected {
		t.Errorf("expected only %s, got %v", CodeOverlapDetected, violations.Codes())
	}
}

func TestValidateBooking_AllViolationsReportedTogether(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	v := newTestValidator(now, nil)

	from := now.Add(9 * 24 * time.Hour)
	req := &BookingRequest{
		PlotID:   "507f1f77bcf86cd799439011",
		UserID:   "507f1f77bcf86cd799439012",
		PlotName: "   ",
		From:     timePtr(from),
		To:       timePtr(from.Add(-24 * time.Hour)),
	}

	violations, err := v.ValidateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{CodeFromAfterTo, CodeInsufficientLeadTime, CodePlotNameEmpty} {
		if !hasCode(violations, want) {
			t.Errorf("expected %s among %v", want, violations.Codes())
		}
	}
	if len(violations) != 3 {
		t.Errorf("expected 3 violations, got %d: %v", len(violations), violations.Codes())
	}
}

func TestValidateBooking_CleanRequestHasNoViolations(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	v := newTestValidator(now, nil)

	from := now.Add(20 * 24 * time.Hour)
	req := &BookingRequest{
		PlotID:   "507f1f77bcf86cd799439011",
		UserID:   "507f1f77bcf86cd799439012",
		PlotName: "North field",
		From:     timePtr(from),
		To:       timePtr(from.Add(5 * 24 * time.Hour)),
	}

	violations, err := v.ValidateBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("expected no violations, got %v", violations.Codes())
	}
}

func TestValidateRequest_RejectsMalformedIDs(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	v := newTestValidator(now, nil)

	req := &BookingRequest{
		PlotID:   "not-an-object-id",
		UserID:   "507f1f77bcf86cd799439012",
		PlotName: "North field",
	}

	if err := v.ValidateRequest(req); err == nil {
		t.Error("expected an error for a malformed plot id")
	}
}
