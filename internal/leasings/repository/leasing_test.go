package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	leasingserrors "plotlease/internal/leasings/errors"
	"plotlease/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

func TestScope_FieldMapping(t *testing.T) {
	tests := []struct {
		scope Scope
		field string
	}{
		{ScopePlot, "plot_id"},
		{ScopeRenter, "user_id"},
		{ScopeOwner, "owner_id"},
		{Scope("garden"), ""},
	}

	for _, tt := range tests {
		if got := tt.scope.Field(); got != tt.field {
			t.Errorf("Scope(%q).Field() = %q, want %q", tt.scope, got, tt.field)
		}
	}
}

func TestBuildScopeFilter_AlwaysExcludesDeleted(t *testing.T) {
	query, err := buildScopeFilter(ScopePlot, "p1", ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deleted, ok := query["deleted_at"]
	if !ok || deleted != nil {
		t.Errorf("expected deleted_at: nil in every filter, got %v", query)
	}
	if query["plot_id"] != "p1" {
		t.Errorf("expected plot_id predicate, got %v", query)
	}
}

func TestOverlapFilter_ExcludesDeleted(t *testing.T) {
	from := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)

	query := overlapFilter("p1", from, to)

	deleted, ok := query["deleted_at"]
	if !ok || deleted != nil {
		t.Errorf("expected deleted_at: nil in the overlap filter, got %v", query)
	}
	if query["plot_id"] != "p1" {
		t.Errorf("expected plot_id predicate, got %v", query)
	}

	fromPred, ok := query["from"].(bson.M)
	if !ok || !fromPred["$lt"].(time.Time).Equal(to) {
		t.Errorf("expected from $lt to, got %v", query["from"])
	}
	toPred, ok := query["to"].(bson.M)
	if !ok || !toPred["$gt"].(time.Time).Equal(from) {
		t.Errorf("expected to $gt from, got %v", query["to"])
	}
}

func TestFindOverlapCandidates_RejectsInvertedRange(t *testing.T) {
	r := &mongoLeasingRepository{}

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := r.FindOverlapCandidates(context.Background(), "p1", from, to); !errors.Is(err, leasingserrors.ErrInvalidTimeRange) {
		t.Errorf("expected ErrInvalidTimeRange for an inverted range, got: %v", err)
	}
	if _, err := r.FindOverlapCandidates(context.Background(), "p1", from, from); !errors.Is(err, leasingserrors.ErrInvalidTimeRange) {
		t.Errorf("expected ErrInvalidTimeRange for an empty range, got: %v", err)
	}
}

func TestBuildScopeFilter_OmitsAbsentPredicates(t *testing.T) {
	query, err := buildScopeFilter(ScopeRenter, "u1", ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{"status", "from", "to"} {
		if _, ok := query[key]; ok {
			t.Errorf("expected no %s predicate for an absent parameter, got %v", key, query)
		}
	}
}

func TestBuildScopeFilter_StatusAndContainment(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	query, err := buildScopeFilter(ScopeOwner, "o1", ListFilter{
		Statuses: []model.LeasingStatus{model.StatusOpen, model.StatusReserved},
		From:     &from,
		To:       &to,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status, ok := query["status"].(bson.M)
	if !ok {
		t.Fatalf("expected a status predicate, got %v", query)
	}
	in, ok := status["$in"].([]model.LeasingStatus)
	if !ok || len(in) != 2 {
		t.Errorf("expected $in with two statuses, got %v", status)
	}

	fromPred, ok := query["from"].(bson.M)
	if !ok || !fromPred["$gte"].(time.Time).Equal(from) {
		t.Errorf("expected from $gte containment bound, got %v", query["from"])
	}
	toPred, ok := query["to"].(bson.M)
	if !ok || !toPred["$lte"].(time.Time).Equal(to) {
		t.Errorf("expected to $lte containment bound, got %v", query["to"])
	}
}

func TestBuildScopeFilter_TemporalBuckets(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		bucket Bucket
		check  func(t *testing.T, query bson.M)
	}{
		{
			bucket: BucketPast,
			check: func(t *testing.T, query bson.M) {
				toPred := query["to"].(bson.M)
				if !toPred["$lt"].(time.Time).Equal(now) {
					t.Errorf("past bucket: expected to $lt now, got %v", toPred)
				}
			},
		},
		{
			bucket: BucketOngoing,
			check: func(t *testing.T, query bson.M) {
				fromPred := query["from"].(bson.M)
				toPred := query["to"].(bson.M)
				if !fromPred["$lte"].(time.Time).Equal(now) || !toPred["$gte"].(time.Time).Equal(now) {
					t.Errorf("ongoing bucket: expected from <= now <= to, got from=%v to=%v", fromPred, toPred)
				}
			},
		},
		{
			bucket: BucketFuture,
			check: func(t *testing.T, query bson.M) {
				fromPred := query["from"].(bson.M)
				if !fromPred["$gt"].(time.Time).Equal(now) {
					t.Errorf("future bucket: expected from $gt now, got %v", fromPred)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			query, err := buildScopeFilter(ScopePlot, "p1", ListFilter{Bucket: tt.bucket, Now: now})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, query)
		})
	}
}

func TestBuildScopeFilter_BucketComposesWithContainment(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	query, err := buildScopeFilter(ScopeRenter, "u1", ListFilter{
		From:   &from,
		Bucket: BucketFuture,
		Now:    now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fromPred, ok := query["from"].(bson.M)
	if !ok {
		t.Fatalf("expected a from predicate, got %v", query)
	}
	if !fromPred["$gte"].(time.Time).Equal(from) {
		t.Errorf("containment bound lost when composing with bucket: %v", fromPred)
	}
	if !fromPred["$gt"].(time.Time).Equal(now) {
		t.Errorf("bucket bound lost when composing with containment: %v", fromPred)
	}
}

func TestBuildScopeFilter_RejectsUnknownScopeAndBucket(t *testing.T) {
	if _, err := buildScopeFilter(Scope("garden"), "x", ListFilter{}); err == nil {
		t.Error("expected an error for an unknown scope")
	}
	if _, err := buildScopeFilter(ScopePlot, "x", ListFilter{Bucket: Bucket("yesterday")}); err == nil {
		t.Error("expected an error for an unknown bucket")
	}
}
