package service

import (
	"context"
	"time"

	"plotlease/internal/leasings/repository"
	"plotlease/internal/leasings/validator"
	"plotlease/pkg/interval"
	"plotlease/pkg/model"
)

// overlapResolver computes which persisted leasings block a requested range.
// The repository pre-filters by plot, liveness and range; the resolver applies
// the status predicate and re-checks the shared overlap predicate so booking
// and availability can never disagree.
type overlapResolver struct {
	repo repository.LeasingRepository
}

func NewOverlapResolver(repo repository.LeasingRepository) validator.OverlapResolver {
	return &overlapResolver{repo: repo}
}

// FindBlocking returns every live leasing on the plot that overlaps
// [from, to) and blocks requesterID: RESERVED leasings block everyone, OPEN
// leasings only block their own creator. An empty result means the range is
// free for that requester.
func (r *overlapResolver) FindBlocking(ctx context.Context, plotID, requesterID string, from, to time.Time) ([]*model.Leasing, error) {
	candidates, err := r.repo.FindOverlapCandidates(ctx, plotID, from, to)
	if err != nil {
		return nil, err
	}

	requested := interval.New(from, to)

	var blocking []*model.Leasing
	for _, leasing := range candidates {
		if leasing.Blocks(requesterID) && leasing.Interval().Overlaps(requested) {
			blocking = append(blocking, leasing)
		}
	}

	return blocking, nil
}
