package leasings_test

import (
	"net/http"
	"testing"
	"time"

	"plotlease/pkg/model"
	"plotlease/test/integration/testutil"
)

const (
	renterID  = "507f1f77bcf86cd799439012"
	renter2ID = "507f1f77bcf86cd799439013"
	ownerID   = "507f1f77bcf86cd799439001"
)

func bookingBody(plotID, userID string, from, to time.Time) map[string]any {
	return map[string]any{
		"plot_id":   plotID,
		"user_id":   userID,
		"plot_name": "North field",
		"from":      from.Format(time.RFC3339),
		"to":        to.Format(time.RFC3339),
	}
}

func decodeLeasing(t *testing.T, resp *testutil.Response) *model.Leasing {
	t.Helper()
	var result struct {
		Data model.Leasing `json:"data"`
	}
	if err := resp.DecodeJSON(&result); err != nil {
		t.Fatalf("failed to decode leasing: %v", err)
	}
	return &result.Data
}

func decodeLeasings(t *testing.T, resp *testutil.Response) ([]model.Leasing, int64) {
	t.Helper()
	var result struct {
		Data       []model.Leasing `json:"data"`
		TotalCount int64           `json:"total_count"`
	}
	if err := resp.DecodeJSON(&result); err != nil {
		t.Fatalf("failed to decode leasings: %v", err)
	}
	return result.Data, result.TotalCount
}

func futureRange() (time.Time, time.Time) {
	from := time.Now().UTC().Add(30 * 24 * time.Hour).Truncate(time.Second)
	return from, from.Add(5 * 24 * time.Hour)
}

func TestLeasingLifecycle(t *testing.T) {
	testutil.SkipUnlessConfigured(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	plotID := mongo.InsertPlot(t, testutil.NewPlotBuilder().WithOwner(ownerID).BuildPtr())
	from, to := futureRange()

	resp := client.POST(t, "/api/v1/leasings", bookingBody(plotID, renterID, from, to))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	created := decodeLeasing(t, resp)

	if created.Status != model.StatusOpen {
		t.Fatalf("expected a fresh leasing to be OPEN, got %s", created.Status)
	}
	if created.OwnerID != ownerID {
		t.Errorf("expected the plot owner on the leasing, got %s", created.OwnerID)
	}
	if created.PriceCents <= 0 {
		t.Errorf("expected a derived price, got %d", created.PriceCents)
	}

	resp = client.GET(t, testutil.Path("/api/v1/leasings/id/%s", created.ID))
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = client.PATCH(t, testutil.Path("/api/v1/leasings/id/%s/status", created.ID), map[string]any{
		"status":   "RESERVED",
		"actor_id": ownerID,
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	reserved := decodeLeasing(t, resp)
	if reserved.Status != model.StatusReserved {
		t.Fatalf("expected RESERVED after owner confirmation, got %s", reserved.Status)
	}

	resp = client.GET(t, testutil.Path("/api/v1/plots/%s/availability?from=%s&to=%s",
		plotID, from.Format(time.RFC3339), to.Format(time.RFC3339)))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertContains(t, resp, `"bookable":false`)

	resp = client.GET(t, testutil.Path("/api/v1/plots/%s/leased-ranges", plotID))
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = client.DELETE(t, testutil.Path("/api/v1/leasings/id/%s?actor_id=%s", created.ID, renterID))
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)

	resp = client.GET(t, testutil.Path("/api/v1/leasings/id/%s", created.ID))
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)
}

func TestReservedRangeRejectsNewBookings(t *testing.T) {
	testutil.SkipUnlessConfigured(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	plotID := mongo.InsertPlot(t, testutil.ValidPlot())
	from, to := futureRange()

	resp := client.POST(t, "/api/v1/leasings", bookingBody(plotID, renterID, from, to))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	created := decodeLeasing(t, resp)

	resp = client.PATCH(t, testutil.Path("/api/v1/leasings/id/%s/status", created.ID), map[string]any{
		"status":   "RESERVED",
		"actor_id": ownerID,
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	// Another renter over the same dates must be turned away.
	resp = client.POST(t, "/api/v1/leasings", bookingBody(plotID, renter2ID, from, to))
	testutil.AssertStatusCode(t, resp, http.StatusUnprocessableEntity)
	testutil.AssertContains(t, resp, "overlap-detected")

	if count := mongo.CountDocuments(t, testutil.LeasingsCollection); count != 1 {
		t.Errorf("expected a single stored leasing, got %d", count)
	}
}

func TestDeletedReservedLeasingDoesNotBlock(t *testing.T) {
	testutil.SkipUnlessConfigured(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	plotID := mongo.InsertPlot(t, testutil.ValidPlot())
	from, to := futureRange()

	// A cancelled-and-removed reservation over the same dates.
	deletedAt := time.Now().UTC().Truncate(time.Second)
	mongo.InsertLeasing(t, &model.Leasing{
		PlotID:    plotID,
		UserID:    renterID,
		OwnerID:   ownerID,
		From:      from,
		To:        to,
		Status:    model.StatusReserved,
		DeletedAt: &deletedAt,
	})

	resp := client.GET(t, testutil.Path("/api/v1/plots/%s/availability?from=%s&to=%s",
		plotID, from.Format(time.RFC3339), to.Format(time.RFC3339)))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertContains(t, resp, `"bookable":true`)

	resp = client.POST(t, "/api/v1/leasings", bookingBody(plotID, renter2ID, from, to))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
}

func TestOpenRequestsFromDifferentUsersCoexist(t *testing.T) {
	testutil.SkipUnlessConfigured(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	plotID := mongo.InsertPlot(t, testutil.ValidPlot())
	from, to := futureRange()

	resp := client.POST(t, "/api/v1/leasings", bookingBody(plotID, renterID, from, to))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	resp = client.POST(t, "/api/v1/leasings", bookingBody(plotID, renter2ID, from, to))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	resp = client.GET(t, testutil.Path("/api/v1/leasings?scope=plot&id=%s", plotID))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	_, total := decodeLeasings(t, resp)
	if total != 2 {
		t.Errorf("expected two open requests on the plot, got %d", total)
	}

	resp = client.GET(t, testutil.Path("/api/v1/leasings?scope=renter&id=%s", renterID))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	_, total = decodeLeasings(t, resp)
	if total != 1 {
		t.Errorf("expected one leasing for the renter, got %d", total)
	}
}

func TestCreateReplayWithIdempotencyKey(t *testing.T) {
	testutil.SkipUnlessConfigured(t)

	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	plotID := mongo.InsertPlot(t, testutil.ValidPlot())
	from, to := futureRange()
	headers := map[string]string{"Idempotency-Key": "it-replay-1"}
	body := bookingBody(plotID, renterID, from, to)

	first := client.POSTWithHeaders(t, "/api/v1/leasings", body, headers)
	testutil.AssertStatusCode(t, first, http.StatusCreated)
	second := client.POSTWithHeaders(t, "/api/v1/leasings", body, headers)
	testutil.AssertStatusCode(t, second, http.StatusCreated)

	if decodeLeasing(t, first).ID != decodeLeasing(t, second).ID {
		t.Error("expected the replay to return the original leasing")
	}
	if count := mongo.CountDocuments(t, testutil.LeasingsCollection); count != 1 {
		t.Errorf("expected a single stored leasing after replay, got %d", count)
	}
}
