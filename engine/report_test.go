package engine

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"cartsync"
	"cartsync/normalize"
)

func reportGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func testSearchURL(query string) string {
	return "https://example.test/search?q=" + query
}

func TestRenderReportBlocked(t *testing.T) {
	result := &RunResult{
		RunID:    "run-0001",
		ListName: "Groceries",
		State:    StateBlocked,
		Blocked: []Resolution{
			{
				Item:   normalize.CanonicalItem{Original: "Ornaments", Normalized: "ornaments", Quantity: 1},
				Status: Unmapped,
			},
			{
				Item:   normalize.CanonicalItem{Original: "Rainbow Carrotts", Normalized: "rainbow carrots", Quantity: 1},
				Status: FuzzyCandidate,
				Candidates: []cartsync.ScoredProduct{
					{Product: cartsync.ProductIdentity{ID: "46176", Name: "Short Carrots"}, Score: 0.5},
					{Product: cartsync.ProductIdentity{ID: "10001", Name: "Baby Carrots 1 lb"}, Score: 0.5},
				},
			},
		},
	}

	reportGoldie(t).Assert(t, "report_blocked", []byte(RenderReport(result, testSearchURL)))
}

func TestRenderReportDone(t *testing.T) {
	carrots := ResolvedItem{
		Item:    normalize.CanonicalItem{Original: "short carrots", Normalized: "short carrots", Quantity: 1},
		Product: cartsync.ProductIdentity{ID: "46176", Name: "Short Carrots"},
	}
	eggs := ResolvedItem{
		Item:    normalize.CanonicalItem{Original: "2 dozen eggs", Normalized: "eggs", Quantity: 24},
		Product: cartsync.ProductIdentity{ID: "88001", Name: "Large Eggs 12 ct"},
	}

	result := &RunResult{
		RunID:    "run-0002",
		ListName: "Groceries",
		State:    StateDone,
		Plan: AddPlan{Adds: []AddInstruction{
			{Item: carrots, Count: 1},
			{Item: eggs, Count: 24},
		}},
		Executed: []ExecutionRecord{
			{Item: carrots, Count: 1, Status: cartsync.AddOK, Attempts: 1},
			{Item: eggs, Count: 24, Status: cartsync.AddOutOfStock, Attempts: 1},
		},
		Audit: &AuditReport{
			Fulfilled:  []ResolvedItem{carrots},
			Missing:    []ResolvedItem{eggs},
			Unexpected: []cartsync.CartEntry{{DisplayName: "Frozen Pizza", Count: 1}},
		},
	}

	reportGoldie(t).Assert(t, "report_done", []byte(RenderReport(result, testSearchURL)))
}

func TestRenderReportDryRun(t *testing.T) {
	result := &RunResult{
		RunID:    "run-0003",
		ListName: "Groceries",
		State:    StateReady,
		Items:    make([]Resolution, 3),
	}

	reportGoldie(t).Assert(t, "report_dry_run", []byte(RenderReport(result, testSearchURL)))
}

func TestRenderReportAlreadySatisfied(t *testing.T) {
	eggs := ResolvedItem{
		Item:    normalize.CanonicalItem{Original: "eggs", Normalized: "eggs", Quantity: 1},
		Product: cartsync.ProductIdentity{ID: "88001", Name: "Large Eggs 12 ct"},
	}

	result := &RunResult{
		RunID:    "run-0004",
		ListName: "Groceries",
		State:    StateDone,
		Audit: &AuditReport{
			Fulfilled: []ResolvedItem{eggs},
		},
	}

	reportGoldie(t).Assert(t, "report_already_satisfied", []byte(RenderReport(result, testSearchURL)))
}
