package services

import (
	"testing"
	"time"

	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
)

func submissionAt(wallet string, results map[string]int, observed time.Time) entities.Submission {
	return entities.Submission{
		SubmissionID:     "sub-" + wallet,
		WalletAddress:    wallet,
		PollingStationID: "st-001",
		Timestamp:        observed,
		Results:          results,
		SubmissionType:   entities.SubmissionTypeManual,
		Confidence:       1,
	}
}

func TestEvaluateBelowThresholdStaysPending(t *testing.T) {
	policy := ConsensusPolicy{}
	base := time.Date(2027, 8, 12, 18, 0, 0, 0, time.UTC)
	results := map[string]int{"Alice": 100, "Bob": 50, "spoilt": 2}

	outcome := policy.Evaluate([]entities.Submission{
		submissionAt("w1", results, base),
		submissionAt("w2", results, base.Add(time.Minute)),
	})
	if outcome.Status != entities.StationStatusPending {
		t.Fatalf("two matching witnesses must stay pending, got %s", outcome.Status)
	}
	if outcome.VerifiedResults != nil {
		t.Fatalf("pending outcome must not carry verified results")
	}
	if outcome.WitnessCount != 2 {
		t.Fatalf("expected witness count 2, got %d", outcome.WitnessCount)
	}
}

func TestEvaluateUnanimousVerifies(t *testing.T) {
	policy := ConsensusPolicy{}
	base := time.Date(2027, 8, 12, 18, 0, 0, 0, time.UTC)
	results := map[string]int{"Alice": 100, "Bob": 50, "spoilt": 2}

	outcome := policy.Evaluate([]entities.Submission{
		submissionAt("w1", results, base),
		submissionAt("w2", results, base.Add(time.Minute)),
		submissionAt("w3", results, base.Add(2*time.Minute)),
	})
	if outcome.Status != entities.StationStatusVerified {
		t.Fatalf("three matching witnesses must verify, got %s", outcome.Status)
	}
	if outcome.VerifiedResults["Alice"] != 100 || outcome.VerifiedResults["spoilt"] != 2 {
		t.Fatalf("unexpected verified results: %v", outcome.VerifiedResults)
	}
	if outcome.ConfidenceLevel != 1 {
		t.Fatalf("unanimous agreement must have confidence 1, got %f", outcome.ConfidenceLevel)
	}
}

func TestEvaluateMajorityConfidenceShare(t *testing.T) {
	policy := ConsensusPolicy{}
	base := time.Date(2027, 8, 12, 18, 0, 0, 0, time.UTC)
	agree := map[string]int{"Alice": 100, "Bob": 50, "spoilt": 2}
	dissent := map[string]int{"Alice": 99, "Bob": 51, "spoilt": 2}

	outcome := policy.Evaluate([]entities.Submission{
		submissionAt("w1", agree, base),
		submissionAt("w2", agree, base.Add(time.Minute)),
		submissionAt("w3", agree, base.Add(2*time.Minute)),
		submissionAt("w4", dissent, base.Add(3*time.Minute)),
	})
	if outcome.Status != entities.StationStatusVerified {
		t.Fatalf("3-of-4 agreement must verify, got %s", outcome.Status)
	}
	if outcome.ConfidenceLevel != 0.75 {
		t.Fatalf("expected confidence 0.75, got %f", outcome.ConfidenceLevel)
	}
	if outcome.WitnessCount != 4 {
		t.Fatalf("witness count must cover all live submissions, got %d", outcome.WitnessCount)
	}
}

func TestEvaluateNearMissCountsDiffer(t *testing.T) {
	policy := ConsensusPolicy{}
	base := time.Date(2027, 8, 12, 18, 0, 0, 0, time.UTC)

	outcome := policy.Evaluate([]entities.Submission{
		submissionAt("w1", map[string]int{"Alice": 100, "spoilt": 2}, base),
		submissionAt("w2", map[string]int{"Alice": 100, "spoilt": 2}, base.Add(time.Minute)),
		submissionAt("w3", map[string]int{"Alice": 101, "spoilt": 2}, base.Add(2*time.Minute)),
	})
	if outcome.Status != entities.StationStatusPending {
		t.Fatalf("near-identical results must not verify, got %s", outcome.Status)
	}
}

func TestEvaluateTieGoesToEarliestGroup(t *testing.T) {
	policy := ConsensusPolicy{}
	base := time.Date(2027, 8, 12, 18, 0, 0, 0, time.UTC)
	first := map[string]int{"Alice": 100, "spoilt": 0}
	second := map[string]int{"Alice": 200, "spoilt": 0}

	outcome := policy.Evaluate([]entities.Submission{
		submissionAt("w1", first, base),
		submissionAt("w2", second, base.Add(time.Minute)),
		submissionAt("w3", first, base.Add(2*time.Minute)),
		submissionAt("w4", second, base.Add(3*time.Minute)),
		submissionAt("w5", first, base.Add(4*time.Minute)),
		submissionAt("w6", second, base.Add(5*time.Minute)),
	})
	if outcome.Status != entities.StationStatusVerified {
		t.Fatalf("tied 3-3 groups at threshold must still verify, got %s", outcome.Status)
	}
	if outcome.VerifiedResults["Alice"] != 100 {
		t.Fatalf("first-formed group must win the tie, got %v", outcome.VerifiedResults)
	}
}

func TestEvaluateCustomThreshold(t *testing.T) {
	policy := ConsensusPolicy{MinWitnesses: 5}
	base := time.Date(2027, 8, 12, 18, 0, 0, 0, time.UTC)
	results := map[string]int{"Alice": 10, "spoilt": 1}

	submissions := []entities.Submission{
		submissionAt("w1", results, base),
		submissionAt("w2", results, base.Add(time.Minute)),
		submissionAt("w3", results, base.Add(2*time.Minute)),
		submissionAt("w4", results, base.Add(3*time.Minute)),
	}
	if got := policy.Evaluate(submissions); got.Status != entities.StationStatusPending {
		t.Fatalf("four witnesses below a threshold of five must stay pending, got %s", got.Status)
	}

	submissions = append(submissions, submissionAt("w5", results, base.Add(4*time.Minute)))
	if got := policy.Evaluate(submissions); got.Status != entities.StationStatusVerified {
		t.Fatalf("five matching witnesses must verify at threshold five, got %s", got.Status)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	policy := ConsensusPolicy{}
	base := time.Date(2027, 8, 12, 18, 0, 0, 0, time.UTC)
	results := map[string]int{"Alice": 100, "Bob": 50, "spoilt": 2}
	submissions := []entities.Submission{
		submissionAt("w1", results, base),
		submissionAt("w2", results, base.Add(time.Minute)),
		submissionAt("w3", results, base.Add(2*time.Minute)),
	}

	first := policy.Evaluate(submissions)
	second := policy.Evaluate(submissions)
	if first.Status != second.Status || first.ConfidenceLevel != second.ConfidenceLevel {
		t.Fatalf("repeat evaluation diverged: %+v vs %+v", first, second)
	}
}
