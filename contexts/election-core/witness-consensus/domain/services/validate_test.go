package services

import (
	"strings"
	"testing"
	"time"

	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
	domainerrors "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/errors"
)

func validProcessInput() ProcessInput {
	return ProcessInput{
		Title:    "Presidential Election 2027",
		Position: "President",
		Candidates: []entities.Candidate{
			{CandidateID: "c1", Name: "Alice"},
			{CandidateID: "c2", Name: "Bob"},
		},
		PollingStations: []string{"st-001", "st-002"},
	}
}

func validSubmissionInput(now time.Time) SubmissionInput {
	return SubmissionInput{
		WalletAddress:    "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
		PollingStationID: "st-001",
		GPS:              entities.GPSCoordinates{Latitude: -1.2921, Longitude: 36.8219},
		Timestamp:        now.Add(-10 * time.Minute),
		Results:          map[string]int{"Alice": 100, "Bob": 50, "spoilt": 2},
		SubmissionType:   "image_ocr",
		Confidence:       0.92,
	}
}

func fieldNames(err error) []string {
	validation, ok := domainerrors.AsValidationError(err)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(validation.Fields))
	for _, field := range validation.Fields {
		names = append(names, field.Field)
	}
	return names
}

func hasField(err error, name string) bool {
	for _, field := range fieldNames(err) {
		if field == name {
			return true
		}
	}
	return false
}

func TestValidateProcessAcceptsCleanInput(t *testing.T) {
	if err := ValidateProcess(validProcessInput()); err != nil {
		t.Fatalf("valid process input rejected: %v", err)
	}
}

func TestValidateProcessCollectsAllViolations(t *testing.T) {
	err := ValidateProcess(ProcessInput{
		Title:    strings.Repeat("x", maxTitleLength+1),
		Position: " ",
		Candidates: []entities.Candidate{
			{CandidateID: "c1", Name: "Alice"},
			{CandidateID: "c1", Name: "Alice"},
		},
		PollingStations: []string{"st-001", "st-001", " "},
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{
		"title",
		"position",
		"candidates[1].id",
		"candidates[1].name",
		"pollingStations[1]",
		"pollingStations[2]",
	} {
		if !hasField(err, want) {
			t.Fatalf("missing violation for %s, got %v", want, fieldNames(err))
		}
	}
}

func TestValidateSubmissionAcceptsCleanInput(t *testing.T) {
	now := time.Date(2027, 8, 12, 20, 0, 0, 0, time.UTC)
	if err := ValidateSubmission(validSubmissionInput(now), now); err != nil {
		t.Fatalf("valid submission rejected: %v", err)
	}
}

func TestValidateSubmissionMissingSpoilt(t *testing.T) {
	now := time.Date(2027, 8, 12, 20, 0, 0, 0, time.UTC)
	input := validSubmissionInput(now)
	input.Results = map[string]int{"Alice": 100, "Bob": 50}

	err := ValidateSubmission(input, now)
	if !hasField(err, "results.spoilt") {
		t.Fatalf("expected results.spoilt violation, got %v", fieldNames(err))
	}
}

func TestValidateSubmissionNegativeCount(t *testing.T) {
	now := time.Date(2027, 8, 12, 20, 0, 0, 0, time.UTC)
	input := validSubmissionInput(now)
	input.Results["Bob"] = -1

	err := ValidateSubmission(input, now)
	if !hasField(err, "results.Bob") {
		t.Fatalf("expected results.Bob violation, got %v", fieldNames(err))
	}
}

func TestValidateSubmissionTimestampWindow(t *testing.T) {
	now := time.Date(2027, 8, 12, 20, 0, 0, 0, time.UTC)

	stale := validSubmissionInput(now)
	stale.Timestamp = now.Add(-9 * time.Hour)
	if err := ValidateSubmission(stale, now); !hasField(err, "timestamp") {
		t.Fatalf("expected stale timestamp rejection, got %v", fieldNames(err))
	}

	future := validSubmissionInput(now)
	future.Timestamp = now.Add(10 * time.Minute)
	if err := ValidateSubmission(future, now); !hasField(err, "timestamp") {
		t.Fatalf("expected future timestamp rejection, got %v", fieldNames(err))
	}

	// Offline witnesses can carry results for hours before regaining signal.
	queued := validSubmissionInput(now)
	queued.Timestamp = now.Add(-7 * time.Hour)
	if err := ValidateSubmission(queued, now); err != nil {
		t.Fatalf("seven hour old submission must pass: %v", err)
	}
}

func TestValidateSubmissionBadGPSAndConfidence(t *testing.T) {
	now := time.Date(2027, 8, 12, 20, 0, 0, 0, time.UTC)
	input := validSubmissionInput(now)
	input.GPS = entities.GPSCoordinates{Latitude: 91, Longitude: -181}
	input.Confidence = 1.5
	input.SubmissionType = "guess"

	err := ValidateSubmission(input, now)
	for _, want := range []string{
		"gpsCoordinates.latitude",
		"gpsCoordinates.longitude",
		"confidence",
		"submissionType",
	} {
		if !hasField(err, want) {
			t.Fatalf("missing violation for %s, got %v", want, fieldNames(err))
		}
	}
}

func TestValidateSubmissionWalletWhitespace(t *testing.T) {
	now := time.Date(2027, 8, 12, 20, 0, 0, 0, time.UTC)
	input := validSubmissionInput(now)
	input.WalletAddress = "5Grw vaEF"

	if err := ValidateSubmission(input, now); !hasField(err, "walletAddress") {
		t.Fatalf("expected walletAddress violation, got %v", fieldNames(err))
	}
}
