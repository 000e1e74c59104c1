package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
	domainerrors "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/errors"
)

const (
	maxTitleLength = 200

	// Submission timestamps must land inside [now-8h, now+5m]. The lower
	// bound tolerates witnesses that queued results offline through a
	// counting evening; the upper bound tolerates modest clock skew.
	submissionMaxAge  = 8 * time.Hour
	submissionMaxSkew = 5 * time.Minute
)

// ProcessInput is the validator's view of a voting-process creation payload.
type ProcessInput struct {
	Title           string
	Position        string
	Candidates      []entities.Candidate
	PollingStations []string
}

// SubmissionInput is the validator's view of a witness submission payload.
type SubmissionInput struct {
	WalletAddress    string
	PollingStationID string
	GPS              entities.GPSCoordinates
	Timestamp        time.Time
	Results          map[string]int
	SubmissionType   string
	Confidence       float64
}

// ValidateProcess checks a creation payload against the business rules,
// independently of storage. It returns a *ValidationError carrying every
// violation found, or nil when the payload is clean.
func ValidateProcess(input ProcessInput) error {
	var fields []domainerrors.FieldError

	title := strings.TrimSpace(input.Title)
	if title == "" {
		fields = append(fields, domainerrors.FieldError{Field: "title", Message: "title is required"})
	} else if len(title) > maxTitleLength {
		fields = append(fields, domainerrors.FieldError{
			Field:   "title",
			Message: fmt.Sprintf("title must be at most %d characters", maxTitleLength),
		})
	}
	if strings.TrimSpace(input.Position) == "" {
		fields = append(fields, domainerrors.FieldError{Field: "position", Message: "position is required"})
	}

	if len(input.Candidates) == 0 {
		fields = append(fields, domainerrors.FieldError{Field: "candidates", Message: "at least one candidate is required"})
	}
	seenIDs := make(map[string]struct{}, len(input.Candidates))
	seenNames := make(map[string]struct{}, len(input.Candidates))
	for i, candidate := range input.Candidates {
		id := strings.TrimSpace(candidate.CandidateID)
		name := strings.TrimSpace(candidate.Name)
		if id == "" {
			fields = append(fields, domainerrors.FieldError{
				Field:   fmt.Sprintf("candidates[%d].id", i),
				Message: "candidate id is required",
			})
		} else if _, dup := seenIDs[id]; dup {
			fields = append(fields, domainerrors.FieldError{
				Field:   fmt.Sprintf("candidates[%d].id", i),
				Message: "candidate id must be unique",
			})
		}
		seenIDs[id] = struct{}{}
		if name == "" {
			fields = append(fields, domainerrors.FieldError{
				Field:   fmt.Sprintf("candidates[%d].name", i),
				Message: "candidate name is required",
			})
		} else if _, dup := seenNames[name]; dup {
			fields = append(fields, domainerrors.FieldError{
				Field:   fmt.Sprintf("candidates[%d].name", i),
				Message: "candidate name must be unique",
			})
		}
		seenNames[name] = struct{}{}
	}

	if len(input.PollingStations) == 0 {
		fields = append(fields, domainerrors.FieldError{
			Field:   "pollingStations",
			Message: "at least one polling station is required",
		})
	}
	seenStations := make(map[string]struct{}, len(input.PollingStations))
	for i, stationID := range input.PollingStations {
		id := strings.TrimSpace(stationID)
		if id == "" {
			fields = append(fields, domainerrors.FieldError{
				Field:   fmt.Sprintf("pollingStations[%d]", i),
				Message: "polling station id is required",
			})
			continue
		}
		if _, dup := seenStations[id]; dup {
			fields = append(fields, domainerrors.FieldError{
				Field:   fmt.Sprintf("pollingStations[%d]", i),
				Message: "polling station id must be unique",
			})
		}
		seenStations[id] = struct{}{}
	}

	if len(fields) > 0 {
		return &domainerrors.ValidationError{Fields: fields}
	}
	return nil
}

// ValidateSubmission checks a witness submission payload against the business
// rules. The now argument anchors the timestamp window so callers and tests
// share one clock.
func ValidateSubmission(input SubmissionInput, now time.Time) error {
	var fields []domainerrors.FieldError

	wallet := strings.TrimSpace(input.WalletAddress)
	if wallet == "" {
		fields = append(fields, domainerrors.FieldError{Field: "walletAddress", Message: "wallet address is required"})
	} else if strings.ContainsAny(wallet, " \t\n") {
		fields = append(fields, domainerrors.FieldError{Field: "walletAddress", Message: "wallet address must not contain whitespace"})
	}

	if strings.TrimSpace(input.PollingStationID) == "" {
		fields = append(fields, domainerrors.FieldError{Field: "pollingStationId", Message: "polling station id is required"})
	}

	if input.GPS.Latitude < -90 || input.GPS.Latitude > 90 {
		fields = append(fields, domainerrors.FieldError{
			Field:   "gpsCoordinates.latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if input.GPS.Longitude < -180 || input.GPS.Longitude > 180 {
		fields = append(fields, domainerrors.FieldError{
			Field:   "gpsCoordinates.longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if input.Timestamp.IsZero() {
		fields = append(fields, domainerrors.FieldError{Field: "timestamp", Message: "timestamp is required"})
	} else if input.Timestamp.Before(now.Add(-submissionMaxAge)) {
		fields = append(fields, domainerrors.FieldError{Field: "timestamp", Message: "timestamp is too far in the past"})
	} else if input.Timestamp.After(now.Add(submissionMaxSkew)) {
		fields = append(fields, domainerrors.FieldError{Field: "timestamp", Message: "timestamp is too far in the future"})
	}

	if len(input.Results) == 0 {
		fields = append(fields, domainerrors.FieldError{Field: "results", Message: "results must not be empty"})
	} else {
		if _, ok := input.Results[entities.SpoiltKey]; !ok {
			fields = append(fields, domainerrors.FieldError{
				Field:   "results." + entities.SpoiltKey,
				Message: "spoilt count is required",
			})
		}
		for name, votes := range input.Results {
			if strings.TrimSpace(name) == "" {
				fields = append(fields, domainerrors.FieldError{Field: "results", Message: "candidate name must not be empty"})
				continue
			}
			if votes < 0 {
				fields = append(fields, domainerrors.FieldError{
					Field:   "results." + name,
					Message: "vote count must not be negative",
				})
			}
		}
	}

	switch entities.SubmissionType(input.SubmissionType) {
	case entities.SubmissionTypeImageOCR, entities.SubmissionTypeAudioSTT, entities.SubmissionTypeManual:
	default:
		fields = append(fields, domainerrors.FieldError{
			Field:   "submissionType",
			Message: "submission type must be one of image_ocr, audio_stt, manual",
		})
	}

	if input.Confidence < 0 || input.Confidence > 1 {
		fields = append(fields, domainerrors.FieldError{Field: "confidence", Message: "confidence must be between 0 and 1"})
	}

	if len(fields) > 0 {
		return &domainerrors.ValidationError{Fields: fields}
	}
	return nil
}
