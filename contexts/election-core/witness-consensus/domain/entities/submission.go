package entities

import (
	"encoding/json"
	"time"
)

type SubmissionType string

const (
	SubmissionTypeImageOCR SubmissionType = "image_ocr"
	SubmissionTypeAudioSTT SubmissionType = "audio_stt"
	SubmissionTypeManual   SubmissionType = "manual"
)

// SpoiltKey is the reserved results key for invalid/unusable ballots. Every
// submission must carry it alongside the per-candidate counts.
const SpoiltKey = "spoilt"

type GPSCoordinates struct {
	Latitude  float64
	Longitude float64
}

// Submission is one witness's observed count for one polling station. At most
// one live submission exists per (station, wallet) pair; a resubmission
// replaces the previous record.
type Submission struct {
	SubmissionID     string
	WalletAddress    string
	PollingStationID string
	GPS              GPSCoordinates
	Timestamp        time.Time
	Results          map[string]int
	SubmissionType   SubmissionType
	Confidence       float64
	ReceivedAt       time.Time
}

// ResultsKey returns a canonical byte representation of the results map.
// encoding/json marshals map keys in sorted order, so two submissions have
// the same key iff every candidate->count pair matches exactly.
func (s Submission) ResultsKey() string {
	raw, err := json.Marshal(s.Results)
	if err != nil {
		return ""
	}
	return string(raw)
}

// CloneResults returns a defensive copy of the results map.
func (s Submission) CloneResults() map[string]int {
	if s.Results == nil {
		return nil
	}
	out := make(map[string]int, len(s.Results))
	for name, votes := range s.Results {
		out[name] = votes
	}
	return out
}
