package http

// ErrorResponse is the stable error shape for the election API. Code is
// suitable for programmatic branching; Details carries field-level validation
// errors when present.
type ErrorResponse struct {
	Error   string        `json:"error"`
	Code    string        `json:"code"`
	Details []FieldDetail `json:"details,omitempty"`
}

type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type CandidatePayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateProcessRequest struct {
	Title           string             `json:"title"`
	Position        string             `json:"position"`
	Candidates      []CandidatePayload `json:"candidates"`
	PollingStations []string           `json:"pollingStations"`
}

type ProcessResponse struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Position        string             `json:"position"`
	Candidates      []CandidatePayload `json:"candidates"`
	PollingStations []string           `json:"pollingStations"`
	Status          string             `json:"status"`
	CreatedAt       string             `json:"createdAt"`
	StartedAt       string             `json:"startedAt,omitempty"`
	ClosedAt        string             `json:"closedAt,omitempty"`
}

type CreateProcessResponse struct {
	Success       bool            `json:"success"`
	VotingProcess ProcessResponse `json:"voting_process"`
	Message       string          `json:"message"`
}

type ProcessListResponse struct {
	Processes []ProcessResponse `json:"processes"`
}

type GPSPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type SubmitResultRequest struct {
	WalletAddress    string         `json:"walletAddress"`
	PollingStationID string         `json:"pollingStationId"`
	GPSCoordinates   GPSPayload     `json:"gpsCoordinates"`
	Timestamp        string         `json:"timestamp"`
	Results          map[string]int `json:"results"`
	SubmissionType   string         `json:"submissionType"`
	Confidence       float64        `json:"confidence"`
}

type ConsensusStatus struct {
	Status string `json:"status"`
}

type SubmitResultResponse struct {
	Success      bool            `json:"success"`
	SubmissionID string          `json:"submission_id"`
	Message      string          `json:"message"`
	Consensus    ConsensusStatus `json:"consensus"`
}

type StationTallyPayload struct {
	PollingStationID string         `json:"pollingStationId"`
	Status           string         `json:"status"`
	Results          map[string]int `json:"results"`
	ConfidenceLevel  float64        `json:"confidenceLevel"`
	WitnessCount     int            `json:"witnessCount"`
}

type TallyResponse struct {
	VotingProcess   ProcessResponse       `json:"votingProcess"`
	AggregatedTally map[string]int        `json:"aggregatedTally"`
	PollingStations []StationTallyPayload `json:"pollingStations"`
	VerifiedCount   int                   `json:"verifiedCount"`
	PendingCount    int                   `json:"pendingCount"`
	LastUpdated     string                `json:"lastUpdated"`
}

// TallyUpdateMessage is the push-channel frame delivered to dashboard
// subscribers whenever a station's verified state changes.
type TallyUpdateMessage struct {
	Type string        `json:"type"`
	Data TallyResponse `json:"data"`
}
