package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
	domainerrors "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the durable store adapter. Per-station serialization is not a
// database concern here: callers hold the in-process station lock around
// every read-evaluate-write cycle, so the repository only has to keep the
// replace-by-(station, wallet) upsert atomic.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the election tables when they do not exist yet.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&processModel{}, &submissionModel{}, &stationStateModel{})
}

func (r *Repository) SaveProcess(ctx context.Context, process entities.VotingProcess) error {
	row, err := processModelFromEntity(process)
	if err != nil {
		return r.logError("consensus_repo_encode_process_failed", err, "process_id", process.ProcessID)
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"title":            row.Title,
			"position":         row.Position,
			"candidates":       row.Candidates,
			"polling_stations": row.PollingStations,
			"status":           row.Status,
			"started_at":       row.StartedAt,
			"closed_at":        row.ClosedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("consensus_repo_save_process_failed", create.Error, "process_id", row.ID)
	}

	// Seed a pending state row per station so station->process resolution
	// works before the first submission arrives.
	for _, stationID := range process.PollingStations {
		seed := stationStateModel{
			PollingStationID: strings.TrimSpace(stationID),
			ProcessID:        row.ID,
			Status:           string(entities.StationStatusPending),
			UpdatedAt:        row.CreatedAt,
		}
		err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "polling_station_id"}},
			DoNothing: true,
		}).Create(&seed).Error
		if err != nil {
			return r.logError("consensus_repo_seed_station_failed", err, "polling_station_id", seed.PollingStationID)
		}
	}
	return nil
}

func (r *Repository) GetProcess(ctx context.Context, processID string) (entities.VotingProcess, error) {
	var row processModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(processID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VotingProcess{}, domainerrors.ErrProcessNotFound
		}
		return entities.VotingProcess{}, r.logError("consensus_repo_get_process_failed", err, "process_id", strings.TrimSpace(processID))
	}
	return row.toEntity()
}

func (r *Repository) ListProcesses(ctx context.Context) ([]entities.VotingProcess, error) {
	var rows []processModel
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, r.logError("consensus_repo_list_processes_failed", err)
	}
	out := make([]entities.VotingProcess, 0, len(rows))
	for _, row := range rows {
		process, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, process)
	}
	return out, nil
}

func (r *Repository) FindProcessByStation(ctx context.Context, stationID string) (entities.VotingProcess, error) {
	var row stationStateModel
	err := r.db.WithContext(ctx).
		Where("polling_station_id = ?", strings.TrimSpace(stationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VotingProcess{}, domainerrors.ErrStationNotFound
		}
		return entities.VotingProcess{}, r.logError("consensus_repo_find_station_failed", err, "polling_station_id", strings.TrimSpace(stationID))
	}
	return r.GetProcess(ctx, row.ProcessID)
}

func (r *Repository) UpsertSubmission(ctx context.Context, submission entities.Submission) (bool, error) {
	row, err := submissionModelFromEntity(submission)
	if err != nil {
		return false, r.logError("consensus_repo_encode_submission_failed", err,
			"polling_station_id", submission.PollingStationID,
		)
	}

	// Caller holds the station lock, so the existence probe and the upsert
	// cannot interleave with another write for the same (station, wallet).
	var prior int64
	err = r.db.WithContext(ctx).Model(&submissionModel{}).
		Where("polling_station_id = ? AND wallet_address = ?", row.PollingStationID, row.WalletAddress).
		Count(&prior).
		Error
	if err != nil {
		return false, r.logError("consensus_repo_probe_submission_failed", err,
			"polling_station_id", row.PollingStationID,
		)
	}

	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "polling_station_id"}, {Name: "wallet_address"}},
		DoUpdates: clause.Assignments(map[string]any{
			"id":              row.ID,
			"latitude":        row.Latitude,
			"longitude":       row.Longitude,
			"observed_at":     row.ObservedAt,
			"results":         row.Results,
			"submission_type": row.SubmissionType,
			"confidence":      row.Confidence,
			"received_at":     row.ReceivedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			// Replace raced with itself; the row is there, treat as replace.
			return true, nil
		}
		return false, r.logError("consensus_repo_upsert_submission_failed", create.Error,
			"polling_station_id", row.PollingStationID,
		)
	}
	return prior > 0, nil
}

func (r *Repository) ListSubmissionsByStation(ctx context.Context, stationID string) ([]entities.Submission, error) {
	var rows []submissionModel
	err := r.db.WithContext(ctx).
		Where("polling_station_id = ?", strings.TrimSpace(stationID)).
		Order("observed_at asc").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("consensus_repo_list_submissions_failed", err, "polling_station_id", strings.TrimSpace(stationID))
	}
	out := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		submission, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, submission)
	}
	return out, nil
}

func (r *Repository) GetStationState(ctx context.Context, stationID string) (entities.PollingStationState, error) {
	var row stationStateModel
	err := r.db.WithContext(ctx).
		Where("polling_station_id = ?", strings.TrimSpace(stationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.PollingStationState{}, domainerrors.ErrStationNotFound
		}
		return entities.PollingStationState{}, r.logError("consensus_repo_get_station_failed", err, "polling_station_id", strings.TrimSpace(stationID))
	}
	return row.toEntity()
}

func (r *Repository) SetStationState(ctx context.Context, state entities.PollingStationState) error {
	row, err := stationStateModelFromEntity(state)
	if err != nil {
		return r.logError("consensus_repo_encode_station_failed", err, "polling_station_id", state.PollingStationID)
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "polling_station_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"process_id":       row.ProcessID,
			"status":           row.Status,
			"verified_results": row.VerifiedResults,
			"confidence_level": row.ConfidenceLevel,
			"witness_count":    row.WitnessCount,
			"updated_at":       row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("consensus_repo_set_station_failed", create.Error, "polling_station_id", row.PollingStationID)
	}
	return nil
}

func (r *Repository) ListStationStates(ctx context.Context, processID string) ([]entities.PollingStationState, error) {
	process, err := r.GetProcess(ctx, processID)
	if err != nil {
		return nil, err
	}

	var rows []stationStateModel
	err = r.db.WithContext(ctx).
		Where("process_id = ?", process.ProcessID).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("consensus_repo_list_stations_failed", err, "process_id", process.ProcessID)
	}
	byStation := make(map[string]stationStateModel, len(rows))
	for _, row := range rows {
		byStation[row.PollingStationID] = row
	}

	// Declared station order keeps reads deterministic; stations without a
	// persisted row yet read as pending.
	out := make([]entities.PollingStationState, 0, len(process.PollingStations))
	for _, stationID := range process.PollingStations {
		row, ok := byStation[stationID]
		if !ok {
			out = append(out, entities.PollingStationState{
				PollingStationID: stationID,
				ProcessID:        process.ProcessID,
				Status:           entities.StationStatusPending,
			})
			continue
		}
		state, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, state)
	}
	return out, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "election-core/witness-consensus",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("postgres repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type processModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	Title           string     `gorm:"column:title"`
	Position        string     `gorm:"column:position"`
	Candidates      []byte     `gorm:"column:candidates"`
	PollingStations []byte     `gorm:"column:polling_stations"`
	Status          string     `gorm:"column:status"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	StartedAt       *time.Time `gorm:"column:started_at"`
	ClosedAt        *time.Time `gorm:"column:closed_at"`
}

func (processModel) TableName() string {
	return "voting_processes"
}

type submissionModel struct {
	ID               string    `gorm:"column:id"`
	PollingStationID string    `gorm:"column:polling_station_id;uniqueIndex:idx_station_wallet"`
	WalletAddress    string    `gorm:"column:wallet_address;uniqueIndex:idx_station_wallet"`
	Latitude         float64   `gorm:"column:latitude"`
	Longitude        float64   `gorm:"column:longitude"`
	ObservedAt       time.Time `gorm:"column:observed_at"`
	Results          []byte    `gorm:"column:results"`
	SubmissionType   string    `gorm:"column:submission_type"`
	Confidence       float64   `gorm:"column:confidence"`
	ReceivedAt       time.Time `gorm:"column:received_at"`
}

func (submissionModel) TableName() string {
	return "witness_submissions"
}

type stationStateModel struct {
	PollingStationID string    `gorm:"column:polling_station_id;primaryKey"`
	ProcessID        string    `gorm:"column:process_id;index"`
	Status           string    `gorm:"column:status"`
	VerifiedResults  []byte    `gorm:"column:verified_results"`
	ConfidenceLevel  float64   `gorm:"column:confidence_level"`
	WitnessCount     int       `gorm:"column:witness_count"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (stationStateModel) TableName() string {
	return "polling_station_states"
}

func processModelFromEntity(process entities.VotingProcess) (processModel, error) {
	candidates, err := json.Marshal(process.Candidates)
	if err != nil {
		return processModel{}, err
	}
	stations, err := json.Marshal(process.PollingStations)
	if err != nil {
		return processModel{}, err
	}
	row := processModel{
		ID:              strings.TrimSpace(process.ProcessID),
		Title:           process.Title,
		Position:        process.Position,
		Candidates:      candidates,
		PollingStations: stations,
		Status:          string(process.Status),
		CreatedAt:       process.CreatedAt.UTC(),
	}
	if process.StartedAt != nil {
		startedAt := process.StartedAt.UTC()
		row.StartedAt = &startedAt
	}
	if process.ClosedAt != nil {
		closedAt := process.ClosedAt.UTC()
		row.ClosedAt = &closedAt
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row, nil
}

func (m processModel) toEntity() (entities.VotingProcess, error) {
	var candidates []entities.Candidate
	if len(m.Candidates) > 0 {
		if err := json.Unmarshal(m.Candidates, &candidates); err != nil {
			return entities.VotingProcess{}, err
		}
	}
	var stations []string
	if len(m.PollingStations) > 0 {
		if err := json.Unmarshal(m.PollingStations, &stations); err != nil {
			return entities.VotingProcess{}, err
		}
	}
	return entities.VotingProcess{
		ProcessID:       m.ID,
		Title:           m.Title,
		Position:        m.Position,
		Candidates:      candidates,
		PollingStations: stations,
		Status:          entities.ProcessStatus(m.Status),
		CreatedAt:       m.CreatedAt,
		StartedAt:       m.StartedAt,
		ClosedAt:        m.ClosedAt,
	}, nil
}

func submissionModelFromEntity(submission entities.Submission) (submissionModel, error) {
	results, err := json.Marshal(submission.Results)
	if err != nil {
		return submissionModel{}, err
	}
	return submissionModel{
		ID:               strings.TrimSpace(submission.SubmissionID),
		PollingStationID: strings.TrimSpace(submission.PollingStationID),
		WalletAddress:    strings.TrimSpace(submission.WalletAddress),
		Latitude:         submission.GPS.Latitude,
		Longitude:        submission.GPS.Longitude,
		ObservedAt:       submission.Timestamp.UTC(),
		Results:          results,
		SubmissionType:   string(submission.SubmissionType),
		Confidence:       submission.Confidence,
		ReceivedAt:       submission.ReceivedAt.UTC(),
	}, nil
}

func (m submissionModel) toEntity() (entities.Submission, error) {
	var results map[string]int
	if len(m.Results) > 0 {
		if err := json.Unmarshal(m.Results, &results); err != nil {
			return entities.Submission{}, err
		}
	}
	return entities.Submission{
		SubmissionID:     m.ID,
		WalletAddress:    m.WalletAddress,
		PollingStationID: m.PollingStationID,
		GPS: entities.GPSCoordinates{
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
		},
		Timestamp:      m.ObservedAt,
		Results:        results,
		SubmissionType: entities.SubmissionType(m.SubmissionType),
		Confidence:     m.Confidence,
		ReceivedAt:     m.ReceivedAt,
	}, nil
}

func stationStateModelFromEntity(state entities.PollingStationState) (stationStateModel, error) {
	row := stationStateModel{
		PollingStationID: strings.TrimSpace(state.PollingStationID),
		ProcessID:        strings.TrimSpace(state.ProcessID),
		Status:           string(state.Status),
		ConfidenceLevel:  state.ConfidenceLevel,
		WitnessCount:     state.WitnessCount,
		UpdatedAt:        state.UpdatedAt.UTC(),
	}
	if state.VerifiedResults != nil {
		results, err := json.Marshal(state.VerifiedResults)
		if err != nil {
			return stationStateModel{}, err
		}
		row.VerifiedResults = results
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}
	return row, nil
}

func (m stationStateModel) toEntity() (entities.PollingStationState, error) {
	var results map[string]int
	if len(m.VerifiedResults) > 0 {
		if err := json.Unmarshal(m.VerifiedResults, &results); err != nil {
			return entities.PollingStationState{}, err
		}
	}
	return entities.PollingStationState{
		PollingStationID: m.PollingStationID,
		ProcessID:        m.ProcessID,
		Status:           entities.StationStatus(m.Status),
		VerifiedResults:  results,
		ConfidenceLevel:  m.ConfidenceLevel,
		WitnessCount:     m.WitnessCount,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}
