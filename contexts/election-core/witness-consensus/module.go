package witnessconsensus

import (
	"log/slog"
	"time"

	httpadapter "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/adapters/http"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/adapters/memory"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/application/commands"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/application/queries"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/application/workers"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/services"
	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	Submissions commands.SubmitUseCase
	Tallies     queries.TallyUseCase
	Recovery    workers.RecoveryScheduler
	Broadcaster workers.TallyBroadcaster
	Store       *memory.Store
}

type Dependencies struct {
	Processes   ports.ProcessRepository
	Submissions ports.SubmissionRepository
	Stations    ports.StationRepository
	Locks       ports.StationLocker
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Events      ports.EventPublisher
	Subscriber  ports.EventSubscriber
	Push        ports.TallyPusher
	// MinWitnesses overrides the default consensus threshold of three
	// matching witnesses. Staleness bounds how often the recovery sweep
	// revisits a pending station.
	MinWitnesses int
	Staleness    time.Duration
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	policy := services.ConsensusPolicy{MinWitnesses: deps.MinWitnesses}
	processUseCase := commands.ProcessUseCase{
		Processes: deps.Processes,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	submitUseCase := commands.SubmitUseCase{
		Processes:   deps.Processes,
		Submissions: deps.Submissions,
		Stations:    deps.Stations,
		Locks:       deps.Locks,
		Policy:      policy,
		Events:      deps.Events,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	tallyUseCase := queries.TallyUseCase{
		Processes: deps.Processes,
		Stations:  deps.Stations,
		Clock:     deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Processes:   processUseCase,
			Submissions: submitUseCase,
			Tallies:     tallyUseCase,
			Logger:      deps.Logger,
		},
		Submissions: submitUseCase,
		Tallies:     tallyUseCase,
		Recovery: workers.RecoveryScheduler{
			Processes: deps.Processes,
			Stations:  deps.Stations,
			Consensus: submitUseCase,
			Clock:     deps.Clock,
			Staleness: deps.Staleness,
			Logger:    deps.Logger,
		},
		Broadcaster: workers.TallyBroadcaster{
			Subscriber: deps.Subscriber,
			Tallies:    tallyUseCase,
			Push:       deps.Push,
			Encode:     httpadapter.TallyUpdateMessage,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module on the in-memory store. Events,
// Subscriber and Push stay optional so unit tests can exercise the consensus
// path without a bus.
func NewInMemoryModule(deps Dependencies, logger *slog.Logger) Module {
	store := memory.NewStore()
	if deps.Processes == nil {
		deps.Processes = store
	}
	if deps.Submissions == nil {
		deps.Submissions = store
	}
	if deps.Stations == nil {
		deps.Stations = store
	}
	if deps.Locks == nil {
		deps.Locks = store
	}
	if deps.Clock == nil {
		deps.Clock = store
	}
	if deps.IDGen == nil {
		deps.IDGen = store
	}
	if deps.Logger == nil {
		deps.Logger = logger
	}
	module := NewModule(deps)
	module.Store = store
	return module
}
