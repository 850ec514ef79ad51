package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/op/go-logging"
	"github.com/storagestats/gcs-stats/constants"
	"github.com/storagestats/gcs-stats/logfile"
	"github.com/storagestats/gcs-stats/models/common"
	"github.com/storagestats/gcs-stats/models/service"
	"github.com/storagestats/gcs-stats/network"
)

// Processor runs one log file through the pipeline:
//
//	start -> classified -> bypassed                         -> terminal
//	                    -> gated -> duplicate                -> terminal
//	                             -> fresh -> parsed -> inserted -> relocated -> terminal
//
// A failure while in fresh or parsed sends the file to the errors
// bucket (routed_to_errors -> terminal). Failures anywhere else are
// returned to the caller, and the file stays wherever it was.
type Processor struct {
	Buckets common.Buckets
	Logger  *logging.Logger

	// Now returns the ingest timestamp for new records.
	Now func() time.Time

	store   ObjectStore
	sink    Sink
	journal Journal
	gate    *Gate
	router  *Router
}

// NewProcessor returns a Processor. Param journal may be nil.
func NewProcessor(store ObjectStore, sink Sink, journal Journal, buckets common.Buckets, logger *logging.Logger) *Processor {
	return &Processor{
		Buckets: buckets,
		Logger:  logger,
		Now:     func() time.Time { return time.Now().UTC() },
		store:   store,
		sink:    sink,
		journal: journal,
		gate:    NewGate(store, buckets.Processed),
		router:  NewRouter(store, buckets),
	}
}

// NewProcessorFromContext wires a Processor to the context's minio,
// BigQuery and Redis clients.
func NewProcessorFromContext(_context *common.Context) *Processor {
	var journal Journal
	if _context.RedisClient != nil {
		journal = _context.RedisClient
	}
	return NewProcessor(
		network.NewMinioStore(_context.S3Client, _context.Logger),
		network.NewBigQuerySink(_context.Inserter()),
		journal,
		_context.Config.Buckets(),
		_context.Logger,
	)
}

// invocation carries what one run has learned so far.
type invocation struct {
	outcome        *service.Outcome
	classification logfile.Classification
	record         *service.BillingRecord
}

// Run processes objectID and returns the outcome. The error is non-nil
// only when the file could not be brought to a terminal location, in
// which case the caller should let the notification be redelivered.
// Malformed logs and warehouse failures are not errors here. Those
// files go to the errors bucket and the outcome says why.
func (p *Processor) Run(ctx context.Context, objectID string) (*service.Outcome, error) {
	inv := &invocation{outcome: service.NewOutcome(objectID)}
	inv.outcome.Start()
	inv.outcome.State = constants.StateStart
	err := p.run(ctx, inv)
	if err != nil {
		inv.outcome.AddError(service.NewProcessingError(objectID, err, true))
		p.Logger.Errorf("[%s] %s left in %s: %s", inv.outcome.InvocationID,
			objectID, p.Buckets.Logs, detail(err))
	}
	inv.outcome.Finish()
	p.record(inv.outcome)
	return inv.outcome, err
}

func (p *Processor) run(ctx context.Context, inv *invocation) error {
	state := constants.StateStart
	for state != constants.StateTerminal {
		next, err := p.transition(ctx, inv, state)
		// A cancelled caller is not the file's fault. Leave it for
		// redelivery.
		if err != nil && compensable(state) && ctx.Err() == nil {
			p.Logger.Errorf("[%s] %s failed in state %s, routing to errors: %s",
				inv.outcome.InvocationID, inv.outcome.ObjectID, state, detail(err))
			inv.outcome.AddError(service.NewProcessingError(inv.outcome.ObjectID, err, false))
			next, err = constants.StateRouted, nil
		}
		if err != nil {
			return err
		}
		p.Logger.Infof("[%s] %s: %s -> %s", inv.outcome.InvocationID,
			inv.outcome.ObjectID, state, next)
		inv.outcome.State = next
		state = next
	}
	return nil
}

// compensable returns true if a failure in state sends the file to
// the errors bucket.
func compensable(state string) bool {
	return state == constants.StateFresh || state == constants.StateParsed
}

// transition does the work of the current state and returns the
// next one.
func (p *Processor) transition(ctx context.Context, inv *invocation, state string) (string, error) {
	objectID := inv.outcome.ObjectID
	switch state {
	case constants.StateStart:
		if err := ctx.Err(); err != nil {
			return state, err
		}
		inv.classification = logfile.Classify(objectID)
		inv.outcome.Classification = inv.classification.Kind.String()
		return constants.StateClassified, nil

	case constants.StateClassified:
		if inv.classification.Kind == logfile.UsageLog {
			return constants.StateBypassed, nil
		}
		// Unrecognized files go through the gate too. The parser
		// rejects them.
		return constants.StateGated, nil

	case constants.StateBypassed:
		if err := p.router.Relocate(ctx, objectID, constants.LocationUsageArchive); err != nil {
			return state, err
		}
		inv.outcome.Location = constants.LocationUsageArchive
		return constants.StateTerminal, nil

	case constants.StateGated:
		processed, err := p.gate.AlreadyProcessed(ctx, objectID)
		if err != nil {
			return state, err
		}
		if processed {
			p.Logger.Noticef("[%s] %s is already in %s", inv.outcome.InvocationID,
				objectID, p.Buckets.Processed)
			return constants.StateDuplicate, nil
		}
		return constants.StateFresh, nil

	case constants.StateDuplicate:
		if err := p.router.Discard(ctx, objectID); err != nil {
			return state, err
		}
		inv.outcome.Location = constants.LocationDeleted
		return constants.StateTerminal, nil

	case constants.StateFresh:
		content, err := p.store.Download(ctx, p.Buckets.Logs, objectID)
		if err != nil {
			return state, service.NewError(service.ErrDownloadFailed, objectID,
				"could not read source file", err)
		}
		record, err := logfile.Parse(objectID, inv.classification, content, p.Now())
		if err != nil {
			return state, err
		}
		inv.record = record
		return constants.StateParsed, nil

	case constants.StateParsed:
		if err := p.sink.Insert(ctx, inv.record); err != nil {
			return state, service.NewError(service.ErrIngestionFailed, objectID,
				"warehouse rejected the record", err)
		}
		inv.outcome.Inserted = true
		return constants.StateInserted, nil

	case constants.StateInserted:
		// The row is in. Finish the move even if the caller gives up.
		err := p.router.Relocate(context.WithoutCancel(ctx), objectID, constants.LocationProcessed)
		if err != nil {
			return state, err
		}
		inv.outcome.Location = constants.LocationProcessed
		return constants.StateRelocated, nil

	case constants.StateRelocated:
		return constants.StateTerminal, nil

	case constants.StateRouted:
		err := p.router.Relocate(context.WithoutCancel(ctx), objectID, constants.LocationErrors)
		if err != nil {
			return state, err
		}
		inv.outcome.Location = constants.LocationErrors
		return constants.StateTerminal, nil
	}
	return state, fmt.Errorf("unknown pipeline state %q", state)
}

// record logs the outcome and saves it to the journal. Journal
// failures don't change the outcome.
func (p *Processor) record(outcome *service.Outcome) {
	if outcome.Succeeded() {
		p.Logger.Infof("[%s] %s -> %s in %s", outcome.InvocationID,
			outcome.ObjectID, outcome.Location, outcome.RunTime())
	} else if outcome.Location != "" {
		p.Logger.Warningf("[%s] %s -> %s in %s: %s", outcome.InvocationID,
			outcome.ObjectID, outcome.Location, outcome.RunTime(), outcome.ErrorMessage())
	}
	if p.journal == nil {
		return
	}
	if err := p.journal.OutcomeSave(outcome); err != nil {
		p.Logger.Warningf("[%s] Could not journal outcome for %s: %v",
			outcome.InvocationID, outcome.ObjectID, err)
	}
}

func detail(err error) string {
	var detailed service.DetailedError
	if errors.As(err, &detailed) {
		return detailed.Detail()
	}
	return err.Error()
}
