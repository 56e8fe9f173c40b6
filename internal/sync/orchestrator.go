// Package sync contains the synchronization engine: the orchestrator that
// sequences a source's full sync, the ingestion coordinator and its worker
// pool, the idempotency ledger and the checkpoint tracker.
//
// Concurrency model: the worker pool only performs stateless remote reads;
// every store write happens on the orchestrator goroutine, one development
// at a time, so no aggregate row is ever written concurrently.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/analytics"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/db"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/gateway"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/logger"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/reconcile"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/sync/transform"
)

const component = "SyncOrchestrator"

// RunOptions selects what one orchestrator run covers.
type RunOptions struct {
	Source          string
	From            time.Time
	To              time.Time
	DevelopmentIDs  []int64
	SkipRecentHours int
	TriggeredBy     string
}

type Orchestrator struct {
	storage     *store.Storage
	dbh         *sqlx.DB
	gateways    map[string]gateway.Gateway
	writer      *reconcile.Writer
	engine      analytics.Engine
	ledger      *Ledger
	checkpoints *CheckpointTracker
	log         *logger.Logger
	workers     int
	now         func() time.Time
}

// NewOrchestrator wires the engine together. dbh may be nil, which disables
// the storage liveness probe (used by tests running against fakes).
func NewOrchestrator(storage *store.Storage, dbh *sqlx.DB, engine analytics.Engine, log *logger.Logger, workers int) *Orchestrator {
	return &Orchestrator{
		storage:     storage,
		dbh:         dbh,
		gateways:    make(map[string]gateway.Gateway),
		writer:      reconcile.NewWriter(storage, log),
		engine:      engine,
		ledger:      NewLedger(storage, log),
		checkpoints: NewCheckpointTracker(storage, log),
		log:         log,
		workers:     workers,
		now:         time.Now,
	}
}

func (o *Orchestrator) RegisterGateway(gw gateway.Gateway) {
	o.gateways[gw.Source()] = gw
}

// Run executes a full sync for one source over a date window:
// developments, contracts, cash in/out aggregation, then analytics, one
// development at a time. Per-development failures are collected in the
// report; only storage loss and full-batch upstream failures abort the run.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	gw, ok := o.gateways[opts.Source]
	if !ok {
		return nil, fmt.Errorf("no gateway registered for source %q", opts.Source)
	}
	mapper, err := transform.MapperFor(opts.Source)
	if err != nil {
		return nil, err
	}
	if opts.To.Before(opts.From) {
		return nil, fmt.Errorf("sync window ends (%s) before it starts (%s)",
			opts.To.Format("2006-01-02"), opts.From.Format("2006-01-02"))
	}

	started := o.now()
	report := &RunReport{
		Source:      opts.Source,
		Status:      store.RunStatusRunning,
		TriggeredBy: opts.TriggeredBy,
		StartedAt:   started,
	}

	run := &store.SyncRun{Source: opts.Source, TriggeredBy: opts.TriggeredBy, StartedAt: started}
	if err := o.storage.SyncRuns.Insert(ctx, run); err != nil {
		return nil, fmt.Errorf("creating sync run: %w", err)
	}
	report.RunID = run.ID

	o.log.Info(component, "Sync run started: source=%s run=%d window=%s..%s",
		opts.Source, run.ID, opts.From.Format("2006-01-02"), opts.To.Format("2006-01-02"))

	fatal := o.runPipeline(ctx, gw, mapper, opts, report)

	report.FinishedAt = o.now()
	switch {
	case fatal != nil:
		report.Status = store.RunStatusFailed
	case report.DevelopmentsTotal > 0 && report.DevelopmentsFailed == report.DevelopmentsTotal:
		report.Status = store.RunStatusFailed
	default:
		report.Status = store.RunStatusSuccess
	}

	if err := o.storage.SyncRuns.Finish(ctx, run.ID, report.Status, report.metricsJSON()); err != nil {
		o.log.Error(component, "Failed to finalize sync run: run=%d err=%v", run.ID, err)
	}

	o.log.Info(component, "Sync run finished: source=%s run=%d status=%s synced=%d skipped=%d unchanged=%d failed=%d",
		opts.Source, run.ID, report.Status, report.DevelopmentsSynced, report.DevelopmentsSkipped,
		report.DevelopmentsNoOp, report.DevelopmentsFailed)

	if fatal != nil {
		return report, fatal
	}
	return report, nil
}

// runPipeline performs the actual work; a non-nil return is a fatal error
// that aborts the run.
func (o *Orchestrator) runPipeline(ctx context.Context, gw gateway.Gateway, mapper transform.RawRecordMapper, opts RunOptions, report *RunReport) error {
	coord := NewCoordinator(gw, mapper, o.log, o.workers)
	windowMonths := receivable.MonthsBetween(opts.From, opts.To)
	execDate := dateOnly(o.now())

	devs, err := o.syncDevelopments(ctx, gw, mapper, opts)
	if err != nil {
		return err
	}
	report.DevelopmentsTotal = len(devs)
	if len(devs) == 0 {
		o.log.Warn(component, "No developments in scope: source=%s", opts.Source)
		return nil
	}

	extIDs := make([]string, 0, len(devs))
	for _, dev := range devs {
		extIDs = append(extIDs, dev.ExternalID)
	}
	contractsByDev, malformed, err := coord.FetchContractsForDevelopments(ctx, extIDs)
	if err != nil {
		return fmt.Errorf("contract stage: %w", err)
	}
	report.RecordsSkipped += malformed

	indexes := o.loadInflationIndexes(ctx)

	outAgg := reconcile.NewCashOutAggregate(opts.Source)
	activeCustomers := make(map[string]bool)

	for i := range devs {
		dev := &devs[i]

		contracts, fetched := contractsByDev[dev.ExternalID]
		if !fetched {
			report.fail(dev.ID, dev.ExternalID, "contracts", fmt.Errorf("upstream contract fetch failed"))
			continue
		}

		if err := o.syncDevelopment(ctx, coord, opts, report, dev, contracts, indexes, windowMonths, execDate, activeCustomers); err != nil {
			if recovered := o.recoverStorage(ctx, err); !recovered {
				return fmt.Errorf("storage connection lost while syncing development %s: %w", dev.ExternalID, err)
			}
			report.fail(dev.ID, dev.ExternalID, "financial", err)
		}
	}

	if err := o.syncCashOut(ctx, coord, opts, report, outAgg, activeCustomers, windowMonths); err != nil {
		if recovered := o.recoverStorage(ctx, err); !recovered {
			return fmt.Errorf("storage connection lost during cash-out reconciliation: %w", err)
		}
		o.log.Error(component, "Cash-out reconciliation failed: source=%s err=%v", opts.Source, err)
	}

	return nil
}

// syncDevelopments upserts the canonical development set and applies the
// optional id filter.
func (o *Orchestrator) syncDevelopments(ctx context.Context, gw gateway.Gateway, mapper transform.RawRecordMapper, opts RunOptions) ([]store.Development, error) {
	raws, err := gw.FetchDevelopments(ctx)
	if err != nil {
		return nil, fmt.Errorf("development fetch: %w", err)
	}

	wanted := make(map[int64]bool, len(opts.DevelopmentIDs))
	for _, id := range opts.DevelopmentIDs {
		wanted[id] = true
	}

	devs := make([]store.Development, 0, len(raws))
	for _, raw := range raws {
		dev, err := mapper.MapDevelopment(raw)
		if err != nil {
			o.log.Warn(component, "Skipping malformed development record: err=%v", err)
			continue
		}
		// Preserve the current activation flag until contracts are known.
		if existing, err := o.storage.Developments.GetByExternalID(ctx, dev.Source, dev.ExternalID); err == nil {
			dev.IsActive = existing.IsActive
		}
		if err := o.storage.Developments.Upsert(ctx, &dev); err != nil {
			if db.IsConnectionLost(err) {
				return nil, err
			}
			o.log.Error(component, "Development upsert failed: external=%s err=%v", dev.ExternalID, err)
			continue
		}
		if len(wanted) > 0 && !wanted[dev.ID] {
			continue
		}
		devs = append(devs, dev)
	}
	return devs, nil
}

// syncDevelopment performs the per-development pipeline: contract replace,
// activation refresh, checkpoint gate, installment fetch, cash-in
// aggregation and analytics.
func (o *Orchestrator) syncDevelopment(
	ctx context.Context,
	coord *Coordinator,
	opts RunOptions,
	report *RunReport,
	dev *store.Development,
	contracts []store.Contract,
	indexes []store.InflationIndex,
	windowMonths []string,
	execDate time.Time,
	activeCustomers map[string]bool,
) error {
	active := false
	for _, c := range contracts {
		if c.Status == store.ContractStatusActive {
			active = true
			break
		}
	}

	// The local contract set must exactly mirror upstream.
	if err := o.storage.Contracts.ReplaceForDevelopment(ctx, dev.ID, opts.Source, contracts); err != nil {
		return fmt.Errorf("replacing contracts: %w", err)
	}
	report.ContractsUpserted += len(contracts)

	// Activation state is refreshed even when the financial sync below is
	// skipped, so a checkpointed development never goes stale.
	if active != dev.IsActive {
		if err := o.storage.Developments.SetActive(ctx, dev.ID, active); err != nil {
			return fmt.Errorf("updating activation state: %w", err)
		}
		dev.IsActive = active
	}

	persisted, err := o.storage.Contracts.ListByDevelopment(ctx, dev.ID)
	if err != nil {
		return fmt.Errorf("listing persisted contracts: %w", err)
	}
	for _, c := range persisted {
		if c.Status == store.ContractStatusActive && c.CustomerCode != "" {
			activeCustomers[c.CustomerCode] = true
		}
	}

	if o.checkpoints.ShouldSkip(ctx, dev.ID, time.Duration(opts.SkipRecentHours)*time.Hour) {
		report.DevelopmentsSkipped++
		return nil
	}

	o.adjustForInflation(ctx, persisted, indexes)

	contractKeys := make([]string, 0, len(persisted))
	seen := make(map[string]bool, len(persisted))
	for _, c := range persisted {
		if seen[c.CodContract] {
			continue
		}
		seen[c.CodContract] = true
		contractKeys = append(contractKeys, c.CodContract)
	}

	installmentsByContract, rawByContract, stats := coord.FetchInstallmentsParallel(ctx, contractKeys)
	report.Installments.add(stats)
	report.RecordsSkipped += stats.Malformed

	payloadHash, err := Hash(struct {
		Contracts    []store.Contract               `json:"contracts"`
		Installments map[string][]gateway.RawRecord `json:"installments"`
	}{Contracts: contracts, Installments: rawByContract})
	if err != nil {
		return fmt.Errorf("hashing working set: %w", err)
	}

	processed, err := o.ledger.AlreadyProcessed(ctx, opts.Source, execDate, payloadHash)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if processed {
		o.log.Info(component, "Working set unchanged since last ingestion, skipping aggregation: development=%s", dev.ExternalID)
		report.DevelopmentsNoOp++
		if err := o.checkpoints.MarkSynced(ctx, dev.ID, o.now()); err != nil {
			o.log.Warn(component, "Checkpoint update failed: development=%d err=%v", dev.ID, err)
		}
		return nil
	}

	all := make([]receivable.Installment, 0, stats.Records)
	for _, insts := range installmentsByContract {
		all = append(all, insts...)
	}

	agg := reconcile.NewCashInAggregate(dev.ID, opts.Source)
	for _, inst := range all {
		agg.Add(transform.CashInEntries(inst)...)
	}
	if err := o.writer.FlushCashIn(ctx, agg, windowMonths); err != nil {
		return err
	}

	if err := o.writeAnalytics(ctx, opts, dev, persisted, all, installmentsByContract, windowMonths); err != nil {
		return err
	}

	if err := o.ledger.Record(ctx, opts.Source, execDate, dev.ExternalID, payloadHash); err != nil {
		return err
	}
	if err := o.checkpoints.MarkSynced(ctx, dev.ID, o.now()); err != nil {
		o.log.Warn(component, "Checkpoint update failed: development=%d err=%v", dev.ID, err)
	}

	report.DevelopmentsSynced++

	// Large portfolios produce tens of thousands of installments per
	// development; drop them before moving to the next one.
	installmentsByContract = nil
	rawByContract = nil
	all = nil

	return o.probeStorage(ctx)
}

func (o *Orchestrator) writeAnalytics(
	ctx context.Context,
	opts RunOptions,
	dev *store.Development,
	contracts []store.Contract,
	installments []receivable.Installment,
	installmentsByContract map[string][]receivable.Installment,
	windowMonths []string,
) error {
	activeCount := 0
	for _, c := range contracts {
		if c.Status == store.ContractStatusActive {
			activeCount++
		}
	}

	presentValue := o.engine.PresentValue(installments)
	if len(installments) == 0 {
		presentValue = o.engine.PresentValueFromContracts(contracts)
	}
	weightedTerm := o.engine.WeightedAverageTerm(contracts, installmentsByContract)
	agingItems := analytics.AgingItemsFromInstallments(installments)
	now := o.now()

	for _, month := range windowMonths {
		ref, err := receivable.EndOfMonth(month)
		if err != nil {
			return fmt.Errorf("resolving month %s: %w", month, err)
		}

		snap := &store.PortfolioSnapshot{
			DevelopmentID:      dev.ID,
			Month:              month,
			Source:             opts.Source,
			PresentValue:       presentValue,
			LTVPercent:         o.engine.LTV(presentValue, contracts),
			WeightedTermMonths: weightedTerm,
			DurationYears:      o.engine.MacaulayDuration(installments, ref),
			TotalContracts:     len(contracts),
			ActiveContracts:    activeCount,
		}
		if err := o.storage.Snapshots.Upsert(ctx, snap); err != nil {
			return fmt.Errorf("upserting snapshot %s: %w", month, err)
		}

		book := o.engine.Aging(agingItems, ref, now)
		delinquency := book.Report(dev.ID, month, opts.Source)
		if err := o.storage.Delinquency.Upsert(ctx, &delinquency); err != nil {
			return fmt.Errorf("upserting delinquency report %s: %w", month, err)
		}
	}
	return nil
}

// syncCashOut runs once per sync: expense invoices are not scoped to a
// development upstream, so they are fetched in one cached sweep, filtered
// to counterparties with an active contract, and aggregated per branch.
func (o *Orchestrator) syncCashOut(
	ctx context.Context,
	coord *Coordinator,
	opts RunOptions,
	report *RunReport,
	outAgg *reconcile.CashOutAggregate,
	activeCustomers map[string]bool,
	windowMonths []string,
) error {
	invoices, malformed, err := coord.ExpenseInvoices(ctx, opts.From, opts.To)
	if err != nil {
		o.log.Error(component, "Expense invoice fetch failed, cash-out skipped: source=%s err=%v", opts.Source, err)
		return nil
	}
	report.RecordsSkipped += malformed

	var unmatched int
	for _, inv := range invoices {
		if !activeCustomers[inv.CounterpartyCode] {
			unmatched++
			continue
		}
		report.InvoicesMatched++
		outAgg.Add(transform.CashOutEntries(inv)...)
	}
	if unmatched > 0 {
		o.log.Debug(component, "Invoices without an active contract counterparty skipped: count=%d", unmatched)
		report.RecordsSkipped += unmatched
	}

	return o.writer.FlushCashOut(ctx, outAgg, windowMonths)
}

func (o *Orchestrator) adjustForInflation(ctx context.Context, contracts []store.Contract, indexes []store.InflationIndex) {
	if len(indexes) == 0 {
		return
	}
	now := o.now()
	for i := range contracts {
		c := &contracts[i]
		if c.Status != store.ContractStatusActive || c.SigningDate == nil {
			continue
		}
		adjusted := analytics.AdjustedValue(c.SignedValue, *c.SigningDate, now, indexes)
		if err := o.storage.Contracts.UpdateInflationAdjustedValue(ctx, c.ID, adjusted); err != nil {
			o.log.Warn(component, "Inflation adjustment write failed: contract=%s err=%v", c.CodContract, err)
			continue
		}
		c.InflationAdjustedValue.Decimal = adjusted
		c.InflationAdjustedValue.Valid = true
	}
}

func (o *Orchestrator) loadInflationIndexes(ctx context.Context) []store.InflationIndex {
	indexes, err := o.storage.InflationIndexes.GetRange(ctx, "2000-01", receivable.MonthOf(o.now()))
	if err != nil {
		o.log.Warn(component, "Inflation index load failed, adjustment disabled for this run: err=%v", err)
		return nil
	}
	return indexes
}

// probeStorage checks liveness between developments so a dead connection is
// caught before the next batch of writes.
func (o *Orchestrator) probeStorage(ctx context.Context) error {
	if o.dbh == nil {
		return nil
	}
	if err := db.Probe(ctx, o.dbh); err != nil {
		return fmt.Errorf("storage liveness probe: %w", err)
	}
	return nil
}

// recoverStorage decides whether a development-level error was a lost
// storage connection, and if so tries one reconnect. Returns true when the
// run may continue.
func (o *Orchestrator) recoverStorage(ctx context.Context, err error) bool {
	if o.dbh == nil {
		return true
	}
	if !db.IsConnectionLost(err) && db.Probe(ctx, o.dbh) == nil {
		return true
	}

	o.log.Warn(component, "Storage connection suspect, attempting reconnect: err=%v", err)
	select {
	case <-ctx.Done():
		return false
	case <-time.After(2 * time.Second):
	}
	if probeErr := db.Probe(ctx, o.dbh); probeErr != nil {
		o.log.Error(component, "Storage reconnect failed: err=%v", probeErr)
		return false
	}
	o.log.Info(component, "Storage connection re-established")
	return true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
