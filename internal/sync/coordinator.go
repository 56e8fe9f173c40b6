package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/gateway"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/logger"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/sync/transform"
)

const coordinatorComponent = "IngestionCoordinator"

// FetchStats summarizes one parallel fetch pass.
type FetchStats struct {
	Requested int           `json:"requested"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Records   int           `json:"records"`
	Malformed int           `json:"malformed"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Throughput returns fetched records per second.
func (s FetchStats) Throughput() float64 {
	secs := s.Elapsed.Seconds()
	if secs == 0 {
		return 0
	}
	return float64(s.Records) / secs
}

func (s *FetchStats) add(other FetchStats) {
	s.Requested += other.Requested
	s.Succeeded += other.Succeeded
	s.Failed += other.Failed
	s.Records += other.Records
	s.Malformed += other.Malformed
	s.Elapsed += other.Elapsed
}

// Coordinator drives one source's gateway for one run: it assembles the
// working set of contracts, installments and invoices, maps raw records into
// canonical form, and owns the run-scoped expense cache. A new coordinator
// is built per run; nothing here outlives it.
type Coordinator struct {
	gw      gateway.Gateway
	mapper  transform.RawRecordMapper
	log     *logger.Logger
	workers int

	cacheMu      sync.Mutex
	expenseCache map[string][]receivable.Invoice
}

func NewCoordinator(gw gateway.Gateway, mapper transform.RawRecordMapper, log *logger.Logger, workers int) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{
		gw:           gw,
		mapper:       mapper,
		log:          log,
		workers:      workers,
		expenseCache: make(map[string][]receivable.Invoice),
	}
}

// FetchContractsForDevelopments retrieves the raw contracts of every listed
// development (one bulk sweep when the source supports it) and maps them to
// canonical form. Developments missing from the result failed upstream and
// are left out of the returned map entirely, so the caller can tell "no
// contracts" apart from "fetch failed". Malformed records are skipped and
// counted.
func (c *Coordinator) FetchContractsForDevelopments(ctx context.Context, developmentExternalIDs []string) (map[string][]store.Contract, int, error) {
	rawByDev, err := c.gw.FetchContracts(ctx, developmentExternalIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("contract fetch: %w", err)
	}

	out := make(map[string][]store.Contract, len(rawByDev))
	var malformed int
	for extID, raws := range rawByDev {
		contracts := make([]store.Contract, 0, len(raws))
		for _, raw := range raws {
			contract, err := c.mapper.MapContract(raw)
			if err != nil {
				malformed++
				c.log.Warn(coordinatorComponent, "Skipping malformed contract record: development=%s err=%v", extID, err)
				continue
			}
			contracts = append(contracts, contract)
		}
		out[extID] = contracts
	}

	if malformed > 0 {
		c.log.Info(coordinatorComponent, "Contract mapping complete: developments=%d malformed=%d", len(out), malformed)
	}
	return out, malformed, nil
}

type installmentResult struct {
	contractKey  string
	installments []receivable.Installment
	raw          []gateway.RawRecord
	malformed    int
	err          error
}

// FetchInstallmentsParallel fetches each contract's installments on a
// bounded worker pool. A failure on one contract is logged and excluded,
// never propagated. No result-order guarantee exists and none is needed:
// results key by contract. The raw records come back too so the caller can
// hash the working set for the idempotency ledger.
func (c *Coordinator) FetchInstallmentsParallel(ctx context.Context, contractKeys []string) (map[string][]receivable.Installment, map[string][]gateway.RawRecord, FetchStats) {
	start := time.Now()
	stats := FetchStats{Requested: len(contractKeys)}

	jobs := make(chan string)
	results := make(chan installmentResult)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range jobs {
				results <- c.fetchOne(ctx, key)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, key := range contractKeys {
			select {
			case jobs <- key:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	installments := make(map[string][]receivable.Installment, len(contractKeys))
	raws := make(map[string][]gateway.RawRecord, len(contractKeys))
	for res := range results {
		if res.err != nil {
			stats.Failed++
			c.log.Error(coordinatorComponent, "Installment fetch failed, contract excluded: contract=%s err=%v", res.contractKey, res.err)
			continue
		}
		stats.Succeeded++
		stats.Records += len(res.installments)
		stats.Malformed += res.malformed
		installments[res.contractKey] = res.installments
		raws[res.contractKey] = res.raw
	}

	stats.Elapsed = time.Since(start)
	c.log.Info(coordinatorComponent, "Installment fetch complete: contracts=%d ok=%d failed=%d records=%d throughput=%.0f/s",
		stats.Requested, stats.Succeeded, stats.Failed, stats.Records, stats.Throughput())
	return installments, raws, stats
}

func (c *Coordinator) fetchOne(ctx context.Context, contractKey string) installmentResult {
	raw, err := c.gw.FetchInstallments(ctx, contractKey)
	if err != nil {
		return installmentResult{contractKey: contractKey, err: err}
	}

	res := installmentResult{contractKey: contractKey, raw: raw}
	for _, rec := range raw {
		inst, err := c.mapper.MapInstallment(rec)
		if err != nil {
			res.malformed++
			continue
		}
		if inst.ContractKey == "" {
			inst.ContractKey = contractKey
		}
		res.installments = append(res.installments, inst)
	}
	return res
}

// ExpenseInvoices fetches and maps the expense invoices of a date range,
// caching per range for the lifetime of this coordinator so the dozens of
// developments in a run share one upstream sweep.
func (c *Coordinator) ExpenseInvoices(ctx context.Context, from, to time.Time) ([]receivable.Invoice, int, error) {
	key := from.Format("2006-01-02") + "|" + to.Format("2006-01-02")

	c.cacheMu.Lock()
	cached, ok := c.expenseCache[key]
	c.cacheMu.Unlock()
	if ok {
		return cached, 0, nil
	}

	raws, err := c.gw.FetchExpenseInvoices(ctx, from, to)
	if err != nil {
		return nil, 0, fmt.Errorf("expense invoice fetch: %w", err)
	}

	invoices := make([]receivable.Invoice, 0, len(raws))
	var malformed int
	for _, raw := range raws {
		inv, err := c.mapper.MapInvoice(raw)
		if err != nil {
			malformed++
			continue
		}
		invoices = append(invoices, inv)
	}
	if malformed > 0 {
		c.log.Warn(coordinatorComponent, "Skipped malformed invoice records: count=%d", malformed)
	}

	c.cacheMu.Lock()
	c.expenseCache[key] = invoices
	c.cacheMu.Unlock()
	return invoices, malformed, nil
}
