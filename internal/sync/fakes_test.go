package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/gateway"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fakeGateway serves canned raw records in the UAU wire shape.
type fakeGateway struct {
	developments     []gateway.RawRecord
	contractsByDev   map[string][]gateway.RawRecord
	installments     map[string][]gateway.RawRecord
	invoices         []gateway.RawRecord
	failInstallments map[string]bool
	developmentsErr  error
	contractsErr     error
	invoicesErr      error
}

func (f *fakeGateway) Source() string { return gateway.SourceUAU }

func (f *fakeGateway) FetchDevelopments(context.Context) ([]gateway.RawRecord, error) {
	return f.developments, f.developmentsErr
}

func (f *fakeGateway) FetchContracts(_ context.Context, ids []string) (map[string][]gateway.RawRecord, error) {
	if f.contractsErr != nil {
		return nil, f.contractsErr
	}
	out := make(map[string][]gateway.RawRecord)
	for _, id := range ids {
		if recs, ok := f.contractsByDev[id]; ok {
			out[id] = recs
		}
	}
	return out, nil
}

func (f *fakeGateway) FetchInstallments(_ context.Context, contractKey string) ([]gateway.RawRecord, error) {
	if f.failInstallments[contractKey] {
		return nil, fmt.Errorf("simulated upstream failure for %s", contractKey)
	}
	return f.installments[contractKey], nil
}

func (f *fakeGateway) FetchExpenseInvoices(context.Context, time.Time, time.Time) ([]gateway.RawRecord, error) {
	return f.invoices, f.invoicesErr
}

type fakeDevStore struct {
	byKey     map[string]*store.Development
	nextID    int64
	setActive map[int64]bool
}

func newFakeDevStore() *fakeDevStore {
	return &fakeDevStore{byKey: make(map[string]*store.Development), setActive: make(map[int64]bool)}
}

func devKey(source, externalID string) string { return source + "|" + externalID }

func (f *fakeDevStore) seed(dev store.Development) {
	f.nextID++
	dev.ID = f.nextID
	f.byKey[devKey(dev.Source, dev.ExternalID)] = &dev
}

func (f *fakeDevStore) Upsert(_ context.Context, dev *store.Development) error {
	if existing, ok := f.byKey[devKey(dev.Source, dev.ExternalID)]; ok {
		dev.ID = existing.ID
	} else {
		f.nextID++
		dev.ID = f.nextID
	}
	clone := *dev
	f.byKey[devKey(dev.Source, dev.ExternalID)] = &clone
	return nil
}

func (f *fakeDevStore) GetByExternalID(_ context.Context, source, externalID string) (*store.Development, error) {
	if dev, ok := f.byKey[devKey(source, externalID)]; ok {
		clone := *dev
		return &clone, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeDevStore) List(_ context.Context, source string) ([]store.Development, error) {
	var out []store.Development
	for _, dev := range f.byKey {
		if dev.Source == source {
			out = append(out, *dev)
		}
	}
	return out, nil
}

func (f *fakeDevStore) SetActive(_ context.Context, id int64, active bool) error {
	f.setActive[id] = active
	for _, dev := range f.byKey {
		if dev.ID == id {
			dev.IsActive = active
		}
	}
	return nil
}

type fakeContractStore struct {
	byDev  map[int64][]store.Contract
	nextID int64
}

func newFakeContractStore() *fakeContractStore {
	return &fakeContractStore{byDev: make(map[int64][]store.Contract)}
}

func (f *fakeContractStore) ReplaceForDevelopment(_ context.Context, developmentID int64, source string, contracts []store.Contract) error {
	rows := make([]store.Contract, len(contracts))
	for i, c := range contracts {
		f.nextID++
		c.ID = f.nextID
		c.DevelopmentID = developmentID
		c.Source = source
		rows[i] = c
	}
	f.byDev[developmentID] = rows
	return nil
}

func (f *fakeContractStore) ListByDevelopment(_ context.Context, developmentID int64) ([]store.Contract, error) {
	return f.byDev[developmentID], nil
}

func (f *fakeContractStore) UpdateInflationAdjustedValue(_ context.Context, id int64, value decimal.Decimal) error {
	for devID, rows := range f.byDev {
		for i := range rows {
			if rows[i].ID == id {
				rows[i].InflationAdjustedValue = decimal.NullDecimal{Decimal: value, Valid: true}
				f.byDev[devID] = rows
			}
		}
	}
	return nil
}

type fakeCashInStore struct {
	rows    map[string]store.MonthlyCashIn
	upserts int
}

func newFakeCashInStore() *fakeCashInStore {
	return &fakeCashInStore{rows: make(map[string]store.MonthlyCashIn)}
}

func cashInKey(devID int64, month, category, source string) string {
	return fmt.Sprintf("%d|%s|%s|%s", devID, month, category, source)
}

func (f *fakeCashInStore) Upsert(_ context.Context, row *store.MonthlyCashIn) error {
	f.upserts++
	f.rows[cashInKey(row.DevelopmentID, row.Month, row.Category, row.Source)] = *row
	return nil
}

func (f *fakeCashInStore) DeleteMonths(_ context.Context, developmentID int64, source string, months []string) error {
	for _, month := range months {
		for key, row := range f.rows {
			if row.DevelopmentID == developmentID && row.Source == source && row.Month == month {
				delete(f.rows, key)
			}
		}
	}
	return nil
}

func (f *fakeCashInStore) ListForDevelopment(_ context.Context, developmentID int64, fromMonth, toMonth string) ([]store.MonthlyCashIn, error) {
	var out []store.MonthlyCashIn
	for _, row := range f.rows {
		if row.DevelopmentID == developmentID && row.Month >= fromMonth && row.Month <= toMonth {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeCashOutStore struct {
	rows map[string]store.MonthlyCashOut
}

func newFakeCashOutStore() *fakeCashOutStore {
	return &fakeCashOutStore{rows: make(map[string]store.MonthlyCashOut)}
}

func (f *fakeCashOutStore) Upsert(_ context.Context, row *store.MonthlyCashOut) error {
	key := fmt.Sprintf("%d|%s|%s|%s", row.BranchID, row.Month, row.Category, row.Source)
	f.rows[key] = *row
	return nil
}

func (f *fakeCashOutStore) DeleteMonths(_ context.Context, branchID int64, source string, months []string) error {
	for _, month := range months {
		for key, row := range f.rows {
			if row.BranchID == branchID && row.Source == source && row.Month == month {
				delete(f.rows, key)
			}
		}
	}
	return nil
}

type fakeSnapshotStore struct {
	rows map[string]store.PortfolioSnapshot
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{rows: make(map[string]store.PortfolioSnapshot)}
}

func (f *fakeSnapshotStore) Upsert(_ context.Context, snap *store.PortfolioSnapshot) error {
	f.rows[fmt.Sprintf("%d|%s", snap.DevelopmentID, snap.Month)] = *snap
	return nil
}

func (f *fakeSnapshotStore) Get(_ context.Context, developmentID int64, month string) (*store.PortfolioSnapshot, error) {
	if snap, ok := f.rows[fmt.Sprintf("%d|%s", developmentID, month)]; ok {
		return &snap, nil
	}
	return nil, store.ErrNotFound
}

type fakeDelinquencyStore struct {
	rows map[string]store.DelinquencyReport
}

func newFakeDelinquencyStore() *fakeDelinquencyStore {
	return &fakeDelinquencyStore{rows: make(map[string]store.DelinquencyReport)}
}

func (f *fakeDelinquencyStore) Upsert(_ context.Context, report *store.DelinquencyReport) error {
	f.rows[fmt.Sprintf("%d|%s", report.DevelopmentID, report.Month)] = *report
	return nil
}

func (f *fakeDelinquencyStore) Get(_ context.Context, developmentID int64, month string) (*store.DelinquencyReport, error) {
	if report, ok := f.rows[fmt.Sprintf("%d|%s", developmentID, month)]; ok {
		return &report, nil
	}
	return nil, store.ErrNotFound
}

type fakeIngestionStore struct {
	hashes map[string]bool
}

func newFakeIngestionStore() *fakeIngestionStore {
	return &fakeIngestionStore{hashes: make(map[string]bool)}
}

func ingestionKey(source string, execDate time.Time, hash string) string {
	return source + "|" + execDate.Format("2006-01-02") + "|" + hash
}

func (f *fakeIngestionStore) Exists(_ context.Context, source string, execDate time.Time, payloadHash string) (bool, error) {
	return f.hashes[ingestionKey(source, execDate, payloadHash)], nil
}

func (f *fakeIngestionStore) Insert(_ context.Context, record *store.IngestionRecord) error {
	f.hashes[ingestionKey(record.Source, record.ExecDate, record.PayloadHash)] = true
	return nil
}

type fakeSyncRunStore struct {
	runs []store.SyncRun
}

func (f *fakeSyncRunStore) Insert(_ context.Context, run *store.SyncRun) error {
	run.ID = int64(len(f.runs) + 1)
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeSyncRunStore) Finish(_ context.Context, id int64, status string, metrics []byte) error {
	for i := range f.runs {
		if f.runs[i].ID == id {
			f.runs[i].Status = status
			f.runs[i].Metrics = types.JSONText(metrics)
		}
	}
	return nil
}

func (f *fakeSyncRunStore) GetLatest(_ context.Context, limit int) ([]store.SyncRun, error) {
	if limit > len(f.runs) {
		limit = len(f.runs)
	}
	out := make([]store.SyncRun, limit)
	copy(out, f.runs[len(f.runs)-limit:])
	return out, nil
}

func (f *fakeSyncRunStore) GetByID(_ context.Context, id int64) (*store.SyncRun, error) {
	for i := range f.runs {
		if f.runs[i].ID == id {
			run := f.runs[i]
			return &run, nil
		}
	}
	return nil, store.ErrNotFound
}

type fakeCheckpointStore struct {
	byDev map[int64]time.Time
}

func newFakeCheckpointStore() *fakeCheckpointStore {
	return &fakeCheckpointStore{byDev: make(map[int64]time.Time)}
}

func (f *fakeCheckpointStore) Get(_ context.Context, developmentID int64) (*store.SyncCheckpoint, error) {
	at, ok := f.byDev[developmentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.SyncCheckpoint{DevelopmentID: developmentID, LastFinancialSyncAt: at}, nil
}

func (f *fakeCheckpointStore) Set(_ context.Context, developmentID int64, at time.Time) error {
	f.byDev[developmentID] = at
	return nil
}

type fakeInflationStore struct {
	indexes []store.InflationIndex
}

func (f *fakeInflationStore) GetRange(_ context.Context, fromMonth, toMonth string) ([]store.InflationIndex, error) {
	var out []store.InflationIndex
	for _, idx := range f.indexes {
		if idx.Month >= fromMonth && idx.Month <= toMonth {
			out = append(out, idx)
		}
	}
	return out, nil
}

type fakeStores struct {
	devs        *fakeDevStore
	contracts   *fakeContractStore
	cashIn      *fakeCashInStore
	cashOut     *fakeCashOutStore
	snapshots   *fakeSnapshotStore
	delinquency *fakeDelinquencyStore
	ingestion   *fakeIngestionStore
	runs        *fakeSyncRunStore
	checkpoints *fakeCheckpointStore
	inflation   *fakeInflationStore
}

func newFakeStores() (*store.Storage, *fakeStores) {
	f := &fakeStores{
		devs:        newFakeDevStore(),
		contracts:   newFakeContractStore(),
		cashIn:      newFakeCashInStore(),
		cashOut:     newFakeCashOutStore(),
		snapshots:   newFakeSnapshotStore(),
		delinquency: newFakeDelinquencyStore(),
		ingestion:   newFakeIngestionStore(),
		runs:        &fakeSyncRunStore{},
		checkpoints: newFakeCheckpointStore(),
		inflation:   &fakeInflationStore{},
	}
	storage := &store.Storage{
		Developments:     f.devs,
		Contracts:        f.contracts,
		CashIn:           f.cashIn,
		CashOut:          f.cashOut,
		Snapshots:        f.snapshots,
		Delinquency:      f.delinquency,
		IngestionRecords: f.ingestion,
		SyncRuns:         f.runs,
		Checkpoints:      f.checkpoints,
		InflationIndexes: f.inflation,
	}
	return storage, f
}
