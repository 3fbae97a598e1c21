package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/customs-tracking/internal/core/domain"
	"github.com/99minutos/customs-tracking/internal/core/ports"
	"github.com/99minutos/customs-tracking/internal/core/tracking"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubEventRepo struct {
	events    map[string]map[string]domain.ClassifiedEvent
	insertErr error
}

func newStubEventRepo() *stubEventRepo {
	return &stubEventRepo{events: make(map[string]map[string]domain.ClassifiedEvent)}
}

func (r *stubEventRepo) InsertEvents(_ context.Context, number string, events []domain.ClassifiedEvent) (int, error) {
	if r.insertErr != nil {
		return 0, r.insertErr
	}
	if r.events[number] == nil {
		r.events[number] = make(map[string]domain.ClassifiedEvent)
	}
	n := 0
	for _, e := range events {
		if _, ok := r.events[number][e.DedupKey()]; ok {
			continue
		}
		r.events[number][e.DedupKey()] = e
		n++
	}
	return n, nil
}

func (r *stubEventRepo) Timeline(_ context.Context, number string) ([]domain.ClassifiedEvent, error) {
	out := make([]domain.ClassifiedEvent, 0, len(r.events[number]))
	for _, e := range r.events[number] {
		out = append(out, e)
	}
	return out, nil
}

type stubRecordRepo struct {
	records map[string]*domain.CustomsRecord
	listErr error
}

func newStubRecordRepo() *stubRecordRepo {
	return &stubRecordRepo{records: make(map[string]*domain.CustomsRecord)}
}

func (r *stubRecordRepo) FindByTrackingNumber(_ context.Context, number string) (*domain.CustomsRecord, error) {
	rec, ok := r.records[number]
	if !ok {
		return nil, domain.ErrTrackingNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *stubRecordRepo) Upsert(_ context.Context, rec *domain.CustomsRecord) error {
	clone := *rec
	r.records[rec.TrackingNumber] = &clone
	return nil
}

func (r *stubRecordRepo) CreatePending(_ context.Context, numbers []string, source string) (int, error) {
	n := 0
	for _, num := range numbers {
		if _, ok := r.records[num]; ok {
			continue
		}
		r.records[num] = &domain.CustomsRecord{
			TrackingNumber: num,
			Summary:        domain.Summary{Status: domain.StatusUnknown, Delays: []domain.Delay{}},
			Source:         source,
		}
		n++
	}
	return n, nil
}

func (r *stubRecordRepo) List(_ context.Context, f ports.ListTrackingsFilter) ([]*domain.CustomsRecord, int64, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	keys := make([]string, 0, len(r.records))
	for k, rec := range r.records {
		if f.Status != "" && string(rec.Summary.Status) != f.Status {
			continue
		}
		if f.Search != "" && !strings.HasPrefix(k, f.Search) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := (f.Page - 1) * f.Limit
	if start > len(keys) {
		start = len(keys)
	}
	end := min(start+f.Limit, len(keys))
	out := make([]*domain.CustomsRecord, 0, end-start)
	for _, k := range keys[start:end] {
		out = append(out, r.records[k])
	}
	return out, int64(len(keys)), nil
}

func (r *stubRecordRepo) ListOpen(_ context.Context, limit int) ([]string, error) {
	var out []string
	for k, rec := range r.records {
		if rec.Summary.Status != domain.StatusCleared && len(out) < limit {
			out = append(out, k)
		}
	}
	return out, nil
}

type stubDedup struct {
	seen   map[string]bool
	dupErr error
	marked []string
}

func newStubDedup() *stubDedup {
	return &stubDedup{seen: make(map[string]bool)}
}

func (d *stubDedup) IsDuplicate(_ context.Context, key string) (bool, error) {
	return d.seen[key], d.dupErr
}

func (d *stubDedup) Mark(_ context.Context, key string) error {
	d.seen[key] = true
	d.marked = append(d.marked, key)
	return nil
}

type stubCache struct {
	views       map[string]*ports.CustomsView
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{views: make(map[string]*ports.CustomsView)}
}

func cacheKey(number string, revision int64) string {
	return fmt.Sprintf("%s@%d", number, revision)
}

func (c *stubCache) Get(_ context.Context, number string, revision int64) (*ports.CustomsView, bool, error) {
	v, ok := c.views[cacheKey(number, revision)]
	return v, ok, nil
}

func (c *stubCache) Set(_ context.Context, v *ports.CustomsView) error {
	c.views[cacheKey(v.TrackingNumber, v.Revision)] = v
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, number string, revision int64) error {
	delete(c.views, cacheKey(number, revision))
	c.invalidated = append(c.invalidated, cacheKey(number, revision))
	return nil
}

type stubPublisher struct {
	changes []ports.SummaryChange
	err     error
}

func (p *stubPublisher) PublishSummaryChanged(_ context.Context, c ports.SummaryChange) error {
	p.changes = append(p.changes, c)
	return p.err
}

type stubProvider struct {
	records  map[string]map[string]any
	rejected map[string]string
	pushed   []string
	err      error
}

func (p *stubProvider) Register(_ context.Context, numbers []string) (*ports.RegisterOutcome, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := &ports.RegisterOutcome{}
	for _, n := range numbers {
		if reason, ok := p.rejected[n]; ok {
			out.Rejected = append(out.Rejected, ports.Rejection{Number: n, Reason: reason})
			continue
		}
		out.Accepted = append(out.Accepted, n)
	}
	return out, nil
}

func (p *stubProvider) Push(_ context.Context, numbers []string) error {
	p.pushed = append(p.pushed, numbers...)
	return p.err
}

func (p *stubProvider) GetTrackInfo(_ context.Context, numbers []string) ([]ports.ProviderRecord, error) {
	if p.err != nil {
		return nil, p.err
	}
	var out []ports.ProviderRecord
	for _, n := range numbers {
		if payload, ok := p.records[n]; ok {
			out = append(out, ports.ProviderRecord{Number: n, Payload: payload})
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var base = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *TrackingService
	events    *stubEventRepo
	records   *stubRecordRepo
	dedup     *stubDedup
	cache     *stubCache
	publisher *stubPublisher
	provider  *stubProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	set, err := tracking.DefaultPatternSet()
	if err != nil {
		t.Fatalf("pattern set: %v", err)
	}
	f := &fixture{
		events:    newStubEventRepo(),
		records:   newStubRecordRepo(),
		dedup:     newStubDedup(),
		cache:     newStubCache(),
		publisher: &stubPublisher{},
		provider:  &stubProvider{records: map[string]map[string]any{}},
	}
	f.svc = NewTrackingService(TrackingDeps{
		Events:     f.events,
		Records:    f.records,
		Provider:   f.provider,
		Dedup:      f.dedup,
		Cache:      f.cache,
		Publisher:  f.publisher,
		Normalizer: tracking.NewNormalizer(tracking.NewClassifier(set)),
	}, zerolog.Nop())
	return f
}

// payload builds a legacy coded payload from (minutes offset, text) pairs.
func payload(items ...any) map[string]any {
	var list []any
	for i := 0; i+1 < len(items); i += 2 {
		list = append(list, map[string]any{
			"a": base.Add(time.Duration(items[i].(int)) * time.Minute).Format("2006-01-02 15:04:05"),
			"z": items[i+1],
		})
	}
	return map[string]any{"z1": list}
}

func ingest(t *testing.T, svc *TrackingService, number string, raw map[string]any) *ports.IngestResult {
	t.Helper()
	res, err := svc.Ingest(context.Background(), ports.IngestInput{
		TrackingNumber: number,
		Event:          "TRACKING_UPDATED",
		Source:         domain.SourceWebhook,
		Payload:        raw,
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	return res
}

// ---------------------------------------------------------------------------
// Ingest
// ---------------------------------------------------------------------------

func TestTrackingService_Ingest_HappyPath(t *testing.T) {
	f := newFixture(t)

	res := ingest(t, f.svc, "RR1", payload(
		0, "Presented to customs",
		15, "Customs clearance information required",
		45, "Released from customs",
	))

	if res.Inserted != 3 {
		t.Errorf("Inserted = %d, want 3", res.Inserted)
	}
	if res.Summary.Status != domain.StatusCleared {
		t.Errorf("Status = %s, want CLEARED", res.Summary.Status)
	}
	if res.Summary.DurationSec == nil || *res.Summary.DurationSec != 2700 {
		t.Errorf("DurationSec = %v, want 2700", res.Summary.DurationSec)
	}
	if !res.StatusChanged {
		t.Error("expected status change")
	}

	rec := f.records.records["RR1"]
	if rec == nil || rec.EventCount != 3 || rec.Source != domain.SourceWebhook {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(f.publisher.changes) != 1 || f.publisher.changes[0].Current != domain.StatusCleared {
		t.Errorf("unexpected published changes: %+v", f.publisher.changes)
	}
	if len(f.dedup.marked) != 1 {
		t.Errorf("expected delivery marked, got %v", f.dedup.marked)
	}
	if len(f.cache.invalidated) != 1 {
		t.Errorf("expected cache invalidation, got %v", f.cache.invalidated)
	}
}

func TestTrackingService_Ingest_DuplicateDeliverySkipped(t *testing.T) {
	f := newFixture(t)
	raw := payload(0, "Presented to customs")

	ingest(t, f.svc, "RR1", raw)
	res := ingest(t, f.svc, "RR1", raw)

	if !res.Duplicate {
		t.Fatal("expected second delivery to be flagged duplicate")
	}
	if len(f.events.events["RR1"]) != 1 {
		t.Errorf("expected one stored event, got %d", len(f.events.events["RR1"]))
	}
}

func TestTrackingService_Ingest_DedupErrorProcessesAnyway(t *testing.T) {
	f := newFixture(t)
	f.dedup.dupErr = errors.New("redis down")

	res := ingest(t, f.svc, "RR1", payload(0, "Presented to customs"))
	if res.Duplicate || res.Inserted != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestTrackingService_Ingest_RedeliveryWithOverlapStoresOnce(t *testing.T) {
	f := newFixture(t)

	ingest(t, f.svc, "RR1", payload(0, "Presented to customs"))
	res := ingest(t, f.svc, "RR1", payload(0, "Presented to customs", 30, "Released from customs"))

	if res.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", res.Inserted)
	}
	if f.records.records["RR1"].EventCount != 2 {
		t.Errorf("EventCount = %d, want 2", f.records.records["RR1"].EventCount)
	}
	if res.Summary.Status != domain.StatusCleared {
		t.Errorf("Status = %s, want CLEARED", res.Summary.Status)
	}
}

func TestTrackingService_Ingest_PreCustoms(t *testing.T) {
	f := newFixture(t)

	res := ingest(t, f.svc, "RR1", payload(0, "Shipment information received", 60, "Departed from facility"))
	if res.Summary.Status != domain.StatusPreCustoms {
		t.Errorf("Status = %s, want PRE_CUSTOMS", res.Summary.Status)
	}
	if res.Stats.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", res.Stats.Dropped)
	}
}

func TestTrackingService_Ingest_KeepsStoredClearance(t *testing.T) {
	f := newFixture(t)
	cleared := base.Add(2 * time.Hour)
	start := base
	f.records.records["RR1"] = &domain.CustomsRecord{
		TrackingNumber: "RR1",
		Summary:        domain.Summary{Status: domain.StatusCleared, InProgressAt: &start, ClearedAt: &cleared},
		RawCount:       4,
	}

	res := ingest(t, f.svc, "RR1", payload(10, "Presented to customs", 30, "Released from customs"))
	if res.Summary.ClearedAt == nil || !res.Summary.ClearedAt.Equal(cleared) {
		t.Errorf("ClearedAt = %v, want %v", res.Summary.ClearedAt, cleared)
	}
	if res.StatusChanged {
		t.Error("status did not move, no change expected")
	}
	if len(f.publisher.changes) != 0 {
		t.Errorf("unexpected publish: %+v", f.publisher.changes)
	}
	if f.records.records["RR1"].RawCount != 4 {
		t.Errorf("RawCount = %d, want 4", f.records.records["RR1"].RawCount)
	}
}

func TestTrackingService_Ingest_PublishFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("nats down")

	if _, err := f.svc.Ingest(context.Background(), ports.IngestInput{
		TrackingNumber: "RR1",
		Payload:        payload(0, "Presented to customs"),
	}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestTrackingService_Ingest_StoreError(t *testing.T) {
	f := newFixture(t)
	f.events.insertErr = errors.New("mongo down")

	_, err := f.svc.Ingest(context.Background(), ports.IngestInput{TrackingNumber: "RR1", Payload: payload(0, "Presented to customs")})
	if err == nil || !strings.Contains(err.Error(), "store events") {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(f.dedup.marked) != 0 {
		t.Error("failed delivery must not be marked")
	}
}

func TestTrackingService_Ingest_MissingNumber(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Ingest(context.Background(), ports.IngestInput{TrackingNumber: "  "}); !errors.Is(err, domain.ErrMissingNumber) {
		t.Fatalf("expected ErrMissingNumber, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Customs / Preview
// ---------------------------------------------------------------------------

func TestTrackingService_Customs_ModesAndCache(t *testing.T) {
	f := newFixture(t)
	ingest(t, f.svc, "RR1", payload(
		0, "Export customs clearance in progress",
		20, "Export customs cleared",
		120, "Import customs on hold",
		180, "Import customs clearance completed",
	))

	anyView, err := f.svc.Customs(context.Background(), "RR1", domain.ModeAny)
	if err != nil {
		t.Fatalf("Customs(any): %v", err)
	}
	if !anyView.Summary.ClearedAt.Equal(base.Add(20 * time.Minute)) {
		t.Errorf("any ClearedAt = %v", anyView.Summary.ClearedAt)
	}
	if len(anyView.Timeline) != 4 {
		t.Errorf("timeline length = %d, want 4", len(anyView.Timeline))
	}
	if _, ok := f.cache.views[cacheKey("RR1", 1)]; !ok {
		t.Error("expected any-mode view to be cached")
	}

	imp, err := f.svc.Customs(context.Background(), "RR1", domain.ModeImportFiltered)
	if err != nil {
		t.Fatalf("Customs(import_filtered): %v", err)
	}
	if !imp.Summary.ClearedAt.Equal(base.Add(180 * time.Minute)) {
		t.Errorf("import ClearedAt = %v", imp.Summary.ClearedAt)
	}
	if imp.Summary.HasDelay {
		t.Error("import delay resolved by later clearance must be suppressed")
	}
}

func TestTrackingService_Customs_CacheHit(t *testing.T) {
	f := newFixture(t)
	f.records.records["RR9"] = &domain.CustomsRecord{TrackingNumber: "RR9", Revision: 3}
	cached := &ports.CustomsView{TrackingNumber: "RR9", Mode: domain.ModeAny, Revision: 3}
	f.cache.views[cacheKey("RR9", 3)] = cached

	got, err := f.svc.Customs(context.Background(), "RR9", domain.ModeAny)
	if err != nil {
		t.Fatalf("Customs: %v", err)
	}
	if got != cached {
		t.Error("expected cached view")
	}
}

func TestTrackingService_Customs_StaleViewNotServedAfterIngest(t *testing.T) {
	f := newFixture(t)
	ingest(t, f.svc, "RR1", payload(0, "Import customs clearance in progress"))

	// A reader that loaded revision 1 finishes after the next ingest and
	// writes its view back.
	stale, err := f.svc.Customs(context.Background(), "RR1", domain.ModeAny)
	if err != nil {
		t.Fatalf("Customs: %v", err)
	}
	if stale.Summary.Status != domain.StatusInProgress || stale.Revision != 1 {
		t.Fatalf("unexpected first view: rev=%d %+v", stale.Revision, stale.Summary)
	}
	ingest(t, f.svc, "RR1", payload(90, "Import customs clearance completed"))
	if err := f.cache.Set(context.Background(), stale); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := f.svc.Customs(context.Background(), "RR1", domain.ModeAny)
	if err != nil {
		t.Fatalf("Customs: %v", err)
	}
	if got == stale || got.Revision != 2 {
		t.Fatalf("served stale view: rev=%d", got.Revision)
	}
	if got.Summary.Status != domain.StatusCleared {
		t.Errorf("status = %s, want %s", got.Summary.Status, domain.StatusCleared)
	}
	if _, ok := f.cache.views[cacheKey("RR1", 2)]; !ok {
		t.Error("expected the fresh view cached under revision 2")
	}
}

func TestTrackingService_Ingest_BumpsRevision(t *testing.T) {
	f := newFixture(t)
	f.records.records["RR1"] = &domain.CustomsRecord{TrackingNumber: "RR1"}

	ingest(t, f.svc, "RR1", payload(0, "Import customs clearance in progress"))
	ingest(t, f.svc, "RR1", payload(30, "Import customs on hold"))

	if rev := f.records.records["RR1"].Revision; rev != 2 {
		t.Errorf("revision = %d, want 2", rev)
	}
	want := []string{cacheKey("RR1", 0), cacheKey("RR1", 1)}
	if fmt.Sprint(f.cache.invalidated) != fmt.Sprint(want) {
		t.Errorf("invalidated = %v, want %v", f.cache.invalidated, want)
	}
}

func TestTrackingService_Customs_Errors(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Customs(context.Background(), "RR1", domain.SummaryMode("bogus")); !errors.Is(err, domain.ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
	if _, err := f.svc.Customs(context.Background(), "missing", domain.ModeAny); !errors.Is(err, domain.ErrTrackingNotFound) {
		t.Errorf("expected ErrTrackingNotFound, got %v", err)
	}
}

func TestTrackingService_Preview(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Preview(payload(0, "Released from customs"), domain.ModeAny)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if res.Summary.Status != domain.StatusCleared || len(res.Timeline) != 1 {
		t.Errorf("unexpected preview: %+v", res)
	}
	if len(f.events.events) != 0 || len(f.records.records) != 0 {
		t.Error("preview must not write")
	}
}

func TestTrackingService_Inspect(t *testing.T) {
	f := newFixture(t)
	f.provider.records["RR1"] = payload(0, "Presented to customs", 30, "Import customs clearance completed")

	res, err := f.svc.Inspect(context.Background(), " RR1 ", domain.ModeImportFiltered)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if res.Stats.RawCount != 2 || len(res.Timeline) != 2 {
		t.Errorf("unexpected inspect result: %+v", res)
	}
	if len(f.records.records) != 0 {
		t.Error("inspect must not write")
	}

	if _, err := f.svc.Inspect(context.Background(), "RR9", domain.ModeAny); !errors.Is(err, domain.ErrTrackingNotFound) {
		t.Errorf("expected ErrTrackingNotFound, got %v", err)
	}
	if _, err := f.svc.Inspect(context.Background(), "RR1", "latest"); !errors.Is(err, domain.ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Register / Refresh / Push
// ---------------------------------------------------------------------------

func TestTrackingService_Register(t *testing.T) {
	f := newFixture(t)
	f.provider.rejected = map[string]string{"BAD": "invalid number"}

	out, err := f.svc.Register(context.Background(), []string{" RR1 ", "RR2", "RR1", "", "BAD"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(out.Accepted) != 2 || len(out.Rejected) != 1 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if _, ok := f.records.records["RR1"]; !ok {
		t.Error("expected pending record for RR1")
	}
	if _, ok := f.records.records["BAD"]; ok {
		t.Error("rejected number must not be stored")
	}
}

func TestTrackingService_Register_Validation(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Register(context.Background(), []string{" ", ""}); !errors.Is(err, domain.ErrEmptyBatch) {
		t.Errorf("expected ErrEmptyBatch, got %v", err)
	}

	many := make([]string, MaxBatch+1)
	for i := range many {
		many[i] = fmt.Sprintf("RR%04d", i)
	}
	if _, err := f.svc.Register(context.Background(), many); !errors.Is(err, domain.ErrBatchTooLarge) {
		t.Errorf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestTrackingService_Refresh(t *testing.T) {
	f := newFixture(t)
	f.provider.records["RR1"] = payload(0, "Presented to customs")
	f.provider.records["RR2"] = payload(0, "Released from customs")

	results, err := f.svc.Refresh(context.Background(), []string{"RR1", "RR2", "RR3"})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if f.records.records["RR2"].Source != domain.SourcePoll {
		t.Errorf("Source = %s, want poll", f.records.records["RR2"].Source)
	}
}

func TestTrackingService_Refresh_ProviderError(t *testing.T) {
	f := newFixture(t)
	f.provider.err = errors.New("upstream 503")

	if _, err := f.svc.Refresh(context.Background(), []string{"RR1"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestTrackingService_RequestPush(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.RequestPush(context.Background(), []string{"RR1", "RR1"}); err != nil {
		t.Fatalf("RequestPush: %v", err)
	}
	if len(f.provider.pushed) != 1 {
		t.Errorf("pushed = %v", f.provider.pushed)
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestTrackingService_List_DefaultsAndCap(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.List(context.Background(), ports.ListTrackingsFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Limit != 20 || res.Page != 1 {
		t.Errorf("defaults: limit=%d page=%d", res.Limit, res.Page)
	}

	res, err = f.svc.List(context.Background(), ports.ListTrackingsFilter{Limit: 999})
	if err != nil {
		t.Fatal(err)
	}
	if res.Limit != 100 {
		t.Errorf("expected limit 100, got %d", res.Limit)
	}
}

func TestTrackingService_List_PaginationMath(t *testing.T) {
	f := newFixture(t)
	if _, err := f.records.CreatePending(context.Background(), []string{"A", "B", "C", "D", "E"}, domain.SourceAPI); err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.List(context.Background(), ports.ListTrackingsFilter{Limit: 2, Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 5 || res.TotalPages != 3 || len(res.Items) != 2 {
		t.Errorf("total=%d pages=%d items=%d", res.Total, res.TotalPages, len(res.Items))
	}
}

func TestTrackingService_List_RepoError(t *testing.T) {
	f := newFixture(t)
	f.records.listErr = errors.New("boom")
	if _, err := f.svc.List(context.Background(), ports.ListTrackingsFilter{}); err == nil {
		t.Fatal("expected error")
	}
}
