package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	catalogapp "venue-pos/internal/catalog/application"
	catalog "venue-pos/internal/catalog/domain"
	invapp "venue-pos/internal/inventory/application"
	inventory "venue-pos/internal/inventory/domain"
	invmemory "venue-pos/internal/inventory/infrastructure/memory"
	"venue-pos/internal/money"
	rental "venue-pos/internal/rental/domain"
	rentalmemory "venue-pos/internal/rental/infrastructure/memory"
	salesapp "venue-pos/internal/sales/application"
	sales "venue-pos/internal/sales/domain"
	salesmemory "venue-pos/internal/sales/infrastructure/memory"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type engineFixture struct {
	engine    *Engine
	clock     *testClock
	salesRepo *salesmemory.Repository
	invRepo   *invmemory.Repository
	invSvc    *invapp.Service
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)}

	catalogSvc, err := catalogapp.NewService(catalog.DefaultDevices())
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	salesRepo := salesmemory.NewRepository()
	recorder, err := salesapp.NewRecorder(salesRepo, clock)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	invRepo := invmemory.NewRepository()
	invSvc, err := invapp.NewService(invRepo, nil)
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}

	engine, err := NewEngine(
		rentalmemory.NewOpenSessionRepository(),
		rentalmemory.NewHistoryRepository(),
		catalogSvc,
		recorder,
		invSvc,
		clock,
	)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return &engineFixture{engine: engine, clock: clock, salesRepo: salesRepo, invRepo: invRepo, invSvc: invSvc}
}

func (f *engineFixture) addInventory(t *testing.T, label string, stock int, price money.Money) inventory.Item {
	t.Helper()
	item, err := f.invSvc.AddItem(context.Background(), invapp.AddRequest{Label: label, Stock: stock, Price: price})
	if err != nil {
		t.Fatalf("add inventory %s: %v", label, err)
	}
	return item
}

func TestOpenSnapshotsRate(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	session, err := f.engine.Open(ctx, "PS5 #1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if session.HourlyRate != money.FromUnits(18000) {
		t.Fatalf("rate snapshot: got %s", session.HourlyRate)
	}
	if session.Category != catalog.CategoryPS5 {
		t.Fatalf("category: got %s", session.Category)
	}
}

func TestOpenBusyDeviceFails(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	if _, err := f.engine.Open(ctx, "PC #1"); err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := f.engine.Open(ctx, "PC #1"); !errors.Is(err, rental.ErrDeviceBusy) {
		t.Fatalf("expected ErrDeviceBusy, got %v", err)
	}
	// A different device opens independently.
	if _, err := f.engine.Open(ctx, "PC #2"); err != nil {
		t.Fatalf("open other device: %v", err)
	}
}

func TestOpenUnknownDevice(t *testing.T) {
	f := newEngineFixture(t)
	if _, err := f.engine.Open(context.Background(), "Dreamcast"); !errors.Is(err, catalog.ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestConcurrentOpenSingleWinner(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = f.engine.Open(ctx, "Bilardo Table")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, rental.ErrDeviceBusy) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful open, got %d", succeeded)
	}
}

func TestAttachRequiresOpenSession(t *testing.T) {
	f := newEngineFixture(t)
	_, err := f.engine.Attach(context.Background(), "PC #3", "Cola", 1, money.FromUnits(150))
	if !errors.Is(err, rental.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAttachComputesSubtotal(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	if _, err := f.engine.Open(ctx, "PC #1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	items, err := f.engine.Attach(ctx, "PC #1", "Cola", 2, money.FromUnits(150))
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if len(items) != 1 || items[0].Subtotal != money.FromUnits(300) {
		t.Fatalf("unexpected items: %+v", items)
	}

	items, err = f.engine.Attach(ctx, "PC #1", "Chips", 1, money.FromUnits(200))
	if err != nil {
		t.Fatalf("attach second: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestAttachRejectsBadInput(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	if _, err := f.engine.Open(ctx, "PC #1"); err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := f.engine.Attach(ctx, "PC #1", "Cola", 0, 100); !errors.Is(err, rental.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := f.engine.Attach(ctx, "PC #1", "Cola", 1, -1); !errors.Is(err, rental.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if _, err := f.engine.Attach(ctx, "PC #1", "", 1, 100); !errors.Is(err, rental.ErrEmptyItem) {
		t.Fatalf("expected ErrEmptyItem, got %v", err)
	}
}

// End-to-end scenario: PS5 #1 at 18000/hr for 30 minutes with two colas
// attached -> charge 9000.00, batch total 9300.00, stock debited by 2.
func TestCloseEndToEnd(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	cola := f.addInventory(t, "Cola", 10, money.FromUnits(150))

	if _, err := f.engine.Open(ctx, "PS5 #1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.engine.Attach(ctx, "PS5 #1", "Cola", 2, money.FromUnits(150)); err != nil {
		t.Fatalf("attach: %v", err)
	}

	f.clock.Advance(30 * time.Minute)
	result, err := f.engine.Close(ctx, "PS5 #1")
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	if result.DurationMinutes != 30 {
		t.Fatalf("duration: got %d, want 30", result.DurationMinutes)
	}
	if result.Charge != money.FromUnits(9000) {
		t.Fatalf("charge: got %s, want 9000.00", result.Charge)
	}
	if result.Total != money.FromUnits(9300) {
		t.Fatalf("total: got %s, want 9300.00", result.Total)
	}
	if len(result.Records) != 2 {
		t.Fatalf("records: got %d, want 2", len(result.Records))
	}
	// Device-usage record always comes first.
	if result.Records[0].Category != "PS5" || result.Records[0].Item != "PS5 #1" || result.Records[0].Quantity != 1 {
		t.Fatalf("usage record: %+v", result.Records[0])
	}
	if result.Records[1].Category != sales.CategorySnack || result.Records[1].Price != money.FromUnits(300) {
		t.Fatalf("snack record: %+v", result.Records[1])
	}

	got, err := f.invRepo.Get(ctx, cola.ID)
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if got.Stock != 8 {
		t.Fatalf("stock: got %d, want 8", got.Stock)
	}

	// Session left the open set and landed in history.
	if _, err := f.engine.Elapsed(ctx, "PS5 #1"); !errors.Is(err, rental.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
	history, err := f.engine.ListHistory(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Charge != money.FromUnits(9000) {
		t.Fatalf("history: %+v", history)
	}
}

func TestCloseProducesNPlusOneRecords(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.addInventory(t, "Cola", 50, money.FromUnits(150))
	f.addInventory(t, "Chips", 50, money.FromUnits(200))
	f.addInventory(t, "Water", 50, money.FromUnits(100))

	if _, err := f.engine.Open(ctx, "PC #4"); err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, label := range []string{"Cola", "Chips", "Water"} {
		if _, err := f.engine.Attach(ctx, "PC #4", label, 1, money.FromUnits(100)); err != nil {
			t.Fatalf("attach %s: %v", label, err)
		}
	}

	f.clock.Advance(time.Hour)
	result, err := f.engine.Close(ctx, "PC #4")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(result.Records) != 4 {
		t.Fatalf("records: got %d, want 4", len(result.Records))
	}
	// Snacks follow in attach order.
	for i, label := range []string{"Cola", "Chips", "Water"} {
		if result.Records[i+1].Item != label {
			t.Fatalf("record %d: got %s, want %s", i+1, result.Records[i+1].Item, label)
		}
	}
}

// A failed stock debit does not roll back the already-appended sale
// records; the error is surfaced and the session still closes.
func TestClosePartialFailureSurfaced(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.addInventory(t, "Cola", 1, money.FromUnits(150))

	if _, err := f.engine.Open(ctx, "PC #5"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.engine.Attach(ctx, "PC #5", "Cola", 5, money.FromUnits(150)); err != nil {
		t.Fatalf("attach: %v", err)
	}

	f.clock.Advance(time.Hour)
	result, err := f.engine.Close(ctx, "PC #5")
	if err == nil {
		t.Fatal("expected partial-failure error")
	}
	if !errors.Is(err, inventory.ErrNegativeStock) {
		t.Fatalf("expected ErrNegativeStock in chain, got %v", err)
	}
	// Both sale records were still appended.
	if len(result.Records) != 2 {
		t.Fatalf("records: got %d, want 2", len(result.Records))
	}
	// Stock unchanged by the failed debit.
	item, getErr := f.invRepo.GetByLabel(ctx, "Cola")
	if getErr != nil {
		t.Fatalf("get item: %v", getErr)
	}
	if item.Stock != 1 {
		t.Fatalf("stock: got %d, want 1", item.Stock)
	}
	// Session is gone; the caller reconciles, it does not retry the close.
	if _, err := f.engine.Elapsed(ctx, "PC #5"); !errors.Is(err, rental.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestElapsedDoesNotMutate(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	if _, err := f.engine.Open(ctx, "PS4 #1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	f.clock.Advance(90 * time.Minute)

	for i := 0; i < 3; i++ {
		minutes, err := f.engine.Elapsed(ctx, "PS4 #1")
		if err != nil {
			t.Fatalf("elapsed: %v", err)
		}
		if minutes != 90 {
			t.Fatalf("elapsed: got %d, want 90", minutes)
		}
	}

	result, err := f.engine.Close(ctx, "PS4 #1")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	// 90 min at 12000/hr -> 18000.00, unaffected by the elapsed queries.
	if result.Charge != money.FromUnits(18000) {
		t.Fatalf("charge: got %s, want 18000.00", result.Charge)
	}
}

func TestRateEditDoesNotAffectOpenSession(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	catalogSvc, err := catalogapp.NewService(catalog.DefaultDevices())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	salesRepo := salesmemory.NewRepository()
	recorder, err := salesapp.NewRecorder(salesRepo, f.clock)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	invSvc, err := invapp.NewService(invmemory.NewRepository(), nil)
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	engine, err := NewEngine(rentalmemory.NewOpenSessionRepository(), rentalmemory.NewHistoryRepository(), catalogSvc, recorder, invSvc, f.clock)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	if _, err := engine.Open(ctx, "PC #1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := catalogSvc.SetHourlyRate("PC #1", money.FromUnits(99999)); err != nil {
		t.Fatalf("rate edit: %v", err)
	}

	f.clock.Advance(time.Hour)
	result, err := engine.Close(ctx, "PC #1")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	// Snapshot at open: still the old 10000/hr.
	if result.Charge != money.FromUnits(10000) {
		t.Fatalf("charge: got %s, want 10000.00", result.Charge)
	}

	// A session opened after the edit bills at the new rate.
	if _, err := engine.Open(ctx, "PC #1"); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	f.clock.Advance(time.Hour)
	result, err = engine.Close(ctx, "PC #1")
	if err != nil {
		t.Fatalf("second close: %v", err)
	}
	if result.Charge != money.FromUnits(99999) {
		t.Fatalf("charge: got %s, want 99999.00", result.Charge)
	}
}

func TestCreateHistoryRecordValidates(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	start := f.clock.Now()

	record, err := f.engine.CreateHistoryRecord(ctx, rental.SessionRecord{
		Device:    "PS5 #2",
		StartedAt: start,
		EndedAt:   start.Add(45 * time.Minute),
		Charge:    money.FromUnits(13500),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if record.DurationMinutes != 45 {
		t.Fatalf("duration: got %d, want 45", record.DurationMinutes)
	}
	if record.ID == "" {
		t.Fatal("expected generated id")
	}

	_, err = f.engine.CreateHistoryRecord(ctx, rental.SessionRecord{
		Device:    "PS5 #2",
		StartedAt: start,
		EndedAt:   start.Add(-time.Minute),
	})
	if !errors.Is(err, rental.ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
}

// lateAttachRecorder injects a line item after Close has read the
// session, reproducing an attach that races a close.
type lateAttachRecorder struct {
	inner  *salesapp.Recorder
	open   rental.OpenSessionRepository
	device string
	item   rental.LineItem
	once   sync.Once
}

func (r *lateAttachRecorder) Record(ctx context.Context, req salesapp.RecordRequest) (sales.Record, error) {
	r.once.Do(func() {
		_, _ = r.open.Attach(ctx, r.device, r.item)
	})
	return r.inner.Record(ctx, req)
}

func TestCloseBillsItemAttachedMidClose(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)}

	catalogSvc, err := catalogapp.NewService(catalog.DefaultDevices())
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	salesRepo := salesmemory.NewRepository()
	recorder, err := salesapp.NewRecorder(salesRepo, clock)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	invSvc, err := invapp.NewService(invmemory.NewRepository(), nil)
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}
	openRepo := rentalmemory.NewOpenSessionRepository()

	lateItem, err := rental.NewLineItem("Tost", 1, money.FromUnits(200))
	if err != nil {
		t.Fatalf("line item: %v", err)
	}
	racing := &lateAttachRecorder{inner: recorder, open: openRepo, device: "PS5 #1", item: lateItem}

	engine, err := NewEngine(openRepo, rentalmemory.NewHistoryRepository(), catalogSvc, racing, invSvc, clock)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	cola, err := invSvc.AddItem(ctx, invapp.AddRequest{Label: "Cola", Stock: 10, Price: money.FromUnits(150)})
	if err != nil {
		t.Fatalf("seed cola: %v", err)
	}
	tost, err := invSvc.AddItem(ctx, invapp.AddRequest{Label: "Tost", Stock: 5, Price: money.FromUnits(200)})
	if err != nil {
		t.Fatalf("seed tost: %v", err)
	}

	if _, err := engine.Open(ctx, "PS5 #1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := engine.Attach(ctx, "PS5 #1", "Cola", 2, money.FromUnits(150)); err != nil {
		t.Fatalf("attach: %v", err)
	}

	clock.Advance(30 * time.Minute)
	result, err := engine.Close(ctx, "PS5 #1")
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	// Usage, Cola, then the item that arrived mid-close.
	if len(result.Records) != 3 {
		t.Fatalf("records: got %d, want 3", len(result.Records))
	}
	if result.Records[2].Item != "Tost" || result.Records[2].Price != money.FromUnits(200) {
		t.Fatalf("late record: %+v", result.Records[2])
	}
	if result.Total != money.FromUnits(9500) {
		t.Fatalf("total: got %s, want 9500.00", result.Total)
	}

	gotCola, err := invSvc.Get(ctx, cola.ID)
	if err != nil {
		t.Fatalf("get cola: %v", err)
	}
	if gotCola.Stock != 8 {
		t.Fatalf("cola stock: got %d, want 8", gotCola.Stock)
	}
	gotTost, err := invSvc.Get(ctx, tost.ID)
	if err != nil {
		t.Fatalf("get tost: %v", err)
	}
	if gotTost.Stock != 4 {
		t.Fatalf("tost stock: got %d, want 4", gotTost.Stock)
	}

	if _, err := engine.Elapsed(ctx, "PS5 #1"); !errors.Is(err, rental.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestRemoveRefusesWhileItemsPending(t *testing.T) {
	ctx := context.Background()
	repo := rentalmemory.NewOpenSessionRepository()
	device, _ := catalogapp.NewService(catalog.DefaultDevices())
	ps5, err := device.Get("PS5 #1")
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	session := rental.NewSession(ps5, time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC))
	if err := repo.Open(ctx, session); err != nil {
		t.Fatalf("open: %v", err)
	}
	item, err := rental.NewLineItem("Cola", 1, money.FromUnits(150))
	if err != nil {
		t.Fatalf("line item: %v", err)
	}
	if _, err := repo.Attach(ctx, "PS5 #1", item); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if err := repo.Remove(ctx, "PS5 #1", 0); !errors.Is(err, rental.ErrItemsPending) {
		t.Fatalf("expected ErrItemsPending, got %v", err)
	}
	if err := repo.Remove(ctx, "PS5 #1", 1); err != nil {
		t.Fatalf("remove with current count: %v", err)
	}
	if _, err := repo.Get(ctx, "PS5 #1"); !errors.Is(err, rental.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}
