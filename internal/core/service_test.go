package core

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/PoleMap/internal/overlay"
	"github.com/JonMunkholm/PoleMap/internal/poles"
)

const sampleCSV = "Numero,Latitud,Longitud\n1,10.0,20.0\n,11.0,21.0\n3,,22.0\n4,12.0,22.0\n"

type fakeRecorder struct {
	mu     sync.Mutex
	events []AuditEvent
	err    error
}

func (f *fakeRecorder) Record(_ context.Context, ev AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakeRecorder) actions() []AuditAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]AuditAction, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Action
	}
	return out
}

func (f *fakeRecorder) last() AuditEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T, cfg ServiceConfig) (*Service, *fakeRecorder, *fakeClock) {
	t.Helper()
	rec := &fakeRecorder{}
	svc, err := NewService(cfg, rec)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = clock.Now
	return svc, rec, clock
}

func loadSample(t *testing.T, svc *Service) *SessionSummary {
	t.Helper()
	sum, err := svc.Load(context.Background(), "postes.csv", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return sum
}

func TestService_Load(t *testing.T) {
	svc, rec, _ := newTestService(t, ServiceConfig{})

	sum := loadSample(t, svc)

	if sum.ID == "" {
		t.Fatal("session ID is empty")
	}
	want := poles.LoadStats{Rows: 4, ValidRows: 2, SkippedRows: 2}
	if sum.Stats != want {
		t.Errorf("Stats = %+v, want %+v", sum.Stats, want)
	}
	if sum.Settings != DefaultSettings() {
		t.Errorf("Settings = %+v, want defaults", sum.Settings)
	}
	if got := svc.SessionCount(); got != 1 {
		t.Errorf("SessionCount() = %d, want 1", got)
	}

	ev := rec.last()
	if ev.Action != ActionLoad || ev.SessionID != sum.ID || ev.Rows.Int32 != 4 {
		t.Errorf("audit event = %+v, want load of 4 rows for %s", ev, sum.ID)
	}
}

func TestService_LoadEmptyTable(t *testing.T) {
	svc, rec, _ := newTestService(t, ServiceConfig{})

	sum, err := svc.Load(context.Background(), "vacio.csv", strings.NewReader("Latitud,Longitud,Numero\n"))
	if !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("Load() error = %v, want ErrEmptyTable", err)
	}
	if sum != nil {
		t.Error("Load() returned a session for an empty table")
	}
	if svc.SessionCount() != 0 {
		t.Error("empty table opened a session")
	}
	if got := rec.last().Action; got != ActionLoadRejected {
		t.Errorf("audit action = %s, want %s", got, ActionLoadRejected)
	}
}

func TestService_LoadError(t *testing.T) {
	svc, _, _ := newTestService(t, ServiceConfig{})

	_, err := svc.Load(context.Background(), "postes.csv", strings.NewReader("Latitud,Numero\n1,2\n"))

	var loadErr *poles.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *poles.LoadError", err)
	}
	if svc.SessionCount() != 0 {
		t.Error("failed load opened a session")
	}
	if got := svc.Limiter().ActiveCount(); got != 0 {
		t.Errorf("limiter slot leaked: ActiveCount = %d", got)
	}
}

func TestService_Render(t *testing.T) {
	svc, _, _ := newTestService(t, ServiceConfig{})
	sum := loadSample(t, svc)

	res, err := svc.Render(context.Background(), sum.ID)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if len(res.Directives) != 4 {
		t.Fatalf("len(Directives) = %d, want 4", len(res.Directives))
	}
	if res.Directives[1].Label.Text != "1" || res.Directives[3].Label.Text != "4" {
		t.Errorf("labels = %q, %q; want 1, 4", res.Directives[1].Label.Text, res.Directives[3].Label.Text)
	}
	// Latitudes 10, 11, 12 and longitudes 20, 21, 22, 22.
	if res.View.Center == nil {
		t.Fatal("View.Center is nil")
	}
	if got := *res.View.Center; got.Lat != 11 || got.Lon != 21.25 {
		t.Errorf("Center = %+v, want (11, 21.25)", got)
	}
	if res.View.Zoom != 15 {
		t.Errorf("Zoom = %d, want 15", res.View.Zoom)
	}
}

func TestService_EditCoordinates(t *testing.T) {
	svc, rec, _ := newTestService(t, ServiceConfig{})
	sum := loadSample(t, svc)
	ctx := context.Background()

	before, _ := svc.Render(ctx, sum.ID)

	res, err := svc.EditCoordinates(ctx, sum.ID, 3, 12.5, 22.5)
	if err != nil {
		t.Fatalf("EditCoordinates() error = %v", err)
	}

	if got := res.Directives[2].Anchor; got != (overlay.LatLon{Lat: 12.5, Lon: 22.5}) {
		t.Errorf("edited anchor = %+v, want (12.5, 22.5)", got)
	}
	if !reflect.DeepEqual(res.Directives[0], before.Directives[0]) {
		t.Error("unedited icon directive changed")
	}

	ev := rec.last()
	if ev.Action != ActionEditCoordinate || ev.RowIndex.Int32 != 3 {
		t.Errorf("audit event = %+v, want edit of row 3", ev)
	}
	if ev.OldLatitude.Float64 != 12 || ev.NewLatitude.Float64 != 12.5 {
		t.Errorf("audit latitude %v -> %v, want 12 -> 12.5", ev.OldLatitude.Float64, ev.NewLatitude.Float64)
	}
}

func TestService_EditMakesRowValid(t *testing.T) {
	svc, _, _ := newTestService(t, ServiceConfig{})
	sum := loadSample(t, svc)

	// Row 2 has an identifier but no latitude.
	res, err := svc.EditCoordinates(context.Background(), sum.ID, 2, 5, 5)
	if err != nil {
		t.Fatalf("EditCoordinates() error = %v", err)
	}
	if len(res.Directives) != 6 {
		t.Errorf("len(Directives) = %d, want 6", len(res.Directives))
	}
	if res.Stats.ValidRows != 3 {
		t.Errorf("ValidRows = %d, want 3", res.Stats.ValidRows)
	}
}

func TestService_EditCoordinatesRejected(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		lat     float64
		lon     float64
		wantErr error
	}{
		{"negative index", -1, 1, 1, poles.ErrIndexOutOfRange},
		{"index past end", 4, 1, 1, poles.ErrIndexOutOfRange},
		{"NaN latitude", 0, math.NaN(), 1, ErrInvalidCoordinate},
		{"infinite longitude", 0, 1, math.Inf(1), ErrInvalidCoordinate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t, ServiceConfig{})
			sum := loadSample(t, svc)
			ctx := context.Background()
			before, _ := svc.Rows(ctx, sum.ID)

			_, err := svc.EditCoordinates(ctx, sum.ID, tt.index, tt.lat, tt.lon)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("EditCoordinates() error = %v, want %v", err, tt.wantErr)
			}

			after, _ := svc.Rows(ctx, sum.ID)
			if !reflect.DeepEqual(before, after) {
				t.Errorf("rows changed after rejected edit:\n before %+v\n after  %+v", before, after)
			}
		})
	}
}

func TestService_UpdateSettings(t *testing.T) {
	svc, _, _ := newTestService(t, ServiceConfig{})
	sum := loadSample(t, svc)
	ctx := context.Background()

	settings := Settings{
		Icon:  overlay.IconConfig{URL: "https://example.com/pole.png", Width: 31, Height: 40},
		Label: overlay.LabelConfig{FontSizePt: 18},
		Mode:  "WIDE",
	}
	res, err := svc.UpdateSettings(ctx, sum.ID, settings)
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	if res.Settings.Mode != overlay.ViewWide || res.Settings.Tiles != overlay.DefaultTiles {
		t.Errorf("normalized settings = %+v", res.Settings)
	}
	if res.View.Width != "100%" {
		t.Errorf("View.Width = %q, want 100%%", res.View.Width)
	}
	label := res.Directives[1].Label
	if label.AnchorOffset.X != 15 || label.FontSizePt != 18 {
		t.Errorf("label = %+v, want offset 15 and 18pt", label)
	}
	if res.Directives[0].Icon.Height != 40 {
		t.Errorf("icon height = %d, want 40", res.Directives[0].Icon.Height)
	}
}

func TestService_UpdateSettingsRejected(t *testing.T) {
	svc, _, _ := newTestService(t, ServiceConfig{})
	sum := loadSample(t, svc)
	ctx := context.Background()

	bad := DefaultSettings()
	bad.Icon.Width = 51
	bad.Label.FontSizePt = 0

	_, err := svc.UpdateSettings(ctx, sum.ID, bad)
	if !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("UpdateSettings() error = %v, want ErrInvalidSettings", err)
	}
	if !errors.Is(err, overlay.ErrInvalidConfig) {
		t.Errorf("error should wrap overlay.ErrInvalidConfig: %v", err)
	}

	got, _ := svc.Session(ctx, sum.ID)
	if got.Settings != DefaultSettings() {
		t.Errorf("settings changed after rejected update: %+v", got.Settings)
	}
}

func TestService_SessionNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, ServiceConfig{})
	ctx := context.Background()

	if _, err := svc.Render(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Render() error = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.EditCoordinates(ctx, "missing", 0, 1, 1); !IsNotFound(err) {
		t.Errorf("EditCoordinates() error = %v, want ErrSessionNotFound", err)
	}
	if err := svc.Close(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Close() error = %v, want ErrSessionNotFound", err)
	}
}

func TestService_Close(t *testing.T) {
	svc, rec, _ := newTestService(t, ServiceConfig{})
	sum := loadSample(t, svc)
	ctx := context.Background()

	if err := svc.Close(ctx, sum.ID); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := svc.Session(ctx, sum.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Session() after Close error = %v, want ErrSessionNotFound", err)
	}
	if got := rec.last().Action; got != ActionSessionClose {
		t.Errorf("audit action = %s, want %s", got, ActionSessionClose)
	}
}

func TestService_Expiry(t *testing.T) {
	svc, rec, clock := newTestService(t, ServiceConfig{SessionTTL: time.Hour})
	ctx := context.Background()
	sum := loadSample(t, svc)

	clock.Advance(50 * time.Minute)
	if _, err := svc.Render(ctx, sum.ID); err != nil {
		t.Fatalf("Render() before TTL error = %v", err)
	}

	// Render refreshed the idle timer.
	clock.Advance(50 * time.Minute)
	if got := svc.Sweep(ctx); got != 0 {
		t.Errorf("Sweep() = %d, want 0", got)
	}

	clock.Advance(61 * time.Minute)
	if _, err := svc.Render(ctx, sum.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Render() after TTL error = %v, want ErrSessionNotFound", err)
	}
	if got := svc.Sweep(ctx); got != 1 {
		t.Errorf("Sweep() = %d, want 1", got)
	}
	if svc.SessionCount() != 0 {
		t.Errorf("SessionCount() = %d, want 0", svc.SessionCount())
	}
	if got := rec.last().Action; got != ActionSessionExpire {
		t.Errorf("audit action = %s, want %s", got, ActionSessionExpire)
	}
}

func TestService_MaxSessions(t *testing.T) {
	svc, rec, clock := newTestService(t, ServiceConfig{MaxSessions: 1, SessionTTL: time.Hour})
	ctx := context.Background()
	first := loadSample(t, svc)

	_, err := svc.Load(ctx, "otro.csv", strings.NewReader(sampleCSV))
	if !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("Load() error = %v, want ErrTooManySessions", err)
	}

	// Once the first session expires there is room again.
	clock.Advance(2 * time.Hour)
	second, err := svc.Load(ctx, "otro.csv", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Load() after expiry error = %v", err)
	}

	// The evicted session is audited like a swept one.
	rec.mu.Lock()
	events := append([]AuditEvent(nil), rec.events...)
	rec.mu.Unlock()
	var expired []string
	for _, ev := range events {
		if ev.Action == ActionSessionExpire {
			expired = append(expired, ev.SessionID)
		}
	}
	if len(expired) != 1 {
		t.Fatalf("session_expire events = %d, want 1", len(expired))
	}
	if expired[0] != first.ID || expired[0] == second.ID {
		t.Errorf("expired session = %s, want %s", expired[0], first.ID)
	}
	if svc.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1", svc.SessionCount())
	}
}

func TestService_ConcurrentEdits(t *testing.T) {
	svc, _, _ := newTestService(t, ServiceConfig{})
	sum := loadSample(t, svc)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.EditCoordinates(ctx, sum.ID, i, float64(30+i), float64(40+i)); err != nil {
				t.Errorf("EditCoordinates(%d) error = %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	rows, err := svc.Rows(ctx, sum.ID)
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	for i, r := range rows {
		if r.Latitude == nil || *r.Latitude != float64(30+i) {
			t.Errorf("row %d latitude = %v, want %d", i, r.Latitude, 30+i)
		}
	}
}

func TestService_AuditFailureDoesNotFailRequest(t *testing.T) {
	svc, rec, _ := newTestService(t, ServiceConfig{})
	rec.err = errors.New("connection refused")

	sum := loadSample(t, svc)
	if _, err := svc.EditCoordinates(context.Background(), sum.ID, 0, 1, 1); err != nil {
		t.Errorf("EditCoordinates() error = %v, want nil despite audit failure", err)
	}
}

func TestService_Row(t *testing.T) {
	svc, _, _ := newTestService(t, ServiceConfig{})
	sum := loadSample(t, svc)
	ctx := context.Background()

	row, err := svc.Row(ctx, sum.ID, 1)
	if err != nil {
		t.Fatalf("Row() error = %v", err)
	}
	if row.Number != nil || row.Latitude == nil || *row.Latitude != 11 || row.Valid {
		t.Errorf("Row(1) = %+v, want missing number and latitude 11", row)
	}

	var idxErr *poles.IndexError
	if _, err := svc.Row(ctx, sum.ID, 9); !errors.As(err, &idxErr) {
		t.Errorf("Row(9) error = %v, want *poles.IndexError", err)
	}
}

func TestNewService_InvalidDefaults(t *testing.T) {
	defaults := DefaultSettings()
	defaults.Icon.Width = 500

	if _, err := NewService(ServiceConfig{Defaults: defaults}, nil); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("NewService() error = %v, want ErrInvalidSettings", err)
	}
}
