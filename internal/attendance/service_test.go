package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/qrtoken"
)

type fakeRegs struct {
	regs map[string]*models.Registration
	err  error
}

func (f *fakeRegs) GetByID(_ context.Context, id string) (*models.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.regs[id], nil
}

// fakeAttendance mirrors the storage-layer contract: MarkAttendedIfAbsent is
// atomic, so at most one concurrent caller per registration sees true.
type fakeAttendance struct {
	mu      sync.Mutex
	records map[string]*models.AttendanceRecord
}

func newFakeAttendance() *fakeAttendance {
	return &fakeAttendance{records: make(map[string]*models.AttendanceRecord)}
}

func (f *fakeAttendance) MarkAttendedIfAbsent(_ context.Context, registrationID, eventID, markedBy string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[registrationID]; ok && rec.Status == models.StatusAttended {
		return false, nil
	}
	f.records[registrationID] = &models.AttendanceRecord{
		RegistrationID: registrationID,
		EventID:        eventID,
		Status:         models.StatusAttended,
		MarkedAt:       time.Now(),
		MarkedBy:       markedBy,
	}
	return true, nil
}

func (f *fakeAttendance) Upsert(_ context.Context, registrationID, eventID string, status models.AttendanceStatus, markedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[registrationID] = &models.AttendanceRecord{
		RegistrationID: registrationID,
		EventID:        eventID,
		Status:         status,
		MarkedAt:       time.Now(),
		MarkedBy:       markedBy,
	}
	return nil
}

func (f *fakeAttendance) SummaryByEvent(_ context.Context, eventID string) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	attended := 0
	for _, rec := range f.records {
		if rec.EventID == eventID && rec.Status == models.StatusAttended {
			attended++
		}
	}
	return len(f.records), attended, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []models.ScanLogEntry
}

func (f *fakeAudit) Append(_ context.Context, e *models.ScanLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.Timestamp = time.Now()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAudit) results() []models.ScanResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ScanResult, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Result
	}
	return out
}

func testRegistration(codec *qrtoken.Codec, id, eventID string) *models.Registration {
	tok := codec.Mint(id, eventID, "a@christuniversity.in")
	raw, _ := tok.Encode()
	return &models.Registration{
		ID:      id,
		EventID: eventID,
		Kind:    models.KindIndividual,
		PrimaryContact: models.Member{
			Name: "Asha", Email: "a@christuniversity.in", RegisterNumber: "1234567",
		},
		Members: []models.Member{{Name: "Asha", Email: "a@christuniversity.in", RegisterNumber: "1234567"}},
		QRToken: raw,
	}
}

func newScanFixture(t *testing.T) (*Service, *fakeAttendance, *fakeAudit, string) {
	t.Helper()
	codec := qrtoken.NewCodec("scan-secret", 24*time.Hour)
	reg := testRegistration(codec, "reg-1", "E1")
	store := newFakeAttendance()
	audit := &fakeAudit{}
	svc := NewService(codec, &fakeRegs{regs: map[string]*models.Registration{"reg-1": reg}}, store, audit, nil)
	return svc, store, audit, reg.QRToken
}

func TestScanFirstThenDuplicate(t *testing.T) {
	svc, store, audit, raw := newScanFixture(t)
	ctx := context.Background()

	first, err := svc.Scan(ctx, "E1", raw, "gate-a", nil)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if first.Status != MarkedPresent {
		t.Errorf("first scan status = %s, want marked_present", first.Status)
	}
	if first.Participant.Name != "Asha" {
		t.Errorf("participant = %+v", first.Participant)
	}

	second, err := svc.Scan(ctx, "E1", raw, "gate-b", nil)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if second.Status != AlreadyPresent {
		t.Errorf("second scan status = %s, want already_present", second.Status)
	}
	// Duplicate still identifies the participant for the scanner UI.
	if second.Participant.Name != "Asha" {
		t.Errorf("duplicate participant = %+v", second.Participant)
	}

	rec := store.records["reg-1"]
	if rec == nil || rec.Status != models.StatusAttended || rec.MarkedBy != "gate-a" {
		t.Errorf("attendance record = %+v", rec)
	}

	got := audit.results()
	want := []models.ScanResult{models.ScanSuccess, models.ScanDuplicate}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("audit results = %v, want %v", got, want)
	}
}

func TestScanAtMostOnceUnderConcurrency(t *testing.T) {
	svc, _, audit, raw := newScanFixture(t)

	const n = 32
	var wg sync.WaitGroup
	outcomes := make(chan ScanStatus, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := svc.Scan(context.Background(), "E1", raw, "gate", nil)
			if err != nil {
				t.Errorf("concurrent scan: %v", err)
				return
			}
			outcomes <- out.Status
		}()
	}
	wg.Wait()
	close(outcomes)

	marked, already := 0, 0
	for s := range outcomes {
		switch s {
		case MarkedPresent:
			marked++
		case AlreadyPresent:
			already++
		}
	}
	if marked != 1 {
		t.Errorf("marked_present count = %d, want exactly 1", marked)
	}
	if already != n-1 {
		t.Errorf("already_present count = %d, want %d", already, n-1)
	}
	if len(audit.results()) != n {
		t.Errorf("audit entries = %d, want one per scan (%d)", len(audit.results()), n)
	}
}

func TestScanMalformedPayload(t *testing.T) {
	svc, _, audit, _ := newScanFixture(t)

	_, err := svc.Scan(context.Background(), "E1", "not a token", "gate", nil)
	if !errors.Is(err, qrtoken.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	got := audit.entries
	if len(got) != 1 || got[0].Result != models.ScanInvalid {
		t.Fatalf("audit = %+v, want one invalid entry", got)
	}
	if got[0].RegistrationID != nil {
		t.Errorf("malformed payload must log nil registrationId, got %v", *got[0].RegistrationID)
	}
}

func TestScanTamperedToken(t *testing.T) {
	svc, _, audit, raw := newScanFixture(t)

	var tok qrtoken.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		t.Fatal(err)
	}
	tok.RegistrationID = "reg-2"
	tampered, _ := json.Marshal(tok)

	_, err := svc.Scan(context.Background(), "E1", string(tampered), "gate", nil)
	if !errors.Is(err, qrtoken.ErrSignatureMismatch) {
		t.Fatalf("err = %v, want ErrSignatureMismatch", err)
	}
	got := audit.entries
	if len(got) != 1 || got[0].Result != models.ScanInvalid {
		t.Fatalf("audit = %+v, want one invalid entry", got)
	}
	// The claimed id is still recorded for forensics.
	if got[0].RegistrationID == nil || *got[0].RegistrationID != "reg-2" {
		t.Errorf("audit registrationId = %v, want reg-2", got[0].RegistrationID)
	}
}

func TestScanExpiredToken(t *testing.T) {
	codec := qrtoken.NewCodec("scan-secret", -time.Hour) // already expired at mint
	reg := testRegistration(codec, "reg-1", "E1")
	audit := &fakeAudit{}
	svc := NewService(codec, &fakeRegs{regs: map[string]*models.Registration{"reg-1": reg}},
		newFakeAttendance(), audit, nil)

	_, err := svc.Scan(context.Background(), "E1", reg.QRToken, "gate", nil)
	if !errors.Is(err, qrtoken.ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
	if got := audit.results(); len(got) != 1 || got[0] != models.ScanInvalid {
		t.Errorf("audit results = %v, want [invalid]", got)
	}
}

func TestScanEventMismatch(t *testing.T) {
	svc, store, audit, raw := newScanFixture(t)

	// Token minted for E1, scanned at the E2 gate.
	_, err := svc.Scan(context.Background(), "E2", raw, "gate", nil)
	if !errors.Is(err, ErrEventMismatch) {
		t.Fatalf("err = %v, want ErrEventMismatch", err)
	}
	if len(store.records) != 0 {
		t.Error("mismatched scan must not mark attendance")
	}
	got := audit.entries
	if len(got) != 1 || got[0].Result != models.ScanInvalid || got[0].EventID != "E2" {
		t.Errorf("audit = %+v, want one invalid entry against E2", got)
	}
}

func TestScanRegistrationNotFound(t *testing.T) {
	codec := qrtoken.NewCodec("scan-secret", 24*time.Hour)
	orphan := testRegistration(codec, "ghost", "E1")
	audit := &fakeAudit{}
	svc := NewService(codec, &fakeRegs{regs: map[string]*models.Registration{}},
		newFakeAttendance(), audit, nil)

	_, err := svc.Scan(context.Background(), "E1", orphan.QRToken, "gate", nil)
	if !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("err = %v, want ErrRegistrationNotFound", err)
	}
	if got := audit.results(); len(got) != 1 || got[0] != models.ScanInvalid {
		t.Errorf("audit results = %v, want [invalid]", got)
	}
}

func TestScanDefaultsScanner(t *testing.T) {
	svc, store, _, raw := newScanFixture(t)
	if _, err := svc.Scan(context.Background(), "E1", raw, "", nil); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if store.records["reg-1"].MarkedBy != DefaultScanner {
		t.Errorf("markedBy = %q, want %q", store.records["reg-1"].MarkedBy, DefaultScanner)
	}
}

func TestMarkBulkOverridesAndReverts(t *testing.T) {
	codec := qrtoken.NewCodec("scan-secret", 24*time.Hour)
	regA := testRegistration(codec, "reg-a", "E1")
	regB := testRegistration(codec, "reg-b", "E1")
	regOther := testRegistration(codec, "reg-x", "E2")
	store := newFakeAttendance()
	svc := NewService(codec, &fakeRegs{regs: map[string]*models.Registration{
		"reg-a": regA, "reg-b": regB, "reg-x": regOther,
	}}, store, &fakeAudit{}, nil)
	ctx := context.Background()

	// reg-a was scanned in; the admin reverts it, which scans never can.
	if _, err := svc.Scan(ctx, "E1", regA.QRToken, "gate", nil); err != nil {
		t.Fatal(err)
	}
	updated := svc.MarkBulk(ctx, "E1", []string{"reg-a", "reg-b", "reg-x", "missing"}, models.StatusAbsent, "staff")
	// reg-x belongs to E2 and "missing" does not exist; both are skipped.
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}
	if store.records["reg-a"].Status != models.StatusAbsent {
		t.Errorf("reg-a status = %s, want absent after admin revert", store.records["reg-a"].Status)
	}
	if store.records["reg-a"].MarkedBy != "staff" {
		t.Errorf("reg-a markedBy = %q, want staff", store.records["reg-a"].MarkedBy)
	}
	if _, ok := store.records["reg-x"]; ok {
		t.Error("registration from another event must not be touched")
	}
}

func TestMarkBulkDefaultsAdmin(t *testing.T) {
	codec := qrtoken.NewCodec("scan-secret", 24*time.Hour)
	reg := testRegistration(codec, "reg-a", "E1")
	store := newFakeAttendance()
	svc := NewService(codec, &fakeRegs{regs: map[string]*models.Registration{"reg-a": reg}},
		store, &fakeAudit{}, nil)

	svc.MarkBulk(context.Background(), "E1", []string{"reg-a"}, models.StatusAttended, "")
	if store.records["reg-a"].MarkedBy != "admin" {
		t.Errorf("markedBy = %q, want admin", store.records["reg-a"].MarkedBy)
	}
}
