package registrations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thesachinyyadav/socio2026v2-sub000/internal/eligibility"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/models"
	"github.com/thesachinyyadav/socio2026v2-sub000/internal/qrtoken"
)

type fakeEvents struct {
	events       map[string]*models.Event
	outsiders    int
	addCalls     []int
	addErr       error
	outsidersErr error
}

func (f *fakeEvents) GetByID(_ context.Context, id string) (*models.Event, error) {
	return f.events[id], nil
}

func (f *fakeEvents) AddParticipants(_ context.Context, _ string, delta int) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.addCalls = append(f.addCalls, delta)
	return nil
}

func (f *fakeEvents) CountOutsiderParticipants(_ context.Context, _ string) (int, error) {
	return f.outsiders, f.outsidersErr
}

type fakeUsers struct {
	byEmail map[string]*models.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.byEmail[email], nil
}

type fakeStore struct {
	created   []*models.Registration
	createErr error
}

func (f *fakeStore) Create(_ context.Context, reg *models.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	reg.CreatedAt = time.Now()
	f.created = append(f.created, reg)
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*models.Registration, error) {
	for _, reg := range f.created {
		if reg.ID == id {
			return reg, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListByEvent(_ context.Context, eventID string) ([]models.Registration, error) {
	var out []models.Registration
	for _, reg := range f.created {
		if reg.EventID == eventID {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) (bool, error) {
	for i, reg := range f.created {
		if reg.ID == id {
			f.created = append(f.created[:i], f.created[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeNotifier struct {
	enqueued int
	err      error
}

func (f *fakeNotifier) EnqueueConfirmation(_ context.Context, _ *models.Registration, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued++
	return nil
}

func limit(n int) *int { return &n }

func newTestService(events *fakeEvents, store *fakeStore, notifier *fakeNotifier) (*Service, *qrtoken.Codec) {
	codec := qrtoken.NewCodec("test-secret", 24*time.Hour)
	svc := NewService(events, &fakeUsers{}, store, codec, notifier, nil)
	return svc, codec
}

func individualInput(eventID, name, email, regNo string) *Input {
	m := models.Member{Name: name, Email: email, RegisterNumber: regNo}
	return &Input{EventID: eventID, Kind: models.KindIndividual, PrimaryContact: m, Members: []models.Member{m}}
}

func TestRegisterMemberIndividual(t *testing.T) {
	events := &fakeEvents{events: map[string]*models.Event{
		"E1": {ID: "E1", Title: "Hack Day", OutsiderAllowed: false},
	}}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	svc, codec := newTestService(events, store, notifier)

	reg, err := svc.Register(context.Background(), individualInput("E1", "Asha", "a@christuniversity.in", "1234567"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.OrganizationClass != models.ClassMember {
		t.Errorf("class = %s, want member", reg.OrganizationClass)
	}
	if reg.ID == "" {
		t.Error("registration id not generated")
	}

	// The stored token round-trips and is bound to this registration.
	tok, err := qrtoken.Decode(reg.QRToken)
	if err != nil {
		t.Fatalf("decode stored token: %v", err)
	}
	if tok.RegistrationID != reg.ID || tok.EventID != "E1" {
		t.Errorf("token not bound to registration: %+v", tok)
	}
	if err := codec.Verify(tok); err != nil {
		t.Errorf("verify stored token: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("stored %d registrations, want 1", len(store.created))
	}
	if len(events.addCalls) != 1 || events.addCalls[0] != 1 {
		t.Errorf("counter increments = %v, want [1]", events.addCalls)
	}
	if notifier.enqueued != 1 {
		t.Errorf("emails enqueued = %d, want 1", notifier.enqueued)
	}
}

func TestRegisterEventNotFound(t *testing.T) {
	svc, _ := newTestService(&fakeEvents{events: map[string]*models.Event{}}, &fakeStore{}, &fakeNotifier{})
	_, err := svc.Register(context.Background(), individualInput("missing", "A", "a@b.c", "1"))
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("err = %v, want ErrEventNotFound", err)
	}
}

func TestRegisterOutsiderBlocked(t *testing.T) {
	events := &fakeEvents{events: map[string]*models.Event{
		"E1": {ID: "E1", OutsiderAllowed: false, OutsiderMaxParticipants: limit(100)},
	}}
	store := &fakeStore{}
	svc, _ := newTestService(events, store, &fakeNotifier{})

	_, err := svc.Register(context.Background(), individualInput("E1", "Visitor", "v@gmail.com", "VISITOR-99"))
	if !errors.Is(err, eligibility.ErrOutsiderNotAllowed) {
		t.Fatalf("err = %v, want ErrOutsiderNotAllowed", err)
	}
	// Rejection happens before persistence: no partial writes.
	if len(store.created) != 0 || len(events.addCalls) != 0 {
		t.Errorf("rejected registration left writes: created=%d counter=%v", len(store.created), events.addCalls)
	}
}

func TestRegisterOutsiderQuota(t *testing.T) {
	events := &fakeEvents{
		events: map[string]*models.Event{
			"E1": {ID: "E1", OutsiderAllowed: true, OutsiderMaxParticipants: limit(2)},
		},
		outsiders: 2, // quota already consumed
	}
	svc, _ := newTestService(events, &fakeStore{}, &fakeNotifier{})

	_, err := svc.Register(context.Background(), individualInput("E1", "Third", "t@gmail.com", "VISITOR-3"))
	if !errors.Is(err, eligibility.ErrQuotaExceeded) {
		t.Errorf("outsider err = %v, want ErrQuotaExceeded", err)
	}

	// A member registration in the same state still succeeds.
	if _, err := svc.Register(context.Background(), individualInput("E1", "Member", "m@christuniversity.in", "1234567")); err != nil {
		t.Errorf("member register: %v", err)
	}
}

func TestRegisterTeamQuotaCountsParticipants(t *testing.T) {
	events := &fakeEvents{
		events: map[string]*models.Event{
			"E1": {ID: "E1", OutsiderAllowed: true, OutsiderMaxParticipants: limit(4)},
		},
		outsiders: 2,
	}
	svc, _ := newTestService(events, &fakeStore{}, &fakeNotifier{})

	team := []models.Member{
		{Name: "V1", Email: "v1@g.com", RegisterNumber: "VISITOR-1"},
		{Name: "V2", Email: "v2@g.com"},
		{Name: "V3", Email: "v3@g.com"},
	}
	in := &Input{EventID: "E1", Kind: models.KindTeam, TeamName: "Guests", PrimaryContact: team[0], Members: team}
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, eligibility.ErrQuotaExceeded) {
		t.Errorf("err = %v, want ErrQuotaExceeded (2 existing + 3 incoming > 4)", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	events := &fakeEvents{events: map[string]*models.Event{"E1": {ID: "E1"}}}
	store := &fakeStore{createErr: ErrDuplicateRegistration}
	svc, _ := newTestService(events, store, &fakeNotifier{})

	_, err := svc.Register(context.Background(), individualInput("E1", "A", "a@b.c", "1"))
	if !errors.Is(err, ErrDuplicateRegistration) {
		t.Errorf("err = %v, want ErrDuplicateRegistration", err)
	}
	if len(events.addCalls) != 0 {
		t.Errorf("duplicate must not touch the counter: %v", events.addCalls)
	}
}

func TestRegisterCounterFailureIsNotFatal(t *testing.T) {
	events := &fakeEvents{
		events: map[string]*models.Event{"E1": {ID: "E1"}},
		addErr: errors.New("counter down"),
	}
	svc, _ := newTestService(events, &fakeStore{}, &fakeNotifier{})

	if _, err := svc.Register(context.Background(), individualInput("E1", "A", "a@b.c", "1")); err != nil {
		t.Errorf("counter failure must not fail the registration: %v", err)
	}
}

func TestRegisterEmailFailureIsNotFatal(t *testing.T) {
	events := &fakeEvents{events: map[string]*models.Event{"E1": {ID: "E1"}}}
	svc, _ := newTestService(events, &fakeStore{}, &fakeNotifier{err: errors.New("queue down")})

	if _, err := svc.Register(context.Background(), individualInput("E1", "A", "a@b.c", "1")); err != nil {
		t.Errorf("email enqueue failure must not fail the registration: %v", err)
	}
}

func TestDeleteDecrementsCounter(t *testing.T) {
	events := &fakeEvents{events: map[string]*models.Event{"E1": {ID: "E1"}}}
	store := &fakeStore{}
	svc, _ := newTestService(events, store, &fakeNotifier{})

	team := []models.Member{
		{Name: "A", Email: "a@x.in", RegisterNumber: "1"},
		{Name: "B", Email: "b@x.in", RegisterNumber: "2"},
	}
	reg, err := svc.Register(context.Background(), &Input{
		EventID: "E1", Kind: models.KindTeam, TeamName: "Duo",
		PrimaryContact: team[0], Members: team,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Delete(context.Background(), reg.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.created) != 0 {
		t.Error("registration not removed")
	}
	want := []int{2, -2}
	if len(events.addCalls) != 2 || events.addCalls[0] != want[0] || events.addCalls[1] != want[1] {
		t.Errorf("counter calls = %v, want %v", events.addCalls, want)
	}
}

func TestDeleteMissing(t *testing.T) {
	svc, _ := newTestService(&fakeEvents{events: map[string]*models.Event{}}, &fakeStore{}, &fakeNotifier{})
	if err := svc.Delete(context.Background(), "nope"); !errors.Is(err, ErrRegistrationNotFound) {
		t.Errorf("err = %v, want ErrRegistrationNotFound", err)
	}
}
