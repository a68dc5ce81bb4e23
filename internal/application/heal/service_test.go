package heal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/opsbay/caretaker/internal/domain"
)

// scriptedChecker records its invocation and returns a canned outcome.
type scriptedChecker struct {
	name   string
	result domain.CheckOutcome
	order  *[]string
}

func (s *scriptedChecker) Name() string { return s.name }

func (s *scriptedChecker) Run(context.Context) domain.CheckOutcome {
	if s.order != nil {
		*s.order = append(*s.order, s.name)
	}
	return s.result
}

func newService(store *memStore, history *memHistory, checkers ...Checker) *Service {
	return &Service{
		Checkers: checkers,
		Store:    store,
		History:  history,
		Reporter: &fakeReporter{},
		Logger:   nopLogger{},
	}
}

func TestServiceRunsCheckersInOrderAndNeverSkips(t *testing.T) {
	var order []string
	failing := &scriptedChecker{
		name:   "container",
		order:  &order,
		result: outcome("container", false, newEntry(time.Now(), "neo4j_down", "d", "a", domain.HealFailed, "v")),
	}
	svc := newService(&memStore{}, &memHistory{},
		failing,
		&scriptedChecker{name: "gateway", order: &order, result: pass("gateway")},
		&scriptedChecker{name: "disk", order: &order, result: pass("disk")},
		&scriptedChecker{name: "locks", order: &order, result: pass("locks")},
	)

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if diff := cmp.Diff([]string{"container", "gateway", "disk", "locks"}, order); diff != "" {
		t.Fatalf("checker order mismatch (-want +got):\n%s", diff)
	}
	if report.Overall() {
		t.Fatal("one failed checker must fail the whole run")
	}
	if report.Unresolved() != 1 {
		t.Fatalf("unresolved = %d, want 1", report.Unresolved())
	}
}

func TestServiceStampsRunIDAndPersistsEveryEntry(t *testing.T) {
	store := &memStore{}
	history := &memHistory{}
	svc := newService(store, history,
		&scriptedChecker{name: "container", result: outcome("container", true,
			newEntry(time.Now(), "neo4j_down", "d1", "a1", domain.HealSuccess, "v1"))},
		&scriptedChecker{name: "locks", result: outcome("locks", true,
			newEntry(time.Now(), "locks_stale", "d2", "a2", domain.HealSuccess, "v2"))},
	)

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !store.initialized {
		t.Fatal("the heal log must be initialized before the first checker runs")
	}
	if report.RunID == "" {
		t.Fatal("report carries no run id")
	}
	if len(store.entries) != 2 || len(history.saved) != 2 {
		t.Fatalf("persisted %d file entries and %d history rows, want 2 and 2",
			len(store.entries), len(history.saved))
	}
	for _, entry := range store.entries {
		if entry.RunID != report.RunID {
			t.Fatalf("entry run id %q, want %q", entry.RunID, report.RunID)
		}
	}
}

func TestServiceHistoryMirrorFailureIsNotFatal(t *testing.T) {
	store := &memStore{}
	history := &memHistory{saveErr: errors.New("database locked")}
	svc := newService(store, history,
		&scriptedChecker{name: "locks", result: outcome("locks", true,
			newEntry(time.Now(), "locks_stale", "d", "a", domain.HealSuccess, "v"))},
	)

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("a history mirror failure must not fail the run: %v", err)
	}
	if !report.Overall() {
		t.Fatal("outcome must be unaffected by the mirror failure")
	}
	if len(store.entries) != 1 {
		t.Fatal("the file store remains the source of truth and must still be written")
	}
}

func TestServiceAppendFailureAbortsRun(t *testing.T) {
	store := &memStore{appendErr: errors.New("disk full")}
	svc := newService(store, &memHistory{},
		&scriptedChecker{name: "locks", result: outcome("locks", true,
			newEntry(time.Now(), "locks_stale", "d", "a", domain.HealSuccess, "v"))},
	)

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("losing the heal log is a driver error, not a check result")
	}
}

// Scenario: container stopped but restartable, everything else healthy.
// Exactly one entry, overall success.
func TestServiceSingleRemediationRun(t *testing.T) {
	store := &memStore{}
	rt := &fakeRuntime{states: []domain.ContainerState{domain.ContainerExited, domain.ContainerRunning}}
	container, _ := newContainerChecker(rt)
	gateway, _ := newGatewayChecker(&fakeProber{statuses: []int{200}}, &fakeSupervisor{})
	disk := newDiskChecker(&fakeDisk{usages: []domain.DiskUsage{usage(70)}}, rt)
	locks := newLockChecker(&fakeLocks{}, &fakeSupervisor{})

	svc := newService(store, &memHistory{}, container, gateway, disk, locks)
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !report.Overall() {
		t.Fatal("a healed container with everything else healthy is an overall success")
	}
	if len(store.entries) != 1 {
		t.Fatalf("persisted %d entries, want exactly the container remediation", len(store.entries))
	}
	entry := store.entries[0]
	if entry.Issue != "neo4j_down" || entry.Result != domain.HealSuccess {
		t.Fatalf("entry = %+v, want neo4j_down success", entry)
	}
}

// Scenario: container missing, gateway unrecoverable, disk recovers.
// Three entries (escalate, failed, success), overall failure.
func TestServiceMixedOutcomesRun(t *testing.T) {
	store := &memStore{}
	rt := &fakeRuntime{states: []domain.ContainerState{domain.ContainerMissing}}
	container, _ := newContainerChecker(rt)
	gateway, _ := newGatewayChecker(&fakeProber{statuses: []int{0, 0}}, &fakeSupervisor{})
	disk := newDiskChecker(&fakeDisk{usages: []domain.DiskUsage{usage(95), usage(80)}}, rt)
	locks := newLockChecker(&fakeLocks{}, &fakeSupervisor{})

	svc := newService(store, &memHistory{}, container, gateway, disk, locks)
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Overall() {
		t.Fatal("an unrecoverable gateway must fail the run even though disk healed")
	}
	if len(store.entries) != 3 {
		t.Fatalf("persisted %d entries, want 3", len(store.entries))
	}
	results := []domain.HealResult{
		store.entries[0].Result,
		store.entries[1].Result,
		store.entries[2].Result,
	}
	want := []domain.HealResult{domain.HealEscalate, domain.HealFailed, domain.HealSuccess}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Fatalf("entry results mismatch (-want +got):\n%s", diff)
	}
	if report.Unresolved() != 1 {
		t.Fatalf("unresolved = %d, want 1 (only the gateway)", report.Unresolved())
	}
}

// A healthy system heals nothing: running twice appends nothing either time.
func TestServiceHealthySystemIsIdempotent(t *testing.T) {
	store := &memStore{}
	rt := &fakeRuntime{states: []domain.ContainerState{domain.ContainerRunning}}
	container, _ := newContainerChecker(rt)
	gateway, _ := newGatewayChecker(&fakeProber{statuses: []int{200}}, &fakeSupervisor{})
	disk := newDiskChecker(&fakeDisk{usages: []domain.DiskUsage{usage(50)}}, rt)
	locks := newLockChecker(&fakeLocks{}, &fakeSupervisor{})

	svc := newService(store, &memHistory{}, container, gateway, disk, locks)
	for i := 0; i < 2; i++ {
		report, err := svc.Run(context.Background())
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if !report.Overall() {
			t.Fatalf("run %d: healthy system reported unhealthy", i)
		}
	}
	if len(store.entries) != 0 {
		t.Fatalf("healthy runs appended %d entries, want none", len(store.entries))
	}
}
