package heal

import (
	"context"
	"fmt"
	"time"

	"github.com/opsbay/caretaker/internal/domain"
)

// fakeReporter swallows output and records settle waits without sleeping.
type fakeReporter struct {
	waits []time.Duration
	lines []string
}

func (f *fakeReporter) Banner(title string) { f.lines = append(f.lines, "== "+title) }
func (f *fakeReporter) Check(format string, args ...interface{}) { f.record("CHECK", format, args) }
func (f *fakeReporter) Warn(format string, args ...interface{})  { f.record("WARN", format, args) }
func (f *fakeReporter) Heal(format string, args ...interface{})  { f.record("HEAL", format, args) }
func (f *fakeReporter) OK(format string, args ...interface{})    { f.record("OK", format, args) }
func (f *fakeReporter) Fail(format string, args ...interface{})  { f.record("FAIL", format, args) }

func (f *fakeReporter) Wait(_ context.Context, d time.Duration, format string, args ...interface{}) {
	f.waits = append(f.waits, d)
	f.record("WAIT", format, args)
}

func (f *fakeReporter) record(prefix, format string, args []interface{}) {
	f.lines = append(f.lines, "["+prefix+"] "+fmt.Sprintf(format, args...))
}

// fakeRuntime serves container states from a queue; the last state repeats.
type fakeRuntime struct {
	pingErr   error
	states    []domain.ContainerState
	statusErr error
	startErr  error
	started   int
	pruneErr  error
	ops       *[]string
}

func (f *fakeRuntime) Ping(context.Context) error { return f.pingErr }

func (f *fakeRuntime) Status(context.Context, string) (domain.ContainerState, error) {
	if f.statusErr != nil {
		return domain.ContainerUnknown, f.statusErr
	}
	if len(f.states) == 0 {
		return domain.ContainerUnknown, nil
	}
	state := f.states[0]
	if len(f.states) > 1 {
		f.states = f.states[1:]
	}
	return state, nil
}

func (f *fakeRuntime) Start(context.Context, string) error {
	f.started++
	return f.startErr
}

func (f *fakeRuntime) Prune(context.Context) error {
	if f.ops != nil {
		*f.ops = append(*f.ops, "prune")
	}
	return f.pruneErr
}

// fakeProber serves HTTP statuses from a queue; the last status repeats.
type fakeProber struct {
	statuses []int
}

func (f *fakeProber) Probe(context.Context) int {
	if len(f.statuses) == 0 {
		return 0
	}
	status := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return status
}

type fakeSupervisor struct {
	pidOnPort  int
	pidErr     error
	kickstarts []string
	kickErr    error
	terminated []int
	termErr    error
	alivePIDs  map[int]bool
}

func (f *fakeSupervisor) Kickstart(_ context.Context, label string) error {
	f.kickstarts = append(f.kickstarts, label)
	return f.kickErr
}

func (f *fakeSupervisor) PIDOnPort(context.Context, int) (int, error) {
	return f.pidOnPort, f.pidErr
}

func (f *fakeSupervisor) Terminate(_ context.Context, pid int) error {
	f.terminated = append(f.terminated, pid)
	return f.termErr
}

func (f *fakeSupervisor) Alive(pid int) bool { return f.alivePIDs[pid] }

// fakeDisk serves usage readings from a queue; the last reading repeats.
type fakeDisk struct {
	usages          []domain.DiskUsage
	usageErr        error
	rotatedRemoved  int
	rotatedErr      error
	sessionsRemoved int
	sessionsErr     error
	ops             *[]string
}

func (f *fakeDisk) Usage(context.Context) (domain.DiskUsage, error) {
	if f.usageErr != nil {
		return domain.DiskUsage{}, f.usageErr
	}
	if len(f.usages) == 0 {
		return domain.DiskUsage{}, nil
	}
	usage := f.usages[0]
	if len(f.usages) > 1 {
		f.usages = f.usages[1:]
	}
	return usage, nil
}

func (f *fakeDisk) RemoveRotatedLogs(context.Context) (int, error) {
	if f.ops != nil {
		*f.ops = append(*f.ops, "logs")
	}
	return f.rotatedRemoved, f.rotatedErr
}

func (f *fakeDisk) RemoveOldSessions(context.Context, time.Duration) (int, error) {
	if f.ops != nil {
		*f.ops = append(*f.ops, "sessions")
	}
	return f.sessionsRemoved, f.sessionsErr
}

type fakeLocks struct {
	candidates []domain.LockFile
	scanErr    error
	removed    []string
	failPaths  map[string]error
}

func (f *fakeLocks) StaleCandidates(context.Context, string, time.Duration) ([]domain.LockFile, error) {
	return f.candidates, f.scanErr
}

func (f *fakeLocks) Remove(path string) error {
	if err, ok := f.failPaths[path]; ok {
		return err
	}
	f.removed = append(f.removed, path)
	return nil
}

// memStore is an in-memory heal log for driver tests.
type memStore struct {
	initialized bool
	entries     []domain.HealLogEntry
	appendErr   error
}

func (m *memStore) Init() error {
	m.initialized = true
	return nil
}

func (m *memStore) Append(entry domain.HealLogEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memStore) Entries() ([]domain.HealLogEntry, error) { return m.entries, nil }

// memHistory mimics the queryable history mirror.
type memHistory struct {
	saved   []domain.HealLogEntry
	saveErr error
}

func (m *memHistory) Save(entry domain.HealLogEntry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, entry)
	return nil
}

func (m *memHistory) Records(int, string) ([]domain.HealLogEntry, error) { return m.saved, nil }
func (m *memHistory) Clear() error                                       { m.saved = nil; return nil }
func (m *memHistory) ExportJSON(string) error                            { return nil }

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{})        {}
func (nopLogger) Info(string, map[string]interface{})         {}
func (nopLogger) Warn(string, map[string]interface{})         {}
func (nopLogger) Error(string, error, map[string]interface{}) {}
