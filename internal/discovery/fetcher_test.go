package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"

	"switchscope/internal/controller"
)

// fakeSource is a scriptable TelemetrySource that counts calls per feed.
type fakeSource struct {
	mu    sync.Mutex
	calls map[string]int

	switches    []controller.ManagedSwitch
	switchesErr error
	devices     []controller.DetectedDevice
	devicesErr  error
	leases      []controller.DHCPLease
	leasesErr   error
	arp         []controller.ARPEntry
	arpErr      error
	ifaces      []controller.RouterInterface
	ifacesErr   error
}

func newFakeSource() *fakeSource {
	return &fakeSource{calls: make(map[string]int)}
}

func (f *fakeSource) count(feed string) {
	f.mu.Lock()
	f.calls[feed]++
	f.mu.Unlock()
}

func (f *fakeSource) callCount(feed string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[feed]
}

func (f *fakeSource) ManagedSwitches(ctx context.Context) ([]controller.ManagedSwitch, error) {
	f.count("switches")
	return f.switches, f.switchesErr
}

func (f *fakeSource) DetectedDevices(ctx context.Context) ([]controller.DetectedDevice, error) {
	f.count("devices")
	return f.devices, f.devicesErr
}

func (f *fakeSource) DHCPLeases(ctx context.Context) ([]controller.DHCPLease, error) {
	f.count("leases")
	return f.leases, f.leasesErr
}

func (f *fakeSource) ARPEntries(ctx context.Context) ([]controller.ARPEntry, error) {
	f.count("arp")
	return f.arp, f.arpErr
}

func (f *fakeSource) RouterInterfaces(ctx context.Context) ([]controller.RouterInterface, error) {
	f.count("ifaces")
	return f.ifaces, f.ifacesErr
}

func TestFetchAllRunsEveryFeed(t *testing.T) {
	src := newFakeSource()
	src.switches = []controller.ManagedSwitch{{Serial: "SW1"}}
	src.leases = []controller.DHCPLease{{MAC: "aa:bb:cc:dd:ee:ff", IP: "10.0.0.1"}}

	b := FetchAll(context.Background(), src)

	for _, feed := range []string{"switches", "devices", "leases", "arp"} {
		if src.callCount(feed) != 1 {
			t.Errorf("feed %s called %d times, want 1", feed, src.callCount(feed))
		}
	}
	if len(b.Switches) != 1 || len(b.Leases) != 1 {
		t.Errorf("bundle did not carry feed data: %+v", b)
	}
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	src := newFakeSource()
	src.switches = []controller.ManagedSwitch{{Serial: "SW1"}}
	src.devicesErr = &controller.UpstreamError{Kind: controller.KindRejected, Status: 403}
	src.arpErr = errors.New("connection reset")

	b := FetchAll(context.Background(), src)

	// Failing feeds settle as error markers; the others still deliver.
	if b.DevicesErr == nil || b.ARPErr == nil {
		t.Error("expected error markers for failed feeds")
	}
	if b.SwitchesErr != nil || b.LeasesErr != nil {
		t.Errorf("healthy feeds reported errors: %v, %v", b.SwitchesErr, b.LeasesErr)
	}
	if len(b.Switches) != 1 {
		t.Error("switch feed data lost when sibling feeds failed")
	}

	var ue *controller.UpstreamError
	if !errors.As(b.DevicesErr, &ue) || ue.Status != 403 {
		t.Errorf("DevicesErr = %v, want the structured 403", b.DevicesErr)
	}
}
