package discovery

import (
	"context"
	"log"
	"sync"

	"switchscope/internal/controller"
)

// TelemetrySource is the slice of the controller client the pipeline consumes.
type TelemetrySource interface {
	ManagedSwitches(ctx context.Context) ([]controller.ManagedSwitch, error)
	DetectedDevices(ctx context.Context) ([]controller.DetectedDevice, error)
	DHCPLeases(ctx context.Context) ([]controller.DHCPLease, error)
	ARPEntries(ctx context.Context) ([]controller.ARPEntry, error)
	RouterInterfaces(ctx context.Context) ([]controller.RouterInterface, error)
}

// Bundle holds one cycle's raw telemetry. Each feed has its own error slot so
// one failing endpoint degrades the join instead of aborting the cycle. The
// bundle is discarded as soon as the lookup maps are built.
type Bundle struct {
	Switches    []controller.ManagedSwitch
	SwitchesErr error

	Devices    []controller.DetectedDevice
	DevicesErr error

	Leases    []controller.DHCPLease
	LeasesErr error

	ARP    []controller.ARPEntry
	ARPErr error
}

// FetchAll issues the four telemetry reads concurrently and waits for all of
// them to settle. Failures land in the bundle's error slots; nothing
// propagates, and no slot aborts the other three.
func FetchAll(ctx context.Context, src TelemetrySource) *Bundle {
	var b Bundle
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		b.Switches, b.SwitchesErr = src.ManagedSwitches(ctx)
		logFeed("managed-switch status", len(b.Switches), b.SwitchesErr)
	}()
	go func() {
		defer wg.Done()
		b.Devices, b.DevicesErr = src.DetectedDevices(ctx)
		logFeed("detected devices", len(b.Devices), b.DevicesErr)
	}()
	go func() {
		defer wg.Done()
		b.Leases, b.LeasesErr = src.DHCPLeases(ctx)
		logFeed("DHCP leases", len(b.Leases), b.LeasesErr)
	}()
	go func() {
		defer wg.Done()
		b.ARP, b.ARPErr = src.ARPEntries(ctx)
		logFeed("ARP table", len(b.ARP), b.ARPErr)
	}()

	wg.Wait()
	return &b
}

func logFeed(name string, count int, err error) {
	if err != nil {
		log.Printf("Telemetry feed %s failed: %v", name, err)
		return
	}
	log.Printf("Telemetry feed %s: %d entries", name, count)
}
