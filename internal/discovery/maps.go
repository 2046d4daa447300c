package discovery

import (
	"context"

	"switchscope/internal/controller"
	"switchscope/internal/domain"
)

// LeaseEntry is the DHCP lookup record, keyed by normalized MAC for one cycle.
type LeaseEntry struct {
	IP         string
	Hostname   string
	Interface  string
	Status     string
	VCI        string
	ExpireTime int64
}

// ARPRecord is the ARP lookup record, keyed by normalized MAC for one cycle.
type ARPRecord struct {
	IP        string
	Interface string
	Age       float64
}

// DetectedEntry is a detected device with its MAC rewritten to normalized
// form and its manufacturer resolved.
type DetectedEntry struct {
	controller.DetectedDevice
	Vendor string
}

// ManufacturerResolver answers MAC → manufacturer queries. *oui.Resolver
// implements it; nil disables vendor resolution.
type ManufacturerResolver interface {
	Lookup(ctx context.Context, mac string) string
}

// Maps holds the per-cycle O(1) lookup structures the aggregator joins over.
type Maps struct {
	DHCP     map[string]LeaseEntry
	ARP      map[string]ARPRecord
	Detected map[string][]DetectedEntry
}

// BuildMaps turns a settled telemetry bundle into the lookup maps. Feeds that
// failed or came back malformed produce empty maps, never errors.
func BuildMaps(ctx context.Context, b *Bundle, resolver ManufacturerResolver) *Maps {
	return &Maps{
		DHCP:     BuildDHCPMap(b.Leases),
		ARP:      BuildARPMap(b.ARP),
		Detected: BuildDetectedDeviceMap(ctx, b.Devices, resolver),
	}
}

// BuildDHCPMap indexes DHCP leases by normalized MAC. Entries without a MAC
// are dropped; on duplicate MACs the last entry in input order wins.
func BuildDHCPMap(leases []controller.DHCPLease) map[string]LeaseEntry {
	m := make(map[string]LeaseEntry, len(leases))
	for _, lease := range leases {
		mac := domain.NormalizeMAC(lease.MAC)
		if mac == "" {
			continue
		}
		m[mac] = LeaseEntry{
			IP:         lease.IP,
			Hostname:   lease.Hostname,
			Interface:  lease.Interface,
			Status:     lease.Status,
			VCI:        lease.VCI,
			ExpireTime: lease.ExpireTime,
		}
	}
	return m
}

// BuildARPMap indexes ARP entries by normalized MAC with the same drop and
// last-write-wins rules as the DHCP map.
func BuildARPMap(entries []controller.ARPEntry) map[string]ARPRecord {
	m := make(map[string]ARPRecord, len(entries))
	for _, e := range entries {
		mac := domain.NormalizeMAC(e.MAC)
		if mac == "" {
			continue
		}
		m[mac] = ARPRecord{
			IP:        e.IP,
			Interface: e.Interface,
			Age:       e.Age,
		}
	}
	return m
}

// PortKey builds the composite "{switchID}:{portName}" key that
// disambiguates per-port device collections.
func PortKey(switchID, portName string) string {
	return switchID + ":" + portName
}

// BuildDetectedDeviceMap groups detected devices by composite switch:port
// key. Devices missing either key field are dropped. Each device's MAC is
// rewritten to its normalized form and its manufacturer resolved through the
// memoizing OUI resolver.
func BuildDetectedDeviceMap(ctx context.Context, devices []controller.DetectedDevice, resolver ManufacturerResolver) map[string][]DetectedEntry {
	m := make(map[string][]DetectedEntry)
	for _, d := range devices {
		if d.SwitchID == "" || d.PortName == "" {
			continue
		}

		entry := DetectedEntry{DetectedDevice: d}
		entry.MAC = domain.NormalizeMAC(d.MAC)
		if resolver != nil {
			entry.Vendor = resolver.Lookup(ctx, entry.MAC)
		}

		key := PortKey(d.SwitchID, d.PortName)
		m[key] = append(m[key], entry)
	}
	return m
}
