package discovery

import (
	"fmt"
	"time"

	"switchscope/internal/domain"
)

// unknownIP is the display value when neither DHCP nor ARP knows the address.
const unknownIP = "Unknown"

// categoryTags maps classifier categories to operational tags the dashboard
// surfaces for risk and monitoring filters.
var categoryTags = map[string][]string{
	"pos_terminal": {"risk:payment", "monitor:pci"},
	"camera":       {"monitor:video"},
	"iot":          {"risk:unmanaged"},
	"server":       {"monitor:critical"},
	"voip_phone":   {"monitor:voice"},
}

// AggregatePort joins the detected devices on one (switchID, portName)
// against the DHCP and ARP maps and classifies each result.
//
// Display name priority: DHCP hostname, then a synthesized placeholder from
// the port name and the MAC's last five hex characters. IP priority: DHCP,
// then ARP, then "Unknown". A port with no detected devices yields an empty
// list; this never fails.
func AggregatePort(switchID, portName string, m *Maps) []domain.EnrichedDevice {
	detected := m.Detected[PortKey(switchID, portName)]
	if len(detected) == 0 {
		return nil
	}

	devices := make([]domain.EnrichedDevice, 0, len(detected))
	for _, d := range detected {
		lease, hasLease := m.DHCP[d.MAC]
		arp, hasARP := m.ARP[d.MAC]

		name := lease.Hostname
		if name == "" {
			name = fmt.Sprintf("%s-%s", portName, domain.MACSuffix(d.MAC, 5))
		}

		ip := unknownIP
		switch {
		case hasLease && lease.IP != "":
			ip = lease.IP
		case hasARP && arp.IP != "":
			ip = arp.IP
		}

		cls := Classify(lease.Hostname, d.Vendor, d.MAC)

		dev := domain.EnrichedDevice{
			MAC:            d.MAC,
			IP:             ip,
			Name:           name,
			Vendor:         d.Vendor,
			VLAN:           d.VLAN.String(),
			DHCPStatus:     lease.Status,
			Tags:           categoryTags[cls.Category],
			Classification: cls,
		}
		if d.LastSeen > 0 {
			dev.LastSeen = time.Unix(d.LastSeen, 0).UTC().Format(time.RFC3339)
		}

		devices = append(devices, dev)
	}

	return devices
}
