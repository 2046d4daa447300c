package discovery

import (
	"log"

	"switchscope/internal/domain"
)

// AssembleTopology walks the switch-status feed, aggregates every port, and
// rolls up the per-switch counters.
//
// An empty or failed switch-status feed is fatal for the cycle: the assembler
// returns an empty topology and logs, rather than fabricating switches from
// the other feeds.
func AssembleTopology(b *Bundle, m *Maps) []domain.Switch {
	if b.SwitchesErr != nil {
		log.Printf("Topology assembly aborted: switch-status feed failed: %v", b.SwitchesErr)
		return []domain.Switch{}
	}
	if len(b.Switches) == 0 {
		log.Printf("Topology assembly aborted: switch-status feed is empty")
		return []domain.Switch{}
	}

	topology := make([]domain.Switch, 0, len(b.Switches))
	for _, raw := range b.Switches {
		// The detected-device feed keys ports by switch_id; fall back to the
		// serial when the controller omits it.
		switchID := raw.SwitchID
		if switchID == "" {
			switchID = raw.Serial
		}
		serial := raw.Serial
		if serial == "" {
			serial = raw.SwitchID
		}

		sw := domain.Switch{
			Name:         raw.Name,
			Serial:       serial,
			Model:        raw.Model,
			Status:       raw.Status,
			OSVersion:    raw.OSVersion,
			ManagementIP: raw.ManagementIP,
			Ports:        make([]domain.Port, 0, len(raw.Ports)),
		}

		for _, rawPort := range raw.Ports {
			devices := AggregatePort(switchID, rawPort.Interface, m)

			port := domain.Port{
				Name:             rawPort.Interface,
				Status:           rawPort.Status,
				Speed:            rawPort.Speed.String(),
				Duplex:           rawPort.Duplex,
				VLAN:             rawPort.VLAN.String(),
				PoEState:         rawPort.PoEStatus,
				ConnectedDevices: devices,
			}

			sw.TotalPorts++
			if rawPort.Status == "up" {
				sw.ActivePorts++
			}
			sw.ConnectedDeviceCount += len(devices)
			sw.Ports = append(sw.Ports, port)
		}

		topology = append(topology, sw)
	}

	return topology
}
