package probe

import (
	"context"
	"log"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
)

// ReachabilitySweep checks switch management IPs with a single nmap host
// discovery run (ping scan, no port probing). It is read-only enrichment: a
// failed sweep reports every IP unreachable and the topology stays usable.
type ReachabilitySweep struct {
	timeout time.Duration
}

// NewReachabilitySweep creates a sweep with the given per-run timeout.
func NewReachabilitySweep(timeout time.Duration) *ReachabilitySweep {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ReachabilitySweep{timeout: timeout}
}

// Available reports whether the nmap binary can be invoked.
func (s *ReachabilitySweep) Available(ctx context.Context) bool {
	scanner, err := nmap.NewScanner(ctx,
		nmap.WithTargets("localhost"),
		nmap.WithListScan(),
	)
	if err != nil {
		return false
	}
	_, _, err = scanner.Run()
	return err == nil
}

// Reachable runs one ping scan over ips and reports which answered.
func (s *ReachabilitySweep) Reachable(ctx context.Context, ips []string) map[string]bool {
	out := make(map[string]bool, len(ips))
	for _, ip := range ips {
		out[ip] = false
	}
	if len(ips) == 0 {
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	scanner, err := nmap.NewScanner(ctx,
		nmap.WithTargets(ips...),
		nmap.WithPingScan(),
	)
	if err != nil {
		log.Printf("Reachability sweep setup failed: %v", err)
		return out
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		log.Printf("Reachability sweep failed: %v", err)
		return out
	}
	if warnings != nil && len(*warnings) > 0 {
		log.Printf("Reachability sweep warnings: %v", *warnings)
	}

	up := 0
	for _, host := range result.Hosts {
		if host.Status.State != "up" {
			continue
		}
		for _, addr := range host.Addresses {
			if _, known := out[addr.Addr]; known {
				out[addr.Addr] = true
				up++
			}
		}
	}
	log.Printf("Reachability sweep: %d/%d management IPs up", up, len(ips))

	return out
}
