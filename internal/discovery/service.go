package discovery

import (
	"context"
	"log"
	"time"

	"switchscope/internal/domain"
)

// Result cache keys for the two entry points.
const (
	CacheKeySwitches   = "switches"
	CacheKeyInterfaces = "interfaces"
)

// EventPublisher receives discovery-cycle progress events. The SSE hub
// implements it; nil disables publishing.
type EventPublisher interface {
	PublishDiscoveryEvent(eventType string, payload interface{})
}

// CycleObserver receives per-cycle metrics. nil disables recording.
type CycleObserver interface {
	CycleComplete(switches, devices int, elapsed time.Duration)
}

// ReachabilityProber checks which of the given IPs answer on the network.
// The nmap probe implements it.
type ReachabilityProber interface {
	Reachable(ctx context.Context, ips []string) map[string]bool
}

// FactProber gathers facts from a switch directly when the controller feed
// omits them. The SSH probe implements it.
type FactProber interface {
	SwitchFacts(ctx context.Context, ip string) (map[string]string, error)
}

// ServiceConfig tunes the discovery service.
type ServiceConfig struct {
	// ResultTTL bounds how long an assembled topology stays fresh.
	ResultTTL time.Duration
	// RefreshTimeout bounds each background stale-while-revalidate cycle.
	RefreshTimeout time.Duration
}

func (c *ServiceConfig) applyDefaults() {
	if c.ResultTTL == 0 {
		c.ResultTTL = 60 * time.Second
	}
	if c.RefreshTimeout == 0 {
		c.RefreshTimeout = 2 * time.Minute
	}
}

// Service runs discovery cycles against one controller: fetch the four
// telemetry feeds, build the lookup maps, aggregate per port, assemble the
// topology. The result cache wraps the whole chain from the outside.
type Service struct {
	source   TelemetrySource
	resolver ManufacturerResolver
	cache    *ResultCache
	cfg      ServiceConfig

	publisher EventPublisher
	observer  CycleObserver
	verifier  ReachabilityProber
	facts     FactProber
}

// NewService creates a discovery service. resolver may be nil to skip vendor
// resolution.
func NewService(source TelemetrySource, resolver ManufacturerResolver, cfg ServiceConfig) *Service {
	cfg.applyDefaults()
	return &Service{
		source:   source,
		resolver: resolver,
		cache:    NewResultCache(),
		cfg:      cfg,
	}
}

// SetEventPublisher attaches a cycle event publisher.
func (s *Service) SetEventPublisher(pub EventPublisher) {
	s.publisher = pub
}

// SetCycleObserver attaches a metrics observer.
func (s *Service) SetCycleObserver(obs CycleObserver) {
	s.observer = obs
}

// SetReachabilityProber enables the active reachability sweep.
func (s *Service) SetReachabilityProber(p ReachabilityProber) {
	s.verifier = p
}

// SetFactProber enables direct switch fact gathering.
func (s *Service) SetFactProber(p FactProber) {
	s.facts = p
}

// DiscoverSwitches returns the assembled switch topology, running a full
// fetch→build→aggregate→assemble cycle unless a fresh cached result exists.
// The caller bounds the whole cycle with ctx; expiry is a hard failure.
func (s *Service) DiscoverSwitches(ctx context.Context) ([]domain.Switch, error) {
	v, err := s.cache.GetOrFetch(CacheKeySwitches, s.cfg.ResultTTL, func() (interface{}, error) {
		return s.runCycle(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Switch), nil
}

// Interfaces returns the router-interface telemetry keyed by interface name,
// sharing the upstream client machinery and result cache.
func (s *Service) Interfaces(ctx context.Context) (map[string]domain.Interface, error) {
	v, err := s.cache.GetOrFetch(CacheKeyInterfaces, s.cfg.ResultTTL, func() (interface{}, error) {
		return s.fetchInterfaces(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]domain.Interface), nil
}

// RefreshSwitches serves the stale topology immediately (if one exists) and
// schedules a background cycle so the next request is fresh.
func (s *Service) RefreshSwitches() ([]domain.Switch, bool) {
	stale, ok := s.cache.Refresh(CacheKeySwitches, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RefreshTimeout)
		defer cancel()
		return s.runCycle(ctx)
	})
	if !ok {
		return nil, false
	}
	return stale.([]domain.Switch), true
}

// ClearCache drops all cached cycle results.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

// runCycle executes one full discovery cycle.
func (s *Service) runCycle(ctx context.Context) ([]domain.Switch, error) {
	start := time.Now()
	s.publish("cycle-started", map[string]interface{}{
		"started_at": start.UTC().Format(time.RFC3339),
	})

	bundle := FetchAll(ctx, s.source)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	maps := BuildMaps(ctx, bundle, s.resolver)
	topology := AssembleTopology(bundle, maps)

	s.enrich(ctx, topology)

	deviceCount := 0
	for _, sw := range topology {
		deviceCount += sw.ConnectedDeviceCount
	}

	elapsed := time.Since(start)
	log.Printf("Discovery cycle complete: %d switches, %d devices in %s",
		len(topology), deviceCount, elapsed.Round(time.Millisecond))

	if s.observer != nil {
		s.observer.CycleComplete(len(topology), deviceCount, elapsed)
	}
	s.publish("cycle-complete", map[string]interface{}{
		"switches":   len(topology),
		"devices":    deviceCount,
		"elapsed_ms": elapsed.Milliseconds(),
	})

	return topology, nil
}

// enrich runs the optional active probes. Probe failures log and leave the
// topology unchanged.
func (s *Service) enrich(ctx context.Context, topology []domain.Switch) {
	if s.verifier != nil {
		ips := make([]string, 0, len(topology))
		for _, sw := range topology {
			if sw.ManagementIP != "" {
				ips = append(ips, sw.ManagementIP)
			}
		}
		if len(ips) > 0 {
			reachable := s.verifier.Reachable(ctx, ips)
			for i := range topology {
				if topology[i].ManagementIP == "" {
					continue
				}
				up := reachable[topology[i].ManagementIP]
				topology[i].Reachable = &up
			}
		}
	}

	if s.facts != nil {
		for i := range topology {
			sw := &topology[i]
			if sw.OSVersion != "" || sw.ManagementIP == "" {
				continue
			}
			facts, err := s.facts.SwitchFacts(ctx, sw.ManagementIP)
			if err != nil {
				log.Printf("Fact probe failed for %s (%s): %v", sw.Serial, sw.ManagementIP, err)
				continue
			}
			if v := facts["os_version"]; v != "" {
				sw.OSVersion = v
			}
			if sw.Model == "" {
				sw.Model = facts["model"]
			}
		}
	}
}

func (s *Service) fetchInterfaces(ctx context.Context) (map[string]domain.Interface, error) {
	raw, err := s.source.RouterInterfaces(ctx)
	if err != nil {
		log.Printf("Interface telemetry failed: %v", err)
		return map[string]domain.Interface{}, nil
	}

	out := make(map[string]domain.Interface, len(raw))
	for _, ri := range raw {
		if ri.Name == "" {
			continue
		}
		status := "down"
		if ri.Link {
			status = "up"
		}
		out[ri.Name] = domain.Interface{
			Name:        ri.Name,
			IP:          ri.IP,
			Netmask:     ri.Netmask,
			MAC:         domain.NormalizeMAC(ri.MAC),
			Status:      status,
			Speed:       ri.Speed.String(),
			Duplex:      ri.Duplex,
			VLAN:        ri.VLAN.String(),
			Description: ri.Alias,
		}
	}
	return out, nil
}

func (s *Service) publish(eventType string, payload interface{}) {
	if s.publisher != nil {
		s.publisher.PublishDiscoveryEvent(eventType, payload)
	}
}
