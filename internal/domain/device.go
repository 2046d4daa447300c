package domain

// Classification is the output of the device classifier: a heuristic device
// type with a confidence score. It is derived per cycle and never persisted.
type Classification struct {
	DeviceType string  `json:"device_type"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// EnrichedDevice is one endpoint observed on a switch port, joined against the
// DHCP and ARP feeds and classified. MAC is always in normalized form when the
// source MAC was parseable.
type EnrichedDevice struct {
	MAC        string   `json:"mac"`
	IP         string   `json:"ip"`
	Name       string   `json:"name"`
	Vendor     string   `json:"vendor,omitempty"`
	VLAN       string   `json:"vlan,omitempty"`
	LastSeen   string   `json:"last_seen,omitempty"`
	DHCPStatus string   `json:"dhcp_status,omitempty"`
	Tags       []string `json:"tags,omitempty"`

	Classification
}
