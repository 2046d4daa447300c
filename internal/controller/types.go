package controller

import "encoding/json"

// Wire types for the controller's monitor API. Every endpoint wraps its
// payload in a top-level "results" array; fields not listed here are ignored.

// apiEnvelope is the common response wrapper.
type apiEnvelope struct {
	Results json.RawMessage `json:"results"`
}

// ManagedSwitch is one entry from the managed-switch status feed.
type ManagedSwitch struct {
	Name         string       `json:"name"`
	Serial       string       `json:"serial"`
	SwitchID     string       `json:"switch_id"`
	Model        string       `json:"model"`
	Status       string       `json:"status"`
	OSVersion    string       `json:"os_version"`
	ManagementIP string       `json:"mgmt_ip"`
	Ports        []SwitchPort `json:"ports"`
}

// SwitchPort is one physical port within a ManagedSwitch entry.
type SwitchPort struct {
	Interface string      `json:"interface"`
	Status    string      `json:"status"`
	Speed     json.Number `json:"speed"`
	Duplex    string      `json:"duplex"`
	VLAN      json.Number `json:"vlan"`
	PoEStatus string      `json:"poe_status"`
}

// DetectedDevice is one endpoint observed by the controller's own discovery,
// keyed upstream by switch and port rather than by MAC.
type DetectedDevice struct {
	SwitchID string      `json:"switch_id"`
	PortName string      `json:"port_name"`
	MAC      string      `json:"mac"`
	VLAN     json.Number `json:"vlan"`
	LastSeen int64       `json:"last_seen"`
}

// DHCPLease is one entry from the system DHCP lease table.
type DHCPLease struct {
	IP         string `json:"ip"`
	MAC        string `json:"mac"`
	Hostname   string `json:"hostname"`
	Interface  string `json:"interface"`
	Status     string `json:"status"`
	VCI        string `json:"vci"`
	ExpireTime int64  `json:"expire_time"`
}

// ARPEntry is one entry from the system ARP table.
type ARPEntry struct {
	IP        string  `json:"ip"`
	MAC       string  `json:"mac"`
	Age       float64 `json:"age"`
	Interface string  `json:"interface"`
}

// RouterInterface is one entry from the system interface feed.
type RouterInterface struct {
	Name    string      `json:"name"`
	IP      string      `json:"ip"`
	Netmask string      `json:"mask"`
	MAC     string      `json:"mac"`
	Link    bool        `json:"link"`
	Speed   json.Number `json:"speed"`
	Duplex  string      `json:"duplex"`
	Alias   string      `json:"alias"`
	VLAN    json.Number `json:"vlanid"`
}
