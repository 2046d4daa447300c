package domain

// Port is one physical switch port and the endpoint devices connected to it.
type Port struct {
	Name             string           `json:"name"`
	Status           string           `json:"status"`
	Speed            string           `json:"speed,omitempty"`
	Duplex           string           `json:"duplex,omitempty"`
	VLAN             string           `json:"vlan,omitempty"`
	PoEState         string           `json:"poe_state,omitempty"`
	ConnectedDevices []EnrichedDevice `json:"connected_devices"`
}

// Switch is one managed switch with its ports and per-switch rollup counters.
type Switch struct {
	Name                 string `json:"name"`
	Serial               string `json:"serial"`
	Model                string `json:"model,omitempty"`
	Status               string `json:"status"`
	OSVersion            string `json:"os_version,omitempty"`
	ManagementIP         string `json:"management_ip,omitempty"`
	Ports                []Port `json:"ports"`
	TotalPorts           int    `json:"total_ports"`
	ActivePorts          int    `json:"active_ports"`
	ConnectedDeviceCount int    `json:"connected_device_count"`

	// Reachable is set only when the active reachability probe is enabled.
	Reachable *bool `json:"reachable,omitempty"`
}

// Interface is one router interface from the controller's interface telemetry.
type Interface struct {
	Name        string `json:"name"`
	IP          string `json:"ip,omitempty"`
	Netmask     string `json:"netmask,omitempty"`
	MAC         string `json:"mac,omitempty"`
	Status      string `json:"status"`
	Speed       string `json:"speed,omitempty"`
	Duplex      string `json:"duplex,omitempty"`
	VLAN        string `json:"vlan,omitempty"`
	Description string `json:"description,omitempty"`
}
