package discovery

import (
	"regexp"
	"strings"

	"switchscope/internal/domain"
	"switchscope/internal/oui"
)

// Scoring weights for the device classifier. Contributions within a category
// sum uncapped for comparison; the final confidence is clamped to 1.0.
const (
	hostnameWeight = 0.8
	vendorWeight   = 0.6
	ouiWeight      = 0.5
	keywordWeight  = 0.2

	// Below this total the device falls back to the generic category.
	confidenceFloor = 0.3
	// Assigned when the OUI is known but no other signal exists.
	ouiOnlyConfidence = 0.4

	genericCategory = "generic"
	genericType     = "Network Device"
)

// classifierRule scores one device category. Hostname patterns and vendor
// substrings each contribute at most once per category; keyword hits stack.
type classifierRule struct {
	category   string
	deviceType string
	hostnames  []*regexp.Regexp
	vendors    []string
	keywords   []string
}

// classifierRules is the static rule table. Its order is the documented
// category priority: when two categories tie on confidence, the one listed
// first wins. Reorder deliberately, not alphabetically.
var classifierRules = []classifierRule{
	{
		category:   "pos_terminal",
		deviceType: "POS Terminal",
		hostnames:  compilePatterns(`^pos[-_]`, `pos-terminal`, `^register`, `^till[-_0-9]`, `checkout`),
		vendors:    []string{"square", "ingenico", "verifone", "clover"},
		keywords:   []string{"pos", "terminal"},
	},
	{
		category:   "camera",
		deviceType: "IP Camera",
		hostnames:  compilePatterns(`^cam[-_0-9]`, `camera`, `^ipc[-_0-9]`, `^nvr[-_0-9]`, `^dvr[-_0-9]`),
		vendors:    []string{"axis", "hikvision", "dahua", "hanwha", "reolink"},
		keywords:   []string{"cam", "surveillance"},
	},
	{
		category:   "access_point",
		deviceType: "Wireless AP",
		hostnames:  compilePatterns(`^ap[-_0-9]`, `^wap[-_0-9]`, `wifi`, `wireless`),
		vendors:    []string{"ubiquiti", "aruba", "ruckus", "mist"},
		keywords:   []string{"access-point"},
	},
	{
		category:   "voip_phone",
		deviceType: "VoIP Phone",
		hostnames:  compilePatterns(`^phone[-_0-9]`, `^sip[-_0-9]`, `voip`, `^sep[0-9a-f]{12}$`),
		vendors:    []string{"polycom", "yealink", "snom", "grandstream", "mitel"},
		keywords:   []string{"phone"},
	},
	{
		category:   "printer",
		deviceType: "Printer",
		hostnames:  compilePatterns(`^prn[-_0-9]`, `print`, `^mfp[-_0-9]`, `^copier`),
		vendors:    []string{"brother", "epson", "lexmark", "kyocera", "zebra"},
		keywords:   []string{"printer", "label"},
	},
	{
		category:   "server",
		deviceType: "Server",
		hostnames:  compilePatterns(`^srv[-_0-9]`, `server`, `^esx`, `^nas[-_0-9]`, `^db[-_0-9]`, `^vm[-_0-9]`),
		vendors:    []string{"vmware", "supermicro", "qemu", "proxmox"},
		keywords:   []string{"host", "node"},
	},
	{
		category:   "workstation",
		deviceType: "Workstation",
		hostnames:  compilePatterns(`^ws[-_0-9]`, `desktop`, `laptop`, `^pc[-_0-9]`, `macbook`),
		vendors:    []string{"dell", "hewlett", "lenovo", "microsoft"},
		keywords:   []string{"workstation"},
	},
	{
		category:   "mobile",
		deviceType: "Mobile Device",
		hostnames:  compilePatterns(`iphone`, `ipad`, `android`, `galaxy`, `pixel`),
		vendors:    []string{"apple", "samsung", "oneplus", "xiaomi"},
		keywords:   []string{"mobile", "tablet"},
	},
	{
		category:   "iot",
		deviceType: "IoT Device",
		hostnames:  compilePatterns(`^iot[-_0-9]`, `sensor`, `thermostat`, `^esp[-_0-9a-f]`, `doorbell`, `plug`),
		vendors:    []string{"espressif", "sonos", "amazon", "google", "raspberry", "withings", "belkin", "tuya"},
		keywords:   []string{"smart", "hub"},
	},
	{
		category:   "network",
		deviceType: "Network Device",
		hostnames:  compilePatterns(`^sw[-_0-9]`, `switch`, `router`, `^gw[-_0-9]`, `^fw[-_0-9]`, `firewall`),
		vendors:    []string{"cisco", "fortinet", "netgear", "tp-link", "juniper", "mikrotik"},
		keywords:   []string{"uplink", "core"},
	},
}

func compilePatterns(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Classify scores (hostname, manufacturer, mac) against the rule table and
// returns the winning category with its confidence. Pure function: absent
// inputs degrade to the generic result with confidence 0.0, never an error.
//
// Scoring per category: first hostname pattern match +0.8 (scanning stops),
// first manufacturer substring match +0.6, a known OUI whose vendor matches
// the category +0.5, and +0.2 per keyword hit. Totals compare uncapped; ties
// keep the earliest category in table order.
func Classify(hostname, manufacturer, mac string) domain.Classification {
	host := strings.ToLower(strings.TrimSpace(hostname))
	vendor := strings.ToLower(strings.TrimSpace(manufacturer))
	ouiVendor := strings.ToLower(oui.BuiltinVendor(domain.OUIPrefix(domain.NormalizeMAC(mac))))

	best := domain.Classification{Category: genericCategory, DeviceType: genericType}
	bestScore := 0.0

	for _, rule := range classifierRules {
		score := scoreRule(rule, host, vendor, ouiVendor)
		if score > bestScore {
			bestScore = score
			best = domain.Classification{Category: rule.category, DeviceType: rule.deviceType}
		}
	}

	if bestScore < confidenceFloor {
		// Generic fallback. A known OUI with no hostname or manufacturer
		// signal gets the fixed mid-confidence default.
		conf := bestScore
		if ouiVendor != "" && host == "" && vendor == "" {
			conf = ouiOnlyConfidence
		}
		return domain.Classification{Category: genericCategory, DeviceType: genericType, Confidence: clamp01(conf)}
	}

	best.Confidence = clamp01(bestScore)
	return best
}

func scoreRule(rule classifierRule, host, vendor, ouiVendor string) float64 {
	score := 0.0

	if host != "" {
		for _, re := range rule.hostnames {
			if re.MatchString(host) {
				score += hostnameWeight
				break
			}
		}
		for _, kw := range rule.keywords {
			if strings.Contains(host, kw) {
				score += keywordWeight
			}
		}
	}

	if vendor != "" {
		for _, v := range rule.vendors {
			if strings.Contains(vendor, v) {
				score += vendorWeight
				break
			}
		}
	}

	if ouiVendor != "" {
		for _, v := range rule.vendors {
			if strings.Contains(ouiVendor, v) {
				score += ouiWeight
				break
			}
		}
	}

	return score
}

func clamp01(f float64) float64 {
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}
