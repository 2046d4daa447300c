package oui

// Builtin is the seed OUI → vendor table. It covers the manufacturers the
// device classifier has rules for, so classification works before any IEEE
// registry import has run. Prefixes use the normalized "AA:BB:CC" form.
var Builtin = map[string]string{
	"00:00:0C": "Cisco Systems",
	"00:1B:54": "Cisco Systems",
	"58:97:1E": "Cisco Systems",
	"00:09:0F": "Fortinet",
	"70:4C:A5": "Fortinet",
	"E8:1C:BA": "Fortinet",
	"00:0B:86": "Aruba Networks",
	"24:DE:C6": "Aruba Networks",
	"24:A4:3C": "Ubiquiti Networks",
	"F0:9F:C2": "Ubiquiti Networks",
	"74:83:C2": "Ubiquiti Networks",
	"00:1B:63": "Apple",
	"A4:83:E7": "Apple",
	"F0:18:98": "Apple",
	"28:6C:07": "Samsung Electronics",
	"8C:77:12": "Samsung Electronics",
	"B8:27:EB": "Raspberry Pi Foundation",
	"DC:A6:32": "Raspberry Pi Trading",
	"E4:5F:01": "Raspberry Pi Trading",
	"24:0A:C4": "Espressif",
	"30:AE:A4": "Espressif",
	"00:40:8C": "Axis Communications",
	"AC:CC:8E": "Axis Communications",
	"28:57:BE": "Hikvision",
	"C0:56:27": "Hikvision",
	"9C:8E:CD": "Dahua Technology",
	"00:04:F2": "Polycom",
	"64:16:7F": "Polycom",
	"00:15:65": "Yealink",
	"80:5E:C0": "Yealink",
	"00:04:13": "Snom Technology",
	"00:1B:A9": "Brother Industries",
	"00:00:48": "Seiko Epson",
	"00:21:5A": "Hewlett-Packard",
	"3C:D9:2B": "Hewlett-Packard",
	"F4:8E:38": "Dell",
	"00:14:22": "Dell",
	"00:50:56": "VMware",
	"00:0C:29": "VMware",
	"52:54:00": "QEMU",
	"00:1E:C0": "Ingenico",
	"54:E1:40": "Ingenico",
	"00:0D:A3": "VeriFone",
	"18:66:DA": "Square",
	"00:A0:F8": "Zebra Technologies",
	"48:A9:1C": "Zebra Technologies",
	"00:10:40": "Honeywell",
	"34:D2:70": "Amazon Technologies",
	"FC:A6:67": "Amazon Technologies",
	"3C:5A:B4": "Google",
	"54:60:09": "Google",
	"5C:AA:FD": "Sonos",
	"D8:07:B6": "TP-Link",
	"A0:40:A0": "Netgear",
	"00:24:E4": "Withings",
	"EC:1A:59": "Belkin International",
}

// BuiltinVendor returns the seed-table vendor for a normalized "AA:BB:CC"
// prefix, or "" when the prefix is not listed.
func BuiltinVendor(prefix string) string {
	return Builtin[prefix]
}
