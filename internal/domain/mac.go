package domain

import "strings"

// NormalizeMAC canonicalizes a MAC address string to the form "AA:BB:CC:DD:EE:FF".
//
// Accepted separator styles are ':', '-', and '.', in any mix, including the
// Cisco dotted-quad form and a bare run of 12 hex digits. Single-digit groups
// are zero-padded. Malformed input (wrong group count, non-hex characters)
// yields a best-effort uppercased copy of the original rather than an error:
// downstream joins need some key even when it is unreliable. Only empty input
// returns "".
func NormalizeMAC(raw string) string {
	cleaned := stripSpace(raw)
	if cleaned == "" {
		return ""
	}

	s := strings.NewReplacer("-", ":", ".", ":").Replace(cleaned)

	// Any separator layout that strips down to 12 hex digits is canonical
	// material. This covers the bare form and the dotted-quad form in one go.
	if bare := strings.ReplaceAll(s, ":", ""); len(bare) == 12 && isHex(bare) {
		var b strings.Builder
		for i := 0; i < 12; i += 2 {
			if i > 0 {
				b.WriteByte(':')
			}
			b.WriteString(bare[i : i+2])
		}
		return strings.ToUpper(b.String())
	}

	// Short groups like "a:b:c:d:e:f" strip to fewer than 12 digits; pad each
	// group individually if there are exactly six of them.
	groups := strings.Split(s, ":")
	if len(groups) != 6 {
		return strings.ToUpper(cleaned)
	}

	out := make([]string, 6)
	for i, g := range groups {
		switch {
		case len(g) == 1 && isHex(g):
			out[i] = "0" + g
		case len(g) == 2 && isHex(g):
			out[i] = g
		default:
			return strings.ToUpper(cleaned)
		}
	}

	return strings.ToUpper(strings.Join(out, ":"))
}

// OUIPrefix returns the first three octets of a normalized MAC ("AA:BB:CC"),
// or "" if the MAC is too short.
func OUIPrefix(mac string) string {
	if len(mac) < 8 {
		return ""
	}
	return strings.ToUpper(mac[:8])
}

// MACSuffix returns the last n hex characters of a MAC with separators
// stripped. Used to synthesize placeholder device names.
func MACSuffix(mac string, n int) string {
	hexOnly := strings.NewReplacer(":", "", "-", "", ".", "").Replace(stripSpace(mac))
	if len(hexOnly) <= n {
		return strings.ToUpper(hexOnly)
	}
	return strings.ToUpper(hexOnly[len(hexOnly)-n:])
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return s != ""
}
