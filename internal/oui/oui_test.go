package oui

import (
	"context"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSeedsBuiltin(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != len(Builtin) {
		t.Errorf("seeded %d prefixes, want %d", count, len(Builtin))
	}

	vendor, err := store.Vendor(ctx, "B8:27:EB")
	if err != nil {
		t.Fatalf("vendor: %v", err)
	}
	if vendor != "Raspberry Pi Foundation" {
		t.Errorf("Vendor(B8:27:EB) = %q, want Raspberry Pi Foundation", vendor)
	}
}

func TestStoreUnknownPrefix(t *testing.T) {
	store := newTestStore(t)

	vendor, err := store.Vendor(context.Background(), "FF:FF:FF")
	if err != nil {
		t.Fatalf("vendor: %v", err)
	}
	if vendor != "" {
		t.Errorf("Vendor(unknown) = %q, want empty", vendor)
	}
}

func TestImportIEEE(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	registry := strings.Join([]string{
		"OUI/MA-L		Organization",
		"company_id		Organization",
		"",
		"28-6F-7F   (hex)		Cisco Systems, Inc",
		"286F7F     (base 16)		Cisco Systems, Inc",
		"E0-55-3D   (hex)		Cisco Meraki",
		"not a registry line",
	}, "\n")

	imported, err := store.ImportIEEE(ctx, strings.NewReader(registry))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported != 2 {
		t.Errorf("imported %d prefixes, want 2", imported)
	}

	vendor, err := store.Vendor(ctx, "E0:55:3D")
	if err != nil {
		t.Fatalf("vendor: %v", err)
	}
	if vendor != "Cisco Meraki" {
		t.Errorf("Vendor(E0:55:3D) = %q, want Cisco Meraki", vendor)
	}
}

func TestParseIEEELine(t *testing.T) {
	tests := []struct {
		line       string
		wantPrefix string
		wantVendor string
		wantOK     bool
	}{
		{"28-6F-7F   (hex)		Cisco Systems, Inc", "28:6F:7F", "Cisco Systems, Inc", true},
		{"286F7F     (base 16)		Cisco Systems, Inc", "", "", false},
		{"", "", "", false},
		{"(hex)", "", "", false},
	}

	for _, tt := range tests {
		prefix, vendor, ok := parseIEEELine(tt.line)
		if ok != tt.wantOK || prefix != tt.wantPrefix || vendor != tt.wantVendor {
			t.Errorf("parseIEEELine(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.line, prefix, vendor, ok, tt.wantPrefix, tt.wantVendor, tt.wantOK)
		}
	}
}

// countingSource wraps a fixed table and counts lookups.
type countingSource struct {
	table map[string]string
	calls int
}

func (c *countingSource) Vendor(ctx context.Context, prefix string) (string, error) {
	c.calls++
	return c.table[prefix], nil
}

func TestResolverMemoizes(t *testing.T) {
	src := &countingSource{table: map[string]string{"AA:BB:CC": "Acme"}}
	resolver := NewResolver(src, 100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if got := resolver.Lookup(ctx, "aa:bb:cc:dd:ee:ff"); got != "Acme" {
			t.Fatalf("Lookup = %q, want Acme", got)
		}
	}
	if src.calls != 1 {
		t.Errorf("source saw %d calls, want 1", src.calls)
	}

	// Unknown vendors memoize too.
	resolver.Lookup(ctx, "11:22:33:44:55:66")
	resolver.Lookup(ctx, "11:22:33:44:55:66")
	if src.calls != 2 {
		t.Errorf("source saw %d calls, want 2", src.calls)
	}
}

func TestResolverBound(t *testing.T) {
	src := &countingSource{table: map[string]string{}}
	resolver := NewResolver(src, 3)
	ctx := context.Background()

	macs := []string{
		"00:00:01:00:00:00", "00:00:02:00:00:00", "00:00:03:00:00:00",
		"00:00:04:00:00:00", "00:00:05:00:00:00",
	}
	for _, mac := range macs {
		resolver.Lookup(ctx, mac)
	}

	if size := resolver.CacheSize(); size > 3 {
		t.Errorf("cache size %d exceeds bound 3", size)
	}
}

func TestResolverBadMAC(t *testing.T) {
	src := &countingSource{table: map[string]string{}}
	resolver := NewResolver(src, 10)

	if got := resolver.Lookup(context.Background(), ""); got != "" {
		t.Errorf("Lookup(\"\") = %q, want empty", got)
	}
	if src.calls != 0 {
		t.Errorf("empty MAC should not reach the source, saw %d calls", src.calls)
	}
}
