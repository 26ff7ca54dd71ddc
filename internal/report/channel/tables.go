package channel

import (
	"sort"
	"strings"

	"github.com/samirwankhede/channel-booking-reports/internal/report"
)

// ReferenceEntry is one channel row of the live reference table.
type ReferenceEntry struct {
	RowID int64
	Index int64
	Name  string
}

// ReferenceTable resolves by channel index against a reference snapshot. When an
// index maps to several rows the one with the lowest row id wins.
type ReferenceTable struct {
	byIndex map[int64]string
}

func NewReferenceTable(entries []ReferenceEntry) *ReferenceTable {
	sorted := make([]ReferenceEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RowID < sorted[j].RowID })

	t := &ReferenceTable{byIndex: make(map[int64]string, len(sorted))}
	for _, e := range sorted {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		if _, ok := t.byIndex[e.Index]; !ok {
			t.byIndex[e.Index] = name
		}
	}
	return t
}

func (t *ReferenceTable) Resolve(ref Ref) (string, bool) {
	if t == nil || ref.Index == nil {
		return "", false
	}
	name, ok := t.byIndex[*ref.Index]
	return name, ok
}

func (t *ReferenceTable) Indices() map[int64]string {
	if t == nil {
		return nil
	}
	return t.byIndex
}

func (t *ReferenceTable) Codes(report.Source) map[string]string { return nil }

// IndexTable resolves by channel index against the master-data sheet.
type IndexTable map[int64]string

func (t IndexTable) Resolve(ref Ref) (string, bool) {
	if ref.Index == nil {
		return "", false
	}
	name, ok := t[*ref.Index]
	return name, ok
}

func (t IndexTable) Indices() map[int64]string              { return t }
func (t IndexTable) Codes(report.Source) map[string]string { return nil }

// StaticTable holds independent code → name tables per source. Codes match
// regardless of case, the same way the store compares lower(code).
type StaticTable map[report.Source]map[string]string

func (t StaticTable) Resolve(ref Ref) (string, bool) {
	codes := t[ref.Source]
	if name, ok := codes[ref.Code]; ok {
		return name, true
	}
	for code, name := range codes {
		if strings.EqualFold(code, ref.Code) {
			return name, true
		}
	}
	return "", false
}

func (t StaticTable) Indices() map[int64]string { return nil }

func (t StaticTable) Codes(src report.Source) map[string]string { return t[src] }

// LiteralTable matches well-known historical codes regardless of source and case.
type LiteralTable map[string]string

func (t LiteralTable) Resolve(ref Ref) (string, bool) {
	name, ok := t[strings.ToLower(strings.TrimSpace(ref.Code))]
	return name, ok
}

func (t LiteralTable) Indices() map[int64]string { return nil }

func (t LiteralTable) Codes(report.Source) map[string]string { return t }

// DefaultStaticTable is the built-in per-source code table.
func DefaultStaticTable() StaticTable {
	return StaticTable{
		report.SourceOrderProduct: {
			"expedia":    "Expedia",
			"expediab2b": "Expedia B2B",
			"hotelbeds":  "Hotelbeds",
			"dabo":       "다보",
			"nuuaapi":    "누아",
			"hiot":       "하이오티",
			"trip":       "Trip",
			"agoda":      "Agoda",
		},
		report.SourceOffer: {
			"AMTSUPCT0001": "Trip",
			"AMTSUPME0003": "Meituan",
			"AMTSUPFL0004": "Fliggy",
			"AMTSUPDI0005": "Dida",
			"AMTSUPAG0007": "Agoda",
			"AMTSUPPK0008": "PKFare",
			"AMTSUPEL0009": "Elong",
		},
	}
}

// DefaultLiteralTable lists codes that predate the reference tables.
func DefaultLiteralTable() LiteralTable {
	return LiteralTable{
		"expedia":    "Expedia",
		"expediab2b": "Expedia B2B",
		"hotelbeds":  "Hotelbeds",
		"dabo":       "다보",
		"nuuaapi":    "누아",
		"hiot":       "하이오티",
	}
}

// OfferStatuses is the booking status each supplier code must carry for a
// booking_master_offer row to count as a booking.
func OfferStatuses() map[string]string {
	return map[string]string{
		"AMTSUPCT0001": "CONFIRMED",
		"AMTSUPME0003": "CONFIRMED",
		"AMTSUPFL0004": "CONFIRMED",
		"AMTSUPDI0005": "CONFIRMED",
		"AMTSUPAG0007": "CONFIRMED",
		"AMTSUPPK0008": "CONFIRMED",
		"AMTSUPEL0009": "CONFIRMED",
	}
}

// Build assembles the standard chain for one request.
func Build(reference []ReferenceEntry, master IndexTable) *Resolver {
	return NewResolver(
		NewReferenceTable(reference),
		master,
		DefaultStaticTable(),
		DefaultLiteralTable(),
	)
}
