package store_test

import (
	"path/filepath"
	"testing"

	"github.com/gaugeworks/riverdata/internal/model"
	"github.com/gaugeworks/riverdata/internal/store"
)

// testStore opens a store in a temp directory and closes it on cleanup.
func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "riverdata.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSeriesKey(t *testing.T) {
	cases := []struct {
		site, period, start, end string
		want                     string
	}{
		{"09380000", "P7D", "", "", "site:09380000|period:P7D"},
		{"09380000", "", "2020-01-01", "2020-01-31", "site:09380000|start:2020-01-01|end:2020-01-31"},
		{"09380000", "", "", "", "site:09380000"},
	}
	for _, tc := range cases {
		if got := store.SeriesKey(tc.site, tc.period, tc.start, tc.end); got != tc.want {
			t.Errorf("SeriesKey(%q,%q,%q,%q): expected %q, got %q",
				tc.site, tc.period, tc.start, tc.end, tc.want, got)
		}
	}
}

func TestGageMetaRoundTrip(t *testing.T) {
	s := testStore(t)

	meta := model.GageMeta{
		SiteCode:     "09380000",
		SiteName:     "COLORADO RIVER AT LEES FERRY, AZ",
		VariableCode: "00060",
		Unit:         "ft3/s",
		NoDataValue:  -999999,
	}
	if err := s.PutGageMeta(meta); err != nil {
		t.Fatalf("PutGageMeta: %v", err)
	}

	got, ok, err := s.GetGageMeta("09380000")
	if err != nil {
		t.Fatalf("GetGageMeta: %v", err)
	}
	if !ok {
		t.Fatal("GetGageMeta: expected hit")
	}
	if got.SiteName != meta.SiteName || got.Unit != meta.Unit {
		t.Errorf("GetGageMeta: round trip mismatch: %+v", got)
	}
	if got.FetchedAt.IsZero() {
		t.Error("PutGageMeta should stamp FetchedAt")
	}

	if _, ok, _ := s.GetGageMeta("00000000"); ok {
		t.Error("GetGageMeta: expected miss for unknown site")
	}
}

func TestListGageMeta(t *testing.T) {
	s := testStore(t)

	for _, code := range []string{"09380000", "01646500"} {
		if err := s.PutGageMeta(model.GageMeta{SiteCode: code}); err != nil {
			t.Fatalf("PutGageMeta(%s): %v", code, err)
		}
	}

	metas, err := s.ListGageMeta()
	if err != nil {
		t.Fatalf("ListGageMeta: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(metas))
	}
	// bbolt iterates in key order.
	if metas[0].SiteCode != "01646500" || metas[1].SiteCode != "09380000" {
		t.Errorf("expected key-ordered listing, got %+v", metas)
	}
}

func TestSeriesRoundTrip(t *testing.T) {
	s := testStore(t)

	data := &model.SeriesData{
		SiteCode: "09380000",
		Series: model.TimeSeries{
			{"value": "1.2", "dateTime": "2020-01-01T00:00Z"},
			{"value": "1.3", "dateTime": "2020-01-01T00:15Z"},
		},
	}
	key := store.SeriesKey("09380000", "P7D", "", "")
	if err := s.PutSeries(key, data); err != nil {
		t.Fatalf("PutSeries: %v", err)
	}

	got, ok, err := s.GetSeries(key)
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if !ok {
		t.Fatal("GetSeries: expected hit")
	}
	if got.SiteCode != "09380000" || len(got.Series) != 2 {
		t.Errorf("GetSeries: round trip mismatch: %+v", got)
	}
	if got.Series[0]["value"] != "1.2" {
		t.Errorf("record values should survive storage, got %v", got.Series[0])
	}

	if _, ok, _ := s.GetSeries("site:nope"); ok {
		t.Error("GetSeries: expected miss for unknown key")
	}
}

func TestListSeriesKeys(t *testing.T) {
	s := testStore(t)

	keys := []string{
		store.SeriesKey("01646500", "P7D", "", ""),
		store.SeriesKey("09380000", "P1D", "", ""),
		store.SeriesKey("09380000", "P7D", "", ""),
	}
	for _, k := range keys {
		site := "09380000"
		if k[:len("site:01646500")] == "site:01646500" {
			site = "01646500"
		}
		if err := s.PutSeries(k, &model.SeriesData{SiteCode: site}); err != nil {
			t.Fatalf("PutSeries(%s): %v", k, err)
		}
	}

	all, err := s.ListSeriesKeys("")
	if err != nil {
		t.Fatalf("ListSeriesKeys: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 keys, got %v", all)
	}

	one, err := s.ListSeriesKeys("09380000")
	if err != nil {
		t.Fatalf("ListSeriesKeys(site): %v", err)
	}
	if len(one) != 2 {
		t.Errorf("expected 2 keys for site, got %v", one)
	}
	for _, k := range one {
		if k[:len("site:09380000")] != "site:09380000" {
			t.Errorf("unexpected key for site filter: %s", k)
		}
	}
}

func TestSnapshotCRUD(t *testing.T) {
	s := testStore(t)

	snap := store.Snapshot{ID: "a1b2c3d4", Name: "daily", CommandLine: "flow get 09380000 --period P1D"}
	if err := s.PutSnapshot(snap); err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}

	got, ok, err := s.GetSnapshot("a1b2c3d4")
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if !ok || got.Name != "daily" || got.CommandLine != snap.CommandLine {
		t.Errorf("GetSnapshot: round trip mismatch: %+v", got)
	}

	snaps, err := s.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}

	if err := s.DeleteSnapshot("a1b2c3d4"); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	if _, ok, _ := s.GetSnapshot("a1b2c3d4"); ok {
		t.Error("snapshot should be gone after delete")
	}
}

func TestStatsAndClear(t *testing.T) {
	s := testStore(t)

	if err := s.PutGageMeta(model.GageMeta{SiteCode: "09380000"}); err != nil {
		t.Fatalf("PutGageMeta: %v", err)
	}
	if err := s.PutSeries(store.SeriesKey("09380000", "P7D", "", ""), &model.SeriesData{SiteCode: "09380000"}); err != nil {
		t.Fatalf("PutSeries: %v", err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	counts := make(map[string]int)
	for _, st := range stats {
		counts[st.Name] = st.Count
	}
	if counts["series"] != 1 || counts["gage_meta"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}

	if err := s.ClearBucket("series"); err != nil {
		t.Fatalf("ClearBucket: %v", err)
	}
	keys, _ := s.ListSeriesKeys("")
	if len(keys) != 0 {
		t.Errorf("series bucket should be empty after clear, got %v", keys)
	}
	if _, ok, _ := s.GetGageMeta("09380000"); !ok {
		t.Error("clearing series must not touch gage_meta")
	}

	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if _, ok, _ := s.GetGageMeta("09380000"); ok {
		t.Error("gage_meta should be empty after ClearAll")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riverdata.db")

	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.PutGageMeta(model.GageMeta{SiteCode: "09380000"}); err != nil {
		t.Fatalf("PutGageMeta: %v", err)
	}
	s.Close()

	s2, err := store.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if _, ok, _ := s2.GetGageMeta("09380000"); !ok {
		t.Error("data should survive reopen")
	}
}
