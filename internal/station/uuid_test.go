package station_test

import (
	"errors"
	"testing"

	"aircheck/internal/station"
)

func TestExtractUUID(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  string
		ok    bool
	}{
		{"dashed", "4f0c9273-2dff-4f53-a857-8a186ee4d4d9", "4f0c9273-2dff-4f53-a857-8a186ee4d4d9", true},
		{"embedded prefix", "#show-4f0c9273-2dff-4f53-a857-8a186ee4d4d9", "4f0c9273-2dff-4f53-a857-8a186ee4d4d9", true},
		{"bare hex", "urn:4f0c92732dff4f53a8578a186ee4d4d9", "4f0c9273-2dff-4f53-a857-8a186ee4d4d9", true},
		{"uppercase", "4F0C9273-2DFF-4F53-A857-8A186EE4D4D9", "4f0c9273-2dff-4f53-a857-8a186ee4d4d9", true},
		{"empty", "", "", false},
		{"no uuid", "music/shows/jazz-theater", "", false},
		{"short hex run", "abcdef0123456789", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := station.ExtractUUID(tc.value)
			if tc.ok {
				if err != nil {
					t.Fatalf("ExtractUUID(%q) failed: %v", tc.value, err)
				}
				if got.String() != tc.want {
					t.Fatalf("ExtractUUID(%q) = %s, want %s", tc.value, got, tc.want)
				}
				return
			}
			if err == nil {
				t.Fatalf("ExtractUUID(%q) succeeded with %s, want error", tc.value, got)
			}
		})
	}
}

func TestNormalizeUUIDRejectsNonCanonical(t *testing.T) {
	if _, err := station.NormalizeUUID("not-a-uuid"); !errors.Is(err, station.ErrSerialization) {
		t.Fatalf("expected serialization error, got %v", err)
	}
	parsed, err := station.NormalizeUUID(" 4f0c9273-2dff-4f53-a857-8a186ee4d4d9 ")
	if err != nil {
		t.Fatalf("NormalizeUUID failed: %v", err)
	}
	if parsed.String() != "4f0c9273-2dff-4f53-a857-8a186ee4d4d9" {
		t.Fatalf("unexpected normalized value %s", parsed)
	}
}

func TestWrapClassification(t *testing.T) {
	err := station.Wrap(station.ErrSitemapRead, "discovery", "fetch sitemap", "shows.xml", errors.New("timeout"))
	if !errors.Is(err, station.ErrSitemapRead) {
		t.Fatalf("expected sitemap read marker, got %v", err)
	}
	if station.IsFatal(err) {
		t.Fatalf("sitemap read errors must not be fatal: %v", err)
	}
	fatal := station.Wrap(station.ErrSelectionMismatch, "updater", "resolve selection", "2 unmatched", nil)
	if !station.IsFatal(fatal) {
		t.Fatalf("selection mismatch must be fatal: %v", fatal)
	}
}
