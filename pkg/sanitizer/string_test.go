package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Sunrise Residency", "Sunrise Residency"},
		{"  Sunrise   Residency  ", "Sunrise Residency"},
		{"Sunrise\t\nResidency", "Sunrise Residency"},
	}
	for _, tc := range cases {
		if got := TrimAndNormalize(tc.in); got != tc.want {
			t.Errorf("TrimAndNormalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeAmenity(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"WiFi", "wifi"},
		{"  Hot   Water ", "hot water"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeAmenity(tc.in); got != tc.want {
			t.Errorf("NormalizeAmenity(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"http://CDN.Example.com/p/1.jpg", "https://cdn.example.com/p/1.jpg"},
		{"https://cdn.example.com/p/", "https://cdn.example.com/p"},
		{"cdn.example.com", "https://cdn.example.com"},
		{"  ", ""},
	}
	for _, tc := range cases {
		if got := NormalizeURL(tc.in); got != tc.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeURLsDropsEmpties(t *testing.T) {
	got := NormalizeURLs([]string{"cdn.example.com/a.jpg", "   ", "cdn.example.com/b.jpg"})
	if len(got) != 2 {
		t.Fatalf("expected 2 urls, got %d: %v", len(got), got)
	}
}
