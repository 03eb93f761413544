package codes

import "testing"

func TestDecodeStatus(t *testing.T) {
	cases := []struct {
		code string
		want Status
	}{
		{"1", StatusAvailable},
		{"2", StatusCharging},
		{"3", StatusOutOfService},
		{"4", StatusCommFail},
		{"0", StatusCommMissing},
		{"5", StatusReserved},
		{"9", StatusUnknown},
		{"42", StatusUnknown},
		{"", StatusUnknown},
	}
	for _, tc := range cases {
		if got := DecodeStatus(tc.code); got != tc.want {
			t.Errorf("DecodeStatus(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestDecodeType(t *testing.T) {
	cases := []struct {
		chargeTp, cpTp string
		want           string
	}{
		{"2", "7", "Fast / DC Combo"},
		{"1", "2", "Slow / C-Type (5 pin)"},
		{"2", "99", "Fast / 99"}, // unknown connector passes through
		{"", "7", "DC Combo"},
		{"2", "", "Fast"},
		{"", "", ""},
	}
	for _, tc := range cases {
		if got := DecodeType(tc.chargeTp, tc.cpTp); got != tc.want {
			t.Errorf("DecodeType(%q, %q) = %q, want %q", tc.chargeTp, tc.cpTp, got, tc.want)
		}
	}
}

func TestTypeCodeRoundTrip(t *testing.T) {
	code := TypeCode("2", "7")
	if code != "2:7" {
		t.Fatalf("TypeCode = %q, want %q", code, "2:7")
	}
	if got := DecodeTypeCode(code); got != "Fast / DC Combo" {
		t.Errorf("DecodeTypeCode(%q) = %q", code, got)
	}
	if got := DecodeTypeCode("7"); got != "DC Combo" {
		t.Errorf("DecodeTypeCode bare = %q", got)
	}
}
