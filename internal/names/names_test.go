package names

import "testing"

func TestSplit(t *testing.T) {
	n := New(0)

	tests := []struct {
		name         string
		raw          string
		wantLast     string
		wantInitials string
	}{
		{"simple", "MARTIN J", "MARTIN", "J"},
		{"lower case and accents", "Lefèvre é", "LEFEVRE", "E"},
		{"compound last name", "VAN DER BERG J", "VAN DER BERG", "J"},
		{"hyphenated initials", "MARTIN J-P", "MARTIN", "JP"},
		{"short hyphen token moved", "MARTIN J- P", "MARTIN", "JP"},
		{"long hyphenated last name kept", "LE-BIHAN Y", "LE-BIHAN", "Y"},
		{"dotted initials", "DUPONT J.-L.", "DUPONT", "JL"},
		{"extra spaces", "  DURAND    A  ", "DURAND", "A"},
		{"single token", "MARTIN", "", "MARTIN"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Split(tt.raw)
			if got.Last != tt.wantLast {
				t.Errorf("Split(%q).Last = %q, want %q", tt.raw, got.Last, tt.wantLast)
			}
			if got.Initials != tt.wantInitials {
				t.Errorf("Split(%q).Initials = %q, want %q", tt.raw, got.Initials, tt.wantInitials)
			}
		})
	}
}

func TestSplit_Threshold(t *testing.T) {
	// "AB-C" has 4 runes: kept as last name at the default threshold,
	// moved to the first name when the threshold is raised.
	if got := New(4).Split("AB-C J"); got.Last != "AB-C" || got.Initials != "J" {
		t.Errorf("threshold 4: got %+v", got)
	}
	if got := New(5).Split("AB-C J"); got.Last != "" || got.Initials != "ABCJ" {
		t.Errorf("threshold 5: got %+v", got)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	n := New(DefaultMinHyphenTokenLength)
	inputs := []string{"MARTIN J", "Ñúñez-García M-A", "O'NEIL P", "TRAN T H"}
	for _, raw := range inputs {
		first := n.Split(raw)
		for i := 0; i < 5; i++ {
			if got := n.Split(raw); got != first {
				t.Fatalf("Split(%q) not deterministic: %+v vs %+v", raw, got, first)
			}
		}
	}
}

func TestName_Malformed(t *testing.T) {
	if !New(0).Split("MARTIN").IsMalformed() {
		t.Error("single-token name should be malformed")
	}
	if New(0).Split("MARTIN J").IsMalformed() {
		t.Error("two-token name should not be malformed")
	}
}

func TestKey(t *testing.T) {
	if got := (Name{Last: "MARTIN", Initials: "JP"}).Key(); got != "MARTIN JP" {
		t.Errorf("Key() = %q", got)
	}
}
