package quiz

import "testing"

func TestParseCertificateLevel(t *testing.T) {
	tests := []struct {
		in   string
		want CertificateLevel
		err  bool
	}{
		{"", "", false},
		{"a", LevelA, false},
		{"B", LevelB, false},
		{"C Certificate", LevelC, false},
		{"b certificate (sd/sw)", LevelB, false},
		{"D", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCertificateLevel(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("%q: err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%q: got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := map[string]Difficulty{
		"beginner":   Beginner,
		"Easy":       Beginner,
		"medium":     Intermediate,
		" ADVANCED ": Advanced,
		"hard":       Advanced,
		"":           "",
	}
	for in, want := range tests {
		got, err := ParseDifficulty(in)
		if err != nil {
			t.Errorf("%q: %v", in, err)
		}
		if got != want {
			t.Errorf("%q: got %q, want %q", in, got, want)
		}
	}
	if _, err := ParseDifficulty("extreme"); err == nil {
		t.Error("expected an error for an unknown difficulty")
	}
}

func TestTopicsReturnsCopy(t *testing.T) {
	a := Topics(LevelA)
	if len(a) == 0 {
		t.Fatal("no topics for level A")
	}
	a[0] = "changed"
	if Topics(LevelA)[0] == "changed" {
		t.Error("Topics exposes its backing slice")
	}
	if len(Catalogue()) != len(Levels) {
		t.Errorf("catalogue has %d levels", len(Catalogue()))
	}
}

func TestCertificateLevelShort(t *testing.T) {
	for _, l := range Levels {
		if l.Short() == "" {
			t.Errorf("%q has no short form", l)
		}
	}
}
