package fields

import "testing"

func TestCleanerClean(t *testing.T) {
	cleaner := NewCleaner()

	tests := []struct {
		name  string
		field string
		want  *string
	}{
		{
			name:  "plain value",
			field: "London Bridge",
			want:  stringPtr("London Bridge"),
		},
		{
			name:  "empty becomes nil",
			field: "",
			want:  nil,
		},
		{
			name:  "none literal becomes nil",
			field: "none",
			want:  nil,
		},
		{
			name:  "null literal becomes nil",
			field: "NULL",
			want:  nil,
		},
		{
			name:  "corrupted euro repaired",
			field: "Café â‚¬ Terminal",
			want:  stringPtr("Café € Terminal"),
		},
		{
			name:  "corrupted pound repaired",
			field: "Â£ Kiosk",
			want:  stringPtr("£ Kiosk"),
		},
		{
			name:  "stray marker stripped",
			field: "StationÂ North",
			want:  stringPtr("Station North"),
		},
		{
			name:  "low quote stripped",
			field: "Plaza‚ West",
			want:  stringPtr("Plaza West"),
		},
		{
			name:  "whitespace runs collapse",
			field: "  ATM   Location\t7  ",
			want:  stringPtr("ATM Location 7"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleaner.Clean(tt.field)

			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Clean(%q) = %v, want %v", tt.field, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.field, *got, *tt.want)
			}
		})
	}
}

func TestCleanerExtraReplacements(t *testing.T) {
	cleaner := NewCleaner(Replacement{Corrupted: "â€™", Intended: "'"})

	// Extras run after the defaults; the default table still applies.
	withDefault := cleaner.Clean("Â£ Counter")
	if withDefault == nil || *withDefault != "£ Counter" {
		t.Errorf("default replacements lost when extras are supplied: got %v", withDefault)
	}

	apostrophe := cleaner.Clean("Traderâ€™s Corner")
	if apostrophe == nil || *apostrophe != "Trader's Corner" {
		t.Errorf("extra replacement not applied: got %v", apostrophe)
	}
}

func TestCleanerReplacementOrder(t *testing.T) {
	// The Â£ repair must run before the stray Â strip, or the pound
	// symbol would be destroyed.
	replacements := DefaultReplacements()
	poundIndex, strayIndex := -1, -1
	for i, r := range replacements {
		switch r.Corrupted {
		case "Â£":
			poundIndex = i
		case "Â":
			strayIndex = i
		}
	}
	if poundIndex == -1 || strayIndex == -1 {
		t.Fatal("default replacement table missing pound or stray marker entries")
	}
	if poundIndex > strayIndex {
		t.Errorf("Â£ repair at %d must precede stray Â strip at %d", poundIndex, strayIndex)
	}
}

func stringPtr(s string) *string {
	return &s
}
