package models

import "testing"

func TestValidRecipeStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"active", string(RecipeStatusActive), true},
		{"inactive", string(RecipeStatusInactive), true},
		{"unknown", "retired", false},
		{"empty", "", false},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidRecipeStatus(tt.value); got != tt.want {
				t.Fatalf("ValidRecipeStatus(%q) = %t, want %t", tt.value, got, tt.want)
			}
		})
	}
}

func TestNormalizeRecipeStatus(t *testing.T) {
	t.Parallel()

	if got := NormalizeRecipeStatus("  Inactive "); got != RecipeStatusInactive {
		t.Fatalf("NormalizeRecipeStatus returned %q, want %q", got, RecipeStatusInactive)
	}

	if got := NormalizeRecipeStatus("bogus"); got != RecipeStatusActive {
		t.Fatalf("NormalizeRecipeStatus returned %q, want %q", got, RecipeStatusActive)
	}
}
