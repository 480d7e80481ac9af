package services

import (
	"testing"

	"market-scout/models"
)

func TestCategorizeProduct(t *testing.T) {
	tests := []struct {
		title       string
		description string
		want        models.Category
	}{
		{"Intel Core i7", "", models.CategoryCPU},
		{"מעבד ryzen 5600", "", models.CategoryCPU},
		{"RTX 3070 video card", "", models.CategoryGPU},
		{"כרטיס מסך nvidia", "", models.CategoryGPU},
		{"לוח אם B550", "", models.CategoryMotherboard},
		{"16GB DDR4 memory", "", models.CategoryRAM},
		{"1TB NVMe SSD", "", models.CategoryStorage},
		{"650W power supply", "", models.CategoryPSU},
		{"AIO liquid radiator", "", models.CategoryCooling},
		{"mid tower chassis", "", models.CategoryCase},
		{"מחשב גיימינג מורכב", "", models.CategoryCompleteBuild},
		{"", "", models.CategoryOther},
		{"office chair", "", models.CategoryOther},
		{"desk lamp", "sold with warranty", models.CategoryOther},
	}

	for _, tt := range tests {
		got := CategorizeProduct(tt.title, tt.description)
		if got != tt.want {
			t.Errorf("CategorizeProduct(%q, %q) = %q; want %q",
				tt.title, tt.description, got, tt.want)
		}
	}
}

// The rules are ordered and overlapping on purpose: "amd" belongs to both the
// cpu and gpu keyword lists, so an ambiguous AMD listing resolves to cpu.
func TestCategorizeProductOrderTieBreak(t *testing.T) {
	if got := CategorizeProduct("amd", ""); got != models.CategoryCPU {
		t.Errorf("CategorizeProduct(\"amd\") = %q; want %q", got, models.CategoryCPU)
	}

	// "rtx" only appears under gpu, but "amd" in the same text still pulls
	// the listing to cpu because cpu is tested first.
	if got := CategorizeProduct("amd rtx bundle", ""); got != models.CategoryCPU {
		t.Errorf("CategorizeProduct(\"amd rtx bundle\") = %q; want %q", got, models.CategoryCPU)
	}
}

func TestCategorizeProductUsesDescription(t *testing.T) {
	got := CategorizeProduct("great deal", "barely used rtx 3080")
	if got != models.CategoryGPU {
		t.Errorf("CategorizeProduct = %q; want %q", got, models.CategoryGPU)
	}
}

func TestNormalizeCondition(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Condition
	}{
		{"brand new in box", models.ConditionNew},
		{"חדש באריזה", models.ConditionNew},
		// "like new" contains "new", and the new rule is tested first.
		{"like new, barely used", models.ConditionNew},
		{"excellent condition", models.ConditionLikeNew},
		{"good condition", models.ConditionGood},
		{"סביר", models.ConditionFair},
		{"גרוע מאוד", models.ConditionPoor},
		{"broken, for parts", models.ConditionForParts},
		{"", models.ConditionGood},
		{"no condition info", models.ConditionGood},
	}

	for _, tt := range tests {
		got := NormalizeCondition(tt.raw)
		if got != tt.want {
			t.Errorf("NormalizeCondition(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}
