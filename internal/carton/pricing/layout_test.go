package pricing

import "testing"

// TestSuggestWidthsExample verifies the worked case of a 37cm flat width on a 100cm web
func TestSuggestWidthsExample(t *testing.T) {
	flat := FlatSize{LengthMM: 1080, WidthMM: 370}
	suggestions := SuggestWidths(flat, 1000)

	var found *Suggestion
	for i := range suggestions {
		if suggestions[i].IndustrialWidthCM == 100 {
			found = &suggestions[i]
			break
		}
	}
	if found == nil {
		t.Fatal("expected a suggestion for the 100cm width")
	}

	if found.CartonPerRow != 2 {
		t.Fatalf("expected 2 cartons per row, got %d", found.CartonPerRow)
	}
	if !almostEqual(found.WasteCM, 22) {
		t.Fatalf("expected 22cm waste, got %v", found.WasteCM)
	}
	if !almostEqual(found.WastePercent, 22) {
		t.Fatalf("expected 22%% waste, got %v", found.WastePercent)
	}
	// ceil(1000/2)=500 rows × 108cm
	if !almostEqual(found.TotalLengthCM, 54000) {
		t.Fatalf("expected total length 54000cm, got %v", found.TotalLengthCM)
	}
}

// TestSuggestWidthsSkipsInfeasible verifies widths that cannot fit a single unit are skipped
func TestSuggestWidthsSkipsInfeasible(t *testing.T) {
	// 摊平宽 90cm：80/90/95 门幅放不下一只
	flat := FlatSize{LengthMM: 1000, WidthMM: 900}
	suggestions := SuggestWidths(flat, 500)

	for _, s := range suggestions {
		if s.IndustrialWidthCM < 95 {
			t.Fatalf("width %v should have been skipped", s.IndustrialWidthCM)
		}
		if s.CartonPerRow <= 0 {
			t.Fatalf("suggestion with non-positive cartons per row: %+v", s)
		}
	}
	if len(suggestions) == 0 {
		t.Fatal("expected at least one feasible width")
	}
}

func TestSuggestWidthsOrdered(t *testing.T) {
	flat := FlatSize{LengthMM: 1080, WidthMM: 370}
	suggestions := SuggestWidths(flat, 1000)
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].IndustrialWidthCM <= suggestions[i-1].IndustrialWidthCM {
			t.Fatalf("suggestions not ordered by width: %v then %v",
				suggestions[i-1].IndustrialWidthCM, suggestions[i].IndustrialWidthCM)
		}
	}
}

func TestSuggestWidthsEmptyInput(t *testing.T) {
	if got := SuggestWidths(FlatSize{}, 1000); got != nil {
		t.Fatalf("expected nil for zero flat size, got %v", got)
	}
	if got := SuggestWidths(FlatSize{LengthMM: 1000, WidthMM: 300}, 0); got != nil {
		t.Fatalf("expected nil for zero quantity, got %v", got)
	}
}

func TestBestWidth(t *testing.T) {
	flat := FlatSize{LengthMM: 1080, WidthMM: 370}
	suggestions := SuggestWidths(flat, 1000)

	best, ok := BestWidth(suggestions)
	if !ok {
		t.Fatal("expected a best width")
	}

	// 推荐的门幅废边率必须不高于其它任何门幅
	var bestWaste float64
	for _, s := range suggestions {
		if s.IndustrialWidthCM == best {
			bestWaste = s.WastePercent
		}
	}
	for _, s := range suggestions {
		if s.WastePercent < bestWaste {
			t.Fatalf("width %v has lower waste (%v%%) than recommended %v (%v%%)",
				s.IndustrialWidthCM, s.WastePercent, best, bestWaste)
		}
	}

	if _, ok := BestWidth(nil); ok {
		t.Fatal("expected no best width for empty suggestions")
	}
}
