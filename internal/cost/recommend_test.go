package cost

import (
	"errors"
	"testing"
)

func TestRecommendTies(t *testing.T) {
	breakdowns := []Breakdown{
		{Provider: ProviderS3, Total: 10.00},
		{Provider: ProviderGCS, Total: 10.00},
		{Provider: ProviderAzure, Total: 12.50},
	}

	rec, err := Recommend(breakdowns)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(rec.Providers) != 2 {
		t.Fatalf("Providers = %v, want 2 entries", rec.Providers)
	}
	if rec.Providers[0] != ProviderS3 || rec.Providers[1] != ProviderGCS {
		t.Errorf("Providers = %v, want [S3 GCS]", rec.Providers)
	}
	if rec.Total != 10.00 {
		t.Errorf("Total = %v, want 10.00", rec.Total)
	}
	if !rec.Tied() {
		t.Error("Tied() = false, want true")
	}
}

func TestRecommendSingleWinner(t *testing.T) {
	rec, err := Recommend([]Breakdown{
		{Provider: ProviderS3, Total: 103.552},
		{Provider: ProviderGCS, Total: 93.48},
		{Provider: ProviderAzure, Total: 93.5},
	})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(rec.Providers) != 1 || rec.Providers[0] != ProviderGCS {
		t.Errorf("Providers = %v, want [GCS]", rec.Providers)
	}
	if rec.Tied() {
		t.Error("Tied() = true, want false")
	}
}

func TestRecommendSubCentDifferencesTie(t *testing.T) {
	rec, err := Recommend([]Breakdown{
		{Provider: ProviderS3, Total: 10.001},
		{Provider: ProviderGCS, Total: 10.004},
		{Provider: ProviderAzure, Total: 10.02},
	})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(rec.Providers) != 2 {
		t.Errorf("Providers = %v, want S3 and GCS tied at 10.00", rec.Providers)
	}
}

func TestRecommendEmpty(t *testing.T) {
	rec, err := Recommend(nil)
	if !errors.Is(err, ErrEmptyProviderSet) {
		t.Fatalf("Recommend(nil) error = %v, want ErrEmptyProviderSet", err)
	}
	if len(rec.Providers) != 0 {
		t.Errorf("Providers = %v, want none", rec.Providers)
	}
}
