package analysis

import (
	"testing"

	"m5-forecast/internal/model"
)

func TestClassifyHistory(t *testing.T) {
	tests := []struct {
		name    string
		history []float64
		want    DemandClass
	}{
		{"inactive", []float64{0, 0, 0}, DemandInactive},
		{"smooth", []float64{0, 0, 5, 6, 5, 4, 5, 6}, DemandSmooth},
		{"erratic", []float64{1, 20, 1, 30, 2, 25}, DemandErratic},
		{"intermittent", []float64{3, 0, 0, 3, 0, 0, 4, 0, 0, 3}, DemandIntermittent},
		{"lumpy", []float64{1, 0, 0, 40, 0, 0, 2, 0, 0, 35}, DemandLumpy},
	}
	for _, tt := range tests {
		if got := ClassifyHistory(tt.history); got != tt.want {
			t.Errorf("%s: ClassifyHistory = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestComputeProfile(t *testing.T) {
	s := model.SalesSeries{
		ID: "X_CA_1_validation", ItemID: "X", StoreID: "CA_1",
		Sales: []float64{0, 0, 2, 0, 4, 0, 6},
	}
	p := ComputeProfile(s)
	if p.FirstSaleDay != 3 || p.Days != 7 || p.NonZero != 3 {
		t.Errorf("profile = %+v", p)
	}
	if p.MinSales != 0 || p.MaxSales != 6 || !approx(p.MeanSales, 12.0/5) {
		t.Errorf("min/max/mean = %v/%v/%v", p.MinSales, p.MaxSales, p.MeanSales)
	}
	if !approx(p.ZeroShare, 2.0/5) {
		t.Errorf("ZeroShare = %v, want 0.4", p.ZeroShare)
	}
	if !approx(p.ADI, 5.0/3) {
		t.Errorf("ADI = %v, want 5/3", p.ADI)
	}
	// sizes 2, 4, 6: mean 4, population variance 8/3.
	if !approx(p.CV2, (8.0/3)/16) {
		t.Errorf("CV2 = %v", p.CV2)
	}
	if p.Class != DemandIntermittent {
		t.Errorf("Class = %s, want intermittent", p.Class)
	}

	empty := ComputeProfile(model.SalesSeries{Sales: []float64{0, 0}})
	if empty.Class != DemandInactive || empty.ZeroShare != 1 {
		t.Errorf("inactive profile = %+v", empty)
	}
}

func TestPercentileSorted(t *testing.T) {
	vals := []float64{0, 10, 20, 30, 40}
	tests := []struct {
		q, want float64
	}{
		{0, 0}, {1, 40}, {0.5, 20}, {0.05, 2}, {0.95, 38},
	}
	for _, tt := range tests {
		if got := percentileSorted(vals, tt.q); !approx(got, tt.want) {
			t.Errorf("percentileSorted(%v) = %v, want %v", tt.q, got, tt.want)
		}
	}
	if percentileSorted(nil, 0.5) != 0 {
		t.Error("percentile of empty slice should be 0")
	}
}

func TestCountByClass(t *testing.T) {
	counts := CountByClass([]SeriesProfile{{Class: DemandSmooth}, {Class: DemandLumpy}, {Class: DemandSmooth}})
	if counts[DemandSmooth] != 2 || counts[DemandLumpy] != 1 || counts[DemandErratic] != 0 {
		t.Errorf("counts = %v", counts)
	}
}
