package analysis

import (
	"math"
	"sort"

	"m5-forecast/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DemandClass is the Syntetos-Boylan demand pattern. Keep these values stable; they appear in output.
type DemandClass string

const (
	DemandSmooth       DemandClass = "smooth"
	DemandErratic      DemandClass = "erratic"
	DemandIntermittent DemandClass = "intermittent"
	DemandLumpy        DemandClass = "lumpy"
	DemandInactive     DemandClass = "inactive"
)

// Classification cut-offs.
const (
	ADICutoff = 1.32
	CV2Cutoff = 0.49
)

// SeriesProfile is a series-level summary used for model selection and reporting.
// Statistics cover the active period, from the first sale to the last observed day.
type SeriesProfile struct {
	ID      string `json:"id"`
	Key     string `json:"key"`
	StoreID string `json:"store_id"`
	ItemID  string `json:"item_id"`

	Days         int `json:"days"`
	FirstSaleDay int `json:"first_sale_day"`
	NonZero      int `json:"non_zero"`

	MinSales  float64 `json:"min_sales"`
	MaxSales  float64 `json:"max_sales"`
	MeanSales float64 `json:"mean_sales"`
	P05Sales  float64 `json:"p05_sales"`
	P95Sales  float64 `json:"p95_sales"`
	ZeroShare float64 `json:"zero_share"`

	// ADI is the average number of days between non-zero sales.
	ADI float64 `json:"adi"`
	// CV2 is the squared coefficient of variation of non-zero sale sizes.
	CV2 float64 `json:"cv2"`

	Class DemandClass `json:"class"`
}

func ComputeProfile(s model.SalesSeries) SeriesProfile {
	p := SeriesProfile{
		ID:      s.ID,
		Key:     s.Key(),
		StoreID: s.StoreID,
		ItemID:  s.ItemID,
		Days:    len(s.Sales),
	}
	p.FirstSaleDay = s.FirstSaleDay()
	if p.FirstSaleDay == 0 {
		p.Class = DemandInactive
		p.ZeroShare = 1
		return p
	}
	active := s.Sales[p.FirstSaleDay-1:]

	zeros := 0
	for _, v := range active {
		if v == 0 {
			zeros++
		}
	}
	vals := append([]float64(nil), active...)
	sort.Float64s(vals)
	p.MinSales = floats.Min(vals)
	p.MaxSales = floats.Max(vals)
	p.MeanSales = stat.Mean(vals, nil)
	p.P05Sales = percentileSorted(vals, 0.05)
	p.P95Sales = percentileSorted(vals, 0.95)
	p.ZeroShare = float64(zeros) / float64(len(active))
	p.NonZero = len(active) - zeros
	p.ADI, p.CV2 = intermittence(active)
	p.Class = classify(p.ADI, p.CV2)
	return p
}

// ClassifyHistory classifies a raw history (leading zeros are ignored).
func ClassifyHistory(history []float64) DemandClass {
	start := -1
	for i, v := range history {
		if v != 0 {
			start = i
			break
		}
	}
	if start < 0 {
		return DemandInactive
	}
	return classify(intermittence(history[start:]))
}

func intermittence(active []float64) (adi, cv2 float64) {
	var sizes []float64
	for _, v := range active {
		if v != 0 {
			sizes = append(sizes, v)
		}
	}
	if len(sizes) == 0 {
		return math.Inf(1), 0
	}
	adi = float64(len(active)) / float64(len(sizes))
	mean, variance := stat.PopMeanVariance(sizes, nil)
	if mean > 0 {
		cv2 = variance / (mean * mean)
	}
	return adi, cv2
}

func classify(adi, cv2 float64) DemandClass {
	switch {
	case math.IsInf(adi, 1):
		return DemandInactive
	case adi < ADICutoff && cv2 < CV2Cutoff:
		return DemandSmooth
	case adi < ADICutoff:
		return DemandErratic
	case cv2 < CV2Cutoff:
		return DemandIntermittent
	default:
		return DemandLumpy
	}
}

// CountByClass tallies profiles per demand class.
func CountByClass(profiles []SeriesProfile) map[DemandClass]int {
	out := map[DemandClass]int{}
	for _, p := range profiles {
		out[p.Class]++
	}
	return out
}

// percentileSorted interpolates between order statistics at q*(n-1), numpy's
// default rule. stat.Quantile's LinInterp places them at q*n.
func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
