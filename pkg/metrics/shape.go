package metrics

import (
	"fmt"
	"math"

	"github.com/Sumatoshi-tech/ygg/pkg/alg/stats"
)

// Shape summarizes a tree after a benchmark run.
type Shape struct {
	// Size is the number of linked records.
	Size int
	// Height is the number of nodes on the longest root-to-leaf path.
	Height int
	// Depths[d] is the number of nodes d edges below the root.
	Depths []int
	// Operations is the number of operations replayed.
	Operations int
	// Rotations, Swaps and Updates mirror bst.Stats.
	Rotations uint64
	Swaps     uint64
	Updates   uint64
}

// Metric names.
const (
	NameAverageDepth   = "average_depth"
	NameHeightRatio    = "height_ratio"
	NameRotationsPerOp = "rotations_per_op"
	NameBalanceRisk    = "balance_risk"
)

// Height ratio thresholds for the balance risk levels. A red-black tree stays
// below 2 and a weight-balanced tree below about 1.7.
const (
	ratioCritical = 4.0
	ratioHigh     = 2.5
	ratioMedium   = 2.0
)

// AverageDepthMetric is the mean number of edges between a node and the root.
type AverageDepthMetric struct {
	MetricMeta
}

// NewAverageDepthMetric creates the metric.
func NewAverageDepthMetric() *AverageDepthMetric {
	return &AverageDepthMetric{MetricMeta{
		MetricName:        NameAverageDepth,
		MetricDisplayName: "Avg depth",
		MetricDescription: "Mean node depth in edges. Equals the average number of comparisons " +
			"of a successful lookup minus one. Zero for an empty tree.",
		MetricType: "shape",
	}}
}

// Compute returns the mean depth.
func (m *AverageDepthMetric) Compute(s Shape) float64 {
	return stats.Histogram(s.Depths).Mean()
}

// HeightRatioMetric compares the height with the optimum ceil(log2(n+1)).
type HeightRatioMetric struct {
	MetricMeta
}

// NewHeightRatioMetric creates the metric.
func NewHeightRatioMetric() *HeightRatioMetric {
	return &HeightRatioMetric{MetricMeta{
		MetricName:        NameHeightRatio,
		MetricDisplayName: "Height ratio",
		MetricDescription: "Height divided by the height of a perfectly balanced tree of the same size. " +
			"1 is optimal. Zero for an empty tree.",
		MetricType: "shape",
	}}
}

// Compute returns the ratio.
func (m *HeightRatioMetric) Compute(s Shape) float64 {
	return heightRatio(s)
}

func heightRatio(s Shape) float64 {
	if s.Size == 0 {
		return 0
	}

	optimal := math.Ceil(math.Log2(float64(s.Size) + 1))

	return float64(s.Height) / optimal
}

// RotationsPerOpMetric is the amortized rebalancing cost.
type RotationsPerOpMetric struct {
	MetricMeta
}

// NewRotationsPerOpMetric creates the metric.
func NewRotationsPerOpMetric() *RotationsPerOpMetric {
	return &RotationsPerOpMetric{MetricMeta{
		MetricName:        NameRotationsPerOp,
		MetricDisplayName: "Rot/op",
		MetricDescription: "Single rotations divided by the number of replayed operations.",
		MetricType:        "cost",
	}}
}

// Compute returns rotations per operation.
func (m *RotationsPerOpMetric) Compute(s Shape) float64 {
	if s.Operations == 0 {
		return 0
	}

	return float64(s.Rotations) / float64(s.Operations)
}

// BalanceRiskMetric classifies the height ratio.
type BalanceRiskMetric struct {
	MetricMeta
}

// NewBalanceRiskMetric creates the metric.
func NewBalanceRiskMetric() *BalanceRiskMetric {
	return &BalanceRiskMetric{MetricMeta{
		MetricName:        NameBalanceRisk,
		MetricDisplayName: "Balance",
		MetricDescription: "Risk level of the height ratio. CRITICAL means the tree degenerated " +
			"towards a list and lookups cost far more than logarithmic time.",
		MetricType: "risk",
	}}
}

// Compute returns the classification.
func (m *BalanceRiskMetric) Compute(s Shape) RiskResult {
	ratio := heightRatio(s)

	res := RiskResult{Value: ratio, Level: RiskLow}

	switch {
	case ratio > ratioCritical:
		res.Level, res.Threshold = RiskCritical, ratioCritical
	case ratio > ratioHigh:
		res.Level, res.Threshold = RiskHigh, ratioHigh
	case ratio > ratioMedium:
		res.Level, res.Threshold = RiskMedium, ratioMedium
	default:
		return res
	}

	res.Message = fmt.Sprintf("height %d for %d nodes", s.Height, s.Size)

	return res
}

// ShapeRegistry returns a registry holding every Shape metric.
func ShapeRegistry() *Registry {
	r := NewRegistry()

	Register(r, NewAverageDepthMetric())
	Register(r, NewHeightRatioMetric())
	Register(r, NewRotationsPerOpMetric())
	Register(r, NewBalanceRiskMetric())

	return r
}
