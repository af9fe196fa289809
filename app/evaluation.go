package app

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"utitriage/domain/assessment"
	"utitriage/domain/patient"
)

// LabeledRecord is a record whose true class is known
type LabeledRecord struct {
	Record   patient.Record
	Positive bool
}

// Evaluation summarizes how the loaded models score a labeled set
type Evaluation struct {
	Records         int                               `json:"records"`
	TruePositives   int                               `json:"true_positives"`
	FalsePositives  int                               `json:"false_positives"`
	TrueNegatives   int                               `json:"true_negatives"`
	FalseNegatives  int                               `json:"false_negatives"`
	Accuracy        float64                           `json:"accuracy"`
	Sensitivity     float64                           `json:"sensitivity"`
	Specificity     float64                           `json:"specificity"`
	AUC             float64                           `json:"auc"`
	Recommendations map[assessment.Recommendation]int `json:"recommendations"`
}

// Evaluate scores every case with at most workers concurrent predictions. The
// first scoring failure cancels the rest.
func (p *Predictor) Evaluate(ctx context.Context, cases []LabeledRecord, workers int) (*Evaluation, error) {
	if len(cases) == 0 {
		return nil, fmt.Errorf("no records to evaluate")
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]*assessment.Result, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range cases {
		g.Go(func() error {
			res, err := p.Predict(gctx, cases[i].Record)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ev := &Evaluation{Records: len(cases), Recommendations: map[assessment.Recommendation]int{}}
	for i, res := range results {
		ev.Recommendations[res.Recommendation]++
		switch {
		case res.Positive() && cases[i].Positive:
			ev.TruePositives++
		case res.Positive():
			ev.FalsePositives++
		case cases[i].Positive:
			ev.FalseNegatives++
		default:
			ev.TrueNegatives++
		}
	}
	ev.Accuracy = float64(ev.TruePositives+ev.TrueNegatives) / float64(ev.Records)
	ev.Sensitivity = ratio(ev.TruePositives, ev.TruePositives+ev.FalseNegatives)
	ev.Specificity = ratio(ev.TrueNegatives, ev.TrueNegatives+ev.FalsePositives)
	ev.AUC = auc(results, cases)

	p.logger.Info("evaluated %d records: accuracy=%.4f auc=%.4f", ev.Records, ev.Accuracy, ev.AUC)
	return ev, nil
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// auc is the area under the ROC curve of the ensemble probability. It is 0
// when only one class is present.
func auc(results []*assessment.Result, cases []LabeledRecord) float64 {
	idx := make([]int, len(results))
	var pos int
	for i := range idx {
		idx[i] = i
		if cases[i].Positive {
			pos++
		}
	}
	if pos == 0 || pos == len(cases) {
		return 0
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return results[idx[a]].Probability < results[idx[b]].Probability
	})

	y := make([]float64, len(idx))
	classes := make([]bool, len(idx))
	for j, i := range idx {
		y[j] = results[i].Probability
		classes[j] = cases[i].Positive
	}
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}
