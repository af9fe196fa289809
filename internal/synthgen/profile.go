package synthgen

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/montanaflynn/stats"

	"utitriage/domain/patient"
)

// NumericSummary describes one continuous column
type NumericSummary struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// BinarySummary is the share of ones in a 0/1 column, overall and per class
type BinarySummary struct {
	Name         string  `json:"name"`
	Prevalence   float64 `json:"prevalence"`
	PositiveRate float64 `json:"positive_rate"`
	NegativeRate float64 `json:"negative_rate"`
}

// DatasetProfile summarizes a generated or loaded dataset
type DatasetProfile struct {
	Rows          int              `json:"rows"`
	Positives     int              `json:"positives"`
	PositiveShare float64          `json:"positive_share"`
	Numeric       []NumericSummary `json:"numeric"`
	Binary        []BinarySummary  `json:"binary"`
}

// Profile computes per-column statistics
func Profile(ds *Dataset) (*DatasetProfile, error) {
	if len(ds.Rows) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	labels := ds.Column(LabelColumn)
	if labels == nil {
		return nil, fmt.Errorf("dataset has no %s column", LabelColumn)
	}

	p := &DatasetProfile{Rows: len(ds.Rows)}
	for _, l := range labels {
		if l == 1 {
			p.Positives++
		}
	}
	p.PositiveShare = float64(p.Positives) / float64(p.Rows)

	for _, name := range patient.NumericFeatures {
		col := ds.Column(name)
		if col == nil {
			return nil, fmt.Errorf("dataset has no %s column", name)
		}
		s, err := summarize(name, col)
		if err != nil {
			return nil, err
		}
		p.Numeric = append(p.Numeric, s)
	}

	binary := append(append(append([]string{}, patient.BinaryFeatures[:]...), patient.KeyGender), patient.ComorbidityFeatures[:]...)
	for _, name := range binary {
		col := ds.Column(name)
		if col == nil {
			return nil, fmt.Errorf("dataset has no %s column", name)
		}
		p.Binary = append(p.Binary, prevalence(name, col, labels))
	}
	return p, nil
}

func summarize(name string, data []float64) (NumericSummary, error) {
	s := NumericSummary{Name: name}
	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, fmt.Errorf("%s mean: %w", name, err)
	}
	if s.StdDev, err = stats.StandardDeviation(data); err != nil {
		return s, fmt.Errorf("%s standard deviation: %w", name, err)
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, fmt.Errorf("%s min: %w", name, err)
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, fmt.Errorf("%s median: %w", name, err)
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, fmt.Errorf("%s max: %w", name, err)
	}
	return s, nil
}

func prevalence(name string, col, labels []float64) BinarySummary {
	var ones, posOnes, pos, neg, negOnes float64
	for i, v := range col {
		if labels[i] == 1 {
			pos++
			posOnes += v
		} else {
			neg++
			negOnes += v
		}
		ones += v
	}
	b := BinarySummary{Name: name, Prevalence: ones / float64(len(col))}
	if pos > 0 {
		b.PositiveRate = posOnes / pos
	}
	if neg > 0 {
		b.NegativeRate = negOnes / neg
	}
	return b
}

// NumericFor returns the summary for a column, if profiled
func (p *DatasetProfile) NumericFor(name string) (NumericSummary, bool) {
	for _, s := range p.Numeric {
		if s.Name == name {
			return s, true
		}
	}
	return NumericSummary{}, false
}

// BinaryFor returns the prevalence for a column, if profiled
func (p *DatasetProfile) BinaryFor(name string) (BinarySummary, bool) {
	for _, s := range p.Binary {
		if s.Name == name {
			return s, true
		}
	}
	return BinarySummary{}, false
}

// WriteTable prints the profile as aligned text
func (p *DatasetProfile) WriteTable(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Rows: %d\tUTI: %d (%.1f%%)\n\n", p.Rows, p.Positives, 100*p.PositiveShare)
	fmt.Fprintln(w, "COLUMN\tMEAN\tSD\tMIN\tMEDIAN\tMAX")
	for _, s := range p.Numeric {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n", s.Name, s.Mean, s.StdDev, s.Min, s.Median, s.Max)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "COLUMN\tOVERALL\tUTI\tNO UTI")
	for _, b := range p.Binary {
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\n", b.Name, b.Prevalence, b.PositiveRate, b.NegativeRate)
	}
	return w.Flush()
}
