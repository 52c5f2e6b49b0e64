package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	ts "github.com/sugarme/gotch/tensor"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// writeClassStats writes per-class pixel counts and coverage fractions of a
// [H W] class mask as CSV.
func writeClassStats(mask *ts.Tensor, path string) error {
	classes := mask.Int64Values()
	counts := make([]int, Classes)
	for _, c := range classes {
		if c >= 0 && c < Classes {
			counts[c]++
		}
	}

	total := float64(len(classes))
	records := [][]string{{"class", "pixels", "fraction"}}
	for c, n := range counts {
		records = append(records, []string{
			fmt.Sprint(c),
			fmt.Sprint(n),
			fmt.Sprintf("%.6f", float64(n)/total),
		})
	}

	df := dataframe.LoadRecords(records)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return df.WriteCSV(f)
}

// runStats plots a class-coverage histogram from a previously written
// stats.csv.
func runStats() {
	fname := filepath.Join(OutDir, "stats.csv")
	f, err := os.Open(fname)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, dataframe.HasHeader(true))
	fracs := df.Col("fraction").Float()

	p, err := plot.New()
	if err != nil {
		panic(err)
	}

	v := make(plotter.Values, len(fracs))
	for i := 0; i < len(fracs); i++ {
		v[i] = fracs[i]
	}

	h, err := plotter.NewHist(v, 10)
	if err != nil {
		panic(err)
	}
	p.Title.Text = "Class Coverage Histogram"
	p.Add(h)

	p.Save(4*vg.Inch, 4*vg.Inch, filepath.Join(OutDir, "class-histo.png"))
}
