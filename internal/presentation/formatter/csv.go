package formatter

import (
	"encoding/csv"
	"io"
	"strconv"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(w io.Writer, stats TraceStats) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"kind", "count"}); err != nil {
		return err
	}
	for _, kc := range stats.Counts {
		if err := cw.Write([]string{kc.Kind, strconv.Itoa(kc.Count)}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"total", strconv.Itoa(stats.Events)}); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}
