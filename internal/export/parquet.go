// Package export writes the daily training load series to files.
package export

import (
	"fmt"
	"io"
	"os"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"trainingload/internal/pmc"
)

const dateLayout = "2006-01-02"

// dayRow is one parquet row per model day
type dayRow struct {
	Date   string  `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Metric string  `parquet:"name=metric, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Stress float64 `parquet:"name=stress, type=DOUBLE"`
	LTS    float64 `parquet:"name=lts, type=DOUBLE"`
	STS    float64 `parquet:"name=sts, type=DOUBLE"`
	SB     float64 `parquet:"name=sb, type=DOUBLE"`
	RR     float64 `parquet:"name=rr, type=DOUBLE"`
}

// MarshalParquet encodes the days as a SNAPPY compressed parquet file.
func MarshalParquet(metric string, days []pmc.Day) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(dayRow), 4)
	if err != nil {
		return nil, fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, d := range days {
		row := dayRow{
			Date:   d.Date.Format(dateLayout),
			Metric: metric,
			Stress: d.Stress,
			LTS:    d.LongTermLoad,
			STS:    d.ShortTermLoad,
			SB:     d.Balance,
			RR:     d.RampRate,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, fmt.Errorf("writing row %s: %w", row.Date, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finishing parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

// WriteParquet writes the days as parquet to w.
func WriteParquet(w io.Writer, metric string, days []pmc.Day) error {
	data, err := MarshalParquet(metric, days)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteParquetFile writes the days as parquet to path.
func WriteParquetFile(path, metric string, days []pmc.Day) error {
	data, err := MarshalParquet(metric, days)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
