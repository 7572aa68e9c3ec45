// Package loader reads the flat-file inputs of the lab. It is a thin I/O
// layer: data-quality filtering happens here so the engines only ever see
// complete numeric samples.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"price-stats-lab/internal/domain"
)

// Accepted timestamp layouts, tried in order. All times are normalized to UTC.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Samples reads hourly price samples from a CSV file with columns
// security_id, snap_time, bid, mid, ask (any column order). Rows with
// missing or malformed numeric fields are dropped, not failed: they are
// data-quality issues, and the dropped count is reported for logging.
func Samples(path string) (samples []*domain.Sample, dropped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open samples file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	cols, err := headerIndex(r, "security_id", "snap_time", "bid", "mid", "ask")
	if err != nil {
		return nil, 0, fmt.Errorf("samples header: %w", err)
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read samples row: %w", err)
		}

		snapTime, tsErr := parseTime(record[cols["snap_time"]])
		bid, bidErr := parseFloat(record[cols["bid"]])
		mid, midErr := parseFloat(record[cols["mid"]])
		ask, askErr := parseFloat(record[cols["ask"]])
		securityID := strings.TrimSpace(record[cols["security_id"]])

		if securityID == "" || tsErr != nil || bidErr != nil || midErr != nil || askErr != nil {
			dropped++
			continue
		}

		samples = append(samples, &domain.Sample{
			SecurityID: securityID,
			SnapTime:   snapTime,
			Bid:        bid,
			Mid:        mid,
			Ask:        ask,
		})
	}

	return samples, dropped, nil
}

// CcyPairs reads pair conversion info from a CSV file with columns
// ccy_pair, convert_price, conversion_factor. Blank or malformed optional
// fields are kept as nil so the converter can report them as missing info.
func CcyPairs(path string) ([]*domain.CcyPairInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ccy pairs file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	cols, err := headerIndex(r, "ccy_pair", "convert_price", "conversion_factor")
	if err != nil {
		return nil, fmt.Errorf("ccy pairs header: %w", err)
	}

	var pairs []*domain.CcyPairInfo
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ccy pairs row: %w", err)
		}

		info := &domain.CcyPairInfo{Pair: strings.TrimSpace(record[cols["ccy_pair"]])}
		if info.Pair == "" {
			continue
		}
		if b, err := strconv.ParseBool(strings.TrimSpace(record[cols["convert_price"]])); err == nil {
			info.ConvertPrice = &b
		}
		if v, err := parseFloat(record[cols["conversion_factor"]]); err == nil {
			info.ConversionFactor = &v
		}
		pairs = append(pairs, info)
	}

	return pairs, nil
}

// SpotRates reads spot mid rates from a CSV file with columns
// ccy_pair, timestamp, spot_mid_rate.
func SpotRates(path string) ([]*domain.SpotRate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spot rates file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	cols, err := headerIndex(r, "ccy_pair", "timestamp", "spot_mid_rate")
	if err != nil {
		return nil, fmt.Errorf("spot rates header: %w", err)
	}

	var spots []*domain.SpotRate
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read spot rates row: %w", err)
		}

		ts, err := parseTime(record[cols["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("spot rate timestamp: %w", err)
		}
		rate, err := parseFloat(record[cols["spot_mid_rate"]])
		if err != nil {
			return nil, fmt.Errorf("spot rate value: %w", err)
		}

		spots = append(spots, &domain.SpotRate{
			Pair:        strings.TrimSpace(record[cols["ccy_pair"]]),
			Timestamp:   ts,
			SpotMidRate: rate,
		})
	}

	return spots, nil
}

// RatePrices reads raw pair prices from a CSV file with columns
// ccy_pair, timestamp, price.
func RatePrices(path string) ([]*domain.RatePrice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open prices file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	cols, err := headerIndex(r, "ccy_pair", "timestamp", "price")
	if err != nil {
		return nil, fmt.Errorf("prices header: %w", err)
	}

	var prices []*domain.RatePrice
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read prices row: %w", err)
		}

		ts, err := parseTime(record[cols["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("price timestamp: %w", err)
		}
		price, err := parseFloat(record[cols["price"]])
		if err != nil {
			return nil, fmt.Errorf("price value: %w", err)
		}

		prices = append(prices, &domain.RatePrice{
			Pair:      strings.TrimSpace(record[cols["ccy_pair"]]),
			Timestamp: ts,
			Price:     price,
		})
	}

	return prices, nil
}

// headerIndex reads the header row and maps the required column names to
// their positions.
func headerIndex(r *csv.Reader, required ...string) (map[string]int, error) {
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return cols, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(s, 64)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
