// Package reporting renders result records to flat-file formats.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"price-stats-lab/internal/domain"
)

// timeLayout is the timestamp format used in CSV output.
const timeLayout = "2006-01-02 15:04:05"

// RenderStdevCSV renders rolling stdev records as CSV string.
func RenderStdevCSV(records []*domain.StdevRecord) string {
	var sb strings.Builder

	sb.WriteString("security_id,snap_time,stdev_bid,stdev_mid,stdev_ask\n")

	for _, r := range records {
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.6f,%.6f\n",
			r.SecurityID,
			r.SnapTime.UTC().Format(timeLayout),
			r.StdevBid,
			r.StdevMid,
			r.StdevAsk,
		))
	}

	return sb.String()
}

// RenderRatesCSV renders converted prices as CSV string. A row without a
// converted value has an empty new_price column; the reason column always
// explains the outcome.
func RenderRatesCSV(rows []*domain.ConvertedPrice) string {
	var sb strings.Builder

	sb.WriteString("ccy_pair,timestamp,price,new_price,reason\n")

	for _, r := range rows {
		newPrice := ""
		if r.NewPrice != nil {
			newPrice = fmt.Sprintf("%.6f", *r.NewPrice)
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%s,%s\n",
			r.Pair,
			r.Timestamp.UTC().Format(timeLayout),
			r.Price,
			newPrice,
			r.Reason,
		))
	}

	return sb.String()
}

// WriteFile writes rendered content to path, creating parent directories.
func WriteFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
