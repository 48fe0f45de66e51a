// Package sheet reads and writes the HR reward workbooks.
package sheet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// RewardRow is one data row of the upload workbook, untrimmed of meaning:
// values are carried as strings and validated by the caller against the
// employee directory and the points rules.
type RewardRow struct {
	Rewardee     string
	Category     string
	Description  string
	RewardPoints string
	AddedBy      string
}

var uploadHeader = []string{"rewardee", "rewardCategory", "description", "rewardPoints", "addedBy"}

// ParseRewards reads the first sheet of an upload workbook. The first row is
// the header and is skipped; fully empty rows are ignored.
func ParseRewards(r io.Reader) ([]RewardRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	var out []RewardRow
	for i, cells := range rows {
		if i == 0 {
			continue
		}
		row := RewardRow{
			Rewardee:     cell(cells, 0),
			Category:     cell(cells, 1),
			Description:  cell(cells, 2),
			RewardPoints: cell(cells, 3),
			AddedBy:      cell(cells, 4),
		}
		if row == (RewardRow{}) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

// SummaryRow is one issued coupon in the confirmation workbook sent to HR.
type SummaryRow struct {
	Rewardee     string
	Category     string
	Description  string
	RewardPoints int64
	CouponCode   string
	SecretCode   string
}

// BuildSummary renders the issued coupons as an XLSX attachment.
func BuildSummary(rows []SummaryRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)
	header := []any{"rewardee", "rewardCategory", "description", "rewardPoints", "couponCode", "secretCode"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{row.Rewardee, row.Category, row.Description, row.RewardPoints, row.CouponCode, row.SecretCode}
		if err := f.SetSheetRow(sheetName, cellRef, &values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
