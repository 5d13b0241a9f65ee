// Package export renders the ledger as a spreadsheet-friendly CSV file.
package export

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"strafenkasse-service/internal/domain"
	"strafenkasse-service/internal/timeutil"
)

// utf8BOM makes spreadsheet programs detect the encoding; without it German
// umlauts come out garbled in Excel.
const utf8BOM = "\xef\xbb\xbf"

var header = []string{"Spieler", "Grund", "Betrag", "Bezahlt", "Datum", "Bezahlt am"}

// WriteCSV writes all records as semicolon-separated CSV with a UTF-8 BOM.
func WriteCSV(w io.Writer, records []domain.PenaltyRecord) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(row(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(rec domain.PenaltyRecord) []string {
	return []string{
		rec.Player,
		rec.Reason,
		amount(rec.Amount),
		paidLabel(rec.Status),
		timeutil.FormatDate(rec.CreatedAt),
		paidAt(rec.PaidAt),
	}
}

// amount renders euros with a comma decimal separator, matching the German
// locale the sheet is read in.
func amount(c domain.Cents) string {
	return strings.ReplaceAll(c.String(), ".", ",")
}

func paidLabel(status domain.PenaltyStatus) string {
	if status == domain.StatusPaid {
		return "Ja"
	}
	return "Nein"
}

func paidAt(t *time.Time) string {
	if t == nil {
		return ""
	}
	return timeutil.FormatDate(*t)
}
