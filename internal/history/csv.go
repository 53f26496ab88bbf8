package history

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"rigtycoon/internal/game"
)

var csvHeader = []string{
	"month", "date", "company_id", "company", "oil_price", "steel_price",
	"demand_north_sea", "demand_gom", "demand_brazil",
	"cash_m", "debt_m", "rigs", "rigs_active", "rigs_warm", "rigs_cold", "rigs_contracted", "rigs_in_transit",
}

func WriteCSV(w io.Writer, recs []game.HistoryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			strconv.Itoa(r.Month), r.Date, r.CompanyID, r.Company,
			ftoa(r.OilPrice), ftoa(r.SteelPrice),
		}
		for _, region := range game.Regions {
			row = append(row, ftoa(r.Demand[region]))
		}
		row = append(row,
			ftoa(r.CashM), ftoa(r.DebtM),
			strconv.Itoa(r.Rigs), strconv.Itoa(r.RigsActive), strconv.Itoa(r.RigsWarm), strconv.Itoa(r.RigsCold),
			strconv.Itoa(r.RigsContracted), strconv.Itoa(r.RigsInTransit),
		)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteCSVFile(path string, recs []game.HistoryRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, recs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
