package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/SergeiKhy/influencer-roi/internal/models"
)

const csvDateLayout = "2006-01-02"

// OrdersCSV сериализует заказы в CSV: строка заголовка плюс строки данных.
// Это единственный экспортный формат движка.
func OrdersCSV(records []models.TrackingRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"source", "campaign", "brand", "influencer_id", "user_id", "product", "date", "orders", "revenue"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Source,
			rec.Campaign,
			rec.Brand,
			rec.InfluencerID,
			rec.UserID,
			rec.Product,
			rec.Date.Format(csvDateLayout),
			strconv.FormatInt(rec.Orders, 10),
			formatAmount(rec.Revenue),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

// PayoutsCSV сериализует строки трекера выплат в CSV
func PayoutsCSV(rows []models.PayoutRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"name", "platform", "basis", "rate", "orders", "total_payout"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Name,
			row.Platform,
			string(row.Basis),
			formatAmount(row.Rate),
			strconv.FormatInt(row.Orders, 10),
			formatAmount(row.TotalPayout),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

// formatAmount денежные значения с двумя знаками после запятой
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
