package inventory

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/facturati-api/internal/domain"
	"github.com/jhoicas/facturati-api/internal/domain/entity"
	"github.com/jhoicas/facturati-api/internal/domain/inventory"
)

// Formatos de exportación del historial.
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

const historySheet = "Historique"

var historyHeader = []string{
	"Date", "Heure", "Type", "Quantité", "Stock précédent", "Nouveau stock", "Motif", "Référence", "Utilisateur",
}

// ExportFile archivo generado listo para descargar.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportHistory exporta el historial de movimientos del producto (más recientes primero).
// format vacío equivale a csv.
func (uc *UseCase) ExportHistory(ctx context.Context, companyID, productID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatXLSX {
		return nil, domain.ErrInvalidInput
	}

	product, err := uc.companyProduct(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	movements, err := uc.movRepo.ListByProduct(ctx, product.ID, nil, nil)
	if err != nil {
		return nil, err
	}
	rows := HistoryRows(product, movements)
	base := fmt.Sprintf("historique_%s_%s", inventory.SafeFileComponent(product.Name), uc.now().Format("2006-01-02"))

	if format == ExportFormatXLSX {
		data, err := WriteHistoryXLSX(rows)
		if err != nil {
			return nil, fmt.Errorf("generar xlsx: %w", err)
		}
		return &ExportFile{
			Filename:    base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	}

	data, err := WriteHistoryCSV(rows)
	if err != nil {
		return nil, fmt.Errorf("generar csv: %w", err)
	}
	return &ExportFile{
		Filename:    base + ".csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        data,
	}, nil
}

// HistoryRows convierte los movimientos en filas de exportación, en el mismo orden.
// Las cantidades se formatean según la unidad del producto; las entradas llevan "+".
func HistoryRows(product *entity.Product, movements []*entity.StockMovement) [][]string {
	rows := make([][]string, 0, len(movements))
	for _, m := range movements {
		at := m.Date
		if m.AdjustmentDateTime != nil {
			at = *m.AdjustmentDateTime
		}
		qty := inventory.FormatQuantity(m.Quantity, product.Unit)
		if m.Quantity.IsPositive() {
			qty = "+" + qty
		}
		user := m.UserName
		if user == "" {
			user = m.UserID
		}
		rows = append(rows, []string{
			at.Format("02/01/2006"),
			at.Format("15:04"),
			inventory.MovementTypeLabel(m.Type),
			qty,
			inventory.FormatQuantity(m.PreviousStock, product.Unit),
			inventory.FormatQuantity(m.NewStock, product.Unit),
			m.Reason,
			m.Reference,
			user,
		})
	}
	return rows
}

// WriteHistoryCSV escribe cabecera y filas en CSV UTF-8 separado por comas.
func WriteHistoryCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(historyHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteHistoryXLSX escribe las mismas filas en una hoja de cálculo.
func WriteHistoryXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, err
	}
	if err := setRow(f, 1, historyHeader); err != nil {
		return nil, err
	}
	for i, r := range rows {
		if err := setRow(f, i+2, r); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, rowNo int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNo)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(historySheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
