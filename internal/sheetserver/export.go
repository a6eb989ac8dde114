package sheetserver

import (
	"net/http"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const (
	sheetCadastros = "cadastros"
	sheetApostas   = "apostas"
)

var (
	cadastroHeader = []interface{}{"createdAt", "telegramId", "username", "nome", "telefone", "cpf", "email", "referredBy"}
	apostaHeader   = []interface{}{"createdAt", "weekKey", "telegramId", "nome", "numeros"}
)

func formatInt64(n int64) string {
	return strconv.FormatInt(n, 10)
}

// handleExport streams all rows as an xlsx workbook with one sheet per
// record type, same column order as the header rows above. Key-protected
// via the ?key= query parameter.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.apiKey == "" {
		s.writeError(w, http.StatusInternalServerError, "SHEETS_API_KEY not configured")
		return
	}
	if r.URL.Query().Get("key") != s.apiKey {
		s.writeError(w, http.StatusUnauthorized, "invalid key")
		return
	}

	cadastros, err := s.store.ListCadastros(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to read cadastros")
		return
	}
	apostas, err := s.store.ListApostas(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to read apostas")
		return
	}

	f, err := s.buildWorkbook(cadastros, apostas)
	if err != nil {
		s.logger.Error("failed to build workbook", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bolao.xlsx"`)

	if _, err := f.WriteTo(w); err != nil {
		s.logger.Error("failed to stream workbook", "error", err)
	}
}

func (s *Server) buildWorkbook(cadastros []*CadastroRow, apostas []*ApostaRow) (*excelize.File, error) {
	f := excelize.NewFile()

	if _, err := f.NewSheet(sheetCadastros); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetApostas); err != nil {
		return nil, err
	}
	// Drop the default sheet excelize creates
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheetCadastros, "A1", &cadastroHeader); err != nil {
		return nil, err
	}
	for i, row := range cadastros {
		cell := "A" + strconv.Itoa(i+2)
		values := []interface{}{row.CreatedAt, row.TelegramID, row.Username, row.Nome, row.Telefone, row.CPF, row.Email, row.ReferredBy}
		if err := f.SetSheetRow(sheetCadastros, cell, &values); err != nil {
			return nil, err
		}
	}

	if err := f.SetSheetRow(sheetApostas, "A1", &apostaHeader); err != nil {
		return nil, err
	}
	for i, row := range apostas {
		cell := "A" + strconv.Itoa(i+2)
		values := []interface{}{row.CreatedAt, row.WeekKey, row.TelegramID, row.Nome, row.Numeros}
		if err := f.SetSheetRow(sheetApostas, cell, &values); err != nil {
			return nil, err
		}
	}

	return f, nil
}
