package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/repository"
)

const (
	exportDateLayout = "2/1/2006"
	exportTimeLayout = "15:04:05"
	exportFileLayout = "2006-01-02"
)

var csvHeader = []string{"Fecha", "Hora", "Tipo de Evento", "Día", "Comentarios"}

// ----------------------------------------------------------------------------
// Notifications
// ----------------------------------------------------------------------------

// ListNotifications returns the admin inbox, newest first
func (s *Service) ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]*models.AdminNotification, error) {
	items, err := s.Notifications.List(ctx, repository.NotificationFilters{
		UnreadOnly: unreadOnly,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return items, nil
}

// MarkNotificationRead marks one inbox entry as read
func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	if err := s.Notifications.MarkRead(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to mark notification %s as read: %w", id, err)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Summaries and exports
// ----------------------------------------------------------------------------

// ListSummaries returns the daily summaries of a baby, newest first
func (s *Service) ListSummaries(ctx context.Context, babyID string) ([]*models.DailySummary, error) {
	summaries, err := s.Summaries.GetByBabyID(ctx, babyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get summaries of baby %s: %w", babyID, err)
	}
	return summaries, nil
}

// CSVExport is a rendered CSV file
type CSVExport struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// ExportEventsCSV renders every event of a baby as CSV, newest first
func (s *Service) ExportEventsCSV(ctx context.Context, babyID string) (*CSVExport, error) {
	baby, err := s.GetBaby(ctx, babyID)
	if err != nil {
		return nil, err
	}
	events, err := s.EventsByBaby(ctx, babyID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range events {
		local := e.Time.In(s.loc)
		record := []string{
			local.Format(exportDateLayout),
			local.Format(exportTimeLayout),
			string(e.Type),
			strconv.Itoa(e.DayNumber),
			e.Comments,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return &CSVExport{
		Filename: fmt.Sprintf("eventos_%s_%s.csv", baby.Name, s.now().In(s.loc).Format(exportFileLayout)),
		Content:  buf.String(),
	}, nil
}

// ExportEventRow is one event in the data export
type ExportEventRow struct {
	Fecha       string           `json:"fecha"`
	Hora        string           `json:"hora"`
	TipoEvento  models.EventType `json:"tipo_evento"`
	Comentarios string           `json:"comentarios"`
	DiaNumero   int              `json:"dia_numero"`
}

// ExportSummaryRow is one daily summary in the data export
type ExportSummaryRow struct {
	Dia                   int    `json:"dia"`
	Fecha                 string `json:"fecha"`
	Siestas               int    `json:"siestas"`
	DuracionSiestas       int    `json:"duracion_siestas"`
	SuenoNocturnoMasLargo int    `json:"sueno_nocturno_mas_largo"`
	Despertares           int    `json:"despertares"`
	DespertarFinal        string `json:"despertar_final"`
	Resumen               string `json:"resumen"`
}

// DataExport is the full record of a baby for spreadsheet tools
type DataExport struct {
	Baby      *models.Baby       `json:"baby"`
	Events    []ExportEventRow   `json:"events"`
	Summaries []ExportSummaryRow `json:"summaries"`
}

// ExportData collects a baby with its events and summaries in export form
func (s *Service) ExportData(ctx context.Context, babyID string) (*DataExport, error) {
	baby, err := s.GetBaby(ctx, babyID)
	if err != nil {
		return nil, err
	}
	events, err := s.EventsByBaby(ctx, babyID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.ListSummaries(ctx, babyID)
	if err != nil {
		return nil, err
	}

	out := &DataExport{
		Baby:      baby,
		Events:    make([]ExportEventRow, 0, len(events)),
		Summaries: make([]ExportSummaryRow, 0, len(summaries)),
	}
	for _, e := range events {
		local := e.Time.In(s.loc)
		out.Events = append(out.Events, ExportEventRow{
			Fecha:       local.Format(exportDateLayout),
			Hora:        local.Format(exportTimeLayout),
			TipoEvento:  e.Type,
			Comentarios: e.Comments,
			DiaNumero:   e.DayNumber,
		})
	}
	for _, sum := range summaries {
		out.Summaries = append(out.Summaries, ExportSummaryRow{
			Dia:                   sum.DayNumber,
			Fecha:                 sum.SummaryDate.In(s.loc).Format(exportDateLayout),
			Siestas:               sum.TotalNaps,
			DuracionSiestas:       sum.TotalNapDuration,
			SuenoNocturnoMasLargo: sum.LongestNightSleep,
			Despertares:           sum.NightWakeups,
			DespertarFinal:        sum.FinalWakeupTime,
			Resumen:               sum.SimpleSummary,
		})
	}
	return out, nil
}
