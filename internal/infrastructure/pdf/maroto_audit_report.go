// Package pdf genera el reporte PDF del ledger de auditoría para cumplimiento
// y disputas.
//
// Layout de la página A4 apaisada:
//
//	┌──────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + filtros aplicados + generado por/fecha      │
//	│  ──────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Comando | Actor | Rol | Nivel | Monto | Estado│
//	│  ──────────────────────────────────────────────────────────  │
//	│  FOOTER: total de registros + leyenda de integridad (sello)   │
//	└──────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/reports"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
)

var _ reports.AuditReportGenerator = (*MarotoAuditReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoAuditReportGenerator implementa reports.AuditReportGenerator usando Maroto v2.
type MarotoAuditReportGenerator struct {
	printer *message.Printer
}

// NewMarotoAuditReportGenerator construye el generador.
func NewMarotoAuditReportGenerator() *MarotoAuditReportGenerator {
	return &MarotoAuditReportGenerator{printer: message.NewPrinter(language.Spanish)}
}

// GenerateAuditReport genera el PDF y devuelve sus bytes.
func (g *MarotoAuditReportGenerator) GenerateAuditReport(
	_ context.Context,
	meta reports.ReportMeta,
	records []*entity.ExecutionRecord,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(meta.Title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(meta))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range tableRecordRows(records) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.footerRow(len(records)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoAuditReportGenerator) headerRow(meta reports.ReportMeta) core.Row {
	filtros := fmt.Sprintf("Tienda: %s   |   Marca: %s   |   Comando: %s",
		nonEmpty(meta.StoreID, "todas"),
		nonEmpty(meta.BrandID, "todas"),
		nonEmpty(meta.CommandType, "todos"),
	)
	return row.New(16).Add(
		col.New(8).Add(
			text.New(meta.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(filtros, props.Text{Size: 8, Top: 10, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generado por: "+nonEmpty(meta.GeneratedBy, "—"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ejecutado", 2, align.Left),
		h("Comando", 2, align.Left),
		h("Actor", 2, align.Left),
		h("Rol", 1, align.Left),
		h("Nivel", 1, align.Center),
		h("Monto", 1, align.Right),
		h("Estado", 1, align.Center),
		h("Execution ID", 2, align.Left),
	)
}

func tableRecordRows(records []*entity.ExecutionRecord) []core.Row {
	result := make([]core.Row, 0, len(records))
	for _, r := range records {
		monto := "—"
		if r.Amount != nil {
			monto = "$" + r.Amount.StringFixed(2)
		}
		cell := func(value string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(value, props.Text{
				Size: 7, Align: a, Top: 1, Left: 1, Right: 1,
			}))
		}
		result = append(result, row.New(6).Add(
			cell(r.ExecutedAt.Format("02/01/2006 15:04"), 2, align.Left),
			cell(r.CommandType, 2, align.Left),
			cell(r.ActorID, 2, align.Left),
			cell(r.ActorRole, 1, align.Left),
			cell(string(r.Level), 1, align.Center),
			cell(monto, 1, align.Right),
			cell(string(r.Status), 1, align.Center),
			cell(r.ExecutionID, 2, align.Left),
		))
	}
	return result
}

func (g *MarotoAuditReportGenerator) footerRow(total int) core.Row {
	leyenda := "Cada registro lleva un sello SHA3 sobre su forma canónica; " +
		"las reescrituras se detectan en la verificación de integridad."
	return row.New(10).Add(
		col.New(8).Add(
			text.New(leyenda, props.Text{Size: 7, Top: 2, Color: colorGray}),
		),
		col.New(4).Add(
			text.New(g.printer.Sprintf("Total de registros: %d", total), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 2,
			}),
		),
	)
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
