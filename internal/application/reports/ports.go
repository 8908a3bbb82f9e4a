package reports

import (
	"context"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
)

// AuditReportGenerator puerto de renderizado del reporte de cumplimiento.
type AuditReportGenerator interface {
	GenerateAuditReport(ctx context.Context, meta ReportMeta, records []*entity.ExecutionRecord) ([]byte, error)
}

// ReportMeta encabezado del reporte.
type ReportMeta struct {
	Title       string
	StoreID     string
	BrandID     string
	CommandType string
	GeneratedBy string // actor que pidió el export
}
