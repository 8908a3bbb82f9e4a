// Package reports genera el export PDF del ledger de auditoría para
// cumplimiento y resolución de disputas.
package reports

import (
	"context"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/dto"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/execution"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
)

// AuditReportUseCase arma el reporte a partir de la consulta del ledger.
type AuditReportUseCase struct {
	query     *execution.AuditQueryUseCase
	generator AuditReportGenerator
}

// NewAuditReportUseCase construye el caso de uso.
func NewAuditReportUseCase(query *execution.AuditQueryUseCase, generator AuditReportGenerator) *AuditReportUseCase {
	return &AuditReportUseCase{query: query, generator: generator}
}

// Export genera el PDF con los registros que matchean el filtro.
func (uc *AuditReportUseCase) Export(ctx context.Context, q dto.AuditLogQuery, actor entity.Actor) ([]byte, error) {
	recs, err := uc.query.Records(ctx, q)
	if err != nil {
		return nil, err
	}
	meta := ReportMeta{
		Title:       "Registro de ejecuciones sensibles",
		StoreID:     q.StoreID,
		BrandID:     q.BrandID,
		CommandType: q.CommandType,
		GeneratedBy: actor.UserID,
	}
	return uc.generator.GenerateAuditReport(ctx, meta, recs)
}
