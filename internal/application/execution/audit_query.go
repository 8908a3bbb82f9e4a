package execution

import (
	"context"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/dto"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/audit"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/repository"
)

// AuditQueryUseCase lectura del ledger. Solo lee: las escrituras pasan
// únicamente por Execute y Rollback.
type AuditQueryUseCase struct {
	records repository.ExecutionRecordRepository
}

// NewAuditQueryUseCase construye el caso de uso de consulta.
func NewAuditQueryUseCase(records repository.ExecutionRecordRepository) *AuditQueryUseCase {
	return &AuditQueryUseCase{records: records}
}

// Query lista registros filtrados, ordenados por created_at desc.
func (uc *AuditQueryUseCase) Query(ctx context.Context, q dto.AuditLogQuery) ([]dto.ExecutionRecordDTO, error) {
	q.DefaultPage()
	recs, err := uc.records.Query(ctx, repository.AuditFilter{
		StoreID:     q.StoreID,
		BrandID:     q.BrandID,
		CommandType: q.CommandType,
		ActorID:     q.ActorID,
		Status:      q.Status,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExecutionRecordDTO, 0, len(recs))
	for _, r := range recs {
		out = append(out, toRecordDTO(r))
	}
	return out, nil
}

// Records devuelve las entidades crudas (para el reporte PDF).
func (uc *AuditQueryUseCase) Records(ctx context.Context, q dto.AuditLogQuery) ([]*entity.ExecutionRecord, error) {
	q.DefaultPage()
	return uc.records.Query(ctx, repository.AuditFilter{
		StoreID:     q.StoreID,
		BrandID:     q.BrandID,
		CommandType: q.CommandType,
		ActorID:     q.ActorID,
		Status:      q.Status,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
}

// VerifyIntegrity recalcula el sello de cada registro del rango consultado y
// reporta los execution_id cuyo sello no verifica (evidencia de reescritura).
func (uc *AuditQueryUseCase) VerifyIntegrity(ctx context.Context, q dto.AuditLogQuery) (*dto.AuditIntegrityResponse, error) {
	recs, err := uc.Records(ctx, q)
	if err != nil {
		return nil, err
	}
	resp := &dto.AuditIntegrityResponse{Checked: len(recs), Tampered: []string{}}
	for _, r := range recs {
		ok, err := audit.Verify(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			resp.Tampered = append(resp.Tampered, r.ExecutionID)
		}
	}
	return resp, nil
}

func toRecordDTO(r *entity.ExecutionRecord) dto.ExecutionRecordDTO {
	var amount *string
	if r.Amount != nil {
		s := r.Amount.String()
		amount = &s
	}
	return dto.ExecutionRecordDTO{
		ExecutionID:     r.ExecutionID,
		CommandType:     r.CommandType,
		ActorID:         r.ActorID,
		ActorRole:       r.ActorRole,
		StoreID:         r.StoreID,
		BrandID:         r.BrandID,
		Status:          string(r.Status),
		Level:           string(r.Level),
		Amount:          amount,
		PayloadSnapshot: r.PayloadSnapshot,
		Reason:          r.Reason,
		ExecutedAt:      r.ExecutedAt,
		CreatedAt:       r.CreatedAt,
		RollbackID:      r.RollbackID,
		Seal:            r.Seal,
	}
}
