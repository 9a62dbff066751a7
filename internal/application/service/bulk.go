package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
)

// BulkFailure reports one id that could not be processed.
type BulkFailure struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error"`
}

// BulkResult is the aggregate outcome of a best-effort batch: per-record
// transactions, no cross-record atomicity, partial success reported rather
// than hidden.
type BulkResult struct {
	Succeeded []uuid.UUID   `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

func (r *BulkResult) record(id uuid.UUID, err error) {
	if err != nil {
		r.Failed = append(r.Failed, BulkFailure{ID: id, Error: err.Error()})
		return
	}
	r.Succeeded = append(r.Succeeded, id)
}

// BulkProcessApproval applies one decision to each id independently; one
// id's failure never aborts the others.
func (s *applicationServiceImpl) BulkProcessApproval(ctx context.Context, ids []uuid.UUID, actorID string, decision entity.Decision, notes string) *BulkResult {
	result := &BulkResult{Succeeded: []uuid.UUID{}, Failed: []BulkFailure{}}
	for _, id := range ids {
		_, err := s.ProcessApproval(ctx, id, actorID, decision, notes)
		result.record(id, err)
	}
	s.logger.Info("Bulk approval finished",
		"total", len(ids), "succeeded", len(result.Succeeded), "failed", len(result.Failed))
	return result
}

// BulkProcessDisbursement disburses each id independently.
func (s *applicationServiceImpl) BulkProcessDisbursement(ctx context.Context, ids []uuid.UUID, actorID string, txDate, txTime, notes string) *BulkResult {
	result := &BulkResult{Succeeded: []uuid.UUID{}, Failed: []BulkFailure{}}
	for _, id := range ids {
		_, err := s.ProcessDisbursement(ctx, id, actorID, txDate, txTime, notes)
		result.record(id, err)
	}
	s.logger.Info("Bulk disbursement finished",
		"total", len(ids), "succeeded", len(result.Succeeded), "failed", len(result.Failed))
	return result
}

// BulkProcessAuthorization authorizes each id independently.
func (s *applicationServiceImpl) BulkProcessAuthorization(ctx context.Context, ids []uuid.UUID, actorID string, authDate, notes string) *BulkResult {
	result := &BulkResult{Succeeded: []uuid.UUID{}, Failed: []BulkFailure{}}
	for _, id := range ids {
		_, err := s.ProcessAuthorization(ctx, id, actorID, authDate, notes)
		result.record(id, err)
	}
	s.logger.Info("Bulk authorization finished",
		"total", len(ids), "succeeded", len(result.Succeeded), "failed", len(result.Failed))
	return result
}
