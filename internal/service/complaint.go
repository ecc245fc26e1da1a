package service

import (
	"context"
	"strings"

	"marketplace/backend/internal/domain"
	"marketplace/backend/internal/events"
	"marketplace/backend/internal/store"
)

const maxEvidenceCount = 3

type ComplaintService struct {
	repo   store.Repository
	notify *notifier
}

// Submit files a pending complaint. With no type given, a complaint about an
// order is an order dispute and anything else a product violation.
func (s *ComplaintService) Submit(ctx context.Context, complainant domain.User, draft domain.ComplaintDraft) (*domain.Complaint, error) {
	reason := strings.TrimSpace(draft.Reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}
	if draft.EvidenceCount < 0 || draft.EvidenceCount > maxEvidenceCount {
		return nil, ErrEvidenceCount
	}
	kind, err := complaintType(draft)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.AddComplaint(ctx, domain.Complaint{
		ComplainantID: complainant.ID,
		ProductID:     draft.ProductID,
		OrderID:       draft.OrderID,
		Type:          kind,
		EvidenceCount: draft.EvidenceCount,
		Reason:        reason,
	})
	if err != nil {
		return nil, err
	}
	s.notify.publish(ctx, events.SubjectComplaintSubmitted, events.ComplaintSubmitted{
		ComplaintID:   created.ID,
		ComplainantID: created.ComplainantID,
		Type:          string(created.Type),
		ProductID:     created.ProductID,
		OrderID:       created.OrderID,
	})
	return created, nil
}

func complaintType(draft domain.ComplaintDraft) (domain.ComplaintType, error) {
	raw := strings.TrimSpace(draft.Type)
	if raw == "" {
		if draft.OrderID != nil {
			return domain.ComplaintOrderDispute, nil
		}
		return domain.ComplaintProductViolation, nil
	}
	kind, err := domain.ParseComplaintType(raw)
	if err != nil {
		return "", ErrInvalidComplaintType
	}
	return kind, nil
}
