package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"marketplace/backend/internal/domain"
	"marketplace/backend/internal/events"
	"marketplace/backend/internal/store"
)

// AdminService is a thin façade for the back office. Unknown ids are
// silently ignored and reasons are never stored.
type AdminService struct {
	repo     store.Repository
	products *ProductService
	notify   *notifier
	log      *logrus.Entry
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *AdminService) BanUser(ctx context.Context, id int, reason string) error {
	if err := s.repo.UpdateUserStatus(ctx, id, domain.UserStatusBanned); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	s.log.WithFields(logrus.Fields{"user_id": id, "reason": reason}).Info("user banned")
	s.notify.publish(ctx, events.SubjectUserBanned, events.UserBanned{UserID: id, Reason: reason})
	return nil
}

func (s *AdminService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *AdminService) TakedownProduct(ctx context.Context, id int, reason string) error {
	reason = strings.TrimSpace(reason)
	if err := s.products.setStatus(ctx, id, domain.ProductStatusTakedown, reason); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"product_id": id, "reason": reason}).Info("product taken down")
	return nil
}

func (s *AdminService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListOrders(ctx)
}

func (s *AdminService) ListComplaints(ctx context.Context) ([]domain.Complaint, error) {
	return s.repo.ListComplaints(ctx)
}

// HandleComplaint sets any status, including back to pending, and stores
// result as given.
func (s *AdminService) HandleComplaint(ctx context.Context, id int, statusLabel string, result string) error {
	status, err := domain.ParseComplaintStatus(strings.TrimSpace(statusLabel))
	if err != nil {
		return ErrInvalidComplaintStatus
	}
	if err := s.repo.UpdateComplaintStatus(ctx, id, status, result); err != nil {
		return err
	}
	s.notify.publish(ctx, events.SubjectComplaintHandled, events.ComplaintHandled{
		ComplaintID: id,
		Status:      string(status),
		Result:      result,
	})
	return nil
}
