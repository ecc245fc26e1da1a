package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"marketplace/backend/internal/events"
	"marketplace/backend/internal/store"
)

// Service bundles the marketplace services over one repository.
type Service struct {
	Auth       *AuthService
	Products   *ProductService
	Orders     *OrderService
	Complaints *ComplaintService
	Admin      *AdminService
}

func New(repo store.Repository, publisher events.Publisher, logger *logrus.Entry) *Service {
	n := newNotifier(publisher, logger)
	products := &ProductService{repo: repo, notify: n}
	return &Service{
		Auth:       &AuthService{repo: repo, notify: n},
		Products:   products,
		Orders:     &OrderService{repo: repo, notify: n},
		Complaints: &ComplaintService{repo: repo, notify: n},
		Admin:      &AdminService{repo: repo, products: products, notify: n, log: n.log},
	}
}

type notifier struct {
	publisher events.Publisher
	log       *logrus.Entry
}

func newNotifier(publisher events.Publisher, logger *logrus.Entry) *notifier {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &notifier{
		publisher: publisher,
		log:       logger.WithField("component", "service"),
	}
}

// publish runs after the store write succeeded and never fails the caller.
func (n *notifier) publish(ctx context.Context, subject string, payload any) {
	if err := n.publisher.Publish(ctx, subject, payload); err != nil {
		n.log.WithError(err).WithField("subject", subject).Warn("failed to publish event")
	}
}
