package memory

import (
	"context"
	"fmt"
	"sync"

	"marketplace/backend/internal/domain"
	"marketplace/backend/internal/store"
)

// Store keeps the four collections in insertion order. Values are copied in
// and out so callers never share memory with the canonical records.
type Store struct {
	mu         sync.RWMutex
	users      []domain.User
	products   []domain.Product
	orders     []domain.Order
	complaints []domain.Complaint
	counters   map[string]int
}

// New returns an empty store holding only the bootstrap administrator.
func New() *Store {
	s := FromSnapshot(store.EmptySnapshot())
	s.EnsureAdmin()
	return s
}

// FromSnapshot restores a store from a snapshot without adding the
// bootstrap administrator; callers decide when to do that.
func FromSnapshot(snap store.Snapshot) *Store {
	snap = snap.Clone()
	snap.NormalizeCounters()
	return &Store{
		users:      snap.Users,
		products:   snap.Products,
		orders:     snap.Orders,
		complaints: snap.Complaints,
		counters:   snap.Counters,
	}
}

func (s *Store) Snapshot() store.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return store.Snapshot{
		Users:      s.users,
		Products:   s.products,
		Orders:     s.orders,
		Complaints: s.complaints,
		Counters:   s.counters,
	}.Clone()
}

// EnsureAdmin creates the bootstrap administrator when no ADMIN user exists
// and reports whether it did.
func (s *Store) EnsureAdmin() (*domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store.HasAdmin(s.users) {
		return nil, false
	}
	admin := domain.User{
		ID:       s.nextID(store.CollectionUsers),
		Username: store.AdminUsername,
		Phone:    store.AdminPhone,
		Role:     domain.RoleAdmin,
		Status:   domain.UserStatusNormal,
	}
	s.users = append(s.users, admin)
	return &admin, true
}

// nextID hands out the current counter and advances it. The caller must
// hold the write lock.
func (s *Store) nextID(collection string) int {
	current := s.counters[collection]
	if current < 1 {
		current = 1
	}
	s.counters[collection] = current + 1
	return current
}

func (s *Store) AddUser(_ context.Context, username string, phone string, role domain.UserRole) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := domain.User{
		ID:       s.nextID(store.CollectionUsers),
		Username: username,
		Phone:    phone,
		Role:     role,
		Status:   domain.UserStatusNormal,
	}
	s.users = append(s.users, user)
	created := user
	return &created, nil
}

func (s *Store) FindUserByPhone(_ context.Context, phone string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Phone == phone {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) FindUserByID(_ context.Context, id int) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateUserStatus(_ context.Context, id int, status domain.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Status = status
			break
		}
	}
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append(make([]domain.User, 0, len(s.users)), s.users...), nil
}

func (s *Store) AddProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.ID = s.nextID(store.CollectionProducts)
	product.Status = domain.ProductStatusOnSale
	s.products = append(s.products, product)
	created := product
	return &created, nil
}

func (s *Store) FindProductByID(_ context.Context, id int) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateProductStatus(_ context.Context, id int, status domain.ProductStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i].Status = status
			break
		}
	}
	return nil
}

func (s *Store) DecreaseStock(_ context.Context, id int, qty int) error {
	if qty < 0 {
		return fmt.Errorf("negative stock decrement %d", qty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID != id {
			continue
		}
		if s.products[i].Stock < qty {
			return store.ErrInsufficientStock
		}
		s.products[i].Stock -= qty
		break
	}
	return nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append(make([]domain.Product, 0, len(s.products)), s.products...), nil
}

// AddOrder records the order as already paid. There is no payment step, and
// although OrderStatusCreated exists nothing ever starts an order there.
func (s *Store) AddOrder(_ context.Context, buyerID int, productID int, quantity int, amount float64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := domain.Order{
		ID:        s.nextID(store.CollectionOrders),
		BuyerID:   buyerID,
		ProductID: productID,
		Quantity:  quantity,
		Amount:    amount,
		Status:    domain.OrderStatusPaid,
		CreatedAt: domain.Timestamp(),
	}
	s.orders = append(s.orders, order)
	created := order
	return &created, nil
}

func (s *Store) FindOrderByID(_ context.Context, id int) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.ID == id {
			found := o
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) ListOrders(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append(make([]domain.Order, 0, len(s.orders)), s.orders...), nil
}

func (s *Store) AddComplaint(_ context.Context, complaint domain.Complaint) (*domain.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	complaint = complaint.Clone()
	complaint.ID = s.nextID(store.CollectionComplaints)
	complaint.Status = domain.ComplaintStatusPending
	complaint.SubmittedAt = domain.Timestamp()
	complaint.Result = ""
	s.complaints = append(s.complaints, complaint)
	created := complaint.Clone()
	return &created, nil
}

func (s *Store) ListComplaints(_ context.Context) ([]domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Complaint, 0, len(s.complaints))
	for _, c := range s.complaints {
		result = append(result, c.Clone())
	}
	return result, nil
}

func (s *Store) UpdateComplaintStatus(_ context.Context, id int, status domain.ComplaintStatus, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.complaints {
		if s.complaints[i].ID == id {
			s.complaints[i].Status = status
			s.complaints[i].Result = result
			break
		}
	}
	return nil
}

var _ store.Repository = (*Store)(nil)
