package store

import (
	"context"
	"errors"

	"marketplace/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Bootstrap administrator created when a store holds no ADMIN user.
const (
	AdminUsername = "管理员"
	AdminPhone    = "00000000000"
)

// Collection names double as the keys of the id counter map.
const (
	CollectionUsers      = "users"
	CollectionProducts   = "products"
	CollectionOrders     = "orders"
	CollectionComplaints = "complaints"
)

var Collections = []string{CollectionUsers, CollectionProducts, CollectionOrders, CollectionComplaints}

// Repository is the single owner of application state. Find methods return
// nil without an error when nothing matches. Update methods silently ignore
// unknown ids. Every mutation is durable before the method returns.
type Repository interface {
	AddUser(ctx context.Context, username string, phone string, role domain.UserRole) (*domain.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*domain.User, error)
	FindUserByID(ctx context.Context, id int) (*domain.User, error)
	UpdateUserStatus(ctx context.Context, id int, status domain.UserStatus) error
	ListUsers(ctx context.Context) ([]domain.User, error)

	AddProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	FindProductByID(ctx context.Context, id int) (*domain.Product, error)
	UpdateProductStatus(ctx context.Context, id int, status domain.ProductStatus) error
	DecreaseStock(ctx context.Context, id int, qty int) error
	ListProducts(ctx context.Context) ([]domain.Product, error)

	AddOrder(ctx context.Context, buyerID int, productID int, quantity int, amount float64) (*domain.Order, error)
	FindOrderByID(ctx context.Context, id int) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)

	AddComplaint(ctx context.Context, complaint domain.Complaint) (*domain.Complaint, error)
	ListComplaints(ctx context.Context) ([]domain.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, id int, status domain.ComplaintStatus, result string) error
}

// Snapshot is a full copy of the state held by an in-memory repository,
// collections in insertion order plus the next id per collection.
type Snapshot struct {
	Users      []domain.User
	Products   []domain.Product
	Orders     []domain.Order
	Complaints []domain.Complaint
	Counters   map[string]int
}

func EmptySnapshot() Snapshot {
	counters := make(map[string]int, len(Collections))
	for _, name := range Collections {
		counters[name] = 1
	}
	return Snapshot{
		Users:      []domain.User{},
		Products:   []domain.Product{},
		Orders:     []domain.Order{},
		Complaints: []domain.Complaint{},
		Counters:   counters,
	}
}

// Clone deep-copies the snapshot so the receiver can be handed out safely.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Users:      append([]domain.User{}, s.Users...),
		Products:   append([]domain.Product{}, s.Products...),
		Orders:     append([]domain.Order{}, s.Orders...),
		Complaints: make([]domain.Complaint, 0, len(s.Complaints)),
		Counters:   make(map[string]int, len(s.Counters)),
	}
	for _, c := range s.Complaints {
		out.Complaints = append(out.Complaints, c.Clone())
	}
	for k, v := range s.Counters {
		out.Counters[k] = v
	}
	return out
}

// NormalizeCounters makes sure every collection has a counter that is at
// least one past the highest id already in use, so ids are never reused even
// when the counter map was lost or damaged.
func (s *Snapshot) NormalizeCounters() {
	if s.Counters == nil {
		s.Counters = make(map[string]int, len(Collections))
	}
	maxIDs := map[string]int{}
	for _, u := range s.Users {
		maxIDs[CollectionUsers] = max(maxIDs[CollectionUsers], u.ID)
	}
	for _, p := range s.Products {
		maxIDs[CollectionProducts] = max(maxIDs[CollectionProducts], p.ID)
	}
	for _, o := range s.Orders {
		maxIDs[CollectionOrders] = max(maxIDs[CollectionOrders], o.ID)
	}
	for _, c := range s.Complaints {
		maxIDs[CollectionComplaints] = max(maxIDs[CollectionComplaints], c.ID)
	}
	for _, name := range Collections {
		s.Counters[name] = max(s.Counters[name], maxIDs[name]+1, 1)
	}
}

func HasAdmin(users []domain.User) bool {
	for _, u := range users {
		if u.Role == domain.RoleAdmin {
			return true
		}
	}
	return false
}
