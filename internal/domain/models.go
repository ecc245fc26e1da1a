package domain

import "time"

// Entities are value snapshots. The persistence layer owns the canonical
// records and the wire encoding, so these types carry no serialization tags.

type User struct {
	ID       int
	Username string
	Phone    string
	Role     UserRole
	Status   UserStatus
}

func (u User) IsBanned() bool {
	return u.Status == UserStatusBanned
}

// CanPublish reports whether the user may list products for sale.
func (u User) CanPublish() bool {
	return u.Role == RoleSeller || u.Role == RoleAdmin
}

type Product struct {
	ID          int
	SellerID    int
	Title       string
	ImageCount  int
	Category    string
	Condition   ConditionLevel
	Price       float64
	Stock       int
	Description string
	Contact     string
	Status      ProductStatus
}

type Order struct {
	ID        int
	BuyerID   int
	ProductID int
	Quantity  int
	Amount    float64
	Status    OrderStatus
	CreatedAt time.Time
}

// Complaint targets either a product or an order. Nothing enforces that
// exactly one of ProductID and OrderID is set.
type Complaint struct {
	ID            int
	ComplainantID int
	ProductID     *int
	OrderID       *int
	Type          ComplaintType
	Status        ComplaintStatus
	EvidenceCount int
	Reason        string
	SubmittedAt   time.Time
	Result        string
}

func (c Complaint) Clone() Complaint {
	out := c
	if c.ProductID != nil {
		id := *c.ProductID
		out.ProductID = &id
	}
	if c.OrderID != nil {
		id := *c.OrderID
		out.OrderID = &id
	}
	return out
}

type ProductDraft struct {
	Title       string
	Category    string
	Condition   string
	Price       float64
	Stock       int
	Description string
	Contact     string
	ImageCount  int
}

type ComplaintDraft struct {
	Type          string
	Reason        string
	EvidenceCount int
	ProductID     *int
	OrderID       *int
}

// ProductQuery holds the search filters. Empty fields behave like FilterAll.
type ProductQuery struct {
	Keyword   string
	Category  string
	Condition string
	Price     string
}

// Timestamp returns the current local time at second precision, the
// resolution orders and complaints are recorded with.
func Timestamp() time.Time {
	return time.Now().Truncate(time.Second)
}

func IntPtr(v int) *int {
	return &v
}
