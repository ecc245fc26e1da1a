package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"marketplace/backend/internal/domain"
	"marketplace/backend/internal/store"
)

// Identity columns give the same guarantees as the file store's counters:
// ids grow monotonically, gaps are possible, reuse is not.
const schema = `
CREATE TABLE IF NOT EXISTS market_users (
	id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	username   TEXT NOT NULL,
	phone      TEXT NOT NULL,
	role       TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS market_users_phone_idx ON market_users (phone);

CREATE TABLE IF NOT EXISTS market_products (
	id          BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	seller_id   BIGINT NOT NULL,
	title       TEXT NOT NULL,
	image_count INT NOT NULL,
	category    TEXT NOT NULL,
	condition   TEXT NOT NULL,
	price       DOUBLE PRECISION NOT NULL,
	stock       INT NOT NULL CHECK (stock >= 0),
	description TEXT NOT NULL,
	contact     TEXT NOT NULL,
	status      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS market_orders (
	id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	buyer_id   BIGINT NOT NULL,
	product_id BIGINT NOT NULL,
	quantity   INT NOT NULL,
	amount     DOUBLE PRECISION NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS market_complaints (
	id             BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	complainant_id BIGINT NOT NULL,
	product_id     BIGINT,
	order_id       BIGINT,
	type           TEXT NOT NULL,
	status         TEXT NOT NULL,
	evidence_count INT NOT NULL,
	reason         TEXT NOT NULL,
	submitted_at   TIMESTAMPTZ NOT NULL,
	result         TEXT NOT NULL DEFAULT ''
);
`

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if _, err := s.EnsureAdmin(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureAdmin inserts the bootstrap administrator when the users table has
// no ADMIN row and reports whether it did.
func (s *Store) EnsureAdmin(ctx context.Context) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM market_users WHERE role = $1)
	`, string(domain.RoleAdmin)).Scan(&exists); err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.AddUser(ctx, store.AdminUsername, store.AdminPhone, domain.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) AddUser(ctx context.Context, username string, phone string, role domain.UserRole) (*domain.User, error) {
	user := domain.User{
		Username: username,
		Phone:    phone,
		Role:     role,
		Status:   domain.UserStatusNormal,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO market_users (username, phone, role, status)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, user.Username, user.Phone, string(user.Role), string(user.Status)).Scan(&user.ID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) FindUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return s.findUser(ctx, `
		SELECT id, username, phone, role, status
		FROM market_users
		WHERE phone = $1
		ORDER BY id
		LIMIT 1
	`, phone)
}

func (s *Store) FindUserByID(ctx context.Context, id int) (*domain.User, error) {
	return s.findUser(ctx, `
		SELECT id, username, phone, role, status
		FROM market_users
		WHERE id = $1
	`, id)
}

func (s *Store) findUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) UpdateUserStatus(ctx context.Context, id int, status domain.UserStatus) error {
	_, err := s.db.ExecContext(ctx, `UPDATE market_users SET status = $2 WHERE id = $1`, id, string(status))
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, phone, role, status
		FROM market_users
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0, 32)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) AddProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.Status = domain.ProductStatusOnSale
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO market_products (seller_id, title, image_count, category, condition, price, stock, description, contact, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id
	`, product.SellerID, product.Title, product.ImageCount, product.Category, string(product.Condition),
		product.Price, product.Stock, product.Description, product.Contact, string(product.Status)).Scan(&product.ID)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) FindProductByID(ctx context.Context, id int) (*domain.Product, error) {
	product, err := scanProduct(s.db.QueryRowContext(ctx, `
		SELECT id, seller_id, title, image_count, category, condition, price, stock, description, contact, status
		FROM market_products
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) UpdateProductStatus(ctx context.Context, id int, status domain.ProductStatus) error {
	_, err := s.db.ExecContext(ctx, `UPDATE market_products SET status = $2 WHERE id = $1`, id, string(status))
	return err
}

// DecreaseStock relies on the stock >= 0 check constraint to refuse
// overselling; an unknown id updates nothing.
func (s *Store) DecreaseStock(ctx context.Context, id int, qty int) error {
	if qty < 0 {
		return fmt.Errorf("negative stock decrement %d", qty)
	}
	_, err := s.db.ExecContext(ctx, `UPDATE market_products SET stock = stock - $2 WHERE id = $1`, id, qty)
	if err != nil {
		if isCheckViolation(err) {
			return store.ErrInsufficientStock
		}
		return err
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seller_id, title, image_count, category, condition, price, stock, description, contact, status
		FROM market_products
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// AddOrder stores the order as paid, matching the file store.
func (s *Store) AddOrder(ctx context.Context, buyerID int, productID int, quantity int, amount float64) (*domain.Order, error) {
	order := domain.Order{
		BuyerID:   buyerID,
		ProductID: productID,
		Quantity:  quantity,
		Amount:    amount,
		Status:    domain.OrderStatusPaid,
		CreatedAt: domain.Timestamp(),
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO market_orders (buyer_id, product_id, quantity, amount, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, order.BuyerID, order.ProductID, order.Quantity, order.Amount, string(order.Status), order.CreatedAt).Scan(&order.ID)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) FindOrderByID(ctx context.Context, id int) (*domain.Order, error) {
	order, err := scanOrder(s.db.QueryRowContext(ctx, `
		SELECT id, buyer_id, product_id, quantity, amount, status, created_at
		FROM market_orders
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, buyer_id, product_id, quantity, amount, status, created_at
		FROM market_orders
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 64)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) AddComplaint(ctx context.Context, complaint domain.Complaint) (*domain.Complaint, error) {
	complaint = complaint.Clone()
	complaint.Status = domain.ComplaintStatusPending
	complaint.SubmittedAt = domain.Timestamp()
	complaint.Result = ""
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO market_complaints (complainant_id, product_id, order_id, type, status, evidence_count, reason, submitted_at, result)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`, complaint.ComplainantID, nullableID(complaint.ProductID), nullableID(complaint.OrderID), string(complaint.Type),
		string(complaint.Status), complaint.EvidenceCount, complaint.Reason, complaint.SubmittedAt, complaint.Result).Scan(&complaint.ID)
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (s *Store) ListComplaints(ctx context.Context) ([]domain.Complaint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, complainant_id, product_id, order_id, type, status, evidence_count, reason, submitted_at, result
		FROM market_complaints
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	complaints := make([]domain.Complaint, 0, 32)
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, complaint)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return complaints, nil
}

func (s *Store) UpdateComplaintStatus(ctx context.Context, id int, status domain.ComplaintStatus, result string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE market_complaints SET status = $2, result = $3 WHERE id = $1
	`, id, string(status), result)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		user   domain.User
		role   string
		status string
	)
	if err := row.Scan(&user.ID, &user.Username, &user.Phone, &role, &status); err != nil {
		return domain.User{}, err
	}
	var err error
	if user.Role, err = domain.ParseUserRole(role); err != nil {
		return domain.User{}, err
	}
	if user.Status, err = domain.ParseUserStatus(status); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p         domain.Product
		condition string
		status    string
	)
	if err := row.Scan(&p.ID, &p.SellerID, &p.Title, &p.ImageCount, &p.Category, &condition,
		&p.Price, &p.Stock, &p.Description, &p.Contact, &status); err != nil {
		return domain.Product{}, err
	}
	var err error
	if p.Condition, err = domain.ParseConditionLevel(condition); err != nil {
		return domain.Product{}, err
	}
	if p.Status, err = domain.ParseProductStatus(status); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.BuyerID, &o.ProductID, &o.Quantity, &o.Amount, &status, &o.CreatedAt); err != nil {
		return domain.Order{}, err
	}
	var err error
	if o.Status, err = domain.ParseOrderStatus(status); err != nil {
		return domain.Order{}, err
	}
	o.CreatedAt = o.CreatedAt.Local()
	return o, nil
}

func scanComplaint(row rowScanner) (domain.Complaint, error) {
	var (
		c         domain.Complaint
		productID sql.NullInt64
		orderID   sql.NullInt64
		kind      string
		status    string
	)
	if err := row.Scan(&c.ID, &c.ComplainantID, &productID, &orderID, &kind, &status,
		&c.EvidenceCount, &c.Reason, &c.SubmittedAt, &c.Result); err != nil {
		return domain.Complaint{}, err
	}
	var err error
	if c.Type, err = domain.ParseComplaintType(kind); err != nil {
		return domain.Complaint{}, err
	}
	if c.Status, err = domain.ParseComplaintStatus(status); err != nil {
		return domain.Complaint{}, err
	}
	if productID.Valid {
		c.ProductID = domain.IntPtr(int(productID.Int64))
	}
	if orderID.Valid {
		c.OrderID = domain.IntPtr(int(orderID.Int64))
	}
	c.SubmittedAt = c.SubmittedAt.Local()
	return c, nil
}

func nullableID(id *int) any {
	if id == nil {
		return nil
	}
	return *id
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514"
	}
	return false
}

var _ store.Repository = (*Store)(nil)
