package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace/backend/internal/domain"
	"marketplace/backend/internal/store"
)

// timestampLayout is an ISO-8601 local timestamp at second precision, for
// example 2024-05-01T12:30:00.
const timestampLayout = "2006-01-02T15:04:05"

var errCorrupt = errors.New("corrupt backing document")

// document is the on-disk layout: four named arrays plus the id counters.
type document struct {
	Users      []userRecord      `json:"users"`
	Products   []productRecord   `json:"products"`
	Orders     []orderRecord     `json:"orders"`
	Complaints []complaintRecord `json:"complaints"`
	IDCounters map[string]int    `json:"_id_counters"`
}

// Optional fields are pointers so decoding can tell "missing" from "zero"
// and apply the same defaults older files were written with.

type userRecord struct {
	ID       int     `json:"id"`
	Username string  `json:"username"`
	Phone    string  `json:"phone"`
	Role     string  `json:"role"`
	Status   *string `json:"status"`
}

type productRecord struct {
	ID          int      `json:"id"`
	SellerID    int      `json:"seller_id"`
	Title       string   `json:"title"`
	ImageCount  *int     `json:"image_count"`
	Category    *string  `json:"category"`
	Condition   *string  `json:"condition"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Description *string  `json:"description"`
	Contact     *string  `json:"contact"`
	Status      *string  `json:"status"`
}

type orderRecord struct {
	ID        int     `json:"id"`
	BuyerID   int     `json:"buyer_id"`
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

type complaintRecord struct {
	ID            int     `json:"id"`
	ComplainantID int     `json:"complainant_id"`
	ProductID     *int    `json:"product_id"`
	OrderID       *int    `json:"order_id"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	EvidenceCount *int    `json:"evidence_count"`
	Reason        *string `json:"reason"`
	SubmittedAt   string  `json:"submitted_at"`
	Result        *string `json:"result"`
}

func encodeDocument(snap store.Snapshot) ([]byte, error) {
	doc := document{
		Users:      make([]userRecord, 0, len(snap.Users)),
		Products:   make([]productRecord, 0, len(snap.Products)),
		Orders:     make([]orderRecord, 0, len(snap.Orders)),
		Complaints: make([]complaintRecord, 0, len(snap.Complaints)),
		IDCounters: make(map[string]int, len(store.Collections)),
	}
	for _, u := range snap.Users {
		doc.Users = append(doc.Users, userRecord{
			ID:       u.ID,
			Username: u.Username,
			Phone:    u.Phone,
			Role:     string(u.Role),
			Status:   ptr(string(u.Status)),
		})
	}
	for _, p := range snap.Products {
		doc.Products = append(doc.Products, productRecord{
			ID:          p.ID,
			SellerID:    p.SellerID,
			Title:       p.Title,
			ImageCount:  ptr(p.ImageCount),
			Category:    ptr(p.Category),
			Condition:   ptr(string(p.Condition)),
			Price:       ptr(p.Price),
			Stock:       ptr(p.Stock),
			Description: ptr(p.Description),
			Contact:     ptr(p.Contact),
			Status:      ptr(string(p.Status)),
		})
	}
	for _, o := range snap.Orders {
		doc.Orders = append(doc.Orders, orderRecord{
			ID:        o.ID,
			BuyerID:   o.BuyerID,
			ProductID: o.ProductID,
			Quantity:  o.Quantity,
			Amount:    o.Amount,
			Status:    string(o.Status),
			CreatedAt: o.CreatedAt.Format(timestampLayout),
		})
	}
	for _, c := range snap.Complaints {
		c = c.Clone()
		doc.Complaints = append(doc.Complaints, complaintRecord{
			ID:            c.ID,
			ComplainantID: c.ComplainantID,
			ProductID:     c.ProductID,
			OrderID:       c.OrderID,
			Type:          string(c.Type),
			Status:        string(c.Status),
			EvidenceCount: ptr(c.EvidenceCount),
			Reason:        ptr(c.Reason),
			SubmittedAt:   c.SubmittedAt.Format(timestampLayout),
			Result:        ptr(c.Result),
		})
	}
	for _, name := range store.Collections {
		doc.IDCounters[name] = snap.Counters[name]
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeDocument(raw []byte) (store.Snapshot, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return store.Snapshot{}, fmt.Errorf("%w: %v", errCorrupt, err)
	}

	snap := store.EmptySnapshot()
	for _, rec := range doc.Users {
		u, err := decodeUser(rec)
		if err != nil {
			return store.Snapshot{}, err
		}
		snap.Users = append(snap.Users, u)
	}
	for _, rec := range doc.Products {
		p, err := decodeProduct(rec)
		if err != nil {
			return store.Snapshot{}, err
		}
		snap.Products = append(snap.Products, p)
	}
	for _, rec := range doc.Orders {
		o, err := decodeOrder(rec)
		if err != nil {
			return store.Snapshot{}, err
		}
		snap.Orders = append(snap.Orders, o)
	}
	for _, rec := range doc.Complaints {
		c, err := decodeComplaint(rec)
		if err != nil {
			return store.Snapshot{}, err
		}
		snap.Complaints = append(snap.Complaints, c)
	}
	for name, next := range doc.IDCounters {
		snap.Counters[name] = next
	}
	snap.NormalizeCounters()
	return snap, nil
}

func decodeUser(rec userRecord) (domain.User, error) {
	if rec.ID < 1 {
		return domain.User{}, fmt.Errorf("%w: user without id", errCorrupt)
	}
	role, err := domain.ParseUserRole(rec.Role)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: user %d: %v", errCorrupt, rec.ID, err)
	}
	status, err := domain.ParseUserStatus(deref(rec.Status, string(domain.UserStatusNormal)))
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: user %d: %v", errCorrupt, rec.ID, err)
	}
	return domain.User{
		ID:       rec.ID,
		Username: rec.Username,
		Phone:    rec.Phone,
		Role:     role,
		Status:   status,
	}, nil
}

func decodeProduct(rec productRecord) (domain.Product, error) {
	if rec.ID < 1 || rec.Price == nil || rec.Stock == nil {
		return domain.Product{}, fmt.Errorf("%w: product %d incomplete", errCorrupt, rec.ID)
	}
	condition, err := domain.ParseConditionLevel(deref(rec.Condition, string(domain.ConditionNew)))
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: product %d: %v", errCorrupt, rec.ID, err)
	}
	status, err := domain.ParseProductStatus(deref(rec.Status, string(domain.ProductStatusOnSale)))
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: product %d: %v", errCorrupt, rec.ID, err)
	}
	return domain.Product{
		ID:          rec.ID,
		SellerID:    rec.SellerID,
		Title:       rec.Title,
		ImageCount:  deref(rec.ImageCount, 1),
		Category:    deref(rec.Category, domain.DefaultCategory),
		Condition:   condition,
		Price:       *rec.Price,
		Stock:       *rec.Stock,
		Description: deref(rec.Description, ""),
		Contact:     deref(rec.Contact, ""),
		Status:      status,
	}, nil
}

func decodeOrder(rec orderRecord) (domain.Order, error) {
	if rec.ID < 1 {
		return domain.Order{}, fmt.Errorf("%w: order without id", errCorrupt)
	}
	status, err := domain.ParseOrderStatus(rec.Status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: order %d: %v", errCorrupt, rec.ID, err)
	}
	createdAt, err := parseTimestamp(rec.CreatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: order %d: %v", errCorrupt, rec.ID, err)
	}
	return domain.Order{
		ID:        rec.ID,
		BuyerID:   rec.BuyerID,
		ProductID: rec.ProductID,
		Quantity:  rec.Quantity,
		Amount:    rec.Amount,
		Status:    status,
		CreatedAt: createdAt,
	}, nil
}

func decodeComplaint(rec complaintRecord) (domain.Complaint, error) {
	if rec.ID < 1 {
		return domain.Complaint{}, fmt.Errorf("%w: complaint without id", errCorrupt)
	}
	kind, err := domain.ParseComplaintType(rec.Type)
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("%w: complaint %d: %v", errCorrupt, rec.ID, err)
	}
	status, err := domain.ParseComplaintStatus(rec.Status)
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("%w: complaint %d: %v", errCorrupt, rec.ID, err)
	}
	submittedAt, err := parseTimestamp(rec.SubmittedAt)
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("%w: complaint %d: %v", errCorrupt, rec.ID, err)
	}
	return domain.Complaint{
		ID:            rec.ID,
		ComplainantID: rec.ComplainantID,
		ProductID:     rec.ProductID,
		OrderID:       rec.OrderID,
		Type:          kind,
		Status:        status,
		EvidenceCount: deref(rec.EvidenceCount, 0),
		Reason:        deref(rec.Reason, ""),
		SubmittedAt:   submittedAt,
		Result:        deref(rec.Result, ""),
	}, nil
}

// parseTimestamp accepts the local layout this store writes and, for files
// produced elsewhere, RFC 3339 with an offset.
func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.ParseInLocation(timestampLayout, raw, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.Truncate(time.Second), nil
}

func ptr[T any](v T) *T {
	return &v
}

func deref[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
