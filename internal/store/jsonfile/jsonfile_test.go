package jsonfile

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/backend/internal/domain"
	"marketplace/backend/internal/store"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func openAt(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path, testLogger())
	require.NoError(t, err)
	return s
}

// sameState compares two snapshots, treating timestamps as instants.
func sameState(t *testing.T, want, got store.Snapshot) {
	t.Helper()
	assert.Equal(t, want.Users, got.Users)
	assert.Equal(t, want.Products, got.Products)
	assert.Equal(t, want.Counters, got.Counters)
	require.Len(t, got.Orders, len(want.Orders))
	for i := range want.Orders {
		w, g := want.Orders[i], got.Orders[i]
		assert.True(t, w.CreatedAt.Equal(g.CreatedAt), "order %d created_at %v != %v", w.ID, w.CreatedAt, g.CreatedAt)
		w.CreatedAt, g.CreatedAt = time.Time{}, time.Time{}
		assert.Equal(t, w, g)
	}
	require.Len(t, got.Complaints, len(want.Complaints))
	for i := range want.Complaints {
		w, g := want.Complaints[i], got.Complaints[i]
		assert.True(t, w.SubmittedAt.Equal(g.SubmittedAt))
		w.SubmittedAt, g.SubmittedAt = time.Time{}, time.Time{}
		assert.Equal(t, w, g)
	}
}

func TestMissingFileStartsWithAdminOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := openAt(t, path)

	snap := s.state.Snapshot()
	require.Len(t, snap.Users, 1)
	assert.Equal(t, domain.RoleAdmin, snap.Users[0].Role)
	assert.Equal(t, store.AdminPhone, snap.Users[0].Phone)
	assert.Empty(t, snap.Products)
	assert.Empty(t, snap.Orders)
	assert.Empty(t, snap.Complaints)

	_, err := os.Stat(path)
	require.NoError(t, err, "admin bootstrap is persisted immediately")
}

func TestCorruptFileStartsWithAdminOnly(t *testing.T) {
	cases := map[string]string{
		"not json":      "{{{ nope",
		"unknown label": `{"users":[{"id":1,"username":"x","phone":"1","role":"KING"}],"products":[],"orders":[],"complaints":[]}`,
		"bad timestamp": `{"users":[],"products":[],"orders":[{"id":1,"buyer_id":1,"product_id":1,"quantity":1,"amount":1,"status":"已支付","created_at":"yesterday"}],"complaints":[]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			s := openAt(t, path)
			snap := s.state.Snapshot()
			require.Len(t, snap.Users, 1)
			assert.Equal(t, domain.RoleAdmin, snap.Users[0].Role)
			assert.Empty(t, snap.Orders)
		})
	}
}

func TestRoundTripAfterEveryMutation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := openAt(t, path)
	ctx := context.Background()

	check := func(step string) {
		t.Helper()
		reopened := openAt(t, path)
		t.Run(step, func(t *testing.T) {
			sameState(t, s.state.Snapshot(), reopened.state.Snapshot())
		})
	}

	buyer, err := s.AddUser(ctx, "买家甲", "13800000001", domain.RoleBuyer)
	require.NoError(t, err)
	check("add user")

	product, err := s.AddProduct(ctx, domain.Product{
		SellerID:    1,
		Title:       "iPhone 15 Pro",
		ImageCount:  3,
		Category:    "数码",
		Condition:   domain.ConditionNineFive,
		Price:       4999.9,
		Stock:       2,
		Description: "国行 256G <无拆修> & 原装",
		Contact:     "微信 a1",
	})
	require.NoError(t, err)
	check("add product")

	order, err := s.AddOrder(ctx, buyer.ID, product.ID, 1, 4999.9)
	require.NoError(t, err)
	check("add order")

	require.NoError(t, s.DecreaseStock(ctx, product.ID, 1))
	check("decrease stock")

	_, err = s.AddComplaint(ctx, domain.Complaint{
		ComplainantID: buyer.ID,
		OrderID:       domain.IntPtr(order.ID),
		Type:          domain.ComplaintOrderDispute,
		EvidenceCount: 2,
		Reason:        "未发货",
	})
	require.NoError(t, err)
	check("add complaint")

	require.NoError(t, s.UpdateComplaintStatus(ctx, 1, domain.ComplaintStatusResolved, "已补发"))
	check("update complaint")

	require.NoError(t, s.UpdateProductStatus(ctx, product.ID, domain.ProductStatusTakedown))
	check("update product")

	require.NoError(t, s.UpdateUserStatus(ctx, buyer.ID, domain.UserStatusBanned))
	check("update user")

	require.NoError(t, s.UpdateUserStatus(ctx, 404, domain.UserStatusBanned))
	check("update unknown user")
}

func TestFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := openAt(t, path)
	ctx := context.Background()

	_, err := s.AddProduct(ctx, domain.Product{SellerID: 1, Title: "<台灯>", ImageCount: 1, Category: "家电", Condition: domain.ConditionNine, Price: 30, Stock: 1, Description: "d"})
	require.NoError(t, err)
	_, err = s.AddOrder(ctx, 1, 1, 1, 30)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"condition": "9成新"`)
	assert.Contains(t, string(raw), `"status": "在售"`)
	assert.Contains(t, string(raw), `"title": "<台灯>"`)
	assert.Contains(t, string(raw), `"role": "ADMIN"`)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"users", "products", "orders", "complaints", "_id_counters"} {
		assert.Contains(t, doc, key)
	}

	var counters map[string]int
	require.NoError(t, json.Unmarshal(doc["_id_counters"], &counters))
	assert.Equal(t, map[string]int{"users": 2, "products": 2, "orders": 2, "complaints": 1}, counters)

	var orders []map[string]any
	require.NoError(t, json.Unmarshal(doc["orders"], &orders))
	require.Len(t, orders, 1)
	_, err = time.ParseInLocation(timestampLayout, orders[0]["created_at"].(string), time.Local)
	require.NoError(t, err)
}

func TestLoadAppliesDefaultsAndRebuildsCounters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	legacy := `{
  "users": [
    {"id": 1, "username": "管理员", "phone": "00000000000", "role": "ADMIN", "status": "NORMAL"},
    {"id": 4, "username": "卖家", "phone": "13900000000", "role": "SELLER"}
  ],
  "products": [
    {"id": 9, "seller_id": 4, "title": "旧书", "price": 12.5, "stock": 1}
  ],
  "orders": [],
  "complaints": [
    {"id": 2, "complainant_id": 4, "product_id": 9, "order_id": null, "type": "商品违规", "status": "待处理", "submitted_at": "2024-05-01T12:30:00"}
  ],
  "_id_counters": {"users": 2}
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s := openAt(t, path)
	ctx := context.Background()

	seller, err := s.FindUserByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusNormal, seller.Status)

	p, err := s.FindProductByID(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, p.ImageCount)
	assert.Equal(t, domain.DefaultCategory, p.Category)
	assert.Equal(t, domain.ConditionNew, p.Condition)
	assert.Equal(t, domain.ProductStatusOnSale, p.Status)

	complaints, err := s.ListComplaints(ctx)
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	assert.Equal(t, 0, complaints[0].EvidenceCount)
	assert.Nil(t, complaints[0].OrderID)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 30, 0, 0, time.Local), complaints[0].SubmittedAt)

	u, err := s.AddUser(ctx, "new", "13700000000", domain.RoleBuyer)
	require.NoError(t, err)
	assert.Equal(t, 5, u.ID)
	np, err := s.AddProduct(ctx, domain.Product{Title: "n"})
	require.NoError(t, err)
	assert.Equal(t, 10, np.ID)
	nc, err := s.AddComplaint(ctx, domain.Complaint{Type: domain.ComplaintProductViolation})
	require.NoError(t, err)
	assert.Equal(t, 3, nc.ID)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3, "existing admin is kept, none added")
}

func TestSaveFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	s := openAt(t, path)

	s.path = filepath.Join(dir, "missing", "data.json")
	_, err := s.AddUser(context.Background(), "a", "1", domain.RoleBuyer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save")
}

func TestEmptyPathUsesDefault(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	s := openAt(t, "")
	assert.Equal(t, DefaultPath, s.Path())
	_, err = os.Stat(DefaultPath)
	require.NoError(t, err)
}
