package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/backend/internal/domain"
	"marketplace/backend/internal/events"
	"marketplace/backend/internal/service"
	"marketplace/backend/internal/store"
	"marketplace/backend/internal/store/memory"
	"marketplace/backend/internal/verification"
)

type harness struct {
	repo  *memory.Store
	svc   *service.Service
	codes *verification.Service
	log   *logrus.Entry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logrus.NewEntry(logger)
	repo := memory.New()
	return &harness{
		repo:  repo,
		svc:   service.New(repo, events.NoopPublisher{}, entry),
		codes: verification.NewService(verification.NewMemoryCodeStore(), nil, 0, entry),
		log:   entry,
	}
}

func (h *harness) code(t *testing.T, phone string) string {
	t.Helper()
	code, err := h.codes.SendCode(context.Background(), phone)
	require.NoError(t, err)
	return code
}

func (h *harness) run(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	c := New(h.svc, h.codes, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, h.log)
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func TestRegisterRequiresValidCode(t *testing.T) {
	h := newHarness(t)
	code := h.code(t, "13800000001")

	out := h.run(t,
		"register alice 13800000001 000000x",
		"register alice 13800000001 "+code+" 卖家",
		"register bob 13800000001 "+code,
	)
	assert.Contains(t, out, "验证码错误或已过期")
	assert.Contains(t, out, "注册成功")
	assert.Contains(t, out, "该手机号已注册")

	user, err := h.repo.FindUserByPhone(context.Background(), "13800000001")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, domain.RoleSeller, user.Role)
}

func TestLoginUnregisteredSuggestsRegister(t *testing.T) {
	h := newHarness(t)
	code := h.code(t, "13800000009")

	out := h.run(t, "login 13800000009 "+code, "whoami")
	assert.Contains(t, out, "该手机号未注册")
	assert.Contains(t, out, "请先登录")
}

func TestBuyerCannotPublishOrAdmin(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Auth.Register(context.Background(), "buyer", "13800000003", domain.RoleLabelBuyer)
	require.NoError(t, err)
	code := h.code(t, "13800000003")

	out := h.run(t, "publish", "login 13800000003 "+code, "publish", "admin users")
	assert.Contains(t, out, "请先登录")
	assert.Contains(t, out, "只有卖家/管理员可以发布商品")
	assert.Contains(t, out, "仅管理员可以进入后台管理")
}

func TestSellerPublishesAndBuyerOrders(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.Auth.Register(ctx, "seller", "13800000002", domain.RoleLabelSeller)
	require.NoError(t, err)
	_, err = h.svc.Auth.Register(ctx, "buyer", "13800000003", domain.RoleLabelBuyer)
	require.NoError(t, err)
	sellerCode := h.code(t, "13800000002")
	buyerCode := h.code(t, "13800000003")

	out := h.run(t,
		"login 13800000002 "+sellerCode,
		"publish",
		"蓝牙耳机",
		"数码",
		"99新",
		"899.5",
		"2",
		"3",
		"微信 seller01",
		"降噪效果很好，配件齐全，无维修",
		"logout",
		"login 13800000003 "+buyerCode,
		"search 耳机 price=500-1000元 condition=95新及以上",
		"order 1 3",
		"order 1 2",
		"show 1",
	)
	assert.Contains(t, out, "商品发布成功，商品编号：1")
	assert.Contains(t, out, "¥899.50")
	assert.Contains(t, out, "库存不足")
	assert.Contains(t, out, "下单成功，订单号：1，金额：¥1799.00")
	assert.Contains(t, out, "库存：0")

	product, err := h.repo.FindProductByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "蓝牙耳机", product.Title)
	assert.Equal(t, domain.ConditionNineNine, product.Condition)
	assert.Equal(t, 0, product.Stock)
}

func TestPublishRejectsNonNumericInput(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Auth.Register(context.Background(), "seller", "13800000002", domain.RoleLabelSeller)
	require.NoError(t, err)
	code := h.code(t, "13800000002")

	out := h.run(t, "login 13800000002 "+code, "publish", "标题", "数码", "全新", "1+1", "2", "1", "c", "足够长的商品描述内容在这里")
	assert.Contains(t, out, "图片数量、价格和库存需为数字")

	products, err := h.repo.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestComplainAndAdminHandle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.Auth.Register(ctx, "buyer", "13800000003", domain.RoleLabelBuyer)
	require.NoError(t, err)
	buyerCode := h.code(t, "13800000003")
	adminCode := h.code(t, store.AdminPhone)

	out := h.run(t,
		"complain order 5",
		"login 13800000003 "+buyerCode,
		"complain order 5",
		"1",
		"卖家一直不发货",
		"logout",
		"login "+store.AdminPhone+" "+adminCode,
		"admin complaints",
		"admin handle 1 搁置",
		"admin handle 1 已解决 已联系卖家补发",
		"admin ban 2 恶意投诉",
		"admin users",
	)
	assert.Contains(t, out, "投诉已受理，编号：1（订单纠纷）")
	assert.Contains(t, out, "提示：您是管理员")
	assert.Contains(t, out, "订单 5")
	assert.Contains(t, out, "无效的投诉处理状态")
	assert.Contains(t, out, "已更新投诉状态")
	assert.Contains(t, out, "用户已封禁")

	complaints, err := h.repo.ListComplaints(ctx)
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	assert.Equal(t, domain.ComplaintStatusResolved, complaints[0].Status)
	assert.Equal(t, "已联系卖家补发", complaints[0].Result)
	assert.Equal(t, 1, complaints[0].EvidenceCount)

	_, err = h.svc.Auth.Login(ctx, "13800000003")
	require.ErrorIs(t, err, service.ErrAccountBanned)
}

func TestOffShelfOnlyByOwnerOrAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	seller, err := h.svc.Auth.Register(ctx, "seller", "13800000002", domain.RoleLabelSeller)
	require.NoError(t, err)
	_, err = h.svc.Auth.Register(ctx, "other", "13800000004", domain.RoleLabelSeller)
	require.NoError(t, err)
	product, err := h.svc.Products.Publish(ctx, *seller, domain.ProductDraft{
		Title:       "台灯",
		Price:       50,
		Stock:       1,
		Description: "用了半年，功能完好无损",
		ImageCount:  1,
	})
	require.NoError(t, err)
	otherCode := h.code(t, "13800000004")
	sellerCode := h.code(t, "13800000002")

	out := h.run(t,
		"login 13800000004 "+otherCode,
		"offshelf 1",
		"logout",
		"login 13800000002 "+sellerCode,
		"offshelf 1",
		"order 1",
		"list",
	)
	assert.Contains(t, out, "只能下架自己发布的商品")
	assert.Contains(t, out, "商品已下架")
	assert.Contains(t, out, "无法下单")
	assert.Contains(t, out, "没有找到商品")

	stored, err := h.repo.FindProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductStatusOffShelf, stored.Status)
}

func TestUnknownCommandAndQuit(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "dance", "code", "help", "quit", "whoami")
	assert.Contains(t, out, `未知命令 "dance"`)
	assert.Contains(t, out, "请输入手机号")
	assert.Contains(t, out, "register <用户名>")
	assert.Contains(t, out, "再见")
	assert.NotContains(t, out, "请先登录")
}

func TestParseQuery(t *testing.T) {
	q := parseQuery([]string{"iPhone", "category=数码", "15", "price=1000+", "condition=NEW", "foo=bar"})
	assert.Equal(t, domain.ProductQuery{
		Keyword:   "iPhone 15 foo=bar",
		Category:  "数码",
		Condition: "NEW",
		Price:     "1000+",
	}, q)
}
