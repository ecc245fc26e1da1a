package console

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"marketplace/backend/internal/domain"
	"marketplace/backend/internal/service"
)

func (c *Console) sendCode(ctx context.Context, args []string) error {
	phone := ""
	if len(args) > 0 {
		phone = args[0]
	}
	code, err := c.codes.SendCode(ctx, phone)
	if err != nil {
		return err
	}
	c.printf("模拟短信验证码：%s\n", code)
	return nil
}

func (c *Console) checkCode(ctx context.Context, phone string, code string) error {
	ok, err := c.codes.VerifyCode(ctx, phone, code)
	if err != nil {
		return err
	}
	if !ok {
		return userError("验证码错误或已过期")
	}
	return nil
}

func (c *Console) register(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return userError("请完整填写信息：register <用户名> <手机号> <验证码> [买家|卖家]")
	}
	username, phone, code := args[0], args[1], args[2]
	roleLabel := domain.RoleLabelBuyer
	if len(args) > 3 {
		roleLabel = args[3]
	}
	if err := c.checkCode(ctx, phone, code); err != nil {
		return err
	}

	user, err := c.svc.Auth.Register(ctx, username, phone, roleLabel)
	if err != nil {
		return err
	}
	c.printf("注册成功（编号 %d，身份 %s），请登录\n", user.ID, user.Role)
	return nil
}

func (c *Console) login(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return userError("请填写手机号和验证码")
	}
	phone, code := args[0], args[1]
	if err := c.checkCode(ctx, phone, code); err != nil {
		return err
	}

	user, err := c.svc.Auth.Login(ctx, phone)
	if errors.Is(err, service.ErrNotRegistered) {
		c.println("该手机号未注册，请先使用 register 注册")
		return nil
	}
	if err != nil {
		return err
	}
	c.user = user
	c.printf("欢迎，%s\n", user.Username)
	if user.Role == domain.RoleAdmin {
		c.println("提示：您是管理员，可以使用 admin 命令进入后台管理。")
	}
	return nil
}

func (c *Console) logout(_ context.Context, _ []string) error {
	if c.user == nil {
		return errLoginRequired
	}
	c.user = nil
	c.println("已退出登录")
	return nil
}

func (c *Console) whoami(_ context.Context, _ []string) error {
	user, err := c.requireUser()
	if err != nil {
		return err
	}
	c.printf("用户名：%s\n手机号：%s\n身份：%s\n", user.Username, user.Phone, user.Role)
	if user.Role == domain.RoleAdmin {
		c.println("提示：您是管理员，可以使用 admin 命令进入后台管理。")
	}
	return nil
}

func (c *Console) list(ctx context.Context, _ []string) error {
	products, err := c.svc.Products.Search(ctx, domain.ProductQuery{})
	if err != nil {
		return err
	}
	c.renderCatalog(products)
	return nil
}

func (c *Console) search(ctx context.Context, args []string) error {
	products, err := c.svc.Products.Search(ctx, parseQuery(args))
	if err != nil {
		return err
	}
	c.renderCatalog(products)
	return nil
}

// parseQuery treats key=value words as filters and joins the rest into the
// keyword.
func parseQuery(args []string) domain.ProductQuery {
	var (
		query    domain.ProductQuery
		keywords []string
	)
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			keywords = append(keywords, arg)
			continue
		}
		switch strings.ToLower(key) {
		case "category":
			query.Category = value
		case "condition":
			query.Condition = value
		case "price":
			query.Price = value
		default:
			keywords = append(keywords, arg)
		}
	}
	query.Keyword = strings.Join(keywords, " ")
	return query
}

func (c *Console) show(ctx context.Context, args []string) error {
	product, err := c.productArg(ctx, args)
	if err != nil {
		return err
	}
	c.renderProduct(*product)
	return nil
}

func (c *Console) productArg(ctx context.Context, args []string) (*domain.Product, error) {
	id, err := idArg(args, "商品编号")
	if err != nil {
		return nil, err
	}
	product, err := c.svc.Products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errProductNotFound
	}
	return product, nil
}

func idArg(args []string, name string) (int, error) {
	if len(args) == 0 {
		return 0, userError("请输入" + name)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 1 {
		return 0, userError(name + "需为正整数")
	}
	return id, nil
}

func (c *Console) publish(ctx context.Context, _ []string) error {
	user, err := c.requireUser()
	if err != nil {
		return err
	}
	if !user.CanPublish() {
		return userError("只有卖家/管理员可以发布商品")
	}

	answers := make(map[string]string, 8)
	for _, field := range []string{"商品标题", "分类", "新旧程度（全新/99新/95新/9成新）", "价格", "库存", "图片数量", "联系方式", "商品描述"} {
		answer, ok := c.ask(field + "：")
		if !ok {
			return userError("输入已结束，发布取消")
		}
		answers[field] = answer
	}

	imageCount, errImages := strconv.Atoi(answers["图片数量"])
	price, errPrice := strconv.ParseFloat(answers["价格"], 64)
	stock, errStock := strconv.Atoi(answers["库存"])
	if errImages != nil || errPrice != nil || errStock != nil {
		return errNotNumeric
	}

	product, err := c.svc.Products.Publish(ctx, *user, domain.ProductDraft{
		Title:       answers["商品标题"],
		Category:    answers["分类"],
		Condition:   answers["新旧程度（全新/99新/95新/9成新）"],
		Price:       price,
		Stock:       stock,
		Description: answers["商品描述"],
		Contact:     answers["联系方式"],
		ImageCount:  imageCount,
	})
	if err != nil {
		return err
	}
	c.printf("商品发布成功，商品编号：%d\n", product.ID)
	return nil
}

func (c *Console) order(ctx context.Context, args []string) error {
	user, err := c.requireUser()
	if err != nil {
		return err
	}
	product, err := c.productArg(ctx, args)
	if err != nil {
		return err
	}
	if product.Status != domain.ProductStatusOnSale {
		return userError("商品" + string(product.Status) + "，无法下单")
	}
	quantity := 1
	if len(args) > 1 {
		if quantity, err = strconv.Atoi(args[1]); err != nil {
			return userError("数量需为数字")
		}
	}

	order, err := c.svc.Orders.CreateOrder(ctx, *user, *product, quantity)
	if err != nil {
		return err
	}
	c.printf("下单成功，订单号：%d，金额：%s\n", order.ID, formatPrice(order.Amount))
	return nil
}

func (c *Console) complain(ctx context.Context, args []string) error {
	user, err := c.requireUser()
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return userError("用法：complain product|order <编号>")
	}
	id, err := idArg(args[1:], "编号")
	if err != nil {
		return err
	}
	draft := domain.ComplaintDraft{}
	switch strings.ToLower(args[0]) {
	case "product":
		draft.ProductID = domain.IntPtr(id)
	case "order":
		draft.OrderID = domain.IntPtr(id)
	default:
		return userError("用法：complain product|order <编号>")
	}

	evidence, ok := c.ask("证据图片数量（0~3）：")
	if !ok {
		return userError("输入已结束，投诉取消")
	}
	if evidence != "" {
		if draft.EvidenceCount, err = strconv.Atoi(evidence); err != nil {
			return userError("证据图片数量需为数字")
		}
	}
	if draft.Reason, ok = c.ask("投诉原因："); !ok {
		return userError("输入已结束，投诉取消")
	}

	complaint, err := c.svc.Complaints.Submit(ctx, *user, draft)
	if err != nil {
		return err
	}
	c.printf("投诉已受理，编号：%d（%s）\n", complaint.ID, complaint.Type)
	return nil
}

func (c *Console) offShelf(ctx context.Context, args []string) error {
	user, err := c.requireUser()
	if err != nil {
		return err
	}
	product, err := c.productArg(ctx, args)
	if err != nil {
		return err
	}
	if product.SellerID != user.ID && user.Role != domain.RoleAdmin {
		return userError("只能下架自己发布的商品")
	}
	if err := c.svc.Products.OffShelf(ctx, product.ID); err != nil {
		return err
	}
	c.println("商品已下架")
	return nil
}

func (c *Console) admin(ctx context.Context, args []string) error {
	user, err := c.requireUser()
	if err != nil {
		return err
	}
	if user.Role != domain.RoleAdmin {
		return userError("仅管理员可以进入后台管理")
	}
	if len(args) == 0 {
		return userError("用法：admin users|products|orders|complaints|ban|takedown|handle")
	}

	admin := c.svc.Admin
	switch strings.ToLower(args[0]) {
	case "users":
		users, err := admin.ListUsers(ctx)
		if err != nil {
			return err
		}
		c.renderUsers(users)
	case "products":
		products, err := admin.ListProducts(ctx)
		if err != nil {
			return err
		}
		c.renderProducts(products)
	case "orders":
		orders, err := admin.ListOrders(ctx)
		if err != nil {
			return err
		}
		c.renderOrders(orders)
	case "complaints":
		complaints, err := admin.ListComplaints(ctx)
		if err != nil {
			return err
		}
		c.renderComplaints(complaints)
	case "ban":
		id, err := idArg(args[1:], "用户编号")
		if err != nil {
			return err
		}
		if err := admin.BanUser(ctx, id, strings.Join(args[2:], " ")); err != nil {
			return err
		}
		c.println("用户已封禁")
	case "takedown":
		id, err := idArg(args[1:], "商品编号")
		if err != nil {
			return err
		}
		if err := admin.TakedownProduct(ctx, id, strings.Join(args[2:], " ")); err != nil {
			return err
		}
		c.println("商品已违规下架")
	case "handle":
		id, err := idArg(args[1:], "投诉编号")
		if err != nil {
			return err
		}
		if len(args) < 3 {
			return userError("请选择处理状态：处理中|已解决|已驳回|待处理")
		}
		if err := admin.HandleComplaint(ctx, id, args[2], strings.Join(args[3:], " ")); err != nil {
			return err
		}
		c.println("已更新投诉状态")
	default:
		return userError("未知的后台命令 " + args[0])
	}
	return nil
}
