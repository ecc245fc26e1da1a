package console

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"marketplace/backend/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

func formatPrice(v float64) string {
	return "¥" + decimal.NewFromFloat(v).StringFixed(2)
}

func (c *Console) table(header string, rows func(w *tabwriter.Writer)) {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	_ = w.Flush()
}

func (c *Console) renderCatalog(products []domain.Product) {
	if len(products) == 0 {
		c.println("没有找到商品")
		return
	}
	c.table("编号\t商品标题\t价格", func(w *tabwriter.Writer) {
		for _, p := range products {
			fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Title, formatPrice(p.Price))
		}
	})
}

func (c *Console) renderProduct(p domain.Product) {
	c.printf("%s\n", p.Title)
	c.printf("分类：%s  新旧：%s  价格：%s\n", p.Category, p.Condition, formatPrice(p.Price))
	c.printf("库存：%d  图片：%d 张  状态：%s\n", p.Stock, p.ImageCount, p.Status)
	c.printf("联系方式：%s\n", p.Contact)
	c.printf("商品描述：\n%s\n", p.Description)
}

func (c *Console) renderUsers(users []domain.User) {
	c.table("编号\t用户名\t手机号\t身份\t状态", func(w *tabwriter.Writer) {
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Phone, u.Role, u.Status)
		}
	})
}

func (c *Console) renderProducts(products []domain.Product) {
	c.table("编号\t商品标题\t卖家\t价格\t库存\t状态", func(w *tabwriter.Writer) {
		for _, p := range products {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\t%s\n", p.ID, p.Title, p.SellerID, formatPrice(p.Price), p.Stock, p.Status)
		}
	})
}

func (c *Console) renderOrders(orders []domain.Order) {
	c.table("编号\t买家\t商品\t数量\t金额\t状态\t创建时间", func(w *tabwriter.Writer) {
		for _, o := range orders {
			fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\t%s\t%s\n", o.ID, o.BuyerID, o.ProductID, o.Quantity,
				formatPrice(o.Amount), o.Status, o.CreatedAt.Format(timeLayout))
		}
	})
}

func (c *Console) renderComplaints(complaints []domain.Complaint) {
	c.table("编号\t投诉人\t类型\t对象\t状态\t原因\t处理结果", func(w *tabwriter.Writer) {
		for _, cm := range complaints {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n", cm.ID, cm.ComplainantID, cm.Type,
				complaintTarget(cm), cm.Status, cm.Reason, cm.Result)
		}
	})
}

func complaintTarget(cm domain.Complaint) string {
	switch {
	case cm.ProductID != nil:
		return "商品 " + strconv.Itoa(*cm.ProductID)
	case cm.OrderID != nil:
		return "订单 " + strconv.Itoa(*cm.OrderID)
	default:
		return "-"
	}
}
