package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Enum values are their canonical wire labels. Several of them are
// natural-language strings and must be kept byte-for-byte for compatibility
// with existing data files.

type UserRole string

const (
	RoleBuyer  UserRole = "BUYER"
	RoleSeller UserRole = "SELLER"
	RoleAdmin  UserRole = "ADMIN"
)

type UserStatus string

const (
	UserStatusNormal UserStatus = "NORMAL"
	UserStatusBanned UserStatus = "BANNED"
)

// ConditionLevel constants are declared from best to worst.
type ConditionLevel string

const (
	ConditionNew      ConditionLevel = "全新"
	ConditionNineNine ConditionLevel = "99新"
	ConditionNineFive ConditionLevel = "95新"
	ConditionNine     ConditionLevel = "9成新"
)

type ProductStatus string

const (
	ProductStatusOnSale   ProductStatus = "在售"
	ProductStatusOffShelf ProductStatus = "下架"
	// ProductStatusDeleted is reserved; nothing sets it yet.
	ProductStatusDeleted  ProductStatus = "删除"
	ProductStatusTakedown ProductStatus = "违规下架"
)

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "已创建"
	OrderStatusPaid      OrderStatus = "已支付"
	OrderStatusCompleted OrderStatus = "已完成"
	OrderStatusCancelled OrderStatus = "已取消"
)

type ComplaintType string

const (
	ComplaintProductViolation ComplaintType = "商品违规"
	ComplaintOrderDispute     ComplaintType = "订单纠纷"
)

type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "待处理"
	ComplaintStatusInProgress ComplaintStatus = "处理中"
	ComplaintStatusResolved   ComplaintStatus = "已解决"
	ComplaintStatusRejected   ComplaintStatus = "已驳回"
)

var ErrUnknownLabel = errors.New("unknown label")

var (
	userRoles         = []UserRole{RoleBuyer, RoleSeller, RoleAdmin}
	userStatuses      = []UserStatus{UserStatusNormal, UserStatusBanned}
	conditionLevels   = []ConditionLevel{ConditionNew, ConditionNineNine, ConditionNineFive, ConditionNine}
	productStatuses   = []ProductStatus{ProductStatusOnSale, ProductStatusOffShelf, ProductStatusDeleted, ProductStatusTakedown}
	orderStatuses     = []OrderStatus{OrderStatusCreated, OrderStatusPaid, OrderStatusCompleted, OrderStatusCancelled}
	complaintTypes    = []ComplaintType{ComplaintProductViolation, ComplaintOrderDispute}
	complaintStatuses = []ComplaintStatus{ComplaintStatusPending, ComplaintStatusInProgress, ComplaintStatusResolved, ComplaintStatusRejected}
)

func parseLabel[T ~string](kind string, raw string, valid []T) (T, error) {
	for _, v := range valid {
		if string(v) == raw {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s %q", ErrUnknownLabel, kind, raw)
}

func ParseUserRole(raw string) (UserRole, error) {
	return parseLabel("user role", raw, userRoles)
}

func ParseUserStatus(raw string) (UserStatus, error) {
	return parseLabel("user status", raw, userStatuses)
}

func ParseConditionLevel(raw string) (ConditionLevel, error) {
	return parseLabel("condition", raw, conditionLevels)
}

func ParseProductStatus(raw string) (ProductStatus, error) {
	return parseLabel("product status", raw, productStatuses)
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	return parseLabel("order status", raw, orderStatuses)
}

func ParseComplaintType(raw string) (ComplaintType, error) {
	return parseLabel("complaint type", raw, complaintTypes)
}

func ParseComplaintStatus(raw string) (ComplaintStatus, error) {
	return parseLabel("complaint status", raw, complaintStatuses)
}

// Rank orders condition levels, 0 being brand new. Unknown levels rank last.
func (c ConditionLevel) Rank() int {
	for i, level := range conditionLevels {
		if level == c {
			return i
		}
	}
	return len(conditionLevels)
}

func ConditionLevels() []ConditionLevel {
	return append([]ConditionLevel(nil), conditionLevels...)
}

func ComplaintStatuses() []ComplaintStatus {
	return append([]ComplaintStatus(nil), complaintStatuses...)
}

// Registration role labels shown to users.
const (
	RoleLabelBuyer  = "买家"
	RoleLabelSeller = "卖家"
)

// RoleFromLabel maps a registration label to a role. Only sellers are
// recognised; every other label, admin included, registers a buyer.
func RoleFromLabel(label string) UserRole {
	switch strings.TrimSpace(label) {
	case RoleLabelSeller, string(RoleSeller):
		return RoleSeller
	default:
		return RoleBuyer
	}
}
