// Package auth verifies bearer tokens and maps roles to permissions. The
// tenant and user carried by a verified token are the only identity the
// services trust.
package auth

import "context"

const (
	RoleAdmin    = "ADMIN"
	RoleStaff    = "STAFF"
	RoleCustomer = "CUSTOMER"
)

const (
	PermOrdersRead      = "orders:read"
	PermOrdersWrite     = "orders:write"
	PermDeliveriesRead  = "deliveries:read"
	PermDeliveriesWrite = "deliveries:write"
	PermReviewsModerate = "reviews:moderate"
	PermPromotionsRead  = "promotions:read"
	PermPromotionsWrite = "promotions:write"
	PermAutomationWrite = "automation:write"
	PermAnalyticsRead   = "analytics:read"
	PermProductsWrite   = "products:write"
)

type Principal struct {
	UserID      string
	TenantID    string
	Role        string
	Permissions []string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
