package services

import "context"

type organizationScopeKey struct{}

// WithOrganization 将写操作限定在某个组织内，范围外的记录按不存在处理
func WithOrganization(ctx context.Context, organizationID string) context.Context {
	return context.WithValue(ctx, organizationScopeKey{}, organizationID)
}

// outOfScope 记录不属于 ctx 限定的组织；未限定时总是 false
func outOfScope(ctx context.Context, organizationID string) bool {
	scope, ok := ctx.Value(organizationScopeKey{}).(string)
	return ok && scope != organizationID
}
