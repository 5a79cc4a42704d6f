package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey int

const tenantIDKey ctxKey = iota

// TenantHeader carries the authenticated tenant's ID, set by the gateway
// in front of this service.
const TenantHeader = "X-Tenant-ID"

// requireTenant rejects requests without a valid tenant ID header and
// stores the parsed ID in the request context.
func requireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(TenantHeader)
		if raw == "" {
			respondError(w, http.StatusUnauthorized, "missing_tenant", "X-Tenant-ID header is required")
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_tenant", "X-Tenant-ID must be a UUID")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tenantIDKey, id)))
	})
}

func tenantID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(tenantIDKey).(uuid.UUID)
	return id, ok
}

// TenantLogExtractor injects the tenant ID into every log record emitted
// while handling the request.
func TenantLogExtractor(ctx context.Context) (slog.Attr, bool) {
	if id, ok := tenantID(ctx); ok {
		return slog.String("tenant_id", id.String()), true
	}
	return slog.Attr{}, false
}
