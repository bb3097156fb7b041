package httpx

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/aussiebroadwan/crm/pkg/jwtx"
)

// Headers the gateway uses to pass a verified identity to upstream services.
const (
	HeaderUserID       = "X-User-Id"
	HeaderUsername     = "X-Username"
	HeaderUserName     = "X-User-Name"
	HeaderDepartmentID = "X-Department-Id"
	HeaderRoleID       = "X-Role-Id"
)

var identityHeaders = []string{
	HeaderUserID,
	HeaderUsername,
	HeaderUserName,
	HeaderDepartmentID,
	HeaderRoleID,
}

// StripIdentityHeaders removes any identity headers a client tried to send.
func StripIdentityHeaders(h http.Header) {
	for _, k := range identityHeaders {
		h.Del(k)
	}
}

// SetIdentityHeaders replaces the identity headers with values from id. The
// display name is query-escaped so non-ASCII names survive.
func SetIdentityHeaders(h http.Header, id jwtx.Identity) {
	StripIdentityHeaders(h)
	h.Set(HeaderUserID, strconv.FormatInt(id.UserID, 10))
	h.Set(HeaderUsername, id.Username)
	if id.Name != "" {
		h.Set(HeaderUserName, url.QueryEscape(id.Name))
	}
	if id.DepartmentID != 0 {
		h.Set(HeaderDepartmentID, strconv.FormatInt(id.DepartmentID, 10))
	}
	if id.RoleID != 0 {
		h.Set(HeaderRoleID, strconv.FormatInt(id.RoleID, 10))
	}
}

// IdentityFromHeaders reads an identity set by SetIdentityHeaders. It is only
// meaningful behind the gateway, which strips client supplied values.
func IdentityFromHeaders(h http.Header) (jwtx.Identity, bool) {
	userID, err := strconv.ParseInt(h.Get(HeaderUserID), 10, 64)
	if err != nil || userID <= 0 {
		return jwtx.Identity{}, false
	}
	username := h.Get(HeaderUsername)
	if username == "" {
		return jwtx.Identity{}, false
	}

	id := jwtx.Identity{UserID: userID, Username: username}
	if name, err := url.QueryUnescape(h.Get(HeaderUserName)); err == nil {
		id.Name = name
	}
	id.DepartmentID, _ = strconv.ParseInt(h.Get(HeaderDepartmentID), 10, 64)
	id.RoleID, _ = strconv.ParseInt(h.Get(HeaderRoleID), 10, 64)
	return id, true
}

// TrustedIdentityMiddleware is for services that sit behind the gateway: it
// lifts the forwarded identity headers onto the context and rejects requests
// that arrive without them.
func TrustedIdentityMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromHeaders(r.Header)
			if !ok {
				WriteBearerError(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
