package authsdk

// ============================================================================
// Envelope
// ============================================================================

// Result codes carried in APIResponse.Code.
const (
	CodeOK    = 0
	CodeError = 1
)

// APIResponse is the envelope every CRM endpoint (except the health checks)
// answers with.
type APIResponse[T any] struct {
	// Code is 0 on success and 1 on failure
	Code int `json:"code"`

	// Message is a human-readable outcome
	Message string `json:"message"`

	// Data is the payload; absent on failure
	Data T `json:"data"`

	// Timestamp is the server time in Unix milliseconds
	Timestamp int64 `json:"timestamp"`
}

// ============================================================================
// Auth Types
// ============================================================================

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned from POST /auth/login.
type LoginResponse struct {
	// Token is the signed bearer token
	Token string `json:"token"`

	// TokenType is always "Bearer"
	TokenType string `json:"tokenType"`

	// ExpiresIn is the token lifetime in seconds
	ExpiresIn int64 `json:"expiresIn"`

	UserInfo UserInfo `json:"userInfo"`
}

// UserInfo is the public view of a CRM user.
type UserInfo struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Avatar         string `json:"avatar"`
	DepartmentName string `json:"departmentName"`
	RoleName       string `json:"roleName"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status ("ok" or "degraded")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the user store connection status
	Database string `json:"database,omitempty"`

	// Cache indicates the directory cache status, when one is configured
	Cache string `json:"cache,omitempty"`

	// Upstreams maps gateway route prefixes to their reachability
	Upstreams map[string]string `json:"upstreams,omitempty"`
}
