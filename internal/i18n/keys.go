// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"

	// Products
	KeyProductCreated      = "product.created"
	KeyProductUpdated      = "product.updated"
	KeyProductDeleted      = "product.deleted"
	KeyProductNotFound     = "product.not_found"
	KeyProductInvalidID    = "product.invalid_id"
	KeyProductOutOfStock   = "product.out_of_stock"
	KeyProductFieldsAbsent = "product.fields_required"

	// Orders
	KeyOrderCreated           = "order.created"
	KeyOrderNotFound          = "order.not_found"
	KeyOrderInvalidID         = "order.invalid_id"
	KeyOrderStatusUpdated     = "order.status_updated"
	KeyOrderInvalidStatus     = "order.invalid_status"
	KeyOrderInvalidTransition = "order.invalid_transition"

	// Contacts
	KeyContactCreated = "contact.created"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// File Upload
	KeyFileRequired    = "file.required"
	KeyFileInvalidType = "file.invalid_type"
	KeyFileTooLarge    = "file.too_large"

	// Server
	KeyServerError = "server.error"
)
