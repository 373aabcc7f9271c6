package errors

// Error name constants carried in the failure envelope. Clients key their
// messaging off these names, so they are part of the API surface.

const (
	// ==================== Auth ====================
	NameLoginError = "Login Error"
	NameAuthError  = "Auth Error"

	// ==================== Validation ====================
	NameValidationError = "Validation Error"

	// ==================== Books ====================
	NameCreateBookError = "Create Book Error"
	NameGetBookError    = "Get Book Error"
	NameUpdateBookError = "Update Book Error"
	NameDeleteBookError = "Delete Book Error"
	NameReviewError     = "Review Error"

	// ==================== Categories ====================
	NameCategoryError = "Category Error"

	// ==================== Orders ====================
	NameCreateOrderError = "Create Order Error"
	NameGetOrderError    = "Get Order Error"
	NameOrderError       = "Order Error"

	// ==================== Cart ====================
	NameCartError = "Cart Error"

	// ==================== Upload ====================
	NameUploadError = "Upload Error"

	// ==================== Internal ====================
	NameInternalError = "Internal Error"
)
