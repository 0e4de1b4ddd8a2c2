package httputil

// Machine-readable error codes returned alongside error messages.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidSortField   = "INVALID_SORT_FIELD"
	CodeInvalidQueryParam  = "INVALID_QUERY_PARAM"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeInternalError      = "INTERNAL_ERROR"

	CodeMissingAuth        = "MISSING_AUTH"
	CodeInvalidAuthHeader  = "INVALID_AUTH_HEADER"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidTokenUserID = "INVALID_TOKEN_USER_ID"

	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeEmailAlreadyExists   = "EMAIL_ALREADY_EXISTS"
	CodeRefreshTokenRequired = "REFRESH_TOKEN_REQUIRED"
	CodeInvalidRefreshToken  = "INVALID_REFRESH_TOKEN"
	CodeTooManyRequests      = "TOO_MANY_REQUESTS"
)
