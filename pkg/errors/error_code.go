package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidVersion       ErrorCode = 103
	ErrCodeInvalidSpeed         ErrorCode = 104
	ErrCodeUnknownSymbol        ErrorCode = 105

	// Fetch errors (200-299)
	ErrCodeSymbolNotFound    ErrorCode = 200
	ErrCodeSymbolFetchFailed ErrorCode = 201

	// Payload errors (300-399)
	ErrCodePayloadParseFailed ErrorCode = 300
	ErrCodeNoCloseData        ErrorCode = 301
	ErrCodeEmptySeries        ErrorCode = 302

	// Catalog errors (400-499)
	ErrCodeNoDataAvailable ErrorCode = 400

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidPeriod         ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704
)
