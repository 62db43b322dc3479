package domain

import "errors"

var (
	// ErrInvalidRequest is returned when the caller passes a blank name, a non-positive budget or bad paging
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrMarketplaceFailure is returned when the live marketplace call fails or returns malformed data
	ErrMarketplaceFailure = errors.New("marketplace request failed")

	// ErrMarketplaceNotConfigured is returned when no marketplace API key is set
	ErrMarketplaceNotConfigured = errors.New("marketplace api key not configured")

	// ErrFetchFailed is returned by the product source when the live call fails and mock fallback is disabled
	ErrFetchFailed = errors.New("product fetch failed")

	// ErrAINotConfigured is returned when no model API key is set
	ErrAINotConfigured = errors.New("ai api key not configured")

	// ErrAIFailure is returned when the model call fails or returns nothing usable
	ErrAIFailure = errors.New("ai request failed")

	// ErrNoJSONObject is returned when free text holds no brace-delimited object
	ErrNoJSONObject = errors.New("no json object found")
)
