package resputil

type ErrorCode int

const (
	OK ErrorCode = 0

	// General
	InvalidRequest ErrorCode = 40001
	MissingFields  ErrorCode = 40002

	// Token
	TokenExpired ErrorCode = 40101
	TokenInvalid ErrorCode = 40102

	// Login
	InvalidCredentials ErrorCode = 40106

	// Caller is not allowed to access the resource
	UserNotAllowed ErrorCode = 40301

	NotFound ErrorCode = 40401

	// The request conflicts with the current state of the resource
	StatusConflict ErrorCode = 40901
	Duplicate      ErrorCode = 40902

	TooManyRequests ErrorCode = 42901

	// Mail relay missing or failed
	NotificationFailed ErrorCode = 50001
	// Scraper backend missing or failed
	ScrapeFailed ErrorCode = 50201

	// Frontend will directly print the message without any translation
	NotSpecified ErrorCode = 99999
)
