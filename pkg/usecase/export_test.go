package usecase

// Export internal functions for testing
var (
	ToChatMarkup       = toChatMarkup
	ExtractEmail       = extractEmail
	BuildSummaryPrompt = buildSummaryPrompt
)
