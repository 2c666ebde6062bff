package types

// Operation is a relay endpoint addressed by an exact request path
type Operation int

const (
	OperationUnknown Operation = iota
	OperationToken
	OperationListRequests
	OperationGetRequest
	OperationListApprovals
	OperationGoogleChat
	OperationHealth
)

var operationPaths = map[Operation]string{
	OperationToken:         "/token",
	OperationListRequests:  "/requests",
	OperationGetRequest:    "/request",
	OperationListApprovals: "/assent",
	OperationGoogleChat:    "/googlechat",
	OperationHealth:        "/health",
}

// AllOperations returns every routable operation in registration order
func AllOperations() []Operation {
	return []Operation{
		OperationToken,
		OperationListRequests,
		OperationGetRequest,
		OperationListApprovals,
		OperationGoogleChat,
		OperationHealth,
	}
}

// Path returns the exact request path of the operation
func (o Operation) Path() string {
	return operationPaths[o]
}

// String returns a name used in logs
func (o Operation) String() string {
	switch o {
	case OperationToken:
		return "token"
	case OperationListRequests:
		return "list_requests"
	case OperationGetRequest:
		return "get_request"
	case OperationListApprovals:
		return "list_approvals"
	case OperationGoogleChat:
		return "google_chat"
	case OperationHealth:
		return "health"
	default:
		return "unknown"
	}
}

// OperationFor resolves an exact request path. Unknown paths yield OperationUnknown.
func OperationFor(path string) Operation {
	for op, p := range operationPaths {
		if p == path {
			return op
		}
	}
	return OperationUnknown
}
