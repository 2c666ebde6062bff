package model

import "net/http"

// UpstreamResponse is a downstream reply forwarded to the caller without modification
type UpstreamResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsUnauthorized reports whether the downstream rejected the access token
func (x *UpstreamResponse) IsUnauthorized() bool {
	return x.StatusCode == http.StatusUnauthorized
}

// IsSuccess reports a 2xx status
func (x *UpstreamResponse) IsSuccess() bool {
	return x.StatusCode >= 200 && x.StatusCode < 300
}
