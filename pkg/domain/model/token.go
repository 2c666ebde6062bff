package model

// Keys of the two values kept in the token store
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// TokenPair is the OAuth credential of the deployment. There is at most one pair; expiry is not
// tracked and is discovered from a 401 of the ticketing API.
type TokenPair struct {
	AccessToken  string `json:"access_token" masq:"secret"`
	RefreshToken string `json:"refresh_token" masq:"secret"`
}

// IsComplete reports whether both tokens are present
func (x TokenPair) IsComplete() bool {
	return x.AccessToken != "" && x.RefreshToken != ""
}
