package http_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t, newUpstream())

	rec := env.do(t, http.MethodGet, "/health", "")
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, decodeJSON(t, rec)["status"]).Equal("ok")
}

func TestToken(t *testing.T) {
	t.Run("redirects to the consent page without touching the store", func(t *testing.T) {
		env := newTestEnv(t, newUpstream())
		env.storeTokens(t, "old-access", "old-refresh")

		rec := env.do(t, http.MethodGet, "/token", "")
		gt.Value(t, rec.Code).Equal(http.StatusFound)

		loc, err := url.Parse(rec.Header().Get("Location"))
		gt.NoError(t, err).Required()
		q := loc.Query()
		gt.Value(t, loc.Path).Equal("/oauth/v2/auth")
		gt.Value(t, q.Get("response_type")).Equal("code")
		gt.Value(t, q.Get("client_id")).Equal("client-id")
		gt.Value(t, q.Get("redirect_uri")).Equal("https://relay.example.com/token")
		gt.Value(t, q.Get("access_type")).Equal("offline")
		gt.Value(t, q.Get("scope")).Equal("SDPOnDemand.requests.ALL")

		gt.Array(t, env.upstream.tokenCalls()).Length(0)
		access, err := env.repo.GetAccessToken(t.Context())
		gt.NoError(t, err)
		gt.Value(t, access).Equal("old-access")
		refresh, err := env.repo.GetRefreshToken(t.Context())
		gt.NoError(t, err)
		gt.Value(t, refresh).Equal("old-refresh")
	})

	t.Run("stores both tokens from the code exchange", func(t *testing.T) {
		env := newTestEnv(t, newUpstream())

		rec := env.do(t, http.MethodGet, "/token?code=auth-code", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, decodeJSON(t, rec)["status"]).Equal("Tokens stored successfully")

		calls := env.upstream.tokenCalls()
		gt.Array(t, calls).Length(1).Required()
		gt.Value(t, calls[0].Get("grant_type")).Equal("authorization_code")
		gt.Value(t, calls[0].Get("code")).Equal("auth-code")

		access, err := env.repo.GetAccessToken(t.Context())
		gt.NoError(t, err)
		gt.Value(t, access).Equal("access-1")
		refresh, err := env.repo.GetRefreshToken(t.Context())
		gt.NoError(t, err)
		gt.Value(t, refresh).Equal("refresh-1")
	})

	t.Run("incomplete grant returns the provider payload", func(t *testing.T) {
		up := newUpstream()
		up.tokenReplies = []tokenReply{{status: http.StatusOK, body: `{"access_token":"access-only","expires_in":3600}`}}
		env := newTestEnv(t, up)

		rec := env.do(t, http.MethodGet, "/token?code=auth-code", "")
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

		var body struct {
			Error   string         `json:"error"`
			Details map[string]any `json:"details"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.Value(t, body.Error).Equal("Failed to obtain tokens")
		gt.Value(t, body.Details["access_token"]).Equal("access-only")

		access, err := env.repo.GetAccessToken(t.Context())
		gt.NoError(t, err)
		gt.Value(t, access).Equal("")
	})

	t.Run("provider rejection returns the provider payload", func(t *testing.T) {
		up := newUpstream()
		up.tokenReplies = []tokenReply{{status: http.StatusOK, body: `{"error":"invalid_code"}`}}
		env := newTestEnv(t, up)

		rec := env.do(t, http.MethodGet, "/token?code=used-code", "")
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)

		body := decodeJSON(t, rec)
		gt.Value(t, body["error"]).Equal("Failed to obtain tokens")
		gt.Value(t, body["details"]).Equal(map[string]any{"error": "invalid_code"})
		gt.Array(t, env.upstream.tokenCalls()).Length(1)
	})
}

func TestListRequests(t *testing.T) {
	t.Run("passes the ticket list through", func(t *testing.T) {
		env := newTestEnv(t, newUpstream())
		env.storeTokens(t, "access-1", "refresh-1")

		rec := env.do(t, http.MethodGet, "/requests?email=alice@example.com", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, rec.Header().Get("Content-Type")).Equal("application/json")
		gt.Value(t, rec.Body.String()).Equal(ticketListBody(2))

		gt.Array(t, env.upstream.ticketQuery).Length(1).Required()
		var input struct {
			ListInfo struct {
				RowCount       int `json:"row_count"`
				StartIndex     int `json:"start_index"`
				SearchCriteria struct {
					Field string `json:"field"`
					Value string `json:"value"`
				} `json:"search_criteria"`
			} `json:"list_info"`
		}
		gt.NoError(t, json.Unmarshal([]byte(env.upstream.ticketQuery[0].Get("input_data")), &input)).Required()
		gt.Value(t, input.ListInfo.RowCount).Equal(100)
		gt.Value(t, input.ListInfo.StartIndex).Equal(1)
		gt.Value(t, input.ListInfo.SearchCriteria.Field).Equal("requester.email_id")
		gt.Value(t, input.ListInfo.SearchCriteria.Value).Equal("alice@example.com")
		gt.Array(t, env.upstream.tokenCalls()).Length(0)
	})

	t.Run("refreshes when no access token is stored", func(t *testing.T) {
		env := newTestEnv(t, newUpstream())
		env.storeTokens(t, "", "refresh-1")

		rec := env.do(t, http.MethodGet, "/requests", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		calls := env.upstream.tokenCalls()
		gt.Array(t, calls).Length(1).Required()
		gt.Value(t, calls[0].Get("grant_type")).Equal("refresh_token")
		gt.Value(t, calls[0].Get("refresh_token")).Equal("refresh-1")

		access, err := env.repo.GetAccessToken(t.Context())
		gt.NoError(t, err)
		gt.Value(t, access).Equal("access-1")
	})

	t.Run("retries a 401 on a token just issued for an empty store", func(t *testing.T) {
		up := newUpstream()
		up.tokenReplies = []tokenReply{
			{status: http.StatusOK, body: `{"access_token":"stale-0","token_type":"Bearer","expires_in":3600}`},
			{status: http.StatusOK, body: `{"access_token":"access-1","token_type":"Bearer","expires_in":3600}`},
		}
		env := newTestEnv(t, up)
		env.storeTokens(t, "", "refresh-1")

		rec := env.do(t, http.MethodGet, "/requests", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, env.upstream.ticketCalls()).Equal([]string{
			"Zoho-oauthtoken stale-0",
			"Zoho-oauthtoken access-1",
		})
		gt.Array(t, env.upstream.tokenCalls()).Length(2)
	})

	t.Run("refreshes once and retries after a 401", func(t *testing.T) {
		env := newTestEnv(t, newUpstream())
		env.storeTokens(t, "expired", "refresh-1")

		rec := env.do(t, http.MethodGet, "/requests", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, env.upstream.ticketCalls()).Equal([]string{
			"Zoho-oauthtoken expired",
			"Zoho-oauthtoken access-1",
		})
		gt.Array(t, env.upstream.tokenCalls()).Length(1)
	})

	t.Run("passes a second 401 through without another refresh", func(t *testing.T) {
		up := newUpstream()
		up.validToken = "never-accepted"
		env := newTestEnv(t, up)
		env.storeTokens(t, "expired", "refresh-1")

		rec := env.do(t, http.MethodGet, "/requests", "")
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
		gt.String(t, rec.Body.String()).Contains("4000")
		gt.Array(t, env.upstream.ticketCalls()).Length(2)
		gt.Array(t, env.upstream.tokenCalls()).Length(1)
	})

	t.Run("rotates the refresh token only when a new one is issued", func(t *testing.T) {
		up := newUpstream()
		up.tokenReplies = []tokenReply{{status: http.StatusOK, body: `{"access_token":"access-1","refresh_token":"refresh-2"}`}}
		env := newTestEnv(t, up)
		env.storeTokens(t, "expired", "refresh-1")

		rec := env.do(t, http.MethodGet, "/requests", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		refresh, err := env.repo.GetRefreshToken(t.Context())
		gt.NoError(t, err)
		gt.Value(t, refresh).Equal("refresh-2")
	})

	t.Run("missing refresh token requires re-authorization", func(t *testing.T) {
		env := newTestEnv(t, newUpstream())

		rec := env.do(t, http.MethodGet, "/requests", "")
		gt.Value(t, rec.Code).Equal(http.StatusBadGateway)
		gt.String(t, decodeJSON(t, rec)["error"].(string)).Contains("/token")
		gt.Array(t, env.upstream.ticketCalls()).Length(0)
		gt.Array(t, env.upstream.tokenCalls()).Length(0)
	})

	t.Run("rejected refresh requires re-authorization", func(t *testing.T) {
		up := newUpstream()
		up.tokenReplies = []tokenReply{{status: http.StatusBadRequest, body: `{"error":"invalid_grant"}`}}
		env := newTestEnv(t, up)
		env.storeTokens(t, "expired", "revoked")

		rec := env.do(t, http.MethodGet, "/requests", "")
		gt.Value(t, rec.Code).Equal(http.StatusBadGateway)
		gt.String(t, decodeJSON(t, rec)["error"].(string)).Contains("/token")
		gt.Array(t, env.upstream.ticketCalls()).Length(1)

		access, err := env.repo.GetAccessToken(t.Context())
		gt.NoError(t, err)
		gt.Value(t, access).Equal("expired")
	})

	t.Run("passes other downstream errors through", func(t *testing.T) {
		up := newUpstream()
		up.ticketStatus = http.StatusInternalServerError
		up.ticketBody = `{"response_status":{"status":"failed","messages":["boom"]}}`
		env := newTestEnv(t, up)
		env.storeTokens(t, "access-1", "refresh-1")

		rec := env.do(t, http.MethodGet, "/requests", "")
		gt.Value(t, rec.Code).Equal(http.StatusInternalServerError)
		gt.Value(t, rec.Body.String()).Equal(up.ticketBody)
		gt.Array(t, env.upstream.tokenCalls()).Length(0)
	})
}

func TestGetRequest(t *testing.T) {
	t.Run("missing id is rejected before any downstream call", func(t *testing.T) {
		env := newTestEnv(t, newUpstream())
		env.storeTokens(t, "access-1", "refresh-1")

		rec := env.do(t, http.MethodGet, "/request", "")
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
		gt.Value(t, rec.Body.String()).Equal(`{"error":"Missing request ID"}`)
		gt.Array(t, env.upstream.ticketCalls()).Length(0)
		gt.Array(t, env.upstream.tokenCalls()).Length(0)
	})

	t.Run("fetches the ticket by id", func(t *testing.T) {
		up := newUpstream()
		up.ticketBody = `{"request":{"id":"42","subject":"VPN"}}`
		env := newTestEnv(t, up)
		env.storeTokens(t, "expired", "refresh-1")

		rec := env.do(t, http.MethodGet, "/request?id=42", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, rec.Body.String()).Equal(up.ticketBody)
		gt.Value(t, up.ticketPaths).Equal([]string{"/api/v3/requests/42", "/api/v3/requests/42"})
	})
}

func TestListApprovals(t *testing.T) {
	t.Run("passes approvals through", func(t *testing.T) {
		up := newUpstream()
		env := newTestEnv(t, up)
		env.storeTokens(t, "access-1", "refresh-1")

		rec := env.do(t, http.MethodGet, "/assent?strRequestorEmpEmail=alice@example.com", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, rec.Body.String()).Equal(up.approvalBody)
		gt.Array(t, up.approvalQuery).Length(1).Required()
		gt.Value(t, up.approvalQuery[0].Get("strRequestorEmpEmail")).Equal("alice@example.com")
	})

	t.Run("not found without an approval API", func(t *testing.T) {
		env := newTestEnv(t, newUpstream(), withoutApprovals())
		env.storeTokens(t, "access-1", "refresh-1")

		rec := env.do(t, http.MethodGet, "/assent?strRequestorEmpEmail=alice@example.com", "")
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestStatic(t *testing.T) {
	env := newTestEnv(t, newUpstream())

	t.Run("root serves the index", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Header().Get("Content-Type")).Contains("text/html")
		gt.Value(t, rec.Body.String()).Equal("<html>relay</html>")
	})

	t.Run("assets by path", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/script.js", "")
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Header().Get("Content-Type")).Contains("javascript")
	})

	t.Run("unknown path is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/missing.css", "")
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("operations match exact paths only", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/requests/extra", "")
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
		gt.Array(t, env.upstream.ticketCalls()).Length(0)
	})

	t.Run("non GET is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/script.js", "")
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}
