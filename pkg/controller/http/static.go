package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deskrelay/pkg/service/asset"
	"github.com/secmon-lab/deskrelay/pkg/utils/errutil"
	"github.com/secmon-lab/deskrelay/pkg/utils/safe"
)

// staticHandler serves the client page for paths no operation claims. Unlike an SPA there is no
// index fallback: a missing asset is a 404.
func staticHandler(store asset.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
			http.NotFound(w, r)
			return
		}

		a, err := store.Open(r.Context(), r.URL.Path)
		if err != nil {
			if errors.Is(err, asset.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to open asset", goerr.V("path", r.URL.Path)), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", a.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(a.Body)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		safe.Write(r.Context(), w, a.Body)
	}
}
