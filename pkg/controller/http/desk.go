package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/secmon-lab/deskrelay/pkg/domain/model"
	"github.com/secmon-lab/deskrelay/pkg/service/desk"
	"github.com/secmon-lab/deskrelay/pkg/usecase"
	"github.com/secmon-lab/deskrelay/pkg/utils/errutil"
	"github.com/secmon-lab/deskrelay/pkg/utils/logging"
)

const reauthorizeMessage = "Helpdesk authorization expired; an administrator must visit /token to authorize again"

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	resp, err := s.uc.Desk.ListRequests(r.Context(), r.URL.Query().Get("email"))
	writeUpstream(w, r, resp, err)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: usecase.ErrMissingRequestID.Error()})
		return
	}

	resp, err := s.uc.Desk.GetRequest(r.Context(), id)
	writeUpstream(w, r, resp, err)
}

func (s *Server) handleListApprovals(w http.ResponseWriter, r *http.Request) {
	resp, err := s.uc.Desk.ListApprovals(r.Context(), r.URL.Query().Get(desk.ApprovalEmailParam))
	writeUpstream(w, r, resp, err)
}

// writeUpstream passes a downstream reply through with its status and body unchanged
func writeUpstream(w http.ResponseWriter, r *http.Request, resp *model.UpstreamResponse, err error) {
	ctx := r.Context()

	if err != nil {
		writeUseCaseError(ctx, w, err)
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		logging.From(ctx).Error("failed to write downstream response", "error", err)
	}
}

// writeUseCaseError maps usecase sentinels to status codes. Anything unrecognized is a downstream failure.
func writeUseCaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrMissingRequestID):
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: usecase.ErrMissingRequestID.Error()})
	case errors.Is(err, usecase.ErrApprovalNotConfigured):
		writeJSON(ctx, w, http.StatusNotFound, errorResponse{Error: usecase.ErrApprovalNotConfigured.Error()})
	case errors.Is(err, usecase.ErrNoRefreshToken), errors.Is(err, usecase.ErrRefreshFailed):
		errutil.Handle(ctx, err, "helpdesk authorization is unrecoverable")
		writeJSON(ctx, w, http.StatusBadGateway, errorResponse{Error: reauthorizeMessage})
	default:
		errutil.HandleHTTP(ctx, w, err, http.StatusBadGateway)
	}
}
