package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/example/forum-platform/internal/platform/api"
	"github.com/example/forum-platform/internal/platform/auth"
	"github.com/example/forum-platform/internal/platform/httpserver"
	"github.com/example/forum-platform/services/comments/internal/service"
)

const maxContentLength = 1000

type createCommentRequest struct {
	Content          string   `json:"content"`
	ParentID         *string  `json:"parent_id,omitempty"`
	MentionedUserIDs []string `json:"mentioned_user_ids,omitempty"`
}

type updateCommentRequest struct {
	Content          string   `json:"content"`
	MentionedUserIDs []string `json:"mentioned_user_ids,omitempty"`
}

// CreateComment handles POST /v1/posts/{post_id}/comments
func CreateComment(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", requestID(r))
			return
		}

		postID := strings.TrimSpace(chi.URLParam(r, "post_id"))
		if postID == "" {
			api.BadRequest(w, "MISSING_ID", "post_id is required", requestID(r), nil)
			return
		}

		var req createCommentRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", requestID(r), nil)
			return
		}
		if !validContent(req.Content) {
			api.BadRequest(w, "INVALID_CONTENT", "content must be 1-1000 characters", requestID(r), nil)
			return
		}
		if req.ParentID != nil && strings.TrimSpace(*req.ParentID) == "" {
			api.BadRequest(w, "INVALID_PARENT", "parent_id must not be blank", requestID(r), nil)
			return
		}

		created, err := svc.Create(r.Context(), service.CreateRequest{
			PostID:           postID,
			ParentID:         req.ParentID,
			Content:          req.Content,
			MentionedUserIDs: req.MentionedUserIDs,
		}, userID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetTree handles GET /v1/posts/{post_id}/comments/tree
func GetTree(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID := strings.TrimSpace(chi.URLParam(r, "post_id"))
		if postID == "" {
			api.BadRequest(w, "MISSING_ID", "post_id is required", requestID(r), nil)
			return
		}

		nodes, err := svc.TreeByPost(r.Context(), postID, readOptions(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, nodes)
	}
}

// GetThread handles GET /v1/posts/{post_id}/comments/thread
func GetThread(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID := strings.TrimSpace(chi.URLParam(r, "post_id"))
		if postID == "" {
			api.BadRequest(w, "MISSING_ID", "post_id is required", requestID(r), nil)
			return
		}

		entries, err := svc.ThreadByPost(r.Context(), postID, readOptions(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, entries)
	}
}

// UpdateComment handles PUT /v1/comments/{comment_id}
func UpdateComment(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", requestID(r))
			return
		}

		commentID := strings.TrimSpace(chi.URLParam(r, "comment_id"))
		if commentID == "" {
			api.BadRequest(w, "MISSING_ID", "comment_id is required", requestID(r), nil)
			return
		}

		var req updateCommentRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", requestID(r), nil)
			return
		}
		if !validContent(req.Content) {
			api.BadRequest(w, "INVALID_CONTENT", "content must be 1-1000 characters", requestID(r), nil)
			return
		}

		updated, err := svc.Update(r.Context(), commentID, service.UpdateRequest{
			Content:          req.Content,
			MentionedUserIDs: req.MentionedUserIDs,
		}, userID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteComment handles DELETE /v1/comments/{comment_id}
func DeleteComment(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", requestID(r))
			return
		}

		commentID := strings.TrimSpace(chi.URLParam(r, "comment_id"))
		if commentID == "" {
			api.BadRequest(w, "MISSING_ID", "comment_id is required", requestID(r), nil)
			return
		}

		deleted, err := svc.Remove(r.Context(), commentID, userID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, deleted)
	}
}

// AdminDeleteComment handles DELETE /v1/admin/comments/{comment_id}.
// Routed behind the admin middleware; any comment may be tombstoned.
func AdminDeleteComment(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", requestID(r))
			return
		}

		commentID := strings.TrimSpace(chi.URLParam(r, "comment_id"))
		if commentID == "" {
			api.BadRequest(w, "MISSING_ID", "comment_id is required", requestID(r), nil)
			return
		}

		deleted, err := svc.AdminRemove(r.Context(), commentID, userID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, deleted)
	}
}

// LikeComment handles POST /v1/comments/{comment_id}/like
func LikeComment(svc *service.Service) http.HandlerFunc {
	return counterHandler(func(r *http.Request, id string) (any, error) {
		return svc.Like(r.Context(), id)
	})
}

// ReportComment handles POST /v1/comments/{comment_id}/report
func ReportComment(svc *service.Service) http.HandlerFunc {
	return counterHandler(func(r *http.Request, id string) (any, error) {
		return svc.Report(r.Context(), id)
	})
}

func counterHandler(bump func(r *http.Request, id string) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID := strings.TrimSpace(chi.URLParam(r, "comment_id"))
		if commentID == "" {
			api.BadRequest(w, "MISSING_ID", "comment_id is required", requestID(r), nil)
			return
		}

		c, err := bump(r, commentID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, c)
	}
}

func readOptions(r *http.Request) service.ReadOptions {
	return service.ReadOptions{
		IncludeDeleted: boolParam(r, "include_deleted"),
		IncludeAuthor:  boolParam(r, "include_author"),
	}
}

func boolParam(r *http.Request, name string) bool {
	v := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name)))
	return v == "1" || v == "true"
}

func validContent(content string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(content))
	return n >= 1 && n <= maxContentLength
}

func requestID(r *http.Request) string {
	return httpserver.RequestIDFromContext(r.Context())
}

// writeServiceError maps the lifecycle error taxonomy onto HTTP statuses.
// Anything unclassified is an infrastructure failure.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case service.IsNotFound(err):
		api.NotFound(w, "NOT_FOUND", err.Error(), requestID(r))
	case service.IsInvalidRequest(err):
		api.BadRequest(w, "INVALID_REQUEST", err.Error(), requestID(r), nil)
	case service.IsForbidden(err):
		api.Forbidden(w, "FORBIDDEN", err.Error(), requestID(r))
	default:
		api.Internal(w, requestID(r))
	}
}
