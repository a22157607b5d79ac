package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"redesocial/internal/httputil"
	"redesocial/internal/model"
	"redesocial/internal/service"
	"redesocial/internal/transport/http/middleware"
)

// FriendshipHandler handles friend request and friend list endpoints
type FriendshipHandler struct {
	friendshipService *service.FriendshipService
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendshipService *service.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendshipService: friendshipService}
}

// SendRequest handles POST /api/friends/requests/{userID}
func (h *FriendshipHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	addresseeID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user id")
		return
	}

	if err := h.friendshipService.SendRequest(r.Context(), requesterID, addresseeID); err != nil {
		switch {
		case errors.Is(err, model.ErrCannotBefriendSelf):
			httputil.WriteBadRequest(w, "Cannot send a friend request to yourself")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrFriendshipExists):
			httputil.WriteConflict(w, "Friend request or friendship already exists")
		default:
			log.Printf("[FriendshipHandler] send request failed: %v", err)
			httputil.WriteInternalError(w, "Failed to send friend request")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Friend request sent"})
}

// AcceptRequest handles POST /api/friends/requests/{userID}/accept
// userID is the requester whose pending request is being accepted.
func (h *FriendshipHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	responderID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	requesterID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user id")
		return
	}

	if err := h.friendshipService.AcceptRequest(r.Context(), responderID, requesterID); err != nil {
		switch {
		case errors.Is(err, model.ErrFriendRequestNotFound):
			httputil.WriteNotFound(w, "Friend request not found")
		default:
			log.Printf("[FriendshipHandler] accept request failed: %v", err)
			httputil.WriteInternalError(w, "Failed to accept friend request")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Friend request accepted"})
}

// RejectRequest handles DELETE /api/friends/requests/{userID}
func (h *FriendshipHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	responderID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	requesterID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user id")
		return
	}

	if err := h.friendshipService.RejectRequest(r.Context(), responderID, requesterID); err != nil {
		switch {
		case errors.Is(err, model.ErrFriendRequestNotFound):
			httputil.WriteNotFound(w, "Friend request not found")
		default:
			log.Printf("[FriendshipHandler] reject request failed: %v", err)
			httputil.WriteInternalError(w, "Failed to reject friend request")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Friend request rejected"})
}

// ListFriends handles GET /api/friends
func (h *FriendshipHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	friends, err := h.friendshipService.FriendsOf(r.Context(), userID)
	if err != nil {
		log.Printf("[FriendshipHandler] list friends failed: %v", err)
		httputil.WriteInternalError(w, "Failed to list friends")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, friends)
}

// ListPending handles GET /api/friends/requests
func (h *FriendshipHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	pending, err := h.friendshipService.PendingRequestsFor(r.Context(), userID)
	if err != nil {
		log.Printf("[FriendshipHandler] list pending failed: %v", err)
		httputil.WriteInternalError(w, "Failed to list friend requests")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pending)
}
