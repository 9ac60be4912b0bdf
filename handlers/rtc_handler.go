package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/auth"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/middleware"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/rtc"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/services"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/utils"
)

// TokenIssuer signs room tokens for the RTC provider
type TokenIssuer interface {
	Configured() bool
	Issue(g rtc.Grant) (*rtc.Token, error)
}

// RTCTokenRequest represents a request for a room token
type RTCTokenRequest struct {
	ChannelName string `json:"channelName" validate:"max=128"`
	Publisher   bool   `json:"publisher"`
	TTLSeconds  int    `json:"ttlSeconds" validate:"gte=0"`
}

// RTCTokenResponse is returned on success
type RTCTokenResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	ChannelName string    `json:"channelName"`
}

// RTCHandler issues real-time room tokens
type RTCHandler struct {
	issuer TokenIssuer
	logger *zap.Logger
}

// NewRTCHandler creates a new RTCHandler
func NewRTCHandler(issuer TokenIssuer, logger *zap.Logger) *RTCHandler {
	return &RTCHandler{
		issuer: issuer,
		logger: logger,
	}
}

// HandleToken handles POST /api/v1/rtc/token
func (h *RTCHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller := middleware.GetIdentityFromContext(ctx)
	if caller == nil {
		HandleServiceError(w, services.ErrUnauthorized, h.logger)
		return
	}

	if !h.issuer.Configured() {
		HandleServiceError(w, services.ErrRTCNotConfigured.Wrap(rtc.ErrNotConfigured), h.logger)
		return
	}

	var req RTCTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	channel := strings.TrimSpace(req.ChannelName)
	if channel == "" {
		HandleServiceError(w, services.ErrChannelRequired, h.logger)
		return
	}

	if req.Publisher && !caller.HasRole(auth.RoleTeacher, auth.RoleAdmin) {
		HandleServiceError(w, services.ErrPublishDenied, h.logger)
		return
	}

	token, err := h.issuer.Issue(rtc.Grant{
		Identity: caller.ID,
		Room:     channel,
		Publish:  req.Publisher,
		TTL:      time.Duration(req.TTLSeconds) * time.Second,
	})
	if err != nil {
		if errors.Is(err, rtc.ErrNotConfigured) {
			HandleServiceError(w, services.ErrRTCNotConfigured.Wrap(err), h.logger)
			return
		}
		HandleServiceError(w, services.WrapInternal("failed to issue rtc token", err), h.logger)
		return
	}

	h.logger.Info("rtc token issued",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
		zap.String("identity", caller.ID),
		zap.String("channel", channel),
		zap.Bool("publisher", req.Publisher))

	_ = utils.WriteOK(w, RTCTokenResponse{
		Token:       token.Value,
		ExpiresAt:   token.ExpiresAt,
		ChannelName: channel,
	})
}
