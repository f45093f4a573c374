// Package http exposes the prize event over gin: round state, wagers,
// history, stats and the administrator override interface.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jiyoung145900-png/daisy-vip/internal/modules/gateway/ws"
	memberHttp "github.com/jiyoung145900-png/daisy-vip/internal/modules/member/adapter/http"
	memberDomain "github.com/jiyoung145900-png/daisy-vip/internal/modules/member/domain"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/engine"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/usecase"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/wallet"
	"github.com/jiyoung145900-png/daisy-vip/pkg/logger"
)

// Handler handles prize event HTTP and websocket requests
type Handler struct {
	eng        *engine.Engine
	wagerUC    *usecase.WagerUseCase
	historyUC  *usecase.HistoryUseCase
	overrideUC *usecase.OverrideUseCase
	walletSvc  wallet.Service
	memberUC   memberDomain.MemberUseCase
	manager    *ws.Manager
	catalog    domain.Catalog
}

// NewHandler creates a new prize event HTTP handler
func NewHandler(
	eng *engine.Engine,
	wagerUC *usecase.WagerUseCase,
	historyUC *usecase.HistoryUseCase,
	overrideUC *usecase.OverrideUseCase,
	walletSvc wallet.Service,
	memberUC memberDomain.MemberUseCase,
	manager *ws.Manager,
	catalog domain.Catalog,
) *Handler {
	return &Handler{
		eng:        eng,
		wagerUC:    wagerUC,
		historyUC:  historyUC,
		overrideUC: overrideUC,
		walletSvc:  walletSvc,
		memberUC:   memberUC,
		manager:    manager,
		catalog:    catalog,
	}
}

// RegisterRoutes attaches event routes. authed must carry the member auth
// middleware; admin must carry an administrator gate on top of it.
func (h *Handler) RegisterRoutes(public, authed, admin *gin.RouterGroup) {
	public.GET("/items", h.Items)
	public.GET("/round", h.Round)
	public.GET("/history", h.History)
	public.GET("/stats", h.Stats)
	public.GET("/ws", h.HandleWebSocket)

	authed.GET("/wager", h.PendingWager)
	authed.POST("/wager", h.PlaceWager)
	authed.DELETE("/wager", h.CancelWager)
	authed.GET("/ledger", h.Ledger)
	authed.GET("/balance", h.Balance)

	admin.PUT("/overrides/:round", h.SetOverride)
	admin.DELETE("/overrides/:round", h.DeleteOverride)
}

// Items handles GET /items
func (h *Handler) Items(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.catalog})
}

// Round handles GET /round
func (h *Handler) Round(c *gin.Context) {
	c.JSON(http.StatusOK, h.eng.CurrentState())
}

// History handles GET /history
func (h *Handler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := h.historyUC.GlobalHistory(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, rec := range records {
		out = append(out, gin.H{
			"round_id":   rec.RoundID,
			"win_items":  rec.Items(),
			"created_at": rec.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"history": out})
}

// Stats handles GET /stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.historyUC.Stats(c.Request.Context(), 100)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

type placeWagerRequest struct {
	Items        []string `json:"items" binding:"required"`
	StakePerItem int64    `json:"stake_per_item" binding:"required"`
}

// PlaceWager handles POST /wager
func (h *Handler) PlaceWager(c *gin.Context) {
	var req placeWagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wager, err := h.wagerUC.PlaceWager(c.Request.Context(), memberHttp.UserID(c), req.Items, req.StakePerItem)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"wager": wager})
}

// CancelWager handles DELETE /wager
func (h *Handler) CancelWager(c *gin.Context) {
	cancelled, err := h.wagerUC.CancelWager(c.Request.Context(), memberHttp.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !cancelled {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending wager"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

// PendingWager handles GET /wager
func (h *Handler) PendingWager(c *gin.Context) {
	wager, err := h.wagerUC.GetPendingWager(c.Request.Context(), memberHttp.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wager": wager})
}

// Ledger handles GET /ledger
func (h *Handler) Ledger(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.historyUC.UserLedger(c.Request.Context(), memberHttp.UserID(c), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"round_id":      e.RoundID,
			"items_wagered": e.WageredItems(),
			"outcome_items": e.OutcomeItems(),
			"stake":         e.Stake,
			"payout":        e.Payout,
			"net":           e.Net,
			"result":        e.Result,
			"created_at":    e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"ledger": out})
}

// Balance handles GET /balance
func (h *Handler) Balance(c *gin.Context) {
	balance, err := h.walletSvc.GetBalance(c.Request.Context(), memberHttp.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

type overrideRequest struct {
	Items []string `json:"items" binding:"required"`
}

// SetOverride handles PUT /overrides/:round
func (h *Handler) SetOverride(c *gin.Context) {
	roundID, err := strconv.ParseInt(c.Param("round"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid round id"})
		return
	}

	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.overrideUC.SetOverride(c.Request.Context(), roundID, req.Items); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"round_id": roundID, "items": req.Items})
}

// DeleteOverride handles DELETE /overrides/:round
func (h *Handler) DeleteOverride(c *gin.Context) {
	roundID, err := strconv.ParseInt(c.Param("round"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid round id"})
		return
	}

	if err := h.overrideUC.DeleteOverride(c.Request.Context(), roundID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket handles GET /ws. Authentication comes from a token query
// parameter since browsers cannot set headers on websocket upgrades.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	ctx := logger.WebSocketContext(c.Request)

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	userID, _, err := h.memberUC.ValidateToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("WebSocket upgrade failed")
		return
	}

	logger.Info(ctx).Int64("user_id", userID).Msg("WebSocket connected")

	// On (re)connection, settle anything the client missed while away.
	if _, err := h.eng.ReconcileUser(ctx, userID); err != nil {
		logger.Error(ctx).Err(err).Int64("user_id", userID).Msg("Reconnect reconciliation failed")
	}

	client := h.manager.Register(conn, userID)
	go client.WritePump()
	go client.ReadPump(nil)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAlreadyPending):
		c.JSON(http.StatusConflict, gin.H{"error": "wager already pending"})
	case errors.Is(err, domain.ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient balance"})
	case errors.Is(err, domain.ErrRoundClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "round closed for wagering"})
	case errors.Is(err, domain.ErrInvalidItems), errors.Is(err, domain.ErrInvalidStake):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case engine.ErrIsRetryable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
	default:
		logger.Error(c.Request.Context()).Err(err).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
