package handler

import (
	"strconv"

	"defidojo/backend/internal/middleware"
	"defidojo/backend/internal/model"
	"defidojo/backend/internal/service"
	"defidojo/backend/internal/util"

	"github.com/gin-gonic/gin"
)

// PlayerHandler handles session, registration and query endpoints
type PlayerHandler struct {
	playerService *service.PlayerService
	hub           *service.WSHub
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerService *service.PlayerService, hub *service.WSHub) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
		hub:           hub,
	}
}

// OpenSession issues a demo session token for a wallet address
// POST /api/v1/auth/session
func (h *PlayerHandler) OpenSession(c *gin.Context) {
	var req model.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendValidationError(c, err.Error())
		return
	}

	session, err := h.playerService.OpenSession(req.Address)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, session)
}

// Register activates the player's account
// POST /api/v1/players/register
func (h *PlayerHandler) Register(c *gin.Context) {
	address := middleware.PlayerAddress(c)

	info, err := h.playerService.Register(c.Request.Context(), address)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendCreated(c, info, "Account registered")
}

// GetPlayerInfo returns the aggregate player view
// GET /api/v1/players/me
func (h *PlayerHandler) GetPlayerInfo(c *gin.Context) {
	address := middleware.PlayerAddress(c)
	util.SendSuccess(c, h.playerService.GetPlayerInfo(address))
}

// GetAccount returns the full account snapshot
// GET /api/v1/players/me/account
func (h *PlayerHandler) GetAccount(c *gin.Context) {
	address := middleware.PlayerAddress(c)
	util.SendSuccess(c, h.playerService.GetAccount(address))
}

// GetTokenPosition returns balance, collateral, debt and staked amount
// for a single token
// GET /api/v1/players/me/tokens/:token
func (h *PlayerHandler) GetTokenPosition(c *gin.Context) {
	address := middleware.PlayerAddress(c)

	token, ok := parseToken(c, c.Param("token"))
	if !ok {
		return
	}

	util.SendSuccess(c, gin.H{
		"token":      token,
		"balance":    h.playerService.GetBalance(address, token),
		"collateral": h.playerService.GetCollateral(address, token),
		"debt":       h.playerService.GetDebt(address, token),
		"staked":     h.playerService.GetStaked(address, token),
	})
}

// Leaderboard returns the top players by total trade volume
// GET /api/v1/leaderboard
func (h *PlayerHandler) Leaderboard(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit <= 0 {
		limit = 10
	}

	entries, svcErr := h.playerService.Leaderboard(c.Request.Context(), limit)
	if svcErr != nil {
		util.SendError(c, svcErr)
		return
	}

	util.SendSuccess(c, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}

// ListScenarios returns the defined teaching scenarios
// GET /api/v1/scenarios
func (h *PlayerHandler) ListScenarios(c *gin.Context) {
	util.SendSuccess(c, gin.H{
		"scenarios": h.playerService.ListScenarios(),
	})
}

// StartScenario funds the player with a scenario's starting balances
// POST /api/v1/scenarios/:tag/start
func (h *PlayerHandler) StartScenario(c *gin.Context) {
	address := middleware.PlayerAddress(c)

	tag, ok := model.ParseScenarioTag(c.Param("tag"))
	if !ok {
		util.SendError(c, util.ErrBadRequest("Unknown scenario tag: "+c.Param("tag")))
		return
	}

	state, err := h.playerService.StartScenario(c.Request.Context(), address, tag)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccessWithMessage(c, state, "Scenario started")
}

// ListProposals returns the open governance proposals
// GET /api/v1/governance/proposals
func (h *PlayerHandler) ListProposals(c *gin.Context) {
	proposals, err := h.playerService.ListProposals(c.Request.Context())
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, gin.H{
		"proposals": proposals,
	})
}

// ServeWS upgrades the request to a WebSocket event stream
// GET /api/v1/ws
func (h *PlayerHandler) ServeWS(c *gin.Context) {
	address := middleware.PlayerAddress(c)
	h.hub.ServeWS(c, address)
}
