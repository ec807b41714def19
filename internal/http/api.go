package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"star-exchange/internal/domain"
	"star-exchange/internal/repository"
	"star-exchange/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	admin     service.AdminService
	cryptos   service.CryptoService
	reports   service.ReportService
	jwtSecret string
	tokenTTL  time.Duration
}

func NewHandler(users service.UserService, admin service.AdminService, cryptos service.CryptoService, reports service.ReportService, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{
		users:     users,
		admin:     admin,
		cryptos:   cryptos,
		reports:   reports,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/cryptos", h.listCryptos)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authed := api.Group("", h.actorMiddleware())
		{
			authed.POST("/cryptos", h.createCrypto)
			authed.PUT("/cryptos/:id/price", h.updateCryptoPrice)

			admin := authed.Group("/admin")
			{
				admin.GET("/users", h.listUsers)
				admin.POST("/actions", h.performAction)
				admin.GET("/balances", h.listBalances)
				admin.POST("/reports", h.exportReport)
				admin.GET("/reports", h.listReports)
			}
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-Id, X-Session-Id")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createCryptoRequest struct {
	Name        string  `json:"name" binding:"required"`
	Symbol      string  `json:"symbol" binding:"required"`
	PriceUSD    float64 `json:"price_usd"`
	PriceStars  float64 `json:"price_stars"`
	TotalSupply float64 `json:"total_supply"`
}

type updatePriceRequest struct {
	PriceUSD   float64 `json:"price_usd"`
	PriceStars float64 `json:"price_stars"`
}

type adminActionRequest struct {
	Action   string  `json:"action" binding:"required"`
	UserID   int64   `json:"user_id" binding:"required"`
	CryptoID int64   `json:"crypto_id"`
	Amount   float64 `json:"amount"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	IsBlocked bool   `json:"is_blocked"`
	CreatedAt string `json:"created_at"`
}

type CryptoResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	PriceUSD    float64 `json:"price_usd"`
	PriceStars  float64 `json:"price_stars"`
	TotalSupply float64 `json:"total_supply"`
}

type BalanceEntryResponse struct {
	UserID   int64   `json:"user_id"`
	Username string  `json:"username"`
	CryptoID int64   `json:"crypto_id"`
	Symbol   string  `json:"symbol"`
	Balance  float64 `json:"balance"`
}

type ReportObjectResponse struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified,omitempty"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  userToResponse(*user),
		"token": token,
	})
}

func (h *Handler) listCryptos(c *gin.Context) {
	cryptos, err := h.cryptos.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]CryptoResponse, len(cryptos))
	for i := range cryptos {
		resp[i] = cryptoToResponse(cryptos[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createCrypto(c *gin.Context) {
	if err := h.admin.Authorize(c.Request.Context(), actorID(c)); err != nil {
		h.writeError(c, err)
		return
	}

	var req createCryptoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	crypto, err := h.cryptos.Create(c.Request.Context(), req.Name, req.Symbol, req.PriceUSD, req.PriceStars, req.TotalSupply)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": crypto.ID})
}

func (h *Handler) updateCryptoPrice(c *gin.Context) {
	if err := h.admin.Authorize(c.Request.Context(), actorID(c)); err != nil {
		h.writeError(c, err)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid crypto id"})
		return
	}

	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cryptos.UpdatePrice(c.Request.Context(), id, req.PriceUSD, req.PriceStars); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "price updated"})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context(), actorID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) performAction(c *gin.Context) {
	var req adminActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.admin.Perform(
		c.Request.Context(),
		actorID(c),
		service.Action(req.Action),
		req.UserID,
		service.ActionParams{CryptoID: req.CryptoID, Amount: req.Amount},
	)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "action completed"})
}

func (h *Handler) listBalances(c *gin.Context) {
	entries, err := h.admin.ListBalances(c.Request.Context(), actorID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]BalanceEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = BalanceEntryResponse{
			UserID:   e.UserID,
			Username: e.Username,
			CryptoID: e.CryptoID,
			Symbol:   e.Symbol,
			Balance:  e.Balance,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) exportReport(c *gin.Context) {
	location, err := h.reports.Export(c.Request.Context(), actorID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"location": location})
}

func (h *Handler) listReports(c *gin.Context) {
	objects, err := h.reports.List(c.Request.Context(), actorID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ReportObjectResponse, len(objects))
	for i, obj := range objects {
		resp[i] = ReportObjectResponse{
			Key:  obj.Key,
			Size: obj.Size,
		}
		if obj.LastModified != nil {
			resp[i].LastModified = obj.LastModified.UTC().Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// writeError maps service/repository failures onto HTTP statuses. A failed
// authorization lookup is still a denial for the caller; it surfaces as a
// 500 only so operators can tell a broken store from a revoked actor.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAdminRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
	case errors.Is(err, service.ErrUserBlocked):
		c.JSON(http.StatusForbidden, gin.H{"error": "user is blocked"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, service.ErrUnsupportedAction),
		errors.Is(err, service.ErrMissingActionParams),
		errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrReportingDisabled):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrCryptoNotFound),
		errors.Is(err, repository.ErrBalanceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		IsBlocked: user.IsBlocked,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func cryptoToResponse(crypto domain.Crypto) CryptoResponse {
	return CryptoResponse{
		ID:          crypto.ID,
		Name:        crypto.Name,
		Symbol:      crypto.Symbol,
		PriceUSD:    crypto.PriceUSD,
		PriceStars:  crypto.PriceStars,
		TotalSupply: crypto.TotalSupply,
	}
}
