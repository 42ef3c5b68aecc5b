package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"directory-service/internal/models"
	"directory-service/internal/redisclient"
	"directory-service/internal/service"
	"directory-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	businessService *service.BusinessService
	paymentService  *service.PaymentService
	advertService   *service.AdvertService
	gateway         service.GatewayClient
	redis           *redisclient.Client
	rateLimit       int
	rateWindow      time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(
	businessService *service.BusinessService,
	paymentService *service.PaymentService,
	advertService *service.AdvertService,
	gateway service.GatewayClient,
	redis *redisclient.Client,
	rateLimit int,
	rateWindow time.Duration,
) *Handler {
	return &Handler{
		businessService: businessService,
		paymentService:  paymentService,
		advertService:   advertService,
		gateway:         gateway,
		redis:           redis,
		rateLimit:       rateLimit,
		rateWindow:      rateWindow,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/businesses", h.registerBusiness)
		v1.GET("/businesses/:id", h.getBusiness)
		v1.GET("/businesses/:id/features/:feature", h.checkFeature)

		v1.POST("/payments/initiate", h.rateLimitMiddleware(), h.initiatePayment)
		v1.POST("/payments/webhook", h.paymentWebhook)
		v1.GET("/payments/:reference", h.getPayment)

		v1.POST("/adverts", h.createAdvert)
		v1.PUT("/adverts/:id", h.updateAdvert)
		v1.DELETE("/adverts/:id", h.deleteAdvert)

		v1.POST("/products", h.createProduct)

		v1.PUT("/admin/businesses/:id/status", h.setVerificationStatus)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// registerBusiness handles business registration
func (h *Handler) registerBusiness(c *gin.Context) {
	var req service.RegisterBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	business, err := h.businessService.RegisterBusiness(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, business)
}

// getBusiness handles get business by ID
func (h *Handler) getBusiness(c *gin.Context) {
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	business, adverts, err := h.businessService.GetBusiness(c.Request.Context(), businessID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"business": business,
		"adverts":  adverts,
	})
}

// checkFeature reports whether a business's tier unlocks a feature
func (h *Handler) checkFeature(c *gin.Context) {
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	allowed, err := h.businessService.CheckFeatureAccess(c.Request.Context(), businessID, c.Param("feature"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feature": c.Param("feature"),
		"allowed": allowed,
	})
}

// setVerificationStatus handles the admin verification decision
func (h *Handler) setVerificationStatus(c *gin.Context) {
	businessID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	business, err := h.businessService.SetVerificationStatus(c.Request.Context(), businessID, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, business)
}

// initiatePayment handles payment initiation
func (h *Handler) initiatePayment(c *gin.Context) {
	var req service.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.paymentService.InitiatePayment(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// paymentWebhook handles the processor's outcome notification. Duplicate
// deliveries answer 200 so the processor stops retrying.
func (h *Handler) paymentWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable body"})
		return
	}

	if sig := c.GetHeader("X-Gateway-Signature"); sig != "" {
		if !h.gateway.VerifyWebhookSignature(body, sig) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
			return
		}
	}

	var req service.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Reference == "" || req.ProcessorStatus == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}
	req.RawPayload = string(body)

	result, err := h.paymentService.HandleWebhook(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if result.Duplicate {
		c.JSON(http.StatusOK, gin.H{"status": "already_processed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

// getPayment handles get payment by reference
func (h *Handler) getPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// createAdvert handles advert creation
func (h *Handler) createAdvert(c *gin.Context) {
	var req service.CreateAdvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	advert, err := h.advertService.CreateAdvert(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, advert)
}

// updateAdvert handles advert edits
func (h *Handler) updateAdvert(c *gin.Context) {
	advertID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateAdvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	advert, err := h.advertService.UpdateAdvert(c.Request.Context(), advertID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, advert)
}

// deleteAdvert handles advert deletion
func (h *Handler) deleteAdvert(c *gin.Context) {
	advertID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.advertService.DeleteAdvert(c.Request.Context(), advertID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// createProduct handles product listing
func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, err := h.advertService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// writeError maps the error taxonomy to HTTP statuses. Quota and gating
// violations are expected outcomes, not server errors.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrQuotaExceeded), errors.Is(err, models.ErrFeatureNotAvailable):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidTier), errors.Is(err, models.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		util.GetLogger().Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// rateLimitMiddleware throttles payment initiation per client using the
// shared Redis counter, so limits hold across service instances.
func (h *Handler) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.redis == nil || h.rateLimit <= 0 {
			c.Next()
			return
		}

		count, err := h.redis.IncrWindow(c.Request.Context(), "payments:"+c.ClientIP(), h.rateWindow)
		if err != nil {
			// fail open: the limiter is protective, not load-bearing
			c.Next()
			return
		}

		if count > int64(h.rateLimit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
