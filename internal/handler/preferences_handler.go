package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"wallet-confirm/internal/enrich"
	"wallet-confirm/internal/handler/request"
	"wallet-confirm/internal/handler/response"
	"wallet-confirm/internal/model"
	"wallet-confirm/pkg/errno"
)

type PreferencesHandler struct {
	store *enrich.CachePreferences
}

func NewPreferencesHandler(store *enrich.CachePreferences) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

// Get 未设置时返回默认值
// GET /api/v1/preferences
func (h *PreferencesHandler) Get(c *gin.Context) {
	prefs, err := h.store.Get(c.Request.Context())
	if errors.Is(err, errno.ErrPreferencesUnset) {
		response.Success(c, gin.H{"preferences": model.DefaultPreferences(), "default": true})
		return
	}
	if err != nil {
		response.Error(c, errno.ErrCache)
		return
	}
	response.Success(c, gin.H{"preferences": prefs, "default": false})
}

// Update PUT /api/v1/preferences
func (h *PreferencesHandler) Update(c *gin.Context) {
	var req request.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	prefs := model.Preferences{
		Locale:                 req.Locale,
		Currency:               req.Currency,
		UseSecurityAlerts:      req.UseSecurityAlerts,
		SimulateOnChainActions: req.SimulateOnChainActions,
		UseExternalPricingData: req.UseExternalPricingData,
	}
	if err := h.store.Set(c.Request.Context(), prefs); err != nil {
		response.Error(c, errno.ErrCache)
		return
	}
	response.Success(c, gin.H{"preferences": prefs})
}
