package request

// ResolveDialogRequest 用户在确认框上的选择，decision 为 null 表示直接关闭
type ResolveDialogRequest struct {
	Decision *bool `json:"decision"`
}

type UpdatePreferencesRequest struct {
	Locale                 string `json:"locale" binding:"required"`
	Currency               string `json:"currency" binding:"required"`
	UseSecurityAlerts      bool   `json:"useSecurityAlerts"`
	SimulateOnChainActions bool   `json:"simulateOnChainActions"`
	UseExternalPricingData bool   `json:"useExternalPricingData"`
}
