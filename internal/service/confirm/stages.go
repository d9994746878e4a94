package confirm

import (
	"context"
	"fmt"

	"wallet-confirm/internal/enrich"
	"wallet-confirm/internal/model"
)

// Stage 1: 偏好 + 指令解码
func (o *Orchestrator) preferencesStage() Stage {
	return Stage{
		Name: "preferences",
		Tasks: []Task{
			{
				Name:  "preferences",
				Quiet: true,
				Run: func(ctx context.Context, c model.Context) (model.Partial, error) {
					prefs, err := o.preferences.Get(ctx)
					if err != nil {
						defaults := model.DefaultPreferences()
						return model.Partial{Preferences: &defaults}, err
					}
					return model.Partial{Preferences: &prefs}, nil
				},
			},
			{
				Name: "decode",
				Run: func(ctx context.Context, c model.Context) (model.Partial, error) {
					instructions, err := o.decoder.Decode(c.Payload)
					if err != nil {
						// 指令列表保持为空
						return model.Partial{}, err
					}
					return model.Partial{Instructions: instructions}, nil
				},
			},
		},
	}
}

// Stage 2: 价格 + 手续费
func (o *Orchestrator) pricingStage() Stage {
	return Stage{
		Name: "pricing",
		Tasks: []Task{
			{
				Name: "price",
				Run: func(ctx context.Context, c model.Context) (model.Partial, error) {
					if !c.Preferences.UseExternalPricingData {
						return model.Partial{PriceStatus: model.StatusFetched}, nil
					}
					network, ok := model.LookupNetwork(c.Scope)
					if !ok {
						return model.Partial{PriceStatus: model.StatusError}, fmt.Errorf("unknown scope %q", c.Scope)
					}
					prices, err := o.prices.SpotPrices(ctx, []string{network.NativeAsset}, c.Preferences.Currency)
					if err != nil {
						return model.Partial{PriceStatus: model.StatusError}, err
					}
					return model.Partial{Prices: prices, PriceStatus: model.StatusFetched}, nil
				},
			},
			{
				Name: "fee",
				Run: func(ctx context.Context, c model.Context) (model.Partial, error) {
					fee, err := o.fees.EstimateFee(ctx, c.Payload, c.Scope)
					if err != nil {
						return model.Partial{}, err
					}
					return model.Partial{FeeEstimate: fee}, nil
				},
			},
		},
	}
}

// Stage 3: 安全扫描
func (o *Orchestrator) scanStage() Stage {
	return Stage{
		Name: "scan",
		Tasks: []Task{
			{
				Name: "scan",
				Run: func(ctx context.Context, c model.Context) (model.Partial, error) {
					return scan(ctx, o.scanner, c)
				},
			},
		},
	}
}

// scan 两个偏好都关闭时不发请求，直接视为已获取
func scan(ctx context.Context, scanner enrich.SecurityScanner, c model.Context) (model.Partial, error) {
	opts := enrich.ScanOptions(c.Preferences)
	if len(opts) == 0 {
		return model.Partial{ScanStatus: model.StatusFetched}, nil
	}

	result, err := scanner.Scan(ctx, scanRequest(c, opts))
	if err != nil {
		return model.Partial{ScanStatus: model.StatusError}, err
	}
	return model.Partial{Scan: result, ScanStatus: model.StatusFetched}, nil
}

func scanRequest(c model.Context, opts []string) enrich.ScanRequest {
	req := enrich.ScanRequest{
		Method:  c.MethodName(),
		Payload: c.Payload,
		Scope:   c.Scope,
		Options: opts,
	}
	if c.Account != nil {
		req.Account = c.Account.Address
	}
	return req
}
