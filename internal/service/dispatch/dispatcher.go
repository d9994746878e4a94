package dispatch

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"go.uber.org/zap"

	"wallet-confirm/internal/dialog"
	"wallet-confirm/internal/model"
	"wallet-confirm/internal/worker"
	"wallet-confirm/internal/worker/tasks"
	"wallet-confirm/pkg/errno"
	"wallet-confirm/pkg/logger"
	"wallet-confirm/pkg/monitor"
	"wallet-confirm/pkg/validator"
)

// Confirmer 确认流程，*confirm.Orchestrator 满足此接口
type Confirmer interface {
	// Confirm 带富化阶段的完整流程
	Confirm(ctx context.Context, view dialog.View, seed model.Partial) (bool, error)
	// Render 单阶段流程
	Render(ctx context.Context, view dialog.View, seed model.Partial) (bool, error)
}

// Dispatcher 按方法族分派签名请求
type Dispatcher struct {
	confirmer Confirmer
	scheduler worker.Scheduler
	delay     time.Duration
	nowFn     func() time.Time
}

func NewDispatcher(confirmer Confirmer, scheduler worker.Scheduler, delay time.Duration) *Dispatcher {
	return &Dispatcher{
		confirmer: confirmer,
		scheduler: scheduler,
		delay:     delay,
		nowFn:     time.Now,
	}
}

type outcome struct {
	decision bool
	err      error
}

// Handle 校验请求 -> 解析方法 -> 按方法族执行，返回用户的选择
// 校验失败返回 *errno.ValidationError，未知方法返回 *errno.UnsupportedMethodError，
// 生命周期任务投递失败返回 *errno.SchedulingError
func (d *Dispatcher) Handle(ctx context.Context, req model.Request) (bool, error) {
	if err := validator.Struct(req); err != nil {
		return false, err
	}
	if _, ok := model.LookupNetwork(req.Params.Scope); !ok {
		return false, errno.NewValidationError("params.scope", "is not a supported network")
	}
	method, err := model.ParseMethod(req.Method)
	if err != nil {
		return false, err
	}

	res := model.MatchMethod(method,
		func(m model.TransferMethod) outcome { return d.transfer(ctx, req, m) },
		func(m model.MessageMethod) outcome { return d.message(ctx, req, m) },
		func(m model.SignInMethod) outcome { return d.signIn(ctx, req, m) },
	)

	label := "rejected"
	switch {
	case res.err != nil:
		label = "error"
	case res.decision:
		label = "approved"
	}
	monitor.DecisionsTotal.WithLabelValues(string(method.Family()), label).Inc()
	return res.decision, res.err
}

func (d *Dispatcher) transfer(ctx context.Context, req model.Request, m model.TransferMethod) outcome {
	if err := validator.Var("params.transaction", req.Params.Transaction, "required,base64"); err != nil {
		return outcome{err: err}
	}
	payload, err := base64.StdEncoding.DecodeString(req.Params.Transaction)
	if err != nil {
		return outcome{err: errno.NewValidationError("params.transaction", "must be base64 encoded")}
	}

	event := tasks.LifecyclePayload{
		RequestID:   req.ID,
		Origin:      req.Origin,
		Method:      m.Name(),
		Scope:       req.Params.Scope,
		Account:     req.Params.Account.Address,
		Transaction: req.Params.Transaction,
	}

	// 1. 渲染之前先投递 added
	if err := d.schedule(ctx, tasks.EventAdded, event); err != nil {
		return outcome{err: err}
	}

	// 2. 等待用户选择
	decision, confirmErr := d.confirmer.Confirm(ctx, dialog.ViewTransaction, d.seed(req, m, payload))

	// 3. 按结果投递 approved / rejected；调用方放弃等待也记为 rejected
	kind := tasks.EventRejected
	if decision && confirmErr == nil {
		kind = tasks.EventApproved
	}
	if err := d.schedule(context.WithoutCancel(ctx), kind, event); err != nil {
		return outcome{err: errors.Join(confirmErr, err)}
	}
	return outcome{decision: decision, err: confirmErr}
}

func (d *Dispatcher) message(ctx context.Context, req model.Request, m model.MessageMethod) outcome {
	if err := validator.Var("params.message", req.Params.Message, "required,base64"); err != nil {
		return outcome{err: err}
	}
	payload, err := base64.StdEncoding.DecodeString(req.Params.Message)
	if err != nil {
		return outcome{err: errno.NewValidationError("params.message", "must be base64 encoded")}
	}

	decision, err := d.confirmer.Render(ctx, dialog.ViewMessage, d.seed(req, m, payload))
	return outcome{decision: decision, err: err}
}

func (d *Dispatcher) signIn(ctx context.Context, req model.Request, m model.SignInMethod) outcome {
	params := req.Params.SignIn
	if params == nil {
		return outcome{err: errno.NewValidationError("params.signIn", "is required")}
	}
	if err := validator.Struct(params); err != nil {
		var ve *errno.ValidationError
		if errors.As(err, &ve) {
			return outcome{err: errno.NewValidationError("params.signIn."+ve.Field, ve.Reason)}
		}
		return outcome{err: err}
	}
	if params.Address != "" && params.Address != req.Params.Account.Address {
		return outcome{err: errno.NewValidationError("params.signIn.address", "must match params.account.address")}
	}

	message := model.FormatSignInMessage(*params, req.Params.Account.Address)
	decision, err := d.confirmer.Render(ctx, dialog.ViewSignIn, d.seed(req, m, []byte(message)))
	return outcome{decision: decision, err: err}
}

func (d *Dispatcher) seed(req model.Request, m model.Method, payload []byte) model.Partial {
	account := *req.Params.Account
	return model.Partial{
		RequestID: req.ID,
		Origin:    req.Origin,
		Method:    m,
		Scope:     req.Params.Scope,
		Account:   &account,
		Payload:   payload,
	}
}

// schedule 投递失败包装成 *errno.SchedulingError 向上返回
func (d *Dispatcher) schedule(ctx context.Context, kind tasks.EventKind, p tasks.LifecyclePayload) error {
	p.OccurredAt = d.nowFn().UTC()
	if err := d.scheduler.Schedule(ctx, kind, p, d.delay); err != nil {
		logger.Error("schedule lifecycle side-effect failed",
			zap.String("kind", string(kind)),
			zap.String("request_id", p.RequestID),
			zap.Error(err),
		)
		return &errno.SchedulingError{Kind: string(kind), Err: err}
	}
	return nil
}
