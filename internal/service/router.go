package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/order-bot/internal/domain"
	"github.com/fjod/go_cart/order-bot/pkg/logger"
	"go.uber.org/zap"
)

// Router maps typed user events onto the cart and checkout services and
// produces the replies for the user.
type Router struct {
	catalog   ProductCatalog
	carts     *CartService
	checkout  *CheckoutService
	storeName string
	log       *zap.Logger
}

func NewRouter(catalog ProductCatalog, carts *CartService, checkout *CheckoutService, storeName string, log *zap.Logger) *Router {
	return &Router{
		catalog:   catalog,
		carts:     carts,
		checkout:  checkout,
		storeName: storeName,
		log:       log.Named("router"),
	}
}

func (r *Router) Handle(ctx context.Context, ev domain.Event) Outcome {
	log := logger.WithUser(r.log, ev.User.ID).With(zap.String("event", string(ev.Type)))

	switch ev.Type {
	case domain.EventStart:
		return reply(r.welcomeReply())

	case domain.EventMenu, domain.EventShowMenu:
		return reply(r.menuReply())

	case domain.EventAddProduct:
		p, err := r.carts.Add(ev.User.ID, ev.Payload, 1)
		if err != nil {
			log.Info("add to cart rejected", zap.String("product_id", ev.Payload), zap.Error(err))
			return reply(text(textProductNotFound))
		}
		return reply(text(fmt.Sprintf(textAdded, p.Name)), r.cartReply(ev.User.ID))

	case domain.EventViewCart:
		return reply(r.cartReply(ev.User.ID))

	case domain.EventClearCart:
		r.carts.Clear(ev.User.ID)
		return reply(text(textCartCleared), r.menuReply())

	case domain.EventStartCheckout:
		return r.startCheckout(ev, log)

	case domain.EventText:
		return r.captureText(ev, log)

	case domain.EventConfirmOrder:
		return r.confirm(ctx, ev, log)

	case domain.EventCancelOrder:
		if err := r.checkout.Cancel(ev.User.ID); err != nil {
			return reply(text(textInFlight))
		}
		return reply(text(textOrderCancelled), r.menuReply())

	case domain.EventDispatchResult:
		return r.dispatchResult(ev, log)
	}

	log.Warn("unhandled event type")
	return Outcome{}
}

func (r *Router) startCheckout(ev domain.Event, log *zap.Logger) Outcome {
	err := r.checkout.BeginCheckout(ev.User.ID)
	switch {
	case err == nil:
		return reply(text(textAskAddress))
	case errors.Is(err, ErrEmptyCart):
		return reply(text(textEmptyCheckout))
	case errors.Is(err, ErrOrderInFlight):
		return reply(text(textInFlight))
	}
	log.Error("begin checkout failed", zap.Error(err))
	return reply(text(TextGenericFailure))
}

// captureText feeds free text into the dialogue. Text outside the address and
// phone stages is ignored.
func (r *Router) captureText(ev domain.Event, log *zap.Logger) Outcome {
	switch r.checkout.Stage(ev.User.ID) {
	case domain.StageAwaitingAddress:
		if err := r.checkout.CaptureAddress(ev.User.ID, ev.Payload); err != nil {
			log.Error("capture address failed", zap.Error(err))
			return reply(text(TextGenericFailure))
		}
		return reply(text(textAskPhone))

	case domain.StageAwaitingPhone:
		session, err := r.checkout.CapturePhone(ev.User.ID, ev.Payload)
		if err != nil {
			log.Error("capture phone failed", zap.Error(err))
			return reply(text(TextGenericFailure))
		}
		return reply(r.confirmReply(ev.User.ID, session))
	}
	return Outcome{}
}

func (r *Router) confirm(ctx context.Context, ev domain.Event, log *zap.Logger) Outcome {
	pending, err := r.checkout.Confirm(ctx, ev.User)
	switch {
	case err == nil:
		log.Info("order submitted", zap.String("order_id", pending.OrderID))
		return Outcome{Replies: []Reply{text(textSending)}, Pending: pending}
	case errors.Is(err, ErrEmptyCart):
		return reply(text(textEmptyCheckout))
	case errors.Is(err, ErrOrderInFlight):
		return reply(text(textInFlight))
	case errors.Is(err, ErrNoPendingOrder):
		return reply(text(textNoPendingOrder))
	}
	log.Error("confirm failed", zap.Error(err))
	return reply(text(TextGenericFailure))
}

func (r *Router) dispatchResult(ev domain.Event, log *zap.Logger) Outcome {
	if ev.Result == nil {
		log.Warn("dispatch result event without result")
		return Outcome{}
	}
	restored, err := r.checkout.CompleteDispatch(ev.User.ID, *ev.Result)
	if err != nil {
		log.Warn("order dispatch failed, cart kept", zap.String("order_id", ev.Result.OrderID),
			zap.Bool("retry_offered", restored))
		if !restored {
			return reply(text(textSendFailed))
		}
		return reply(Reply{Text: textSendFailed, Buttons: confirmButtons()})
	}
	return reply(text(fmt.Sprintf(textOrderSent, ev.Result.OrderID)))
}

func reply(replies ...Reply) Outcome {
	return Outcome{Replies: replies}
}
