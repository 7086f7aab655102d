package service

import (
	"context"
	"strings"

	"github.com/fjod/go_cart/order-bot/internal/domain"
	"github.com/fjod/go_cart/order-bot/internal/notify"
	"github.com/fjod/go_cart/order-bot/internal/order"
	"github.com/fjod/go_cart/order-bot/internal/store"
	"github.com/google/uuid"
)

type OrderSubmitter interface {
	Submit(ctx context.Context, o domain.Order) *notify.Pending
}

// CheckoutService drives the address -> phone -> confirm dialogue for each user.
// A missing session means the user is browsing.
type CheckoutService struct {
	carts     *CartService
	sessions  store.SessionStore
	submitter OrderSubmitter
	newID     func() string
}

func NewCheckoutService(carts *CartService, sessions store.SessionStore, submitter OrderSubmitter) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		sessions:  sessions,
		submitter: submitter,
		newID:     uuid.NewString,
	}
}

func (s *CheckoutService) Session(userID int64) (domain.Session, bool) {
	return s.sessions.Get(userID)
}

func (s *CheckoutService) Stage(userID int64) domain.Stage {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return domain.StageBrowsing
	}
	return session.Stage
}

// BeginCheckout starts a fresh dialogue, discarding any half-filled one.
func (s *CheckoutService) BeginCheckout(userID int64) error {
	if !domain.CanTransitionTo(s.Stage(userID), domain.StageAwaitingAddress) {
		return ErrOrderInFlight
	}
	if s.carts.Cart(userID).IsEmpty() {
		return ErrEmptyCart
	}
	s.sessions.Put(userID, domain.Session{Stage: domain.StageAwaitingAddress})
	return nil
}

// CaptureAddress stores the reply verbatim; there is no format validation.
func (s *CheckoutService) CaptureAddress(userID int64, text string) error {
	session, ok := s.sessions.Get(userID)
	if !ok || session.Stage != domain.StageAwaitingAddress {
		return ErrIllegalTransition
	}
	session.Address = strings.TrimSpace(text)
	session.Stage = domain.StageAwaitingPhone
	s.sessions.Put(userID, session)
	return nil
}

// CapturePhone stores the reply verbatim and moves the session to review.
func (s *CheckoutService) CapturePhone(userID int64, text string) (domain.Session, error) {
	session, ok := s.sessions.Get(userID)
	if !ok || session.Stage != domain.StageAwaitingPhone {
		return domain.Session{}, ErrIllegalTransition
	}
	session.Phone = strings.TrimSpace(text)
	session.Stage = domain.StageReview
	s.sessions.Put(userID, session)
	return session, nil
}

// Confirm snapshots the cart into an order and hands it to the submitter.
// The ordered lines only leave the cart once CompleteDispatch reports success.
func (s *CheckoutService) Confirm(ctx context.Context, buyer domain.User) (*notify.Pending, error) {
	session, ok := s.sessions.Get(buyer.ID)
	if !ok {
		return nil, ErrNoPendingOrder
	}
	switch session.Stage {
	case domain.StageSubmitting:
		return nil, ErrOrderInFlight
	case domain.StageReview:
	default:
		return nil, ErrNoPendingOrder
	}

	cart := s.carts.Cart(buyer.ID)
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	o := order.Build(s.newID(), buyer, cart.Lines, session)
	session.Stage = domain.StageSubmitting
	session.OrderID = o.ID
	session.Ordered = o.Lines
	s.sessions.Put(buyer.ID, session)

	return s.submitter.Submit(ctx, o), nil
}

// CompleteDispatch applies a dispatch outcome to the session that submitted it.
// Success removes the ordered lines from the cart, leaving anything added while
// the order was in flight, and ends the session. Failure returns the session to
// review so confirm can be retried; restored reports whether that happened.
// Results for an order the session no longer tracks change nothing.
func (s *CheckoutService) CompleteDispatch(userID int64, res domain.DispatchResult) (restored bool, err error) {
	session, ok := s.sessions.Get(userID)
	current := ok && session.Stage == domain.StageSubmitting && session.OrderID == res.OrderID
	if !current {
		return false, res.Err
	}

	if res.Err == nil {
		s.carts.Remove(userID, session.Ordered)
		s.sessions.Delete(userID)
		return false, nil
	}

	session.Stage = domain.StageReview
	session.OrderID = ""
	session.Ordered = nil
	s.sessions.Put(userID, session)
	return true, res.Err
}

// Cancel drops the session and keeps the cart. An order already being sent
// cannot be cancelled.
func (s *CheckoutService) Cancel(userID int64) error {
	if s.Stage(userID) == domain.StageSubmitting {
		return ErrOrderInFlight
	}
	s.sessions.Delete(userID)
	return nil
}
