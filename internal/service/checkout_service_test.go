package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_cart/order-bot/internal/domain"
	"github.com/fjod/go_cart/order-bot/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var buyer = domain.User{ID: 42, FullName: "Jane Doe", UserName: "jane"}

func newCheckout(t *testing.T) (*CheckoutService, *CartService, *mockSubmitter) {
	t.Helper()
	carts := newCartService()
	sub := &mockSubmitter{}
	s := NewCheckoutService(carts, store.NewMemorySessionStore(), sub)
	s.newID = func() string { return "ord-1" }
	return s, carts, sub
}

func reachReview(t *testing.T, s *CheckoutService, carts *CartService) {
	t.Helper()
	_, err := carts.Add(buyer.ID, "p1", 1)
	require.NoError(t, err)
	require.NoError(t, s.BeginCheckout(buyer.ID))
	require.NoError(t, s.CaptureAddress(buyer.ID, " 123 Main St "))
	_, err = s.CapturePhone(buyer.ID, "555-1234")
	require.NoError(t, err)
}

func TestCheckoutService_BeginCheckout_EmptyCart(t *testing.T) {
	s, _, _ := newCheckout(t)

	assert.ErrorIs(t, s.BeginCheckout(buyer.ID), ErrEmptyCart)
	assert.Equal(t, domain.StageBrowsing, s.Stage(buyer.ID))
}

func TestCheckoutService_Dialogue(t *testing.T) {
	s, carts, _ := newCheckout(t)
	_, _ = carts.Add(buyer.ID, "p1", 1)

	require.NoError(t, s.BeginCheckout(buyer.ID))
	assert.Equal(t, domain.StageAwaitingAddress, s.Stage(buyer.ID))

	require.NoError(t, s.CaptureAddress(buyer.ID, "123 Main St\n"))
	assert.Equal(t, domain.StageAwaitingPhone, s.Stage(buyer.ID))

	session, err := s.CapturePhone(buyer.ID, "555-1234")
	require.NoError(t, err)
	assert.Equal(t, domain.StageReview, session.Stage)
	assert.Equal(t, "123 Main St", session.Address)
	assert.Equal(t, "555-1234", session.Phone)
}

func TestCheckoutService_CaptureOutOfOrder(t *testing.T) {
	s, _, _ := newCheckout(t)

	assert.ErrorIs(t, s.CaptureAddress(buyer.ID, "x"), ErrIllegalTransition)
	_, err := s.CapturePhone(buyer.ID, "x")
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestCheckoutService_ReentryDiscardsSession(t *testing.T) {
	s, carts, _ := newCheckout(t)
	reachReview(t, s, carts)

	require.NoError(t, s.BeginCheckout(buyer.ID))
	session, ok := s.Session(buyer.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StageAwaitingAddress, session.Stage)
	assert.Empty(t, session.Address)
	assert.Empty(t, session.Phone)
}

func TestCheckoutService_Confirm(t *testing.T) {
	s, carts, sub := newCheckout(t)
	reachReview(t, s, carts)

	p, err := s.Confirm(context.Background(), buyer)
	require.NoError(t, err)
	assert.Equal(t, "ord-1", p.OrderID)
	assert.Equal(t, domain.StageSubmitting, s.Stage(buyer.ID))

	orders := sub.submitted()
	require.Len(t, orders, 1)
	assert.Equal(t, "123 Main St", orders[0].Address)
	assert.Equal(t, "555-1234", orders[0].Phone)
	assert.Equal(t, buyer, orders[0].Buyer)
	assert.Len(t, orders[0].Lines, 1)

	// cart survives until the dispatch result arrives
	assert.Len(t, carts.Cart(buyer.ID).Lines, 1)
}

func TestCheckoutService_Confirm_Rejections(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		s, _, _ := newCheckout(t)
		_, err := s.Confirm(context.Background(), buyer)
		assert.ErrorIs(t, err, ErrNoPendingOrder)
	})

	t.Run("mid dialogue", func(t *testing.T) {
		s, carts, _ := newCheckout(t)
		_, _ = carts.Add(buyer.ID, "p1", 1)
		require.NoError(t, s.BeginCheckout(buyer.ID))
		_, err := s.Confirm(context.Background(), buyer)
		assert.ErrorIs(t, err, ErrNoPendingOrder)
	})

	t.Run("cart emptied after review", func(t *testing.T) {
		s, carts, sub := newCheckout(t)
		reachReview(t, s, carts)
		carts.Clear(buyer.ID)
		_, err := s.Confirm(context.Background(), buyer)
		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.Empty(t, sub.submitted())
	})

	t.Run("already submitting", func(t *testing.T) {
		s, carts, sub := newCheckout(t)
		reachReview(t, s, carts)
		_, err := s.Confirm(context.Background(), buyer)
		require.NoError(t, err)

		_, err = s.Confirm(context.Background(), buyer)
		assert.ErrorIs(t, err, ErrOrderInFlight)
		assert.ErrorIs(t, s.BeginCheckout(buyer.ID), ErrOrderInFlight)
		assert.Len(t, sub.submitted(), 1)
	})
}

func TestCheckoutService_CompleteDispatch(t *testing.T) {
	t.Run("success clears cart and session", func(t *testing.T) {
		s, carts, _ := newCheckout(t)
		reachReview(t, s, carts)
		_, err := s.Confirm(context.Background(), buyer)
		require.NoError(t, err)

		restored, err := s.CompleteDispatch(buyer.ID, domain.DispatchResult{OrderID: "ord-1"})
		require.NoError(t, err)
		assert.False(t, restored)
		assert.True(t, carts.Cart(buyer.ID).IsEmpty())
		_, ok := s.Session(buyer.ID)
		assert.False(t, ok)
	})

	t.Run("success keeps items added while sending", func(t *testing.T) {
		s, carts, sub := newCheckout(t)
		reachReview(t, s, carts)
		_, err := s.Confirm(context.Background(), buyer)
		require.NoError(t, err)

		_, err = carts.Add(buyer.ID, "p4", 1)
		require.NoError(t, err)
		_, err = carts.Add(buyer.ID, "p1", 1)
		require.NoError(t, err)

		_, err = s.CompleteDispatch(buyer.ID, domain.DispatchResult{OrderID: "ord-1"})
		require.NoError(t, err)

		require.Len(t, sub.submitted(), 1)
		require.Len(t, sub.submitted()[0].Lines, 1)

		lines := carts.Cart(buyer.ID).Lines
		require.Len(t, lines, 2)
		assert.Equal(t, "p1", lines[0].ProductID)
		assert.Equal(t, 1, lines[0].Quantity)
		assert.Equal(t, "p4", lines[1].ProductID)
		assert.Equal(t, 1, lines[1].Quantity)
	})

	t.Run("failure returns to review", func(t *testing.T) {
		s, carts, sub := newCheckout(t)
		reachReview(t, s, carts)
		_, err := s.Confirm(context.Background(), buyer)
		require.NoError(t, err)

		cause := errors.New("smtp down")
		restored, err := s.CompleteDispatch(buyer.ID, domain.DispatchResult{OrderID: "ord-1", Err: cause})
		assert.ErrorIs(t, err, cause)
		assert.True(t, restored)

		session, ok := s.Session(buyer.ID)
		require.True(t, ok)
		assert.Equal(t, domain.StageReview, session.Stage)
		assert.Equal(t, "123 Main St", session.Address)
		assert.Empty(t, session.Ordered)
		assert.Len(t, carts.Cart(buyer.ID).Lines, 1)

		_, err = s.Confirm(context.Background(), buyer)
		require.NoError(t, err)
		assert.Len(t, sub.submitted(), 2)
	})

	t.Run("stale results change nothing", func(t *testing.T) {
		s, carts, _ := newCheckout(t)
		reachReview(t, s, carts)
		_, err := s.Confirm(context.Background(), buyer)
		require.NoError(t, err)

		restored, err := s.CompleteDispatch(buyer.ID, domain.DispatchResult{OrderID: "other", Err: errors.New("x")})
		assert.Error(t, err)
		assert.False(t, restored)
		assert.Equal(t, domain.StageSubmitting, s.Stage(buyer.ID))

		restored, err = s.CompleteDispatch(buyer.ID, domain.DispatchResult{OrderID: "other"})
		require.NoError(t, err)
		assert.False(t, restored)
		assert.Equal(t, domain.StageSubmitting, s.Stage(buyer.ID))
		assert.Len(t, carts.Cart(buyer.ID).Lines, 1)
	})
}

func TestCheckoutService_Cancel(t *testing.T) {
	s, carts, _ := newCheckout(t)
	reachReview(t, s, carts)

	require.NoError(t, s.Cancel(buyer.ID))
	assert.Equal(t, domain.StageBrowsing, s.Stage(buyer.ID))
	assert.Len(t, carts.Cart(buyer.ID).Lines, 1)
}

func TestCheckoutService_Cancel_RefusedWhileSubmitting(t *testing.T) {
	s, carts, _ := newCheckout(t)
	reachReview(t, s, carts)
	_, err := s.Confirm(context.Background(), buyer)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Cancel(buyer.ID), ErrOrderInFlight)
	session, ok := s.Session(buyer.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StageSubmitting, session.Stage)
	assert.Equal(t, "ord-1", session.OrderID)
}
