package payment

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	orderRepo "polarflow/database/repository/order"
	"polarflow/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeOrderRepo mirrors the Mongo repository's transition semantics in
// memory.
type fakeOrderRepo struct {
	orders map[string]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*models.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, ord *models.Order) error {
	cp := *ord
	r.orders[ord.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*models.Order, error) {
	ord, ok := r.orders[id]
	if !ok {
		return nil, orderRepo.ErrNotFound
	}
	cp := *ord
	return &cp, nil
}

func (r *fakeOrderRepo) GetBySessionID(_ context.Context, sessionID string) (*models.Order, error) {
	for _, ord := range r.orders {
		if ord.SessionID == sessionID {
			cp := *ord
			return &cp, nil
		}
	}
	return nil, orderRepo.ErrNotFound
}

func (r *fakeOrderRepo) GetBySubscriptionID(_ context.Context, subscriptionID string) (*models.Order, error) {
	for _, ord := range r.orders {
		if ord.Metadata["subscription_id"] == subscriptionID {
			cp := *ord
			return &cp, nil
		}
	}
	return nil, orderRepo.ErrNotFound
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	for _, ord := range r.orders {
		if ord.UserID == userID {
			out = append(out, *ord)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) AttachSession(_ context.Context, id, sessionID string) error {
	ord := r.orders[id]
	ord.SessionID = sessionID
	ord.Status = models.OrderProcessing
	return nil
}

func (r *fakeOrderRepo) MarkPaid(_ context.Context, id, transactionID string, paidAt time.Time) error {
	ord := r.orders[id]
	if ord.Status != models.OrderPending && ord.Status != models.OrderProcessing {
		return nil
	}
	ord.Status = models.OrderPaid
	ord.TransactionID = transactionID
	ord.PaidAt = &paidAt
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id string, status models.OrderStatus) error {
	ord := r.orders[id]
	if ord.Status == models.OrderPaid && status != models.OrderRefunded && status != models.OrderCancelled {
		return nil
	}
	ord.Status = status
	return nil
}

func (r *fakeOrderRepo) ClaimNotification(_ context.Context, id string) (bool, error) {
	ord := r.orders[id]
	if ord.Notified {
		return false, nil
	}
	ord.Notified = true
	return true, nil
}

func (r *fakeOrderRepo) StampMetadata(_ context.Context, id string, fields map[string]string) error {
	ord := r.orders[id]
	if ord.Metadata == nil {
		ord.Metadata = map[string]string{}
	}
	for k, v := range fields {
		ord.Metadata[k] = v
	}
	return nil
}

type fakeBookingRepo struct {
	bookings map[string]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[string]*models.Booking{}}
}

func (r *fakeBookingRepo) Create(_ context.Context, b *models.Booking) error {
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, assert.AnError
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id string, status models.BookingStatus) error {
	b, ok := r.bookings[id]
	if !ok {
		return assert.AnError
	}
	b.Status = status
	return nil
}

type fakeNotifier struct {
	confirmations int
	reminders     int
}

func (n *fakeNotifier) SendOrderConfirmation(_ context.Context, _ *models.Order, _ *models.Booking) error {
	n.confirmations++
	return nil
}

func (n *fakeNotifier) SendVisitReminder(_ context.Context, _ string, _ *models.Booking) error {
	n.reminders++
	return nil
}

func newTestReconciler() (*Reconciler, *fakeOrderRepo, *fakeBookingRepo, *fakeNotifier) {
	orders := newFakeOrderRepo()
	bookings := newFakeBookingRepo()
	notifier := &fakeNotifier{}
	rec := &Reconciler{
		Orders:   orders,
		Bookings: bookings,
		Notifier: notifier,
		Logger:   zap.NewNop(),
	}
	return rec, orders, bookings, notifier
}

func seedOrderWithBooking(orders *fakeOrderRepo, bookings *fakeBookingRepo) (*models.Order, *models.Booking) {
	b := &models.Booking{
		ID:          "bkg-1",
		UserID:      "usr-1",
		ServiceType: models.ServiceColdPlunge,
		ScheduledAt: time.Now().Add(72 * time.Hour),
		Status:      models.BookingScheduled,
	}
	_ = bookings.Create(context.Background(), b)

	ord := &models.Order{
		ID:            "ord-1",
		UserID:        "usr-1",
		CustomerEmail: "casey@example.com",
		AmountCents:   65000,
		Currency:      "usd",
		Status:        models.OrderProcessing,
		Type:          models.OrderTypeSubscription,
		Provider:      ProviderCreem,
		SessionID:     "chk_123",
		BookingID:     b.ID,
	}
	_ = orders.Create(context.Background(), ord)
	return ord, b
}

func TestCheckoutCompletedConfirmsOrderAndBooking(t *testing.T) {
	rec, orders, bookings, notifier := newTestReconciler()
	seedOrderWithBooking(orders, bookings)

	ev := models.CreemEvent{
		EventType: "checkout.completed",
		Data:      models.CreemEventData{CheckoutID: "chk_123", TransactionID: "txn_9"},
		WebhookID: "wh_1",
	}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), ev))

	ord, err := orders.GetByID(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, ord.Status)
	assert.Equal(t, "txn_9", ord.TransactionID)
	assert.NotNil(t, ord.PaidAt)

	b, err := bookings.GetByID(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, b.Status)
	assert.Equal(t, 1, notifier.confirmations)
}

func TestCheckoutCompletedIdempotentUnderDuplicateDelivery(t *testing.T) {
	rec, orders, bookings, notifier := newTestReconciler()
	seedOrderWithBooking(orders, bookings)

	ev := models.CreemEvent{
		EventType: "checkout.completed",
		Data:      models.CreemEventData{CheckoutID: "chk_123", TransactionID: "txn_9"},
	}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), ev))
	require.NoError(t, rec.HandleCreemEvent(context.Background(), ev))

	ord, _ := orders.GetByID(context.Background(), "ord-1")
	assert.Equal(t, models.OrderPaid, ord.Status)
	assert.Equal(t, 1, notifier.confirmations, "duplicate delivery must not send a second email")
}

func TestCheckoutCompletedUnknownSessionDropped(t *testing.T) {
	rec, _, _, notifier := newTestReconciler()

	ev := models.CreemEvent{
		EventType: "checkout.completed",
		Data:      models.CreemEventData{CheckoutID: "chk_missing"},
	}
	// Dropped and acknowledged, not an error: the provider's retries
	// cannot resolve a missing correlation.
	require.NoError(t, rec.HandleCreemEvent(context.Background(), ev))
	assert.Zero(t, notifier.confirmations)
}

func TestCheckoutExpiredCancelsLinkedBooking(t *testing.T) {
	rec, orders, bookings, _ := newTestReconciler()
	seedOrderWithBooking(orders, bookings)

	ev := models.CreemEvent{
		EventType: "checkout.expired",
		Data:      models.CreemEventData{CheckoutID: "chk_123"},
	}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), ev))

	ord, _ := orders.GetByID(context.Background(), "ord-1")
	assert.Equal(t, models.OrderExpired, ord.Status)

	b, _ := bookings.GetByID(context.Background(), "bkg-1")
	assert.Equal(t, models.BookingCancelled, b.Status)
}

func TestPaidOrderNeverRegresses(t *testing.T) {
	rec, orders, bookings, _ := newTestReconciler()
	seedOrderWithBooking(orders, bookings)

	complete := models.CreemEvent{
		EventType: "checkout.completed",
		Data:      models.CreemEventData{CheckoutID: "chk_123", TransactionID: "txn_9"},
	}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), complete))

	// A late failure event for the same session must not unwind the paid
	// state.
	fail := models.CreemEvent{
		EventType: "checkout.failed",
		Data:      models.CreemEventData{CheckoutID: "chk_123"},
	}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), fail))

	ord, _ := orders.GetByID(context.Background(), "ord-1")
	assert.Equal(t, models.OrderPaid, ord.Status)
}

func TestRefundCreatedTransitionsPaidOrder(t *testing.T) {
	rec, orders, bookings, _ := newTestReconciler()
	seedOrderWithBooking(orders, bookings)

	complete := models.CreemEvent{
		EventType: "checkout.completed",
		Data:      models.CreemEventData{CheckoutID: "chk_123", TransactionID: "txn_9"},
	}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), complete))

	refund := models.CreemEvent{
		EventType: "refund.created",
		Data:      models.CreemEventData{CheckoutID: "chk_123", RefundID: "ref_5", AmountCents: 65000},
	}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), refund))

	ord, _ := orders.GetByID(context.Background(), "ord-1")
	assert.Equal(t, models.OrderRefunded, ord.Status)
	assert.Equal(t, "ref_5", ord.Metadata["refund_id"])
	assert.Equal(t, "65000", ord.Metadata["refund_amount_cents"])
}

func TestSubscriptionLifecycle(t *testing.T) {
	rec, orders, bookings, _ := newTestReconciler()
	ord, _ := seedOrderWithBooking(orders, bookings)
	_ = orders.StampMetadata(context.Background(), ord.ID, map[string]string{"subscription_id": "sub_7"})

	complete := models.CreemEvent{
		EventType: "checkout.completed",
		Data:      models.CreemEventData{CheckoutID: "chk_123", TransactionID: "txn_9"},
	}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), complete))

	active := models.CreemEvent{
		EventType: "subscription.updated",
		Data:      models.CreemEventData{SubscriptionID: "sub_7", Status: "active", CurrentPeriodEnd: "2025-08-01T00:00:00Z"},
	}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), active))

	got, _ := orders.GetByID(context.Background(), ord.ID)
	assert.Equal(t, models.OrderPaid, got.Status)
	assert.Equal(t, "2025-08-01T00:00:00Z", got.Metadata["current_period_end"])

	// Deleting the subscription must cancel the order even though it is
	// already paid; only pre-payment regressions are blocked.
	deleted := models.CreemEvent{
		EventType: "subscription.deleted",
		Data:      models.CreemEventData{SubscriptionID: "sub_7"},
	}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), deleted))

	got, _ = orders.GetByID(context.Background(), ord.ID)
	assert.Equal(t, models.OrderCancelled, got.Status)
	assert.NotEmpty(t, got.Metadata["subscription_deleted_at"])
}

func TestSubscriptionLapseCancelsPaidOrder(t *testing.T) {
	rec, orders, bookings, _ := newTestReconciler()
	ord, _ := seedOrderWithBooking(orders, bookings)
	_ = orders.StampMetadata(context.Background(), ord.ID, map[string]string{"subscription_id": "sub_7"})

	complete := models.CreemEvent{
		EventType: "checkout.completed",
		Data:      models.CreemEventData{CheckoutID: "chk_123", TransactionID: "txn_9"},
	}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), complete))

	lapsed := models.CreemEvent{
		EventType: "subscription.updated",
		Data:      models.CreemEventData{SubscriptionID: "sub_7", Status: "past_due"},
	}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), lapsed))

	got, _ := orders.GetByID(context.Background(), ord.ID)
	assert.Equal(t, models.OrderCancelled, got.Status)
	assert.Equal(t, "past_due", got.Metadata["subscription_status"])
}

func TestSubscriptionUpdateWithoutLocalRecordDropped(t *testing.T) {
	rec, _, _, _ := newTestReconciler()

	ev := models.CreemEvent{
		EventType: "subscription.updated",
		Data:      models.CreemEventData{SubscriptionID: "sub_unknown", Status: "active"},
	}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), ev))
}

func TestUnrecognizedEventIgnored(t *testing.T) {
	rec, orders, bookings, notifier := newTestReconciler()
	seedOrderWithBooking(orders, bookings)

	ev := models.CreemEvent{EventType: "dispute.opened", Data: models.CreemEventData{CheckoutID: "chk_123"}}
	require.NoError(t, rec.HandleCreemEvent(context.Background(), ev))

	ord, _ := orders.GetByID(context.Background(), "ord-1")
	assert.Equal(t, models.OrderProcessing, ord.Status)
	assert.Zero(t, notifier.confirmations)
}

func TestHandleStripeCheckoutCompleted(t *testing.T) {
	rec, orders, bookings, notifier := newTestReconciler()
	ord, _ := seedOrderWithBooking(orders, bookings)
	ord.Provider = ProviderStripe
	ord.SessionID = "cs_test_42"
	orders.orders[ord.ID] = ord

	raw, err := json.Marshal(map[string]interface{}{
		"id":             "cs_test_42",
		"payment_intent": map[string]interface{}{"id": "pi_88"},
		"subscription":   map[string]interface{}{"id": "sub_55"},
	})
	require.NoError(t, err)

	event := stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	}
	require.NoError(t, rec.HandleStripeEvent(context.Background(), event))

	got, _ := orders.GetByID(context.Background(), ord.ID)
	assert.Equal(t, models.OrderPaid, got.Status)
	assert.Equal(t, "pi_88", got.TransactionID)
	assert.Equal(t, "sub_55", got.Metadata["subscription_id"])
	assert.Equal(t, 1, notifier.confirmations)

	b, _ := bookings.GetByID(context.Background(), "bkg-1")
	assert.Equal(t, models.BookingConfirmed, b.Status)
}

func TestHandleStripeSessionExpired(t *testing.T) {
	rec, orders, bookings, _ := newTestReconciler()
	ord, _ := seedOrderWithBooking(orders, bookings)
	ord.SessionID = "cs_test_43"
	orders.orders[ord.ID] = ord

	raw, _ := json.Marshal(map[string]interface{}{"id": "cs_test_43"})
	event := stripe.Event{
		Type: "checkout.session.expired",
		Data: &stripe.EventData{Raw: raw},
	}
	require.NoError(t, rec.HandleStripeEvent(context.Background(), event))

	got, _ := orders.GetByID(context.Background(), ord.ID)
	assert.Equal(t, models.OrderExpired, got.Status)
	b, _ := bookings.GetByID(context.Background(), "bkg-1")
	assert.Equal(t, models.BookingCancelled, b.Status)
}
