package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/asimov86/ecommerce-api/internal/data/entity"
	"github.com/asimov86/ecommerce-api/internal/dto/request"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newOrderFixture() (OrderService, CartService, *fakeStore) {
	store := newFakeStore()
	db := &fakeDB{store: store}
	repos := store.repos()
	log := zap.NewNop()
	return NewOrderService(db, repos, &fakeMailer{}, log),
		NewCartService(db, repos, log),
		store
}

func shippingAddress() request.ShippingAddressRequest {
	return request.ShippingAddressRequest{
		Address:    "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
}

func TestPlaceOrderRecomputesTotalAndConsumesCart(t *testing.T) {
	orderSvc, cartSvc, store := newOrderFixture()
	userID := seedUser(store)
	productID := seedProduct(store, "Widget", 9.99, 10)

	if _, err := cartSvc.AddItem(context.Background(), userID, &request.AddCartItemRequest{
		ProductID: productID.String(),
		Quantity:  2,
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	order, err := orderSvc.PlaceOrder(context.Background(), userID, &request.CreateOrderRequest{
		OrderItems: []request.OrderItemRequest{
			{ProductID: productID.String(), Name: "Widget", Price: 9.99, Quantity: 2},
		},
		ShippingAddress: shippingAddress(),
		PaymentMethod:   "paypal",
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	want := 9.99 * 2
	if order.TotalPrice != want {
		t.Errorf("expected total %.2f, got %.2f", want, order.TotalPrice)
	}
	if order.IsPaid {
		t.Error("new order must not be paid")
	}

	// The cart is gone after checkout.
	if _, err := cartSvc.GetCart(context.Background(), userID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound after checkout, got %v", err)
	}
}

func TestPlaceOrderEmptyNoSideEffects(t *testing.T) {
	orderSvc, cartSvc, store := newOrderFixture()
	userID := seedUser(store)
	productID := seedProduct(store, "Widget", 5, 10)

	if _, err := cartSvc.AddItem(context.Background(), userID, &request.AddCartItemRequest{
		ProductID: productID.String(),
		Quantity:  1,
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	_, err := orderSvc.PlaceOrder(context.Background(), userID, &request.CreateOrderRequest{
		OrderItems:      nil,
		ShippingAddress: shippingAddress(),
		PaymentMethod:   "paypal",
	})
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}

	if len(store.orders) != 0 {
		t.Error("order created despite empty item list")
	}
	if _, ok := store.carts[userID]; !ok {
		t.Error("cart deleted despite rejected order")
	}
}

func TestGetOrderIncludesUserIdentity(t *testing.T) {
	orderSvc, _, store := newOrderFixture()
	userID := seedUser(store)
	productID := seedProduct(store, "Widget", 4, 10)

	placed, err := orderSvc.PlaceOrder(context.Background(), userID, &request.CreateOrderRequest{
		OrderItems: []request.OrderItemRequest{
			{ProductID: productID.String(), Name: "Widget", Price: 4, Quantity: 1},
		},
		ShippingAddress: shippingAddress(),
		PaymentMethod:   "stripe",
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	orderID := uuid.MustParse(placed.ID)
	detail, err := orderSvc.GetOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}

	if detail.User.Name != "Alice" || detail.User.Email != "alice@example.com" {
		t.Errorf("expected owning user identity, got %+v", detail.User)
	}
	if len(detail.Items) != 1 {
		t.Errorf("expected 1 order item, got %d", len(detail.Items))
	}
}

func TestGetOrderNotFound(t *testing.T) {
	orderSvc, _, _ := newOrderFixture()

	_, err := orderSvc.GetOrder(context.Background(), uuid.New())
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestListMyOrdersScopedToUser(t *testing.T) {
	orderSvc, _, store := newOrderFixture()
	userID := seedUser(store)
	otherID := uuid.New()
	store.users[otherID] = &entity.User{
		Base:     entity.Base{ID: otherID, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Name:     "Bob",
		Email:    "bob@example.com",
		IsActive: true,
	}
	productID := seedProduct(store, "Widget", 4, 10)

	item := request.OrderItemRequest{ProductID: productID.String(), Name: "Widget", Price: 4, Quantity: 1}
	for _, owner := range []uuid.UUID{userID, userID, otherID} {
		if _, err := orderSvc.PlaceOrder(context.Background(), owner, &request.CreateOrderRequest{
			OrderItems:      []request.OrderItemRequest{item},
			ShippingAddress: shippingAddress(),
			PaymentMethod:   "paypal",
		}); err != nil {
			t.Fatalf("PlaceOrder: %v", err)
		}
	}

	orders, err := orderSvc.ListMyOrders(context.Background(), userID)
	if err != nil {
		t.Fatalf("ListMyOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("expected 2 orders for user, got %d", len(orders))
	}
	for _, o := range orders {
		if o.UserID != userID.String() {
			t.Errorf("foreign order in listing: %s", o.UserID)
		}
	}
}

func TestMarkPaidStoresPaymentResult(t *testing.T) {
	orderSvc, _, store := newOrderFixture()
	userID := seedUser(store)
	productID := seedProduct(store, "Widget", 4, 10)

	placed, err := orderSvc.PlaceOrder(context.Background(), userID, &request.CreateOrderRequest{
		OrderItems: []request.OrderItemRequest{
			{ProductID: productID.String(), Name: "Widget", Price: 4, Quantity: 1},
		},
		ShippingAddress: shippingAddress(),
		PaymentMethod:   "paypal",
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	payID := "PAY-123"
	payStatus := "COMPLETED"
	paid, err := orderSvc.MarkPaid(context.Background(), uuid.MustParse(placed.ID), &request.PayOrderRequest{
		ID:     &payID,
		Status: &payStatus,
	})
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	if !paid.IsPaid || paid.PaidAt == nil {
		t.Error("expected order marked paid with timestamp")
	}
	if paid.PaymentResult == nil || paid.PaymentResult.ID == nil || *paid.PaymentResult.ID != payID {
		t.Errorf("payment result not stored verbatim: %+v", paid.PaymentResult)
	}
}

func TestMarkPaidUnknownOrder(t *testing.T) {
	orderSvc, _, _ := newOrderFixture()

	_, err := orderSvc.MarkPaid(context.Background(), uuid.New(), &request.PayOrderRequest{})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
