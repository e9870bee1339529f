package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"learnhub/internal/event"
	"learnhub/internal/model"
	"learnhub/pkg/apierror"
)

type orderFixture struct {
	env      *testEnv
	svc      *OrderService
	orders   *MockOrderRepository
	courses  *MockCourseRepository
	products *MockProductRepository
}

func newOrderFixture(t *testing.T) *orderFixture {
	env := newTestEnv(t)
	f := &orderFixture{
		env:      env,
		orders:   new(MockOrderRepository),
		courses:  new(MockCourseRepository),
		products: new(MockProductRepository),
	}
	f.svc = NewOrderService(f.orders, env.users, f.courses, f.products, env.sessions, env.mailer, env.bus)
	return f
}

func TestOrderService_ExactlyOneItem(t *testing.T) {
	f := newOrderFixture(t)
	user := model.User{ID: "u1"}

	for _, req := range []model.CreateOrderRequest{
		{},
		{CourseID: "c1", ProductID: "p1"},
	} {
		_, err := f.svc.Create(context.Background(), user, req)

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	}
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_AlreadyPurchased(t *testing.T) {
	f := newOrderFixture(t)
	user := model.User{ID: "u1", Courses: []string{"c1"}, Products: []string{"p1"}}

	_, err := f.svc.Create(context.Background(), user, model.CreateOrderRequest{CourseID: "c1"})
	assert.ErrorIs(t, err, model.ErrAlreadyPurchased)

	_, err = f.svc.Create(context.Background(), user, model.CreateOrderRequest{ProductID: "p1"})
	assert.ErrorIs(t, err, model.ErrAlreadyPurchased)
}

func TestOrderService_UnknownItem(t *testing.T) {
	f := newOrderFixture(t)
	f.courses.On("FindByID", mock.Anything, "missing").Return(model.Course{}, model.ErrCourseNotFound).Once()

	_, err := f.svc.Create(context.Background(), model.User{ID: "u1"}, model.CreateOrderRequest{CourseID: "missing"})
	assert.ErrorIs(t, err, model.ErrCourseNotFound)
}

func TestOrderService_CreateCourseOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	events, unsubscribe := f.env.bus.Subscribe()
	defer unsubscribe()

	user := model.User{ID: "u1", Name: "Ann", Email: "ann@example.com", Courses: []string{}}
	_, err := f.env.sessions.Establish(ctx, user)
	require.NoError(t, err)

	f.courses.On("FindByID", mock.Anything, "c1").Return(model.Course{ID: "c1", Name: "Go in practice", Price: 49}, nil).Once()
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		kind, id := o.Item()
		return o.UserID == "u1" && kind == model.ItemCourse && id == "c1"
	})).Return(nil).Once()

	purchased := user
	purchased.Courses = []string{"c1"}
	f.env.users.On("FindByID", mock.Anything, "u1").Return(purchased, nil).Once()

	order, err := f.svc.Create(ctx, user, model.CreateOrderRequest{CourseID: "c1", PaymentInfo: " card "})
	require.NoError(t, err)
	assert.Equal(t, "card", order.PaymentInfo)

	cached, ok, err := f.env.sessions.Cached(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"c1"}, cached.Courses)

	assert.Equal(t, "ann@example.com", f.env.mailer.last().To)

	select {
	case e := <-events:
		assert.Equal(t, event.TypeOrderCreated, e.Type)
		payload := e.Payload.(event.OrderCreated)
		assert.Equal(t, "Go in practice", payload.ItemName)
		assert.Equal(t, model.ItemCourse, payload.ItemKind)
	case <-time.After(time.Second):
		t.Fatal("order.created not published")
	}
}

func TestOrderService_MailFailureDoesNotFailOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.env.mailer.err = assert.AnError

	user := model.User{ID: "u1", Email: "ann@example.com"}
	f.products.On("FindByID", mock.Anything, "p1").Return(model.Product{ID: "p1", ParentTitle: "Golf", Price: 10}, nil).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.env.users.On("FindByID", mock.Anything, "u1").Return(model.User{ID: "u1", Products: []string{"p1"}}, nil).Once()

	order, err := f.svc.Create(ctx, user, model.CreateOrderRequest{ProductID: "p1"})
	require.NoError(t, err)
	require.NotNil(t, order.ProductID)
	assert.Equal(t, "p1", *order.ProductID)
}
