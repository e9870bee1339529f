package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"learnhub/internal/event"
	"learnhub/internal/mail"
	"learnhub/internal/model"
	"learnhub/pkg/apierror"
)

type orderRepository interface {
	Create(ctx context.Context, o model.Order) error
	List(ctx context.Context) ([]model.Order, error)
}

type OrderService struct {
	orders   orderRepository
	users    userFinder
	courses  courseFinder
	products productFinder
	sessions *SessionService
	mailer   mail.Sender
	bus      event.Bus
	now      func() time.Time
}

func NewOrderService(orders orderRepository, users userFinder, courses courseFinder, products productFinder, sessions *SessionService, mailer mail.Sender, bus event.Bus) *OrderService {
	return &OrderService{
		orders:   orders,
		users:    users,
		courses:  courses,
		products: products,
		sessions: sessions,
		mailer:   mailer,
		bus:      bus,
		now:      time.Now,
	}
}

type orderItem struct {
	kind  string
	id    string
	name  string
	price float64
}

// Create buys a single course or product for user and grants it.
func (s *OrderService) Create(ctx context.Context, user model.User, req model.CreateOrderRequest) (model.Order, error) {
	item, err := s.resolveItem(ctx, user, req)
	if err != nil {
		return model.Order{}, err
	}

	now := s.now().UTC()
	order := model.Order{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		PaymentInfo: strings.TrimSpace(req.PaymentInfo),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if item.kind == model.ItemCourse {
		order.CourseID = &item.id
	} else {
		order.ProductID = &item.id
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return model.Order{}, err
	}

	fresh, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return model.Order{}, err
	}
	if err := s.sessions.Sync(ctx, fresh); err != nil {
		return model.Order{}, err
	}

	s.mailConfirmation(ctx, fresh, order, item)

	s.bus.Publish(event.New(event.TypeOrderCreated, user.ID, event.OrderCreated{
		OrderID:  order.ID,
		UserID:   user.ID,
		UserName: user.Name,
		ItemKind: item.kind,
		ItemID:   item.id,
		ItemName: item.name,
	}))

	slog.Info("order created", "order_id", order.ID, "user_id", user.ID, "item_kind", item.kind, "item_id", item.id)
	return order, nil
}

func (s *OrderService) List(ctx context.Context) ([]model.Order, error) {
	return s.orders.List(ctx)
}

func (s *OrderService) resolveItem(ctx context.Context, user model.User, req model.CreateOrderRequest) (orderItem, error) {
	courseID := strings.TrimSpace(req.CourseID)
	productID := strings.TrimSpace(req.ProductID)
	if (courseID == "") == (productID == "") {
		return orderItem{}, apierror.BadRequest("exactly one of course_id or product_id is required")
	}

	if courseID != "" {
		if user.OwnsCourse(courseID) {
			return orderItem{}, model.ErrAlreadyPurchased
		}
		course, err := s.courses.FindByID(ctx, courseID)
		if err != nil {
			return orderItem{}, err
		}
		return orderItem{kind: model.ItemCourse, id: course.ID, name: course.Name, price: course.Price}, nil
	}

	if user.OwnsProduct(productID) {
		return orderItem{}, model.ErrAlreadyPurchased
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return orderItem{}, err
	}
	return orderItem{kind: model.ItemProduct, id: product.ID, name: product.ParentTitle, price: product.Price}, nil
}

func (s *OrderService) mailConfirmation(ctx context.Context, user model.User, order model.Order, item orderItem) {
	msg, err := mail.OrderConfirmationMail(user.Email, mail.OrderData{
		Name:     user.Name,
		ItemName: item.name,
		Price:    item.price,
		OrderID:  order.ID[:8],
		Date:     order.CreatedAt.Format("January 2, 2006"),
	})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		slog.Error("order confirmation mail failed", "order_id", order.ID, "error", err)
	}
}
