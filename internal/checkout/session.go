package checkout

import (
	"context"
	"sync"

	pkgenums "github.com/capitlshop/storefront-backend/pkg/enums"
	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
)

// CartStore is the slice of the shopper's cart the checkout flow touches.
type CartStore interface {
	Len() int
	Clear(ctx context.Context) error
}

// Notifier delivers categorized events to the shopper's feed. Delivery is
// best-effort; a failed notification never fails a transition.
type Notifier interface {
	Success(ctx context.Context, shopperID, message string)
	Error(ctx context.Context, shopperID, message string)
}

// DefaultCountry pre-fills the contact form's country field.
const DefaultCountry = "United States"

// Session is one checkout attempt: the active step plus every form field
// entered so far. Form data survives back-navigation within the attempt;
// the session itself is destroyed on completion.
type Session struct {
	shopperID string
	cart      CartStore
	notifier  Notifier

	mu      sync.Mutex
	step    pkgenums.CheckoutStep
	contact ContactDetails
	method  pkgenums.PaymentMethod
	payment PaymentDetails
}

// Snapshot is a read-only view of the session for display.
type Snapshot struct {
	Step    pkgenums.CheckoutStep
	Contact ContactDetails
	Method  pkgenums.PaymentMethod
	Payment PaymentDetails
}

// NewSession builds a fresh attempt at the cart step with the original
// form defaults.
func NewSession(shopperID string, cart CartStore, notifier Notifier) (*Session, error) {
	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifier required")
	}
	return &Session{
		shopperID: shopperID,
		cart:      cart,
		notifier:  notifier,
		step:      pkgenums.CheckoutStepCart,
		contact:   ContactDetails{Country: DefaultCountry},
		method:    pkgenums.PaymentMethodCreditCard,
	}, nil
}

// Begin moves the session from cart to details. The only guard is a
// non-empty cart.
func (s *Session) Begin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStep(pkgenums.CheckoutStepCart); err != nil {
		return err
	}
	if s.cart.Len() == 0 {
		err := pkgerrors.New(pkgerrors.CodeValidation, "Your cart is empty")
		s.notifier.Error(ctx, s.shopperID, err.Message())
		return err
	}
	s.step = pkgenums.CheckoutStepDetails
	return nil
}

// SubmitDetails moves from details to payment when the contact gate accepts. The
// submitted fields are retained either way, so a rejected shopper edits in
// place instead of retyping.
func (s *Session) SubmitDetails(ctx context.Context, details ContactDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStep(pkgenums.CheckoutStepDetails); err != nil {
		return err
	}
	if details.Country == "" {
		details.Country = s.contact.Country
	}
	s.contact = details

	if err := ValidateContact(s.contact); err != nil {
		s.notifier.Error(ctx, s.shopperID, pkgerrors.As(err).Message())
		return err
	}
	s.step = pkgenums.CheckoutStepPayment
	return nil
}

// SelectPaymentMethod switches the active payment branch. It is not a
// transition; the gate for the new method runs on the next SubmitPayment.
func (s *Session) SelectPaymentMethod(method pkgenums.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStep(pkgenums.CheckoutStepPayment); err != nil {
		return err
	}
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	s.method = method
	return nil
}

// SubmitPayment moves from payment to confirmation when the gate for the selected
// method accepts. Fields are retained on rejection, like SubmitDetails.
func (s *Session) SubmitPayment(ctx context.Context, details PaymentDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStep(pkgenums.CheckoutStepPayment); err != nil {
		return err
	}
	s.payment = details

	if err := ValidatePayment(s.method, s.payment); err != nil {
		s.notifier.Error(ctx, s.shopperID, pkgerrors.As(err).Message())
		return err
	}
	s.step = pkgenums.CheckoutStepConfirmation
	return nil
}

// BackToCart resets the step from anywhere without touching the cart or any
// entered form data, so stepping back to review loses nothing.
func (s *Session) BackToCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = pkgenums.CheckoutStepCart
}

// Complete finishes the attempt from the confirmation step: the cart is
// cleared, a success event is emitted, and the step resets to cart.
func (s *Session) Complete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStep(pkgenums.CheckoutStepConfirmation); err != nil {
		return err
	}
	if err := s.cart.Clear(ctx); err != nil {
		return err
	}
	s.notifier.Success(ctx, s.shopperID, "Payment Successful! Your order has been placed.")
	s.step = pkgenums.CheckoutStepCart
	return nil
}

// State returns the current session view.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Step:    s.step,
		Contact: s.contact,
		Method:  s.method,
		Payment: s.payment,
	}
}

func (s *Session) requireStep(want pkgenums.CheckoutStep) error {
	if s.step != want {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			"checkout is at the "+s.step.String()+" step").
			WithDetails(map[string]string{"expected_step": want.String()})
	}
	return nil
}
