package controllers

import (
	"net/http"

	"github.com/capitlshop/storefront-backend/api/middleware"
	"github.com/capitlshop/storefront-backend/api/responses"
	"github.com/capitlshop/storefront-backend/api/validators"
	"github.com/capitlshop/storefront-backend/internal/checkout"
	pkgenums "github.com/capitlshop/storefront-backend/pkg/enums"
	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
	"github.com/capitlshop/storefront-backend/pkg/logger"
)

type contactDetailsRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

type paymentMethodRequest struct {
	Method string `json:"method" validate:"required"`
}

type paymentDetailsRequest struct {
	CardNumber string `json:"card_number"`
	CardName   string `json:"card_name"`
	ExpiryDate string `json:"expiry_date"`
	CVV        string `json:"cvv"`
	UPIID      string `json:"upi_id"`
}

type checkoutStateResponse struct {
	Step          string                  `json:"step"`
	Contact       checkout.ContactDetails `json:"contact"`
	PaymentMethod string                  `json:"payment_method"`
	Payment       checkout.PaymentDetails `json:"payment"`
}

func newCheckoutState(snapshot checkout.Snapshot) checkoutStateResponse {
	return checkoutStateResponse{
		Step:          snapshot.Step.String(),
		Contact:       snapshot.Contact,
		PaymentMethod: snapshot.Method.String(),
		Payment:       snapshot.Payment,
	}
}

func sessionFromRequest(r *http.Request, manager *checkout.Manager) (*checkout.Session, string, error) {
	shopperID := middleware.UserIDFromContext(r.Context())
	if shopperID == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	session, err := manager.SessionFor(r.Context(), shopperID)
	if err != nil {
		return nil, "", err
	}
	return session, shopperID, nil
}

// CheckoutState returns the current session view.
func CheckoutState(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutState(session.State()))
	}
}

// CheckoutBegin starts the checkout from a non-empty cart.
func CheckoutBegin(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := session.Begin(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutState(session.State()))
	}
}

// CheckoutSubmitDetails runs the contact gate and moves on to payment.
func CheckoutSubmitDetails(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload contactDetailsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		details := checkout.ContactDetails{
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Email:     payload.Email,
			Phone:     payload.Phone,
			Address:   payload.Address,
			City:      payload.City,
			State:     payload.State,
			ZipCode:   payload.ZipCode,
			Country:   payload.Country,
		}
		if err := session.SubmitDetails(r.Context(), details); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutState(session.State()))
	}
}

// CheckoutSelectPaymentMethod switches the active payment branch.
func CheckoutSelectPaymentMethod(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := pkgenums.ParsePaymentMethod(payload.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown payment method"))
			return
		}
		if err := session.SelectPaymentMethod(method); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutState(session.State()))
	}
}

// CheckoutSubmitPayment runs the payment gate and moves on to confirmation.
func CheckoutSubmitPayment(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentDetailsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		details := checkout.PaymentDetails{
			Card: checkout.CardDetails{
				CardNumber: payload.CardNumber,
				CardName:   payload.CardName,
				ExpiryDate: payload.ExpiryDate,
				CVV:        payload.CVV,
			},
			UPIID: payload.UPIID,
		}
		if err := session.SubmitPayment(r.Context(), details); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutState(session.State()))
	}
}

// CheckoutBack returns the shopper to the cart without losing form data.
func CheckoutBack(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session.BackToCart()
		responses.WriteSuccess(w, newCheckoutState(session.State()))
	}
}

// CheckoutComplete places the order: the cart empties and the session ends.
func CheckoutComplete(manager *checkout.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopperID := middleware.UserIDFromContext(r.Context())
		if shopperID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		if err := manager.Complete(r.Context(), shopperID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "completed"})
	}
}
