package checkout

import (
	"regexp"

	pkgenums "github.com/capitlshop/storefront-backend/pkg/enums"
	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
)

// ContactDetails is the shipping/contact form collected at the details step.
type ContactDetails struct {
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

// CardDetails is the field set collected for card payment methods.
type CardDetails struct {
	CardNumber string `json:"card_number"`
	CardName   string `json:"card_name"`
	ExpiryDate string `json:"expiry_date"`
	CVV        string `json:"cvv"`
}

// PaymentDetails bundles every payment field subset; only the branch for
// the selected method is read.
type PaymentDetails struct {
	Card  CardDetails `json:"card"`
	UPIID string      `json:"upi_id"`
}

var (
	emailPattern      = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	upiPattern        = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9]+$`)
	whitespacePattern = regexp.MustCompile(`\s`)
)

// contactFields fixes the order presence is checked in; the first empty
// field names the rejection reason.
var contactFields = []struct {
	label string
	value func(ContactDetails) string
}{
	{"first name", func(d ContactDetails) string { return d.FirstName }},
	{"last name", func(d ContactDetails) string { return d.LastName }},
	{"email", func(d ContactDetails) string { return d.Email }},
	{"phone", func(d ContactDetails) string { return d.Phone }},
	{"address", func(d ContactDetails) string { return d.Address }},
	{"city", func(d ContactDetails) string { return d.City }},
	{"state", func(d ContactDetails) string { return d.State }},
	{"zip code", func(d ContactDetails) string { return d.ZipCode }},
}

// ValidateContact accepts or rejects the contact/shipping form. Exactly one
// reason is surfaced per rejection, the first failing check.
func ValidateContact(details ContactDetails) error {
	for _, field := range contactFields {
		if field.value(details) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "Please fill in "+field.label)
		}
	}
	if !emailPattern.MatchString(details.Email) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Please enter a valid email address")
	}
	return nil
}

// ValidatePayment accepts or rejects the payment fields for the selected
// method. Expiry dates are accepted as entered; there is no calendar check.
// PayPal carries no local fields, so it always accepts.
func ValidatePayment(method pkgenums.PaymentMethod, details PaymentDetails) error {
	switch {
	case method.UsesCard():
		card := details.Card
		if card.CardNumber == "" || card.CardName == "" || card.ExpiryDate == "" || card.CVV == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "Please fill all card details")
		}
		if !cardNumberPattern.MatchString(stripWhitespace(card.CardNumber)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "Please enter a valid 16-digit card number")
		}
		if !cvvPattern.MatchString(card.CVV) {
			return pkgerrors.New(pkgerrors.CodeValidation, "Please enter a valid CVV")
		}
	case method == pkgenums.PaymentMethodUPI:
		if details.UPIID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "Please enter your UPI ID")
		}
		if !upiPattern.MatchString(details.UPIID) {
			return pkgerrors.New(pkgerrors.CodeValidation, "Please enter a valid UPI ID (e.g., name@upi)")
		}
	}
	return nil
}

func stripWhitespace(s string) string {
	return whitespacePattern.ReplaceAllString(s, "")
}
