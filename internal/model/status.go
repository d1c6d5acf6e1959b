package model

import (
	"fmt"
	"strings"
)

// FulfillmentStatus is the delivery lifecycle stage of an order.
type FulfillmentStatus string

const (
	StatusPending    FulfillmentStatus = "pending"
	StatusProcessing FulfillmentStatus = "processing"
	StatusShipped    FulfillmentStatus = "shipped"
	StatusCompleted  FulfillmentStatus = "completed"
	StatusCancelled  FulfillmentStatus = "cancelled"
)

// FulfillmentStatuses lists every valid fulfillment status in lifecycle order.
var FulfillmentStatuses = []FulfillmentStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusCompleted,
	StatusCancelled,
}

// PaymentStatus is the funds collection stage of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentStatuses lists every valid payment status.
var PaymentStatuses = []PaymentStatus{
	PaymentPending,
	PaymentPaid,
	PaymentFailed,
	PaymentRefunded,
}

// ParseFulfillmentStatus returns the status named by s or an INVALID_STATUS error.
func ParseFulfillmentStatus(s string) (FulfillmentStatus, error) {
	for _, status := range FulfillmentStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", NewInvalidStatusError(fmt.Sprintf(
		"Invalid status. Must be one of: %s", joinStatuses(FulfillmentStatuses)))
}

// ParsePaymentStatus returns the payment status named by s or an INVALID_STATUS error.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, status := range PaymentStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", NewInvalidStatusError(fmt.Sprintf(
		"Invalid payment status. Must be one of: %s", joinStatuses(PaymentStatuses)))
}

// SetFulfillmentStatus overwrites the fulfillment status. Any valid status may
// follow any other; administrators use this to correct mistakes.
func (o *Order) SetFulfillmentStatus(s string) error {
	status, err := ParseFulfillmentStatus(s)
	if err != nil {
		return err
	}
	o.Status = status
	return nil
}

// SetPaymentStatus overwrites the payment status. Marking a pending order as
// paid also moves it to processing.
func (o *Order) SetPaymentStatus(s string) error {
	status, err := ParsePaymentStatus(s)
	if err != nil {
		return err
	}
	o.PaymentStatus = status
	if status == PaymentPaid && o.Status == StatusPending {
		o.Status = StatusProcessing
	}
	return nil
}

func joinStatuses[S ~string](statuses []S) string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
