package models

import "errors"

type DeliveryStatus string

const (
	DeliveryStatusNew     DeliveryStatus = "New"
	DeliveryStatusShipped DeliveryStatus = "Shipped"
	DeliveryStatusVoid    DeliveryStatus = "Void"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "Unpaid"
	PaymentStatusSettled PaymentStatus = "Settled"
	PaymentStatusVoid    PaymentStatus = "Void"
)

// Client levels drive the follow-up schedule.
// 0 closed deal, 1..4 descending priority, 5 lost.
type ClientLevel int

const (
	ClientLevelDeal   ClientLevel = 0
	ClientLevelFirst  ClientLevel = 1
	ClientLevelSecond ClientLevel = 2
	ClientLevelThird  ClientLevel = 3
	ClientLevelFourth ClientLevel = 4
	ClientLevelLost   ClientLevel = 5
)

func (l ClientLevel) Valid() bool {
	return l >= ClientLevelDeal && l <= ClientLevelLost
}

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	switch DeliveryStatus(s) {
	case DeliveryStatusNew, DeliveryStatusShipped, DeliveryStatusVoid:
		return DeliveryStatus(s), nil
	}
	return "", errors.New("invalid delivery status")
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusUnpaid, PaymentStatusSettled, PaymentStatusVoid:
		return PaymentStatus(s), nil
	}
	return "", errors.New("invalid payment status")
}
