package entity

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrWindowExpired = errors.New("cancellation window expired")
	ErrRefundFailed  = errors.New("refund failed")
)
