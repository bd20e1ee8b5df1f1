package domain

import "errors"

var (
	ErrAlarmNotFound = errors.New("alarm not found")

	ErrInvalidAlarmID     = errors.New("invalid alarm ID")
	ErrInvalidAlarmStatus = errors.New("invalid alarm status")
)
