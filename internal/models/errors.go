package models

import "errors"

var (
	ErrInvalidRubric = errors.New("invalid rubric")
	ErrInvalidLevel  = errors.New("invalid rating level")
	ErrUnknownItem   = errors.New("unknown rubric item")
	ErrUnknownField  = errors.New("unknown employee field")
	ErrInvalidPeriod = errors.New("invalid evaluation period")
	ErrInvalidDate   = errors.New("invalid report date")
)
