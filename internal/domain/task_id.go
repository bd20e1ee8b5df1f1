package domain

import (
	"errors"
	"strconv"
)

type TaskID struct {
	value int64
}

var ErrInvalidTaskID = errors.New("invalid task ID: must be a positive integer")

func TaskIDFromInt64(v int64) (TaskID, error) {
	if v <= 0 {
		return TaskID{}, ErrInvalidTaskID
	}

	return TaskID{value: v}, nil
}

func MustTaskID(v int64) TaskID {
	id, err := TaskIDFromInt64(v)
	if err != nil {
		panic(err)
	}

	return id
}

func (t TaskID) Int64() int64 {
	return t.value
}

func (t TaskID) String() string {
	return strconv.FormatInt(t.value, 10)
}

func (t TaskID) IsZero() bool {
	return t.value == 0
}

func (t TaskID) Equals(other TaskID) bool {
	return t.value == other.value
}
