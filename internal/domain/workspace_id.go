package domain

import (
	"errors"
	"strconv"
)

type WorkspaceID struct {
	value int64
}

var ErrInvalidWorkspaceID = errors.New("invalid workspace ID: must be a positive integer")

func WorkspaceIDFromInt64(v int64) (WorkspaceID, error) {
	if v <= 0 {
		return WorkspaceID{}, ErrInvalidWorkspaceID
	}

	return WorkspaceID{value: v}, nil
}

func WorkspaceIDFromString(s string) (WorkspaceID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return WorkspaceID{}, ErrInvalidWorkspaceID
	}

	return WorkspaceIDFromInt64(v)
}

func MustWorkspaceID(v int64) WorkspaceID {
	id, err := WorkspaceIDFromInt64(v)
	if err != nil {
		panic(err)
	}

	return id
}

func (w WorkspaceID) Int64() int64 {
	return w.value
}

func (w WorkspaceID) String() string {
	return strconv.FormatInt(w.value, 10)
}

func (w WorkspaceID) IsZero() bool {
	return w.value == 0
}

func (w WorkspaceID) Equals(other WorkspaceID) bool {
	return w.value == other.value
}
