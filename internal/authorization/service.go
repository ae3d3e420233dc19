package authorization

import (
	"context"
	"errors"
)

type Service interface {
	// Authorize checks whether the actor may perform action on object.
	Authorize(ctx context.Context, actor, object, action string) error
	// Grant assigns a role to an actor.
	Grant(ctx context.Context, actor, role string) error
}

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrInvalidRole   = errors.New("invalid_role")
	ErrForbidden     = errors.New("forbidden")
)
