package domain

import "context"

// HookEvent names a lifecycle point of a catalog entry or document.
type HookEvent string

const (
	BeforeCreate  HookEvent = "before_create"
	AfterCreate   HookEvent = "after_create"
	BeforeUpdate  HookEvent = "before_update"
	AfterUpdate   HookEvent = "after_update"
	BeforeDelete  HookEvent = "before_delete"
	AfterDelete   HookEvent = "after_delete"
	AfterFinalize HookEvent = "after_finalize"
)

// Hook runs at a lifecycle point. An error from a before-hook aborts the
// operation; after-hooks run once the change is stored.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry keeps hooks per event in registration order.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{hooks: make(map[HookEvent][]Hook[T])}
}

// On appends hooks for event.
func (r *HookRegistry[T]) On(event HookEvent, hooks ...Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hooks...)
}

// OnBeforeSave registers hook for both create and update.
func (r *HookRegistry[T]) OnBeforeSave(hook Hook[T]) {
	r.On(BeforeCreate, hook)
	r.On(BeforeUpdate, hook)
}

// OnAfterFinalize registers a hook to run after a document is finalized.
func (r *HookRegistry[T]) OnAfterFinalize(hook Hook[T]) {
	r.On(AfterFinalize, hook)
}

// Run executes the hooks of event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}
