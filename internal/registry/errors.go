package registry

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched with errors.Is.
var (
	ErrNotFound   = errors.New("icon not found")
	ErrAliasCycle = errors.New("alias chain exceeds hop limit")
)

// NotFoundError reports a reference that no loader or registration serves.
// UnknownNamespace distinguishes "no such namespace" from "namespace exists
// but has no such icon"; both match ErrNotFound.
type NotFoundError struct {
	Namespace        string
	Name             string
	UnknownNamespace bool
}

func (e *NotFoundError) Error() string {
	if e.UnknownNamespace {
		return fmt.Sprintf("icon %s:%s: unknown namespace %q", e.Namespace, e.Name, e.Namespace)
	}
	return fmt.Sprintf("icon %s:%s: not found", e.Namespace, e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AliasCycleError reports an alias chain longer than MaxAliasHops. Chain
// lists every reference visited, starting with the one requested.
type AliasCycleError struct {
	Reference string
	Chain     []string
}

func (e *AliasCycleError) Error() string {
	return fmt.Sprintf("alias %q: more than %d hops (%s)", e.Reference, MaxAliasHops, strings.Join(e.Chain, " -> "))
}

func (e *AliasCycleError) Is(target error) bool {
	return target == ErrAliasCycle
}
