// Package errors provides the classified error primitives used across docd.
//
// Every failure of the publish pipeline is reported as a ClassifiedError whose category
// names the failing concern (config, filesystem, traversal, collision, render, encoding,
// sync). Package sentinels are attached as causes so callers may use either errors.Is on
// the sentinel or HasCategory on the classification.
//
// Example usage:
//
//	err := errors.CollisionError("duplicate uri").
//		WithCause(fmt.Errorf("%w: %s", tree.ErrURICollision, uri)).
//		WithContext("first", "foo").
//		WithContext("second", "foo.md").
//		Build()
package errors
