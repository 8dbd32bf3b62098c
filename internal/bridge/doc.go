// Package bridge owns the logic-side half of the cross-context call bridge.
//
// Ownership boundary:
// - module registration per owning instance
// - lazily built, memoized call-path handles
// - wire encoding of property references and calls
//
// Resolving and executing a wire call on the view side is owned by the
// receiving dispatcher and is not implemented here.
package bridge
