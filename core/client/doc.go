// Package client sends inference requests through a chain of middlewares
// (see the middleware subpackage) and an optional observability layer.
//
// The entry point is [New], configured with [WithMiddleware],
// [WithObserver] and [WithDefaultModel].
package client
