// Package internal holds identifier generation and code-format helpers shared
// by the root package. Nothing here is part of the public API.
package internal
