//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// These imports are not used at runtime. They keep mockgen tracked in go.mod so
// that `go generate ./...` regenerates the mocks/ package on a fresh checkout.
package friendly_chat

import (
	_ "go.uber.org/mock/mockgen"
)
