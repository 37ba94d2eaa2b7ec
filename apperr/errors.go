// Package apperr classifies every failure the triangle can hit into one of five
// kinds, which double as the bits of the process exit status.
package apperr

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
)

type Kind uint8

const (
	// KindLibc is a host allocation failure.
	KindLibc Kind = 1 << iota
	// KindVulkan is a failed driver call; the error carries the result code.
	KindVulkan
	// KindApp is an unmet precondition: unsupported format, missing queue family, no adapters.
	KindApp
	// KindDisplay is a failure to reach or bind the window system.
	KindDisplay
	// KindPosix is a file I/O failure.
	KindPosix
)

func (k Kind) String() string {
	switch k {
	case KindLibc:
		return "libc"
	case KindVulkan:
		return "vulkan"
	case KindApp:
		return "app"
	case KindDisplay:
		return "wayland-client"
	case KindPosix:
		return "posix"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Error is the tagged failure returned by every builder in this module.
type Error struct {
	Kind Kind
	// Op names the step that failed, e.g. "create image view".
	Op string
	// Result is only meaningful for KindVulkan with HasResult set.
	Result    common.VkResult
	HasResult bool
	// Path is set for KindPosix failures.
	Path string

	cause error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}

	if e.Kind == KindVulkan {
		line := e.resultLine()
		msg += ": " + line
		if e.cause != nil && e.cause.Error() != line {
			msg += ": " + e.cause.Error()
		}
		return msg
	}

	if e.cause != nil {
		if msg == "" {
			return e.cause.Error()
		}
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) resultLine() string {
	if !e.HasResult {
		return "application-level error (no result reported)"
	}
	line, _ := Describe(e.Result)
	return line
}

func Vulkan(op string, res common.VkResult, cause error) error {
	return errors.WithStackDepth(&Error{Kind: KindVulkan, Op: op, Result: res, HasResult: true, cause: cause}, 1)
}

// VulkanCall tags a driver failure that did not report a result code. It
// decodes as an application-level error.
func VulkanCall(op string, cause error) error {
	return errors.WithStackDepth(&Error{Kind: KindVulkan, Op: op, cause: cause}, 1)
}

func App(format string, args ...interface{}) error {
	return errors.WithStackDepth(&Error{Kind: KindApp, cause: errors.Newf(format, args...)}, 1)
}

func Posix(op, path string, cause error) error {
	return errors.WithStackDepth(&Error{Kind: KindPosix, Op: op, Path: path, cause: cause}, 1)
}

func Display(op string, cause error) error {
	return errors.WithStackDepth(&Error{Kind: KindDisplay, Op: op, cause: cause}, 1)
}

func Libc(format string, args ...interface{}) error {
	return errors.WithStackDepth(&Error{Kind: KindLibc, cause: errors.Newf(format, args...)}, 1)
}

// KindOf reports the kind of err. Errors that did not come through this package
// are treated as application-level failures.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}

	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return KindApp
}

// Is reports whether err is tagged with kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode returns the process exit status for err: 0 for nil, otherwise the bit
// of its kind.
func ExitCode(err error) int {
	return int(KindOf(err))
}
