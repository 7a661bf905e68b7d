package bridge

import (
	"errors"
	"fmt"

	"github.com/pubky/pubky-ffi-go/pkg/pubky"
)

var (
	ErrNullHandle      = errors.New("null handle")
	ErrStaleHandle     = errors.New("handle is not live")
	ErrUsedAfterFree   = fmt.Errorf("%w: used after release", ErrStaleHandle)
	ErrHandleKind      = errors.New("handle has the wrong kind")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotBuilt        = errors.New("pubky bridge built without cgo")
)

// panicError is a recovered panic.
type panicError struct{ value any }

func (p panicError) Error() string { return fmt.Sprintf("internal error: %v", p.value) }

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// codeOf maps an error to its boundary code.
func codeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var pe panicError
	switch {
	case errors.As(err, &pe):
		return CodeBuild
	case errors.Is(err, ErrNullHandle),
		errors.Is(err, ErrStaleHandle),
		errors.Is(err, ErrHandleKind),
		errors.Is(err, ErrInvalidArgument):
		return CodeInvalidInput
	}
	kind, ok := pubky.KindOf(err)
	if !ok {
		return CodeRequest
	}
	switch kind {
	case pubky.KindRequest:
		return CodeRequest
	case pubky.KindPkarr:
		return CodePkarr
	case pubky.KindParse:
		return CodeParse
	case pubky.KindAuthentication:
		return CodeAuthentication
	default:
		return CodeBuild
	}
}

func textResult(v string, err error) Result {
	if err != nil {
		return failText(codeOf(err), err.Error())
	}
	return okText(v)
}

func bytesResult(v []byte, err error) BytesResult {
	if err != nil {
		return failBytes(codeOf(err), err.Error())
	}
	return okBytes(v)
}

// InvalidText reports a rejected argument detected by the C layer.
func InvalidText(what string) Result { return failText(CodeInvalidInput, what) }

// InvalidBytes is InvalidText for byte results.
func InvalidBytes(what string) BytesResult { return failBytes(CodeInvalidInput, what) }

// InvalidHTTP is InvalidText for HTTP responses.
func InvalidHTTP(what string) HTTPResponse { return failHTTP(CodeInvalidInput, what) }

// transportErr classifies plain HTTP failures as CodeRequest.
func transportErr(err error) error {
	if err == nil {
		return nil
	}
	return &pubky.Error{Kind: pubky.KindRequest, Op: "http", Err: err}
}
