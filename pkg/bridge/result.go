package bridge

import "fmt"

// Code is the stable numeric status of every boundary call.
type Code int32

const (
	CodeOK             Code = 0
	CodeRequest        Code = 1
	CodePkarr          Code = 2
	CodeParse          Code = 3
	CodeAuthentication Code = 4
	CodeBuild          Code = 5
	CodeInvalidInput   Code = -1
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeRequest:
		return "request"
	case CodePkarr:
		return "pkarr"
	case CodeParse:
		return "parse"
	case CodeAuthentication:
		return "authentication"
	case CodeBuild:
		return "build"
	case CodeInvalidInput:
		return "invalid_input"
	default:
		return fmt.Sprintf("code(%d)", int32(c))
	}
}

const unknownError = "unknown error"

// Result carries text data or an error. Construct it with okText or
// failText so that the data/error invariant holds.
type Result struct {
	data string
	err  string
	code Code
}

func okText(data string) Result { return Result{data: data} }

func failText(code Code, msg string) Result {
	code, msg = normalizeFailure(code, msg)
	return Result{err: msg, code: code}
}

func (r Result) Data() string  { return r.data }
func (r Result) Error() string { return r.err }
func (r Result) Code() Code    { return r.code }
func (r Result) OK() bool      { return r.code == CodeOK }

// BytesResult carries a byte buffer or an error. A nil buffer with CodeOK
// is an empty result.
type BytesResult struct {
	data []byte
	err  string
	code Code
}

func okBytes(data []byte) BytesResult {
	if len(data) == 0 {
		data = nil
	}
	return BytesResult{data: data}
}

func failBytes(code Code, msg string) BytesResult {
	code, msg = normalizeFailure(code, msg)
	return BytesResult{err: msg, code: code}
}

func (r BytesResult) Data() []byte  { return r.data }
func (r BytesResult) Len() int      { return len(r.data) }
func (r BytesResult) Error() string { return r.err }
func (r BytesResult) Code() Code    { return r.code }
func (r BytesResult) OK() bool      { return r.code == CodeOK }

// HTTPResponse is the full result of a plain HTTP request. Headers is a
// JSON object of the response headers.
type HTTPResponse struct {
	status  uint16
	body    string
	headers string
	err     string
	code    Code
}

func okHTTP(status int, body, headers string) HTTPResponse {
	return HTTPResponse{status: uint16(status), body: body, headers: headers}
}

func failHTTP(code Code, msg string) HTTPResponse {
	code, msg = normalizeFailure(code, msg)
	return HTTPResponse{err: msg, code: code}
}

func (r HTTPResponse) Status() uint16  { return r.status }
func (r HTTPResponse) Body() string    { return r.body }
func (r HTTPResponse) Headers() string { return r.headers }
func (r HTTPResponse) Error() string   { return r.err }
func (r HTTPResponse) Code() Code      { return r.code }
func (r HTTPResponse) OK() bool        { return r.code == CodeOK }

// normalizeFailure guarantees a non-zero code and a non-empty message.
func normalizeFailure(code Code, msg string) (Code, string) {
	if code == CodeOK {
		code = CodeBuild
	}
	if msg == "" {
		msg = unknownError
	}
	return code, msg
}
