package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pubky/pubky-ffi-go/pkg/pubky"
)

// checkText asserts the data/error invariant of a text result.
func checkText(t *testing.T, r Result) {
	t.Helper()
	if r.Code() == CodeOK {
		assert.Empty(t, r.Error())
		return
	}
	assert.NotEmpty(t, r.Error())
	assert.Empty(t, r.Data())
}

func checkBytes(t *testing.T, r BytesResult) {
	t.Helper()
	if r.Code() == CodeOK {
		assert.Empty(t, r.Error())
		return
	}
	assert.NotEmpty(t, r.Error())
	assert.Nil(t, r.Data())
}

func TestFailureNormalized(t *testing.T) {
	r := failText(CodeOK, "")
	assert.Equal(t, CodeBuild, r.Code())
	assert.Equal(t, unknownError, r.Error())
	checkText(t, r)

	b := failBytes(CodeParse, "bad")
	assert.Equal(t, CodeParse, b.Code())
	checkBytes(t, b)

	h := failHTTP(CodeOK, "x")
	assert.Equal(t, CodeBuild, h.Code())
	assert.Zero(t, h.Status())
}

func TestEmptyBytesIsNil(t *testing.T) {
	r := okBytes([]byte{})
	assert.True(t, r.OK())
	assert.Nil(t, r.Data())
	assert.Zero(t, r.Len())
}

func TestCodeOf(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, CodeOK},
		{ErrNullHandle, CodeInvalidInput},
		{ErrUsedAfterFree, CodeInvalidInput},
		{invalidf("x"), CodeInvalidInput},
		{panicError{value: "boom"}, CodeBuild},
		{&pubky.Error{Kind: pubky.KindRequest}, CodeRequest},
		{&pubky.Error{Kind: pubky.KindPkarr}, CodePkarr},
		{&pubky.Error{Kind: pubky.KindParse}, CodeParse},
		{&pubky.Error{Kind: pubky.KindAuthentication}, CodeAuthentication},
		{&pubky.Error{Kind: pubky.KindBuild}, CodeBuild},
		{errors.New("anything"), CodeRequest},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, codeOf(tc.err), "%v", tc.err)
	}
}

func TestTextResultCarriesMessage(t *testing.T) {
	r := textResult("ignored", &pubky.Error{Kind: pubky.KindAuthentication, Op: "signout", Err: pubky.ErrSignedOut})
	assert.Equal(t, CodeAuthentication, r.Code())
	assert.Contains(t, r.Error(), "signed out")
	checkText(t, r)
}
