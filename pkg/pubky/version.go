package pubky

// Set at link time:
//
//	-ldflags "-X github.com/pubky/pubky-ffi-go/pkg/pubky.Version=v0.6.0"
var (
	Version   = "0.6.0-dev"
	GitCommit = ""
)

// UserAgent identifies SDK requests.
func UserAgent() string {
	if GitCommit == "" {
		return "pubky-ffi-go/" + Version
	}
	return "pubky-ffi-go/" + Version + " (" + GitCommit + ")"
}
