// Command pubkyffi is the C ABI of the pubky SDK. Build it with
//
//	go build -buildmode=c-shared -o libpubky_ffi.so ./cmd/pubkyffi
//
// and include pubky_ffi.h together with the generated header. Every
// exported function delegates to package bridge; this package only
// converts between C and Go values.
package main
