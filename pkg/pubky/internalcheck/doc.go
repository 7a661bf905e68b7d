// Package internalcheck holds static policy tests over the SDK and bridge
// sources. It has no exported API.
package internalcheck
