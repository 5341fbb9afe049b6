// Package internalcheck holds static-analysis tests for walletcrypto. It is
// not part of the public API and exists only to enforce coding policy that
// go vet does not check on its own.
package internalcheck
