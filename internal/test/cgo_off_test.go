//go:build !cgo

package test

const cgoEnabled = false
