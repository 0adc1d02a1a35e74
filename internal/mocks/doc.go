// Package mocks provides mock implementations for testing purposes.
package mocks

//go:generate mockgen -destination=mock_notify.go -package=mocks github.com/hance08/paycore/internal/notify Publisher,Sink
//go:generate mockgen -destination=mock_platform.go -package=mocks github.com/hance08/paycore/internal/platform Clock,IDGenerator
