package main

import (
	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

// Exit codes follow the sysexits.h values closest to each error kind.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 64
	exitDataErr     = 65
	exitNoInput     = 66
	exitUnavailable = 69
	exitIOErr       = 74
	exitTempFail    = 75
)

func mapErrorToExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case domain.IsKind(err, domain.ErrValidation):
		return exitUsage
	case domain.IsKind(err, domain.ErrParse):
		return exitDataErr
	case domain.IsKind(err, domain.ErrInputMissing), domain.IsKind(err, domain.ErrRecordNotFound):
		return exitNoInput
	case domain.IsKind(err, domain.ErrLocked):
		return exitTempFail
	case domain.IsKind(err, domain.ErrTemporary):
		return exitUnavailable
	case domain.IsKind(err, domain.ErrIO):
		return exitIOErr
	default:
		return exitFailure
	}
}
