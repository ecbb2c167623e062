package util

import "errors"

var (
	ErrUserNotFound         = errors.New("用户不存在")
	ErrEmailRegistered      = errors.New("该邮箱已被注册")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrUnknownChallengeType = errors.New("unknown challenge type")
	ErrDailyAttemptLimit    = errors.New("daily attempt limit reached (max 2)")
	ErrChallengeCompleted   = errors.New("challenge already completed today")
	ErrNoActiveSession      = errors.New("no active challenge session")
	ErrMaterialNotFound     = errors.New("material not found")
)
