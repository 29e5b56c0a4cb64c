// Package apperr defines the error taxonomy shared by repositories, services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindInternal     Kind = "INTERNAL"
)

// Reason strings are returned to clients verbatim.
const (
	ReasonInvalidUserID          = "InvalidUserId"
	ReasonCannotMessageSelf      = "CannotMessageSelf"
	ReasonEmptyMessage           = "EmptyMessage"
	ReasonMissingAudioAttachment = "MissingAudioAttachment"
	ReasonInvalidContentCard     = "InvalidContentCard"
	ReasonInvalidClientID        = "InvalidClientId"
	ReasonInvalidPayload         = "InvalidPayload"
	ReasonUserNotFound           = "UserNotFound"
	ReasonContentItemNotFound    = "ContentItemNotFound"
	ReasonNotificationNotFound   = "NotificationNotFound"
	ReasonFollowSelf             = "FollowSelf"
	ReasonDuplicate              = "Duplicate"
	ReasonUnauthorized           = "Unauthorized"
	ReasonInternal               = "Internal"
)

type Error struct {
	Kind    Kind   `json:"kind"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Cause)
	}
	return e.Reason + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is 按 Reason 匹配，便于 errors.Is(err, apperr.ErrEmptyMessage)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

func New(kind Kind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

func Wrap(kind Kind, reason, message string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message, Cause: cause}
}

func Validation(reason, message string) *Error { return New(KindValidation, reason, message) }

func NotFound(reason, message string) *Error { return New(KindNotFound, reason, message) }

func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, ReasonInternal, message, cause)
}

// As 提取 *Error，非 apperr 错误返回 nil
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// KindOf 非 apperr 错误视为 Internal
func KindOf(err error) Kind {
	if e := As(err); e != nil {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrInvalidUserID          = Validation(ReasonInvalidUserID, "user id is malformed")
	ErrCannotMessageSelf      = Validation(ReasonCannotMessageSelf, "cannot send a message to yourself")
	ErrEmptyMessage           = Validation(ReasonEmptyMessage, "message text is empty and there are no attachments")
	ErrMissingAudioAttachment = Validation(ReasonMissingAudioAttachment, "voice message requires an audio attachment")
	ErrInvalidClientID        = Validation(ReasonInvalidClientID, "clientId must be at most 128 characters")
	ErrUserNotFound           = NotFound(ReasonUserNotFound, "user not found")
	ErrContentItemNotFound    = NotFound(ReasonContentItemNotFound, "content item not found")
	ErrNotificationNotFound   = NotFound(ReasonNotificationNotFound, "notification not found")
	ErrFollowSelf             = Validation(ReasonFollowSelf, "cannot follow self")
	ErrDuplicate              = New(KindConflict, ReasonDuplicate, "record already exists")
	ErrUnauthorized           = New(KindUnauthorized, ReasonUnauthorized, "missing or invalid token")
)

// InvalidContentCard 每个字段有独立的错误信息
func InvalidContentCard(message string) *Error {
	return Validation(ReasonInvalidContentCard, message)
}
