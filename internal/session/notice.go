package session

import (
	"errors"
	"fmt"
	"time"

	"pm-launchpad/internal/advisor"
)

// NoticeKind groups failures the way the user needs to react to them.
type NoticeKind string

const (
	NoticeTransport  NoticeKind = "transport"
	NoticeParse      NoticeKind = "parse"
	NoticeValidation NoticeKind = "validation"
	NoticeInput      NoticeKind = "input"
	NoticeInternal   NoticeKind = "internal"
)

// Notice is a user-visible report of the most recent failed operation.
type Notice struct {
	Kind      NoticeKind
	Operation string
	Message   string
	At        time.Time
}

func newNotice(op string, err error, at time.Time) *Notice {
	n := &Notice{Operation: op, At: at}
	subject := operationSubject(op)
	switch code := advisor.CodeOf(err); code {
	case advisor.ErrorRateLimited:
		n.Kind = NoticeTransport
		n.Message = "The advisor service is rate limiting requests. Wait a moment, then try " + subject + " again."
	case advisor.ErrorTimeout:
		n.Kind = NoticeTransport
		n.Message = "The advisor took too long to respond to " + subject + ". Try again."
	case advisor.ErrorTransport:
		n.Kind = NoticeTransport
		n.Message = "The advisor service could not be reached for " + subject + ". Check your connection and API key."
	case advisor.ErrorParse:
		n.Kind = NoticeParse
		n.Message = "The advisor's reply to " + subject + " could not be read. Try again."
	case advisor.ErrorValidation:
		n.Kind = NoticeValidation
		n.Message = fmt.Sprintf("The advisor's %s failed validation: %s", subject, detail(err))
	case advisor.ErrorInvalidInput:
		n.Kind = NoticeInput
		n.Message = "The request for " + subject + " was rejected: " + detail(err)
	default:
		n.Kind = NoticeInternal
		n.Message = "Something went wrong with " + subject + "."
	}
	return n
}

func operationSubject(op string) string {
	switch op {
	case advisor.OperationCharter:
		return "the charter"
	case advisor.OperationStakeholders:
		return "the stakeholder register"
	default:
		return "your message"
	}
}

func detail(err error) string {
	var e *advisor.Error
	if errors.As(err, &e) {
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Reason
	}
	return err.Error()
}
