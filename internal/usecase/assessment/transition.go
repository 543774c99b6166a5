package assessment

import (
	"context"

	"github.com/futig/mitr-backend/internal/entity"
	pkghttp "github.com/futig/mitr-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var failureMessages = map[entity.Operation]string{
	entity.OperationSubmitProfile: "Failed to submit profile. Please check your network connection and try again.",
	entity.OperationStartSession:  "Failed to start the test session. Please try again.",
	entity.OperationSubmitAnswer:  "Failed to submit answer. Please try again.",
}

// transition is one remote state change. The optimistic part is applied by the
// caller before the request; resolve applies exactly one of the outcomes after it.
type transition struct {
	uc        *Usecase
	session   *entity.Session
	operation entity.Operation
}

type outcomes struct {
	commit     func()
	compensate func()
	rollback   func()
}

func (uc *Usecase) beginTransition(s *entity.Session, op entity.Operation) *transition {
	s.LastTransition = &entity.Transition{
		Operation: op,
		Outcome:   entity.TransitionPending,
		At:        uc.now(),
	}
	s.UpdatedAt = uc.now()

	return &transition{uc: uc, session: s, operation: op}
}

func (t *transition) resolve(ctx context.Context, err error, o outcomes) entity.TransitionOutcome {
	s := t.session

	var outcome entity.TransitionOutcome
	switch {
	case err == nil:
		o.commit()
		outcome = entity.TransitionCommitted
	case pkghttp.IsNetworkError(err):
		ctxzap.Warn(ctx, "backend unreachable, continuing with local fallback",
			zap.String("operation", string(t.operation)), zap.Error(err))
		o.compensate()
		outcome = entity.TransitionCompensated
	default:
		ctxzap.Error(ctx, "remote transition failed",
			zap.String("operation", string(t.operation)), zap.Error(err))
		o.rollback()
		s.Failure = &entity.Failure{
			Kind:    string(pkghttp.KindOf(err)),
			Message: failureMessages[t.operation],
		}
		outcome = entity.TransitionFailed
	}

	s.LastTransition = &entity.Transition{
		Operation: t.operation,
		Outcome:   outcome,
		At:        t.uc.now(),
	}
	if err != nil {
		s.LastTransition.Error = err.Error()
	}
	s.UpdatedAt = t.uc.now()

	t.uc.metrics.Transition(string(t.operation), string(outcome))
	return outcome
}
