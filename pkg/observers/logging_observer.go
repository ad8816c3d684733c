// Package observers provides observers for monitoring state machine events
package observers

import (
	"github.com/anggasct/fsm"
	"go.uber.org/zap"
)

// LoggingObserver logs machine events through a zap logger.
//
// Transitions are logged at Info, state enter/exit and rejected actions at
// Debug, errors at Error.
type LoggingObserver struct {
	logger *zap.Logger
}

// NewLoggingObserver creates a new logging observer. A nil logger disables logging.
func NewLoggingObserver(logger *zap.Logger) *LoggingObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) with(m fsm.Info) *zap.Logger {
	return o.logger.With(
		zap.String("machine", m.Name()),
		zap.String("machine_id", m.ID()),
	)
}

// OnTransition implements fsm.Observer
func (o *LoggingObserver) OnTransition(m fsm.Info, from, to fsm.StateID, action fsm.ActionID) {
	actionName := string(action)
	if action == "" {
		actionName = "reset"
	}
	o.with(m).Info("transition",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("action", actionName),
	)
}

// OnStateEnter implements fsm.Observer
func (o *LoggingObserver) OnStateEnter(m fsm.Info, state fsm.StateID) {
	o.with(m).Debug("state entered", zap.String("state", string(state)))
}

// OnStateExit implements fsm.ExtendedObserver
func (o *LoggingObserver) OnStateExit(m fsm.Info, state fsm.StateID) {
	o.with(m).Debug("state exited", zap.String("state", string(state)))
}

// OnActionRejected implements fsm.ExtendedObserver
func (o *LoggingObserver) OnActionRejected(m fsm.Info, action fsm.ActionID, reason string) {
	o.with(m).Debug("action rejected",
		zap.String("action", string(action)),
		zap.String("state", string(m.CurrentState())),
		zap.String("reason", reason),
	)
}

// OnError implements fsm.ExtendedObserver
func (o *LoggingObserver) OnError(m fsm.Info, err error) {
	o.with(m).Error("state machine error",
		zap.String("state", string(m.CurrentState())),
		zap.Error(err),
	)
}
