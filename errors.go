package fsm

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the state machine
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// State was not found in the definition
	ErrCodeStateNotFound
	// Rule references are incomplete or dangling
	ErrCodeInvalidRule
	// Definition is invalid
	ErrCodeInvalidConfiguration
)

// ConfigurationError is returned when a definition cannot be used to build a machine
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// StateError represents state-related errors
type StateError struct {
	Code    ErrorCode
	StateID StateID
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error [%s]: %s", e.StateID, e.Message)
}

// NewStateNotFoundError creates a new state not found error
func NewStateNotFoundError(stateID StateID) *StateError {
	return &StateError{
		Code:    ErrCodeStateNotFound,
		StateID: stateID,
		Message: fmt.Sprintf("state '%s' not found", stateID),
	}
}

// RuleError describes a problem with one rule of an action
type RuleError struct {
	Code   ErrorCode
	Action ActionID
	Index  int
	From   StateID
	To     StateID
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule error [%s#%d %s->%s]: %s", e.Action, e.Index, e.From, e.To, e.Reason)
}

// NewRuleError creates a new rule error
func NewRuleError(action ActionID, index int, from, to StateID, reason string) *RuleError {
	return &RuleError{
		Code:   ErrCodeInvalidRule,
		Action: action,
		Index:  index,
		From:   from,
		To:     to,
		Reason: reason,
	}
}

// IsConfigurationError checks if an error is or wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsStateError checks if an error is or wraps a StateError
func IsStateError(err error) bool {
	var target *StateError
	return errors.As(err, &target)
}

// IsRuleError checks if an error is or wraps a RuleError
func IsRuleError(err error) bool {
	var target *RuleError
	return errors.As(err, &target)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		stateErr  *StateError
		ruleErr   *RuleError
		configErr *ConfigurationError
	)
	switch {
	case errors.As(err, &stateErr):
		return stateErr.Code
	case errors.As(err, &ruleErr):
		return ruleErr.Code
	case errors.As(err, &configErr):
		return ErrCodeInvalidConfiguration
	default:
		return ErrCodeNone
	}
}
