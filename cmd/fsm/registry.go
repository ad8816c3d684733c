package main

import (
	"strconv"

	"github.com/anggasct/fsm"
	"github.com/anggasct/fsm/pkg/loader"
	"go.uber.org/zap"
)

// builtinRegistry resolves the names a definition may use from the command
// line. Action arguments are the raw strings given after '='.
func builtinRegistry(logger *zap.Logger) *loader.Registry[string] {
	return loader.NewRegistry[string]().
		Condition("truthy", truthy).
		Condition("falsy", fsm.Not(fsm.Condition[string](truthy))).
		Condition("nonempty", func(arg string) bool { return arg != "" }).
		Hook("log", func(data any) {
			logger.Info("hook", zap.Any("data", data))
		})
}

func truthy(arg string) bool {
	ok, err := strconv.ParseBool(arg)
	return err == nil && ok
}

func loadDocument(path string, logger *zap.Logger) (*loader.Document[string], error) {
	return loader.LoadFile(path, builtinRegistry(logger))
}
