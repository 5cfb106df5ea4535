// Package enginelog defines the structured, stage-aware logging interface
// used across the enhancement engine: a split between stage logs, error
// logs, and progress logs.
package enginelog

import (
	"fmt"

	"github.com/dotsoulja/aqualens/internal/aqerrors"
)

// Logger defines logging behavior for the enhancement engine. Supports
// stage-aware logging, per-run progress, and structured error reporting.
type Logger interface {
	LogStage(stage string, msg string)
	LogError(op string, err error)
	LogProgress(messageKey string, percent int)
}

// ConsoleLogger is the default implementation; it prints to stdout.
type ConsoleLogger struct{}

func (c *ConsoleLogger) LogStage(stage, msg string) {
	fmt.Printf("[aqualens][%s] %s\n", stage, msg)
}

func (c *ConsoleLogger) LogError(op string, err error) {
	if ae, ok := err.(*aqerrors.Error); ok {
		fmt.Printf("[aqualens][%s][error] code=%s stage=%s err=%v\n", op, ae.Code, ae.Stage, ae.Err)
		return
	}
	fmt.Printf("[aqualens][%s][error] %v\n", op, err)
}

func (c *ConsoleLogger) LogProgress(messageKey string, percent int) {
	fmt.Printf("[aqualens][progress] %3d%% %s\n", percent, messageKey)
}

// NoopLogger discards everything; useful when the engine is embedded in a
// GUI that supplies its own progress sink and wants no stdout noise.
type NoopLogger struct{}

func (NoopLogger) LogStage(string, string)     {}
func (NoopLogger) LogError(string, error)      {}
func (NoopLogger) LogProgress(string, int)     {}
