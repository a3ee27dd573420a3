package protocol

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Robot executes commands one at a time. The vendor driver, a simulator and
// a dry-run logger all satisfy it
type Robot interface {
	Execute(ctx context.Context, c Command) error
}

// Replay sends every command of a protocol to a robot in order. It stops at
// the first failure or when ctx is done
func Replay(ctx context.Context, r Robot, p *Protocol) error {
	for i, c := range p.Commands {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("replay stopped before command %d: %w", i, err)
		}
		if err := r.Execute(ctx, c); err != nil {
			return fmt.Errorf("command %d (%s): %w", i, c.Kind, err)
		}
	}
	return nil
}

// LogRobot logs commands instead of running them
type LogRobot struct {
	Logger *zap.Logger
}

// Execute logs a single command
func (l LogRobot) Execute(_ context.Context, c Command) error {
	fields := []zap.Field{zap.String("command", string(c.Kind))}
	if c.Pipette != "" {
		fields = append(fields, zap.String("pipette", c.Pipette))
	}
	if c.Module != "" {
		fields = append(fields, zap.String("module", c.Module))
	}
	if c.ID != "" {
		fields = append(fields, zap.String("id", c.ID), zap.String("name", c.Name))
	}
	if c.Volume > 0 {
		fields = append(fields, zap.Float64("volume", c.Volume))
	}
	if c.Location != nil {
		fields = append(fields, zap.String("labware", c.Location.Labware), zap.String("well", c.Location.Well))
	}
	if c.Temperature != 0 {
		fields = append(fields, zap.Float64("temperature", c.Temperature))
	}
	if c.Message != "" {
		fields = append(fields, zap.String("message", c.Message))
	}
	l.Logger.Info("robot", fields...)
	return nil
}

// Tee sends each command to every robot in order, stopping at the first
// that fails
type Tee []Robot

// Execute implements Robot
func (t Tee) Execute(ctx context.Context, c Command) error {
	for _, r := range t {
		if err := r.Execute(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
