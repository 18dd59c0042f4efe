// Package controller provides the hardware controller backend. It delegates
// execution to an external control-software command: the translated command
// sequence is written to the subprocess on stdin as JSON, and the per-shot
// outcomes are read back from stdout. The pipeline stays agnostic of the
// pulse-level work happening behind the command.
package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/qbridge-labs/qbridge/pkg/backend"
	"github.com/qbridge-labs/qbridge/pkg/core"
)

// BackendName is the registry name of the controller backend.
const BackendName = "controller"

func init() {
	backend.Register(BackendName, func(cfg backend.Config, logger *slog.Logger) (backend.Backend, error) {
		return New(cfg.Command, time.Duration(cfg.TimeoutSeconds)*time.Second, logger)
	})
}

// Controller executes jobs through an external control-software command.
type Controller struct {
	command string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a controller backend. The command template must contain a
// {shots} placeholder; it is split on whitespace, so arguments cannot
// contain spaces.
func New(command string, timeout time.Duration, logger *slog.Logger) (*Controller, error) {
	if command == "" {
		return nil, fmt.Errorf("config key 'backend.command' is missing")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{command: command, timeout: timeout, logger: logger}, nil
}

// Name returns the registry name.
func (c *Controller) Name() string { return BackendName }

// Simulator reports false.
func (c *Controller) Simulator() bool { return false }

// request is the JSON document written to the control software.
type request struct {
	Shots    int                      `json:"shots"`
	Commands []core.TranslatedCommand `json:"commands"`
}

// response is the JSON document read back. Each outcome row carries one bit
// per result slot, indexed by slot.
type response struct {
	Outcomes [][]uint8 `json:"outcomes"`
	Message  string    `json:"message,omitempty"`
}

// Execute runs the external command and returns exactly shots outcomes.
func (c *Controller) Execute(ctx context.Context, commands []core.TranslatedCommand, shots int) ([]core.ShotOutcome, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	line := strings.ReplaceAll(c.command, "{shots}", strconv.Itoa(shots))
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil, fmt.Errorf("backend command expanded to nothing")
	}

	input, err := json.Marshal(request{Shots: shots, Commands: commands})
	if err != nil {
		return nil, fmt.Errorf("failed to encode command sequence: %w", err)
	}

	c.logger.Debug("invoking control software", "command", args[0], "shots", shots, "commands", len(commands))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		c.logger.Error("control software failed", "error", err, "stderr", stderr.String())
		return nil, fmt.Errorf("control software execution failed: %w", err)
	}

	var resp response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse control software output: %w", err)
	}

	// Partial results are not a valid return; a short run must fail.
	if len(resp.Outcomes) != shots {
		return nil, fmt.Errorf("control software returned %d outcomes, want %d", len(resp.Outcomes), shots)
	}

	slots := measureSlots(commands)
	outcomes := make([]core.ShotOutcome, len(resp.Outcomes))
	for i, row := range resp.Outcomes {
		outcome := make(core.ShotOutcome, len(slots))
		for _, slot := range slots {
			if slot >= len(row) {
				return nil, fmt.Errorf("outcome %d is missing result slot %d", i, slot)
			}
			if row[slot] > 1 {
				return nil, fmt.Errorf("outcome %d slot %d holds %d, want 0 or 1", i, slot, row[slot])
			}
			outcome[slot] = row[slot]
		}
		outcomes[i] = outcome
	}
	return outcomes, nil
}

func measureSlots(commands []core.TranslatedCommand) []int {
	var slots []int
	for _, cmd := range commands {
		if cmd.Kind == core.GateMeasure {
			slots = append(slots, cmd.Slot)
		}
	}
	return slots
}
