package common

import (
	"context"
	"fmt"

	"careerpilot/internal/errors"
)

// CreateInputFunc defines how to create the specific feature input from file contents.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// FeatureFunc is a generic function signature for a feature orchestrator call.
type FeatureFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunFeatureCommand encapsulates the common logic for file-based CLI commands:
// read and extract the input documents, build the feature input, run the
// orchestrator, and hand the result to the output formatter.
func RunFeatureCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	run FeatureFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	// Pass the logger when creating helpers
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	logDetails(input, cmdConfig)

	result, err := run(ctx, input)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
