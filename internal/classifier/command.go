package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrEmptyPrediction is returned when the infer command prints nothing.
var ErrEmptyPrediction = errors.New("classifier returned no label")

// CommandClassifier drives the model through external commands, typically
// the Python training and inference scripts.  Train runs TrainCmd; Infer
// runs InferCmd with the text on stdin and reads the label from stdout.
// Cancelling the context kills the child process.
type CommandClassifier struct {
	TrainCmd []string
	InferCmd []string
	Dir      string
}

// NewCommandClassifier splits whitespace-separated command lines.
func NewCommandClassifier(trainCmd, inferCmd, dir string) *CommandClassifier {
	return &CommandClassifier{
		TrainCmd: strings.Fields(trainCmd),
		InferCmd: strings.Fields(inferCmd),
		Dir:      dir,
	}
}

func (c *CommandClassifier) Train(ctx context.Context) error {
	_, err := c.run(ctx, c.TrainCmd, nil)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	return nil
}

func (c *CommandClassifier) Infer(ctx context.Context, text string) (string, error) {
	out, err := c.run(ctx, c.InferCmd, strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("infer: %w", err)
	}
	label := strings.TrimSpace(out)
	if label == "" {
		return "", ErrEmptyPrediction
	}
	return label, nil
}

func (c *CommandClassifier) run(ctx context.Context, argv []string, stdin *strings.Reader) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("no command configured")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = c.Dir
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return "", fmt.Errorf("%s: %w", argv[0], err)
	}
	return stdout.String(), nil
}
