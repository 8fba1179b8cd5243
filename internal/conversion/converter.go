package conversion

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	inputPlaceholder  = "{input}"
	outputPlaceholder = "{output}"
)

// CommandDecoder runs an external tool that reads an exchange-format file and
// writes the JSON dump understood by ParseDump. Args may reference the temp
// file paths through {input} and {output}.
type CommandDecoder struct {
	Command string
	Args    []string
	Timeout time.Duration
	log     *zap.Logger
}

// NewCommandDecoder creates a decoder that shells out to command.
func NewCommandDecoder(command string, args []string, timeout time.Duration, log *zap.Logger) *CommandDecoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &CommandDecoder{Command: command, Args: args, Timeout: timeout, log: log}
}

// Decode writes raw to a temp file, runs the tool and parses its output.
func (d *CommandDecoder) Decode(ctx context.Context, raw []byte) (Document, error) {
	tempDir, err := os.MkdirTemp("", "decode-*")
	if err != nil {
		return nil, errors.Wrap(err, "could not create temporary directory")
	}
	defer os.RemoveAll(tempDir)

	inputPath := filepath.Join(tempDir, "model.ifc")
	outputPath := filepath.Join(tempDir, "model.json")
	if err := os.WriteFile(inputPath, raw, 0o600); err != nil {
		return nil, errors.Wrap(err, "could not write decoder input")
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		a = strings.ReplaceAll(a, inputPlaceholder, inputPath)
		args[i] = strings.ReplaceAll(a, outputPlaceholder, outputPath)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.Command, args...)
	cmd.Stderr = &stderr
	started := time.Now()
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "decoder %s failed: %s", d.Command, strings.TrimSpace(stderr.String()))
	}
	d.log.Debug("decoder finished",
		zap.String("command", d.Command),
		zap.Int("input_bytes", len(raw)),
		zap.Duration("took", time.Since(started)))

	out, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, errors.Wrap(err, "decoder produced no output")
	}
	return ParseDump(out)
}
