package commit

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/matzehuels/crategen/pkg/errors"
	"github.com/matzehuels/crategen/pkg/observability"
)

// Formatter normalizes generated build text.
type Formatter interface {
	Format(ctx context.Context, src []byte) ([]byte, error)
}

// GNFormatter pipes text through `gn format --stdin`.
type GNFormatter struct {
	// GN is the gn binary. Defaults to "gn".
	GN string
}

// Format runs gn. A non-zero exit fails with EXTERNAL_TOOL_FAILURE
// carrying gn's stderr.
func (f GNFormatter) Format(ctx context.Context, src []byte) ([]byte, error) {
	bin := f.GN
	if bin == "" {
		bin = "gn"
	}
	args := []string{"format", "--stdin"}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(src)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	observability.Tool().OnExec(ctx, "gn", args)
	start := time.Now()
	err := cmd.Run()
	observability.Tool().OnExit(ctx, "gn", time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeExternalTool, err, "gn format: %s", strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// FormatterFunc adapts a function to [Formatter].
type FormatterFunc func(ctx context.Context, src []byte) ([]byte, error)

// Format calls f.
func (f FormatterFunc) Format(ctx context.Context, src []byte) ([]byte, error) {
	return f(ctx, src)
}
