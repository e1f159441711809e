package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// runTool executes an external binary with an explicit argument list under a
// bounded wall-clock timeout. Standard output and standard error are captured
// separately; any non-zero exit status becomes an error carrying the tool's
// stderr payload as diagnostic context.
func runTool(ctx context.Context, timeout time.Duration, binary string, args ...string) (string, error) {
	if strings.TrimSpace(binary) == "" {
		return "", errors.New("tool binary is empty")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s timed out: %w", binary, ctx.Err())
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("%s: %w: %s", binary, err, detail)
	}
	return stdout.String(), nil
}
