package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"audioshare/internal/config"
	"audioshare/internal/services"
	"audioshare/internal/store"
)

// Result reports one startup check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Run executes every startup check and returns the individual outcomes.
// The daemon refuses to start when any check fails.
func Run(ctx context.Context, cfg *config.Config, st *store.Store) []Result {
	results := []Result{
		checkTool("ffmpeg", cfg.FFmpegBinary()),
		checkTool("ffprobe", cfg.FFprobeBinary()),
		checkDirectory("data directory", cfg.Paths.DataDir),
		checkDirectory("scratch directory", cfg.Paths.ScratchDir),
		checkDirectory("log directory", cfg.Paths.LogDir),
	}
	results = append(results, checkStore(ctx, st))
	return results
}

// Err condenses failed checks into a single configuration error, or nil when
// everything passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s (%s)", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "", strings.Join(failed, "; "), nil)
}

func checkTool(name, binary string) Result {
	path, err := exec.LookPath(binary)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%q not found in PATH", binary)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

func checkDirectory(name, dir string) Result {
	if strings.TrimSpace(dir) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if err := unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s: %v", dir, err)}
	}
	return Result{Name: name, Passed: true, Detail: dir}
}

func checkStore(ctx context.Context, st *store.Store) Result {
	if st == nil {
		return Result{Name: "record store", Detail: "not opened"}
	}
	if err := st.Ping(ctx); err != nil {
		return Result{Name: "record store", Detail: err.Error()}
	}
	return Result{Name: "record store", Passed: true, Detail: st.Path()}
}
