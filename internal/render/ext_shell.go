package render

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// ShellExtension runs params.cmd through the platform shell and returns
// its stdout. It blocks the Engine for the duration of the command and
// applies no sandboxing, per spec's explicit non-goal on that front.
type ShellExtension struct{}

func (ShellExtension) Name() string { return "shell" }

func (ShellExtension) Calculate(ctx context.Context, params map[string]any, args []string) (string, bool, error) {
	raw, ok := params["cmd"]
	if !ok {
		return "", false, nil
	}
	cmdStr, ok := raw.(string)
	if !ok {
		return "", false, nil
	}
	cmdStr = renderArgs(cmdStr, args)

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", cmdStr)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", cmdStr)
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		// Spawn/execution failure is expansion-recoverable: log and
		// return "no value", not an error that aborts the expansion.
		log.Warn().Err(err).Str("cmd", cmdStr).Msg("shell extension: command failed")
		return "", false, nil
	}

	out := stdout.String()
	if trim, _ := params["trim"].(bool); trim {
		out = strings.TrimSpace(out)
	}
	return out, true, nil
}
