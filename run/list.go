package run

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ListModels returns the identifiers of the models available to the
// configured runtime.
func (r *Runner) ListModels(ctx context.Context) ([]string, error) {
	out, err := exec.CommandContext(ctx, r.cfg.Binary, "list").Output()
	if err != nil {
		return nil, fmt.Errorf("list failed: %w", err)
	}
	return parseModelList(string(out)), nil
}

// parseModelList extracts model names from the runtime's tabular `list`
// output: one model per line, name in the first column, header line skipped.
func parseModelList(out string) []string {
	models := []string{}
	for i, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if i == 0 && strings.EqualFold(fields[0], "NAME") {
			continue
		}
		models = append(models, fields[0])
	}
	return models
}
