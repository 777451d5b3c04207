package hlsrtsp

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strconv"

	"github.com/pkg/errors"
)

// ProbeDuration asks ffprobe for the container duration of the upstream
// source, in seconds.
func ProbeDuration(ctx context.Context, ffprobeBinary string, sourceURL string) (float64, error) {
	args := []string{
		"-v", "error", // Hide debug information

		"-show_entries", "format=duration",

		"-of", "json",
		sourceURL,
	}

	cmd := exec.CommandContext(ctx, ffprobeBinary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, errors.Wrapf(err, "ffprobe failed: %s", stderr.String())
	}

	out := struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}{}

	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return 0, errors.Wrap(err, "unable to parse ffprobe output")
	}

	if out.Format.Duration == "" {
		return 0, errors.New("no duration in ffprobe output")
	}

	duration, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, errors.Wrap(err, "unable to parse duration")
	}

	return duration, nil
}
