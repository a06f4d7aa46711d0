package sdfaux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
)

// VideoConfig configures encoding a rendered frame sequence into a video with ffmpeg.
type VideoConfig struct {
	// Output is the video file name. Its extension selects the container.
	Output string
	// FFmpeg is the ffmpeg executable. Empty means "ffmpeg" found in PATH.
	FFmpeg string
	// Raw encodes the raw frames instead of the post processed ones.
	Raw bool
}

// EncodeVideo encodes the frames written by [RenderSequence] with the same
// seq and cfg into a video played back at seq.UpdatesPerSecond frames per second.
func EncodeVideo(ctx context.Context, seq SequenceConfig, cfg RenderConfig, vcfg VideoConfig) error {
	if err := seq.Validate(); err != nil {
		return err
	} else if vcfg.Output == "" {
		return errors.New("empty video output filename")
	}
	bin := vcfg.FFmpeg
	if bin == "" {
		bin = "ffmpeg"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	log := cfg.logger()
	watch := stopwatch()
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, ffmpegArgs(seq, cfg, vcfg)...)
	cmd.Stderr = &stderr
	if err = cmd.Run(); err != nil {
		return fmt.Errorf("running ffmpeg: %w\n%s", err, stderr.Bytes())
	}
	log.Info("encoded video", "output", vcfg.Output, "frames", seq.Frames(), "elapsed", watch())
	return nil
}

func ffmpegArgs(seq SequenceConfig, cfg RenderConfig, vcfg VideoConfig) []string {
	prefix := "img"
	if vcfg.Raw {
		prefix = "raw"
	}
	pattern := filepath.Join(cfg.Dir, prefix+"%d."+cfg.ext())
	return []string{
		"-y",
		"-framerate", strconv.FormatFloat(float64(seq.UpdatesPerSecond), 'g', -1, 32),
		"-start_number", strconv.Itoa(seq.FirstFrame),
		"-i", pattern,
		"-frames:v", strconv.Itoa(seq.Frames()),
		"-pix_fmt", "yuv420p",
		vcfg.Output,
	}
}
