package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/bergaker/mediahost/cmd/mediahost/models"
	"github.com/bergaker/mediahost/common/config"
	"github.com/bergaker/mediahost/common/logger"
	"github.com/google/uuid"
)

// ProbeResult holds the intrinsic properties of a video's primary
// video stream.
type ProbeResult struct {
	Width    int
	Height   int
	Duration float64
}

// MediaProcessor abstracts the external probing/encoding steps so the
// pipeline can be tested without ffmpeg installed.
type MediaProcessor interface {
	Probe(ctx context.Context, videoPath string) (ProbeResult, error)
	Thumbnail(ctx context.Context, videoPath, outPath string) error
	AnimatedPreview(ctx context.Context, videoPath, outPath string) error
}

// FFmpegProcessor shells out to ffmpeg/ffprobe. Each invocation runs
// under the configured timeout.
type FFmpegProcessor struct {
	cfg config.FFmpegConfig
	log *logger.Logger
}

// NewFFmpegProcessor creates a new ffmpeg-backed media processor
func NewFFmpegProcessor(cfg config.FFmpegConfig, log *logger.Logger) *FFmpegProcessor {
	return &FFmpegProcessor{
		cfg: cfg,
		log: log.WithFields(map[string]any{"component": "ffmpeg"}),
	}
}

// ffprobe's JSON output, reduced to the fields we read
type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe inspects the container and returns width/height/duration of
// the first video stream.
func (p *FFmpegProcessor) Probe(ctx context.Context, videoPath string) (ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	p.log.Debug("probing video", "path", videoPath)

	cmd := exec.CommandContext(ctx, p.cfg.FFprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		videoPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return ProbeResult{}, &models.ProbeError{Path: videoPath, Stderr: stderr.String(), Err: err}
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return ProbeResult{}, &models.ProbeError{Path: videoPath, Err: fmt.Errorf("unparseable probe output: %w", err)}
	}

	for _, stream := range out.Streams {
		if stream.CodecType != "video" {
			continue
		}
		duration, err := strconv.ParseFloat(out.Format.Duration, 64)
		if err != nil {
			return ProbeResult{}, &models.ProbeError{Path: videoPath, Err: fmt.Errorf("container reports no duration: %w", err)}
		}
		return ProbeResult{
			Width:    stream.Width,
			Height:   stream.Height,
			Duration: duration,
		}, nil
	}

	return ProbeResult{}, &models.ProbeError{Path: videoPath, Err: fmt.Errorf("no video stream")}
}

// Thumbnail extracts the frame at timestamp zero as a PNG.
func (p *FFmpegProcessor) Thumbnail(ctx context.Context, videoPath, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.cfg.FFmpegPath,
		"-y",
		"-i", videoPath,
		"-ss", "0",
		"-frames:v", "1",
		outPath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &models.ArtifactGenerationError{
			Artifact: "thumbnail",
			Path:     videoPath,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	return nil
}

// AnimatedPreview produces a palette-optimized looping gif via a
// two-pass encode: palettegen computes a color palette from the
// source, paletteuse re-encodes with it. The palette is a transient
// scratch file; a uuid name keeps concurrent ingestions in the same
// directory from clobbering each other.
func (p *FFmpegProcessor) AnimatedPreview(ctx context.Context, videoPath, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	palettePath := filepath.Join(filepath.Dir(videoPath),
		fmt.Sprintf("palette-%s.png", uuid.New().String()))
	defer os.Remove(palettePath)

	p.log.Debug("generating animated preview", "path", videoPath, "out", outPath)

	cmd := exec.CommandContext(ctx, p.cfg.FFmpegPath,
		"-y",
		"-i", videoPath,
		"-filter_complex", "[0:v] palettegen",
		palettePath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &models.ArtifactGenerationError{
			Artifact: "preview",
			Path:     videoPath,
			Stderr:   stderr.String(),
			Err:      fmt.Errorf("palette pass: %w", err),
		}
	}

	stderr.Reset()
	cmd = exec.CommandContext(ctx, p.cfg.FFmpegPath,
		"-y",
		"-i", videoPath,
		"-i", palettePath,
		"-filter_complex", "[0:v][1:v] paletteuse",
		outPath)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &models.ArtifactGenerationError{
			Artifact: "preview",
			Path:     videoPath,
			Stderr:   stderr.String(),
			Err:      fmt.Errorf("encode pass: %w", err),
		}
	}

	return nil
}
