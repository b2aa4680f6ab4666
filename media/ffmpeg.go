package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// FFmpegResampleToWAV decodes the input container and writes a 16kHz mono
// pcm_s16le WAV next to it, returning the output path. The model consumes
// exactly this format, so browser-recorded webm/ogg and arbitrary uploads
// all go through here first.
//
// It is the caller's responsibility to clean up the output file.
func (f *FFmpeg) FFmpegResampleToWAV(ctx context.Context, filePath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.commandTimeout)
	defer cancel()

	outFile, err := os.CreateTemp("", "parakeet-web-*.wav")
	if err != nil {
		return "", fmt.Errorf("making temp file: %w", err)
	}
	outPath := outFile.Name()
	outFile.Close()

	cmd := exec.CommandContext(ctx,
		f.ffmpegBinary,
		"-y",
		"-i", filePath,
		"-c:a", "pcm_s16le",
		"-ar:a", "16000",
		"-ac:a", "1",
		"-f", "wav",
		outPath,
	)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("running ffmpeg: %w: %s", err, lastLine(msg))
		}
		return "", fmt.Errorf("running ffmpeg: %w", err)
	}

	return outPath, nil
}

// ffmpeg's error output ends with the actual failure
func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
