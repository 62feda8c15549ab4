package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Spec describes one yt-dlp invocation.
type Spec struct {
	Format       string // format selector passed to -f
	ExtractAudio bool   // re-encode to a bare audio file
	AudioFormat  string // audio container when extracting (mp3)
	AudioQuality string // audio bitrate when extracting (128K, 192K)
	MergeFormat  string // merge container for combined video+audio
	OutputPath   string // output path or template passed to -o
}

// AudioSpec selects best audio re-encoded to mp3 at the given bitrate.
// yt-dlp appends the .mp3 extension to outputPath itself.
func AudioSpec(outputPath, quality string) Spec {
	return Spec{
		Format:       "bestaudio/best",
		ExtractAudio: true,
		AudioFormat:  "mp3",
		AudioQuality: quality,
		OutputPath:   outputPath,
	}
}

// VideoSpec selects best combined video+audio merged into mp4. The template
// must carry a %(ext)s placeholder; the final extension is only known after
// the download finishes.
func VideoSpec(outputTemplate string) Spec {
	return Spec{
		Format:      "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		MergeFormat: "mp4",
		OutputPath:  outputTemplate,
	}
}

// Metadata is what the fetcher learns about the source while downloading.
type Metadata struct {
	Title string
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Fetcher downloads media through an external yt-dlp binary.
type Fetcher struct {
	ytdlpPath string
	runner    commandRunner
}

// NewFetcher creates a fetcher that shells out to the given yt-dlp binary.
func NewFetcher(ytdlpPath string) *Fetcher {
	return &Fetcher{ytdlpPath: ytdlpPath, runner: execRunner{}}
}

// Fetch downloads the media described by spec and returns its metadata.
// The produced file must be checked by the caller; private or unavailable
// sources make yt-dlp fail without output.
func (f *Fetcher) Fetch(ctx context.Context, url string, spec Spec) (Metadata, error) {
	args := []string{
		"--no-warnings",
		"--quiet",
		"--no-simulate",
		"--print", "title",
		"-f", spec.Format,
		"-o", spec.OutputPath,
	}
	if spec.ExtractAudio {
		args = append(args, "-x", "--audio-format", spec.AudioFormat, "--audio-quality", spec.AudioQuality)
	}
	if spec.MergeFormat != "" {
		args = append(args, "--merge-output-format", spec.MergeFormat)
	}
	args = append(args, url)

	stdout, stderr, err := f.runner.Run(ctx, f.ytdlpPath, args...)
	meta := Metadata{Title: lastLine(stdout)}
	if meta.Title == "" {
		meta.Title = "Untitled"
	}
	if err != nil {
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = err.Error()
		}
		return meta, fmt.Errorf("yt-dlp: %s", detail)
	}
	return meta, nil
}

// lastLine returns the last non-empty line of s.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
