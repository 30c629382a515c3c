package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/takecut/silencecutter/internal/config"
	"github.com/takecut/silencecutter/internal/pipeline"
)

func registerFlags(root *cobra.Command) {
	root.Flags().String("out", "out", "output directory")
	root.Flags().String("scratch-dir", "", "scratch directory for intermediate media (defaults to the OS temp dir)")

	root.Flags().String("ffmpeg", "ffmpeg", "path to the ffmpeg binary")
	root.Flags().String("ffprobe", "ffprobe", "path to the ffprobe binary")

	root.Flags().String("whisper-bin", ".cache/bin/whisper.cpp", "path to the whisper.cpp-compatible transcription binary")
	root.Flags().String("whisper-model-dir", ".cache/models", "directory holding ggml-<model>.bin transcription models")

	root.Flags().String("oracle-model", "anthropic/claude-3.5-sonnet", "scoring oracle model id")
	root.Flags().String("oracle-base-url", "https://openrouter.ai", "scoring oracle base URL")
	root.Flags().StringSlice("oracle-allowed-hosts", nil, "additional hostnames allowed for the scoring oracle base URL")

	def := config.Default()
	root.Flags().Int("noise-threshold-db", def.NoiseThresholdDB, "silence-detect noise floor in dB")
	root.Flags().Float64("min-silence-s", def.MinSilenceS, "minimum silence duration to cut on, in seconds")
	root.Flags().Float64("min-speech-s", def.MinSpeechS, "minimum speech segment duration to keep, in seconds")
	root.Flags().Float64("padding-s", def.PaddingS, "padding added to each side of a detected speech interval, in seconds")
	root.Flags().String("transcription-model", def.TranscriptionModel, "transcription model: tiny/base/small/medium/large")
	root.Flags().String("transcription-language", def.TranscriptionLanguage, "ISO-639-1 language hint, or auto")
	root.Flags().Float64("similarity-threshold", def.SimilarityThreshold, "normalized-Levenshtein similarity threshold for take grouping")
	root.Flags().Int("fps", def.FPS, "timeline frame rate: 24/25/30/50/60")
}

func run(cmd *cobra.Command, input string) error {
	apiKey := os.Getenv("ORACLE_API_KEY")

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	flags := cmd.Flags()

	tunables := config.Default()
	tunables.NoiseThresholdDB, _ = flags.GetInt("noise-threshold-db")
	tunables.MinSilenceS, _ = flags.GetFloat64("min-silence-s")
	tunables.MinSpeechS, _ = flags.GetFloat64("min-speech-s")
	tunables.PaddingS, _ = flags.GetFloat64("padding-s")
	tunables.TranscriptionModel, _ = flags.GetString("transcription-model")
	tunables.TranscriptionLanguage, _ = flags.GetString("transcription-language")
	tunables.SimilarityThreshold, _ = flags.GetFloat64("similarity-threshold")
	tunables.FPS, _ = flags.GetInt("fps")

	outDir, _ := flags.GetString("out")
	scratchDir, _ := flags.GetString("scratch-dir")
	ffmpegPath, _ := flags.GetString("ffmpeg")
	ffprobePath, _ := flags.GetString("ffprobe")
	whisperBin, _ := flags.GetString("whisper-bin")
	whisperModelDir, _ := flags.GetString("whisper-model-dir")
	oracleModel, _ := flags.GetString("oracle-model")
	oracleBaseURL, _ := flags.GetString("oracle-base-url")
	oracleAllowedHosts, _ := flags.GetStringSlice("oracle-allowed-hosts")

	cfg := pipeline.Config{
		InputPath:  absIn,
		OutDir:     outDir,
		ScratchDir: scratchDir,

		Tunables: tunables,

		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,

		WhisperBin:      whisperBin,
		WhisperModelDir: whisperModelDir,

		OracleAPIKey:       apiKey,
		OracleModel:        oracleModel,
		OracleBaseURL:      oracleBaseURL,
		OracleAllowedHosts: oracleAllowedHosts,
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()

	return pipeline.Run(ctx, cfg)
}
