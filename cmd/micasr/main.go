// Command micasr streams microphone audio through the SenseVoice CTC
// pipeline and prints (and optionally broadcasts) a live transcription.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/orangepi5/micasr/internal/conf"
	"github.com/orangepi5/micasr/internal/errors"
	"github.com/orangepi5/micasr/internal/logging"
)

func main() {
	os.Exit(run())
}

// run builds and executes the root command, translating the returned
// error's category into the process exit code: 0 normal, 1 init failure,
// 2 audio device unavailable.
func run() int {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		return 1
	}

	logging.Init()

	rootCmd := &cobra.Command{
		Use:   "micasr",
		Short: "Streaming microphone transcription",
		Long:  "Capture microphone audio, run it through the SenseVoice CTC pipeline, and print a live transcription.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if settings.Debug {
				logging.SetLevel(slog.LevelDebug)
			}
			return RunListen(cmd.Context(), settings)
		},
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up flags: %v\n", err)
		return 1
	}

	if err := rootCmd.Execute(); err != nil {
		logging.Error("micasr exited with error", "error", err)
		if errors.IsCategory(err, errors.CategoryAudioUnavail) {
			return 2
		}
		return 1
	}

	return 0
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	cmd.PersistentFlags().StringVar(&settings.Audio.Device, "device", viper.GetString("audio.device"), "Microphone device name hint (substring match)")
	cmd.PersistentFlags().StringVar(&settings.Frontend.Language, "language", viper.GetString("frontend.language"), "Initial language (auto, zh, en, yue, ja, ko)")
	cmd.PersistentFlags().StringVar(&settings.Frontend.ModelPath, "model", viper.GetString("frontend.modelpath"), "Path to the ONNX model file")
	cmd.PersistentFlags().StringVar(&settings.Server.WebsocketAddr, "listen", viper.GetString("server.websocketaddr"), "Websocket broadcast bind address (empty disables)")

	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
