package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orangepi5/micasr/internal/audiosrc"
	"github.com/orangepi5/micasr/internal/broadcast"
	"github.com/orangepi5/micasr/internal/conf"
	"github.com/orangepi5/micasr/internal/decode"
	"github.com/orangepi5/micasr/internal/embedding"
	"github.com/orangepi5/micasr/internal/errors"
	"github.com/orangepi5/micasr/internal/emit"
	"github.com/orangepi5/micasr/internal/format"
	"github.com/orangepi5/micasr/internal/frontend"
	"github.com/orangepi5/micasr/internal/lang"
	"github.com/orangepi5/micasr/internal/logging"
	"github.com/orangepi5/micasr/internal/metrics"
	"github.com/orangepi5/micasr/internal/npu"
	"github.com/orangepi5/micasr/internal/pipeline"
	"github.com/orangepi5/micasr/internal/stats"
	"github.com/orangepi5/micasr/internal/timeline"
	"github.com/orangepi5/micasr/internal/tokenizer"
	"github.com/orangepi5/micasr/internal/vad"
)

// RunListen loads the model artifacts, wires the transcription pipeline,
// starts microphone capture, and blocks until the context is cancelled
// (SIGINT/SIGTERM) or the audio source fails.
func RunListen(ctx context.Context, settings *conf.Settings) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tok, err := tokenizer.Load(settings.Frontend.TokenizerPath)
	if err != nil {
		return err
	}

	embed, err := embedding.Load(settings.Frontend.EmbeddingPath)
	if err != nil {
		return err
	}

	cmvn, err := frontend.LoadCMVN(settings.Frontend.CMVNPath)
	if err != nil {
		return err
	}

	fbankOpts := frontend.DefaultFbankOptions(16000, settings.Frontend.MelBins)
	fe := frontend.New(fbankOpts, settings.Frontend.LFRM, settings.Frontend.LFRN, settings.Frontend.MaxFrames, cmvn, embed)

	engine, err := npu.Load(npu.Config{
		ModelPath:  settings.Frontend.ModelPath,
		InputName:  "speech",
		OutputName: "logits",
	}, []int64{1, frontend.RKNNInputLen, int64(embed.Dim())})
	if err != nil {
		return err
	}
	defer engine.Close()

	registry := prometheus.DefaultRegisterer
	pmetrics, err := metrics.NewPipelineMetrics(registry)
	if err != nil {
		return errors.New(err).Component("cmd").Category(errors.CategoryInit).Build()
	}

	decoder := decode.New(tok, decode.Config{
		MinChars:                  settings.Decoder.MinChars,
		SimilarityThreshold:       settings.Decoder.SimilarityThreshold,
		DuplicateCooldown:         time.Duration(settings.Decoder.DuplicateCooldownS * float64(time.Second)),
		EnableConfidenceStitching: settings.Decoder.EnableConfidenceStitching,
		ConfidenceThreshold:       settings.Decoder.ConfidenceThreshold,
		OverlapWordCount:          settings.Decoder.OverlapWordCount,
	})

	langLock := lang.New(lang.Config{
		Enabled:             settings.LanguageLock.Enable,
		InitialLanguage:     settings.Frontend.Language,
		WarmupDuration:      time.Duration(settings.LanguageLock.WarmupS * float64(time.Second)),
		MinSamples:          settings.LanguageLock.MinSamples,
		ConfidenceThreshold: settings.LanguageLock.Confidence,
	})

	timelineMerger := timeline.New(timeline.Config{
		OverlapConfidenceThreshold:  settings.Timeline.OverlapConfidence,
		MinWordConfidence:           settings.Timeline.MinWordConfidence,
		EnableConfidenceReplacement: settings.Timeline.ConfidenceReplacement,
	})

	formatter := format.New(format.Config{
		ShowEmotions: settings.Filter.ShowEmotions,
		ShowEvents:   settings.Filter.ShowEvents,
		ShowLanguage: settings.Filter.ShowLanguage,
		FilterBGM:    settings.Filter.FilterBGM,
		FilterEvents: settings.Filter.FilterEvents,
	})

	var hub *broadcast.Hub
	if settings.Server.WebsocketAddr != "" {
		hub = broadcast.NewHub("")
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: settings.Server.WebsocketAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("websocket server stopped", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	emitter := emit.New(formatter, broadcaster(hub), settings.Queues.Emit)
	emitter.Start(ctx)
	defer emitter.Stop(2 * time.Second)

	tracker := stats.New()

	orch := pipeline.New(pipeline.Config{
		Queues: pipeline.QueueConfig{
			PreprocessSize:  settings.Queues.Preprocess,
			InferenceSize:   settings.Queues.Inference,
			PostprocessSize: settings.Queues.Postprocess,
			EmitSize:        settings.Queues.Emit,
		},
		ChunkDurationS:   settings.Audio.ChunkDurationS,
		OverlapDurationS: settings.Audio.OverlapDurationS,
		DeviceSampleRate: 16000,
		ModelSampleRate:  16000,
		VAD: vad.Config{
			Mode:               vad.Mode(settings.VAD.Mode),
			ZCRMin:             settings.VAD.ZCRMin,
			ZCRMax:             settings.VAD.ZCRMax,
			EntropyMax:         settings.VAD.EntropyMax,
			StaticEnergyThresh: settings.Audio.RMSMargin,
			RMSMargin:          settings.Audio.RMSMargin,
		},
		NoiseCalib:            settings.Audio.NoiseCalibSecs,
		Frontend:              fe,
		UseITN:                settings.Frontend.UseITN,
		Engine:                engine,
		InferVocab:            settings.Frontend.VocabSize,
		InferFrames:           frontend.RKNNInputLen,
		Decoder:               decoder,
		LangLock:              langLock,
		Timeline:              timelineMerger,
		Formatter:             formatter,
		Emitter:               emitter,
		Tracker:               tracker,
		Metrics:               pmetrics,
		EnableTimelineMerging: settings.Timeline.Enable,
	})

	orch.Start(ctx)
	defer orch.Stop(3 * time.Second)

	source := audiosrc.New(audiosrc.Config{
		DeviceNameHint: settings.Audio.Device,
		BufferFrames:   uint32(settings.Audio.ChunkSize),
	})
	if err := source.Start(ctx); err != nil {
		return err
	}
	defer source.Stop()

	logging.Info("micasr listening", "device_hint", settings.Audio.Device)
	fmt.Println("Listening... press Ctrl+C to stop.")

	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-source.Output():
			if !ok {
				return nil
			}
			orch.Ingest(chunk.Samples)
		case err, ok := <-source.Errors():
			if !ok {
				continue
			}
			logging.Warn("audio source error", "error", err)
		}
	}
}

// broadcaster adapts a possibly-nil *broadcast.Hub to emit.Broadcaster;
// a nil Hub means no websocket sink is configured.
func broadcaster(hub *broadcast.Hub) emit.Broadcaster {
	if hub == nil {
		return nil
	}
	return hub
}
