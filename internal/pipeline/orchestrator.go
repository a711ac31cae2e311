package pipeline

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math"
	"time"

	"github.com/smallnest/ringbuffer"

	"github.com/orangepi5/micasr/internal/decode"
	"github.com/orangepi5/micasr/internal/emit"
	"github.com/orangepi5/micasr/internal/format"
	"github.com/orangepi5/micasr/internal/frontend"
	"github.com/orangepi5/micasr/internal/lang"
	"github.com/orangepi5/micasr/internal/logging"
	"github.com/orangepi5/micasr/internal/metrics"
	"github.com/orangepi5/micasr/internal/noisefloor"
	"github.com/orangepi5/micasr/internal/npu"
	"github.com/orangepi5/micasr/internal/resample"
	"github.com/orangepi5/micasr/internal/stats"
	"github.com/orangepi5/micasr/internal/timeline"
	"github.com/orangepi5/micasr/internal/vad"
)

// rawChunk is a fixed-duration window of audio at the device's native
// sample rate, read off the rolling ingress ring buffer.
type rawChunk struct {
	samples      []float32
	sampleRate   int
	chunkCounter int
}

// preprocessed is the output of the Preprocessing stage: assembled model
// input features ready for inference.
type preprocessed struct {
	features     [][]float32
	audioHash    uint64
	vadMetrics   vad.Metrics
	language     string
	useITN       bool
	chunkCounter int
}

// inferred is the output of the Inference stage: raw NPU logits.
type inferred struct {
	logits         [][]float64
	audioHash      uint64
	language       string
	chunkCounter   int
	inferenceTime  float64
}

// QueueConfig sizes the bounded inter-stage channels.
type QueueConfig struct {
	PreprocessSize  int
	InferenceSize   int
	PostprocessSize int
	EmitSize        int
}

// Config bundles every collaborator the orchestrator wires together.
type Config struct {
	Queues QueueConfig

	ChunkDurationS   float64
	OverlapDurationS float64
	DeviceSampleRate int
	ModelSampleRate  int

	VAD        vad.Config
	NoiseCalib float64

	Frontend      *frontend.Frontend
	UseITN        bool
	Engine        *npu.Engine
	InferVocab    int
	InferFrames   int

	Decoder      *decode.Decoder
	LangLock     *lang.Lock
	Timeline     *timeline.Merger
	Formatter    *format.Formatter
	Emitter      *emit.Emitter
	Tracker      *stats.Tracker
	Metrics      metrics.Recorder

	EnableTimelineMerging bool
}

// Orchestrator wires the ingress ring buffer and the three processing
// stages into one running pipeline.
type Orchestrator struct {
	cfg Config

	ring *ringbuffer.RingBuffer

	preprocessQueue  chan rawChunk
	inferenceQueue   chan preprocessed
	postprocessQueue chan inferred

	preStage  *Stage[rawChunk, preprocessed]
	infStage  *Stage[preprocessed, inferred]
	postStage *Stage[inferred, struct{}]

	noiseTracker *noisefloor.Tracker

	chunkCounter int
}

// New constructs an Orchestrator. The caller is responsible for starting
// the audio source and feeding raw samples via Ingest.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		cfg:              cfg,
		ring:             ringbuffer.New(cfg.DeviceSampleRate * 4 * 10), // ~10s of float32 mono headroom
		preprocessQueue:  make(chan rawChunk, cfg.Queues.PreprocessSize),
		inferenceQueue:   make(chan preprocessed, cfg.Queues.InferenceSize),
		postprocessQueue: make(chan inferred, cfg.Queues.PostprocessSize),
		noiseTracker:     noisefloor.New(cfg.NoiseCalib),
	}

	o.preStage = NewStage("Preprocessing", o.preprocessQueue, o.inferenceQueue, o.preprocess)
	o.infStage = NewStage("Inference", o.inferenceQueue, o.postprocessQueue, o.infer)
	o.postStage = NewStage[inferred, struct{}]("Postprocessing", o.postprocessQueue, nil, o.postprocess)

	return o
}

// Start launches all three stages.
func (o *Orchestrator) Start(ctx context.Context) {
	o.preStage.Start(ctx)
	o.infStage.Start(ctx)
	o.postStage.Start(ctx)
	logging.Info("pipeline orchestrator started")
}

// Stop stops the three stages in pipeline order, waiting up to timeout for
// each worker to exit. Items still queued when a stage stops are not processed.
func (o *Orchestrator) Stop(timeout time.Duration) {
	o.preStage.Stop(timeout)
	o.infStage.Stop(timeout)
	o.postStage.Stop(timeout)
}

// Ingest pushes one raw audio frame (device rate, mono float32) from the
// audio source into the rolling ring buffer, emitting complete chunks to
// the preprocessing queue as the configured chunk duration accumulates.
// After each chunk is read off the ring, the trailing overlap_duration_s
// worth of it is written back as the seed of the next chunk, so
// successive chunks share exactly that much audio at their boundary.
func (o *Orchestrator) Ingest(samples []float32) {
	raw := float32SamplesToBytes(samples)
	_, _ = o.ring.Write(raw)

	bytesPerChunk := int(float64(o.cfg.DeviceSampleRate) * o.cfg.ChunkDurationS * 4)
	overlapBytes := int(float64(o.cfg.DeviceSampleRate) * o.cfg.OverlapDurationS * 4)
	if overlapBytes >= bytesPerChunk {
		overlapBytes = 0
	}

	for o.ring.Length() >= bytesPerChunk {
		buf := make([]byte, bytesPerChunk)
		_, _ = o.ring.Read(buf)

		chunk := rawChunk{
			samples:      bytesToFloat32Samples(buf),
			sampleRate:   o.cfg.DeviceSampleRate,
			chunkCounter: o.chunkCounter,
		}
		o.chunkCounter++

		if overlapBytes > 0 {
			rest := make([]byte, o.ring.Length())
			_, _ = o.ring.Read(rest)
			_, _ = o.ring.Write(buf[bytesPerChunk-overlapBytes:])
			_, _ = o.ring.Write(rest)
		}

		select {
		case o.preprocessQueue <- chunk:
		case <-time.After(stagePushTimeout):
			logging.Warn("ingress queue full, dropping chunk", "chunk", chunk.chunkCounter)
		}
	}
}

// preprocess implements the Preprocessing stage: resample, VAD gate,
// fingerprint, and frontend feature assembly.
func (o *Orchestrator) preprocess(chunk rawChunk) (preprocessed, bool, error) {
	x16, err := resample.Resample(chunk.samples, chunk.sampleRate, o.cfg.ModelSampleRate)
	if err != nil {
		return preprocessed{}, false, err
	}

	floor, haveFloor := o.noiseTracker.Get()
	det := vad.New(o.cfg.VAD)
	metrics := det.IsSpeech(x16, floor, haveFloor)

	if !metrics.IsSpeech {
		o.noiseTracker.Update(float32(metrics.RMS))
		return preprocessed{}, false, nil
	}

	hash := fingerprint(x16)

	if o.cfg.LangLock.IsEnabled() && !o.cfg.LangLock.IsLocked() {
		o.cfg.LangLock.StartWarmup()
	}
	currentLanguage := o.cfg.LangLock.GetCurrentLanguage()

	features := o.cfg.Frontend.Assemble(x16, currentLanguage, o.cfg.UseITN)

	return preprocessed{
		features:     features,
		audioHash:    hash,
		vadMetrics:   metrics,
		language:     currentLanguage,
		useITN:       o.cfg.UseITN,
		chunkCounter: chunk.chunkCounter,
	}, true, nil
}

// infer implements the Inference stage: run the NPU engine and record
// timing statistics.
func (o *Orchestrator) infer(item preprocessed) (inferred, bool, error) {
	flat := flattenFeatures(item.features)

	start := time.Now()
	out, _, err := o.cfg.Engine.Infer(flat)
	elapsedMs := float64(time.Since(start)) / float64(time.Millisecond)
	if o.cfg.Metrics != nil {
		o.cfg.Metrics.RecordDuration("infer", elapsedMs/1000.0)
	}
	if err != nil {
		if o.cfg.Metrics != nil {
			o.cfg.Metrics.RecordError("infer", "npu_error")
		}
		return inferred{}, false, err
	}

	o.cfg.Tracker.RecordInference(elapsedMs)

	logits := npu.LogitsToMatrix(out, o.cfg.InferFrames, o.cfg.InferVocab)

	return inferred{
		logits:        logits,
		audioHash:     item.audioHash,
		language:      item.language,
		chunkCounter:  item.chunkCounter,
		inferenceTime: elapsedMs,
	}, true, nil
}

// postprocess implements the Postprocessing stage: decode, language-lock
// update, metadata filtering, timeline merge, and emission. It never
// produces a downstream item; emission happens as a side effect.
func (o *Orchestrator) postprocess(item inferred) (struct{}, bool, error) {
	result, ok := o.cfg.Decoder.Decode(item.logits, item.audioHash)
	if !ok {
		if o.cfg.Metrics != nil {
			o.cfg.Metrics.RecordOperation("decode", "rejected")
		}
		return struct{}{}, false, nil
	}
	if o.cfg.Metrics != nil {
		o.cfg.Metrics.RecordOperation("decode", "accepted")
	}

	if result.Language != "" {
		o.cfg.LangLock.RecordDetection(result.Language)
	}

	if filtered, reason := o.cfg.Formatter.CheckMetadataFilter(result); filtered {
		logging.Debug("chunk filtered by metadata", "reason", reason)
		return struct{}{}, false, nil
	}

	if o.cfg.EnableTimelineMerging && len(result.Words) > 0 {
		chunkOffsetMs := float64(item.chunkCounter) * o.cfg.ChunkDurationS * 1000
		newWords := o.cfg.Timeline.MergeChunk(result.Words, chunkOffsetMs)
		if len(newWords) == 0 {
			return struct{}{}, false, nil
		}
		newText := joinWords(newWords)
		o.cfg.Emitter.Emit(newText, result, newWords)
		return struct{}{}, true, nil
	}

	o.cfg.Emitter.Emit(result.Text, result, nil)
	return struct{}{}, true, nil
}

func joinWords(words []timeline.Word) string {
	var sb []byte
	for i, w := range words {
		if i > 0 {
			sb = append(sb, ' ')
		}
		sb = append(sb, w.Text...)
	}
	return string(sb)
}

// fingerprint hashes the 16kHz waveform's byte representation with FNV-1a
// for cheap, non-cryptographic duplicate-chunk detection.
func fingerprint(samples []float32) uint64 {
	raw := float32SamplesToBytes(samples)
	h := fnv.New64a()
	h.Write(raw)
	return h.Sum64()
}

func flattenFeatures(features [][]float32) []float32 {
	if len(features) == 0 {
		return nil
	}
	out := make([]float32, 0, len(features)*len(features[0]))
	for _, row := range features {
		out = append(out, row...)
	}
	return out
}

func float32SamplesToBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		bits := math.Float32bits(s)
		binary.LittleEndian.PutUint32(out[i*4:], bits)
	}
	return out
}

func bytesToFloat32Samples(raw []byte) []float32 {
	n := len(raw) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out
}
