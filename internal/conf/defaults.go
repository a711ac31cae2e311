// conf/defaults.go default values for settings, mirroring the closed
// configuration set's documented defaults.
package conf

import "github.com/spf13/viper"

func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "micasr")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/micasr.log")
	viper.SetDefault("main.log.rotation", string(RotationDaily))
	viper.SetDefault("main.log.maxsize", int64(100*1024*1024))

	viper.SetDefault("audio.chunkdurations", 3.0)
	viper.SetDefault("audio.overlapdurations", 1.5)
	viper.SetDefault("audio.chunksize", 1024)
	viper.SetDefault("audio.noisecalibsecs", 1.5)
	viper.SetDefault("audio.rmsmargin", 0.004)
	viper.SetDefault("audio.device", "")

	viper.SetDefault("vad.enable", true)
	viper.SetDefault("vad.mode", "accurate")
	viper.SetDefault("vad.zcrmin", 0.02)
	viper.SetDefault("vad.zcrmax", 0.35)
	viper.SetDefault("vad.entropymax", 0.85)
	viper.SetDefault("vad.adaptivenoisefloor", true)

	viper.SetDefault("frontend.melbins", 80)
	viper.SetDefault("frontend.maxframes", 3000)
	viper.SetDefault("frontend.lfrm", 7)
	viper.SetDefault("frontend.lfrn", 6)
	viper.SetDefault("frontend.rknninputlen", 171)
	viper.SetDefault("frontend.vocabsize", 25055)
	viper.SetDefault("frontend.speechscale", 0.5)
	viper.SetDefault("frontend.useitn", true)
	viper.SetDefault("frontend.language", "auto")
	viper.SetDefault("frontend.modelpath", "models/sensevoice.onnx")
	viper.SetDefault("frontend.tokenizerpath", "models/tokenizer.model")
	viper.SetDefault("frontend.embeddingpath", "models/embedding.bin")
	viper.SetDefault("frontend.cmvnpath", "models/am.mvn")

	viper.SetDefault("decoder.minchars", 3)
	viper.SetDefault("decoder.similaritythreshold", 0.85)
	viper.SetDefault("decoder.duplicatecooldowns", 4.0)
	viper.SetDefault("decoder.enableconfidencestitching", true)
	viper.SetDefault("decoder.confidencethreshold", 0.6)
	viper.SetDefault("decoder.overlapwordcount", 4)

	viper.SetDefault("timeline.enable", true)
	viper.SetDefault("timeline.overlapconfidence", 0.6)
	viper.SetDefault("timeline.minwordconfidence", 0.4)
	viper.SetDefault("timeline.confidencereplacement", true)

	viper.SetDefault("languagelock.enable", true)
	viper.SetDefault("languagelock.warmups", 10.0)
	viper.SetDefault("languagelock.minsamples", 3)
	viper.SetDefault("languagelock.confidence", 0.6)

	viper.SetDefault("filter.filterbgm", true)
	viper.SetDefault("filter.filterevents", []string{})
	viper.SetDefault("filter.showemotions", false)
	viper.SetDefault("filter.showevents", true)
	viper.SetDefault("filter.showlanguage", true)

	viper.SetDefault("queues.preprocess", 3)
	viper.SetDefault("queues.inference", 2)
	viper.SetDefault("queues.postprocess", 2)
	viper.SetDefault("queues.emit", 10)

	viper.SetDefault("server.websocketaddr", ":8765")
	viper.SetDefault("server.metricsaddr", ":9090")
}
