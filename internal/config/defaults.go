package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kissanvaani/data/db/corpus.db"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/kissanvaani/data/indices/vectors"
	}
	if cfg.Storage.ArtifactsDir == "" {
		cfg.Storage.ArtifactsDir = "/usr/local/var/kissanvaani/data/audio"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/kissanvaani/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Retrieval.TopKPerQuery == 0 {
		cfg.Retrieval.TopKPerQuery = 3
	}
	if cfg.Retrieval.MaxAnswers == 0 {
		cfg.Retrieval.MaxAnswers = 3
	}
	if cfg.Retrieval.FallbackAnswer == "" {
		cfg.Retrieval.FallbackAnswer = "Maaf kijiye, mujhe iska jawab nahi mila"
	}
	if cfg.Expansion.Terms == nil {
		cfg.Expansion.Terms = map[string]string{
			"seb":     "apple",
			"gehu":    "wheat",
			"dhaan":   "rice",
			"aaloo":   "potato",
			"pyaaz":   "onion",
			"tamatar": "tomato",
		}
	}
	if cfg.Expansion.Templates == nil {
		cfg.Expansion.Templates = []string{
			"how to grow %s",
			"how to harvest %s",
			"%s farming method",
		}
	}
	if cfg.Engines.FFmpegPath == "" {
		cfg.Engines.FFmpegPath = "ffmpeg"
	}
	if cfg.Engines.Whisper.Command == "" {
		cfg.Engines.Whisper.Command = "whisper-cli"
	}
	if cfg.Engines.Whisper.Language == "" {
		cfg.Engines.Whisper.Language = "hi"
	}
	if cfg.Engines.Whisper.Model == "" {
		cfg.Engines.Whisper.Model = "whisper-1"
	}
	if cfg.Engines.Translate.Endpoint == "" {
		cfg.Engines.Translate.Endpoint = "https://translate.googleapis.com/translate_a/single"
	}
	if cfg.Engines.Translate.TimeoutSeconds == 0 {
		cfg.Engines.Translate.TimeoutSeconds = 10
	}
	if cfg.Engines.TTS.Endpoint == "" {
		cfg.Engines.TTS.Endpoint = "https://translate.google.com/translate_tts"
	}
	if cfg.Engines.TTS.TimeoutSeconds == 0 {
		cfg.Engines.TTS.TimeoutSeconds = 15
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".json", ".xlsx"}
	}
}
