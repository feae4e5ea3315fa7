package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dag10/DJ-sub000/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 8000,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	djSlots = configVar[int]{
		envKey:       "SERVER_DJ_SLOTS",
		flagKey:      "dj-slots",
		defaultValue: 5,
	}
	queueLimit = configVar[int]{
		envKey:       "SERVER_QUEUE_LIMIT",
		flagKey:      "queue-limit",
		defaultValue: 25,
	}
	segmentSeconds = configVar[int]{
		envKey:       "SERVER_SEGMENT_SECONDS",
		flagKey:      "segment-seconds",
		defaultValue: 5,
	}
	bitrateKbps = configVar[int]{
		envKey:       "SERVER_BITRATE_KBPS",
		flagKey:      "bitrate-kbps",
		defaultValue: 192,
	}
	ffmpegPath = configVar[string]{
		envKey:       "SERVER_FFMPEG_PATH",
		flagKey:      "ffmpeg-path",
		defaultValue: "ffmpeg",
	}
	mediaDir = configVar[string]{
		envKey:       "SERVER_MEDIA_DIR",
		flagKey:      "media-dir",
		defaultValue: "/var/lib/dj/media",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(djSlots.flagKey, djSlots.defaultValue, "Maximum number of DJs per room")
	pflag.Int(queueLimit.flagKey, queueLimit.defaultValue, "Maximum number of songs in a queue")
	pflag.Int(segmentSeconds.flagKey, segmentSeconds.defaultValue, "Audio segment duration in seconds")
	pflag.Int(bitrateKbps.flagKey, bitrateKbps.defaultValue, "Broadcast bitrate in kbps")
	pflag.String(ffmpegPath.flagKey, ffmpegPath.defaultValue, "Path to the ffmpeg binary")
	pflag.String(mediaDir.flagKey, mediaDir.defaultValue, "Directory holding source audio files")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(djSlots.flagKey, djSlots.envKey)
	viper.BindEnv(queueLimit.flagKey, queueLimit.envKey)
	viper.BindEnv(segmentSeconds.flagKey, segmentSeconds.envKey)
	viper.BindEnv(bitrateKbps.flagKey, bitrateKbps.envKey)
	viper.BindEnv(ffmpegPath.flagKey, ffmpegPath.envKey)
	viper.BindEnv(mediaDir.flagKey, mediaDir.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(djSlots.flagKey, djSlots.defaultValue)
	viper.SetDefault(queueLimit.flagKey, queueLimit.defaultValue)
	viper.SetDefault(segmentSeconds.flagKey, segmentSeconds.defaultValue)
	viper.SetDefault(bitrateKbps.flagKey, bitrateKbps.defaultValue)
	viper.SetDefault(ffmpegPath.flagKey, ffmpegPath.defaultValue)
	viper.SetDefault(mediaDir.flagKey, mediaDir.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	config := &app.AppConfig{
		Host:           viper.GetString(host.flagKey),
		Port:           viper.GetInt(port.flagKey),
		LogLevel:       viper.GetString(logLevel.flagKey),
		DJSlots:        viper.GetInt(djSlots.flagKey),
		QueueLimit:     viper.GetInt(queueLimit.flagKey),
		SegmentSeconds: viper.GetInt(segmentSeconds.flagKey),
		BitrateKbps:    viper.GetInt(bitrateKbps.flagKey),
		FFmpegPath:     viper.GetString(ffmpegPath.flagKey),
		MediaDir:       viper.GetString(mediaDir.flagKey),
		RedisPort:      viper.GetInt(redisPort.flagKey),
		RedisHost:      viper.GetString(redisHost.flagKey),
		RedisPassword:  viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
