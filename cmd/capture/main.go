package main

import (
	"github.com/ramsafin/ros-video-streaming/internal/app"
	"github.com/ramsafin/ros-video-streaming/pkg/shell"
	"github.com/ramsafin/ros-video-streaming/pkg/v4l2"
)

func main() {
	app.Init()

	var cfg struct {
		Capture v4l2.CaptureConfig `yaml:"capture"`
	}
	cfg.Capture = v4l2.DefaultConfig()
	app.LoadConfig(&cfg)

	log := app.GetLogger("capture")

	cap, err := v4l2.Open(cfg.Capture, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open device")
	}
	defer cap.Close()

	if err := cap.Start(); err != nil {
		log.Fatal().Err(err).Msg("start streaming")
	}

	log.Info().
		Str("device", cfg.Capture.Device).
		Str("pixel_format", cfg.Capture.PixelFormat.String()).
		Msg("streaming")

	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}

			frame, ok := cap.Read()
			if !ok {
				continue
			}

			log.Debug().
				Uint32("sequence", frame.Sequence).
				Int("bytes", len(frame.Bytes)).
				Int64("timestamp_ns", frame.TimestampNs).
				Msg("frame")
		}
	}()

	shell.RunUntilSignal(func() {
		close(stop)
		<-done

		if err := cap.Stop(); err != nil {
			log.Warn().Err(err).Msg("stop streaming")
		}
	})
}
