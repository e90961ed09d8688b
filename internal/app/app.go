package app

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
)

var Version = "0.1.0"
var UserAgent = "ros-video-streaming/" + Version

var ConfigPath string
var Info = map[string]any{
	"version": Version,
}

// Init parses flags, loads the YAML config (if any) and wires up the
// package-level Logger. cmd/capture calls this once before touching the
// rest of the package.
func Init() {
	var confs flagConfig
	var version bool

	flag.Var(&confs, "config", "capture config (path to file or raw YAML/JSON), supports multiple")
	flag.BoolVar(&version, "version", false, "print the version and exit")
	flag.Parse()

	if version {
		vcsRevision := ""
		vcsTime := time.Now().Local()
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					if len(setting.Value) > 7 {
						vcsRevision = setting.Value[:7]
					} else {
						vcsRevision = setting.Value
					}
					vcsRevision = "(" + vcsRevision + ")"
				}
				if setting.Key == "vcs.time" {
					vcsTime, _ = time.Parse(time.RFC3339, setting.Value)
					vcsTime = vcsTime.Local()
				}
			}
		}
		fmt.Printf("capture version %s%s: %s %s/%s\n", Version, vcsRevision, vcsTime.String(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	initConfig(confs)
	initLogger()

	platform := fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	Logger.Info().Str("version", Version).Str("platform", platform).Msg("capture")
	Logger.Debug().Str("version", runtime.Version()).Msg("build")

	if ConfigPath != "" {
		Logger.Info().Str("path", ConfigPath).Msg("config")
	}

	log.Logger = Logger
}
