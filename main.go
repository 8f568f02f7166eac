package main

import (
	"flag"

	"github.com/hajimehoshi/ebiten/v2"
	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

func main() {
	configPath := flag.String("config", "scene.yaml", "scene override file (missing file uses built-in defaults)")
	assetsDir := flag.String("assets", "public", "directory holding textures and models")
	debug := flag.Bool("debug", false, "enable debug logging")
	hud := flag.Bool("hud", false, "show the debug overlay")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	log.SetFormatter(&prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("orbitfolio")

	game, err := NewGame(Options{
		ConfigPath: *configPath,
		AssetsDir:  *assetsDir,
		HUD:        *hud,
	}, log.WithField("prefix", "main"))
	if err != nil {
		log.WithError(err).Fatal("create game")
	}

	if err := ebiten.RunGame(game); err != nil {
		log.WithError(err).Fatal("run game")
	}
}
