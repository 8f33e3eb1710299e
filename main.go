package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/gdamore/tcell/v2"
	"github.com/matt-g-everett/fluidtx/api"
	"github.com/matt-g-everett/fluidtx/preview"
	"github.com/matt-g-everett/fluidtx/raster"
	"github.com/matt-g-everett/fluidtx/render"
	"github.com/matt-g-everett/fluidtx/stream"
	"github.com/matt-g-everett/fluidtx/tween"
	"github.com/matt-g-everett/fluidtx/viewport"
	"golang.org/x/sync/errgroup"
)

type app struct {
	Config   stream.Config
	Client   mqtt.Client
	Streamer *stream.Streamer
}

func newApp() *app {
	a := new(app)
	return a
}

func (a *app) handleOnConnect(client mqtt.Client) {
	log.Println("Connected")
	if err := a.Streamer.Subscribe(client); err != nil {
		log.Println(err)
	}
}

func (a *app) readConfig(configPath string) error {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		log.Printf("No config at %s, using defaults", configPath)
		a.Config = stream.DefaultConfig()
		return nil
	}

	c, err := stream.LoadConfig(configPath)
	if err != nil {
		return err
	}
	a.Config = c
	return nil
}

func (a *app) newClient() mqtt.Client {
	options := mqtt.NewClientOptions().
		AddBroker(a.Config.Mqtt.URL).
		SetClientID(a.Config.Mqtt.ClientID).
		SetUsername(a.Config.Mqtt.Username).
		SetPassword(a.Config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOnConnectHandler(a.handleOnConnect)
	return mqtt.NewClient(options)
}

func (a *app) serve(ctx context.Context) error {
	var publisher stream.Publisher
	if a.Config.Mqtt.URL != "" {
		a.Client = a.newClient()
		publisher = stream.NewMqttPublisher(a.Client, a.Config.Mqtt.QoS)
	}

	var err error
	a.Streamer, err = stream.NewStreamer(a.Config, publisher)
	if err != nil {
		return err
	}

	// Connect once the streamer exists so the on-connect handler can subscribe.
	if a.Client != nil {
		if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
			return fmt.Errorf("connect to %s: %w", a.Config.Mqtt.URL, token.Error())
		}
		defer a.Client.Disconnect(250)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.NewApi(a.Config.HTTP.Listen, a.Streamer).Serve(gctx)
	})
	g.Go(func() error {
		return a.Streamer.Run(gctx)
	})
	return g.Wait()
}

func (a *app) export(ctx context.Context, dir string) error {
	style, err := a.Config.RenderStyle()
	if err != nil {
		return err
	}

	size := viewport.Fixed{Width: a.Config.Viewport.Width, Height: a.Config.Viewport.Height}
	ticks := tween.Frames(stream.PourTimeline(a.Config.Animation), a.Config.Animation.FrameRate)

	e := raster.NewExporter(render.NewRenderer(size, style), a.Config.Export.Workers)
	n, err := e.Export(ctx, ticks, dir)
	log.Printf("Wrote %d frames to %s", n, dir)
	return err
}

func (a *app) preview(ctx context.Context) error {
	style, err := a.Config.RenderStyle()
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	// Log lines would tear the terminal.
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	return preview.New(screen, style).Run(ctx, stream.NewAnimation(a.Config.Animation))
}

func main() {
	// mqtt.DEBUG = log.New(os.Stdout, "", 0)
	mqtt.ERROR = log.New(os.Stdout, "", 0)

	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	mode := flag.String("mode", "serve", "One of serve, export or preview.")
	out := flag.String("out", "", "Export directory, overrides export.dir.")
	flag.Parse()

	// Read the config
	a := newApp()
	if err := a.readConfig(*configPath); err != nil {
		log.Fatalf("Config: %v", err)
	}
	log.Printf("Config: %+v", a.Config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch *mode {
	case "serve":
		err = a.serve(ctx)
	case "export":
		dir := a.Config.Export.Dir
		if *out != "" {
			dir = *out
		}
		err = a.export(ctx, dir)
	case "preview":
		err = a.preview(ctx)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%s: %v", *mode, err)
	}
}
