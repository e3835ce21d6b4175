package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/himanishpuri/EKGLab/pkg/ekglab"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/transport"
)

type sendTarget struct {
	ws      string
	nats    string
	subject string
	mqtt    string
	topic   string
}

// open connects to the one configured device transport.
func (t sendTarget) open(ctx context.Context) (transport.Sink, string, error) {
	set := 0
	for _, s := range []string{t.ws, t.nats, t.mqtt} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return nil, "", errors.New("give exactly one of --ws, --nats or --mqtt")
	}

	switch {
	case t.ws != "":
		sink, err := transport.DialWebSocket(ctx, t.ws)
		return sink, t.ws, err
	case t.nats != "":
		if t.subject == "" {
			return nil, "", errors.New("--subject is required with --nats")
		}
		sink, err := transport.ConnectNATS(t.nats, t.subject)
		return sink, fmt.Sprintf("%s (subject %s)", t.nats, t.subject), err
	default:
		if t.topic == "" {
			return nil, "", errors.New("--topic is required with --mqtt")
		}
		sink, err := transport.ConnectMQTT(t.mqtt, t.topic)
		return sink, fmt.Sprintf("%s (topic %s)", t.mqtt, t.topic), err
	}
}

func newSendCmd(a *app) *cobra.Command {
	var (
		target  sendTarget
		drawing string
		pace    time.Duration
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Stream a waveform to a device, one sample line at a time",
		Example: `  ekglab send --ws ws://192.168.4.1:81/
  ekglab send --nats nats://localhost:4222 --subject ekg.samples --drawing sinus
  ekglab send --mqtt tcp://localhost:1883 --topic ekg/samples`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, timeout)
			defer cancel()

			sink, where, err := target.open(ctx)
			if err != nil {
				return err
			}
			defer sink.Close()

			svc, err := a.openService(ekglab.WithPace(pace))
			if err != nil {
				return err
			}
			defer svc.Close()

			var an *ekglab.Analysis
			if drawing != "" {
				an, err = svc.AnalyzeSavedDrawing(ctx, drawing)
				if err != nil {
					return notFound(err, drawing)
				}
			} else {
				an, err = svc.Generate(ctx)
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(a.out, "Sending %d samples to %s\n", len(an.Samples), where)
			if err := svc.SendSamples(ctx, sink, an.Samples); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.out, "Sent %d lines\n", len(an.Samples)+1)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&target.ws, "ws", "", "Device websocket URL")
	f.StringVar(&target.nats, "nats", "", "NATS server URL")
	f.StringVar(&target.subject, "subject", "", "NATS subject")
	f.StringVar(&target.mqtt, "mqtt", "", "MQTT broker URL")
	f.StringVar(&target.topic, "topic", "", "MQTT topic")
	f.StringVar(&drawing, "drawing", "", "Send a saved drawing instead of a synthetic waveform")
	f.DurationVar(&pace, "pace", transport.DefaultPace, "Delay between lines")
	f.DurationVar(&timeout, "timeout", 5*time.Minute, "Give up after this long")
	return cmd
}
