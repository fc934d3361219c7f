package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/serebryakov7/dbcbus/common"
	"github.com/serebryakov7/dbcbus/internal/dbc"
	"github.com/serebryakov7/dbcbus/internal/dbc/parser"
	"github.com/serebryakov7/dbcbus/pkg/canfeed"
	"github.com/serebryakov7/dbcbus/pkg/liveview"
	"github.com/serebryakov7/dbcbus/pkg/mqttbridge"
	"github.com/serebryakov7/dbcbus/pkg/serialfeed"
	"github.com/serebryakov7/dbcbus/pkg/snapshot"
	"github.com/serebryakov7/dbcbus/pkg/store"
)

// feed is satisfied by both pkg/serialfeed.Feed and pkg/canfeed.Feed.
type feed interface {
	Start(ctx context.Context) error
	Stop() error
}

func newWatchCmd() *cobra.Command {
	var (
		dbcPath    string
		serialPort string
		serialBaud int
		canIface   string
		mqttBroker string
		httpAddr   string
		dbPath     string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Decode live frames and publish signal updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()

			registry := dbc.NewRegistry(logger)
			loader := parser.NewLoader(registry, logger)
			if err := loader.LoadDBC(dbcPath); err != nil {
				return err
			}
			buses := registry.ListBuses()
			if len(buses) == 0 {
				return fmt.Errorf("no bus loaded from %s", dbcPath)
			}
			bus := buses[0]

			var feeds []feed
			switch {
			case serialPort != "":
				feeds = append(feeds, serialfeed.New(serialfeed.Config{Port: serialPort, Baud: serialBaud}, bus, logger))
			case canIface != "":
				feeds = append(feeds, canfeed.New(canIface, bus, logger))
			default:
				return errors.New("one of --serial or --can-if is required")
			}

			snap := snapshot.New()
			bus.Subscribe(func(ev dbc.Event) {
				if ev.Kind != dbc.SignalUpdated {
					return
				}
				msg, ok := bus.GetMessageByID(ev.MessageID)
				if !ok {
					return
				}
				sig, ok := msg.GetSignal(ev.SignalName)
				if !ok {
					return
				}
				snap.Set(bus.Name, ev.MessageID, ev.SignalName, sig.Physical(), time.Now())
			})

			var db *store.Store
			if dbPath != "" {
				var err error
				db, err = store.Open(dbPath)
				if err != nil {
					return fmt.Errorf("opening store: %w", err)
				}
				defer db.Close()

				bus.Subscribe(func(ev dbc.Event) {
					if ev.Kind != dbc.SignalUpdated {
						return
					}
					msg, ok := bus.GetMessageByID(ev.MessageID)
					if !ok {
						return
					}
					sig, ok := msg.GetSignal(ev.SignalName)
					if !ok {
						return
					}
					if err := db.SetSignal(bus.Name, ev.MessageID, ev.SignalName, sig.Physical()); err != nil {
						logger.Warn("failed to persist signal", "err", err)
					}
				})
			}

			var bridge *mqttbridge.Bridge
			if mqttBroker != "" {
				bridge = mqttbridge.New(mqttbridge.Config{
					Broker:       mqttBroker,
					ClientID:     fmt.Sprintf("dbcbus-%s-%d", bus.Name, time.Now().UnixNano()),
					Topic:        "dbcbus/" + bus.Name,
					CommandTopic: "dbcbus/" + bus.Name + "/cmd",
				}, func(bc common.BusCommand) error {
					if bc.Params.Bus != "" && bc.Params.Bus != bus.Name {
						return nil
					}
					if bc.Type == common.CommandClearSnapshot && db != nil {
						return db.ClearBus(bus.Name)
					}
					return nil
				}, logger)
				if err := bridge.Connect(); err != nil {
					return fmt.Errorf("connecting to mqtt: %w", err)
				}
				defer bridge.Disconnect()
				bridge.Subscribe(bus)
			}

			view := liveview.New(logger)
			view.Subscribe(bus)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)

			for _, f := range feeds {
				f := f
				if err := f.Start(gctx); err != nil {
					return fmt.Errorf("starting feed: %w", err)
				}
				g.Go(func() error {
					<-gctx.Done()
					return f.Stop()
				})
			}

			if httpAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/ws", view)
				httpServer := &http.Server{Addr: httpAddr, Handler: mux}

				g.Go(func() error {
					if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				})
				g.Go(func() error {
					<-gctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return httpServer.Shutdown(shutdownCtx)
				})
			}

			logger.Info("watching", "bus", bus.Name, "dbc", dbcPath)
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&dbcPath, "dbc", "", "path to the .dbc file (required)")
	cmd.Flags().StringVar(&serialPort, "serial", "", "serial port to read hex frames from")
	cmd.Flags().IntVar(&serialBaud, "baud", 9600, "serial baud rate")
	cmd.Flags().StringVar(&canIface, "can-if", "", "SocketCAN interface to read from (linux only)")
	cmd.Flags().StringVar(&mqttBroker, "mqtt-broker", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	cmd.Flags().StringVar(&httpAddr, "http", "", "address to serve the websocket live view on, e.g. :8080")
	cmd.Flags().StringVar(&dbPath, "dbpath", "", "bbolt database path for persisted signal snapshots")
	cmd.MarkFlagRequired("dbc")
	return cmd
}
