package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/serebryakov7/dbcbus/internal/dbc"
	"github.com/serebryakov7/dbcbus/internal/dbc/parser"
)

func newEncodeCmd() *cobra.Command {
	var (
		dbcPath string
		busName string
		msgID   uint32
		sets    []string
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Set physical signal values and print the resulting hex payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := dbc.NewRegistry(slog.Default())
			loader := parser.NewLoader(registry, slog.Default())
			if err := loader.LoadDBC(dbcPath); err != nil {
				return err
			}

			if busName == "" {
				busName = strings.TrimSuffix(filepath.Base(dbcPath), filepath.Ext(dbcPath))
			}

			bus, ok := registry.GetBus(busName)
			if !ok {
				return fmt.Errorf("bus %q not found in %s", busName, dbcPath)
			}
			msg, ok := bus.GetMessageByID(msgID)
			if !ok {
				return fmt.Errorf("message id %d not found on bus %q", msgID, busName)
			}

			for _, set := range sets {
				name, valueStr, ok := strings.Cut(set, "=")
				if !ok {
					return fmt.Errorf("malformed --set %q, expected name=value", set)
				}
				value, err := strconv.ParseFloat(valueStr, 64)
				if err != nil {
					return fmt.Errorf("--set %q: %w", set, err)
				}
				sig, ok := msg.GetSignal(name)
				if !ok {
					return fmt.Errorf("signal %q not found on message %q", name, msg.Name)
				}
				if err := sig.SetPhysical(value); err != nil {
					return err
				}
			}

			fmt.Println((dbc.BitCodec{}).HexEncode(msg.GetData()))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbcPath, "dbc", "", "path to the .dbc file (required)")
	cmd.Flags().StringVar(&busName, "bus", "", "bus name (defaults to the dbc file's stem)")
	cmd.Flags().Uint32Var(&msgID, "id", 0, "message id")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "signal=value, may be repeated")
	cmd.MarkFlagRequired("dbc")
	cmd.MarkFlagRequired("id")
	return cmd
}
