package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/serebryakov7/dbcbus/internal/dbc"
	"github.com/serebryakov7/dbcbus/internal/dbc/parser"
)

func newDecodeCmd() *cobra.Command {
	var (
		dbcPath string
		busName string
		msgID   uint32
		hexData string
	)

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode one payload and print every signal's physical value",
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

			data, err := (dbc.BitCodec{}).HexDecode(hexData, " ")
			if err != nil {
				return err
			}
			if err := msg.SetData(data); err != nil {
				return err
			}

			for _, sig := range msg.Signals() {
				fmt.Printf("%s = %g %s\n", sig.Name, sig.Physical(), sig.Unit)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbcPath, "dbc", "", "path to the .dbc file (required)")
	cmd.Flags().StringVar(&busName, "bus", "", "bus name (defaults to the dbc file's stem)")
	cmd.Flags().Uint32Var(&msgID, "id", 0, "message id")
	cmd.Flags().StringVar(&hexData, "hex", "", `payload as space separated hex, e.g. "AA BB CC"`)
	cmd.MarkFlagRequired("dbc")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("hex")
	return cmd
}
