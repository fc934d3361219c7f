package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/serebryakov7/dbcbus/internal/dbc"
	"github.com/serebryakov7/dbcbus/internal/dbc/parser"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.dbc>...",
		Short: "Parse one or more DBC files and print a summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := dbc.NewRegistry(slog.Default())
			loader := parser.NewLoader(registry, slog.Default())

			for _, path := range args {
				if err := loader.LoadDBC(path); err != nil {
					return fmt.Errorf("loading %s: %w", path, err)
				}
			}

			for _, bus := range registry.ListBuses() {
				fmt.Printf("bus %q:\n", bus.Name)
				for _, msg := range bus.GetAllMessages() {
					fmt.Printf("  %s\n", msg)
					for _, sig := range msg.Signals() {
						fmt.Printf("    %s\n", sig)
					}
				}
			}
			return nil
		},
	}
}
