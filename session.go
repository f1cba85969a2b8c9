package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"github.com/spf13/cobra"

	"localboard/internal/net"
	"localboard/internal/state"
	"localboard/internal/ui"
)

// hostOwner is the owner ID of actions drawn on the host.
const hostOwner = "host"

// shareLocalChanges hands every local board change to send. Inserts carry
// the action's own stamp; other ops are stamped as they are sent.
func shareLocalChanges(board *ui.BoardWidget, send func(state.Op)) {
	clock := board.Surface().Clock()
	board.OnStrokeDone = func(a *state.Action) { send(state.InsertOp(a)) }
	board.OnUndo = func(a *state.Action) { send(clock.Stamp(state.DeleteOp(a.ID()))) }
	board.OnRedo = func(a *state.Action) { send(state.InsertOp(a)) }
	board.OnClear = func(owner string) {
		slog.Debug("sharing clear", "owner", owner)
		send(clock.Stamp(state.ClearOp(owner)))
	}
	board.OnLoad = func(actions []*state.Action) {
		send(clock.Stamp(state.ClearOp(board.LocalClientID)))
		for _, a := range actions {
			send(state.InsertOp(a))
		}
	}
}

func newHostCmd() *cobra.Command {
	cfg := net.DefaultConfig()
	var noMDNS bool
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Host a board and share it on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Advertise = !noMDNS
			return runHost(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "port to listen on")
	cmd.Flags().BoolVar(&noMDNS, "no-mdns", false, "do not advertise the board over mDNS")
	return cmd
}

func runHost(ctx context.Context, cfg net.Config) error {
	slog.Info("starting as host", "port", cfg.Port)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	board := ui.NewBoardWidget(slog.Default())
	board.SetLocalClientID(hostOwner)

	hub := net.NewHub(func(op state.Op) {
		fyne.Do(func() { board.ApplyRemote(op) })
	}, slog.Default())
	shareLocalChanges(board, func(op state.Op) { hub.Broadcast(op, nil) })

	go func() {
		if err := net.Serve(ctx, cfg, hub); err != nil {
			slog.Error("host server stopped", "err", err)
			board.SetStatus(fmt.Sprintf("Sharing stopped: %v", err))
		}
	}()

	if cfg.Advertise {
		server, err := net.Advertise(cfg.Port)
		if err != nil {
			slog.Warn("mDNS advertise failed, share the link instead", "err", err)
		} else {
			defer server.Shutdown()
		}
	}

	ui.RunApp(nil, net.ShareLink(net.OutgoingIP(), cfg.Port), board)
	return nil
}

func newJoinCmd() *cobra.Command {
	cfg := net.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "join [address|localboard://address]",
		Short: "Join a board hosted on the local network",
		Long:  "Join a board. Without an address, hosts are looked up over mDNS and the first one found is joined.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := ""
			if len(args) == 1 {
				addr = net.ParseLink(args[0])
			}
			return runJoin(cmd.Context(), cfg, addr)
		},
	}
	cmd.Flags().DurationVar(&cfg.BrowseTimeout, "timeout", cfg.BrowseTimeout, "how long to look for hosts over mDNS")
	return cmd
}

func findHost(cfg net.Config) (string, error) {
	slog.Info("looking for hosts", "timeout", cfg.BrowseTimeout)
	hosts, err := net.Browse(cfg.BrowseTimeout)
	if err != nil {
		return "", err
	}
	if len(hosts) == 0 {
		return "", errors.New("no board found on the local network, pass the share link")
	}
	if len(hosts) > 1 {
		slog.Info("several hosts found, joining the first", "hosts", hosts)
	}
	return hosts[0], nil
}

func runJoin(ctx context.Context, cfg net.Config, addr string) error {
	if addr == "" {
		found, err := findHost(cfg)
		if err != nil {
			return err
		}
		addr = found
	}
	slog.Info("starting as client", "host", addr)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := net.Dial(dialCtx, addr, cfg.Path)
	cancel()
	if err != nil {
		return err
	}
	defer client.Close()

	board := ui.NewBoardWidget(slog.Default())
	// a client is known by its side of the connection
	board.SetLocalClientID(client.LocalAddr())
	board.SetStatus("Connected to host as " + client.LocalAddr())
	site := board.Surface().Clock().Site()

	shareLocalChanges(board, func(op state.Op) {
		if err := client.Send(op); err != nil {
			slog.Warn("sending op", "type", op.Type, "err", err)
			board.SetStatus("Could not reach the host")
		}
	})

	go func() {
		err := client.Run(func(op state.Op) {
			if op.Site == site {
				return // already applied here
			}
			fyne.Do(func() { board.ApplyRemote(op) })
		})
		if err != nil {
			slog.Warn("connection lost", "err", err)
			board.SetStatus(fmt.Sprintf("Disconnected from host: %v", err))
			return
		}
		board.SetStatus("Host closed the board")
	}()

	ui.RunApp(nil, "", board)
	return nil
}
