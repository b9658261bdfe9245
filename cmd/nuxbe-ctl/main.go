// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// nuxbe-ctl is a command-line tool for driving a running Nuxbe shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/teamnifty/nuxbe/pkg/client"
)

var (
	version    = "1.0.0"
	apiURL     = "http://localhost:7433"
	jsonOutput = false

	// API client instance
	apiClient *client.Client
)

func main() {
	// Check for NUXBE_API environment variable
	if env := os.Getenv("NUXBE_API"); env != "" {
		apiURL = strings.TrimSuffix(env, "/")
	}

	// Parse global flags and filter them out
	var filteredArgs []string
	for _, arg := range os.Args[1:] {
		if arg == "-json" {
			jsonOutput = true
		} else {
			filteredArgs = append(filteredArgs, arg)
		}
	}

	apiClient = client.New(apiURL,
		client.WithVersion(client.LatestVersion),
		client.WithUserAgent("nuxbe-ctl/"+version),
	)

	if len(filteredArgs) < 1 {
		printUsage()
		os.Exit(1)
	}

	cmd := filteredArgs[0]
	args := filteredArgs[1:]

	var err error
	switch cmd {
	case "status":
		err = cmdStatus(args)
	case "bootstrap":
		err = cmdBootstrap(args)
	case "connect":
		err = cmdConnect(args)
	case "reconnect":
		err = cmdSession(apiClient.Shell.Reconnect)
	case "change-server":
		err = cmdSession(apiClient.Shell.ChangeServer)
	case "reset":
		err = cmdSession(apiClient.Shell.Reset)
	case "history":
		err = cmdHistory(args)
	case "open":
		err = cmdOpen(args)
	case "tap":
		err = cmdTap(args)
	case "push-token":
		err = cmdPushToken(args)
	case "nav":
		err = cmdNav(args)
	case "bridge":
		err = cmdBridge(args)
	case "events":
		err = cmdEvents(args)
	case "version", "-v", "--version":
		fmt.Printf("nuxbe-ctl %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`nuxbe-ctl - Drive a running Nuxbe shell

Usage:
  nuxbe-ctl [-json] <command> [arguments]

Global Flags:
  -json          Output in JSON format

Environment:
  NUXBE_API      Base URL of the shell bridge API (default: http://localhost:7433)

Commands:
  status                   Show the session and loading state
  bootstrap [options]      Run the launch sequence
    -reset                 Forget the remembered server first
    -mid-navigation        Mark the launch as interrupting a page load

  connect <url>            Connect to a server, as the setup screen does
  reconnect                Accept the reconnect prompt
  change-server            Return to the setup screen, keeping history
  reset                    Forget the current server

  history                  List previously connected servers
  history rm <url>         Remove a server from the history

  open <link>              Deliver an external link (nuxbe://host/path)
  tap <path> [-server url] Queue a notification tap
  push-token <token>       Deliver a push registration token

  nav                      Show the loading supervisor
  nav completed            Report that the page finished loading
  nav retry                Re-issue the last navigation
  nav cancel               Abandon the load in flight

  bridge                   Show platform and device information
  events [-n N] [-type t] [-server url]
                           Show recent events (default: 50)

  version                  Show version
  help                     Show this help`)
}

// printJSON outputs any value as formatted JSON
func printJSON(v interface{}) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}

func cmdStatus(args []string) error {
	ctx := context.Background()
	status, err := apiClient.Shell.Navigation(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(status)
		return nil
	}

	s := status.Session
	fmt.Printf("%-14s %s\n", "Phase:", s.Phase)
	fmt.Printf("%-14s %s\n", "Server:", orDash(s.ServerURL))
	fmt.Printf("%-14s %s\n", "Name:", orDash(s.DisplayName))
	fmt.Printf("%-14s %v\n", "Native ready:", s.NativeFeaturesInitialized)
	if s.Error != nil {
		fmt.Printf("%-14s %s (%s)\n", "Error:", s.Error.Message, s.Error.Code)
	}
	fmt.Printf("%-14s %s\n", "Loading:", status.Loading.State)
	if cmd := status.Loading.Command; cmd != nil {
		fmt.Printf("%-14s %s\n", "Loading URL:", cmd.URL)
	}
	if !status.Loading.Deadline.IsZero() {
		fmt.Printf("%-14s %s\n", "Times out in:", time.Until(status.Loading.Deadline).Round(time.Second))
	}
	return nil
}

func cmdBootstrap(args []string) error {
	var opts client.BootstrapOptions
	for _, arg := range args {
		switch arg {
		case "-reset", "--reset":
			opts.Reset = true
		case "-mid-navigation", "--mid-navigation":
			opts.MidNavigation = true
		default:
			return fmt.Errorf("unknown option: %s", arg)
		}
	}

	res, err := apiClient.Shell.Bootstrap(context.Background(), opts)
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func cmdConnect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: nuxbe-ctl connect <url>")
	}

	res, err := apiClient.Shell.Connect(context.Background(), args[0])
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func cmdSession(op func(context.Context) (*client.SessionResult, error)) error {
	res, err := op(context.Background())
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func cmdHistory(args []string) error {
	ctx := context.Background()

	var entries []client.HistoryEntry
	var err error
	switch {
	case len(args) == 0:
		entries, err = apiClient.Shell.History(ctx)
	case (args[0] == "rm" || args[0] == "remove") && len(args) == 2:
		entries, err = apiClient.Shell.RemoveHistory(ctx, args[1])
	default:
		return fmt.Errorf("usage: nuxbe-ctl history [rm <url>]")
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(entries)
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No servers in history")
		return nil
	}

	fmt.Printf("%-40s %-25s %s\n", "URL", "NAME", "LAST CONNECTED")
	fmt.Println(strings.Repeat("-", 90))
	for _, e := range entries {
		fmt.Printf("%-40s %-25s %s\n", e.URL, orDash(e.AppName), e.LastConnectedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func cmdOpen(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: nuxbe-ctl open <link>")
	}

	res, err := apiClient.Shell.OpenLink(context.Background(), args[0])
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func cmdTap(args []string) error {
	var path, server string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-server", "--server":
			if i+1 >= len(args) {
				return fmt.Errorf("-server requires a URL")
			}
			server = args[i+1]
			i++
		default:
			path = args[i]
		}
	}
	if path == "" {
		return fmt.Errorf("usage: nuxbe-ctl tap <path> [-server url]")
	}

	if err := apiClient.Shell.NotificationTap(context.Background(), server, path); err != nil {
		return err
	}

	if !jsonOutput {
		fmt.Println("Notification tap queued")
	}
	return nil
}

func cmdPushToken(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: nuxbe-ctl push-token <token>")
	}

	accepted, err := apiClient.Shell.PushToken(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]bool{"accepted": accepted})
		return nil
	}
	if accepted {
		fmt.Println("Push token accepted")
	} else {
		fmt.Println("Push token ignored (already registered)")
	}
	return nil
}

func cmdNav(args []string) error {
	ctx := context.Background()

	if len(args) == 0 {
		return cmdStatus(nil)
	}

	switch args[0] {
	case "completed", "done":
		status, err := apiClient.Shell.NavigationCompleted(ctx)
		if err != nil {
			return err
		}
		return printNavigation(status)
	case "retry":
		cmd, err := apiClient.Shell.NavigationRetry(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(cmd)
			return nil
		}
		fmt.Printf("Retrying %s\n", cmd.URL)
		return nil
	case "cancel":
		status, err := apiClient.Shell.NavigationCancel(ctx)
		if err != nil {
			return err
		}
		return printNavigation(status)
	default:
		return fmt.Errorf("unknown nav command: %s (must be completed, retry, or cancel)", args[0])
	}
}

func cmdBridge(args []string) error {
	info, err := apiClient.Shell.Bridge(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(info)
		return nil
	}

	fmt.Printf("%-10s %s\n", "Platform:", info.Platform)
	fmt.Printf("%-10s %v\n", "Native:", info.IsNative)
	fmt.Printf("%-10s %s\n", "Version:", info.Version)
	if d := info.Device; d != nil {
		name := strings.TrimSpace(d.Manufacturer + " " + d.Model)
		fmt.Printf("%-10s %s\n", "Device:", orDash(name))
		fmt.Printf("%-10s %s\n", "OS:", orDash(d.OSVersion))
		if d.IsVirtual {
			fmt.Printf("%-10s %v\n", "Virtual:", d.IsVirtual)
		}
	}
	return nil
}

func cmdEvents(args []string) error {
	opts := &client.ListOptions{Limit: 50}

	for i := 0; i < len(args); i++ {
		if i+1 >= len(args) {
			break
		}
		switch args[i] {
		case "-n":
			n, err := strconv.Atoi(args[i+1])
			if err == nil && n > 0 {
				opts.Limit = n
			}
			i++
		case "-type", "-t":
			opts.Types = append(opts.Types, args[i+1])
			i++
		case "-server":
			opts.Server = args[i+1]
			i++
		}
	}

	events, err := apiClient.Events.List(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(events)
		return nil
	}

	fmt.Printf("%-20s %-28s %-30s %s\n", "TIME", "TYPE", "SERVER", "DETAILS")
	fmt.Println(strings.Repeat("-", 100))
	for _, evt := range events {
		fmt.Printf("%-20s %-28s %-30s %s\n",
			evt.Timestamp.Local().Format("2006-01-02 15:04:05"),
			evt.Type,
			orDash(evt.Server),
			formatPayload(evt.Payload),
		)
	}

	return nil
}

func printResult(res *client.SessionResult) {
	if jsonOutput {
		printJSON(res)
		return
	}

	fmt.Printf("Phase: %s\n", res.Phase)
	if res.Server != nil {
		if res.Server.DisplayName != "" {
			fmt.Printf("Server: %s (%s)\n", res.Server.DisplayName, res.Server.URL)
		} else {
			fmt.Printf("Server: %s\n", res.Server.URL)
		}
	}
	if res.DeepLink != nil {
		fmt.Printf("Deep link: %s %s%s\n", res.DeepLink.Action, res.DeepLink.ServerURL, res.DeepLink.Path)
	}
	if res.Command != nil {
		fmt.Printf("Navigate: %s\n", res.Command.URL)
	}
	if res.Error != nil {
		fmt.Printf("Error: %s (%s)\n", res.Error.Message, res.Error.Code)
	}
}

func printNavigation(status *client.NavigationStatus) error {
	if jsonOutput {
		printJSON(status)
		return nil
	}
	fmt.Printf("Loading: %s\n", status.Loading.State)
	fmt.Printf("Phase: %s\n", status.Session.Phase)
	return nil
}

// formatPayload renders payload fields as sorted key=value pairs.
func formatPayload(payload map[string]interface{}) string {
	if len(payload) == 0 {
		return ""
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, payload[k]))
	}
	return strings.Join(parts, " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
