package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/docopt/docopt-go"

	"github.com/FordLabs/retroquest-sub000/board"
	"github.com/FordLabs/retroquest-sub000/client"
	"github.com/FordLabs/retroquest-sub000/client/api"
)

const defaultAPIURL = "http://localhost:8080"

const usage = `Watch a retro board from the terminal.

Usage:
    boardwatch snapshot --team=<team> [--api_url=<api_url>]
    boardwatch tail --team=<team> [--api_url=<api_url>] [--ws_url=<ws_url>]

Options:
    -h --help              Show this screen.
    --team=<team>          Team id.
    --api_url=<api_url>    API base url [default: http://localhost:8080].
    --ws_url=<ws_url>      Websocket url (derived from api_url when omitted).`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], "")
	if err != nil {
		panic(err)
	}

	teamID, err := opts.Int("--team")
	if err != nil || teamID <= 0 {
		log.Fatal("--team must be a positive integer")
	}

	apiURL := defaultAPIURL
	if v := opts["--api_url"]; v != nil {
		apiURL = v.(string)
	}

	if snapshot, _ := opts.Bool("snapshot"); snapshot {
		runSnapshot(int64(teamID), apiURL)
		return
	}
	if tail, _ := opts.Bool("tail"); tail {
		wsURL := socketURL(apiURL, int64(teamID))
		if v := opts["--ws_url"]; v != nil {
			wsURL = v.(string)
		}
		runTail(int64(teamID), apiURL, wsURL)
	}
}

// socketURL derives the team's websocket endpoint from the API base url.
func socketURL(apiURL string, teamID int64) string {
	ws := strings.Replace(apiURL, "http", "ws", 1)
	return fmt.Sprintf("%s/api/v1/team/%d/ws", ws, teamID)
}

func newBoard(teamID int64, apiURL, wsURL string) *client.Board {
	b, err := client.New(client.Config{
		TeamID:    teamID,
		API:       api.New(apiURL),
		SocketURL: wsURL,
		OnError: func(err error) {
			log.Printf("board: %v", err)
		},
	})
	if err != nil {
		log.Fatalf("configure board: %v", err)
	}
	return b
}

func runSnapshot(teamID int64, apiURL string) {
	b := newBoard(teamID, apiURL, "")
	if err := b.Start(context.Background()); err != nil {
		log.Fatalf("load board: %v", err)
	}
	printBoard(b)
}

func runTail(teamID int64, apiURL, wsURL string) {
	b := newBoard(teamID, apiURL, wsURL)

	// Redraw on every effective change the reconciler applies.
	b.Store().OnChange(func() {
		printBoard(b)
	})

	if err := b.Start(context.Background()); err != nil {
		log.Fatalf("load board: %v", err)
	}
	defer b.Stop()
	printBoard(b)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}

func printBoard(b *client.Board) {
	renderBoard(os.Stdout, b)
}

func renderBoard(w io.Writer, b *client.Board) {
	views := b.Views()
	if team, ok := b.Store().Team(); ok {
		fmt.Fprintf(w, "== %s (rev %d) ==\n", team.Name, b.Store().Revision())
	}
	for _, col := range b.Store().Columns() {
		fmt.Fprintf(w, "[%s] %s (%d open)\n", col.Topic, col.Title, views.ActiveCountByTopic(col.Topic))
		for _, t := range views.SortableByTopic(col.Topic, false) {
			fmt.Fprintf(w, "  %s %3d♡  %s\n", marker(t.Discussed), t.Hearts, t.Message)
		}
	}
	actions := board.ActionColumn()
	fmt.Fprintf(w, "[%s] %s\n", actions.Topic, actions.Title)
	for _, a := range views.ActiveActionItems() {
		fmt.Fprintf(w, "  [ ] %s", a.Task)
		if a.Assignee != "" {
			fmt.Fprintf(w, " (%s)", a.Assignee)
		}
		fmt.Fprintln(w)
	}
	for _, a := range views.CompletedActionItems() {
		fmt.Fprintf(w, "  [x] %s\n", a.Task)
	}
	fmt.Fprintln(w)
}

func marker(discussed bool) string {
	if discussed {
		return "*"
	}
	return "-"
}
