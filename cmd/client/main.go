package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gorilla/websocket"
)

// Interactive wire client: each input line becomes one JSON command
// frame, replies and pushes are printed as they arrive.
//
//	login <user> <password>
//	id | logout | getall
//	newtl <name> | deltl <name> | gettl <name>
//	addtask <tasklist> <description...>
//	removetask <tasklist> <description...>
//	setstate <tasklist> <task> <state> [user]
//	comment <tasklist> <task> <text...>
//	grant <tasklist> <user> | revoke <tasklist> <user>
func main() {
	url := os.Getenv("SERVER_URL")
	if url == "" {
		url = "ws://127.0.0.1:8080/ws"
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()

	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Printf("connection closed: %v", err)
				os.Exit(0)
			}
			fmt.Printf("< %s\n", msg)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}

		cmd, err := parse(line)
		if err != nil {
			fmt.Println("!", err)
			continue
		}

		b, err := json.Marshal(cmd)
		if err != nil {
			fmt.Println("!", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Fatalf("write: %v", err)
		}
	}
}

func parse(line string) (map[string]string, error) {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "login":
		if len(args) != 2 {
			return nil, fmt.Errorf("usage: login <user> <password>")
		}
		return map[string]string{"type": "login", "login": args[0], "password": args[1]}, nil
	case "id", "logout", "getall":
		return map[string]string{"type": cmd}, nil
	case "newtl", "deltl", "gettl":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: %s <name>", cmd)
		}
		return map[string]string{"type": cmd, "name": args[0]}, nil
	case "addtask", "removetask":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: %s <tasklist> <description>", cmd)
		}
		return map[string]string{
			"type":        cmd,
			"tasklist":    args[0],
			"description": strings.Join(args[1:], " "),
		}, nil
	case "setstate":
		if len(args) < 3 {
			return nil, fmt.Errorf("usage: setstate <tasklist> <task> <state> [user]")
		}
		m := map[string]string{
			"type":     "setstate",
			"tasklist": args[0],
			"task":     args[1],
			"state":    args[2],
		}
		if len(args) > 3 {
			m["user"] = args[3]
		}
		return m, nil
	case "comment":
		if len(args) < 3 {
			return nil, fmt.Errorf("usage: comment <tasklist> <task> <text>")
		}
		return map[string]string{
			"type":     "comment",
			"tasklist": args[0],
			"task":     args[1],
			"comment":  strings.Join(args[2:], " "),
		}, nil
	case "grant", "revoke":
		if len(args) != 2 {
			return nil, fmt.Errorf("usage: %s <tasklist> <user>", cmd)
		}
		return map[string]string{"type": cmd, "tasklist": args[0], "user": args[1]}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}
