package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Minimal interactive client: register, queue up, then type a skill number
// (1-4) on your turn.

func send(c *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	playerID := flag.String("player", "", "player id (generated when empty)")
	wallet := flag.String("wallet", "", "wallet address for reward claims")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			var msg map[string]interface{}
			if err := json.Unmarshal(message, &msg); err != nil {
				log.Printf("<- RECV (unparsed): %s", string(message))
				continue
			}
			log.Printf("<- RECV %v: %s", msg["type"], string(message))
			if msg["type"] == "turn_change" || msg["type"] == "battle_start" {
				if yourTurn, _ := msg["yourTurn"].(bool); yourTurn {
					log.Println("Your turn! Enter a skill number (1-4).")
				}
			}
		}
	}()

	register := map[string]interface{}{
		"type":          "register",
		"playerId":      *playerID,
		"walletAddress": *wallet,
		"party": []map[string]interface{}{
			{
				"speciesName": "Pikanad",
				"level":       5,
				"hp":          44,
				"maxHp":       44,
				"attack":      14,
				"defense":     8,
				"speed":       12,
				"skills": []map[string]interface{}{
					{"name": "Ember", "element": 0, "power": 40, "accuracy": 1.0},
					{"name": "Tackle", "element": 4, "power": 35, "accuracy": 1.0},
				},
			},
		},
	}
	if err := send(c, register); err != nil {
		log.Fatalf("Write error: %v", err)
	}
	if err := send(c, map[string]string{"type": "join_queue"}); err != nil {
		log.Fatalf("Write error: %v", err)
	}
	log.Println("Queued. Waiting for an opponent...")

	// Write loop
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}

			if n, err := strconv.Atoi(text); err == nil && n >= 1 {
				action := map[string]interface{}{
					"type":   "battle_action",
					"action": map[string]int{"skillIndex": n - 1},
				}
				if err := send(c, action); err != nil {
					log.Println("Write error:", err)
					return
				}
				log.Printf("-> SENT: skill %d", n)
			}
		}
	}
}
