// Command client is a thin interactive line-mode client for the chat server.
// It forwards stdin commands to the server and prints every server line as
// it arrives.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"github.com/parley/chat-app/internal/protocol"
)

const helpText = `commands:
  /help               show this help
  /connect            join the chat
  /send <text>        send a message
  /status             show recent messages
  /report <user-id>   report a user
  /exit               leave and quit`

// sendDisconnect asks the server to end the session before the client quits.
func sendDisconnect(conn net.Conn) error {
	_, err := conn.Write([]byte(protocol.CmdDisconnect))
	return err
}

func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "server address")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("client: dial %s: %v", *addr, err)
	}
	defer conn.Close()

	// Print server lines as they arrive.
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := conn.Read(buf)
			if err != nil || n == 0 {
				fmt.Println("connection closed by server")
				os.Exit(0)
			}
			fmt.Printf("<<< %s\n", strings.TrimSpace(string(buf[:n])))
		}
	}()

	fmt.Println(helpText)
	stdin := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(">>> ")
		if !stdin.Scan() {
			return
		}
		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}

		switch strings.Fields(line)[0] {
		case "/help":
			fmt.Println(helpText)
		case "/exit":
			if err := sendDisconnect(conn); err != nil {
				log.Printf("client: write: %v", err)
				return
			}
			fmt.Println("bye")
			return
		default:
			if _, err := conn.Write([]byte(line)); err != nil {
				log.Fatalf("client: write: %v", err)
			}
		}
	}
}
