package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"go-inbox/pkg/inboxclient"
)

var (
	reader = bufio.NewReader(os.Stdin)
	client *inboxclient.Client
	inbox  *inboxclient.Inbox
	feed   *inboxclient.Feed
	stop   context.CancelFunc
)

func main() {
	_ = godotenv.Load()
	def := os.Getenv("INBOX_URL")
	if def == "" {
		def = "http://localhost:8080"
	}
	baseURL := flag.String("url", def, "inbox server base URL")
	flag.Parse()

	client = inboxclient.New(*baseURL, inboxclient.WithTimeout(30*time.Second))
	fmt.Println("Welcome to Inbox CLI")
	for {
		if inbox == nil {
			printAuthMenu()
		} else {
			printMainMenu()
		}
	}
}

func printAuthMenu() {
	fmt.Println("\n=== Auth Menu ===")
	fmt.Println("1. Sign in")
	fmt.Println("2. Sign up")
	fmt.Println("3. Exit")

	switch prompt("> ") {
	case "1":
		handleSignIn()
	case "2":
		handleSignUp()
	case "3":
		quit()
	default:
		fmt.Println("Invalid choice")
	}
}

func printMainMenu() {
	fmt.Println("\n=== Main Menu ===")
	if id := inbox.Selected(); id != "" {
		fmt.Printf("Current conversation: %s\n", conversationName(id))
	}
	fmt.Println("1. List conversations")
	fmt.Println("2. Select conversation")
	fmt.Println("3. New conversation")
	fmt.Println("4. Show messages")
	fmt.Println("5. Send message")
	fmt.Println("6. Attach file")
	fmt.Println("7. Sign out")
	fmt.Println("8. Exit")

	switch prompt("> ") {
	case "1":
		handleList()
	case "2":
		handleSelect()
	case "3":
		handleCreate()
	case "4":
		printMessages()
	case "5":
		handleSend()
	case "6":
		handleAttach()
	case "7":
		handleSignOut()
	case "8":
		quit()
	default:
		fmt.Println("Invalid choice")
	}
}

func prompt(label string) string {
	fmt.Print(label)
	input, err := reader.ReadString('\n')
	if err != nil {
		quit()
	}
	return strings.TrimSpace(input)
}

func handleSignUp() {
	email := prompt("Email: ")
	password := prompt("Password: ")
	name := prompt("Full name: ")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	msg, err := client.SignUp(ctx, email, password, name)
	if err != nil {
		fmt.Printf("Sign up failed: %v\n", err)
		return
	}
	fmt.Println(msg)
}

func handleSignIn() {
	email := prompt("Email: ")
	password := prompt("Password: ")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := client.SignIn(ctx, email, password)
	if err != nil {
		fmt.Printf("Sign in failed: %v\n", err)
		return
	}
	inbox = inboxclient.NewInbox(client, s)
	if err := inbox.Load(ctx); err != nil {
		fmt.Printf("Could not load conversations: %v\n", err)
	}
	fmt.Printf("Signed in as %s\n", s.Email)
	startFeed()
}

func handleSignOut() {
	stopFeed()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.SignOut(ctx, inbox.Session()); err != nil {
		fmt.Printf("Sign out: %v\n", err)
	}
	inbox = nil
	fmt.Println("Signed out")
}

func handleList() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := inbox.Load(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	convs := inbox.Filter(prompt("Filter (empty for all): "))
	if len(convs) == 0 {
		fmt.Println("No conversations yet.")
		return
	}
	for i, c := range convs {
		marker := " "
		if c.ID == inbox.Selected() {
			marker = "*"
		}
		fmt.Printf("%s %d. %s (%s)\n", marker, i+1, c.Name, c.Kind)
	}
}

func handleSelect() {
	convs := inbox.Conversations()
	if len(convs) == 0 {
		fmt.Println("No conversations yet.")
		return
	}
	n, err := strconv.Atoi(prompt("Number: "))
	if err != nil || n < 1 || n > len(convs) {
		fmt.Println("Invalid choice")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	prev := inbox.Selected()
	if err := inbox.Select(ctx, convs[n-1].ID); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if feed != nil {
		if prev != "" && prev != convs[n-1].ID {
			_ = feed.Leave(prev)
		}
		_ = feed.Join(convs[n-1].ID)
	}
	printMessages()
}

func handleCreate() {
	name := prompt("Name: ")
	kind := prompt("Type (direct/group) [group]: ")
	if kind == "" {
		kind = "group"
	}
	var ids []string
	for _, id := range strings.Split(prompt("Participant user ids (comma separated): "), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conv, err := client.CreateConversation(ctx, inbox.Session(), name, kind, ids)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := inbox.Load(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
	fmt.Printf("Created %s (%s)\n", conv.Name, conv.ID)
}

func handleSend() {
	if inbox.Selected() == "" {
		fmt.Println("Select a conversation first.")
		return
	}
	body := prompt("Message: ")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := inbox.Send(ctx, body); err != nil {
		if errors.Is(err, inboxclient.ErrEmptyMessage) {
			return
		}
		fmt.Printf("Could not send: %v\n", err)
	}
}

func handleAttach() {
	if inbox.Selected() == "" {
		fmt.Println("Select a conversation first.")
		return
	}
	path := prompt("File path: ")
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	kind := prompt("Kind (image/video/audio/document) [document]: ")
	if kind == "" {
		kind = "document"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := inbox.Attach(ctx, inboxclient.Attachment{FileName: info.Name(), SizeBytes: info.Size(), Kind: kind}); err != nil {
		fmt.Printf("Could not attach: %v\n", err)
		return
	}
	fmt.Println("Uploading...")
}

func printMessages() {
	entries := inbox.Messages()
	if len(entries) == 0 {
		fmt.Println("No messages yet.")
		return
	}
	for _, e := range entries {
		printEntry(e)
	}
}

func printEntry(e inboxclient.Entry) {
	suffix := ""
	if e.State != inboxclient.Confirmed {
		suffix = " [" + e.State.String() + "]"
	}
	fmt.Printf("[%s] %s: %s%s\n", e.CreatedAt.Local().Format("15:04"), e.SenderName, e.Body, suffix)
}

// startFeed prints live events in the background while the menu runs.
func startFeed() {
	ctx, cancel := context.WithCancel(context.Background())
	f, err := client.Subscribe(ctx, inbox.Session())
	if err != nil {
		cancel()
		fmt.Printf("Live updates unavailable: %v\n", err)
		return
	}
	feed, stop = f, cancel
	if id := inbox.Selected(); id != "" {
		_ = f.Join(id)
	}
	ib := inbox
	go func() {
		err := ib.Follow(ctx, f, func(e inboxclient.Event) {
			switch {
			case e.Type == inboxclient.EventUploadProgress:
				fmt.Printf("\n%s: %d%%\n", e.Progress.FileName, e.Progress.Progress)
			case e.Message != nil && e.Message.SenderID != ib.Session().UserID:
				fmt.Println()
				printEntry(inboxclient.Entry{Message: *e.Message, State: inboxclient.Confirmed})
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Printf("\nLive updates stopped: %v\n", err)
		}
	}()
}

func stopFeed() {
	if stop != nil {
		stop()
	}
	if feed != nil {
		_ = feed.Close()
	}
	feed, stop = nil, nil
}

func conversationName(id string) string {
	for _, c := range inbox.Conversations() {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

func quit() {
	stopFeed()
	fmt.Println("Goodbye!")
	os.Exit(0)
}
