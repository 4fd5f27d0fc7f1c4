// Command quo is a CLI client for the Quotidian journal service.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "quotidian")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "quotidian")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

// ---- http client ----

type client struct {
	base  string
	token string
	http  *http.Client
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call sends a JSON request and decodes the response envelope into out.
func (c *client) call(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("bad response (%s): %w", resp.Status, err)
	}
	if env.Code != 0 {
		return fmt.Errorf("%s (code %d)", env.Message, env.Code)
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// ---- utils ----

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `quo CLI
Usage:
  quo -addr URL [-lang code] <cmd> [args]

Commands:
  version
  register   -u <username> -p <password>
  login      -u <username> -p <password>           (saves token)
  profile
  today                                            (show today's question)
  answer     -text <answer> | -file <path>
  missed     -day YYYY-MM-DD                       (show prospect)
  fill       -day YYYY-MM-DD -text <answer>        (spend a joker)
  calendar   [-month YYYY-MM] [-refresh]
  streaks
  recap
  jokers
`)
	os.Exit(2)
}

// ---- calendar rendering ----

type dayCell struct {
	Day      string `json:"day"`
	State    string `json:"state"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	IsJoker  bool   `json:"is_joker"`
}

type monthView struct {
	Month string    `json:"month"`
	Days  []dayCell `json:"days"`
}

const gridWidth = len("11 12 13 14 15 16 17") // an example week

// printMonth renders the month as a week grid, one color per state.
func printMonth(v monthView) {
	first, err := time.ParseInLocation("2006-01", v.Month, time.Local)
	if err != nil {
		printJSON(v)
		return
	}

	title := color.New(color.FgWhite, color.Italic)
	m := first.Month().String()
	mid := (gridWidth - len(m)) / 2
	title.Printf("%s%s%s\n", strings.Repeat(" ", mid), m, strings.Repeat(" ", gridWidth-mid-len(m)))

	styles := map[string]*color.Color{
		"today":    color.New(color.Bold, color.FgHiWhite),
		"answered": color.New(color.FgHiGreen),
		"joker":    color.New(color.FgHiYellow),
		"missed":   color.New(color.FgRed),
		"future":   color.New(color.Faint, color.FgWhite),
	}
	fallback := color.New()

	wd := first.Weekday()
	for i := time.Sunday; i < wd; i++ {
		fmt.Print("   ")
	}
	for i, c := range v.Days {
		p, ok := styles[c.State]
		if !ok {
			p = fallback
		}
		p.Printf("%2d ", i+1)

		wd++
		if wd > time.Saturday {
			wd = time.Sunday
			fmt.Print("\n")
		}
	}
	fmt.Print("\n\n")

	for _, c := range v.Days {
		if c.Answer == "" {
			continue
		}
		marker := "·"
		if c.IsJoker {
			marker = "◦"
		}
		fmt.Printf("%s %s  %s\n", c.Day, marker, c.Answer)
	}
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the HTTP API.
func main() {
	// global flags
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	lang := flag.String("lang", "en", "question language")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := &client{
		base: strings.TrimRight(*addr, "/") + "/api",
		http: &http.Client{Timeout: 30 * time.Second},
	}
	langQ := "?lang=" + *lang

	die := func(err error) {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	auth := func() {
		tok, err := loadToken()
		if err != nil {
			die(err)
		}
		c.token = tok
	}

	switch cmd {

	case "version":
		fmt.Printf("quo %s (%s)\n", version, buildDate)

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		var out struct {
			UserID string `json:"user_id"`
		}
		if err := c.call(ctx, http.MethodPost, "/auth/register", map[string]string{"username": *u, "password": *p}, &out); err != nil {
			die(err)
		}
		fmt.Println("registered:", out.UserID)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		var out struct {
			Token     string    `json:"token"`
			ExpiresAt time.Time `json:"expires_at"`
		}
		if err := c.call(ctx, http.MethodPost, "/auth/login", map[string]string{"username": *u, "password": *p}, &out); err != nil {
			die(err)
		}
		if err := saveToken(out.Token, out.ExpiresAt); err != nil {
			die(err)
		}
		fmt.Println("ok")

	case "profile":
		auth()
		var out map[string]any
		if err := c.call(ctx, http.MethodGet, "/profile", nil, &out); err != nil {
			die(err)
		}
		printJSON(out)

	case "today":
		auth()
		var out struct {
			Day  string `json:"day"`
			Text string `json:"text"`
		}
		if err := c.call(ctx, http.MethodGet, "/questions/today"+langQ, nil, &out); err != nil {
			die(err)
		}
		fmt.Printf("%s\n%s\n", out.Day, out.Text)

	case "answer":
		auth()
		fs := flag.NewFlagSet("answer", flag.ExitOnError)
		text := fs.String("text", "", "answer text")
		file := fs.String("file", "", "read answer from file ('-' for stdin)")
		_ = fs.Parse(flag.Args()[1:])
		t := *text
		if *file != "" {
			b, err := readAll(*file)
			if err != nil {
				die(err)
			}
			t = string(b)
		}
		if err := c.call(ctx, http.MethodPost, "/answers/today"+langQ, map[string]string{"text": t}, nil); err != nil {
			die(err)
		}
		fmt.Println("saved")

	case "missed":
		auth()
		fs := flag.NewFlagSet("missed", flag.ExitOnError)
		day := fs.String("day", "", "day (YYYY-MM-DD)")
		_ = fs.Parse(flag.Args()[1:])
		var out struct {
			State    string `json:"state"`
			Balance  int    `json:"balance"`
			Question string `json:"question"`
		}
		if err := c.call(ctx, http.MethodGet, "/answers/missed/"+*day+langQ, nil, &out); err != nil {
			die(err)
		}
		switch out.State {
		case "eligible":
			fmt.Printf("%s\njokers left: %d\n", out.Question, out.Balance)
		case "window_closed":
			fmt.Println("that day can no longer be answered")
		case "no_jokers":
			fmt.Println("no jokers left this month")
		default:
			printJSON(out)
		}

	case "fill":
		auth()
		fs := flag.NewFlagSet("fill", flag.ExitOnError)
		day := fs.String("day", "", "day (YYYY-MM-DD)")
		text := fs.String("text", "", "answer text")
		_ = fs.Parse(flag.Args()[1:])
		body := map[string]string{"day": *day, "text": *text}
		if err := c.call(ctx, http.MethodPost, "/answers/missed"+langQ, body, nil); err != nil {
			die(err)
		}
		fmt.Println("saved (1 joker spent)")

	case "calendar":
		auth()
		fs := flag.NewFlagSet("calendar", flag.ExitOnError)
		month := fs.String("month", time.Now().Format("2006-01"), "month (YYYY-MM)")
		refresh := fs.Bool("refresh", false, "bypass the cached month")
		_ = fs.Parse(flag.Args()[1:])
		path := "/calendar/" + *month + langQ
		if *refresh {
			path += "&refresh=1"
		}
		var out monthView
		if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
			die(err)
		}
		printMonth(out)

	case "streaks":
		auth()
		var out struct {
			Visual    int `json:"visual_streak"`
			Real      int `json:"real_streak"`
			Milestone int `json:"milestone"`
		}
		if err := c.call(ctx, http.MethodGet, "/streaks", nil, &out); err != nil {
			die(err)
		}
		fmt.Printf("streak: %d days (%d without jokers)\n", out.Visual, out.Real)
		if out.Milestone > 0 {
			congrats := color.New(color.Bold, color.FgHiYellow)
			congrats.Printf("milestone reached: %d days!\n", out.Milestone)
		}

	case "recap":
		auth()
		var out *struct {
			Start    string `json:"start"`
			End      string `json:"end"`
			Answered int    `json:"answered"`
			Total    int    `json:"total"`
		}
		if err := c.call(ctx, http.MethodGet, "/recap", nil, &out); err != nil {
			die(err)
		}
		if out == nil {
			fmt.Println("no recap today")
			return
		}
		fmt.Printf("week %s .. %s: answered %d of %d days\n", out.Start, out.End, out.Answered, out.Total)

	case "jokers":
		auth()
		var out struct {
			Balance int `json:"balance"`
		}
		if err := c.call(ctx, http.MethodGet, "/jokers", nil, &out); err != nil {
			die(err)
		}
		fmt.Printf("jokers left: %d\n", out.Balance)

	default:
		usage()
	}
}
