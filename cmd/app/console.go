package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Aliiiqbp/OverUnder/internal/application"
	"github.com/Aliiiqbp/OverUnder/internal/domain"
	"github.com/Aliiiqbp/OverUnder/internal/usecase"
)

const helpText = `Type a question to send it to the analyst. Commands:
  /new          start a new analysis
  /list         list your analyses
  /switch <n>   open analysis n from /list
  /delete [n]   delete analysis n (default: the open one)
  /logout       log out
  /quit         exit`

// console is the line-oriented front end. It only renders App snapshots and
// forwards input; all behaviour lives in the application layer.
type console struct {
	app   *application.App
	lines <-chan string
	out   io.Writer
}

func newConsole(app *application.App, in io.Reader, out io.Writer) *console {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return &console{app: app, lines: lines, out: out}
}

var errInputClosed = errors.New("input closed")

func (c *console) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", errInputClosed
		}
		return strings.TrimSpace(line), nil
	}
}

// login prompts until a valid e-mail is entered.
func (c *console) login(ctx context.Context) error {
	fmt.Fprintln(c.out, "Log in to OverUnder.")
	for {
		name, err := c.readLine(ctx, "Name: ")
		if err != nil {
			return err
		}
		email, err := c.readLine(ctx, "E-mail: ")
		if err != nil {
			return err
		}
		u, err := c.app.Login(ctx, name, email)
		if errors.Is(err, domain.ErrInvalidArgument) {
			fmt.Fprintln(c.out, "That e-mail does not look valid, try again.")
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Welcome, %s.\n", u.Name)
		return nil
	}
}

// run is the main loop. It returns nil on /quit or end of input.
func (c *console) run(ctx context.Context) error {
	fmt.Fprintln(c.out, helpText)
	c.showActive()
	for {
		line, err := c.readLine(ctx, "> ")
		if errors.Is(err, errInputClosed) || errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := c.command(ctx, line)
			if err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}
		c.send(ctx, line)
	}
}

func (c *console) send(ctx context.Context, text string) {
	fmt.Fprintln(c.out, "analyst is researching...")
	out := c.app.Send(ctx, text)
	switch out.Status {
	case usecase.ExchangeIgnored:
		fmt.Fprintln(c.out, ignoredMessage(out.Reason))
	case usecase.ExchangeDropped:
		fmt.Fprintln(c.out, "(the analysis was deleted before the reply arrived)")
	default:
		if out.Reply != nil {
			renderMessage(c.out, *out.Reply)
		}
	}
}

func ignoredMessage(reason usecase.IgnoreReason) string {
	switch reason {
	case usecase.IgnoredBusy:
		return "(not sent: the open analysis is still waiting for a reply)"
	case usecase.IgnoredNoActiveSession:
		return "(not sent: no analysis is open; use /new or /switch n)"
	case usecase.IgnoredNotLoggedIn:
		return "(not sent: log in first)"
	default:
		return "(not sent: nothing to send)"
	}
}

func (c *console) command(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(c.out, helpText)
	case "/new":
		if _, err := c.app.NewAnalysis(ctx); err != nil {
			return false, err
		}
		c.showActive()
	case "/list":
		renderSessionList(c.out, c.app.Snapshot())
	case "/switch":
		id, err := c.pick(fields, false)
		if err != nil {
			return false, err
		}
		if err := c.app.Select(id); err != nil {
			return false, err
		}
		c.showActive()
	case "/delete":
		id, err := c.pick(fields, true)
		if err != nil {
			return false, err
		}
		if err := c.app.Delete(ctx, id); err != nil {
			return false, err
		}
		fmt.Fprintln(c.out, "Deleted.")
		c.showActive()
	case "/logout":
		if err := c.app.Logout(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(c.out, "Logged out.")
		if err := c.login(ctx); err != nil {
			return true, err
		}
		c.showActive()
	default:
		return false, fmt.Errorf("unknown command %s (try /help)", fields[0])
	}
	return false, nil
}

// pick resolves the 1-based index argument of /switch and /delete.
func (c *console) pick(fields []string, activeByDefault bool) (string, error) {
	snap := c.app.Snapshot()
	if len(fields) < 2 {
		if activeByDefault && snap.ActiveID != "" {
			return snap.ActiveID, nil
		}
		return "", fmt.Errorf("%s needs an analysis number", fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 || n > len(snap.Sessions) {
		return "", fmt.Errorf("no analysis number %s", fields[1])
	}
	return snap.Sessions[n-1].ID, nil
}

func (c *console) showActive() {
	snap := c.app.Snapshot()
	if s := snap.Active(); s != nil {
		renderSession(c.out, s)
	}
}
