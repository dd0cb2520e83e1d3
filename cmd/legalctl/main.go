package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"legal-assistant/internal/app"
	"legal-assistant/internal/client"
)

const usage = `usage: legalctl [-api URL] <command> [args]

commands:
  create-case NAME              create a case
  cases                         list cases
  upload -case NAME FILE        upload a PDF or TXT document into a case
  ask [-case NAME] QUESTION...  ask a question, against a case when -case is set
  general QUESTION...           ask a general legal question
  counter -case NAME TEXT...    suggest a response to the opponent's argument
`

// API is the subset of the assistant API the cli drives.
type API interface {
	CreateCase(ctx context.Context, name string) (client.CreateCaseResponse, error)
	ListCases(ctx context.Context) ([]string, error)
	UploadDocument(ctx context.Context, caseName, filename string, body io.Reader) (client.UploadResponse, error)
	Ask(ctx context.Context, caseName, query string) (client.AskResponse, error)
	AskGeneral(ctx context.Context, query string) (client.AskResponse, error)
	Counter(ctx context.Context, caseName, opponentText string) (client.CounterResponse, error)
}

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.BuildClient(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("legalctl", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	apiURL := fs.String("api", deps.Config.APIURL, "assistant api base url")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	api := API(deps.API)
	if *apiURL != deps.Config.APIURL {
		api = client.New(*apiURL, &http.Client{Timeout: deps.Config.ClientTimeout})
	}

	if err := run(ctx, api, fs.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
			os.Exit(2)
		}
		deps.Log.Error("command failed", "command", fs.Arg(0), "status", client.StatusCode(err), "err", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, api API, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "create-case":
		if len(rest) != 1 {
			return fmt.Errorf("%w: create-case takes exactly one NAME", errUsage)
		}
		resp, err := api.CreateCase(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, resp.Message)
		return nil

	case "cases":
		cases, err := api.ListCases(ctx)
		if err != nil {
			return err
		}
		if len(cases) == 0 {
			fmt.Fprintln(out, "no cases")
			return nil
		}
		for _, c := range cases {
			fmt.Fprintln(out, c)
		}
		return nil

	case "upload":
		caseName, files, err := caseFlag(cmd, rest, true)
		if err != nil {
			return err
		}
		if len(files) != 1 {
			return fmt.Errorf("%w: upload takes exactly one FILE", errUsage)
		}
		return upload(ctx, api, caseName, files[0], out)

	case "ask":
		caseName, words, err := caseFlag(cmd, rest, false)
		if err != nil {
			return err
		}
		query := strings.Join(words, " ")
		if query == "" {
			return fmt.Errorf("%w: ask needs a QUESTION", errUsage)
		}
		resp, err := api.Ask(ctx, caseName, query)
		if err != nil {
			return err
		}
		printAnswer(out, resp.Answer)
		return nil

	case "general":
		query := strings.Join(rest, " ")
		if query == "" {
			return fmt.Errorf("%w: general needs a QUESTION", errUsage)
		}
		resp, err := api.AskGeneral(ctx, query)
		if err != nil {
			return err
		}
		printAnswer(out, resp.Answer)
		return nil

	case "counter":
		caseName, words, err := caseFlag(cmd, rest, true)
		if err != nil {
			return err
		}
		text := strings.Join(words, " ")
		if text == "" {
			return fmt.Errorf("%w: counter needs the opponent's TEXT", errUsage)
		}
		resp, err := api.Counter(ctx, caseName, text)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Opponent: %s\n\nSuggested response:\n%s\n", resp.Opponent, resp.SuggestedResponse)
		return nil

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// caseFlag parses a subcommand's -case flag and returns it with the remaining args.
func caseFlag(cmd string, args []string, required bool) (string, []string, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	caseName := fs.String("case", "", "case name")
	if err := fs.Parse(args); err != nil {
		return "", nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if required && *caseName == "" {
		return "", nil, fmt.Errorf("%w: %s requires -case", errUsage, cmd)
	}
	return *caseName, fs.Args(), nil
}

func upload(ctx context.Context, api API, caseName, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	resp, err := api.UploadDocument(ctx, caseName, filepath.Base(path), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "uploaded %s as %s (%s)\n", filepath.Base(path), resp.DocumentID, resp.Status)
	return nil
}

func printAnswer(out io.Writer, answer string) {
	fmt.Fprintf(out, "💡 Answer:\n%s\n", answer)
}
