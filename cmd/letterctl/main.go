package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"letter-lab/codec"
	"letter-lab/domain"
	"letter-lab/domain/event"
	"letter-lab/errors"
	"letter-lab/repositories"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

const usage = `Usage: letterctl <command> [flags]

Commands:
  encode  -to NAME [-from NAME] -message TEXT [-legacy] [-token]
  decode  [-json] LINK|QUERY|TOKEN
  stats   [-db PATH]
`

func main() {
	_ = godotenv.Load()
	config, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(exitUsage)
	}
	cli := CLI{config: config, out: os.Stdout, log: logs.GetLoggerFromString("WARN")}
	code, err := cli.Run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "letterctl: %v\n", err)
	}
	os.Exit(code)
}

type CLI struct {
	config Config
	out    io.Writer
	log    *slog.Logger
}

func (c CLI) Run(args []string) (int, error) {
	if len(args) == 0 {
		fmt.Fprint(c.out, usage)
		return exitUsage, nil
	}
	switch args[0] {
	case "encode":
		return c.encode(args[1:])
	case "decode":
		return c.decode(args[1:])
	case "stats":
		return c.stats(args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return exitOK, nil
	default:
		return exitUsage, fmt.Errorf("%w: %q", errors.ErrUnknownCommand, args[0])
	}
}

func (c CLI) encode(args []string) (int, error) {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(c.out)
	to := fs.String("to", "", "recipient (required)")
	from := fs.String("from", "", "sender, anonymous when empty")
	message := fs.String("message", "", "letter body (required)")
	legacy := fs.Bool("legacy", false, "print an old-style link with plain parameters")
	tokenOnly := fs.Bool("token", false, "print the token only")
	if err := fs.Parse(args); err != nil {
		return exitUsage, err
	}

	letter := domain.Letter{
		To:      strings.TrimSpace(*to),
		From:    strings.TrimSpace(*from),
		Message: strings.TrimSpace(*message),
	}
	if letter.To == "" || letter.Message == "" {
		return exitUsage, fmt.Errorf("%w: -to and -message are required", errors.ErrInvalidLetter)
	}

	if *legacy {
		fmt.Fprintln(c.out, codec.LegacyLink(c.config.BaseURL, letter.WithDefaultSender()))
		return exitOK, nil
	}

	token, err := codec.Encode(letter)
	if err != nil {
		return exitRuntime, err
	}
	if *tokenOnly {
		fmt.Fprintln(c.out, token)
		return exitOK, nil
	}
	fmt.Fprintln(c.out, codec.LinkFromToken(c.config.BaseURL, token))
	return exitOK, nil
}

func (c CLI) decode(args []string) (int, error) {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(c.out)
	asJSON := fs.Bool("json", false, "print the letter as JSON")
	if err := fs.Parse(args); err != nil {
		return exitUsage, err
	}
	if fs.NArg() != 1 {
		return exitUsage, fmt.Errorf("decode expects exactly one link, query or token")
	}

	letter, format := codec.NewDecoder(c.log).DecodeWithFormat(codec.ValuesFromInput(fs.Arg(0)))

	if *asJSON {
		encoder := json.NewEncoder(c.out)
		encoder.SetEscapeHTML(false)
		return exitOK, encoder.Encode(struct {
			domain.Letter
			Format domain.Format `json:"format"`
		}{letter, format})
	}

	fmt.Fprintf(c.out, "%s %s\n", c.label("format: "), c.formatName(format))
	fmt.Fprintf(c.out, "%s %s\n", c.label("to:     "), letter.To)
	fmt.Fprintf(c.out, "%s %s\n", c.label("from:   "), letter.From)
	fmt.Fprintf(c.out, "%s %s\n", c.label("message:"), letter.Message)
	return exitOK, nil
}

func (c CLI) stats(args []string) (int, error) {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(c.out)
	dbPath := fs.String("db", c.config.StatsFilepath, "Path to the stats badger DB")
	if err := fs.Parse(args); err != nil {
		return exitUsage, err
	}

	// BypassLockGuard allows reading while the server holds the lock
	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLogger(nil))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	counts, err := repositories.NewStatsRepository(db, c.log).GetStats()
	if err != nil {
		return exitRuntime, err
	}
	c.renderStats(counts)
	return exitOK, nil
}

func (c CLI) renderStats(counts []repositories.DailyCount) {
	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Day", "Kind", "Count"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, count := range counts {
		table.Append([]string{count.Day, string(count.Kind), strconv.FormatUint(count.Count, 10)})
	}
	totals := repositories.Totals(counts)
	for _, kind := range event.Kinds() {
		table.Append([]string{"total", string(kind), strconv.FormatUint(totals[kind], 10)})
	}
	table.Render()

	if len(counts) == 0 {
		fmt.Fprintln(c.out, c.warn("no stats recorded yet"))
	}
}

func (c CLI) label(s string) string {
	if !c.config.Colours {
		return s
	}
	return color.New(color.FgCyan, color.OpBold).Render(s)
}

func (c CLI) warn(s string) string {
	if !c.config.Colours {
		return s
	}
	return color.Yellow.Render(s)
}

func (c CLI) formatName(format domain.Format) string {
	if !c.config.Colours {
		return format.String()
	}
	style := lo.Ternary(format == domain.FormatFallback, color.Red, color.Green)
	return style.Render(format.String())
}
