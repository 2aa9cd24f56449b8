// Alert Center CLI
//
// Calls the Alert Center API from the command line and prints JSON.
//
// Usage:
//
//	alertcenter [flags] <command>
//
// Commands:
//
//	get <alert-id>                 Get one alert
//	delete <alert-id>              Mark an alert for deletion
//	list                           List alerts (one page)
//	feedback create <alert-id>     Record feedback on an alert
//	feedback list <alert-id>       List the feedback of an alert ("-" for all)
//	operations                     List the API operations this client knows
//
// Credentials come from flags or the environment (ALERTCENTER_API_KEY,
// ALERTCENTER_ACCESS_TOKEN, ALERTCENTER_QUOTA_USER). --env-file loads a
// .env file first; variables already set are not overridden.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DrewBradfordXYZ/alertcenter-go"
	"github.com/DrewBradfordXYZ/alertcenter-go/endpoint"
	"github.com/DrewBradfordXYZ/alertcenter-go/generated"
)

// Globals are the flags shared by every command.
type Globals struct {
	APIKey      string `name:"api-key" env:"ALERTCENTER_API_KEY" help:"API key sent as the key parameter."`
	AccessToken string `name:"access-token" env:"ALERTCENTER_ACCESS_TOKEN" help:"OAuth 2.0 access token."`
	QuotaUser   string `name:"quota-user" env:"ALERTCENTER_QUOTA_USER" help:"Quota user sent with every request."`
	BaseURL     string `name:"base-url" env:"ALERTCENTER_BASE_URL" default:"https://alertcenter.googleapis.com/" help:"API root URL."`
	CustomerID  string `name:"customer-id" help:"Organization account the alerts belong to."`
	Debug       bool   `help:"Log requests to stderr."`
	EnvFile     string `name:"env-file" help:"Load environment variables from this file first."`
}

func (g *Globals) client() (*alertcenter.Client, error) {
	opts := []alertcenter.Option{
		alertcenter.WithBaseURL(g.BaseURL),
		alertcenter.WithDebug(g.Debug),
		alertcenter.WithUserAgent("alertcenter-cli/1.0"),
	}
	if g.APIKey != "" {
		opts = append(opts, alertcenter.WithAPIKey(g.APIKey))
	}
	if g.QuotaUser != "" {
		opts = append(opts, alertcenter.WithQuotaUser(g.QuotaUser))
	}
	if g.AccessToken != "" {
		opts = append(opts, alertcenter.WithBearerToken(g.AccessToken))
	}
	return alertcenter.New(opts...)
}

func (g *Globals) customer() endpoint.Opt[string] {
	if g.CustomerID == "" {
		return endpoint.None[string]()
	}
	return endpoint.Some(g.CustomerID)
}

// printer writes command output.
type printer struct {
	w io.Writer
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type CLI struct {
	Globals

	Get        GetCmd        `cmd:"" help:"Get one alert."`
	Delete     DeleteCmd     `cmd:"" help:"Mark an alert for deletion."`
	List       ListCmd       `cmd:"" help:"List alerts (one page)."`
	Feedback   FeedbackCmd   `cmd:"" help:"Alert feedback."`
	Operations OperationsCmd `cmd:"" help:"List the API operations."`
}

type GetCmd struct {
	AlertID string `arg:"" name:"alert-id" help:"Alert identifier."`
}

func (c *GetCmd) Run(ctx context.Context, g *Globals, out *printer) error {
	ac, err := g.client()
	if err != nil {
		return err
	}
	alert, err := ac.GetAlert(ctx, c.AlertID, &alertcenter.AlertOptions{CustomerID: g.customer()})
	if err != nil {
		return err
	}
	return out.json(alert)
}

type DeleteCmd struct {
	AlertID string `arg:"" name:"alert-id" help:"Alert identifier."`
}

func (c *DeleteCmd) Run(ctx context.Context, g *Globals, out *printer) error {
	ac, err := g.client()
	if err != nil {
		return err
	}
	if err := ac.DeleteAlert(ctx, c.AlertID, &alertcenter.AlertOptions{CustomerID: g.customer()}); err != nil {
		return err
	}
	fmt.Fprintf(out.w, "deleted %s\n", c.AlertID)
	return nil
}

type ListCmd struct {
	Filter    *string `help:"Filter expression, e.g. type = \"Phishing\"."`
	OrderBy   *string `name:"order-by" help:"Sort order, e.g. \"createTime desc\"."`
	PageSize  *int    `name:"page-size" help:"Maximum alerts to return."`
	PageToken *string `name:"page-token" help:"Token from a previous page."`
}

func (c *ListCmd) Run(ctx context.Context, g *Globals, out *printer) error {
	ac, err := g.client()
	if err != nil {
		return err
	}
	resp, err := ac.ListAlerts(ctx, &alertcenter.ListAlertsOptions{
		CustomerID: g.customer(),
		Filter:     endpoint.FromPtr(c.Filter),
		OrderBy:    endpoint.FromPtr(c.OrderBy),
		PageSize:   endpoint.FromPtr(c.PageSize),
		PageToken:  endpoint.FromPtr(c.PageToken),
	})
	if err != nil {
		return err
	}
	return out.json(resp)
}

type FeedbackCmd struct {
	Create FeedbackCreateCmd `cmd:"" help:"Record feedback on an alert."`
	List   FeedbackListCmd   `cmd:"" help:"List the feedback of an alert."`
}

type FeedbackCreateCmd struct {
	AlertID string `arg:"" name:"alert-id" help:"Alert identifier."`
	Type    string `required:"" enum:"NOT_USEFUL,SOMEWHAT_USEFUL,VERY_USEFUL" help:"Feedback type (${enum})."`
}

func (c *FeedbackCreateCmd) Run(ctx context.Context, g *Globals, out *printer) error {
	ac, err := g.client()
	if err != nil {
		return err
	}
	fb, err := ac.CreateAlertFeedback(ctx, c.AlertID, &generated.AlertFeedback{Type: c.Type},
		&alertcenter.AlertOptions{CustomerID: g.customer()})
	if err != nil {
		return err
	}
	return out.json(fb)
}

type FeedbackListCmd struct {
	AlertID string  `arg:"" name:"alert-id" help:"Alert identifier, or - for all alerts."`
	Filter  *string `help:"Filter expression."`
}

func (c *FeedbackListCmd) Run(ctx context.Context, g *Globals, out *printer) error {
	ac, err := g.client()
	if err != nil {
		return err
	}
	resp, err := ac.ListAlertFeedbacks(ctx, c.AlertID, &alertcenter.ListAlertFeedbacksOptions{
		CustomerID: g.customer(),
		Filter:     endpoint.FromPtr(c.Filter),
	})
	if err != nil {
		return err
	}
	return out.json(resp)
}

type OperationsCmd struct{}

var wordBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// describe turns "listAlertFeedbacks" into "List Alert Feedbacks".
func describe(name string) string {
	return cases.Title(language.English).String(wordBoundary.ReplaceAllString(name, "$1 $2"))
}

func (c *OperationsCmd) Run(out *printer) error {
	tw := tabwriter.NewWriter(out.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMETHOD\tPATH\tDESCRIPTION")
	for _, name := range generated.Registry.Names() {
		t, err := generated.Registry.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Name(), t.Method(), t.Path(), describe(t.Name()))
	}
	return tw.Flush()
}

// envFile finds --env-file in args before kong parses them, so that the
// file can feed the env-backed flags.
func envFile(args []string) string {
	for i, arg := range args {
		if v, ok := strings.CutPrefix(arg, "--env-file="); ok {
			return v
		}
		if arg == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if path := envFile(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("alertcenter"),
		kong.Description("Google Workspace Alert Center from the command line."),
		kong.UsageOnError(),
		kong.Writers(stdout, os.Stderr),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(&cli.Globals, &printer{w: stdout})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "alertcenter: %v\n", err)
		os.Exit(1)
	}
}
