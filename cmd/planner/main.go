// Command planner is the command-line client. It keeps the signed in user in a
// local preferences file and talks to the configured store directly.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
	"github.com/fatali-fataliyev/budget_planner/internal/auth"
	"github.com/fatali-fataliyev/budget_planner/internal/budget"
	"github.com/fatali-fataliyev/budget_planner/internal/config"
	"github.com/fatali-fataliyev/budget_planner/internal/events"
	"github.com/fatali-fataliyev/budget_planner/internal/ledger"
	"github.com/fatali-fataliyev/budget_planner/internal/session"
	"github.com/fatali-fataliyev/budget_planner/internal/storage"
	"github.com/fatali-fataliyev/budget_planner/logging"
	"github.com/gookit/color"
)

const usage = `usage: planner [-prefs file] <command> [args]

commands:
  register <username> <password>   create an account and sign in
  login <username> <password>      sign in
  logout                           forget the signed in user
  whoami                           print the signed in user id
  budget set <amount>              set the monthly budget
  budget get                       print the monthly budget
  tx add -name <name> [--] <amount>  add a transaction, "--" before a negative amount
  tx list                          list transactions and the total spend
  tx rm <id>                       delete a transaction
  tx receipt <id> <url>            attach a receipt URL
  summary                          budget, total spend and remaining
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			color.Redf("%s\n", appErrors.MessageOf(err))
			logging.Logger.Debugf("command failed: %v", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }
	prefsPath := fs.String("prefs", cfg.PreferencesFile, "preferences file holding the signed in user")
	verbose := fs.Bool("v", false, "log to stdout")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if err := logging.Init(logging.Options{
		Level:  cfg.LogLevel,
		AppEnv: cfg.AppEnv,
		Quiet:  !*verbose,
	}); err != nil {
		return err
	}

	if cfg.StorageType == config.StorageInMemory {
		color.Fprintf(out, "<yellow>STORAGE_TYPE=inmemory, data is lost when the command exits</>\n")
	}

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	a := newApp(store, events.NopPublisher{}, session.NewFilePreferences(*prefsPath), out)
	return a.dispatch(ctx, fs.Args())
}

type app struct {
	auth      *auth.Authenticator
	directory *session.Directory
	budgets   *budget.BudgetStore
	ledger    *ledger.Ledger
	out       io.Writer
}

func newApp(store storage.Backend, publisher events.Publisher, prefs session.Preferences, out io.Writer) *app {
	authenticator := auth.NewAuthenticator(store)
	return &app{
		auth:      authenticator,
		directory: session.NewDirectory(authenticator, prefs),
		budgets:   budget.NewBudgetStore(store),
		ledger:    ledger.NewLedger(store, publisher),
		out:       out,
	}
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errUsage
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		if err := a.directory.ClearSession(); err != nil {
			return err
		}
		color.Fprintf(a.out, "<green>Signed out.</>\n")
		return nil
	case "whoami":
		userId, err := a.currentUser()
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, userId)
		return nil
	case "budget":
		return a.budget(ctx, rest)
	case "tx":
		return a.transaction(ctx, rest)
	case "summary":
		return a.summary(ctx)
	default:
		fmt.Fprintf(a.out, "unknown command %q\n\n%s", cmd, usage)
		return errUsage
	}
}

func (a *app) currentUser() (string, error) {
	userId, ok, err := a.directory.CurrentUser()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeAuth,
			Message: "Not signed in, run 'planner login <username> <password>'.",
		}
	}
	return userId, nil
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprint(a.out, usage)
		return errUsage
	}
	if _, err := a.auth.Register(ctx, auth.NewUser{UserName: args[0], PasswordPlain: args[1]}); err != nil {
		return err
	}
	if _, err := a.directory.Authenticate(ctx, args[0], args[1]); err != nil {
		return err
	}
	color.Fprintf(a.out, "<green>Registration Completed, signed in as %s.</>\n", args[0])
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprint(a.out, usage)
		return errUsage
	}
	if _, err := a.directory.Authenticate(ctx, args[0], args[1]); err != nil {
		return err
	}
	color.Fprintf(a.out, "<green>You've logged in successfully!</>\n")
	return nil
}

func (a *app) budget(ctx context.Context, args []string) error {
	userId, err := a.currentUser()
	if err != nil {
		return err
	}

	switch {
	case len(args) == 2 && args[0] == "set":
		if err := a.budgets.SetBudget(ctx, userId, args[1]); err != nil {
			return err
		}
		color.Fprintf(a.out, "<green>Budget saved.</>\n")
		return nil
	case len(args) == 1 && args[0] == "get":
		b, ok, err := a.budgets.GetBudget(ctx, userId)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "No budget set.")
			return nil
		}
		fmt.Fprintf(a.out, "Monthly budget: %s\n", b)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return errUsage
	}
}

func (a *app) transaction(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errUsage
	}
	userId, err := a.currentUser()
	if err != nil {
		return err
	}

	switch sub, rest := args[0], args[1:]; sub {
	case "add":
		fs := flag.NewFlagSet("tx add", flag.ContinueOnError)
		fs.SetOutput(a.out)
		name := fs.String("name", "", "transaction name")
		if err := fs.Parse(rest); err != nil || fs.NArg() != 1 {
			fmt.Fprint(a.out, usage)
			return errUsage
		}
		amount, err := ledger.ParseAmount(fs.Arg(0))
		if err != nil {
			return err
		}
		id, err := a.ledger.Append(ctx, userId, *name, amount)
		if err != nil {
			return err
		}
		color.Fprintf(a.out, "<green>Transaction added:</> %s\n", id)
		return nil

	case "list":
		transactions, err := a.ledger.List(ctx, userId)
		if err != nil {
			return err
		}
		for _, t := range transactions {
			line := fmt.Sprintf("%s  %-20s %10s", t.ID, t.Name, t.Amount.StringFixed(2))
			if t.Image != "" {
				line += "  " + t.Image
			}
			fmt.Fprintln(a.out, line)
		}
		color.Fprintf(a.out, "<cyan>Total spend: %d</>\n", ledger.TotalSpend(transactions))
		return nil

	case "rm":
		if len(rest) != 1 {
			fmt.Fprint(a.out, usage)
			return errUsage
		}
		if err := a.ledger.Remove(ctx, userId, rest[0]); err != nil {
			return err
		}
		color.Fprintf(a.out, "<green>Transaction deleted.</>\n")
		return nil

	case "receipt":
		if len(rest) != 2 {
			fmt.Fprint(a.out, usage)
			return errUsage
		}
		if err := a.ledger.SetImage(ctx, userId, rest[0], rest[1]); err != nil {
			return err
		}
		color.Fprintf(a.out, "<green>Receipt attached.</>\n")
		return nil

	default:
		fmt.Fprint(a.out, usage)
		return errUsage
	}
}

func (a *app) summary(ctx context.Context) error {
	userId, err := a.currentUser()
	if err != nil {
		return err
	}

	s, err := a.ledger.Summary(ctx, userId, a.budgets)
	if err != nil {
		return err
	}

	if s.HasBudget {
		fmt.Fprintf(a.out, "Budget:      %d\n", s.Budget)
	} else {
		fmt.Fprintln(a.out, "Budget:      not set")
	}
	fmt.Fprintf(a.out, "Total spend: %d (%d transactions)\n", s.TotalSpend, s.Count)
	if s.HasBudget {
		if s.Remaining < 0 {
			color.Fprintf(a.out, "<red>Remaining:   %d</>\n", s.Remaining)
		} else {
			color.Fprintf(a.out, "<green>Remaining:   %d</>\n", s.Remaining)
		}
	}
	return nil
}
