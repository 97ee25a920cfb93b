// profilectl is the operator CLI for the profile service: reviewing
// verifications, exporting a user's profiles and printing profile counts.
// It reads the same environment configuration as estatehubd.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/joseph-ayodele/estatehub/constants"
	"github.com/joseph-ayodele/estatehub/db/migrations"
	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/export"
	"github.com/joseph-ayodele/estatehub/internal/logging"
	"github.com/joseph-ayodele/estatehub/internal/notify"
	"github.com/joseph-ayodele/estatehub/internal/repository"
	"github.com/joseph-ayodele/estatehub/internal/server"
	"github.com/joseph-ayodele/estatehub/internal/services/profile"
	"github.com/joseph-ayodele/estatehub/internal/session"
)

const usage = `usage: profilectl <command> [flags]

commands:
  review   record a verification decision for a PENDING profile
  export   write a user's profiles to an XLSX workbook
  stats    print the number of profiles per type
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(out, usage)
		return nil
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer repository.Close(db, logger)
	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db, migrations.FS, ".", logger); err != nil {
			return err
		}
	}
	repos := repository.NewRepositories(db, logger)

	switch args[0] {
	case "review":
		return runReview(ctx, args[1:], cfg, repos, out)
	case "export":
		return runExport(ctx, args[1:], cfg, repos, out)
	case "stats":
		return runStats(ctx, repos, out)
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runReview(ctx context.Context, args []string, cfg *common.Config, repos repository.Repositories, out io.Writer) error {
	var profileID, decision, note, reviewer string
	flags := pflag.NewFlagSet("review", pflag.ContinueOnError)
	flags.StringVar(&profileID, "profile", "", "profile id (required)")
	flags.StringVar(&decision, "decision", "", "VERIFIED or REJECTED (required)")
	flags.StringVar(&note, "note", "", "reviewer note, required when rejecting")
	flags.StringVar(&reviewer, "reviewer", "operator", "reviewer id recorded in the history")
	if err := flags.Parse(args); err != nil {
		return err
	}
	id, err := uuid.Parse(strings.TrimSpace(profileID))
	if err != nil {
		return fmt.Errorf("--profile must be a UUID")
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	mailer := notify.Mailer(notify.NewLogMailer(logger))
	if cfg.Mail.APIURL != "" {
		mailer = notify.NewHTTPMailer(cfg.Mail.APIURL, cfg.Mail.APIKey, cfg.Mail.From, cfg.Mail.Timeout, logger)
	}
	queue := notify.NewQueue(mailer, logger, notify.WithWorkers(1), notify.WithSendTimeout(cfg.Mail.Timeout))
	defer queue.Shutdown(ctx)

	var events notify.Publisher = notify.NopPublisher{}
	if cfg.Events.NATSURL != "" {
		nc, err := notify.ConnectNATS(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, logger)
		if err != nil {
			return err
		}
		defer func() { _ = nc.Close() }()
		events = nc
	}

	// The operator running this command is trusted as a reviewer.
	svc := profile.NewService(repos, queue, events, profile.Config{
		MaxResubmissions: cfg.Verification.MaxResubmissions,
		Reviewers:        append([]string{reviewer}, cfg.Verification.Reviewers...),
	}, logger)
	rec, err := svc.Review(ctx, reviewer, id, decision, note)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "profile %s is now %s\n", rec.ProfileID, rec.Status)
	return nil
}

func runExport(ctx context.Context, args []string, cfg *common.Config, repos repository.Repositories, out io.Writer) error {
	var userID, path string
	flags := pflag.NewFlagSet("export", pflag.ContinueOnError)
	flags.StringVar(&userID, "user", "", "owning user id (required)")
	flags.StringVarP(&path, "out", "o", "profiles.xlsx", "output file")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("--user is required")
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	svc := profile.NewService(repos, nil, nil, profile.Config{}, logger)
	data, err := export.NewService(svc, logger).ExportProfilesXLSX(ctx, session.Session{UserID: userID})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(out, "wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func runStats(ctx context.Context, repos repository.Repositories, out io.Writer) error {
	counts, err := repos.Profiles.CountByType(ctx)
	if err != nil {
		return err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	for _, t := range constants.ProfileTypes {
		fmt.Fprintf(out, "%-10s %d\n", t, counts[constants.ProfileType(t)])
	}
	fmt.Fprintf(out, "%-10s %d\n", "TOTAL", total)
	return nil
}
