// Command pagetool locates newspaper edition directories, lists and
// renames their page files, and uploads them to delivery servers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/morningstar/pagetool/internal/config"
	"github.com/morningstar/pagetool/internal/edition"
	"github.com/morningstar/pagetool/internal/page"
	"github.com/morningstar/pagetool/internal/ui"
	"github.com/morningstar/pagetool/internal/upload"
)

type listCmd struct {
	Date string `arg:"-d,--date" help:"edition date (2006-01-02, 02-01-06 or 020106; default today)"`
	Kind string `arg:"-k,--kind" default:"indd" help:"page kind: indd, press or web"`
}

type namesCmd struct {
	Date string `arg:"-d,--date" help:"edition date (default today)"`
	Kind string `arg:"-k,--kind" default:"press" help:"page kind: indd, press or web"`
}

type uploadCmd struct {
	Target    string `arg:"positional" help:"name of a delivery target from the config file"`
	Date      string `arg:"-d,--date" help:"edition date (default today)"`
	Kind      string `arg:"-k,--kind" default:"press" help:"page kind: indd, press or web"`
	KeepNames bool   `arg:"--keep-names" help:"upload with the in-house filenames instead of external names"`
	Path      string `arg:"--path" help:"override the target's remote directory"`
}

type args struct {
	List   *listCmd   `arg:"subcommand:list" help:"list an edition's page files"`
	Names  *namesCmd  `arg:"subcommand:names" help:"preview external delivery names"`
	Upload *uploadCmd `arg:"subcommand:upload" help:"send an edition's pages to a delivery target"`

	Config  string `arg:"-c,--config" help:"path to a config file"`
	Verbose bool   `arg:"-v,--verbose" help:"enable debug logging"`
}

func (args) Description() string {
	return "pagetool locates edition directories, parses page filenames and delivers pages over FTP/SFTP."
}

func main() {
	var a args
	parser := arg.MustParse(&a)

	cfg, err := config.Load(a.Config)
	if err != nil {
		ui.PrintError(fmt.Sprintf("loading config: %v", err))
		os.Exit(1)
	}

	log, err := newLogger(a.Verbose)
	if err != nil {
		ui.PrintError(fmt.Sprintf("setting up logging: %v", err))
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	loc, err := edition.NewLocator(osfs.New("/"), cfg.PagesRoot, cfg.Layouts(), log)
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case a.List != nil:
		err = runList(loc, a.List)
	case a.Names != nil:
		err = runNames(loc, a.Names)
	case a.Upload != nil:
		err = runUpload(ctx, loc, cfg, a.Upload, log)
	default:
		parser.WriteHelp(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// editionPages resolves the date flag and lists the requested kind of page.
func editionPages(loc *edition.Locator, dateFlag, kind string) ([]*page.Page, time.Time, error) {
	day, err := parseDate(dateFlag)
	if err != nil {
		return nil, time.Time{}, err
	}

	var pages []*page.Page
	switch kind {
	case "indd":
		pages, err = loc.InDesignFiles(day)
	case "press":
		pages, err = loc.PressPDFs(day)
	case "web":
		pages, err = loc.WebPDFs(day)
	default:
		return nil, time.Time{}, fmt.Errorf("unknown page kind %q (want indd, press or web)", kind)
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	return pages, day, nil
}

func runList(loc *edition.Locator, cmd *listCmd) error {
	pages, day, err := editionPages(loc, cmd.Date, cmd.Kind)
	if err != nil {
		return err
	}

	ui.PrintHeader(fmt.Sprintf("%s pages for %s", strings.ToUpper(cmd.Kind), day.Format("2006-01-02")))
	if len(pages) == 0 {
		ui.PrintInfo("no pages found")
		return nil
	}

	var total uint64
	for _, p := range pages {
		size := ""
		if info, err := os.Stat(p.Path); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
			total += uint64(info.Size())
		}
		fmt.Printf("  %-40s %s\n", p, size)
	}
	ui.PrintInfo(fmt.Sprintf("%d pages, %s", len(pages), humanize.Bytes(total)))
	return nil
}

func runNames(loc *edition.Locator, cmd *namesCmd) error {
	pages, day, err := editionPages(loc, cmd.Date, cmd.Kind)
	if err != nil {
		return err
	}

	ui.PrintHeader(fmt.Sprintf("External names for %s", day.Format("2006-01-02")))
	for _, p := range pages {
		ui.PrintRename(p.String(), p.ExternalName())
	}
	return nil
}

func runUpload(ctx context.Context, loc *edition.Locator, cfg *config.Config, cmd *uploadCmd, log *zap.Logger) error {
	pages, day, err := editionPages(loc, cmd.Date, cmd.Kind)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no %s pages found for %s", cmd.Kind, day.Format("2006-01-02"))
	}

	if cmd.Target == "" {
		return fmt.Errorf("a delivery target is required")
	}
	target, err := cfg.TargetByName(cmd.Target)
	if err != nil {
		return err
	}

	remote, err := dialTarget(ctx, cmd.Target, target)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := remote.Close(); cerr != nil {
			log.Warn("closing remote connection", zap.Error(cerr))
		}
	}()

	remotePath := target.Path
	if cmd.Path != "" {
		remotePath = cmd.Path
	}

	ui.PrintUpload(fmt.Sprintf("Uploading %d %s pages to %s", len(pages), cmd.Kind, cmd.Target))
	sender := upload.NewSender(nil, log)
	opts := upload.Options{
		RemotePath: remotePath,
		KeepNames:  cmd.KeepNames || target.KeepNames,
		Hooks: upload.Hooks{
			OnFile: func(p *page.Page, remoteName string, size int64) {
				ui.PrintUpload(fmt.Sprintf("%s %s %s (%s)",
					p, ui.SymbolArrow, remoteName, humanize.Bytes(uint64(size))))
			},
		},
	}
	if err := sender.Send(ctx, remote, pages, opts); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Uploaded %d pages to %s", len(pages), cmd.Target))
	return nil
}

// dialTarget opens a connection to the configured delivery server,
// prompting for a missing FTP password when run interactively.
func dialTarget(ctx context.Context, name string, target config.Target) (upload.Remote, error) {
	switch target.Protocol {
	case "sftp":
		return upload.DialSFTP(target.SFTPConfig())
	case "ftp":
		password := target.Password
		if password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Printf("Password for %s@%s: ", target.User, target.Host)
			entered, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return nil, fmt.Errorf("read password: %w", err)
			}
			password = string(entered)
		}
		return upload.DialFTP(ctx, target.Host, target.Port, target.User, password)
	default:
		return nil, fmt.Errorf("target %q: unsupported protocol %q", name, target.Protocol)
	}
}
